package model

import "time"

// User represents a user of the platform
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"` // member, trainer, admin
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Allowed values for the enumerated health log fields. Matching is exact
// and case-sensitive.
const (
	SleepQualityGood    = "Good"
	SleepQualityAverage = "Average"
	SleepQualityPoor    = "Poor"

	StressLevelLow    = "Low"
	StressLevelMedium = "Medium"
	StressLevelHigh   = "High"

	MoodHappy    = "Happy"
	MoodNeutral  = "Neutral"
	MoodSad      = "Sad"
	MoodStressed = "Stressed"
	MoodRelaxed  = "Relaxed"
)

// HealthLogEntry represents a single daily health metrics entry.
// Every metric is optional, but an entry must carry at least one.
type HealthLogEntry struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	BloodPressure    *string   `json:"blood_pressure,omitempty"` // systolic/diastolic, e.g. 120/80
	HeartRate        *int      `json:"heart_rate,omitempty"`
	BloodOxygenLevel *float64  `json:"blood_oxygen_level,omitempty"`
	SleepDuration    *float64  `json:"sleep_duration,omitempty"` // hours
	SleepQuality     *string   `json:"sleep_quality,omitempty"`
	StressLevel      *string   `json:"stress_level,omitempty"`
	Mood             *string   `json:"mood,omitempty"`
	Source           string    `json:"source"`                   // manual, provider
	SourceDataID     *string   `json:"source_data_id,omitempty"` // provider-side id, for deduplication
	RecordedAt       time.Time `json:"recorded_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HealthLogStats summarises a user's health logs over a date range
type HealthLogStats struct {
	UserID         string     `json:"user_id"`
	RangeStart     time.Time  `json:"range_start"`
	RangeEnd       time.Time  `json:"range_end"`
	EntryCount     int        `json:"entry_count"`
	AvgHeartRate   *float64   `json:"avg_heart_rate,omitempty"`
	AvgBloodOxygen *float64   `json:"avg_blood_oxygen,omitempty"`
	AvgSleepHours  *float64   `json:"avg_sleep_hours,omitempty"`
	LastRecordedAt *time.Time `json:"last_recorded_at,omitempty"`
}

// SessionStatus represents the status of a consultation chat session
type SessionStatus string

const (
	SessionStatusActive  SessionStatus = "active"
	SessionStatusDeleted SessionStatus = "deleted"
)

// ChatSession represents a consultation conversation with the assistant
type ChatSession struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Status    SessionStatus `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	DeletedAt *time.Time    `json:"deleted_at,omitempty"`
}

// MessageRole represents the role of a chat message sender
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// ChatMessage represents a single message in a consultation session
type ChatMessage struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// ReminderType represents the kind of activity a reminder covers
type ReminderType string

const (
	ReminderTypeDrink    ReminderType = "drink"
	ReminderTypeMeal     ReminderType = "meal"
	ReminderTypeExercise ReminderType = "exercise"
	ReminderTypeSleep    ReminderType = "sleep"
)

// ReminderPlan represents a recurring reminder. IsActive is toggled
// independently of the rest of the plan.
type ReminderPlan struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Title     string       `json:"title"`
	Type      ReminderType `json:"type"`
	Time      string       `json:"time"` // HH:MM, 24h
	Frequency string       `json:"frequency"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// SubscriptionRating represents a user's rating of a trainer subscription.
// At most one rating exists per (user, subscription) pair.
type SubscriptionRating struct {
	ID             string    `json:"id"`
	SubscriptionID string    `json:"subscription_id"`
	UserID         string    `json:"user_id"`
	TrainerID      string    `json:"trainer_id"`
	Rating         int       `json:"rating"` // 1-5
	FeedbackText   *string   `json:"feedback_text,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ApplicationStatus represents the review state of a trainer application
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// TrainerApplication represents a request to become a trainer
type TrainerApplication struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	FullName       string            `json:"full_name"`
	Qualifications string            `json:"qualifications"`
	ExperienceYrs  int               `json:"experience_years"`
	Motivation     *string           `json:"motivation,omitempty"`
	Status         ApplicationStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// PaymentStatus represents the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment represents an initiated subscription payment
type Payment struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	SubscriptionID   string        `json:"subscription_id"`
	Amount           float64       `json:"amount"`
	Currency         string        `json:"currency"`
	GatewayPaymentID string        `json:"gateway_payment_id"`
	RedirectURL      *string       `json:"redirect_url,omitempty"`
	Status           PaymentStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
