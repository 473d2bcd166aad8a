package api

import "time"

// ErrorResponse is the common error payload returned by all endpoints
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details *string           `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HealthLogInput carries the raw form values of a health log submission.
// All metric fields are strings as entered; validation and conversion to
// typed values happen server-side. At least one metric must be non-empty.
type HealthLogInput struct {
	BloodPressure    string     `json:"blood_pressure"`
	HeartRate        string     `json:"heart_rate"`
	BloodOxygenLevel string     `json:"blood_oxygen_level"`
	SleepDuration    string     `json:"sleep_duration"`
	SleepQuality     string     `json:"sleep_quality"`
	StressLevel      string     `json:"stress_level"`
	Mood             string     `json:"mood"`
	RecordedAt       *time.Time `json:"recorded_at,omitempty"`
}

// CreateHealthLogRequest creates a new health log entry
type CreateHealthLogRequest struct {
	UserID string `json:"user_id" binding:"required"`
	HealthLogInput
}

// UpdateHealthLogRequest replaces a health log entry in full
type UpdateHealthLogRequest struct {
	HealthLogInput
}

// HeartRateStatusResponse labels a heart rate value
type HeartRateStatusResponse struct {
	HeartRate int    `json:"heart_rate"`
	Status    string `json:"status"` // Low, Normal, High
}

// SendMessageRequest sends a consultation chat message
type SendMessageRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// ChatSessionResponse returns the established session and its full history
type ChatSessionResponse struct {
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
}

// ChatMessage mirrors a stored chat message on the wire
type ChatMessage struct {
	MessageID string    `json:"message_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SendMessageResponse returns the persisted user message and the reply
type SendMessageResponse struct {
	UserMessage      ChatMessage `json:"user_message"`
	AssistantMessage ChatMessage `json:"assistant_message"`
}

// CheckInStatusResponse reports whether the user already checked in today
type CheckInStatusResponse struct {
	CheckedInToday bool       `json:"checked_in_today"`
	LastCheckIn    *time.Time `json:"last_check_in,omitempty"`
}

// CreateReminderRequest creates a reminder plan
type CreateReminderRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Type      string `json:"type" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Frequency string `json:"frequency" binding:"required"`
}

// UpdateReminderRequest replaces a reminder plan's mutable fields
type UpdateReminderRequest struct {
	Title     string `json:"title" binding:"required"`
	Type      string `json:"type" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Frequency string `json:"frequency" binding:"required"`
}

// ToggleReminderRequest flips only the active flag
type ToggleReminderRequest struct {
	IsActive bool `json:"is_active"`
}

// SubmitRatingRequest creates or updates a subscription rating. The
// create-vs-update decision is made server-side from prior existence.
type SubmitRatingRequest struct {
	UserID         string  `json:"user_id" binding:"required"`
	SubscriptionID string  `json:"subscription_id" binding:"required"`
	TrainerID      string  `json:"trainer_id" binding:"required"`
	Rating         int     `json:"rating" binding:"required"`
	FeedbackText   *string `json:"feedback_text,omitempty"`
}

// SubmitRatingResponse reports the stored rating and whether it was created
type SubmitRatingResponse struct {
	RatingID string `json:"rating_id"`
	Created  bool   `json:"created"`
}

// TrainerApplicationRequest submits a trainer application
type TrainerApplicationRequest struct {
	UserID         string  `json:"user_id" binding:"required"`
	FullName       string  `json:"full_name" binding:"required"`
	Qualifications string  `json:"qualifications" binding:"required"`
	ExperienceYrs  int     `json:"experience_years"`
	Motivation     *string `json:"motivation,omitempty"`
}

// InitiatePaymentRequest starts a subscription payment
type InitiatePaymentRequest struct {
	UserID         string  `json:"user_id" binding:"required"`
	SubscriptionID string  `json:"subscription_id" binding:"required"`
	Amount         float64 `json:"amount" binding:"required"`
	Currency       string  `json:"currency" binding:"required"`
}

// InitiatePaymentResponse returns the pending payment and redirect target
type InitiatePaymentResponse struct {
	PaymentID   string  `json:"payment_id"`
	Status      string  `json:"status"`
	RedirectURL *string `json:"redirect_url,omitempty"`
}
