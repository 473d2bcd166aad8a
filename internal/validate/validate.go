// Package validate holds the field-level validators for user-submitted
// form values. Every validator takes the raw string as entered and returns
// an empty string when the value is acceptable, or a human-readable error
// message otherwise. Validators are pure and never touch storage.
package validate

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/vitalog/backend/pkg/model"
)

const (
	maxEmailLength     = 255
	minPasswordLength  = 6
	maxPasswordLength  = 100
	maxBloodPressure   = 20
	maxEnumFieldLength = 50
)

var (
	emailPattern         = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	bloodPressurePattern = regexp.MustCompile(`^\d{1,3}/\d{1,3}$`)
)

// Allowed values for the enumerated health log fields
var (
	SleepQualities = []string{model.SleepQualityGood, model.SleepQualityAverage, model.SleepQualityPoor}
	StressLevels   = []string{model.StressLevelLow, model.StressLevelMedium, model.StressLevelHigh}
	Moods          = []string{model.MoodHappy, model.MoodNeutral, model.MoodSad, model.MoodStressed, model.MoodRelaxed}
)

// Email validates a required email address
func Email(s string) string {
	if s == "" {
		return "Email is required"
	}
	if len(s) > maxEmailLength {
		return fmt.Sprintf("Email must be at most %d characters", maxEmailLength)
	}
	if !emailPattern.MatchString(s) {
		return "Invalid email address"
	}
	return ""
}

// Password validates a required password
func Password(s string) string {
	if s == "" {
		return "Password is required"
	}
	if len(s) < minPasswordLength || len(s) > maxPasswordLength {
		return fmt.Sprintf("Password must be between %d and %d characters", minPasswordLength, maxPasswordLength)
	}
	return ""
}

// BloodPressure validates an optional systolic/diastolic reading such as
// 120/80. Each component is limited to three digits.
func BloodPressure(s string) string {
	if s == "" {
		return ""
	}
	if len(s) > maxBloodPressure {
		return fmt.Sprintf("Blood pressure must be at most %d characters", maxBloodPressure)
	}
	if !bloodPressurePattern.MatchString(s) {
		return "Blood pressure must be in systolic/diastolic form, e.g. 120/80"
	}
	return ""
}

// HeartRate validates an optional heart rate in beats per minute
func HeartRate(s string) string {
	return numericInRange(s, 30, 200, "Heart rate")
}

// BloodOxygen validates an optional blood oxygen saturation percentage
func BloodOxygen(s string) string {
	return numericInRange(s, 0, 100, "Blood oxygen level")
}

// SleepDuration validates an optional sleep duration in hours
func SleepDuration(s string) string {
	return numericInRange(s, 0, 24, "Sleep duration")
}

// SleepQuality validates an optional sleep quality value
func SleepQuality(s string) string {
	return enumField(s, "Sleep quality", SleepQualities)
}

// StressLevel validates an optional stress level value
func StressLevel(s string) string {
	return enumField(s, "Stress level", StressLevels)
}

// Mood validates an optional mood value
func Mood(s string) string {
	return enumField(s, "Mood", Moods)
}

// HeartRateStatus labels a heart rate reading. The normal band is
// 60-100 inclusive.
func HeartRateStatus(bpm int) string {
	switch {
	case bpm < 60:
		return "Low"
	case bpm > 100:
		return "High"
	default:
		return "Normal"
	}
}

// numericInRange accepts the empty string, otherwise requires a number in
// [min, max], both inclusive.
func numericInRange(s string, min, max float64, field string) string {
	if s == "" {
		return ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Sprintf("%s must be a number", field)
	}
	if v < min || v > max {
		return fmt.Sprintf("%s must be between %v and %v", field, min, max)
	}
	return ""
}

// enumField accepts the empty string, otherwise requires an exact
// case-sensitive match against the allowed set.
func enumField(s, field string, allowed []string) string {
	if s == "" {
		return ""
	}
	if len(s) > maxEnumFieldLength {
		return fmt.Sprintf("%s must be at most %d characters", field, maxEnumFieldLength)
	}
	for _, a := range allowed {
		if s == a {
			return ""
		}
	}
	return fmt.Sprintf("%s must be one of %v", field, allowed)
}
