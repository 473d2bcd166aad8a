package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrAlreadyCheckedIn is returned when the user already checked in today
var ErrAlreadyCheckedIn = errors.New("already checked in today")

// CheckInStore persists the last check-in timestamp per user
type CheckInStore interface {
	LastCheckIn(ctx context.Context, userID string) (time.Time, bool, error)
	SetLastCheckIn(ctx context.Context, userID string, t time.Time) error
}

// CheckInService gates the daily check-in. A user may check in once per
// calendar day in the service's configured location; the comparison is on
// date components, so the time of day never matters.
type CheckInService struct {
	store  CheckInStore
	loc    *time.Location
	logger *zap.Logger
}

// NewCheckInService creates a new CheckInService. A nil location falls
// back to the system local time.
func NewCheckInService(store CheckInStore, loc *time.Location, logger *zap.Logger) *CheckInService {
	if loc == nil {
		loc = time.Local
	}
	return &CheckInService{
		store:  store,
		loc:    loc,
		logger: logger,
	}
}

// Status reports whether the user already checked in on the calendar day
// of now, along with the last check-in timestamp if one exists.
func (s *CheckInService) Status(ctx context.Context, userID string, now time.Time) (bool, *time.Time, error) {
	if userID == "" {
		return false, nil, fmt.Errorf("user ID is required")
	}

	last, ok, err := s.store.LastCheckIn(ctx, userID)
	if err != nil {
		s.logger.Error("failed to read last check-in",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return false, nil, fmt.Errorf("failed to read last check-in: %w", err)
	}
	if !ok {
		return false, nil, nil
	}

	return sameCalendarDay(last.In(s.loc), now.In(s.loc)), &last, nil
}

// CheckIn records a check-in for the calendar day of now. A second
// check-in on the same day is rejected with ErrAlreadyCheckedIn.
func (s *CheckInService) CheckIn(ctx context.Context, userID string, now time.Time) error {
	checkedIn, _, err := s.Status(ctx, userID, now)
	if err != nil {
		return err
	}
	if checkedIn {
		return ErrAlreadyCheckedIn
	}

	if err := s.store.SetLastCheckIn(ctx, userID, now); err != nil {
		s.logger.Error("failed to record check-in",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return fmt.Errorf("failed to record check-in: %w", err)
	}

	s.logger.Info("daily check-in recorded",
		zap.String("user_id", userID),
		zap.Time("at", now),
	)

	return nil
}

// sameCalendarDay compares year, month and day components. Both inputs
// must already be in the gate's location.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
