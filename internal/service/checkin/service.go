// Package checkin implements the weekly weigh-in submission flow. A
// submission is accepted only while the current week's window is open and
// re-submitting inside the window overwrites the earlier record.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	prommetrics "github.com/slimcircle/slimcircle/internal/metrics"
	"github.com/slimcircle/slimcircle/internal/models"
	"github.com/slimcircle/slimcircle/internal/repository"
	"github.com/slimcircle/slimcircle/internal/week"
	"github.com/slimcircle/slimcircle/pkg/logger"
)

var (
	// ErrWindowClosed is returned when a submission arrives outside the
	// Monday window.
	ErrWindowClosed = errors.New("check-in window is closed")
	// ErrWeightOutOfRange is returned when the weight fails the configured
	// plausibility bounds.
	ErrWeightOutOfRange = errors.New("weight out of range")
)

// Store is the persistence dependency of the submission flow.
type Store interface {
	GetByUserAndWeek(userID uint, weekNumber int) (*models.CheckIn, error)
	Upsert(checkIn *models.CheckIn) error
	ListByUser(userID uint) ([]models.CheckIn, error)
}

// Status values reported to the client for the current week.
const (
	StatusUnchecked = "unchecked" // window open, no submission yet
	StatusChecked   = "checked"   // window open, submission recorded
	StatusClosed    = "closed"    // window closed for this week
)

// WeekStatus describes the user's standing in the current week.
type WeekStatus struct {
	Status     string          `json:"status"`
	WeekNumber int             `json:"weekNumber"`
	WindowOpen time.Time       `json:"windowOpen"`
	WindowEnd  time.Time       `json:"windowEnd"`
	CheckIn    *models.CheckIn `json:"checkIn,omitempty"`
}

// Service handles weigh-in submissions and status queries.
type Service struct {
	cal       *week.Calendar
	clock     week.Clock
	store     Store
	minWeight float64
	maxWeight float64
	log       *logger.Logger
}

// NewService creates a new check-in service with a concrete repository.
func NewService(
	cal *week.Calendar,
	clock week.Clock,
	repo *repository.CheckInRepository,
	minWeight, maxWeight float64,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(cal, clock, repo, minWeight, maxWeight, log)
}

// NewServiceWithInterfaces creates a new check-in service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	cal *week.Calendar,
	clock week.Clock,
	store Store,
	minWeight, maxWeight float64,
	log *logger.Logger,
) *Service {
	return &Service{
		cal:       cal,
		clock:     clock,
		store:     store,
		minWeight: minWeight,
		maxWeight: maxWeight,
		log:       log,
	}
}

// Submit records a weigh-in for the current week. Resubmission inside the
// window replaces the earlier weight and photo; the week assignment comes
// from the reference calendar, never from the client.
func (s *Service) Submit(ctx context.Context, userID uint, weight float64, photoURL string) (*models.CheckIn, error) {
	now := s.clock.Now()

	if !s.cal.IsOpenAt(now) {
		prommetrics.RecordCheckInRejected("window_closed")
		return nil, ErrWindowClosed
	}
	if weight < s.minWeight || weight > s.maxWeight {
		prommetrics.RecordCheckInRejected("weight_out_of_range")
		return nil, fmt.Errorf("%w: %.2f not in [%.0f, %.0f]", ErrWeightOutOfRange, weight, s.minWeight, s.maxWeight)
	}

	weekNumber := s.cal.WeekIDOf(now)

	existing, err := s.store.GetByUserAndWeek(userID, weekNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing check-in: %w", err)
	}

	checkIn := &models.CheckIn{
		UserID:     userID,
		WeekNumber: weekNumber,
		Weight:     weight,
		PhotoURL:   photoURL,
	}
	if err := s.store.Upsert(checkIn); err != nil {
		return nil, fmt.Errorf("failed to save check-in: %w", err)
	}

	kind := "new"
	if existing != nil {
		kind = "update"
	}
	prommetrics.RecordCheckInSubmitted(kind)

	s.log.Info().
		Uint("user_id", userID).
		Int("week", weekNumber).
		Float64("weight", weight).
		Str("kind", kind).
		Msg("Check-in recorded")

	return checkIn, nil
}

// Status reports the user's standing in the current week together with the
// window bounds, so clients can render a countdown without re-deriving the
// calendar rules.
func (s *Service) Status(ctx context.Context, userID uint) (*WeekStatus, error) {
	now := s.clock.Now()
	weekNumber := s.cal.WeekIDOf(now)
	open, end := s.cal.CheckInWindow(weekNumber)

	status := &WeekStatus{
		WeekNumber: weekNumber,
		WindowOpen: open,
		WindowEnd:  end,
	}

	checkIn, err := s.store.GetByUserAndWeek(userID, weekNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up check-in: %w", err)
	}
	status.CheckIn = checkIn

	switch {
	case !s.cal.IsOpenAt(now):
		status.Status = StatusClosed
	case checkIn != nil:
		status.Status = StatusChecked
	default:
		status.Status = StatusUnchecked
	}

	return status, nil
}

// History returns the user's weigh-ins, most recent week first.
func (s *Service) History(ctx context.Context, userID uint) ([]models.CheckIn, error) {
	checkIns, err := s.store.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return checkIns, nil
}
