// Package settlement implements the weekly ranking engine: it reads two
// adjacent week cohorts of check-ins, ranks eligible users by week-over-week
// weight loss and atomically replaces the reward set for the week.
package settlement

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	prommetrics "github.com/slimcircle/slimcircle/internal/metrics"
	"github.com/slimcircle/slimcircle/internal/models"
	"github.com/slimcircle/slimcircle/internal/repository"
	"github.com/slimcircle/slimcircle/internal/week"
	"github.com/slimcircle/slimcircle/pkg/logger"
)

// CheckInStore is the read surface the engine needs from the check-in table.
type CheckInStore interface {
	ListByWeek(weekNumber int) ([]models.CheckIn, error)
}

// RewardStore is the write surface the engine needs from the reward table.
type RewardStore interface {
	CountByWeek(weekNumber int) (int64, error)
	ReplaceForWeek(weekNumber int, rewards []models.Reward) error
}

// Result is the outcome of one settlement run. "Already settled" and "no
// check-ins" are expected business states, reported here instead of as
// errors.
type Result struct {
	Success        bool   `json:"success"`
	WeekNumber     int    `json:"week_number"`
	Count          int    `json:"count"`
	AlreadySettled bool   `json:"already_settled,omitempty"`
	Message        string `json:"message"`
}

// Service is the settlement engine. It is the sole writer of the reward
// table; concurrent runs for the same week are serialized by a per-week
// lock.
type Service struct {
	cal      *week.Calendar
	clock    week.Clock
	checkIns CheckInStore
	rewards  RewardStore
	log      *logger.Logger

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// NewService creates a new settlement service with concrete repository types.
func NewService(
	cal *week.Calendar,
	clock week.Clock,
	checkInRepo *repository.CheckInRepository,
	rewardRepo *repository.RewardRepository,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(cal, clock, checkInRepo, rewardRepo, log)
}

// NewServiceWithInterfaces creates a new settlement service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	cal *week.Calendar,
	clock week.Clock,
	checkIns CheckInStore,
	rewards RewardStore,
	log *logger.Logger,
) *Service {
	return &Service{
		cal:      cal,
		clock:    clock,
		checkIns: checkIns,
		rewards:  rewards,
		log:      log,
		locks:    make(map[int]*sync.Mutex),
	}
}

// candidate is one eligible user before rank assignment.
type candidate struct {
	userID     uint
	weightDiff float64 // prior - current, positive = loss
	checkedAt  time.Time
}

// Settle computes and persists the reward cohort for a week. A weekNumber of
// zero settles the week containing the current time. With force=false an
// already-settled week short-circuits without any computation or writes;
// with force=true the existing reward set is replaced wholesale. Running the
// same forced settlement twice yields the same reward set, so retries are
// safe.
func (s *Service) Settle(ctx context.Context, weekNumber int, force bool) (*Result, error) {
	if weekNumber == 0 {
		weekNumber = s.cal.WeekIDOf(s.clock.Now())
	}

	// Serialize settlement per week so two forced runs cannot interleave
	// their delete/insert phases. Different weeks settle concurrently.
	lock := s.lockFor(weekNumber)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer func() {
		prommetrics.ObserveSettlementDuration(time.Since(start).Seconds())
	}()

	if !force {
		existing, err := s.rewards.CountByWeek(weekNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing rewards for week %d: %w", weekNumber, err)
		}
		if existing > 0 {
			s.log.Info().
				Int("week", weekNumber).
				Int64("count", existing).
				Msg("Week already settled, skipping")
			return &Result{
				Success:        false,
				WeekNumber:     weekNumber,
				Count:          int(existing),
				AlreadySettled: true,
				Message:        "week already settled",
			}, nil
		}
	}

	current, err := s.checkIns.ListByWeek(weekNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load current cohort for week %d: %w", weekNumber, err)
	}
	if len(current) == 0 {
		s.log.Info().Int("week", weekNumber).Msg("No check-ins this week, nothing to settle")
		return &Result{
			Success:    false,
			WeekNumber: weekNumber,
			Count:      0,
			Message:    "no check-ins this week",
		}, nil
	}

	priorWeek := s.cal.PrevWeekID(weekNumber)
	prior, err := s.checkIns.ListByWeek(priorWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior cohort for week %d: %w", priorWeek, err)
	}

	eligible := eligibleCandidates(current, prior)

	prommetrics.SetSettlementCohortSize("current", len(current))
	prommetrics.SetSettlementCohortSize("prior", len(prior))
	prommetrics.SetSettlementCohortSize("eligible", len(eligible))

	if len(eligible) == 0 {
		s.log.Info().
			Int("week", weekNumber).
			Int("current_cohort", len(current)).
			Int("prior_cohort", len(prior)).
			Msg("No users checked in on both weeks, nothing to rank")
		return &Result{
			Success:    false,
			WeekNumber: weekNumber,
			Count:      0,
			Message:    "no users with check-ins in both weeks",
		}, nil
	}

	rankCandidates(eligible)

	rewards := make([]models.Reward, 0, len(eligible))
	for i, cand := range eligible {
		rank := i + 1
		rewards = append(rewards, models.Reward{
			UserID:     cand.userID,
			WeekNumber: weekNumber,
			Rank:       rank,
			Tier:       models.TierForRank(rank),
			WeightDiff: cand.weightDiff,
		})
		prommetrics.ObserveWeightDiff(cand.weightDiff)
	}

	if err := s.rewards.ReplaceForWeek(weekNumber, rewards); err != nil {
		return nil, fmt.Errorf("failed to persist rewards for week %d: %w", weekNumber, err)
	}

	s.log.Info().
		Int("week", weekNumber).
		Int("ranked", len(rewards)).
		Int("current_cohort", len(current)).
		Dur("duration", time.Since(start)).
		Msg("Week settled")

	return &Result{
		Success:    true,
		WeekNumber: weekNumber,
		Count:      len(rewards),
		Message:    "settlement complete",
	}, nil
}

// eligibleCandidates keeps the users present in both cohorts. First-time
// check-ins have no baseline to diff against and are excluded.
func eligibleCandidates(current, prior []models.CheckIn) []candidate {
	priorByUser := make(map[uint]models.CheckIn, len(prior))
	for _, c := range prior {
		priorByUser[c.UserID] = c
	}

	eligible := make([]candidate, 0, len(current))
	for _, c := range current {
		last, ok := priorByUser[c.UserID]
		if !ok {
			continue
		}
		eligible = append(eligible, candidate{
			userID:     c.UserID,
			weightDiff: last.Weight - c.Weight,
			checkedAt:  c.CreatedAt,
		})
	}
	return eligible
}

// rankCandidates orders candidates into their final ranking: larger loss
// first, ties broken by earlier check-in, then by user ID for a
// deterministic total order.
func rankCandidates(cands []candidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].weightDiff != cands[j].weightDiff {
			return cands[i].weightDiff > cands[j].weightDiff
		}
		if !cands[i].checkedAt.Equal(cands[j].checkedAt) {
			return cands[i].checkedAt.Before(cands[j].checkedAt)
		}
		return cands[i].userID < cands[j].userID
	})
}

// lockFor returns the mutex serializing settlement of one week.
func (s *Service) lockFor(weekNumber int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[weekNumber]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[weekNumber] = lock
	}
	return lock
}
