// Package board provides the read side of the weekly competition: the
// per-week leaderboard, the all-time hall of fame and the per-user honor
// wall. Responses are cached in Redis and invalidated when a week settles.
package board

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/slimcircle/slimcircle/internal/cache"
	"github.com/slimcircle/slimcircle/internal/models"
	"github.com/slimcircle/slimcircle/internal/repository"
	"github.com/slimcircle/slimcircle/internal/week"
	"github.com/slimcircle/slimcircle/pkg/logger"
)

// Points awarded per reward tier when ranking the hall of fame.
var fameScores = map[int]int{
	models.TierChampion:    5,
	models.TierRunnerUp:    3,
	models.TierThird:       2,
	models.TierParticipant: 1,
}

const fameLimit = 5

// RewardStore is the reward persistence dependency of the board queries.
type RewardStore interface {
	ListByWeek(weekNumber int) ([]models.Reward, error)
	ListByUser(userID uint) ([]models.Reward, error)
	ListAll() ([]models.Reward, error)
	ListSettledWeeks() ([]int, error)
}

// CertConfigStore resolves certificate backgrounds per week.
type CertConfigStore interface {
	GetForWeek(weekNumber int) (*models.CertConfig, error)
}

// Entry is one row of a weekly leaderboard.
type Entry struct {
	Rank           int     `json:"rank"`
	UserID         uint    `json:"userId"`
	Nickname       string  `json:"nickname"`
	Avatar         string  `json:"avatar"`
	Tier           int     `json:"tier"`
	TierName       string  `json:"tierName"`
	WeightDiff     float64 `json:"weightDiff"`
	CertificateURL string  `json:"certificateUrl,omitempty"`
}

// Leaderboard is the settled ranking of one week.
type Leaderboard struct {
	WeekNumber int        `json:"weekNumber"`
	Settled    bool       `json:"settled"`
	SettledAt  *time.Time `json:"settledAt,omitempty"`
	Entries    []Entry    `json:"entries"`
}

// FameEntry is one row of the all-time hall of fame.
type FameEntry struct {
	Rank      int    `json:"rank"`
	UserID    uint   `json:"userId"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	Score     int    `json:"score"`
	Weeks     int    `json:"weeks"`
	Champions int    `json:"champions"`
	RunnerUps int    `json:"runnerUps"`
	Thirds    int    `json:"thirds"`
}

// Certificate is one honor-wall item with its rendered background.
type Certificate struct {
	WeekNumber int       `json:"weekNumber"`
	WeekStart  time.Time `json:"weekStart"`
	Rank       int       `json:"rank"`
	Tier       int       `json:"tier"`
	TierName   string    `json:"tierName"`
	WeightDiff float64   `json:"weightDiff"`
	ImageURL   string    `json:"imageUrl,omitempty"`
}

// HonorWall is a user's reward history.
type HonorWall struct {
	UserID       uint          `json:"userId"`
	Champions    int           `json:"champions"`
	RunnerUps    int           `json:"runnerUps"`
	Thirds       int           `json:"thirds"`
	Participants int           `json:"participants"`
	Certificates []Certificate `json:"certificates"`
}

// Service serves board queries backed by the reward table and a read cache.
type Service struct {
	cal      *week.Calendar
	rewards  RewardStore
	certs    CertConfigStore
	cache    cache.Cache
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewService creates a new board service with concrete repository types.
func NewService(
	cal *week.Calendar,
	rewardRepo *repository.RewardRepository,
	certRepo *repository.CertConfigRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(cal, rewardRepo, certRepo, c, cacheTTL, log)
}

// NewServiceWithInterfaces creates a new board service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	cal *week.Calendar,
	rewards RewardStore,
	certs CertConfigStore,
	c cache.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		cal:      cal,
		rewards:  rewards,
		certs:    certs,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func leaderboardKey(weekNumber int) string {
	return fmt.Sprintf("board:leaderboard:%d", weekNumber)
}

const hallOfFameKey = "board:halloffame"

// GetLeaderboard returns the settled ranking for a week. An unsettled week
// yields an empty leaderboard with Settled=false rather than an error.
func (s *Service) GetLeaderboard(ctx context.Context, weekNumber int) (*Leaderboard, error) {
	if err := week.Validate(weekNumber); err != nil {
		return nil, err
	}

	if board, ok := s.cachedLeaderboard(ctx, weekNumber); ok {
		return board, nil
	}

	rewards, err := s.rewards.ListByWeek(weekNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards for week %d: %w", weekNumber, err)
	}

	board := &Leaderboard{
		WeekNumber: weekNumber,
		Entries:    make([]Entry, 0, len(rewards)),
	}
	for _, r := range rewards {
		board.Entries = append(board.Entries, Entry{
			Rank:           r.Rank,
			UserID:         r.UserID,
			Nickname:       r.User.DisplayName(),
			Avatar:         r.User.Avatar,
			Tier:           r.Tier,
			TierName:       models.TierName(r.Tier),
			WeightDiff:     r.WeightDiff,
			CertificateURL: r.CertificateURL,
		})
	}
	if len(rewards) > 0 {
		board.Settled = true
		settledAt := rewards[0].CreatedAt
		board.SettledAt = &settledAt
	}

	s.storeInCache(ctx, leaderboardKey(weekNumber), board)
	return board, nil
}

// ListSettledWeeks returns the weeks that have a reward set, most recent
// first. Malformed week numbers that slipped into storage are dropped.
func (s *Service) ListSettledWeeks(ctx context.Context) ([]int, error) {
	weeks, err := s.rewards.ListSettledWeeks()
	if err != nil {
		return nil, fmt.Errorf("failed to list settled weeks: %w", err)
	}

	valid := make([]int, 0, len(weeks))
	for _, w := range weeks {
		if err := week.Validate(w); err != nil {
			s.log.Warn().Int("week", w).Msg("Dropping malformed week number from settled list")
			continue
		}
		valid = append(valid, w)
	}
	return valid, nil
}

// GetHallOfFame aggregates every settled week into an all-time top list.
// Scoring: champion 5, runner-up 3, third 2, participation 1.
func (s *Service) GetHallOfFame(ctx context.Context) ([]FameEntry, error) {
	if cached, ok := s.cachedHallOfFame(ctx); ok {
		return cached, nil
	}

	rewards, err := s.rewards.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}

	byUser := make(map[uint]*FameEntry)
	for _, r := range rewards {
		entry, ok := byUser[r.UserID]
		if !ok {
			entry = &FameEntry{
				UserID:   r.UserID,
				Nickname: r.User.DisplayName(),
				Avatar:   r.User.Avatar,
			}
			byUser[r.UserID] = entry
		}
		entry.Score += fameScores[r.Tier]
		entry.Weeks++
		switch r.Tier {
		case models.TierChampion:
			entry.Champions++
		case models.TierRunnerUp:
			entry.RunnerUps++
		case models.TierThird:
			entry.Thirds++
		}
	}

	entries := make([]FameEntry, 0, len(byUser))
	for _, e := range byUser {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].Weeks != entries[j].Weeks {
			return entries[i].Weeks > entries[j].Weeks
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > fameLimit {
		entries = entries[:fameLimit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	s.storeInCache(ctx, hallOfFameKey, entries)
	return entries, nil
}

// GetHonorWall returns a user's reward history with certificate images
// resolved against the per-week or default certificate configuration.
func (s *Service) GetHonorWall(ctx context.Context, userID uint) (*HonorWall, error) {
	rewards, err := s.rewards.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards for user %d: %w", userID, err)
	}

	wall := &HonorWall{
		UserID:       userID,
		Certificates: make([]Certificate, 0, len(rewards)),
	}
	for _, r := range rewards {
		switch r.Tier {
		case models.TierChampion:
			wall.Champions++
		case models.TierRunnerUp:
			wall.RunnerUps++
		case models.TierThird:
			wall.Thirds++
		default:
			wall.Participants++
		}

		wall.Certificates = append(wall.Certificates, Certificate{
			WeekNumber: r.WeekNumber,
			WeekStart:  s.cal.WeekMonday(r.WeekNumber),
			Rank:       r.Rank,
			Tier:       r.Tier,
			TierName:   models.TierName(r.Tier),
			WeightDiff: r.WeightDiff,
			ImageURL:   s.certificateImage(&r),
		})
	}
	return wall, nil
}

// InvalidateWeek drops the cached payloads a settlement run made stale.
func (s *Service) InvalidateWeek(ctx context.Context, weekNumber int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, leaderboardKey(weekNumber), hallOfFameKey); err != nil {
		s.log.Warn().Err(err).Int("week", weekNumber).Msg("Failed to invalidate board cache")
	}
}

// certificateImage prefers a rendered certificate stored on the reward and
// falls back to the configured background for the tier.
func (s *Service) certificateImage(r *models.Reward) string {
	if r.CertificateURL != "" {
		return r.CertificateURL
	}
	cfg, err := s.certs.GetForWeek(r.WeekNumber)
	if err != nil {
		s.log.Warn().Err(err).Int("week", r.WeekNumber).Msg("Failed to load certificate config")
		return ""
	}
	if cfg == nil {
		return ""
	}
	return cfg.ImageForTier(r.Tier)
}

func (s *Service) cachedLeaderboard(ctx context.Context, weekNumber int) (*Leaderboard, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, leaderboardKey(weekNumber))
	if err != nil {
		s.log.Warn().Err(err).Msg("Board cache read failed")
		return nil, false
	}
	if raw == "" {
		return nil, false
	}
	var board Leaderboard
	if err := json.Unmarshal([]byte(raw), &board); err != nil {
		s.log.Warn().Err(err).Msg("Dropping undecodable cached leaderboard")
		return nil, false
	}
	return &board, true
}

func (s *Service) cachedHallOfFame(ctx context.Context) ([]FameEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, hallOfFameKey)
	if err != nil || raw == "" {
		return nil, false
	}
	var entries []FameEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.log.Warn().Err(err).Msg("Dropping undecodable cached hall of fame")
		return nil, false
	}
	return entries, true
}

func (s *Service) storeInCache(ctx context.Context, key string, payload interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to encode board payload for cache")
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Board cache write failed")
	}
}
