// Package board exposes the read-side endpoints: weekly leaderboard, the
// settled-weeks index, the hall of fame and per-user honor walls.
package board

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/slimcircle/slimcircle/internal/api/response"
	"github.com/slimcircle/slimcircle/internal/service/board"
	"github.com/slimcircle/slimcircle/internal/week"
	"github.com/slimcircle/slimcircle/pkg/logger"
)

// Service is the read-side dependency.
type Service interface {
	GetLeaderboard(ctx context.Context, weekNumber int) (*board.Leaderboard, error)
	ListSettledWeeks(ctx context.Context) ([]int, error)
	GetHallOfFame(ctx context.Context) ([]board.FameEntry, error)
	GetHonorWall(ctx context.Context, userID uint) (*board.HonorWall, error)
}

// Handler handles board API requests.
type Handler struct {
	service Service
	cal     *week.Calendar
	clock   week.Clock
	log     *logger.Logger
}

// NewHandler creates a new board handler.
func NewHandler(service *board.Service, cal *week.Calendar, clock week.Clock, log *logger.Logger) *Handler {
	return NewHandlerWithInterfaces(service, cal, clock, log)
}

// NewHandlerWithInterfaces creates a new board handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(service Service, cal *week.Calendar, clock week.Clock, log *logger.Logger) *Handler {
	return &Handler{service: service, cal: cal, clock: clock, log: log}
}

// RegisterRoutes mounts the board endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leaderboard", h.GetLeaderboard)
	rg.GET("/leaderboard/weeks", h.ListSettledWeeks)
	rg.GET("/hall-of-fame", h.GetHallOfFame)
	rg.GET("/users/:id/rewards", h.GetHonorWall)
}

// GetLeaderboard returns the settled ranking for a week, defaulting to the
// week containing now.
// GET /api/v1/leaderboard?week=202602.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	weekNumber := h.cal.WeekIDOf(h.clock.Now())
	if raw := c.Query("week"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "week must be a number")
			return
		}
		weekNumber = n
	}
	if err := week.Validate(weekNumber); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	leaderboard, err := h.service.GetLeaderboard(c.Request.Context(), weekNumber)
	if err != nil {
		h.log.Error().Err(err).Int("week", weekNumber).Msg("Leaderboard query failed")
		response.Error(c, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	response.OK(c, leaderboard)
}

// ListSettledWeeks returns the weeks with a settled ranking, newest first.
// GET /api/v1/leaderboard/weeks.
func (h *Handler) ListSettledWeeks(c *gin.Context) {
	weeks, err := h.service.ListSettledWeeks(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Settled weeks query failed")
		response.Error(c, http.StatusInternalServerError, "failed to load settled weeks")
		return
	}
	response.OK(c, weeks)
}

// GetHallOfFame returns the all-time top list.
// GET /api/v1/hall-of-fame.
func (h *Handler) GetHallOfFame(c *gin.Context) {
	entries, err := h.service.GetHallOfFame(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Hall of fame query failed")
		response.Error(c, http.StatusInternalServerError, "failed to load hall of fame")
		return
	}
	response.OK(c, entries)
}

// GetHonorWall returns a user's reward history.
// GET /api/v1/users/:id/rewards.
func (h *Handler) GetHonorWall(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	wall, err := h.service.GetHonorWall(c.Request.Context(), uint(id))
	if err != nil {
		h.log.Error().Err(err).Uint64("user_id", id).Msg("Honor wall query failed")
		response.Error(c, http.StatusInternalServerError, "failed to load honor wall")
		return
	}
	response.OK(c, wall)
}
