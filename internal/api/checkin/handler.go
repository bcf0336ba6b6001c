// Package checkin exposes the weigh-in submission endpoints. User identity
// arrives as an opaque id header set by the authenticating front proxy.
package checkin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/slimcircle/slimcircle/internal/api/response"
	"github.com/slimcircle/slimcircle/internal/models"
	"github.com/slimcircle/slimcircle/internal/service/checkin"
	"github.com/slimcircle/slimcircle/pkg/logger"
)

// UserIDHeader carries the authenticated user id set by the front proxy.
const UserIDHeader = "X-User-ID"

// Service is the submission flow dependency.
type Service interface {
	Submit(ctx context.Context, userID uint, weight float64, photoURL string) (*models.CheckIn, error)
	Status(ctx context.Context, userID uint) (*checkin.WeekStatus, error)
	History(ctx context.Context, userID uint) ([]models.CheckIn, error)
}

// Handler handles check-in API requests.
type Handler struct {
	service Service
	log     *logger.Logger
}

// NewHandler creates a new check-in handler.
func NewHandler(service *checkin.Service, log *logger.Logger) *Handler {
	return NewHandlerWithInterfaces(service, log)
}

// NewHandlerWithInterfaces creates a new check-in handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(service Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes mounts the check-in endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/checkin", h.Submit)
	rg.GET("/checkin/status", h.Status)
	rg.GET("/checkin/history", h.History)
}

type submitRequest struct {
	Weight   float64 `json:"weight" binding:"required"`
	PhotoURL string  `json:"photoUrl" binding:"required"`
}

// Submit records a weigh-in for the current week.
// POST /api/v1/checkin.
func (h *Handler) Submit(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "weight and photoUrl are required")
		return
	}

	result, err := h.service.Submit(c.Request.Context(), userID, req.Weight, req.PhotoURL)
	if err != nil {
		switch {
		case errors.Is(err, checkin.ErrWindowClosed):
			response.Error(c, http.StatusForbidden, "check-in window is closed")
		case errors.Is(err, checkin.ErrWeightOutOfRange):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Uint("user_id", userID).Msg("Check-in submission failed")
			response.Error(c, http.StatusInternalServerError, "failed to save check-in")
		}
		return
	}
	response.OK(c, result)
}

// Status reports the caller's standing in the current week.
// GET /api/v1/checkin/status.
func (h *Handler) Status(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	status, err := h.service.Status(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Check-in status query failed")
		response.Error(c, http.StatusInternalServerError, "failed to load status")
		return
	}
	response.OK(c, status)
}

// History returns the caller's weigh-in history.
// GET /api/v1/checkin/history.
func (h *Handler) History(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	checkIns, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Check-in history query failed")
		response.Error(c, http.StatusInternalServerError, "failed to load history")
		return
	}
	response.OK(c, checkIns)
}

// userID extracts the authenticated user id, writing the error response
// itself when the header is missing or malformed.
func (h *Handler) userID(c *gin.Context) (uint, bool) {
	raw := c.GetHeader(UserIDHeader)
	if raw == "" {
		response.Error(c, http.StatusUnauthorized, "missing user identity")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusUnauthorized, "invalid user identity")
		return 0, false
	}
	return uint(id), true
}
