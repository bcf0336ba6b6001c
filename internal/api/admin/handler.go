// Package admin exposes the operator endpoints: the manual settlement
// trigger and the certificate background configuration.
package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/slimcircle/slimcircle/internal/api/response"
	prommetrics "github.com/slimcircle/slimcircle/internal/metrics"
	"github.com/slimcircle/slimcircle/internal/models"
	"github.com/slimcircle/slimcircle/internal/repository"
	"github.com/slimcircle/slimcircle/internal/service/board"
	"github.com/slimcircle/slimcircle/internal/service/settlement"
	"github.com/slimcircle/slimcircle/internal/week"
	"github.com/slimcircle/slimcircle/pkg/logger"
)

var errInvalidWeek = errors.New("week and year must both be given as numbers")

// SettlementService triggers settlement runs.
type SettlementService interface {
	Settle(ctx context.Context, weekNumber int, force bool) (*settlement.Result, error)
}

// BoardService invalidates read-side caches after a settlement.
type BoardService interface {
	InvalidateWeek(ctx context.Context, weekNumber int)
}

// CertConfigStore reads and writes certificate backgrounds.
type CertConfigStore interface {
	Get(weekNumber *int) (*models.CertConfig, error)
	Upsert(cfg *models.CertConfig) error
}

// Handler handles administrative API requests.
type Handler struct {
	settlementService SettlementService
	boardService      BoardService
	certs             CertConfigStore
	secret            string
	log               *logger.Logger
}

// NewHandler creates a new admin handler with concrete service types.
func NewHandler(
	settlementService *settlement.Service,
	boardService *board.Service,
	certRepo *repository.CertConfigRepository,
	secret string,
	log *logger.Logger,
) *Handler {
	return NewHandlerWithInterfaces(settlementService, boardService, certRepo, secret, log)
}

// NewHandlerWithInterfaces creates a new admin handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(
	settlementService SettlementService,
	boardService BoardService,
	certs CertConfigStore,
	secret string,
	log *logger.Logger,
) *Handler {
	return &Handler{
		settlementService: settlementService,
		boardService:      boardService,
		certs:             certs,
		secret:            secret,
		log:               log,
	}
}

// RegisterRoutes mounts the admin endpoints behind the bearer-secret check.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin", h.requireSecret)
	admin.POST("/settle", h.Settle)
	admin.GET("/cert-config", h.GetCertConfig)
	admin.POST("/cert-config", h.SetCertConfig)
}

// requireSecret rejects requests without the configured bearer secret.
func (h *Handler) requireSecret(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || h.secret == "" || token != h.secret {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		c.Abort()
		return
	}
	c.Next()
}

// Settle triggers a settlement run.
// POST /api/v1/admin/settle?week=26&year=2026&force=true.
// Omitting week and year settles the current week; force defaults to true.
func (h *Handler) Settle(c *gin.Context) {
	weekNumber, err := h.parseTargetWeek(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	force := true
	if raw := c.Query("force"); raw != "" {
		force, err = strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "force must be a boolean")
			return
		}
	}

	result, err := h.settlementService.Settle(c.Request.Context(), weekNumber, force)
	if err != nil {
		h.log.Error().Err(err).Int("week", weekNumber).Msg("Manual settlement failed")
		prommetrics.RecordSettlementRun("manual", "error")
		response.Error(c, http.StatusInternalServerError, "settlement failed")
		return
	}

	switch {
	case result.Success:
		prommetrics.RecordSettlementRun("manual", "success")
		if h.boardService != nil {
			h.boardService.InvalidateWeek(c.Request.Context(), result.WeekNumber)
		}
		response.OK(c, result)
	case result.AlreadySettled:
		prommetrics.RecordSettlementRun("manual", "skipped")
		response.ErrorWithData(c, http.StatusBadRequest, result.Message, result)
	default:
		// No check-ins, or nobody eligible
		prommetrics.RecordSettlementRun("manual", "empty")
		response.ErrorWithData(c, http.StatusNotFound, result.Message, result)
	}
}

// parseTargetWeek resolves the week and year query parameters. Both empty
// means the current week (week number zero, resolved by the engine).
func (h *Handler) parseTargetWeek(c *gin.Context) (int, error) {
	rawWeek := c.Query("week")
	rawYear := c.Query("year")
	if rawWeek == "" && rawYear == "" {
		return 0, nil
	}
	if rawWeek == "" || rawYear == "" {
		return 0, errInvalidWeek
	}

	wk, err := strconv.Atoi(rawWeek)
	if err != nil {
		return 0, errInvalidWeek
	}
	year, err := strconv.Atoi(rawYear)
	if err != nil {
		return 0, errInvalidWeek
	}

	weekNumber := week.Compose(year, wk)
	if err := week.Validate(weekNumber); err != nil {
		return 0, err
	}
	return weekNumber, nil
}

// GetCertConfig returns the certificate backgrounds for a week, or the
// default set when the week parameter is omitted.
// GET /api/v1/admin/cert-config?week=202602.
func (h *Handler) GetCertConfig(c *gin.Context) {
	var weekNumber *int
	if raw := c.Query("week"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "week must be a number")
			return
		}
		weekNumber = &n
	}

	cfg, err := h.certs.Get(weekNumber)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load certificate config")
		response.Error(c, http.StatusInternalServerError, "failed to load certificate config")
		return
	}
	if cfg == nil {
		response.Error(c, http.StatusNotFound, "certificate config not found")
		return
	}
	response.OK(c, cfg)
}

type certConfigRequest struct {
	WeekNumber     *int   `json:"weekNumber"`
	ImgGold        string `json:"imgGold" binding:"required"`
	ImgSilver      string `json:"imgSilver" binding:"required"`
	ImgBronze      string `json:"imgBronze" binding:"required"`
	ImgParticipate string `json:"imgParticipate" binding:"required"`
}

// SetCertConfig creates or replaces the certificate backgrounds for a week
// (or the default set when weekNumber is null).
// POST /api/v1/admin/cert-config.
func (h *Handler) SetCertConfig(c *gin.Context) {
	var req certConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "all four image URLs are required")
		return
	}
	if req.WeekNumber != nil {
		if err := week.Validate(*req.WeekNumber); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	cfg := &models.CertConfig{
		WeekNumber:     req.WeekNumber,
		ImgGold:        req.ImgGold,
		ImgSilver:      req.ImgSilver,
		ImgBronze:      req.ImgBronze,
		ImgParticipate: req.ImgParticipate,
	}
	if err := h.certs.Upsert(cfg); err != nil {
		h.log.Error().Err(err).Msg("Failed to save certificate config")
		response.Error(c, http.StatusInternalServerError, "failed to save certificate config")
		return
	}
	response.OK(c, cfg)
}
