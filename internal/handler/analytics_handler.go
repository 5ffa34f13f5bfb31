package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/service"
	"github.com/noah-isme/gema-essay-api/internal/utils"
)

// AnalyticsHandler exposes read-only essay analytics.
type AnalyticsHandler struct {
	service service.EssayAnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(service service.EssayAnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches the analytics routes.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/progress", h.progress)
	router.Get("/:id<int>/analytics", h.essay)
}

func (h *AnalyticsHandler) progress(c *fiber.Ctx) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	progress, err := h.service.GetProgress(c.UserContext(), userID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}

func (h *AnalyticsHandler) essay(c *fiber.Ctx) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	essayID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	analytics, err := h.service.GetAnalytics(c.UserContext(), userID, essayID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "analytics retrieved", analytics)
}
