package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/dto"
	"github.com/noah-isme/gema-essay-api/internal/service"
	"github.com/noah-isme/gema-essay-api/internal/utils"
)

// AnalysisHandler exposes essay analysis endpoints.
type AnalysisHandler struct {
	service   service.AnalysisService
	rateLimit fiber.Handler
	logger    zerolog.Logger
}

// NewAnalysisHandler constructs the handler. rateLimit guards analysis
// requests and may be nil.
func NewAnalysisHandler(service service.AnalysisService, rateLimit fiber.Handler, logger zerolog.Logger) *AnalysisHandler {
	if rateLimit == nil {
		rateLimit = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &AnalysisHandler{
		service:   service,
		rateLimit: rateLimit,
		logger:    logger.With().Str("component", "analysis_handler").Logger(),
	}
}

// Register attaches the analysis routes.
func (h *AnalysisHandler) Register(router fiber.Router) {
	router.Post("/:id<int>/analysis", h.rateLimit, h.request)
	router.Get("/:id<int>/analysis", h.history)
}

func (h *AnalysisHandler) request(c *fiber.Ctx) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	essayID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AnalysisRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	response, err := h.service.RequestAnalysis(c.UserContext(), userID, essayID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	message := "analysis completed"
	switch {
	case response.Cached:
		message = "analysis served from cache"
	case response.UsedFallback:
		message = "analysis generated by fallback"
	}
	return utils.SendSuccess(c, message, response)
}

func (h *AnalysisHandler) history(c *fiber.Ctx) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	essayID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	history, err := h.service.History(c.UserContext(), userID, essayID, limit)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "analysis history retrieved", history)
}
