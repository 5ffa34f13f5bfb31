package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/dto"
	"github.com/noah-isme/gema-essay-api/internal/service"
	"github.com/noah-isme/gema-essay-api/internal/utils"
)

// EssayHandler exposes essay content and version endpoints.
type EssayHandler struct {
	service service.EssayService
	logger  zerolog.Logger
}

// NewEssayHandler constructs the handler.
func NewEssayHandler(service service.EssayService, logger zerolog.Logger) *EssayHandler {
	return &EssayHandler{
		service: service,
		logger:  logger.With().Str("component", "essay_handler").Logger(),
	}
}

// Register attaches the essay routes to the provided router group.
func (h *EssayHandler) Register(router fiber.Router) {
	router.Post("/content", h.saveContent)
	router.Post("/autosave", h.autoSave)
	router.Get("/:id<int>", h.get)
	router.Get("/:id<int>/versions", h.listVersions)
	router.Post("/:id<int>/versions", h.saveVersion)
	router.Post("/:id<int>/versions/:versionId<int>/restore", h.restoreVersion)
	router.Delete("/:id<int>/versions/:versionId<int>", h.deleteVersion)
}

func (h *EssayHandler) saveContent(c *fiber.Ctx) error {
	return h.save(c, false)
}

func (h *EssayHandler) autoSave(c *fiber.Ctx) error {
	return h.save(c, true)
}

func (h *EssayHandler) save(c *fiber.Ctx, auto bool) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.EssaySaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var response dto.EssaySaveResponse
	if auto {
		response, err = h.service.AutoSave(c.UserContext(), userID, payload)
	} else {
		response, err = h.service.SaveContent(c.UserContext(), userID, payload)
	}
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	message := "essay saved"
	if auto {
		message = "essay auto-saved"
	}
	return utils.SendSuccess(c, message, response)
}

func (h *EssayHandler) get(c *fiber.Ctx) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	essayID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	detail, err := h.service.Get(c.UserContext(), userID, essayID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "essay retrieved", detail)
}

func (h *EssayHandler) listVersions(c *fiber.Ctx) error {
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

	versions, err := h.service.ListVersions(c.UserContext(), userID, essayID, limit)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "versions retrieved", versions)
}

func (h *EssayHandler) saveVersion(c *fiber.Ctx) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	essayID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EssayVersionCreateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	response, err := h.service.SaveVersion(c.UserContext(), userID, essayID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "version saved", response)
}

func (h *EssayHandler) restoreVersion(c *fiber.Ctx) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	essayID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	versionID, err := parseUintParam(c, "versionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.RestoreVersion(c.UserContext(), userID, essayID, versionID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "version restored", response)
}

func (h *EssayHandler) deleteVersion(c *fiber.Ctx) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	essayID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	versionID, err := parseUintParam(c, "versionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteVersion(c.UserContext(), userID, essayID, versionID); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "version deleted", nil)
}
