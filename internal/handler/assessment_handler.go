package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/talenttune/talenttune-api/internal/dto"
	"github.com/talenttune/talenttune-api/internal/middleware"
	"github.com/talenttune/talenttune-api/internal/service"
	"github.com/talenttune/talenttune-api/internal/utils"
)

// AssessmentHandler exposes the assessment aggregate endpoints. Creation is
// restricted to administrators at the router; list and detail apply
// role-based scoping inside the service.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs an assessment handler.
func NewAssessmentHandler(assessmentService service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: assessmentService,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register wires routes visible to every authenticated role.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.detail)
}

// RegisterAdmin wires the administrator-only routes.
func (h *AssessmentHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
}

func (h *AssessmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssessmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assessment, err := h.service.Create(c.Context(), payload)
	if err != nil {
		if status, ok := assessmentErrorStatus(err); ok {
			return utils.SendError(c, status, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create assessment")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create assessment")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment created", assessment)
}

func (h *AssessmentHandler) list(c *fiber.Ctx) error {
	viewerID, ok := middleware.SessionUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	viewerRole, _ := middleware.SessionRole(c)

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	query := dto.AssessmentListQuery{
		Page:   page,
		Limit:  limit,
		Status: strings.TrimSpace(c.Query("status")),
	}

	result, err := h.service.List(c.Context(), viewerID, viewerRole, query)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list assessments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list assessments")
	}

	return utils.SendSuccess(c, "assessments retrieved", result)
}

func (h *AssessmentHandler) detail(c *fiber.Ctx) error {
	viewerID, ok := middleware.SessionUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	viewerRole, _ := middleware.SessionRole(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assessment id")
	}

	assessment, err := h.service.Get(c.Context(), id, viewerID, viewerRole)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssessmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAssessmentForbidden):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to load assessment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to load assessment")
		}
	}

	return utils.SendSuccess(c, "assessment retrieved", assessment)
}

// assessmentErrorStatus maps creation failures onto the status codes the
// client distinguishes between.
func assessmentErrorStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrMissingCoreFields),
		errors.Is(err, service.ErrInvalidMethod),
		errors.Is(err, service.ErrRoomRequired),
		errors.Is(err, service.ErrLinkRequired),
		errors.Is(err, service.ErrMembersRequired),
		errors.Is(err, service.ErrScheduleRequired),
		errors.Is(err, service.ErrInvalidScheduleValue),
		errors.Is(err, service.ErrEvaluatorMissing),
		errors.Is(err, service.ErrParticipantMissing),
		isValidationError(err):
		return fiber.StatusBadRequest, true
	default:
		return 0, false
	}
}
