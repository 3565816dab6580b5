package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/talenttune/talenttune-api/internal/dto"
	"github.com/talenttune/talenttune-api/internal/middleware"
	"github.com/talenttune/talenttune-api/internal/models"
	"github.com/talenttune/talenttune-api/internal/service"
	"github.com/talenttune/talenttune-api/internal/utils"
)

// ScheduleHandler exposes the participant lifecycle endpoints: progress
// lookup, attendance confirmation, questionnaire submission and material
// upload.
type ScheduleHandler struct {
	service service.ScheduleService
	logger  zerolog.Logger
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(scheduleService service.ScheduleService, logger zerolog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: scheduleService,
		logger:  logger.With().Str("component", "schedule_handler").Logger(),
	}
}

// Register wires lifecycle routes. All of them require a session; ownership
// is enforced by the service.
func (h *ScheduleHandler) Register(router fiber.Router) {
	router.Get("/:id", h.progress)
	router.Post("/:id/attendance", h.attendance)
	router.Post("/:id/questionnaire", h.questionnaire)
	router.Post("/:id/material", h.material)
}

func (h *ScheduleHandler) progress(c *fiber.Ctx) error {
	id, actorID, actorRole, err := h.scheduleActor(c)
	if err != nil {
		return err
	}

	progress, err := h.service.Get(c.Context(), id, actorID, actorRole)
	if err != nil {
		return h.scheduleError(c, err, "failed to load schedule")
	}

	return utils.SendSuccess(c, "schedule retrieved", progress)
}

func (h *ScheduleHandler) attendance(c *fiber.Ctx) error {
	id, actorID, actorRole, err := h.scheduleActor(c)
	if err != nil {
		return err
	}

	var payload dto.AttendanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	progress, err := h.service.ConfirmAttendance(c.Context(), id, actorID, actorRole, payload)
	if err != nil {
		return h.scheduleError(c, err, "failed to confirm attendance")
	}

	return utils.SendSuccess(c, "attendance confirmed", progress)
}

func (h *ScheduleHandler) questionnaire(c *fiber.Ctx) error {
	id, actorID, actorRole, err := h.scheduleActor(c)
	if err != nil {
		return err
	}

	var payload dto.QuestionnaireRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	progress, err := h.service.SubmitQuestionnaire(c.Context(), id, actorID, actorRole, payload)
	if err != nil {
		return h.scheduleError(c, err, "failed to submit questionnaire")
	}

	return utils.SendSuccess(c, "questionnaire submitted", progress)
}

func (h *ScheduleHandler) material(c *fiber.Ctx) error {
	id, actorID, actorRole, err := h.scheduleActor(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	progress, err := h.service.UploadMaterial(c.Context(), id, actorID, actorRole, file)
	if err != nil {
		return h.scheduleError(c, err, "failed to upload material")
	}

	return utils.SendSuccess(c, "material uploaded", progress)
}

func (h *ScheduleHandler) scheduleActor(c *fiber.Ctx) (uint, uint, models.Role, error) {
	actorID, ok := middleware.SessionUserID(c)
	if !ok {
		return 0, 0, "", utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	actorRole, _ := middleware.SessionRole(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return 0, 0, "", utils.SendError(c, fiber.StatusBadRequest, "invalid schedule id")
	}

	return id, actorID, actorRole, nil
}

func (h *ScheduleHandler) scheduleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrParticipantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotYourSchedule):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAlreadyConfirmed),
		errors.Is(err, service.ErrParticipationClosed):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrReasonRequired),
		errors.Is(err, service.ErrInvalidAttendance),
		errors.Is(err, service.ErrAttendanceFirst),
		errors.Is(err, service.ErrAnswersRequired),
		errors.Is(err, service.ErrMaterialFileRequired),
		errors.Is(err, service.ErrUnsupportedMaterial),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
