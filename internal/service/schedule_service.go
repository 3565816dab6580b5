package service

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/talenttune/talenttune-api/internal/dto"
	"github.com/talenttune/talenttune-api/internal/models"
	"github.com/talenttune/talenttune-api/internal/repository"
)

// Lifecycle failure modes.
var (
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrNotYourSchedule      = errors.New("schedule belongs to another participant")
	ErrAlreadyConfirmed     = errors.New("attendance already confirmed")
	ErrReasonRequired       = errors.New("an absence requires a reason")
	ErrInvalidAttendance    = errors.New("attendance type must be hadir or tidak-hadir")
	ErrAttendanceFirst      = errors.New("attendance must be confirmed as present first")
	ErrParticipationClosed  = errors.New("participation was cancelled")
	ErrAnswersRequired      = errors.New("all questionnaire answers are required")
	ErrMaterialFileRequired = errors.New("a presentation file is required")
	ErrUnsupportedMaterial  = errors.New("material must be a PDF or PowerPoint document")
)

// FileUploader abstracts uploading binary data and returning a URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// ScheduleService drives a participant through the lifecycle gates:
// attendance confirmation, questionnaire, material upload. Gate state is
// persisted on the participant row so progress survives page reloads.
type ScheduleService interface {
	Get(ctx context.Context, participantID, actorID uint, actorRole models.Role) (dto.ScheduleProgressResponse, error)
	ConfirmAttendance(ctx context.Context, participantID, actorID uint, actorRole models.Role, payload dto.AttendanceRequest) (dto.ScheduleProgressResponse, error)
	SubmitQuestionnaire(ctx context.Context, participantID, actorID uint, actorRole models.Role, payload dto.QuestionnaireRequest) (dto.ScheduleProgressResponse, error)
	UploadMaterial(ctx context.Context, participantID, actorID uint, actorRole models.Role, file *multipart.FileHeader) (dto.ScheduleProgressResponse, error)
}

type scheduleService struct {
	assessments repository.AssessmentRepository
	uploader    FileUploader
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewScheduleService builds the lifecycle service.
func NewScheduleService(assessments repository.AssessmentRepository, uploader FileUploader, validate *validator.Validate, logger zerolog.Logger) ScheduleService {
	return &scheduleService{
		assessments: assessments,
		uploader:    uploader,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "schedule_service").Logger(),
	}
}

func (s *scheduleService) Get(ctx context.Context, participantID, actorID uint, actorRole models.Role) (dto.ScheduleProgressResponse, error) {
	participant, err := s.ownParticipant(ctx, participantID, actorID, actorRole)
	if err != nil {
		return dto.ScheduleProgressResponse{}, err
	}

	return dto.NewScheduleProgressResponse(participant), nil
}

// ConfirmAttendance is the first gate. Declining is terminal: progress jumps
// to 100, the display status flips to Canceled and the remaining gates are
// permanently rejected for this participation.
func (s *scheduleService) ConfirmAttendance(ctx context.Context, participantID, actorID uint, actorRole models.Role, payload dto.AttendanceRequest) (dto.ScheduleProgressResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScheduleProgressResponse{}, err
	}

	participant, err := s.ownParticipant(ctx, participantID, actorID, actorRole)
	if err != nil {
		return dto.ScheduleProgressResponse{}, err
	}

	if participant.Status == models.StatusCancelled {
		return dto.ScheduleProgressResponse{}, ErrParticipationClosed
	}

	if participant.AttendanceConfirmed {
		return dto.ScheduleProgressResponse{}, ErrAlreadyConfirmed
	}

	switch models.AttendanceType(payload.Type) {
	case models.AttendancePresent:
		participant.AttendanceConfirmed = true
		participant.AttendanceType = models.AttendancePresent
	case models.AttendanceAbsent:
		reason := strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason))
		if reason == "" {
			return dto.ScheduleProgressResponse{}, ErrReasonRequired
		}
		participant.AttendanceConfirmed = true
		participant.AttendanceType = models.AttendanceAbsent
		participant.AttendanceReason = reason
		participant.Status = models.StatusCancelled
	default:
		return dto.ScheduleProgressResponse{}, ErrInvalidAttendance
	}

	if err := s.assessments.UpdateParticipant(ctx, &participant); err != nil {
		return dto.ScheduleProgressResponse{}, err
	}

	s.logger.Info().
		Uint("participant_id", participant.ID).
		Str("attendance", string(participant.AttendanceType)).
		Msg("attendance confirmed")

	return dto.NewScheduleProgressResponse(participant), nil
}

func (s *scheduleService) SubmitQuestionnaire(ctx context.Context, participantID, actorID uint, actorRole models.Role, payload dto.QuestionnaireRequest) (dto.ScheduleProgressResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScheduleProgressResponse{}, err
	}

	participant, err := s.presentParticipant(ctx, participantID, actorID, actorRole)
	if err != nil {
		return dto.ScheduleProgressResponse{}, err
	}

	answer1 := strings.TrimSpace(s.sanitizer.Sanitize(payload.Question1))
	answer2 := strings.TrimSpace(s.sanitizer.Sanitize(payload.Question2))
	if answer1 == "" || answer2 == "" {
		return dto.ScheduleProgressResponse{}, ErrAnswersRequired
	}

	participant.QuestionnaireCompleted = true
	participant.QuestionnaireAnswer1 = answer1
	participant.QuestionnaireAnswer2 = answer2

	if err := s.assessments.UpdateParticipant(ctx, &participant); err != nil {
		return dto.ScheduleProgressResponse{}, err
	}

	s.logger.Info().Uint("participant_id", participant.ID).Msg("questionnaire submitted")

	return dto.NewScheduleProgressResponse(participant), nil
}

// UploadMaterial stores the presentation file. Re-invoking replaces the
// previous file reference without double-counting the progress contribution.
func (s *scheduleService) UploadMaterial(ctx context.Context, participantID, actorID uint, actorRole models.Role, file *multipart.FileHeader) (dto.ScheduleProgressResponse, error) {
	if file == nil {
		return dto.ScheduleProgressResponse{}, ErrMaterialFileRequired
	}

	participant, err := s.presentParticipant(ctx, participantID, actorID, actorRole)
	if err != nil {
		return dto.ScheduleProgressResponse{}, err
	}

	source, err := file.Open()
	if err != nil {
		return dto.ScheduleProgressResponse{}, err
	}
	defer source.Close()

	detected, err := mimetype.DetectReader(source)
	if err != nil {
		return dto.ScheduleProgressResponse{}, err
	}

	if !supportedMaterial(detected) {
		return dto.ScheduleProgressResponse{}, ErrUnsupportedMaterial
	}

	if _, err := source.Seek(0, io.SeekStart); err != nil {
		return dto.ScheduleProgressResponse{}, err
	}

	url, err := s.uploader.Upload(ctx, file.Filename, source)
	if err != nil {
		return dto.ScheduleProgressResponse{}, err
	}

	participant.MaterialUploaded = true
	participant.MaterialURL = url

	if err := s.assessments.UpdateParticipant(ctx, &participant); err != nil {
		return dto.ScheduleProgressResponse{}, err
	}

	s.logger.Info().
		Uint("participant_id", participant.ID).
		Str("mime", detected.String()).
		Msg("material uploaded")

	return dto.NewScheduleProgressResponse(participant), nil
}

func supportedMaterial(detected *mimetype.MIME) bool {
	allowed := []string{
		"application/pdf",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	}

	for _, mime := range allowed {
		if detected.Is(mime) {
			return true
		}
	}
	return false
}

// ownParticipant loads the row and enforces that the actor is the
// participant themselves or an administrator.
func (s *scheduleService) ownParticipant(ctx context.Context, participantID, actorID uint, actorRole models.Role) (models.AssessmentParticipant, error) {
	participant, err := s.assessments.GetParticipant(ctx, participantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AssessmentParticipant{}, ErrParticipantNotFound
		}
		return models.AssessmentParticipant{}, err
	}

	if participant.UserID != actorID && actorRole != models.RoleAdministrator {
		return models.AssessmentParticipant{}, ErrNotYourSchedule
	}

	return participant, nil
}

// presentParticipant additionally requires a confirmed-present attendance,
// rejecting both unconfirmed and cancelled participations. This is the
// server-side defence for out-of-order calls the interface never offers.
func (s *scheduleService) presentParticipant(ctx context.Context, participantID, actorID uint, actorRole models.Role) (models.AssessmentParticipant, error) {
	participant, err := s.ownParticipant(ctx, participantID, actorID, actorRole)
	if err != nil {
		return models.AssessmentParticipant{}, err
	}

	if participant.AttendanceConfirmed && participant.AttendanceType == models.AttendanceAbsent {
		return models.AssessmentParticipant{}, ErrParticipationClosed
	}

	if !participant.AttendanceConfirmed {
		return models.AssessmentParticipant{}, ErrAttendanceFirst
	}

	return participant, nil
}
