package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/talenttune/talenttune-api/internal/dto"
	"github.com/talenttune/talenttune-api/internal/models"
	"github.com/talenttune/talenttune-api/internal/repository"
)

// Assessment creation failure modes. Each violated rule keeps its own
// sentinel so the handler can render a precise message.
var (
	ErrAssessmentNotFound   = errors.New("assessment not found")
	ErrAssessmentForbidden  = errors.New("not allowed to view this assessment")
	ErrMissingCoreFields    = errors.New("judul, materi, and metodePelaksanaan are required")
	ErrInvalidMethod        = errors.New("metodePelaksanaan must be offline or online")
	ErrRoomRequired         = errors.New("room is required for offline assessments")
	ErrLinkRequired         = errors.New("meeting link is required for online assessments")
	ErrMembersRequired      = errors.New("at least one evaluator and one participant are required")
	ErrScheduleRequired     = errors.New("every participant needs a schedule")
	ErrEvaluatorMissing     = errors.New("referenced evaluator does not exist or lacks the EVALUATOR role")
	ErrParticipantMissing   = errors.New("referenced participant does not exist or lacks the USER role")
	ErrInvalidScheduleValue = errors.New("participant schedule must be a valid RFC3339 timestamp")
)

// AssessmentService exposes the scheduling aggregate use cases. Listing is
// role-scoped: regular users see only their own participation, evaluators
// only assigned assessments, administrators everything.
type AssessmentService interface {
	Create(ctx context.Context, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error)
	List(ctx context.Context, viewerID uint, viewerRole models.Role, query dto.AssessmentListQuery) (dto.AssessmentListResponse, error)
	Get(ctx context.Context, id uint, viewerID uint, viewerRole models.Role) (dto.AssessmentResponse, error)
}

type assessmentService struct {
	assessments repository.AssessmentRepository
	users       repository.UserRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewAssessmentService builds the assessment service.
func NewAssessmentService(assessments repository.AssessmentRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		assessments: assessments,
		users:       users,
		validator:   validate,
		logger:      logger.With().Str("component", "assessment_service").Logger(),
		tracer:      otel.Tracer("assessment-service"),
	}
}

func (s *assessmentService) Create(ctx context.Context, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.create")
	defer span.End()

	if payload.Judul == "" || payload.Materi == "" || payload.MetodePelaksanaan == "" {
		return dto.AssessmentResponse{}, ErrMissingCoreFields
	}

	method, ok := models.ParseDeliveryMethod(payload.MetodePelaksanaan)
	if !ok {
		return dto.AssessmentResponse{}, ErrInvalidMethod
	}

	switch method {
	case models.MethodOffline:
		if payload.Ruangan == "" {
			return dto.AssessmentResponse{}, ErrRoomRequired
		}
	case models.MethodOnline:
		if payload.LinkOnline == "" {
			return dto.AssessmentResponse{}, ErrLinkRequired
		}
	}

	evaluatorIDs := dedupeIDs(payload.Evaluators)
	participants := dedupeParticipants(payload.Participants)
	if len(evaluatorIDs) == 0 || len(participants) == 0 {
		return dto.AssessmentResponse{}, ErrMembersRequired
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}

	evaluatorRows := make([]models.AssessmentEvaluator, 0, len(evaluatorIDs))
	for _, id := range evaluatorIDs {
		if err := s.requireRole(ctx, id, models.RoleEvaluator, ErrEvaluatorMissing); err != nil {
			return dto.AssessmentResponse{}, err
		}
		evaluatorRows = append(evaluatorRows, models.AssessmentEvaluator{UserID: id})
	}

	participantRows := make([]models.AssessmentParticipant, 0, len(participants))
	for _, input := range participants {
		if input.Schedule == "" {
			return dto.AssessmentResponse{}, ErrScheduleRequired
		}

		schedule, err := time.Parse(time.RFC3339, input.Schedule)
		if err != nil {
			return dto.AssessmentResponse{}, ErrInvalidScheduleValue
		}

		if err := s.requireRole(ctx, input.UserID, models.RoleUser, ErrParticipantMissing); err != nil {
			return dto.AssessmentResponse{}, err
		}

		participantRows = append(participantRows, models.AssessmentParticipant{
			UserID:   input.UserID,
			Schedule: schedule,
			Status:   models.StatusScheduled,
		})
	}

	assessment := models.Assessment{
		Judul:             payload.Judul,
		Materi:            payload.Materi,
		MetodePelaksanaan: method,
		Ruangan:           payload.Ruangan,
		LinkOnline:        payload.LinkOnline,
		NotaDinas:         payload.NotaDinas,
		Evaluators:        evaluatorRows,
		Participants:      participantRows,
	}

	if err := s.assessments.Create(ctx, &assessment); err != nil {
		return dto.AssessmentResponse{}, err
	}

	// Reload to expand the user profiles attached to the join rows.
	created, err := s.assessments.GetByID(ctx, assessment.ID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	span.SetAttributes(attribute.Int("assessment.id", int(created.ID)))
	s.logger.Info().
		Uint("assessment_id", created.ID).
		Int("evaluators", len(created.Evaluators)).
		Int("participants", len(created.Participants)).
		Msg("assessment created")

	return dto.NewAssessmentResponse(created), nil
}

func (s *assessmentService) List(ctx context.Context, viewerID uint, viewerRole models.Role, query dto.AssessmentListQuery) (dto.AssessmentListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.list")
	defer span.End()

	filter := repository.AssessmentFilter{
		Page:  query.Page,
		Limit: query.Limit,
	}

	if query.Status != "" && query.Status != "All" {
		filter.ParticipantStatus = models.ParticipantStatus(query.Status)
	}

	switch viewerRole {
	case models.RoleUser:
		filter.ParticipantUserID = viewerID
	case models.RoleEvaluator:
		filter.EvaluatorUserID = viewerID
	}

	assessments, total, err := s.assessments.List(ctx, filter)
	if err != nil {
		return dto.AssessmentListResponse{}, err
	}

	return dto.AssessmentListResponse{
		Data:       dto.NewAssessmentResponseSlice(assessments),
		Pagination: dto.NewPaginationMeta(query.Page, query.Limit, total),
	}, nil
}

func (s *assessmentService) Get(ctx context.Context, id uint, viewerID uint, viewerRole models.Role) (dto.AssessmentResponse, error) {
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, ErrAssessmentNotFound
		}
		return dto.AssessmentResponse{}, err
	}

	if !viewerMaySee(assessment, viewerID, viewerRole) {
		return dto.AssessmentResponse{}, ErrAssessmentForbidden
	}

	return dto.NewAssessmentResponse(assessment), nil
}

func viewerMaySee(assessment models.Assessment, viewerID uint, viewerRole models.Role) bool {
	if viewerRole == models.RoleAdministrator {
		return true
	}

	for _, participant := range assessment.Participants {
		if participant.UserID == viewerID {
			return true
		}
	}

	for _, evaluator := range assessment.Evaluators {
		if evaluator.UserID == viewerID {
			return true
		}
	}

	return false
}

func (s *assessmentService) requireRole(ctx context.Context, userID uint, role models.Role, missing error) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return missing
		}
		return err
	}

	if user.Role != role {
		return missing
	}

	return nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func dedupeParticipants(inputs []dto.ParticipantInput) []dto.ParticipantInput {
	seen := make(map[uint]struct{}, len(inputs))
	result := make([]dto.ParticipantInput, 0, len(inputs))
	for _, input := range inputs {
		if input.UserID == 0 {
			continue
		}
		if _, ok := seen[input.UserID]; ok {
			continue
		}
		seen[input.UserID] = struct{}{}
		result = append(result, input)
	}
	return result
}
