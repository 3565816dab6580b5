package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/talenttune/talenttune-api/internal/models"
)

// AssessmentFilter narrows the assessment listing. ParticipantUserID and
// EvaluatorUserID implement the role scoping: a regular user only sees
// assessments they participate in, an evaluator only assigned ones.
type AssessmentFilter struct {
	Page              int
	Limit             int
	ParticipantStatus models.ParticipantStatus
	ParticipantUserID uint
	EvaluatorUserID   uint
}

// AssessmentRepository defines persistence operations for the scheduling aggregate.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *models.Assessment) error
	GetByID(ctx context.Context, id uint) (models.Assessment, error)
	List(ctx context.Context, filter AssessmentFilter) ([]models.Assessment, int64, error)
	GetParticipant(ctx context.Context, id uint) (models.AssessmentParticipant, error)
	UpdateParticipant(ctx context.Context, participant *models.AssessmentParticipant) error
	FindParticipation(ctx context.Context, assessmentID, userID uint) (models.AssessmentParticipant, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates a GORM-backed repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

// Create persists the aggregate with its evaluator and participant join rows
// in one transaction; any failure rolls the whole operation back so no
// partial assessment survives.
func (r *assessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(assessment).Error
	})
}

func (r *assessmentRepository) GetByID(ctx context.Context, id uint) (models.Assessment, error) {
	var assessment models.Assessment
	err := r.db.WithContext(ctx).
		Preload("Evaluators.User").
		Preload("Participants.User").
		First(&assessment, id).Error
	if err != nil {
		return models.Assessment{}, err
	}

	return assessment, nil
}

func (r *assessmentRepository) List(ctx context.Context, filter AssessmentFilter) ([]models.Assessment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Assessment{})

	participantScope := r.db.Model(&models.AssessmentParticipant{}).Select("assessment_id")
	scoped := false

	if filter.ParticipantStatus != "" {
		participantScope = participantScope.Where("status = ?", filter.ParticipantStatus)
		scoped = true
	}

	if filter.ParticipantUserID != 0 {
		participantScope = participantScope.Where("user_id = ?", filter.ParticipantUserID)
		scoped = true
	}

	if scoped {
		query = query.Where("id IN (?)", participantScope)
	}

	if filter.EvaluatorUserID != 0 {
		evaluatorScope := r.db.Model(&models.AssessmentEvaluator{}).
			Select("assessment_id").
			Where("user_id = ?", filter.EvaluatorUserID)
		query = query.Where("id IN (?)", evaluatorScope)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	var assessments []models.Assessment
	err := query.
		Preload("Evaluators.User").
		Preload("Participants.User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&assessments).Error
	if err != nil {
		return nil, 0, err
	}

	return assessments, total, nil
}

func (r *assessmentRepository) GetParticipant(ctx context.Context, id uint) (models.AssessmentParticipant, error) {
	var participant models.AssessmentParticipant
	err := r.db.WithContext(ctx).Preload("User").First(&participant, id).Error
	if err != nil {
		return models.AssessmentParticipant{}, err
	}

	return participant, nil
}

func (r *assessmentRepository) UpdateParticipant(ctx context.Context, participant *models.AssessmentParticipant) error {
	return r.db.WithContext(ctx).Save(participant).Error
}

func (r *assessmentRepository) FindParticipation(ctx context.Context, assessmentID, userID uint) (models.AssessmentParticipant, error) {
	var participant models.AssessmentParticipant
	err := r.db.WithContext(ctx).
		Where("assessment_id = ? AND user_id = ?", assessmentID, userID).
		First(&participant).Error
	if err != nil {
		return models.AssessmentParticipant{}, err
	}

	return participant, nil
}
