package dto

import (
	"time"

	"github.com/talenttune/talenttune-api/internal/models"
)

// ParticipantInput pairs a candidate with the candidate's individual schedule.
type ParticipantInput struct {
	UserID   uint   `json:"userId" validate:"required,gt=0"`
	Schedule string `json:"schedule" validate:"required"`
}

// AssessmentCreateRequest is the aggregate-creation payload. The location
// field is method-conditional: offline requires ruangan, online linkOnline.
type AssessmentCreateRequest struct {
	Judul             string             `json:"judul" validate:"required"`
	Materi            string             `json:"materi" validate:"required"`
	MetodePelaksanaan string             `json:"metodePelaksanaan" validate:"required"`
	Ruangan           string             `json:"ruangan"`
	LinkOnline        string             `json:"linkOnline"`
	NotaDinas         string             `json:"notaDinas"`
	Evaluators        []uint             `json:"evaluators"`
	Participants      []ParticipantInput `json:"participants" validate:"dive"`
}

// AssessmentListQuery captures the list endpoint's query parameters.
type AssessmentListQuery struct {
	Page   int
	Limit  int
	Status string
}

// EvaluatorResponse expands an evaluator membership with the user profile.
type EvaluatorResponse struct {
	ID     uint         `json:"id"`
	UserID uint         `json:"user_id"`
	User   UserResponse `json:"user"`
}

// ParticipantResponse expands a participant row with profile, schedule,
// status and the derived lifecycle values.
type ParticipantResponse struct {
	ID            uint         `json:"id"`
	UserID        uint         `json:"user_id"`
	User          UserResponse `json:"user"`
	Schedule      time.Time    `json:"schedule"`
	Status        string       `json:"status"`
	Progress      int          `json:"progress"`
	DisplayStatus string       `json:"display_status"`
	CanEnterRoom  bool         `json:"can_enter_room"`
}

// AssessmentResponse is the expanded aggregate returned by detail and create.
type AssessmentResponse struct {
	ID                uint                  `json:"id"`
	Judul             string                `json:"judul"`
	Materi            string                `json:"materi"`
	MetodePelaksanaan string                `json:"metodePelaksanaan"`
	Ruangan           string                `json:"ruangan,omitempty"`
	LinkOnline        string                `json:"linkOnline,omitempty"`
	NotaDinas         string                `json:"notaDinas,omitempty"`
	Evaluators        []EvaluatorResponse   `json:"evaluators"`
	Participants      []ParticipantResponse `json:"participants"`
	CreatedAt         time.Time             `json:"created_at"`
}

// AssessmentListResponse wraps a page of assessments.
type AssessmentListResponse struct {
	Data       []AssessmentResponse `json:"data"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewEvaluatorResponse maps an evaluator membership row.
func NewEvaluatorResponse(evaluator models.AssessmentEvaluator) EvaluatorResponse {
	return EvaluatorResponse{
		ID:     evaluator.ID,
		UserID: evaluator.UserID,
		User:   NewUserResponse(evaluator.User),
	}
}

// NewParticipantResponse maps a participant row including derived lifecycle values.
func NewParticipantResponse(participant models.AssessmentParticipant) ParticipantResponse {
	return ParticipantResponse{
		ID:            participant.ID,
		UserID:        participant.UserID,
		User:          NewUserResponse(participant.User),
		Schedule:      participant.Schedule,
		Status:        string(participant.Status),
		Progress:      participant.Progress(),
		DisplayStatus: participant.DisplayStatus(),
		CanEnterRoom:  participant.CanEnterRoom(),
	}
}

// NewAssessmentResponse maps the aggregate with both membership sets expanded.
func NewAssessmentResponse(assessment models.Assessment) AssessmentResponse {
	evaluators := make([]EvaluatorResponse, 0, len(assessment.Evaluators))
	for _, evaluator := range assessment.Evaluators {
		evaluators = append(evaluators, NewEvaluatorResponse(evaluator))
	}

	participants := make([]ParticipantResponse, 0, len(assessment.Participants))
	for _, participant := range assessment.Participants {
		participants = append(participants, NewParticipantResponse(participant))
	}

	return AssessmentResponse{
		ID:                assessment.ID,
		Judul:             assessment.Judul,
		Materi:            assessment.Materi,
		MetodePelaksanaan: string(assessment.MetodePelaksanaan),
		Ruangan:           assessment.Ruangan,
		LinkOnline:        assessment.LinkOnline,
		NotaDinas:         assessment.NotaDinas,
		Evaluators:        evaluators,
		Participants:      participants,
		CreatedAt:         assessment.CreatedAt,
	}
}

// NewAssessmentResponseSlice maps a slice of aggregates.
func NewAssessmentResponseSlice(assessments []models.Assessment) []AssessmentResponse {
	responses := make([]AssessmentResponse, 0, len(assessments))
	for _, assessment := range assessments {
		responses = append(responses, NewAssessmentResponse(assessment))
	}
	return responses
}
