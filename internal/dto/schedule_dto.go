package dto

import "github.com/talenttune/talenttune-api/internal/models"

// AttendanceRequest confirms or declines attendance. A decline requires a
// reason; the handler enforces the conditional rule before the service runs.
type AttendanceRequest struct {
	Type   string `json:"type" validate:"required,oneof=hadir tidak-hadir"`
	Reason string `json:"reason"`
}

// QuestionnaireRequest carries the two required free-text answers.
type QuestionnaireRequest struct {
	Question1 string `json:"question1" validate:"required"`
	Question2 string `json:"question2" validate:"required"`
}

// ScheduleProgressResponse exposes the lifecycle state of one participation.
type ScheduleProgressResponse struct {
	ParticipantID          uint   `json:"participant_id"`
	AssessmentID           uint   `json:"assessment_id"`
	Status                 string `json:"status"`
	AttendanceConfirmed    bool   `json:"attendance_confirmed"`
	AttendanceType         string `json:"attendance_type,omitempty"`
	AttendanceReason       string `json:"attendance_reason,omitempty"`
	QuestionnaireCompleted bool   `json:"questionnaire_completed"`
	MaterialUploaded       bool   `json:"material_uploaded"`
	MaterialURL            string `json:"material_url,omitempty"`
	Progress               int    `json:"progress"`
	DisplayStatus          string `json:"display_status"`
	CanEnterRoom           bool   `json:"can_enter_room"`
}

// NewScheduleProgressResponse derives the lifecycle view from the persisted row.
func NewScheduleProgressResponse(participant models.AssessmentParticipant) ScheduleProgressResponse {
	return ScheduleProgressResponse{
		ParticipantID:          participant.ID,
		AssessmentID:           participant.AssessmentID,
		Status:                 string(participant.Status),
		AttendanceConfirmed:    participant.AttendanceConfirmed,
		AttendanceType:         string(participant.AttendanceType),
		AttendanceReason:       participant.AttendanceReason,
		QuestionnaireCompleted: participant.QuestionnaireCompleted,
		MaterialUploaded:       participant.MaterialUploaded,
		MaterialURL:            participant.MaterialURL,
		Progress:               participant.Progress(),
		DisplayStatus:          participant.DisplayStatus(),
		CanEnterRoom:           participant.CanEnterRoom(),
	}
}
