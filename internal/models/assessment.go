package models

import (
	"strings"
	"time"
)

// DeliveryMethod distinguishes on-site assessments from virtual ones.
type DeliveryMethod string

// Supported delivery methods.
const (
	MethodOffline DeliveryMethod = "offline"
	MethodOnline  DeliveryMethod = "online"
)

// ParseDeliveryMethod normalizes a raw method string.
func ParseDeliveryMethod(value string) (DeliveryMethod, bool) {
	switch DeliveryMethod(strings.ToLower(strings.TrimSpace(value))) {
	case MethodOffline:
		return MethodOffline, true
	case MethodOnline:
		return MethodOnline, true
	default:
		return "", false
	}
}

// ParticipantStatus tracks a participant's progression through an assessment.
type ParticipantStatus string

// Participant statuses. Transitions are monotonic: SCHEDULED may move to
// IN_PROGRESS or CANCELLED, IN_PROGRESS to COMPLETED; COMPLETED and
// CANCELLED are terminal.
const (
	StatusScheduled  ParticipantStatus = "SCHEDULED"
	StatusInProgress ParticipantStatus = "IN_PROGRESS"
	StatusCompleted  ParticipantStatus = "COMPLETED"
	StatusCancelled  ParticipantStatus = "CANCELLED"
)

// Terminal reports whether no further status transition is allowed.
func (s ParticipantStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// AttendanceType records how a participant answered the attendance prompt.
type AttendanceType string

// Attendance answers, kept in the wire vocabulary of the intake forms.
const (
	AttendancePresent AttendanceType = "hadir"
	AttendanceAbsent  AttendanceType = "tidak-hadir"
)

// Assessment is the scheduling aggregate: one definition plus its evaluator
// and participant sets.
type Assessment struct {
	ID                uint                    `gorm:"primaryKey" json:"id"`
	Judul             string                  `gorm:"size:255;not null" json:"judul"`
	Materi            string                  `gorm:"size:255;not null" json:"materi"`
	MetodePelaksanaan DeliveryMethod          `gorm:"size:16;not null" json:"metodePelaksanaan"`
	Ruangan           string                  `gorm:"size:255" json:"ruangan,omitempty"`
	LinkOnline        string                  `gorm:"size:512" json:"linkOnline,omitempty"`
	NotaDinas         string                  `gorm:"size:512" json:"notaDinas,omitempty"`
	Evaluators        []AssessmentEvaluator   `gorm:"constraint:OnDelete:CASCADE" json:"evaluators"`
	Participants      []AssessmentParticipant `gorm:"constraint:OnDelete:CASCADE" json:"participants"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// AssessmentEvaluator links an evaluator user to an assessment. Pure
// membership record, no attributes of its own.
type AssessmentEvaluator struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssessmentID uint      `gorm:"index;not null" json:"assessment_id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	User         User      `json:"user"`
	CreatedAt    time.Time `json:"created_at"`
}

// AssessmentParticipant links a candidate to an assessment together with the
// candidate's individual schedule, status and lifecycle progress. The
// lifecycle gate flags are persisted here so a participant's progress
// survives page reloads.
type AssessmentParticipant struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	AssessmentID uint              `gorm:"index;not null" json:"assessment_id"`
	UserID       uint              `gorm:"index;not null" json:"user_id"`
	User         User              `json:"user"`
	Schedule     time.Time         `gorm:"not null" json:"schedule"`
	Status       ParticipantStatus `gorm:"size:16;not null;default:SCHEDULED" json:"status"`

	AttendanceConfirmed    bool           `gorm:"not null;default:false" json:"attendance_confirmed"`
	AttendanceType         AttendanceType `gorm:"size:16" json:"attendance_type,omitempty"`
	AttendanceReason       string         `gorm:"size:512" json:"attendance_reason,omitempty"`
	QuestionnaireCompleted bool           `gorm:"not null;default:false" json:"questionnaire_completed"`
	QuestionnaireAnswer1   string         `gorm:"type:text" json:"-"`
	QuestionnaireAnswer2   string         `gorm:"type:text" json:"-"`
	MaterialUploaded       bool           `gorm:"not null;default:false" json:"material_uploaded"`
	MaterialURL            string         `gorm:"size:512" json:"material_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Progress contribution weights. Attendance and questionnaire each count a
// third, the upload carries the remainder so a complete run lands on 100.
const (
	ProgressAttendance    = 33
	ProgressQuestionnaire = 33
	ProgressUpload        = 34
	ProgressComplete      = 100
)

// Progress derives the completion percentage from the persisted gate flags.
// A confirmed absence short-circuits to 100 regardless of the other gates.
func (p AssessmentParticipant) Progress() int {
	if p.AttendanceConfirmed && p.AttendanceType == AttendanceAbsent {
		return ProgressComplete
	}

	progress := 0
	if p.AttendanceConfirmed {
		progress += ProgressAttendance
	}
	if p.QuestionnaireCompleted {
		progress += ProgressQuestionnaire
	}
	if p.MaterialUploaded {
		progress += ProgressUpload
	}
	return progress
}

// DisplayStatus is the label shown on the participant's schedule card.
func (p AssessmentParticipant) DisplayStatus() string {
	if p.AttendanceConfirmed && p.AttendanceType == AttendanceAbsent {
		return "Canceled"
	}
	return "Scheduled"
}

// CanEnterRoom reports whether every lifecycle gate is satisfied and the
// participation was not cancelled.
func (p AssessmentParticipant) CanEnterRoom() bool {
	return p.Progress() == ProgressComplete && p.DisplayStatus() != "Canceled"
}
