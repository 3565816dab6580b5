package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/talenttune/talenttune-api/internal/dto"
	"github.com/talenttune/talenttune-api/internal/models"
)

type scheduleFixture struct {
	svc         ScheduleService
	assessments *memoryAssessmentRepo
	uploader    *stubUploader
	participant models.AssessmentParticipant
	candidate   models.User
}

func newScheduleFixture(t *testing.T) scheduleFixture {
	t.Helper()

	users := newMemoryUserRepo()
	candidate := users.add(models.User{Name: "Candi Date", Email: "candi@example.com", Role: models.RoleUser})
	evaluator := users.add(models.User{Name: "Eva Luator", Email: "eva@example.com", Role: models.RoleEvaluator})

	assessments := newMemoryAssessmentRepo(users)
	assessment := models.Assessment{
		Judul:             "Leadership Review",
		Materi:            "Strategic Planning",
		MetodePelaksanaan: models.MethodOffline,
		Ruangan:           "Ruang Rapat 1",
		Evaluators:        []models.AssessmentEvaluator{{UserID: evaluator.ID}},
		Participants: []models.AssessmentParticipant{{
			UserID:   candidate.ID,
			Schedule: time.Now().Add(24 * time.Hour),
			Status:   models.StatusScheduled,
		}},
	}
	require.NoError(t, assessments.Create(context.Background(), &assessment))

	uploader := &stubUploader{}
	svc := NewScheduleService(assessments, uploader, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	return scheduleFixture{
		svc:         svc,
		assessments: assessments,
		uploader:    uploader,
		participant: assessment.Participants[0],
		candidate:   candidate,
	}
}

func pdfFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(int64(body.Len()) + 1024))

	return req.MultipartForm.File["file"][0]
}

func TestLifecyclePresentFlow(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	initial, err := f.svc.Get(ctx, f.participant.ID, f.candidate.ID, models.RoleUser)
	require.NoError(t, err)
	require.Zero(t, initial.Progress)
	require.False(t, initial.CanEnterRoom)

	afterAttendance, err := f.svc.ConfirmAttendance(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, dto.AttendanceRequest{Type: "hadir"})
	require.NoError(t, err)
	require.Equal(t, 33, afterAttendance.Progress)
	require.Equal(t, "Scheduled", afterAttendance.DisplayStatus)

	afterQuestionnaire, err := f.svc.SubmitQuestionnaire(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, dto.QuestionnaireRequest{
		Question1: "Saya siap",
		Question2: "Tidak ada kendala",
	})
	require.NoError(t, err)
	require.Equal(t, 66, afterQuestionnaire.Progress)
	require.False(t, afterQuestionnaire.CanEnterRoom)

	afterUpload, err := f.svc.UploadMaterial(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, pdfFileHeader(t, "deck.pdf", []byte("%PDF-1.4 minimal content")))
	require.NoError(t, err)
	require.Equal(t, 100, afterUpload.Progress)
	require.True(t, afterUpload.CanEnterRoom)
	require.NotEmpty(t, afterUpload.MaterialURL)
}

func TestLifecycleUploadBeforeQuestionnaireCommutes(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	_, err := f.svc.ConfirmAttendance(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, dto.AttendanceRequest{Type: "hadir"})
	require.NoError(t, err)

	afterUpload, err := f.svc.UploadMaterial(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, pdfFileHeader(t, "deck.pdf", []byte("%PDF-1.4 minimal content")))
	require.NoError(t, err)
	require.Equal(t, 67, afterUpload.Progress)

	afterQuestionnaire, err := f.svc.SubmitQuestionnaire(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, dto.QuestionnaireRequest{
		Question1: "Jawaban satu",
		Question2: "Jawaban dua",
	})
	require.NoError(t, err)
	require.Equal(t, 100, afterQuestionnaire.Progress)
	require.True(t, afterQuestionnaire.CanEnterRoom)
}

func TestLifecycleAbsentShortCircuits(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	canceled, err := f.svc.ConfirmAttendance(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, dto.AttendanceRequest{
		Type:   "tidak-hadir",
		Reason: "sakit",
	})
	require.NoError(t, err)
	require.Equal(t, 100, canceled.Progress)
	require.Equal(t, "Canceled", canceled.DisplayStatus)
	require.Equal(t, "CANCELLED", canceled.Status)
	require.False(t, canceled.CanEnterRoom)

	// The remaining gates are permanently rejected.
	_, err = f.svc.SubmitQuestionnaire(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, dto.QuestionnaireRequest{
		Question1: "a", Question2: "b",
	})
	require.ErrorIs(t, err, ErrParticipationClosed)

	_, err = f.svc.UploadMaterial(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, pdfFileHeader(t, "deck.pdf", []byte("%PDF-1.4 x")))
	require.ErrorIs(t, err, ErrParticipationClosed)

	_, err = f.svc.ConfirmAttendance(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, dto.AttendanceRequest{Type: "hadir"})
	require.ErrorIs(t, err, ErrParticipationClosed)
}

func TestLifecycleAbsentRequiresReason(t *testing.T) {
	f := newScheduleFixture(t)

	_, err := f.svc.ConfirmAttendance(context.Background(), f.participant.ID, f.candidate.ID, models.RoleUser, dto.AttendanceRequest{Type: "tidak-hadir"})
	require.ErrorIs(t, err, ErrReasonRequired)
}

func TestLifecyclePreconditions(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	// Out-of-order calls are rejected server-side even though the UI never
	// offers them.
	_, err := f.svc.SubmitQuestionnaire(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, dto.QuestionnaireRequest{
		Question1: "a", Question2: "b",
	})
	require.ErrorIs(t, err, ErrAttendanceFirst)

	_, err = f.svc.UploadMaterial(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, pdfFileHeader(t, "deck.pdf", []byte("%PDF-1.4 x")))
	require.ErrorIs(t, err, ErrAttendanceFirst)

	_, err = f.svc.ConfirmAttendance(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, dto.AttendanceRequest{Type: "hadir"})
	require.NoError(t, err)

	_, err = f.svc.ConfirmAttendance(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, dto.AttendanceRequest{Type: "hadir"})
	require.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestLifecycleUploadReplaceIsIdempotent(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	_, err := f.svc.ConfirmAttendance(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, dto.AttendanceRequest{Type: "hadir"})
	require.NoError(t, err)

	first, err := f.svc.UploadMaterial(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, pdfFileHeader(t, "v1.pdf", []byte("%PDF-1.4 first")))
	require.NoError(t, err)

	second, err := f.svc.UploadMaterial(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, pdfFileHeader(t, "v2.pdf", []byte("%PDF-1.4 second")))
	require.NoError(t, err)

	require.NotEqual(t, first.MaterialURL, second.MaterialURL)
	require.Equal(t, first.Progress, second.Progress)
	require.Equal(t, 2, f.uploader.uploads)
}

func TestLifecycleRejectsUnsupportedFile(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	_, err := f.svc.ConfirmAttendance(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, dto.AttendanceRequest{Type: "hadir"})
	require.NoError(t, err)

	_, err = f.svc.UploadMaterial(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, pdfFileHeader(t, "notes.txt", []byte("plain text notes")))
	require.ErrorIs(t, err, ErrUnsupportedMaterial)
	require.Zero(t, f.uploader.uploads)

	_, err = f.svc.UploadMaterial(ctx, f.participant.ID, f.candidate.ID, models.RoleUser, nil)
	require.ErrorIs(t, err, ErrMaterialFileRequired)
}

func TestLifecycleOwnership(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, f.participant.ID, 999, models.RoleUser)
	require.ErrorIs(t, err, ErrNotYourSchedule)

	// Administrators may inspect any participation.
	_, err = f.svc.Get(ctx, f.participant.ID, 999, models.RoleAdministrator)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, 12345, f.candidate.ID, models.RoleUser)
	require.ErrorIs(t, err, ErrParticipantNotFound)
}
