package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/talenttune/talenttune-api/internal/dto"
	"github.com/talenttune/talenttune-api/internal/models"
	"github.com/talenttune/talenttune-api/internal/repository"
)

// Room session failure modes.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrSessionNotFound = errors.New("room session not found")
	ErrRoomLocked      = errors.New("all lifecycle steps must be completed before entering the room")
	ErrNotYourSession  = errors.New("session belongs to another participant")
	ErrNotTimeUp       = errors.New("session time is not up")
)

const roomSessionKeyPrefix = "talenttune:room_session:"

// roomSession is the persisted timer state. Elapsed time is derived from
// StartedAt on every read; it freezes at the limit and never resumes, even
// after the participant acknowledges the time-up prompt.
type roomSession struct {
	ID            string    `json:"id"`
	RoomID        uint      `json:"room_id"`
	AssessmentID  uint      `json:"assessment_id"`
	ParticipantID uint      `json:"participant_id"`
	UserID        uint      `json:"user_id"`
	StartedAt     time.Time `json:"started_at"`
	LimitSeconds  int       `json:"limit_seconds"`
	Acknowledged  bool      `json:"acknowledged"`
}

// RoomService manages the room catalogue and the redis-backed session timers.
type RoomService interface {
	ListRooms(ctx context.Context) ([]dto.RoomResponse, error)
	StartSession(ctx context.Context, roomID, actorID uint, actorRole models.Role, payload dto.RoomSessionStartRequest) (dto.RoomSessionResponse, error)
	GetSession(ctx context.Context, sessionID string, actorID uint, actorRole models.Role) (dto.RoomSessionResponse, error)
	ContinueSession(ctx context.Context, sessionID string, actorID uint, actorRole models.Role) (dto.RoomSessionResponse, error)
	Hub() *RoomHub
}

type roomService struct {
	rooms       repository.RoomRepository
	assessments repository.AssessmentRepository
	redis       *redis.Client
	hub         *RoomHub
	timeLimit   time.Duration
	sessionTTL  time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewRoomService builds the room service.
func NewRoomService(rooms repository.RoomRepository, assessments repository.AssessmentRepository, redisClient *redis.Client, timeLimit, sessionTTL time.Duration, logger zerolog.Logger) RoomService {
	if timeLimit <= 0 {
		timeLimit = time.Minute
	}
	if sessionTTL <= 0 {
		sessionTTL = 4 * time.Hour
	}

	return &roomService{
		rooms:       rooms,
		assessments: assessments,
		redis:       redisClient,
		hub:         NewRoomHub(logger),
		timeLimit:   timeLimit,
		sessionTTL:  sessionTTL,
		logger:      logger.With().Str("component", "room_service").Logger(),
		tracer:      otel.Tracer("room-service"),
		now:         time.Now,
	}
}

func (s *roomService) Hub() *RoomHub {
	return s.hub
}

func (s *roomService) ListRooms(ctx context.Context) ([]dto.RoomResponse, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewRoomResponseSlice(rooms), nil
}

// StartSession opens a timed session once every lifecycle gate is satisfied.
// The assessment status moves to IN_PROGRESS for the participant.
func (s *roomService) StartSession(ctx context.Context, roomID, actorID uint, actorRole models.Role, payload dto.RoomSessionStartRequest) (dto.RoomSessionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "room.start_session")
	defer span.End()

	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RoomSessionResponse{}, ErrRoomNotFound
		}
		return dto.RoomSessionResponse{}, err
	}

	participant, err := s.assessments.FindParticipation(ctx, payload.AssessmentID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RoomSessionResponse{}, ErrParticipantNotFound
		}
		return dto.RoomSessionResponse{}, err
	}

	if !participant.CanEnterRoom() {
		return dto.RoomSessionResponse{}, ErrRoomLocked
	}

	if participant.Status == models.StatusScheduled {
		participant.Status = models.StatusInProgress
		if err := s.assessments.UpdateParticipant(ctx, &participant); err != nil {
			return dto.RoomSessionResponse{}, err
		}
	}

	session := roomSession{
		ID:            uuid.NewString(),
		RoomID:        roomID,
		AssessmentID:  payload.AssessmentID,
		ParticipantID: participant.ID,
		UserID:        actorID,
		StartedAt:     s.now(),
		LimitSeconds:  int(s.timeLimit.Seconds()),
	}

	if err := s.saveSession(ctx, session); err != nil {
		return dto.RoomSessionResponse{}, err
	}

	span.SetAttributes(attribute.String("session.id", session.ID))
	s.logger.Info().
		Str("session_id", session.ID).
		Uint("room_id", roomID).
		Uint("participant_id", participant.ID).
		Msg("room session started")

	snapshot := s.snapshot(session)
	s.hub.Broadcast(roomID, dto.RoomEvent{
		Type:      "session_started",
		RoomID:    roomID,
		UserID:    actorID,
		Session:   &snapshot,
		Timestamp: s.now(),
	})

	return snapshot, nil
}

func (s *roomService) GetSession(ctx context.Context, sessionID string, actorID uint, actorRole models.Role) (dto.RoomSessionResponse, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return dto.RoomSessionResponse{}, err
	}

	if session.UserID != actorID && actorRole != models.RoleAdministrator {
		return dto.RoomSessionResponse{}, ErrNotYourSession
	}

	return s.snapshot(session), nil
}

// ContinueSession clears the blocking time-up prompt. The elapsed clock
// stays frozen at the limit; only the flag changes.
func (s *roomService) ContinueSession(ctx context.Context, sessionID string, actorID uint, actorRole models.Role) (dto.RoomSessionResponse, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return dto.RoomSessionResponse{}, err
	}

	if session.UserID != actorID && actorRole != models.RoleAdministrator {
		return dto.RoomSessionResponse{}, ErrNotYourSession
	}

	snapshot := s.snapshot(session)
	if !snapshot.TimeUp {
		return dto.RoomSessionResponse{}, ErrNotTimeUp
	}

	session.Acknowledged = true
	if err := s.saveSession(ctx, session); err != nil {
		return dto.RoomSessionResponse{}, err
	}

	// Acknowledging the elapsed timer closes the assessment run.
	if participant, err := s.assessments.GetParticipant(ctx, session.ParticipantID); err == nil {
		if participant.Status == models.StatusInProgress {
			participant.Status = models.StatusCompleted
			if err := s.assessments.UpdateParticipant(ctx, &participant); err != nil {
				return dto.RoomSessionResponse{}, err
			}
		}
	}

	snapshot = s.snapshot(session)
	s.hub.Broadcast(session.RoomID, dto.RoomEvent{
		Type:      "session_continued",
		RoomID:    session.RoomID,
		UserID:    session.UserID,
		Session:   &snapshot,
		Timestamp: s.now(),
	})

	return snapshot, nil
}

// snapshot derives the timer view. Elapsed accrues one second per wall-clock
// second until the limit, then freezes permanently.
func (s *roomService) snapshot(session roomSession) dto.RoomSessionResponse {
	elapsed := int(s.now().Sub(session.StartedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	timeUp := false
	if elapsed >= session.LimitSeconds {
		elapsed = session.LimitSeconds
		timeUp = !session.Acknowledged
	}

	return dto.RoomSessionResponse{
		ID:               session.ID,
		RoomID:           session.RoomID,
		ParticipantID:    session.ParticipantID,
		StartedAt:        session.StartedAt,
		ElapsedSeconds:   elapsed,
		TimeLimitSeconds: session.LimitSeconds,
		TimeUp:           timeUp,
		Acknowledged:     session.Acknowledged,
	}
}

func (s *roomService) saveSession(ctx context.Context, session roomSession) error {
	encoded, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode room session: %w", err)
	}

	return s.redis.Set(ctx, roomSessionKeyPrefix+session.ID, encoded, s.sessionTTL).Err()
}

func (s *roomService) loadSession(ctx context.Context, sessionID string) (roomSession, error) {
	raw, err := s.redis.Get(ctx, roomSessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return roomSession{}, ErrSessionNotFound
		}
		return roomSession{}, err
	}

	var session roomSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return roomSession{}, fmt.Errorf("failed to decode room session: %w", err)
	}

	return session, nil
}
