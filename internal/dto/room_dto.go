package dto

import (
	"time"

	"github.com/talenttune/talenttune-api/internal/models"
)

// RoomResponse is one catalogue entry.
type RoomResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Location string `json:"location,omitempty"`
}

// NewRoomResponse maps a room model.
func NewRoomResponse(room models.Room) RoomResponse {
	return RoomResponse{
		ID:       room.ID,
		Name:     room.Name,
		Capacity: room.Capacity,
		Location: room.Location,
	}
}

// NewRoomResponseSlice maps the catalogue.
func NewRoomResponseSlice(rooms []models.Room) []RoomResponse {
	responses := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		responses = append(responses, NewRoomResponse(room))
	}
	return responses
}

// RoomSessionStartRequest opens a timed session inside a room.
type RoomSessionStartRequest struct {
	AssessmentID uint `json:"assessmentId" validate:"required,gt=0"`
}

// RoomSessionResponse is the timer state of one room session. Elapsed time
// freezes at the limit; Acknowledged records that the participant chose to
// continue past the blocking prompt.
type RoomSessionResponse struct {
	ID               string    `json:"id"`
	RoomID           uint      `json:"room_id"`
	ParticipantID    uint      `json:"participant_id"`
	StartedAt        time.Time `json:"started_at"`
	ElapsedSeconds   int       `json:"elapsed_seconds"`
	TimeLimitSeconds int       `json:"time_limit_seconds"`
	TimeUp           bool      `json:"time_up"`
	Acknowledged     bool      `json:"acknowledged"`
}

// RoomEvent is a message broadcast on a room's websocket channel.
type RoomEvent struct {
	Type      string               `json:"type"`
	RoomID    uint                 `json:"room_id"`
	UserID    uint                 `json:"user_id,omitempty"`
	Name      string               `json:"name,omitempty"`
	Session   *RoomSessionResponse `json:"session,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}
