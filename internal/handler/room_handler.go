package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/talenttune/talenttune-api/internal/dto"
	"github.com/talenttune/talenttune-api/internal/middleware"
	"github.com/talenttune/talenttune-api/internal/service"
	"github.com/talenttune/talenttune-api/internal/utils"
)

// RoomHandler wires the room catalogue, the session timer endpoints and the
// websocket presence channel.
type RoomHandler struct {
	service service.RoomService
	logger  zerolog.Logger
}

// NewRoomHandler constructs a room handler.
func NewRoomHandler(roomService service.RoomService, logger zerolog.Logger) *RoomHandler {
	return &RoomHandler{
		service: roomService,
		logger:  logger.With().Str("component", "room_handler").Logger(),
	}
}

// Register binds room routes under the provided router group.
func (h *RoomHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/sessions/:sessionID", h.session)
	router.Post("/sessions/:sessionID/continue", h.continueSession)
	router.Post("/:id/sessions", h.startSession)

	router.Use("/:id/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/:id/ws", websocket.New(h.handleConnection))
}

func (h *RoomHandler) list(c *fiber.Ctx) error {
	rooms, err := h.service.ListRooms(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list rooms")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list rooms")
	}

	return utils.SendSuccess(c, "rooms retrieved", rooms)
}

func (h *RoomHandler) startSession(c *fiber.Ctx) error {
	actorID, ok := middleware.SessionUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	actorRole, _ := middleware.SessionRole(c)

	roomID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid room id")
	}

	var payload dto.RoomSessionStartRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	session, err := h.service.StartSession(c.Context(), roomID, actorID, actorRole, payload)
	if err != nil {
		return h.sessionError(c, err, "failed to start room session")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "room session started", session)
}

func (h *RoomHandler) session(c *fiber.Ctx) error {
	actorID, ok := middleware.SessionUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	actorRole, _ := middleware.SessionRole(c)

	sessionID := strings.TrimSpace(c.Params("sessionID"))
	if sessionID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	session, err := h.service.GetSession(c.Context(), sessionID, actorID, actorRole)
	if err != nil {
		return h.sessionError(c, err, "failed to load room session")
	}

	return utils.SendSuccess(c, "room session retrieved", session)
}

func (h *RoomHandler) continueSession(c *fiber.Ctx) error {
	actorID, ok := middleware.SessionUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	actorRole, _ := middleware.SessionRole(c)

	sessionID := strings.TrimSpace(c.Params("sessionID"))
	if sessionID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	session, err := h.service.ContinueSession(c.Context(), sessionID, actorID, actorRole)
	if err != nil {
		return h.sessionError(c, err, "failed to continue room session")
	}

	return utils.SendSuccess(c, "room session continued", session)
}

func (h *RoomHandler) handleConnection(conn *websocket.Conn) {
	userID, ok := websocketUserID(conn)
	if !ok {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}

	roomID, ok := websocketRoomID(conn)
	if !ok {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusBadRequest, "room id required"))
		_ = conn.Close()
		return
	}

	name, _ := conn.Locals(middleware.LocalUserName).(string)

	h.logger.Info().Uint("user_id", userID).Uint("room_id", roomID).Msg("room websocket connected")
	h.service.Hub().ServeConnection(conn, service.RoomConnectionOptions{
		RoomID: roomID,
		UserID: userID,
		Name:   name,
	})
	h.logger.Info().Uint("user_id", userID).Uint("room_id", roomID).Msg("room websocket disconnected")
}

func (h *RoomHandler) sessionError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrParticipantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRoomLocked):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotYourSession):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotTimeUp):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

func websocketUserID(conn *websocket.Conn) (uint, bool) {
	id, ok := conn.Locals(middleware.LocalUserID).(uint)
	return id, ok
}

func websocketRoomID(conn *websocket.Conn) (uint, bool) {
	raw := strings.TrimSpace(conn.Params("id"))
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}
