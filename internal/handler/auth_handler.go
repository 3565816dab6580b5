package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/talenttune/talenttune-api/internal/dto"
	"github.com/talenttune/talenttune-api/internal/middleware"
	"github.com/talenttune/talenttune-api/internal/service"
	"github.com/talenttune/talenttune-api/internal/token"
	"github.com/talenttune/talenttune-api/internal/utils"
)

// AuthHandler owns the cookie-based session endpoints.
type AuthHandler struct {
	service    service.AuthService
	tokens     *token.Service
	cookieName string
	sessionTTL time.Duration
	secure     bool
	logger     zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(authService service.AuthService, tokens *token.Service, cookieName string, sessionTTL time.Duration, secure bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:    authService,
		tokens:     tokens,
		cookieName: cookieName,
		sessionTTL: sessionTTL,
		secure:     secure,
		logger:     logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires the public auth routes. The protected identity probe is
// registered separately so the session middleware can guard it.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/login", h.login)
	router.Post("/logout", h.logout)
}

// RegisterProtected wires routes that require a valid session.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Get("/me", h.me)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.Login(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "email and password are required")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
		}
	}

	signed, err := h.tokens.Issue(token.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	})
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to sign session token")
		return utils.SendError(c, fiber.StatusInternalServerError, "login failed")
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    signed,
		MaxAge:   int(h.sessionTTL.Seconds()),
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	requestLogger(h.logger, c).Info().
		Uint("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("session opened")

	return c.JSON(dto.LoginResponse{
		Success: true,
		User: dto.SessionUser{
			Email: user.Email,
			Role:  string(user.Role),
			Name:  user.Name,
		},
	})
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return utils.SendSuccess(c, "session closed", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	claims, ok := middleware.SessionClaims(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	return utils.SendSuccess(c, "session identity", dto.SessionUser{
		Email: claims.Email,
		Role:  string(claims.Role),
		Name:  claims.Name,
	})
}
