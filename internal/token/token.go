package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/talenttune/talenttune-api/internal/models"
)

// Claims is the identity payload carried by a session token.
type Claims struct {
	UserID uint
	Email  string
	Name   string
	Role   models.Role
}

// Service issues and verifies HS256 session tokens. It is purely functional
// over the secret and the injected clock.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds a token service with a fixed lifetime per token.
func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue signs a session token for the given claims. The expiry is fixed at
// the configured lifetime from the moment of issuance.
func (s *Service) Issue(claims Claims) (string, error) {
	issuedAt := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   fmt.Sprintf("%d", claims.UserID),
		"email": claims.Email,
		"name":  claims.Name,
		"role":  claims.Role.String(),
		"iat":   issuedAt.Unix(),
		"exp":   issuedAt.Add(s.ttl).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Verify decodes a session token. It never returns an error: a tampered,
// expired or malformed token is reported as ok=false so callers treat it
// uniformly with an absent token.
func (s *Service) Verify(raw string) (Claims, bool) {
	if raw == "" {
		return Claims{}, false
	}

	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !parsed.Valid {
		return Claims{}, false
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, false
	}

	subject, err := mapClaims.GetSubject()
	if err != nil || subject == "" {
		return Claims{}, false
	}

	var userID uint
	if _, err := fmt.Sscanf(subject, "%d", &userID); err != nil || userID == 0 {
		return Claims{}, false
	}

	role, ok := ParseRoleClaim(mapClaims["role"])
	if !ok {
		return Claims{}, false
	}

	return Claims{
		UserID: userID,
		Email:  stringClaim(mapClaims, "email"),
		Name:   stringClaim(mapClaims, "name"),
		Role:   role,
	}, true
}

// ParseRoleClaim normalizes a raw role claim value into a known Role.
func ParseRoleClaim(value interface{}) (models.Role, bool) {
	str, ok := value.(string)
	if !ok {
		return "", false
	}
	return models.ParseRole(str)
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if value, ok := claims[key].(string); ok {
		return value
	}
	return ""
}
