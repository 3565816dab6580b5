package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talenttune/talenttune-api/internal/models"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewService("test-secret", 24*time.Hour)

	claims := Claims{
		UserID: 42,
		Email:  "admin@example.com",
		Name:   "Admin User",
		Role:   models.RoleAdministrator,
	}

	raw, err := svc.Issue(claims)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	decoded, ok := svc.Verify(raw)
	require.True(t, ok)
	require.Equal(t, claims, decoded)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	current := time.Now()
	svc := NewService("test-secret", 24*time.Hour).WithClock(func() time.Time { return current })

	raw, err := svc.Issue(Claims{UserID: 1, Email: "user@example.com", Role: models.RoleUser})
	require.NoError(t, err)

	// Still valid just inside the window.
	current = current.Add(24*time.Hour - time.Minute)
	_, ok := svc.Verify(raw)
	require.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = svc.Verify(raw)
	require.False(t, ok)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	raw, err := svc.Issue(Claims{UserID: 7, Email: "user@example.com", Role: models.RoleUser})
	require.NoError(t, err)

	_, ok := svc.Verify(raw + "x")
	require.False(t, ok)

	other := NewService("other-secret", time.Hour)
	_, ok = other.Verify(raw)
	require.False(t, ok)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, ok := svc.Verify(raw)
		require.False(t, ok, "token %q must be invalid", raw)
	}
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	raw, err := svc.Issue(Claims{UserID: 9, Email: "x@example.com", Role: models.Role("SUPERUSER")})
	require.NoError(t, err)

	_, ok := svc.Verify(raw)
	require.False(t, ok)
}
