package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuel-backend/internal/config"
)

func manager(t *testing.T, now time.Time) *JWTManager {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "fuel-backend"
	cfg.JWT.ExpirationHours = 1
	m := NewJWTManager(cfg)
	m.now = func() time.Time { return now }
	return m
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 28, 12, 0, 0, 0, time.UTC)
	m := manager(t, now)

	tok, err := m.GenerateToken("ama", "Client", "TT244560001")
	require.NoError(t, err)
	claims, err := m.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, RoleClient, claims.Role)
	assert.Equal(t, "TT244560001", claims.ClientID)
	assert.Equal(t, "ama", claims.Subject)

	staff, err := m.GenerateToken("kofi", RoleAdmin, "ignored")
	require.NoError(t, err)
	claims, err = m.ValidateToken(staff)
	require.NoError(t, err)
	assert.Empty(t, claims.ClientID)
}

func TestTokenRejections(t *testing.T) {
	now := time.Date(2024, 3, 28, 12, 0, 0, 0, time.UTC)
	m := manager(t, now)

	_, err := m.GenerateToken("x", "driver", "")
	assert.Error(t, err)
	_, err = m.GenerateToken("x", RoleExternal, " ")
	assert.Error(t, err)

	tok, err := m.GenerateToken("kofi", RoleAssistant, "")
	require.NoError(t, err)

	later := manager(t, now.Add(2*time.Hour))
	_, err = later.ValidateToken(tok)
	assert.Error(t, err, "expired")

	other := manager(t, now)
	other.secret = []byte("another")
	_, err = other.ValidateToken(tok)
	assert.Error(t, err, "wrong secret")

	_, err = m.ValidateToken("not-a-token")
	assert.Error(t, err)
}
