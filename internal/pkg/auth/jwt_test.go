package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketplace-backend/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "Marketplace Backend"
	cfg.JWT.Secret = "test-secret-key-that-is-long-enough-for-hs256"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour
	return cfg
}

func TestAccessTokenRoundtrip(t *testing.T) {
	manager := NewJWTManager(testConfig())

	token, err := manager.GenerateAccessToken(42, "jane@example.com", "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
}

func TestRefreshTokenRoundtrip(t *testing.T) {
	manager := NewJWTManager(testConfig())

	token, err := manager.GenerateRefreshToken(42, "jane@example.com")
	require.NoError(t, err)

	claims, err := manager.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestTokenTypeMismatchRejected(t *testing.T) {
	manager := NewJWTManager(testConfig())

	access, err := manager.GenerateAccessToken(1, "a@example.com", "admin")
	require.NoError(t, err)
	refresh, err := manager.GenerateRefreshToken(1, "a@example.com")
	require.NoError(t, err)

	_, err = manager.ValidateRefreshToken(access)
	assert.Error(t, err)

	_, err = manager.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager(testConfig())

	token, err := manager.GenerateAccessToken(7, "b@example.com", "store")
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "a-completely-different-secret-key-of-length"
	_, err = NewJWTManager(other).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	manager := NewJWTManager(testConfig())

	_, err := manager.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer token", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "missing prefix", header: "abc.def.ghi", want: ""},
		{name: "empty header", header: "", want: ""},
		{name: "prefix only", header: "Bearer ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTokenFromHeader(tt.header))
		})
	}
}
