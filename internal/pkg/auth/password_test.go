package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketplace-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func passwordManager() *PasswordManager {
	cfg := &config.Config{}
	cfg.Security.BcryptCost = bcrypt.MinCost
	return NewPasswordManager(cfg)
}

func TestHashAndVerifyPassword(t *testing.T) {
	manager := passwordManager()

	hash, err := manager.HashPassword("Zx9!Kw2#Mq")
	require.NoError(t, err)
	assert.NotEqual(t, "Zx9!Kw2#Mq", hash)

	assert.NoError(t, manager.VerifyPassword("Zx9!Kw2#Mq", hash))
	assert.Error(t, manager.VerifyPassword("Zx9!Kw2#Mr", hash))
}

func TestValidatePassword(t *testing.T) {
	manager := passwordManager()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "strong password", password: "Zx9!Kw2#Mq", wantErr: false},
		{name: "too short", password: "Zx9!Kw2", wantErr: true},
		{name: "no uppercase", password: "zx9!kw2#mq", wantErr: true},
		{name: "no lowercase", password: "ZX9!KW2#MQ", wantErr: true},
		{name: "no number", password: "Zxq!Kwz#Mq", wantErr: true},
		{name: "no special character", password: "Zx9pKw2dMq", wantErr: true},
		{name: "sequential letters", password: "Zabc9!Kw2#", wantErr: true},
		{name: "sequential numbers", password: "Zx123!Kw#q", wantErr: true},
		{name: "repeating characters", password: "Zxxx9!Kw2#", wantErr: true},
		{name: "common word", password: "Password9!x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := manager.ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
