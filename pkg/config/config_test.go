package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "MONGO_DB", "JWT_SECRET", "JWT_TTL", "ALLOWED_ORIGINS", "AUTH_RATE_LIMIT", "AUTH_RATE_WINDOW"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "nano_social", cfg.MongoDB)
	assert.Equal(t, 15*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 20, cfg.AuthRateLimit)
	assert.Equal(t, time.Minute, cfg.AuthRateWindow)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("AUTH_RATE_LIMIT", "5")
	t.Setenv("AUTH_RATE_WINDOW", "not-a-duration")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 5, cfg.AuthRateLimit)
	assert.Equal(t, time.Minute, cfg.AuthRateWindow)
}

func TestValidateProductionSecret(t *testing.T) {
	base := Config{Env: "production", MongoURI: "mongodb://db", JWTTTL: time.Hour}

	tests := []struct {
		name    string
		secret  string
		wantErr string
	}{
		{"empty", "", "must be set"},
		{"default", DefaultJWTSecret, "must be changed"},
		{"short", "too-short", "at least 32"},
		{"strong", strings.Repeat("k", 32), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.JWTSecret = tt.secret
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateFirebaseBucket(t *testing.T) {
	cfg := Config{Env: "development", MongoURI: "mongodb://db", JWTSecret: "x", JWTTTL: time.Hour, FirebaseCredentialsPath: "creds.json"}
	assert.Error(t, cfg.Validate())

	cfg.FirebaseStorageBucket = "app.appspot.com"
	assert.NoError(t, cfg.Validate())
}
