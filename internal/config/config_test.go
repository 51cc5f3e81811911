package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("MAIL_PROVIDER", "")
	t.Setenv("SESSION_MODE", "")
	t.Setenv("SESSION_COOKIE_NAME", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("OPERATOR_EMAIL", "")
	t.Setenv("EMAIL_FROM", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SessionModeToken, cfg.Session.Mode)
	assert.Equal(t, "nxla_admin", cfg.Session.CookieName)
	assert.Equal(t, 10*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "console", cfg.Mail.Provider)
	assert.Equal(t, cfg.Mail.FromEmail, cfg.Mail.OperatorEmail)
}

func TestLoadIdentifierMode(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_MODE", "identifier")
	t.Setenv("SESSION_COOKIE_NAME", "")
	t.Setenv("MAIL_PROVIDER", "console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "admin_session", cfg.Session.CookieName)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"ShortSecret", map[string]string{"JWT_SECRET": "short", "SESSION_MODE": "token"}},
		{"UnknownMode", map[string]string{"JWT_SECRET": testSecret, "SESSION_MODE": "magic"}},
		{"ResendWithoutKey", map[string]string{"JWT_SECRET": testSecret, "MAIL_PROVIDER": "resend", "RESEND_API_KEY": ""}},
		{"SMTPWithoutCredentials", map[string]string{"JWT_SECRET": testSecret, "MAIL_PROVIDER": "smtp", "SMTP_USERNAME": ""}},
		{"UnknownProvider", map[string]string{"JWT_SECRET": testSecret, "MAIL_PROVIDER": "pigeon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_MODE", "")
			t.Setenv("MAIL_PROVIDER", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_DURATION", "90m")
	t.Setenv("X_BAD_DURATION", "soon")
	t.Setenv("X_FLOAT", "2.5")
	t.Setenv("X_SLICE", "a.com, b.com")

	assert.Equal(t, 90*time.Minute, getEnvAsDuration("X_DURATION", time.Hour))
	assert.Equal(t, time.Hour, getEnvAsDuration("X_BAD_DURATION", time.Hour))
	assert.Equal(t, 2.5, getEnvAsFloat("X_FLOAT", 1))
	assert.Equal(t, []string{"a.com", "b.com"}, getEnvAsSlice("X_SLICE", nil))
}

func TestDatabaseConfig(t *testing.T) {
	pg := DatabaseConfig{URL: "postgres://u:p@db:5432/salon?sslmode=disable"}
	assert.True(t, pg.IsPostgres())

	lite := DatabaseConfig{URL: "sqlite:///./data/salon.db"}
	assert.False(t, lite.IsPostgres())
	assert.Equal(t, "./data/salon.db", lite.GetSQLitePath())
}
