package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "autostock", cfg.Database.DBName)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 8, cfg.JWT.ExpireHours)
	assert.Equal(t, 3, cfg.Notifications.MaxPresentations)
	assert.Equal(t, 10*time.Second, cfg.Notifications.JitterMin)
	assert.Equal(t, 20*time.Second, cfg.Notifications.JitterMax)
	assert.Equal(t, "superadmin", cfg.Bootstrap.SuperAdminUsername)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NOTIFY_MAX_PRESENTATIONS", "5")
	t.Setenv("NOTIFY_JITTER_MIN_SEC", "1")
	t.Setenv("NOTIFY_JITTER_MAX_SEC", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Notifications.MaxPresentations)
	assert.Equal(t, time.Second, cfg.Notifications.JitterMin)
	assert.Equal(t, 2*time.Second, cfg.Notifications.JitterMax)
}

func TestLoadRejectsInvalidJitter(t *testing.T) {
	t.Setenv("NOTIFY_JITTER_MIN_SEC", "20")
	t.Setenv("NOTIFY_JITTER_MAX_SEC", "10")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "autostock", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/autostock?sslmode=disable", db.DSN())

	db.URL = "postgres://explicit"
	assert.Equal(t, "postgres://explicit", db.DSN())
}

func TestNotificationsValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     NotificationsConfig
		wantErr bool
	}{
		{"valid", NotificationsConfig{MaxPresentations: 3, JitterMin: 10 * time.Second, JitterMax: 20 * time.Second}, false},
		{"equal bounds", NotificationsConfig{MaxPresentations: 3, JitterMin: 10 * time.Second, JitterMax: 10 * time.Second}, false},
		{"zero presentations", NotificationsConfig{MaxPresentations: 0, JitterMin: time.Second, JitterMax: time.Second}, true},
		{"inverted jitter", NotificationsConfig{MaxPresentations: 3, JitterMin: 20 * time.Second, JitterMax: 10 * time.Second}, true},
		{"zero jitter min", NotificationsConfig{MaxPresentations: 3, JitterMin: 0, JitterMax: time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
