package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("PORT", "")
	t.Setenv("AUTH_ENDPOINT", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, ,http://127.0.0.1:5173")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DefaultAuthEndpoint, cfg.AuthEndpoint)
	assert.Equal(t, DefaultPostLoginRoute, cfg.PostLoginRoute)
	assert.Equal(t, StorageCookie, cfg.StorageBackend)
	assert.Equal(t, time.Duration(0), cfg.AuthTimeout)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.AllowedOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing session key", map[string]string{"SESSION_KEY": ""}},
		{"bad port", map[string]string{"PORT": "eighty"}},
		{"bad timeout", map[string]string{"AUTH_TIMEOUT": "soon"}},
		{"mongo without uri", map[string]string{"STORAGE_BACKEND": "mongo", "MONGO_URI": ""}},
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "redis"}},
		{"relative route", map[string]string{"POST_LOGIN_ROUTE": "user"}},
		{"zero burst", map[string]string{"LOGIN_BURST": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_KEY", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMongoBackend(t *testing.T) {
	t.Setenv("SESSION_KEY", "secret")
	t.Setenv("STORAGE_BACKEND", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("AUTH_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMongo, cfg.StorageBackend)
	assert.Equal(t, "pokedoro", cfg.MongoDatabase)
	assert.Equal(t, 5*time.Second, cfg.AuthTimeout)
}
