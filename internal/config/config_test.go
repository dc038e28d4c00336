package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadRequiresBackendSettings(t *testing.T) {
	t.Setenv("APPWRITE_ENDPOINT", "")
	t.Setenv("APPWRITE_PROJECT_ID", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("APPWRITE_ENDPOINT", "http://localhost:4280/v1")
	_, err = Load()
	assert.Error(t, err, "project id still missing")

	t.Setenv("APPWRITE_PROJECT_ID", "proj")
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:4280/v1", cfg.Backend.Endpoint)
	assert.Equal(t, "proj", cfg.Backend.ProjectID)
}

func TestLoadStubDefaults(t *testing.T) {
	cfg := LoadStub()
	assert.Equal(t, "4280", cfg.Stub.Port)
	assert.Equal(t, 60, cfg.Stub.SessionTTLMin)
}
