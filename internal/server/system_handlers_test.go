package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioplan/internal/database"
)

func TestHandleSystemStatus(t *testing.T) {
	h := NewSystemHandlers(zerolog.Nop(), nil)

	rec := httptest.NewRecorder()
	h.HandleSystemStatus(rec, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime_seconds")
	assert.Contains(t, body, "cpu_percent")
	assert.Contains(t, body, "memory_percent")
	assert.GreaterOrEqual(t, body["goroutines"], 1.0)
	assert.NotEmpty(t, body["go_version"])
}

func TestHandleDatabaseStats(t *testing.T) {
	db, err := database.New(database.Config{
		Path:    "file::memory:",
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewSystemHandlers(zerolog.Nop(), []*database.DB{db})

	rec := httptest.NewRecorder()
	h.HandleDatabaseStats(rec, httptest.NewRequest(http.MethodGet, "/api/system/database/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]database.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "cache")
	assert.Positive(t, body["cache"].PageSize)
}
