package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/wristchess/internal/bridge"
	"github.com/mcdev12/wristchess/internal/models"
	"github.com/mcdev12/wristchess/internal/store"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	wsBridge := bridge.NewWSBridge(bridge.DefaultConfig())
	initial := models.NewSessionState(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	st := store.New(initial,
		func(s *models.SessionState, _ models.Action, _ time.Time) *models.SessionState { return s },
		clockwork.NewFakeClock())

	srv := NewServer(Config{Port: "0"}, wsBridge, st)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["device_connected"])
}

func TestDebugStateServesSnapshot(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/debug/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var state models.SessionState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, models.PhaseIdle, state.Phase)
	assert.Equal(t, "w", state.Turn)
}
