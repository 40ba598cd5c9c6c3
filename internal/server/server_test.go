package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant-be/internal/bootstrap"
	"voice-assistant-be/internal/config"
	"voice-assistant-be/internal/dto"
	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/internal/pkg/serverutils"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("INTENTS_FILE", "testdata/intents.yaml")
	t.Setenv("CLASSIFIER_PROVIDER", "pattern")
	t.Setenv("NATS_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg := config.Load()
	container := bootstrap.NewContainer(cfg, logger.NewNopLogger())
	t.Cleanup(container.Close)
	return New(cfg, container)
}

func TestServerRoutes(t *testing.T) {
	app := newTestServer(t).GetApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var health dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.True(t, health.MlEnabled)

	req := httptest.NewRequest("POST", "/api/process", strings.NewReader(`{"command":"calculate 2 + 2","session_id":"srv"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	var processed serverutils.BaseResponse[dto.ProcessResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&processed))
	assert.Equal(t, "The result is 4", processed.Data.Response)
	assert.Equal(t, "arithmetic", processed.Data.Stage)

	req = httptest.NewRequest("POST", "/api/process", strings.NewReader(`{"command":"hello","session_id":"srv"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&processed))
	assert.Equal(t, "Hello from the test table!", processed.Data.Response)
	require.NotNil(t, processed.Data.Intent)
	assert.Equal(t, "greeting", *processed.Data.Intent)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/sessions/srv", nil))
	require.NoError(t, err)
	var sess serverutils.BaseResponse[dto.SessionResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
	assert.Len(t, sess.Data.History, 4)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "assistant_route_stage_total")

	resp, err = app.Test(httptest.NewRequest("GET", "/api/ws/chat", nil))
	require.NoError(t, err)
	assert.Equal(t, 426, resp.StatusCode)
}
