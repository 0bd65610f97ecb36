package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjroesink/whisper/internal/app"
	"github.com/sjroesink/whisper/internal/audio"
	"github.com/sjroesink/whisper/internal/errors"
	"github.com/sjroesink/whisper/internal/history"
	"github.com/sjroesink/whisper/internal/provider"
	"github.com/sjroesink/whisper/internal/settings"
)

type fakeRecorder struct {
	captured audio.Captured
}

func (f *fakeRecorder) Start(string) error { return nil }
func (f *fakeRecorder) Stop() audio.Captured {
	return f.captured
}

type fakeProvider struct {
	id     provider.ID
	result *provider.Result
	err    error
}

func (f *fakeProvider) ID() provider.ID { return f.id }
func (f *fakeProvider) Name() string    { return string(f.id) }
func (f *fakeProvider) Available() bool { return true }

func (f *fakeProvider) Transcribe(ctx context.Context, samples []float32, cfg provider.Config) (*provider.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type testEnv struct {
	svc *Service
	a   *app.App
}

func newTestService(t *testing.T, rec *fakeRecorder, prov *fakeProvider, withHistory bool) *testEnv {
	t.Helper()
	sm, err := settings.NewManager(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	reg := provider.NewRegistry(prov.id, prov)
	a := app.New(sm, reg, rec, nil, app.NewBus())

	var hist *history.Store
	if withHistory {
		hist, err = history.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
		require.NoError(t, err)
		t.Cleanup(func() { hist.Close() })
	}

	svc := NewService(a, sm, reg, hist, nil)
	return &testEnv{svc: svc, a: a}
}

func doJSON(t *testing.T, svc *Service, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	svc.GetRouter().ServeHTTP(w, req)
	return w
}

func TestStatusEndpoint(t *testing.T) {
	env := newTestService(t, &fakeRecorder{}, &fakeProvider{id: provider.ConstmeWhisper}, false)

	w := doJSON(t, env.svc, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "idle", resp["state"])
	assert.Equal(t, string(provider.ConstmeWhisper), resp["provider"])
}

func TestProvidersList(t *testing.T) {
	env := newTestService(t, &fakeRecorder{}, &fakeProvider{id: provider.OpenAIWhisper}, false)

	w := doJSON(t, env.svc, http.MethodGet, "/api/v1/providers", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Providers []provider.Info `json:"providers"`
		Active    string          `json:"active"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Providers, 1)
	assert.Equal(t, string(provider.OpenAIWhisper), resp.Active)
	assert.True(t, resp.Providers[0].Available)
}

func TestSetActiveProviderUnknown(t *testing.T) {
	env := newTestService(t, &fakeRecorder{}, &fakeProvider{id: provider.ConstmeWhisper}, false)

	w := doJSON(t, env.svc, http.MethodPost, "/api/v1/providers/active", map[string]string{"id": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordStartStop(t *testing.T) {
	samples := make([]float32, 16000)
	for i := range samples {
		samples[i] = 0.2
	}
	rec := &fakeRecorder{captured: audio.Captured{Samples: samples, SampleRate: 16000, Channels: 1}}
	prov := &fakeProvider{
		id:     provider.ConstmeWhisper,
		result: &provider.Result{Text: "transcribed", Provider: provider.ConstmeWhisper},
	}
	env := newTestService(t, rec, prov, false)

	w := doJSON(t, env.svc, http.MethodPost, "/api/v1/record/start", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// a second start while recording conflicts
	w = doJSON(t, env.svc, http.MethodPost, "/api/v1/record/start", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, env.svc, http.MethodPost, "/api/v1/record/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res provider.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "transcribed", res.Text)
}

func TestRecordStopWithoutSession(t *testing.T) {
	env := newTestService(t, &fakeRecorder{}, &fakeProvider{id: provider.ConstmeWhisper}, false)

	w := doJSON(t, env.svc, http.MethodPost, "/api/v1/record/stop", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRecordStopTranscribeFailure(t *testing.T) {
	samples := make([]float32, 8000)
	rec := &fakeRecorder{captured: audio.Captured{Samples: samples, SampleRate: 16000, Channels: 1}}
	prov := &fakeProvider{
		id:  provider.GoogleCloud,
		err: errors.TranscribeErr(nil, "backend unreachable"),
	}
	env := newTestService(t, rec, prov, false)

	w := doJSON(t, env.svc, http.MethodPost, "/api/v1/record/start", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.svc, http.MethodPost, "/api/v1/record/stop", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	env := newTestService(t, &fakeRecorder{}, &fakeProvider{id: provider.ConstmeWhisper}, false)

	w := doJSON(t, env.svc, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var s settings.Settings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	s.Language = "de"

	w = doJSON(t, env.svc, http.MethodPut, "/api/v1/settings", s)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.svc, http.MethodGet, "/api/v1/settings", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, "de", s.Language)
}

func TestHistoryEndpoints(t *testing.T) {
	env := newTestService(t, &fakeRecorder{}, &fakeProvider{id: provider.ConstmeWhisper}, true)

	w := doJSON(t, env.svc, http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.svc, http.MethodDelete, "/api/v1/history", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHistoryDisabled(t *testing.T) {
	env := newTestService(t, &fakeRecorder{}, &fakeProvider{id: provider.ConstmeWhisper}, false)

	w := doJSON(t, env.svc, http.MethodGet, "/api/v1/history", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestEngineStatusUnavailable(t *testing.T) {
	env := newTestService(t, &fakeRecorder{}, &fakeProvider{id: provider.ConstmeWhisper}, false)

	w := doJSON(t, env.svc, http.MethodGet, "/api/v1/engine/status", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
