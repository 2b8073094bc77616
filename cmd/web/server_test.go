package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitcraft-ai/internal/metrics"
	"suitcraft-ai/internal/outfit"
	"suitcraft-ai/internal/pipeline"
	"suitcraft-ai/internal/preference"
)

type stubRecommender struct {
	got preference.Raw
	res pipeline.Result
}

func (s *stubRecommender) Recommend(_ context.Context, raw preference.Raw) pipeline.Result {
	s.got = raw
	return s.res
}

func newTestServer(res pipeline.Result) (*stubRecommender, *metrics.Registry, http.Handler) {
	rec := &stubRecommender{res: res}
	reg := metrics.NewRegistry()
	s := &server{rec: rec, metrics: reg}
	return rec, reg, s.routes()
}

func decode(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestRecommendSuccess(t *testing.T) {
	o := outfit.Empty()
	o.Suit.Color = "Navy"
	rec, reg, h := newTestServer(pipeline.Assemble(o, []string{"https://img/1.png"}, "", 1))

	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(`{"occasion":"wedding","colorPreference":"classic","season":"fall"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.Equal(t, "wedding", rec.got.Occasion)
	assert.Equal(t, "classic", rec.got.ColorPreference)
	assert.Equal(t, "fall", rec.got.Season)

	body := decode(t, w.Body.String())
	assert.JSONEq(t, `["https://img/1.png"]`, string(body["images"]))
	assert.NotContains(t, body, "error")

	labels := map[string]string{"method": "POST", "path": "/api/recommend", "status": "2xx"}
	assert.Equal(t, int64(1), reg.Value("http_requests_total", labels))
}

func TestRecommendKeepsRequestID(t *testing.T) {
	_, _, h := newTestServer(pipeline.Assemble(outfit.Empty(), nil, "", 1))
	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(`{"occasion":"gala"}`))
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRecommendErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid", &preference.InvalidError{Field: "occasion", Reason: "is required"}, http.StatusBadRequest},
		{"upstream", &outfit.UpstreamError{Service: "dashscope", Err: assert.AnError}, http.StatusBadGateway},
		{"malformed", &outfit.MalformedOutputError{Err: assert.AnError}, http.StatusBadGateway},
		{"validation", &pipeline.ExhaustedError{Attempts: 3, Reason: &outfit.ValidationError{Kind: outfit.ColorPreferenceIgnored, Message: "wrong color"}}, http.StatusBadGateway},
		{"internal", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, h := newTestServer(pipeline.AssembleError(tc.err, 1))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(`{"occasion":"x"}`)))
			assert.Equal(t, tc.status, w.Code)

			body := decode(t, w.Body.String())
			for _, key := range []string{"suit", "shirt", "neckwear", "shoes", "accessories", "justification", "seasonalNotes", "styleNotes", "images", "error"} {
				assert.Contains(t, body, key)
			}
			assert.JSONEq(t, `[]`, string(body["images"]))
		})
	}
}

func TestRecommendBadJSON(t *testing.T) {
	rec, _, h := newTestServer(pipeline.Result{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(`{"occasion":`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, rec.got.Occasion)
	body := decode(t, w.Body.String())
	assert.JSONEq(t, `"invalid_preferences"`, string(body["errorKind"]))
}

func TestRecommendMethodNotAllowed(t *testing.T) {
	_, _, h := newTestServer(pipeline.Result{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recommend", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestOptions(t *testing.T) {
	_, _, h := newTestServer(pipeline.Result{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/options", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got optionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotEmpty(t, got.Occasions)
	assert.Equal(t, "wedding", got.Occasions[0].Key)
	assert.Equal(t, "ai-pick", got.ColorPreferences[len(got.ColorPreferences)-1].Key)
	assert.Len(t, got.Seasons, 4)
}

func TestHealthAndMetrics(t *testing.T) {
	_, _, h := newTestServer(pipeline.Result{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "http_requests_total{method=GET,path=/healthz,status=2xx} 1")
}
