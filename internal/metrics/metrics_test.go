package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeySortsLabels(t *testing.T) {
	assert.Equal(t, "hits", Key("hits", nil))
	assert.Equal(t, "hits{a=1,b=2}", Key("hits", map[string]string{"b": "2", "a": "1"}))
}

func TestIncConcurrent(t *testing.T) {
	reg := NewRegistry()
	labels := map[string]string{"outcome": "accepted"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Inc(context.Background(), "recommendations_total", labels, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(20), reg.Value("recommendations_total", labels))
	assert.Zero(t, reg.Value("recommendations_total", nil))
}

func TestHandlers(t *testing.T) {
	reg := NewRegistry()
	reg.Inc(context.Background(), "b_total", nil, 2)
	reg.Inc(context.Background(), "a_total", map[string]string{"kind": "x"}, 1)
	reg.Inc(context.Background(), "ignored_total", nil, 0)

	rec := httptest.NewRecorder()
	reg.HandlerText().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "a_total{kind=x} 1\nb_total 2\n", rec.Body.String())

	rec = httptest.NewRecorder()
	reg.HandlerJSON().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics.json", nil))
	var got map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, map[string]int64{"a_total{kind=x}": 1, "b_total": 2}, got)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", StatusClass(200))
	assert.Equal(t, "4xx", StatusClass(404))
	assert.Equal(t, "5xx", StatusClass(502))
	assert.Equal(t, "0", StatusClass(0))
}
