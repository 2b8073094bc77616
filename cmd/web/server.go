package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"suitcraft-ai/internal/metrics"
	"suitcraft-ai/internal/pipeline"
	"suitcraft-ai/internal/preference"
)

const (
	maxBodyBytes  = 64 << 10
	requestIDName = "X-Request-ID"

	contentSecurityPolicy = "default-src 'self'; img-src 'self' https: data:; script-src 'self'; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'"
)

type recommender interface {
	Recommend(ctx context.Context, raw preference.Raw) pipeline.Result
}

type server struct {
	rec     recommender
	metrics *metrics.Registry
	logger  *slog.Logger
	timeout time.Duration
}

type apiError struct {
	Error string `json:"error"`
}

type optionsResponse struct {
	Occasions        []preference.NamedOption `json:"occasions"`
	ColorPreferences []preference.NamedOption `json:"colorPreferences"`
	FormalityLevels  []preference.NamedOption `json:"formalityLevels"`
	BodyTypes        []preference.NamedOption `json:"bodyTypes"`
	SkinTones        []preference.NamedOption `json:"skinTones"`
	Seasons          []preference.NamedOption `json:"seasons"`
	Budgets          []preference.NamedOption `json:"budgets"`
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/recommend", s.handleRecommend)
	mux.HandleFunc("/api/options", s.handleOptions)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.HandlerText())
		mux.Handle("/metrics.json", s.metrics.HandlerJSON())
	}
	return withLogging(mux, s.logger, s.metrics)
}

func (s *server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var raw preference.Raw
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		reason := "is not valid JSON"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			reason = "is too large"
		}
		res := pipeline.AssembleError(&preference.InvalidError{Field: "body", Reason: reason}, 0)
		writeJSON(w, http.StatusBadRequest, res)
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res := s.rec.Recommend(ctx, raw)
	writeJSON(w, statusFor(res), res)
}

func (s *server) handleOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, optionsResponse{
		Occasions:        preference.Occasions(),
		ColorPreferences: preference.Palettes(),
		FormalityLevels:  preference.FormalityLevels(),
		BodyTypes:        preference.BodyTypes(),
		SkinTones:        preference.SkinTones(),
		Seasons:          preference.Seasons(),
		Budgets:          preference.Budgets(),
	})
}

func statusFor(res pipeline.Result) int {
	switch res.ErrorKind {
	case "":
		return http.StatusOK
	case pipeline.ErrorKindInvalidPreferences:
		return http.StatusBadRequest
	case pipeline.ErrorKindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func withLogging(next http.Handler, logger *slog.Logger, reg *metrics.Registry) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rid := r.Header.Get(requestIDName)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(requestIDName, rid)
		w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
		w.Header().Set("X-Content-Type-Options", "nosniff")

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		class := metrics.StatusClass(sw.status)
		labels := map[string]string{"method": r.Method, "path": r.URL.Path, "status": class}
		reg.Inc(r.Context(), "http_requests_total", labels, 1)

		attrs := []any{
			"request_id", rid,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"dur_ms", time.Since(start).Milliseconds(),
		}
		if sw.status >= 500 {
			reg.Inc(r.Context(), "http_requests_errors_total", labels, 1)
			logger.Error("http request failed", attrs...)
			return
		}
		logger.Info("http", attrs...)
	})
}
