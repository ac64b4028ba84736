package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"vendorguard/pkg/logger"
)

func newCapturedLogger(buf *bytes.Buffer) *logger.Logger {
	return &logger.Logger{Logger: zerolog.New(buf)}
}

func serveThrough(t *testing.T, log *logger.Logger, path string, status int) {
	t.Helper()
	handler := Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
}

func TestLoggerLevelsByOutcome(t *testing.T) {
	var buf bytes.Buffer
	log := newCapturedLogger(&buf)

	serveThrough(t, log, "/api/v1/stats", http.StatusOK)
	assert.Contains(t, buf.String(), `"level":"info"`)

	buf.Reset()
	serveThrough(t, log, "/api/v1/assessments", http.StatusInternalServerError)
	assert.Contains(t, buf.String(), `"level":"error"`)

	buf.Reset()
	serveThrough(t, log, "/health", http.StatusOK)
	assert.Contains(t, buf.String(), `"level":"debug"`)

	// a failing probe is still an error, demotion only applies to healthy polls
	buf.Reset()
	serveThrough(t, log, "/ready", http.StatusServiceUnavailable)
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestLoggerRecordsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	serveThrough(t, newCapturedLogger(&buf), "/api/v1/stats", http.StatusOK)

	out := buf.String()
	assert.Contains(t, out, `"method":"GET"`)
	assert.Contains(t, out, `"path":"/api/v1/stats"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"component":"http"`)
}
