package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing() CheckFunc {
	return func(_ context.Context) error { return nil }
}

func failing(msg string) CheckFunc {
	return func(_ context.Context) error { return errors.New(msg) }
}

func get(t *testing.T, fn http.HandlerFunc, path string) (*httptest.ResponseRecorder, statusResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	fn(w, req)

	var body statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w, body
}

func TestLiveEndpoint_AllPassing(t *testing.T) {
	s := New()
	s.AddLivenessCheck("a", time.Second, passing())
	s.AddLivenessCheck("b", time.Second, passing())

	w, body := get(t, s.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body.Status)
}

func TestLiveEndpoint_FailingCheck(t *testing.T) {
	s := New()
	s.AddLivenessCheck("db", time.Second, failing("connection refused"))

	// Checks start healthy; drive past the failure threshold.
	ctx := context.Background()
	for range failureThreshold {
		s.checks[0].run(ctx)
	}

	w, body := get(t, s.LiveEndpoint, "/livez")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestCheck_RecoversOnFirstSuccess(t *testing.T) {
	errs := []error{errors.New("e1"), errors.New("e2"), errors.New("e3"), nil}
	i := 0
	c := &check{name: "flaky", timeout: time.Second, fn: func(_ context.Context) error {
		err := errs[i]
		i++
		return err
	}}
	c.healthy.Store(true)

	ctx := context.Background()
	for range 3 {
		c.run(ctx)
	}
	assert.False(t, c.healthy.Load())

	c.run(ctx)
	assert.True(t, c.healthy.Load())
}

func TestReadyEndpoint_NotReadyUntilSet(t *testing.T) {
	s := New()

	w, body := get(t, s.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, body.Checks, "_readiness")

	s.SetReady(true)
	w, body = get(t, s.ReadyEndpoint, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body.Status)
}

func TestIsReady(t *testing.T) {
	s := New()
	s.AddReadinessCheck("db", time.Second, failing("down"))
	s.SetReady(true)

	assert.True(t, s.IsReady(), "check starts healthy")

	ctx := context.Background()
	for range failureThreshold {
		s.checks[0].run(ctx)
	}
	assert.False(t, s.IsReady())
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
