package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gabrielmiguelok/golivefolio/pkg/content"
)

func TestHealthCheck_AllPass(t *testing.T) {
	hc := NewChecker()
	hc.SetVersion("1.0.0")

	hc.AddCheck("one", func(ctx context.Context) error { return nil }, time.Second)
	hc.AddCheck("two", func(ctx context.Context) error { return nil }, time.Second)

	status := hc.Check(context.Background())

	if status.Status != StatusHealthy {
		t.Errorf("Expected healthy, got %s", status.Status)
	}
	if len(status.Checks) != 2 {
		t.Errorf("Expected 2 checks, got %d", len(status.Checks))
	}
	if status.Version != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %s", status.Version)
	}
}

func TestHealthCheck_OneFails(t *testing.T) {
	hc := NewChecker()

	hc.AddCheck("passing", func(ctx context.Context) error { return nil }, time.Second)
	hc.AddCheck("failing", func(ctx context.Context) error { return errors.New("nope") }, time.Second)

	status := hc.Check(context.Background())

	// Non-critical failure = degraded
	if status.Status != StatusDegraded {
		t.Errorf("Expected degraded, got %s", status.Status)
	}
	if status.Checks["failing"].Error != "nope" {
		t.Errorf("Failing check error = %q", status.Checks["failing"].Error)
	}
}

func TestHealthCheck_CriticalFails(t *testing.T) {
	hc := NewChecker()
	hc.AddCriticalCheck("content", func(ctx context.Context) error { return errors.New("gone") }, time.Second)
	hc.AddCheck("other", func(ctx context.Context) error { return errors.New("meh") }, time.Second)

	if status := hc.Check(context.Background()); status.Status != StatusUnhealthy {
		t.Errorf("Expected unhealthy, got %s", status.Status)
	}
}

func TestHealthCheck_Timeout(t *testing.T) {
	hc := NewChecker()
	hc.AddCriticalCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, 10*time.Millisecond)

	status := hc.Check(context.Background())

	if status.Checks["slow"].Status != StatusUnhealthy {
		t.Error("Slow check should time out")
	}
}

func TestReadinessHandler(t *testing.T) {
	hc := NewChecker()
	hc.AddCriticalCheck("content", func(ctx context.Context) error { return errors.New("gone") }, time.Second)

	rec := httptest.NewRecorder()
	hc.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}

	var body HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Checks["content"].Error != "gone" {
		t.Errorf("Unexpected body: %+v", body)
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestContentCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(good, []byte(`{"skills":[]}`), 0644)
	os.WriteFile(bad, []byte(`{`), 0644)

	if err := ContentCheck(&content.FileSource{Path: good})(context.Background()); err != nil {
		t.Errorf("good document: %v", err)
	}
	if err := ContentCheck(&content.FileSource{Path: bad})(context.Background()); err == nil {
		t.Error("malformed document should fail")
	}
	if err := ContentCheck(&content.FileSource{Path: filepath.Join(dir, "missing.json")})(context.Background()); err == nil {
		t.Error("missing document should fail")
	}
}

func TestSessionsCheck(t *testing.T) {
	n := 3
	check := SessionsCheck(func() int { return n }, 4)

	if err := check(context.Background()); err != nil {
		t.Errorf("below limit: %v", err)
	}
	n = 4
	if err := check(context.Background()); err == nil {
		t.Error("at limit should fail")
	}
}
