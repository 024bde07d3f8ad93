package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/user/harvester-service/internal/entity"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeStats struct {
	stats *entity.StoreStats
	err   error
}

func (f fakeStats) Counts(context.Context) (*entity.StoreStats, error) {
	return f.stats, f.err
}

func TestHealthCheckHealthy(t *testing.T) {
	h := NewHandler(fakePinger{}, fakePinger{}, fakeStats{})
	rec := httptest.NewRecorder()
	h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["postgres"] != "healthy" || body["redis"] != "healthy" {
		t.Fatalf("body = %v, want both dependencies healthy", body)
	}
}

func TestHealthCheckDependencyDown(t *testing.T) {
	h := NewHandler(fakePinger{err: errors.New("connection refused")}, fakePinger{}, fakeStats{})
	rec := httptest.NewRecorder()
	h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["postgres"] != "unhealthy" || body["redis"] != "healthy" {
		t.Fatalf("body = %v, want postgres unhealthy and redis healthy", body)
	}
}

func TestStats(t *testing.T) {
	h := NewHandler(fakePinger{}, fakePinger{}, fakeStats{stats: &entity.StoreStats{
		Categories: 3, Products: 12, Templates: 7, Records: 420, ProcessedURLs: 98,
	}})
	rec := httptest.NewRecorder()
	h.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got entity.StoreStats
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Templates != 7 || got.ProcessedURLs != 98 {
		t.Fatalf("stats = %+v, want the repository counts echoed", got)
	}
}

func TestStatsStoreError(t *testing.T) {
	h := NewHandler(fakePinger{}, fakePinger{}, fakeStats{err: errors.New("store gone")})
	rec := httptest.NewRecorder()
	h.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
