package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/besttroy123/websubiekt-backend/internal/scheduler"
	"github.com/besttroy123/websubiekt-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func newTestRouter(t *testing.T) (*gin.Engine, *scheduler.Scheduler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)
	sched := scheduler.New(log)
	noop := func(ctx context.Context) error { return nil }
	if err := sched.Register(scheduler.JobInventory, 300000*time.Millisecond, noop); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := sched.Register(scheduler.JobSalesReport, 300000*time.Millisecond, noop); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	router := gin.New()
	NewSettingsHandler(sched, []string{scheduler.JobInventory, scheduler.JobSalesReport}).RegisterRoutes(router.Group(""))
	NewInventoryHandler(nil, sched).RegisterRoutes(router.Group(""))
	return router, sched
}

func TestSetInterval_UpdatesEveryJob(t *testing.T) {
	router, sched := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api-settings/set-interval?interval=120000", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res response.Status
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !res.Success {
		t.Errorf("expected success response, got %+v", res)
	}

	for _, name := range []string{scheduler.JobInventory, scheduler.JobSalesReport} {
		if every, _ := sched.Interval(name); every != 120000*time.Millisecond {
			t.Errorf("expected %s interval 120000ms, got %s", name, every)
		}
	}
}

func TestSetInterval_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"non-numeric", "/inventory/set-interval?interval=abc"},
		{"absent", "/inventory/set-interval"},
		{"negative", "/inventory/set-interval?interval=-5"},
		{"zero", "/inventory/set-interval?interval=0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, sched := newTestRouter(t)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.url, nil))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var res response.Status
			if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
				t.Fatalf("invalid response body: %v", err)
			}
			if res.Success {
				t.Errorf("expected failure response, got %+v", res)
			}
			// scheduler state is untouched on rejection
			if every, _ := sched.Interval(scheduler.JobInventory); every != 300000*time.Millisecond {
				t.Errorf("expected interval unchanged at 300000ms, got %s", every)
			}
		})
	}
}

func TestGetSettings_ReportsCurrentInterval(t *testing.T) {
	router, sched := newTestRouter(t)
	if err := sched.SetInterval(scheduler.JobInventory, 90000*time.Millisecond); err != nil {
		t.Fatalf("SetInterval error: %v", err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api-settings", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		UpdateInterval         string           `json:"update_interval"`
		UpdateIntervalReadable string           `json:"update_interval_readable"`
		JobIntervals           map[string]int64 `json:"job_intervals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.UpdateInterval != "90000" {
		t.Errorf("expected update_interval 90000, got %q", body.UpdateInterval)
	}
	if body.UpdateIntervalReadable != "1 minutes 30 seconds" {
		t.Errorf("unexpected readable interval %q", body.UpdateIntervalReadable)
	}
	if body.JobIntervals[scheduler.JobSalesReport] != 300000 {
		t.Errorf("expected sales-report interval 300000, got %d", body.JobIntervals[scheduler.JobSalesReport])
	}
}
