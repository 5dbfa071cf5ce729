package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appconfig "github.com/wolfman30/docsmile-suite/internal/config"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

func TestSetupMetricsExposesConsoleMetrics(t *testing.T) {
	handler, consoleMetrics := setupMetrics()
	if handler == nil || consoleMetrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	consoleMetrics.ObserveRequest(http.MethodGet, "/api/patients", http.StatusOK, 20*time.Millisecond)
	consoleMetrics.ObserveValidationRejection("appointments.create")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{"docsmile_api_requests_total", "go_goroutines"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s to be exported", name)
		}
	}
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	if pool := connectPostgresPool(context.Background(), "", logger); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestOpenAuditDBDisabled(t *testing.T) {
	logger := logging.New("error")
	if db := openAuditDB(&appconfig.Config{}, logger); db != nil {
		t.Fatalf("expected nil db without DATABASE_URL")
	}
	cfg := &appconfig.Config{DatabaseURL: "postgres://localhost/docsmile", AuditEnabled: false}
	if db := openAuditDB(cfg, logger); db != nil {
		t.Fatalf("expected nil db when audit is disabled")
	}
}

func TestSessionSecret(t *testing.T) {
	logger := logging.New("error")
	if got := sessionSecret(&appconfig.Config{SessionSecret: "configured"}, logger); got != "configured" {
		t.Fatalf("expected configured secret, got %q", got)
	}
	first := sessionSecret(&appconfig.Config{Env: "development"}, logger)
	second := sessionSecret(&appconfig.Config{Env: "development"}, logger)
	if len(first) != 64 || first == second {
		t.Fatalf("expected distinct generated secrets, got %q and %q", first, second)
	}
}
