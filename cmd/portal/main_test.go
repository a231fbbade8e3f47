package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/recruitment-portal/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.SQLiteDSN = filepath.Join(t.TempDir(), "portal.db")
	cfg.PasswordHash = "bcrypt"
	return cfg
}

func TestNewPortal(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	cfg := testConfig(t)

	app, err := newPortal(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("newPortal: %v", err)
	}
	defer app.Close()

	if !strings.Contains(logs.String(), "default administrator created") {
		t.Fatalf("expected administrator seed to be logged:\n%s", logs.String())
	}

	t.Run("health check reports ok", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("seeded administrator can sign in", func(t *testing.T) {
		body := strings.NewReader(`{"email":"admin@admin.com","password":"12345"}`)
		rec := httptest.NewRecorder()
		app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", body))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"must_change_password":true`) {
			t.Fatalf("expected seeded admin to require a password change: %s", rec.Body.String())
		}
	})
}

func TestNewPortalSeedsOnce(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)

	first, err := newPortal(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	first.Close()

	var logs bytes.Buffer
	second, err := newPortal(context.Background(), cfg, slog.New(slog.NewTextHandler(&logs, nil)))
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	defer second.Close()

	if strings.Contains(logs.String(), "default administrator created") {
		t.Fatalf("administrator seeded twice:\n%s", logs.String())
	}
}

func TestRunRejectsInvalidConfiguration(t *testing.T) {
	t.Setenv("PORTAL_SESSION_STORE", "memcached")

	err := run(context.Background(), io.Discard)
	if err == nil || !strings.Contains(err.Error(), "PORTAL_SESSION_STORE") {
		t.Fatalf("expected configuration error naming the variable, got %v", err)
	}
}
