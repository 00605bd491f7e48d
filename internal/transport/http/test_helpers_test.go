package http

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/amananurag20/Virtual-focus-room-sub000/internal/auth"
	"github.com/amananurag20/Virtual-focus-room-sub000/internal/config"
	"github.com/amananurag20/Virtual-focus-room-sub000/internal/core"
	"github.com/amananurag20/Virtual-focus-room-sub000/internal/store"
	"github.com/amananurag20/Virtual-focus-room-sub000/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return st
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, st store.Store, jwtSecret string) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(jwtSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return auth.NewService(st, jwtConfig)
}

// startTestServer wires an in-memory store, hub, and HTTP server.
func startTestServer(t *testing.T) (*httptest.Server, *stdhttp.Server, *auth.Service) {
	t.Helper()

	testStore := createTestStore(t)
	authService := createTestAuthService(t, testStore, "test-secret")

	disabledLogger := zerolog.Nop()

	hub := core.NewHub(testStore, &disabledLogger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg := config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		JWTSecret:         "test-secret",
		WSMessageLimit:    600,
	}

	server := NewServer(hub, authService, testStore, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, server, authService
}
