package server

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"crimson-db/internal/config"
	"crimson-db/internal/db"
	"crimson-db/internal/media"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	t.Cleanup(ts.Close)
	return ts
}

// lockedBuffer collects log output written from handler goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testApp struct {
	ts   *httptest.Server
	conn *gorm.DB
	logs *lockedBuffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	conn, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.EnsureRoles(conn); err != nil {
		t.Fatalf("seed roles: %v", err)
	}

	bucket, err := media.Open(context.Background(), "mem://", "http://localhost/media")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	t.Cleanup(func() { _ = bucket.Close() })

	cfg := config.Default()
	cfg.SessionSecret = "test-secret"
	cfg.MaxUploadBytes = 1 << 20

	logs := &lockedBuffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	srv := New(conn, bucket, cfg, logger)
	return &testApp{ts: newTestServer(t, srv.Handler()), conn: conn, logs: logs}
}

// signIn creates an account for email and returns its session token.
func (a *testApp) signIn(t *testing.T, email string) string {
	t.Helper()
	creds := map[string]string{"email": email, "password": "correct-horse"}
	resp := doRequest(t, a.ts, http.MethodPost, "/api/auth/signup", creds)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	resp = doRequest(t, a.ts, http.MethodPost, "/api/auth/login", creds)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	token, ok := body["token"].(string)
	if !ok || token == "" {
		t.Fatalf("expected session token, got %#v", body["token"])
	}
	return token
}
