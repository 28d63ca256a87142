package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/neomorfeo/siteclone/internal/config"
	"github.com/neomorfeo/siteclone/internal/domain"
)

func TestPlatformMode(t *testing.T) {
	mode := platformMode(config.Platform{
		SubdomainInstall: true,
		BaseDomain:       "www.example.com",
		BasePath:         "/",
		ReservedWords:    []string{"shop"},
		Duplicables:      "selected",
	})

	if !mode.SubdomainInstall || mode.BaseDomain != "www.example.com" {
		t.Errorf("unexpected mode %+v", mode)
	}
	if mode.Duplicables != domain.DuplicableSelected {
		t.Errorf("Duplicables = %q, want %q", mode.Duplicables, domain.DuplicableSelected)
	}
}

// discardStdout silences the JSON logs written by run().
func discardStdout(t *testing.T) {
	t.Helper()
	origStdout := os.Stdout
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("opening /dev/null: %v", err)
	}
	os.Stdout = devNull
	t.Cleanup(func() {
		os.Stdout = origStdout
		devNull.Close()
	})
}

func get(t *testing.T, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	return http.DefaultClient.Do(req)
}

// TestRun exercises the real run() function end-to-end: config, telemetry,
// River, HTTP server, and graceful shutdown.
func TestRun(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SITECLONE_CONFIG", filepath.Join(dir, "missing.yaml"))
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "test-run.db"))
	t.Setenv("SITECLONE_ASSETS_ROOT", filepath.Join(dir, "assets"))
	t.Setenv("PORT", "19876")
	t.Setenv("OTEL_EXPORTER", "none")
	discardStdout(t)

	errCh := make(chan error, 1)
	go func() { errCh <- run() }()

	// Wait for the HTTP server to become ready.
	serverURL := "http://localhost:19876"
	ready := false
	for range 50 {
		resp, reqErr := get(t, serverURL+"/api/v1/tenants")
		if reqErr == nil {
			resp.Body.Close()
			ready = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !ready {
		t.Fatal("server did not start within 5 seconds")
	}

	resp, err := get(t, serverURL+"/api/v1/duplications/token")
	if err != nil {
		t.Fatalf("GET token failed: %v", err)
	}
	var body struct {
		Token string `json:"token"`
	}
	err = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if err != nil || body.Token == "" {
		t.Fatalf("decoding token: %v (token %q)", err, body.Token)
	}

	// An empty platform has nothing to duplicate.
	resp, err = get(t, serverURL+"/api/v1/duplications/sources")
	if err != nil {
		t.Fatalf("GET sources failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("sources status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	// Send SIGINT to trigger graceful shutdown.
	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("finding process: %v", err)
	}
	if err := proc.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("sending SIGINT: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run() returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not exit within 10 seconds")
	}
}

// TestRun_InvalidDB verifies run() returns an error for an invalid database path.
func TestRun_InvalidDB(t *testing.T) {
	t.Setenv("SITECLONE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DATABASE_PATH", "/nonexistent/path/db.sqlite")
	t.Setenv("PORT", "19877")
	t.Setenv("OTEL_EXPORTER", "none")
	discardStdout(t)

	if err := run(); err == nil {
		t.Fatal("expected error for invalid database path, got nil")
	}
}

// TestRun_InvalidConfig verifies run() refuses an invalid configuration.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("SITECLONE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SITECLONE_DUPLICABLES", "nobody")

	if err := run(); err == nil {
		t.Fatal("expected config error, got nil")
	}
}
