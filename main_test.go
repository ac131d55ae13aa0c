package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tenorio-sousa/Ludo-MC322/game/config"
	"github.com/tenorio-sousa/Ludo-MC322/game/service"
	"github.com/tenorio-sousa/Ludo-MC322/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Ludo Game Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

// parseFlags runs the app with args and returns the merged config
func parseFlags(t *testing.T, args ...string) (*config.ServerConfig, error) {
	t.Helper()
	var cfg *config.ServerConfig
	var loadErr error

	app := newApp()
	app.Commands = nil
	app.Action = func(ctx context.Context, cmd *cli.Command) error {
		cfg, loadErr = loadConfig(cmd)
		return nil
	}
	if err := app.Run(context.Background(), append([]string{"ludo"}, args...)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return cfg, loadErr
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := parseFlags(t)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Host != "localhost" || cfg.Port != 8080 {
		t.Errorf("Unexpected defaults: %s", cfg.Addr())
	}
	if cfg.ConfigDir != "configs" || cfg.SaveBackend != config.BackendFile {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("LUDO_PORT", "9000")
	t.Setenv("LUDO_HOST", "0.0.0.0")

	cfg, err := parseFlags(t, "--port", "9191", "--save-backend", "sqlite", "--ai-delay", "300ms", "--debug")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Port != 9191 {
		t.Errorf("Expected flag port 9191, got %d", cfg.Port)
	}
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Expected env host, got %s", cfg.Host)
	}
	if cfg.SaveBackend != config.BackendSQLite || cfg.AIDelay != 300*time.Millisecond || !cfg.Debug {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	if _, err := parseFlags(t, "--save-backend", "postgres"); err == nil {
		t.Error("Expected error for postgres without DSN")
	}
	if _, err := parseFlags(t, "--save-slots", "0"); err == nil {
		t.Error("Expected error for zero save slots")
	}
}

func testConfig(t *testing.T) *config.ServerConfig {
	t.Helper()
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	dir := t.TempDir()
	return &config.ServerConfig{
		Host:        "127.0.0.1",
		Port:        0,
		ConfigDir:   "configs",
		SessionsDir: filepath.Join(dir, "sessions"),
		SaveBackend: config.BackendFile,
		SaveDir:     filepath.Join(dir, "saves"),
		SaveSlots:   4,
	}
}

func TestInitializeServices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := initializeServices(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	info, err := svc.game.CreateSession(ctx, service.CreateSessionRequest{ConfigID: "duel"})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := svc.game.SaveGame(ctx, info.ID, 1); err != nil {
		t.Errorf("SaveGame failed: %v", err)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.ConfigDir = "/non/existent/path"

	if _, err := initializeServices(context.Background(), cfg); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestBackgroundRoutinesStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc, err := initializeServices(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	done := make(chan struct{}, 2)
	go func() {
		sessionCleanupRoutine(ctx, svc.sessions, time.Millisecond)
		done <- struct{}{}
	}()
	go func() {
		filesystemSyncRoutine(ctx, svc.sessions, time.Millisecond)
		done <- struct{}{}
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Routine did not stop after cancel")
		}
	}
}

func TestMainRouter(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("api"))
	})
	router := newMainRouter(api, mcp.NewClient("http://127.0.0.1:1"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	if rec.Body.String() != "api" {
		t.Errorf("Expected API handler at root, got %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /mcp, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /mcp, got %d", rec.Code)
	}
	for _, tool := range []string{"create_session", "roll_dice", "move_piece", "play_ai", "save_game"} {
		if !strings.Contains(rec.Body.String(), tool) {
			t.Errorf("Expected tool %s in tools/list response", tool)
		}
	}
}

func TestInternalServer(t *testing.T) {
	svc, err := initializeServices(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	baseURL, httpServer, hub, err := startInternalServer(testConfig(t), svc)
	if err != nil {
		t.Fatalf("startInternalServer failed: %v", err)
	}
	defer hub.Stop()
	defer httpServer.Close()

	if !strings.HasPrefix(baseURL, "http://127.0.0.1:") {
		t.Errorf("Unexpected base URL %s", baseURL)
	}

	deadline := time.Now().Add(time.Second)
	for !externalAPIAvailable(baseURL) {
		if time.Now().After(deadline) {
			t.Fatal("Internal server never became available")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if externalAPIAvailable("http://127.0.0.1:1") {
		t.Error("Expected nothing listening on port 1")
	}
}
