package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/wricardo/atomic-chess/game/config"
	"github.com/wricardo/atomic-chess/game/session"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	expectedAppName := "Atomic Chess Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestNewApp(t *testing.T) {
	app := newApp(nil)

	if app.Version != Version {
		t.Errorf("Expected version %s, got %s", Version, app.Version)
	}

	expected := map[string][]string{
		"server":    {"http"},
		"stdio-mcp": {"mcp", "mcp-stdio"},
		"play":      nil,
		"board":     nil,
	}
	if len(app.Commands) != len(expected) {
		t.Fatalf("Expected %d commands, got %d", len(expected), len(app.Commands))
	}
	for _, cmd := range app.Commands {
		aliases, ok := expected[cmd.Name]
		if !ok {
			t.Errorf("Unexpected command %s", cmd.Name)
			continue
		}
		if strings.Join(cmd.Aliases, ",") != strings.Join(aliases, ",") {
			t.Errorf("Expected aliases %v for %s, got %v", aliases, cmd.Name, cmd.Aliases)
		}
	}
}

func TestNewApp_UnknownMode(t *testing.T) {
	err := newApp(nil).Run(context.Background(), []string{"atomic-chess", "bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown mode: bogus") {
		t.Errorf("Expected unknown mode error, got %v", err)
	}
}

func testOptions(t *testing.T) options {
	t.Helper()
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	dir := t.TempDir()
	return options{
		host:        "localhost",
		port:        8080,
		configDir:   "configs",
		sessionsDir: filepath.Join(dir, "sessions"),
		store:       storeFile,
		dbPath:      filepath.Join(dir, "sessions.db"),
	}
}

func TestInitializeServices(t *testing.T) {
	for _, store := range []string{storeFile, storeSQLite} {
		t.Run(store, func(t *testing.T) {
			opts := testOptions(t)
			opts.store = store

			svc, err := initializeServices(opts, zap.NewNop())
			if err != nil {
				t.Fatalf("Failed to initialize services: %v", err)
			}

			info, err := svc.game.CreateSession(context.Background(), "")
			if err != nil {
				t.Fatalf("Failed to create session: %v", err)
			}
			svc.Close()

			// a second start sees the session written on Close
			again, err := initializeServices(opts, zap.NewNop())
			if err != nil {
				t.Fatalf("Failed to reinitialize services: %v", err)
			}
			defer again.Close()

			if _, err := again.game.GetSession(context.Background(), info.ID); err != nil {
				t.Errorf("Expected session %s to survive a restart, got %v", info.ID, err)
			}
		})
	}
}

func TestInitializeServices_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*options)
	}{
		{"invalid config dir", func(o *options) { o.configDir = "/non/existent/path" }},
		{"unknown store", func(o *options) { o.store = "redis" }},
		{"unknown default setup", func(o *options) { o.defaultCfg = "missing" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t)
			tt.modify(&opts)
			if _, err := initializeServices(opts, zap.NewNop()); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestInitializeServices_DefaultSetup(t *testing.T) {
	opts := testOptions(t)
	opts.defaultCfg = "kings_duel"

	svc, err := initializeServices(opts, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	info, err := svc.game.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if info.ConfigName != "kings_duel" {
		t.Errorf("Expected new sessions to use kings_duel, got %q", info.ConfigName)
	}
}

func TestConfigReloadRoutine(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) {
		content := `{"name": "` + name + `", "description": "d", "fen": "4k3/8/8/8/8/8/8/4K3 w - - 0 1"}`
		if err := os.WriteFile(filepath.Join(dir, "standard.json"), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write setup: %v", err)
		}
	}
	write("Before")

	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reload := make(chan os.Signal, 1)
	go configReloadRoutine(ctx, reload, configs, zap.NewNop())

	write("After")
	if configs.GetDefault().Name != "Before" {
		t.Fatalf("Expected cached setup before reload, got %q", configs.GetDefault().Name)
	}

	reload <- os.Interrupt
	deadline := time.Now().Add(2 * time.Second)
	for configs.GetDefault().Name != "After" {
		if time.Now().After(deadline) {
			t.Fatalf("Expected reload to pick up the edited setup, got %q", configs.GetDefault().Name)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPruneOrphans(t *testing.T) {
	opts := testOptions(t)
	svc, err := initializeServices(opts, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	ctx := context.Background()
	keep, _ := svc.game.CreateSession(ctx, "")
	gone, _ := svc.game.CreateSession(ctx, "")

	if err := svc.persistence.Delete(gone.ID); err != nil {
		t.Fatalf("Failed to delete stored session: %v", err)
	}

	if pruned := pruneOrphans(svc.sessions, svc.persistence, zap.NewNop()); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := svc.sessions.Get(keep.ID); err != nil {
		t.Errorf("Expected session %s to remain, got %v", keep.ID, err)
	}
	if _, err := svc.sessions.Get(gone.ID); err == nil {
		t.Errorf("Expected session %s to be pruned", gone.ID)
	}

	if pruned := pruneOrphans(session.NewManager(zap.NewNop()), nil, zap.NewNop()); pruned != 0 {
		t.Errorf("Expected nothing pruned without a store, got %d", pruned)
	}
}

func TestParseMoveInput(t *testing.T) {
	tests := []struct {
		input    string
		from, to string
		ok       bool
	}{
		{"e2 e4", "e2", "e4", true},
		{"e2e4", "e2", "e4", true},
		{"E2-E4", "e2", "e4", true},
		{"  g1   f3 ", "g1", "f3", true},
		{"e2", "", "", false},
		{"e2 e9", "", "", false},
		{"z1 a1", "", "", false},
		{"board", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			from, to, ok := parseMoveInput(tt.input)
			if ok != tt.ok || from != tt.from || to != tt.to {
				t.Errorf("Expected (%q, %q, %v), got (%q, %q, %v)", tt.from, tt.to, tt.ok, from, to, ok)
			}
		})
	}
}

func TestRunBoard(t *testing.T) {
	color.NoColor = true
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	var buf bytes.Buffer
	if err := runBoard("configs", "", &buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()
	for _, expected := range []string{
		"8  r n b q k b n r",
		"1  R N B Q K B N R",
		"   a b c d e f g h",
		"white to move",
		"FEN: rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w",
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("Expected %q in output, got:\n%s", expected, out)
		}
	}

	if err := runBoard("configs", "missing_setup", &buf); err == nil {
		t.Error("Expected error for missing setup")
	}
	if err := runBoard("/non/existent/path", "", &buf); err == nil {
		t.Error("Expected error for missing config dir")
	}
}

func TestRunPlay(t *testing.T) {
	color.NoColor = true
	opts := testOptions(t)
	svc, err := initializeServices(opts, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	script := strings.Join([]string{
		"e2 e4",
		"e7e4",
		"nonsense",
		"d7-d5",
		"e4 d5",
		"history",
		"blast z9",
		"quit",
		"e2e3",
	}, "\n")

	var out bytes.Buffer
	if err := runPlay(context.Background(), svc.game, "", strings.NewReader(script), &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := out.String()
	for _, expected := range []string{
		"Session ",
		"white> ",
		"black> ",
		"Illegal move:",
		`Cannot read "nonsense"`,
		"💥 2 pieces destroyed",
		"1. white P e2-e4",
		"2. black p d7-d5",
		"3. white P e4-d5",
	} {
		if !strings.Contains(got, expected) {
			t.Errorf("Expected %q in output, got:\n%s", expected, got)
		}
	}
	if strings.Contains(got, "e2-e3") {
		t.Error("Expected input after quit to be ignored")
	}
}
