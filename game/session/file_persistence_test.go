package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilePersistence(t *testing.T) {
	configManager := newTestConfigManager(t)

	persistence, err := NewFilePersistence(t.TempDir(), configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	testPersistence(t, persistence, configManager.GetDefault())
}

func TestFilePersistenceFileStructure(t *testing.T) {
	tempDir := t.TempDir()
	configManager := newTestConfigManager(t)

	persistence, err := NewFilePersistence(tempDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	session := newTestSession(t, "file_test", configManager.GetDefault())
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	expectedFile := filepath.Join(tempDir, "file_test.json")
	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}
	if _, err := os.Stat(expectedFile + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file should not remain after save")
	}

	content := string(data)
	expectedFields := []string{`"id"`, `"config_name": "standard"`, `"created_at"`, `"game_state"`, `"board"`, `"rnbqkbnr"`}
	for _, field := range expectedFields {
		if !strings.Contains(content, field) {
			t.Errorf("Session file should contain %s", field)
		}
	}

	os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("ignored"), 0644)
	ids, err := persistence.ListAll()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(ids) != 1 || ids[0] != "file_test" {
		t.Errorf("Expected [file_test], got %v", ids)
	}
}

func TestFilePersistenceCorruptFile(t *testing.T) {
	tempDir := t.TempDir()
	persistence, err := NewFilePersistence(tempDir, newTestConfigManager(t))
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	os.WriteFile(filepath.Join(tempDir, "broken.json"), []byte("{not json"), 0644)
	if _, err := persistence.Load("broken"); err == nil {
		t.Error("Expected error for corrupt session file")
	}
}
