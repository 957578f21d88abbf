package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 28, 14, 5, 0, 0, time.UTC)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain subject", "Q3 Sync", "Q3_Sync"},
		{"invalid characters stripped", `Budget: <Q3/Q4> "review"?`, "Budget_Q3Q4_review"},
		{"leading and trailing dots trimmed", "...Sync...", "Sync"},
		{"whitespace runs collapsed", "Weekly   1:1 \t check-in", "Weekly_11_check-in"},
		{"reserved device name prefixed", "CON", "_CON"},
		{"reserved name case-insensitive", "com1", "_com1"},
		{"stripped to nothing", `<>:"/\|?*`, "untitled"},
		{"empty input", "", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("caps at 80 characters without splitting runes", func(t *testing.T) {
		long := strings.Repeat("é", 100)
		got := SanitizeName(long)
		runes := []rune(got)
		if len(runes) != 80 {
			t.Errorf("rune length = %d, want 80", len(runes))
		}
		for _, r := range runes {
			if r != 'é' {
				t.Errorf("rune corrupted to %q; cap must not split multi-byte runes", r)
			}
		}
	})
}

func TestValidateRoot(t *testing.T) {
	t.Run("creates a missing root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "notes")
		store := NewStore(root)
		if err := store.ValidateRoot(); err != nil {
			t.Fatalf("ValidateRoot: %v", err)
		}
		if _, err := os.Stat(root); err != nil {
			t.Errorf("root was not created: %v", err)
		}
	})

	t.Run("probe file is cleaned up", func(t *testing.T) {
		root := t.TempDir()
		store := NewStore(root)
		if err := store.ValidateRoot(); err != nil {
			t.Fatalf("ValidateRoot: %v", err)
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("root not empty after probe: %v", entries)
		}
	})
}

func TestBuildMeetingFolder(t *testing.T) {
	t.Run("folder layout and naming", func(t *testing.T) {
		root := t.TempDir()
		store := NewStore(root, WithClock(testClock()))

		folder, err := store.BuildMeetingFolder("Q3 Sync", "0930", false)
		if err != nil {
			t.Fatalf("BuildMeetingFolder: %v", err)
		}

		if filepath.Base(folder) != "01_0930_Q3_Sync" {
			t.Errorf("folder name = %s, want 01_0930_Q3_Sync", filepath.Base(folder))
		}
		if filepath.Base(filepath.Dir(folder)) != "2026-08-28" {
			t.Errorf("date folder = %s, want 2026-08-28", filepath.Base(filepath.Dir(folder)))
		}
		if info, err := os.Stat(folder); err != nil || !info.IsDir() {
			t.Errorf("meeting folder was not created: %v", err)
		}
	})

	t.Run("sequence increments per day", func(t *testing.T) {
		store := NewStore(t.TempDir(), WithClock(testClock()))

		first, err := store.BuildMeetingFolder("Standup", "0900", false)
		if err != nil {
			t.Fatalf("first folder: %v", err)
		}
		second, err := store.BuildMeetingFolder("Standup", "1400", false)
		if err != nil {
			t.Fatalf("second folder: %v", err)
		}

		if !strings.HasPrefix(filepath.Base(first), "01_") {
			t.Errorf("first folder = %s, want 01_ prefix", filepath.Base(first))
		}
		if !strings.HasPrefix(filepath.Base(second), "02_") {
			t.Errorf("second folder = %s, want 02_ prefix", filepath.Base(second))
		}
	})

	t.Run("unscheduled prefix and clock-derived start time", func(t *testing.T) {
		store := NewStore(t.TempDir(), WithClock(testClock()))

		folder, err := store.BuildMeetingFolder("Hallway chat", "", true)
		if err != nil {
			t.Fatalf("BuildMeetingFolder: %v", err)
		}
		if filepath.Base(folder) != "01_1405_Unscheduled_Hallway_chat" {
			t.Errorf("folder name = %s, want 01_1405_Unscheduled_Hallway_chat", filepath.Base(folder))
		}
	})

	t.Run("stray files do not disturb the sequence", func(t *testing.T) {
		root := t.TempDir()
		store := NewStore(root, WithClock(testClock()))

		dateFolder := filepath.Join(root, "2026-08-28")
		if err := os.MkdirAll(dateFolder, 0o750); err != nil {
			t.Fatal(err)
		}
		// A plain file with a numeric-looking name must be ignored.
		if err := os.WriteFile(filepath.Join(dateFolder, "99_notes.txt"), nil, 0o640); err != nil {
			t.Fatal(err)
		}
		// A folder without a numeric head must be ignored too.
		if err := os.MkdirAll(filepath.Join(dateFolder, "scratch"), 0o750); err != nil {
			t.Fatal(err)
		}

		folder, err := store.BuildMeetingFolder("Sync", "1000", false)
		if err != nil {
			t.Fatalf("BuildMeetingFolder: %v", err)
		}
		if !strings.HasPrefix(filepath.Base(folder), "01_") {
			t.Errorf("folder = %s, want 01_ prefix", filepath.Base(folder))
		}
	})
}

func TestSaveArtifacts(t *testing.T) {
	store := NewStore(t.TempDir(), WithClock(testClock()))
	folder, err := store.BuildMeetingFolder("Sync", "0900", false)
	if err != nil {
		t.Fatalf("BuildMeetingFolder: %v", err)
	}

	artifacts, err := store.SaveArtifacts(folder, "raw notes", "structured text", "<html>doc</html>")
	if err != nil {
		t.Fatalf("SaveArtifacts: %v", err)
	}

	wantFiles := map[string]string{
		"raw":  "raw_input.txt",
		"txt":  "structured_output.txt",
		"html": "structured_output.html",
	}
	wantContents := map[string]string{
		"raw":  "raw notes",
		"txt":  "structured text",
		"html": "<html>doc</html>",
	}

	if len(artifacts) != len(wantFiles) {
		t.Fatalf("artifact count = %d, want %d", len(artifacts), len(wantFiles))
	}
	for name, file := range wantFiles {
		path, ok := artifacts[name]
		if !ok {
			t.Errorf("missing artifact key %q", name)
			continue
		}
		if filepath.Base(path) != file {
			t.Errorf("artifact %q filename = %s, want %s", name, filepath.Base(path), file)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("reading artifact %q: %v", name, err)
			continue
		}
		if string(data) != wantContents[name] {
			t.Errorf("artifact %q content = %q, want %q", name, data, wantContents[name])
		}
	}
}
