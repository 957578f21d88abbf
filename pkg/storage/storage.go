// Package storage persists finalized meeting artifacts under a notes root.
//
// Layout: <root>/<YYYY-MM-DD>/<NN_HHMM_[Unscheduled_]Subject>/ with one
// folder per meeting, numbered by a per-day sequence. Sequence numbering
// assumes a single writer per notes root; there is no cross-process
// coordination.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// maxSubjectLen caps the sanitized subject for filesystem safety.
	maxSubjectLen = 80

	// fallbackName is used when sanitization strips a subject to nothing.
	fallbackName = "untitled"

	// Artifact filenames within a meeting folder.
	rawFileName  = "raw_input.txt"
	textFileName = "structured_output.txt"
	htmlFileName = "structured_output.html"
)

var (
	invalidCharsRe = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)

	// windowsReserved are device names that cannot be used as folder names on
	// Windows even with an extension.
	windowsReserved = map[string]bool{
		"CON": true, "PRN": true, "AUX": true, "NUL": true,
		"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
		"COM6": true, "COM7": true, "COM8": true, "COM9": true,
		"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
		"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
	}
)

// Store persists meeting artifacts under a notes root directory.
type Store struct {
	root string
	now  func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a store rooted at root.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{root: root, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the notes root path.
func (s *Store) Root() string {
	return s.root
}

// ValidateRoot checks that the notes root exists (creating it if missing)
// and is writable. A failure here is fatal at startup: the session must not
// begin if finalized notes cannot be persisted.
func (s *Store) ValidateRoot() error {
	if err := os.MkdirAll(s.root, 0o750); err != nil {
		return fmt.Errorf("cannot create notes root %q: %w", s.root, err)
	}

	// Probe writability; a stat-based permission check misses read-only
	// mounts and offline network drives.
	probe := filepath.Join(s.root, ".scribe-write-probe")
	if err := os.WriteFile(probe, nil, 0o600); err != nil {
		return fmt.Errorf("notes root %q is not writable: %w", s.root, err)
	}
	os.Remove(probe)

	return nil
}

// BuildMeetingFolder creates and returns the output folder for a meeting.
//
// startTime is an "HHMM" label; when empty, the current time is used.
// Folder name format: NN_HHMM_Subject, with an Unscheduled_ prefix on the
// subject for ad-hoc meetings.
func (s *Store) BuildMeetingFolder(subject, startTime string, unscheduled bool) (string, error) {
	dateFolder := filepath.Join(s.root, s.now().Format("2006-01-02"))
	if err := os.MkdirAll(dateFolder, 0o750); err != nil {
		return "", fmt.Errorf("cannot create date folder: %w", err)
	}

	seq, err := s.nextSequence(dateFolder)
	if err != nil {
		return "", err
	}

	if startTime == "" {
		startTime = s.now().Format("1504")
	}

	prefix := ""
	if unscheduled {
		prefix = "Unscheduled_"
	}

	folderName := fmt.Sprintf("%02d_%s_%s%s", seq, startTime, prefix, SanitizeName(subject))
	meetingPath := filepath.Join(dateFolder, folderName)
	if err := os.MkdirAll(meetingPath, 0o750); err != nil {
		return "", fmt.Errorf("cannot create meeting folder: %w", err)
	}

	return meetingPath, nil
}

// nextSequence determines the next per-day sequence number by scanning the
// existing folder names for their leading number.
func (s *Store) nextSequence(dateFolder string) (int, error) {
	entries, err := os.ReadDir(dateFolder)
	if err != nil {
		return 0, fmt.Errorf("cannot scan date folder: %w", err)
	}

	maxSeq := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		head, _, _ := strings.Cut(entry.Name(), "_")
		if seq, err := strconv.Atoi(head); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}

	return maxSeq + 1, nil
}

// SaveArtifacts writes the raw notes, the structured markdown, and the
// rendered HTML into folder. Returns a map of artifact name to written path.
func (s *Store) SaveArtifacts(folder, rawNotes, structuredText, structuredHTML string) (map[string]string, error) {
	artifacts := map[string]string{
		"raw":  filepath.Join(folder, rawFileName),
		"txt":  filepath.Join(folder, textFileName),
		"html": filepath.Join(folder, htmlFileName),
	}
	contents := map[string]string{
		"raw":  rawNotes,
		"txt":  structuredText,
		"html": structuredHTML,
	}

	for name, path := range artifacts {
		if err := os.WriteFile(path, []byte(contents[name]), 0o640); err != nil {
			return nil, fmt.Errorf("failed to save %s artifact: %w", name, err)
		}
	}

	return artifacts, nil
}

// SanitizeName converts a meeting subject into a safe folder name component:
// invalid filesystem characters are stripped, leading/trailing dots and
// spaces trimmed, internal whitespace runs collapsed to single underscores,
// and the result capped at 80 characters. Reserved Windows device names are
// prefixed with an underscore; an empty result falls back to "untitled".
func SanitizeName(name string) string {
	sanitized := invalidCharsRe.ReplaceAllString(name, "")
	sanitized = strings.Trim(sanitized, ". ")
	sanitized = whitespaceRe.ReplaceAllString(sanitized, "_")
	if runes := []rune(sanitized); len(runes) > maxSubjectLen {
		sanitized = string(runes[:maxSubjectLen])
	}
	if windowsReserved[strings.ToUpper(sanitized)] {
		sanitized = "_" + sanitized
	}
	if sanitized == "" {
		return fallbackName
	}
	return sanitized
}
