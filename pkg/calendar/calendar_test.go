package calendar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	}
}

const calendarFixture = `meetings:
  - date: 2026-08-28
    subject: Afternoon Review
    start_time: "14:00"
    organizer: A. Jones
    attendees: [A. Jones, J. Smith]
    external_id: evt-2
  - date: 2026-08-28
    subject: Q3 Sync
    start_time: "09:30"
    organizer: J. Smith
    attendees: [J. Smith]
    body: Agenda attached
    external_id: evt-1
  - date: 2026-08-29
    subject: Tomorrow Only
    start_time: "10:00"
    external_id: evt-3
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calendar.yaml")
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestFileCalendarAvailable(t *testing.T) {
	t.Run("existing file", func(t *testing.T) {
		path := writeFixture(t, calendarFixture)
		cal := NewFileCalendar(path, t.TempDir())
		if !cal.Available() {
			t.Error("calendar with an existing file must be available")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		cal := NewFileCalendar(filepath.Join(t.TempDir(), "absent.yaml"), t.TempDir())
		if cal.Available() {
			t.Error("calendar without a file must be unavailable")
		}
	})
}

func TestFileCalendarTodaysMeetings(t *testing.T) {
	t.Run("filters to today and sorts by start time", func(t *testing.T) {
		path := writeFixture(t, calendarFixture)
		cal := NewFileCalendar(path, t.TempDir(), WithFileClock(testClock()))

		meetings := cal.TodaysMeetings()
		if len(meetings) != 2 {
			t.Fatalf("expected 2 meetings today, got %d", len(meetings))
		}
		if meetings[0].Subject != "Q3 Sync" || meetings[1].Subject != "Afternoon Review" {
			t.Errorf("wrong order: %s, %s", meetings[0].Subject, meetings[1].Subject)
		}
		if meetings[0].ExternalID != "evt-1" {
			t.Errorf("ExternalID = %s, want evt-1", meetings[0].ExternalID)
		}
		if len(meetings[0].Attendees) != 1 || meetings[0].Attendees[0] != "J. Smith" {
			t.Errorf("attendees = %v", meetings[0].Attendees)
		}
	})

	t.Run("missing file degrades to empty", func(t *testing.T) {
		cal := NewFileCalendar(filepath.Join(t.TempDir(), "absent.yaml"), t.TempDir())
		if got := cal.TodaysMeetings(); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("malformed yaml degrades to empty", func(t *testing.T) {
		path := writeFixture(t, "meetings: [not: valid: yaml")
		cal := NewFileCalendar(path, t.TempDir(), WithFileClock(testClock()))
		if got := cal.TodaysMeetings(); got != nil {
			t.Errorf("expected nil on parse failure, got %v", got)
		}
	})
}

func TestFileCalendarReplyWithNotes(t *testing.T) {
	outbox := filepath.Join(t.TempDir(), "outbox")
	cal := NewFileCalendar(writeFixture(t, calendarFixture), outbox, WithFileClock(testClock()))

	status := cal.ReplyWithNotes("evt-1", "<p>notes</p>", "Q3 Sync")
	if !strings.HasPrefix(status, SuccessPrefix) {
		t.Fatalf("status = %q, want %q prefix", status, SuccessPrefix)
	}

	entries, err := os.ReadDir(outbox)
	if err != nil {
		t.Fatalf("reading outbox: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(entries))
	}

	name := entries[0].Name()
	if !strings.HasPrefix(name, "RE_Q3_Sync_") || !strings.HasSuffix(name, ".html") {
		t.Errorf("draft name = %q", name)
	}

	data, err := os.ReadFile(filepath.Join(outbox, name))
	if err != nil {
		t.Fatalf("reading draft: %v", err)
	}
	for _, want := range []string{
		"<!-- reply-to: evt-1 -->",
		"<!-- subject: RE: Q3 Sync -->",
		"<p>notes</p>",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("draft missing %q", want)
		}
	}
}

func TestUnavailable(t *testing.T) {
	var cal Calendar = Unavailable{}

	if cal.Available() {
		t.Error("Unavailable must report false")
	}
	if got := cal.TodaysMeetings(); got != nil {
		t.Errorf("TodaysMeetings = %v, want nil", got)
	}
	if status := cal.ReplyWithNotes("evt-1", "<p></p>", "x"); strings.HasPrefix(status, SuccessPrefix) {
		t.Errorf("no-op reply must not report success, got %q", status)
	}
}

func TestMeetingDisplayLabel(t *testing.T) {
	m := Meeting{Subject: "Q3 Sync", StartTime: "09:30"}
	if got := m.DisplayLabel(); got != "09:30 — Q3 Sync" {
		t.Errorf("DisplayLabel = %q", got)
	}
}
