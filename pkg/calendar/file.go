package calendar

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/scribe/pkg/storage"
)

// FileCalendar reads meetings from a YAML file and writes reply drafts to an
// outbox directory. It stands in for host mail-client automation on machines
// without one: a sync job can maintain the YAML file and pick drafts up from
// the outbox.
//
// File format:
//
//	meetings:
//	  - date: 2026-08-28
//	    subject: Q3 Sync
//	    start_time: "09:30"
//	    organizer: J. Smith
//	    attendees: [J. Smith, A. Jones]
//	    external_id: evt-123
type FileCalendar struct {
	path   string
	outbox string
	now    func() time.Time
}

// FileCalendarOption configures a FileCalendar.
type FileCalendarOption func(*FileCalendar)

// WithFileClock overrides the wall clock, for tests.
func WithFileClock(now func() time.Time) FileCalendarOption {
	return func(c *FileCalendar) {
		c.now = now
	}
}

// NewFileCalendar creates a calendar backed by the YAML file at path.
// Reply drafts are written to outbox.
func NewFileCalendar(path, outbox string, opts ...FileCalendarOption) *FileCalendar {
	c := &FileCalendar{path: path, outbox: outbox, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// calendarFile mirrors the YAML document structure.
type calendarFile struct {
	Meetings []datedMeeting `yaml:"meetings"`
}

type datedMeeting struct {
	Date    string `yaml:"date"` // "2006-01-02"
	Meeting `yaml:",inline"`
}

// Available reports whether the calendar file exists.
func (c *FileCalendar) Available() bool {
	info, err := os.Stat(c.path)
	return err == nil && !info.IsDir()
}

// TodaysMeetings returns today's entries sorted by start time. Any read or
// parse failure degrades to an empty list; the session warns but continues
// in unscheduled mode.
func (c *FileCalendar) TodaysMeetings() []Meeting {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil
	}

	var file calendarFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil
	}

	today := c.now().Format("2006-01-02")
	var meetings []Meeting
	for _, entry := range file.Meetings {
		if entry.Date == today {
			meetings = append(meetings, entry.Meeting)
		}
	}

	sort.Slice(meetings, func(i, j int) bool {
		return meetings[i].StartTime < meetings[j].StartTime
	})

	return meetings
}

// ReplyWithNotes writes an HTML reply draft into the outbox directory. The
// draft is named after the meeting subject and stamped to stay unique.
func (c *FileCalendar) ReplyWithNotes(externalID, htmlBody, subject string) string {
	if err := os.MkdirAll(c.outbox, 0o750); err != nil {
		return fmt.Sprintf("could not create outbox: %v", err)
	}

	name := fmt.Sprintf("RE_%s_%s.html",
		storage.SanitizeName(subject), c.now().Format("150405"))
	path := filepath.Join(c.outbox, name)

	draft := fmt.Sprintf("<!-- reply-to: %s -->\n<!-- subject: RE: %s -->\n%s",
		externalID, subject, htmlBody)
	if err := os.WriteFile(path, []byte(draft), 0o640); err != nil {
		return fmt.Sprintf("could not write reply draft: %v", err)
	}

	return SuccessPrefix + "Reply draft written to " + path
}
