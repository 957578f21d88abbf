package session

import "strings"

// MeetingIdentity describes the meeting a session is scribing for. It is
// immutable once locked; the change-meeting path is the only way to unlock
// and replace it.
type MeetingIdentity struct {
	// Subject is the meeting name or topic. Non-empty once locked.
	Subject string

	// StartTime is the scheduled start as an "HH:MM" label, or empty for
	// unscheduled meetings.
	StartTime string

	// KeyContact is the primary contact or counterpart for the meeting.
	KeyContact string

	// Attendees lists attendee names when known.
	Attendees []string

	// Body carries invite body or context text when the meeting came from a
	// calendar.
	Body string

	// ExternalID is the calendar system's reference for the meeting, if any.
	ExternalID string

	// Unscheduled marks ad-hoc meetings not backed by a calendar entry.
	Unscheduled bool
}

// HasSubject reports whether the identity carries a usable subject.
func (m MeetingIdentity) HasSubject() bool {
	return strings.TrimSpace(m.Subject) != ""
}

// StartTimeLabel returns the scheduled start as an "HHMM" folder label, or
// empty when no time is scheduled.
func (m MeetingIdentity) StartTimeLabel() string {
	return strings.ReplaceAll(m.StartTime, ":", "")
}
