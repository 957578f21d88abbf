// Package calendar provides the calendar capability boundary: enumerating
// today's meetings and sending meeting notes back as a reply.
//
// The capability is an explicit interface with an always-unavailable
// implementation for hosts without any calendar integration, rather than
// toggling behavior on import or platform checks. The session layer never
// cares which implementation is wired.
package calendar

import "fmt"

// SuccessPrefix marks a successful reply status. Callers check for it rather
// than parsing the rest of the message.
const SuccessPrefix = "✓ "

// Meeting is one calendar entry for today.
type Meeting struct {
	Subject    string   `yaml:"subject"`
	StartTime  string   `yaml:"start_time"` // "HH:MM"
	Organizer  string   `yaml:"organizer"`
	Attendees  []string `yaml:"attendees"`
	Body       string   `yaml:"body"`
	ExternalID string   `yaml:"external_id"`
}

// DisplayLabel formats a meeting for selection lists.
func (m Meeting) DisplayLabel() string {
	return fmt.Sprintf("%s — %s", m.StartTime, m.Subject)
}

// Calendar is the capability interface for calendar integration.
type Calendar interface {
	// Available reports whether calendar integration can be used at all.
	Available() bool

	// TodaysMeetings returns today's meetings sorted by start time. It never
	// fails: any underlying error degrades to an empty list.
	TodaysMeetings() []Meeting

	// ReplyWithNotes sends the HTML meeting notes as a reply to the meeting
	// identified by externalID. The returned status text starts with
	// SuccessPrefix on success.
	ReplyWithNotes(externalID, htmlBody, subject string) string
}

// Unavailable is the no-op Calendar for hosts without integration.
type Unavailable struct{}

// Available always reports false.
func (Unavailable) Available() bool { return false }

// TodaysMeetings always returns an empty list.
func (Unavailable) TodaysMeetings() []Meeting { return nil }

// ReplyWithNotes always reports that no integration is present.
func (Unavailable) ReplyWithNotes(externalID, htmlBody, subject string) string {
	return "calendar integration not available"
}
