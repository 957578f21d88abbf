package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/entrhq/scribe/pkg/calendar"
	"github.com/entrhq/scribe/pkg/export"
	"github.com/entrhq/scribe/pkg/logging"
	"github.com/entrhq/scribe/pkg/session"
	"github.com/entrhq/scribe/pkg/types"
)

// model is the Bubble Tea state for the Scribe TUI. It wraps exactly one
// session; all workflow state lives in the session, the model only holds
// presentation state.
type model struct {
	// Bubble Tea components
	input    textinput.Model
	editor   textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	// Collaborators
	sess   *session.Session
	cal    calendar.Calendar
	clip   export.Copier
	logger *logging.Logger

	// Meeting selection state
	meetings       []calendar.Meeting
	meetingsLoaded bool
	keyContact     string

	// UI state
	editing   bool   // direct-edit textarea is open
	busy      bool   // a provider call is in flight
	busyLabel string // loading message shown next to the spinner
	status    string // last status message
	statusErr bool   // status is an error

	// Window dimensions
	width  int
	height int
	ready  bool
}

// generateDoneMsg carries a generation reply back to the update loop, which
// applies it to the session. The command goroutine never mutates the session.
type generateDoneMsg struct {
	reply *types.Message
	err   error
}

// refineDoneMsg carries a refinement reply back to the update loop along
// with the request that produced it.
type refineDoneMsg struct {
	request string
	reply   *types.Message
	err     error
}

// initialModel creates the TUI model around a session.
func initialModel(sess *session.Session, cal calendar.Calendar, clip export.Copier, logger *logging.Logger) model {
	input := textinput.New()
	input.Placeholder = "Type a meeting subject and press Enter"
	input.Focus()
	input.CharLimit = 0

	editor := textarea.New()
	editor.Placeholder = "Edit the structured document"
	editor.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	return model{
		input:   input,
		editor:  editor,
		spinner: sp,
		sess:    sess,
		cal:     cal,
		clip:    clip,
		logger:  logger,
	}
}

// setStatus records a user-visible status line.
func (m *model) setStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

// setError records a user-visible error. Recoverable errors never change the
// session phase; they only surface here.
func (m *model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
	if m.logger != nil {
		m.logger.Errorf("action failed: %v", err)
	}
}
