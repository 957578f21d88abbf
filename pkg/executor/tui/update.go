package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/scribe/pkg/calendar"
	"github.com/entrhq/scribe/pkg/export"
	"github.com/entrhq/scribe/pkg/prompts"
	"github.com/entrhq/scribe/pkg/session"
)

// Init starts the input cursor blink and the spinner tick.
func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles all state updates for the TUI model.
//
// The session is only read and mutated on this goroutine. Provider calls run
// in a command goroutine but carry pre-built messages in and the reply out
// (generateDoneMsg/refineDoneMsg); session.Complete touches no session
// state. The busy flag additionally drops all input except Ctrl+C while a
// call is in flight, keeping the session to one action at a time.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, max(msg.Height-14, 5))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = max(msg.Height-14, 5)
		}
		m.editor.SetWidth(msg.Width - 6)
		m.editor.SetHeight(max(msg.Height-10, 5))
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case generateDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(fmt.Errorf("generation failed: %w", msg.err))
			return m, nil
		}
		if err := m.sess.ApplyGenerate(msg.reply); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("Structured notes generated — review and refine, then /finalize")
		m.refreshViewport()
		return m, nil

	case refineDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(fmt.Errorf("refinement failed: %w", msg.err))
			return m, nil
		}
		if err := m.sess.ApplyRefine(msg.request, msg.reply); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("Change applied")
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes keyboard input by UI mode: busy, editing, pending
// confirmation, or normal input.
func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.busy {
		return m, nil
	}

	if m.editing {
		return m.handleEditorKey(msg)
	}

	if m.sess.Pending() != session.GuardNone {
		return m.handleConfirmKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		value := m.input.Value()
		m.input.Reset()
		return m.handleSubmit(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	// Allow scrolling the document while typing a refinement.
	var vpCmd tea.Cmd
	if m.sess.Phase() == session.Reviewing || m.sess.Phase() == session.Finalized {
		m.viewport, vpCmd = m.viewport.Update(msg)
	}

	return m, tea.Batch(cmd, vpCmd)
}

// handleEditorKey routes keys while the direct-edit textarea is open.
// Ctrl+S saves the edited document verbatim; Esc discards the edit.
func (m *model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.setStatus("Edit discarded")
		return m, nil
	case tea.KeyCtrlS:
		if err := m.sess.SaveEdit(m.editor.Value()); err != nil {
			m.setError(err)
			return m, nil
		}
		m.editing = false
		m.setStatus("Document saved")
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// handleConfirmKey resolves a pending guarded action. Discarding data only
// ever happens here, on an explicit key.
func (m *model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch m.sess.Pending() {
	case session.GuardGenerate:
		switch key {
		case "y", "Y":
			messages, err := m.sess.BeginGenerate()
			if err != nil {
				m.setError(err)
				return m, nil
			}
			m.busy = true
			m.busyLabel = "Generating structured notes..."
			return m, func() tea.Msg {
				reply, err := m.sess.Complete(context.Background(), messages)
				return generateDoneMsg{reply: reply, err: err}
			}
		case "n", "N", "esc":
			if err := m.sess.Cancel(); err == nil {
				m.setStatus("Generation canceled")
			}
			return m, nil
		}

	case session.GuardChangeMeeting:
		switch key {
		case "k", "K":
			if err := m.sess.ConfirmKeepData(); err != nil {
				m.setError(err)
				return m, nil
			}
			m.setStatus("Meeting unlocked — pick a new meeting, data kept")
			return m, nil
		case "d", "D":
			return m.confirmDiscard()
		case "c", "C", "esc":
			m.cancelConfirm()
			return m, nil
		}

	case session.GuardNewMeeting:
		switch key {
		case "d", "D", "y", "Y":
			return m.confirmDiscard()
		case "c", "C", "n", "N", "esc":
			m.cancelConfirm()
			return m, nil
		}
	}

	return m, nil
}

func (m *model) confirmDiscard() (tea.Model, tea.Cmd) {
	if err := m.sess.ConfirmDiscard(); err != nil {
		m.setError(err)
		return m, nil
	}
	m.setStatus("Session reset — pick a meeting to begin")
	m.refreshViewport()
	return m, nil
}

func (m *model) cancelConfirm() {
	if err := m.sess.Cancel(); err == nil {
		m.setStatus("Canceled")
	}
}

// handleSubmit processes a submitted input line: slash commands anywhere,
// otherwise the phase's default action.
func (m *model) handleSubmit(value string) (tea.Model, tea.Cmd) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return m, nil
	}

	if strings.HasPrefix(trimmed, "/") {
		return m.handleCommand(trimmed)
	}

	switch m.sess.Phase() {
	case session.SelectingMeeting:
		return m.lockSubject(trimmed)

	case session.Capturing:
		if err := m.sess.Capture(trimmed); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Captured segment %d", m.sess.Segments().Len()))
		return m, nil

	case session.Reviewing:
		messages, err := m.sess.BeginRefine(trimmed)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.busy = true
		m.busyLabel = "Applying change..."
		return m, func() tea.Msg {
			reply, err := m.sess.Complete(context.Background(), messages)
			return refineDoneMsg{request: trimmed, reply: reply, err: err}
		}

	default:
		m.setStatus("Notes are finalized — /copy, /export, /reply, or /new")
		return m, nil
	}
}

// handleCommand dispatches a slash command.
func (m *model) handleCommand(line string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "pick":
		return m.pickMeeting(arg)

	case "contact":
		m.keyContact = arg
		m.setStatus("Key contact set: " + arg)
		return m, nil

	case "rm":
		return m.removeSegment(arg)

	case "generate":
		if err := m.sess.RequestGenerate(); err != nil {
			m.setError(err)
		}
		return m, nil

	case "back":
		if err := m.sess.Back(); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("Back to capture — document discarded, segments kept")
		return m, nil

	case "edit":
		if m.sess.Phase() != session.Reviewing {
			m.setError(session.ErrWrongPhase)
			return m, nil
		}
		m.editor.SetValue(m.sess.Document())
		m.editor.Focus()
		m.editing = true
		return m, nil

	case "finalize":
		if err := m.sess.Finalize(); err != nil {
			m.setError(err)
			return m, nil
		}
		m.setStatus("Saved to " + m.sess.Folder())
		m.refreshViewport()
		return m, nil

	case "copy":
		return m.copyHTML()

	case "export":
		return m.exportHTML(arg)

	case "reply":
		return m.replyWithNotes()

	case "meeting":
		if m.sess.RequestChangeMeeting() {
			return m, nil // confirmation overlay takes over
		}
		m.setStatus("Meeting unlocked — pick a new meeting")
		return m, nil

	case "new":
		if m.sess.RequestNewMeeting() {
			return m, nil
		}
		m.setStatus("New session — pick a meeting to begin")
		return m, nil

	case "quit":
		return m, tea.Quit

	default:
		m.setStatus("Unknown command: /" + name)
		return m, nil
	}
}

// lockSubject locks an unscheduled meeting with the typed subject.
func (m *model) lockSubject(subject string) (tea.Model, tea.Cmd) {
	err := m.sess.Lock(session.MeetingIdentity{
		Subject:     subject,
		KeyContact:  m.keyContact,
		Unscheduled: true,
	})
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.setStatus("Meeting locked: " + subject)
	m.refreshViewport()
	return m, nil
}

// pickMeeting locks a calendar meeting by its 1-based list number.
func (m *model) pickMeeting(arg string) (tea.Model, tea.Cmd) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(m.todaysMeetings()) {
		m.setStatus("Usage: /pick N (a meeting number from the list)")
		return m, nil
	}

	mt := m.todaysMeetings()[n-1]
	lockErr := m.sess.Lock(session.MeetingIdentity{
		Subject:    mt.Subject,
		StartTime:  mt.StartTime,
		KeyContact: m.keyContact,
		Attendees:  mt.Attendees,
		Body:       mt.Body,
		ExternalID: mt.ExternalID,
	})
	if lockErr != nil {
		m.setError(lockErr)
		return m, nil
	}
	m.setStatus("Meeting locked: " + mt.DisplayLabel())
	m.refreshViewport()
	return m, nil
}

// removeSegment deletes a captured segment by its 1-based display number.
func (m *model) removeSegment(arg string) (tea.Model, tea.Cmd) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		m.setStatus("Usage: /rm N (a segment number from the list)")
		return m, nil
	}
	if rmErr := m.sess.RemoveSegment(n - 1); rmErr != nil {
		m.setError(rmErr)
		return m, nil
	}
	m.setStatus(fmt.Sprintf("Removed segment %d", n))
	return m, nil
}

// copyHTML puts the finalized HTML on the clipboard (plain-text fallback
// payload). On clipboard failure the user is pointed at the file export.
func (m *model) copyHTML() (tea.Model, tea.Cmd) {
	if m.sess.HTML() == "" {
		m.setStatus("Nothing to copy — /finalize first")
		return m, nil
	}
	if err := export.CopyHTML(m.clip, m.sess.HTML()); err != nil {
		m.setError(fmt.Errorf("%w — use /export to write a file instead", err))
		return m, nil
	}
	m.setStatus("Copied — paste into your mail client")
	return m, nil
}

// exportHTML writes the finalized HTML (and its paste envelope) to dir,
// defaulting to the meeting folder. This is the non-clipboard fallback.
func (m *model) exportHTML(dir string) (tea.Model, tea.Cmd) {
	if m.sess.HTML() == "" {
		m.setStatus("Nothing to export — /finalize first")
		return m, nil
	}
	if dir == "" {
		dir = m.sess.Folder()
	}
	if dir == "" {
		dir = "."
	}

	path, err := export.WriteHTMLFile(dir, m.sess.HTML())
	if err != nil {
		m.setError(err)
		return m, nil
	}
	if _, err := export.WriteEnvelopeFile(dir, m.sess.HTML()); err != nil {
		m.setError(err)
		return m, nil
	}
	m.setStatus("Exported " + path)
	return m, nil
}

// replyWithNotes sends the finalized HTML back through the calendar
// capability as a reply to the selected meeting.
func (m *model) replyWithNotes() (tea.Model, tea.Cmd) {
	if m.sess.HTML() == "" {
		m.setStatus("Nothing to send — /finalize first")
		return m, nil
	}
	mt := m.sess.Meeting()
	if mt.ExternalID == "" {
		m.setStatus("No calendar meeting selected — use /copy or /export instead")
		return m, nil
	}

	status := m.cal.ReplyWithNotes(mt.ExternalID, m.sess.HTML(), mt.Subject)
	if strings.HasPrefix(status, calendar.SuccessPrefix) {
		m.setStatus(status)
	} else {
		m.setError(fmt.Errorf("reply failed: %s", status))
	}
	return m, nil
}

// todaysMeetings lazily loads the calendar once per session. A failing
// calendar degrades to an empty list with a warning; it is never fatal.
func (m *model) todaysMeetings() []calendar.Meeting {
	if !m.meetingsLoaded {
		m.meetingsLoaded = true
		if m.cal.Available() {
			m.meetings = m.cal.TodaysMeetings()
			if len(m.meetings) == 0 {
				m.setStatus("No meetings found for today — type a subject for an unscheduled meeting")
			}
		}
	}
	return m.meetings
}

// refreshViewport rebuilds the document viewport for the current phase.
func (m *model) refreshViewport() {
	if !m.ready {
		return
	}
	switch m.sess.Phase() {
	case session.Reviewing, session.Finalized:
		m.viewport.SetContent(m.sess.Document())
	default:
		m.viewport.SetContent("")
	}
}

// tokenEstimate approximates the prompt size for the generate confirmation.
func (m *model) tokenEstimate() int {
	return prompts.EstimateTokens(m.sess.RawNotes())
}
