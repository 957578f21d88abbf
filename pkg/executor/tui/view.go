package tui

import (
	"fmt"
	"strings"

	"github.com/entrhq/scribe/pkg/session"
)

// View renders the entire TUI interface.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.editing {
		return m.viewEditor()
	}

	sections := []string{
		m.buildHeader(),
		m.buildPhaseBar(),
		m.buildBody(),
		m.buildConfirm(),
		m.buildLoadingIndicator(),
		m.buildStatus(),
		m.buildInputBox(),
		m.buildTips(),
	}

	var out []string
	for _, s := range sections {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

// buildHeader renders the Scribe header
func (m *model) buildHeader() string {
	return headerStyle.Render(`
	███████╗ ██████╗██████╗ ██╗██████╗ ███████╗
	██╔════╝██╔════╝██╔══██╗██║██╔══██╗██╔════╝
	███████╗██║     ██████╔╝██║██████╔╝█████╗
	╚════██║██║     ██╔══██╗██║██╔══██╗██╔══╝
	███████║╚██████╗██║  ██║██║██████╔╝███████╗
	╚══════╝ ╚═════╝╚═╝  ╚═╝╚═╝╚═════╝ ╚══════╝`)
}

// buildPhaseBar renders the current phase and locked meeting.
func (m *model) buildPhaseBar() string {
	label := fmt.Sprintf(" Phase: %s", m.sess.Phase())
	if m.sess.Locked() {
		mt := m.sess.Meeting()
		label += fmt.Sprintf("  •  Meeting: %s", mt.Subject)
		if mt.StartTime != "" {
			label += " (" + mt.StartTime + ")"
		}
	}
	return phaseStyle.Render(label)
}

// buildBody renders the phase-specific main area.
func (m *model) buildBody() string {
	switch m.sess.Phase() {
	case session.SelectingMeeting:
		return m.viewSelecting()
	case session.Capturing:
		return m.viewCapturing()
	case session.Reviewing:
		return m.viewport.View()
	case session.Finalized:
		return m.viewFinalized()
	}
	return ""
}

// viewSelecting lists today's calendar meetings, when any are available.
func (m *model) viewSelecting() string {
	var b strings.Builder
	meetings := m.todaysMeetings()

	if len(meetings) > 0 {
		b.WriteString(segmentStyle.Render(" Today's meetings:"))
		b.WriteString("\n")
		for i, mt := range meetings {
			b.WriteString(fmt.Sprintf("  [%d] %s\n", i+1, mt.DisplayLabel()))
		}
		b.WriteString(tipsStyle.Render("  /pick N to lock one, or type a subject for an unscheduled meeting"))
	} else {
		b.WriteString(tipsStyle.Render(" Type a meeting subject and press Enter to start an unscheduled meeting."))
	}

	if m.sess.Segments().Len() > 0 || m.sess.Document() != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(
			fmt.Sprintf(" Holding data from the previous meeting (%d segments) — it is restored on lock.",
				m.sess.Segments().Len())))
	}

	return b.String()
}

// viewCapturing lists the captured segments with their time labels.
func (m *model) viewCapturing() string {
	store := m.sess.Segments()
	if store.Len() == 0 {
		return tipsStyle.Render(" No segments yet. Type a thought and press Enter to bank it. Messy is fine.")
	}

	var b strings.Builder
	b.WriteString(segmentStyle.Render(
		fmt.Sprintf(" Captured so far (%d segments, %d words):", store.Len(), store.WordCount())))
	b.WriteString("\n")
	for i, seg := range store.Segments() {
		b.WriteString(fmt.Sprintf("  [%d] %s %s\n",
			i+1, timestampStyle.Render(seg.CapturedAt), seg.Text))
	}
	return b.String()
}

// viewFinalized shows the saved location and export options.
func (m *model) viewFinalized() string {
	var b strings.Builder
	b.WriteString(phaseStyle.Render(" ✅ Notes finalized"))
	b.WriteString("\n")
	b.WriteString(segmentStyle.Render(" Saved to: " + m.sess.Folder()))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	return b.String()
}

// viewEditor renders the direct-edit overlay.
func (m *model) viewEditor() string {
	return strings.Join([]string{
		headerStyle.Render(" Direct edit — Ctrl+S to save, Esc to discard"),
		m.editor.View(),
	}, "\n")
}

// buildConfirm renders the pending guarded-action prompt, if any.
func (m *model) buildConfirm() string {
	switch m.sess.Pending() {
	case session.GuardGenerate:
		return confirmStyle.Render(fmt.Sprintf(
			"⚠ All %d captured segments (~%d tokens) will be sent as a single prompt to the model.\n"+
				"You can still refine the output afterwards.  [y] generate  [n] cancel",
			m.sess.Segments().Len(), m.tokenEstimate()))
	case session.GuardChangeMeeting:
		return confirmStyle.Render(
			"⚠ Changing the meeting unlocks its identity.\n" +
				"  [k] keep captured data  [d] discard everything  [c] cancel")
	case session.GuardNewMeeting:
		return confirmStyle.Render(
			"⚠ Starting a new meeting discards all captured segments and the document.\n" +
				"  [d] discard and reset  [c] cancel")
	}
	return ""
}

// buildLoadingIndicator renders the spinner while a provider call runs.
func (m *model) buildLoadingIndicator() string {
	if !m.busy {
		return ""
	}
	return statusStyle.Render(fmt.Sprintf(" %s %s", m.spinner.View(), m.busyLabel))
}

// buildStatus renders the last status or error message.
func (m *model) buildStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(" ✗ " + m.status)
	}
	return statusStyle.Render(" " + m.status)
}

// buildInputBox renders the input line.
func (m *model) buildInputBox() string {
	return inputBoxStyle.Width(max(m.width-4, 20)).Render(m.input.View())
}

// buildTips renders context-sensitive usage tips.
func (m *model) buildTips() string {
	switch m.sess.Phase() {
	case session.SelectingMeeting:
		return tipsStyle.Render("  Tips: subject + Enter to lock • /pick N • /contact NAME • /quit")
	case session.Capturing:
		return tipsStyle.Render("  Tips: Enter to capture • /rm N • /generate • /meeting • /new • /quit")
	case session.Reviewing:
		return tipsStyle.Render("  Tips: type a change request + Enter • /edit • /back • /finalize • /new")
	default:
		return tipsStyle.Render("  Tips: /copy • /export [dir] • /reply • /new • /quit")
	}
}
