// Package tui provides the interactive terminal surface for a Scribe
// session.
//
// The TUI codebase is split into multiple files:
// - executor.go: program lifecycle
// - model.go: model structure and state
// - update.go: Bubble Tea Update function and action handling
// - view.go: Bubble Tea View function and rendering
// - styles.go: color scheme and styling
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/scribe/pkg/calendar"
	"github.com/entrhq/scribe/pkg/export"
	"github.com/entrhq/scribe/pkg/logging"
	"github.com/entrhq/scribe/pkg/session"
)

// Executor runs the TUI around one session.
type Executor struct {
	sess   *session.Session
	cal    calendar.Calendar
	clip   export.Copier
	logger *logging.Logger
}

// NewExecutor creates a TUI executor for the given session and collaborators.
func NewExecutor(sess *session.Session, cal calendar.Calendar, clip export.Copier, logger *logging.Logger) *Executor {
	return &Executor{sess: sess, cal: cal, clip: clip, logger: logger}
}

// Run starts the TUI and blocks until the user exits or ctx is canceled.
func (e *Executor) Run(ctx context.Context) error {
	if e.logger != nil {
		e.logger.Infof("TUI starting, session %s", e.logger.SessionID())
	}

	m := initialModel(e.sess, e.cal, e.clip, e.logger)

	program := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI program: %w", err)
	}

	return nil
}
