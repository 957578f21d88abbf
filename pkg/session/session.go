// Package session owns the meeting-scribing workflow state machine.
//
// A session moves through four phases: selecting a meeting, capturing raw
// note segments, reviewing the generated structured document, and finalized.
// Destructive actions (generate, change meeting, new meeting) are guarded:
// they first move a shared confirmation slot to pending and only execute on
// an explicit confirm.
//
// All mutable state is exclusively owned by one Session value and must only
// be touched from a single goroutine. Provider round-trips are therefore
// split: Begin* builds the request and Apply* commits the reply, both on the
// owning goroutine, while Complete — which reads no session state — is the
// only call safe to run elsewhere. ConfirmGenerate and Refine compose the
// three steps for synchronous callers.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/scribe/pkg/llm"
	"github.com/entrhq/scribe/pkg/prompts"
	"github.com/entrhq/scribe/pkg/render"
	"github.com/entrhq/scribe/pkg/storage"
	"github.com/entrhq/scribe/pkg/types"
)

// Phase is the session's workflow phase.
type Phase int

const (
	// SelectingMeeting is the initial phase: no meeting identity locked yet.
	SelectingMeeting Phase = iota

	// Capturing accumulates raw note segments for the locked meeting.
	Capturing

	// Reviewing refines the generated structured document.
	Reviewing

	// Finalized retains the document and its rendered HTML immutably.
	Finalized
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case SelectingMeeting:
		return "selecting meeting"
	case Capturing:
		return "capturing"
	case Reviewing:
		return "reviewing"
	case Finalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Session is the state machine driving one meeting's capture-to-finalize
// workflow.
type Session struct {
	provider llm.Provider
	store    *storage.Store
	renderer *render.Renderer
	now      func() time.Time

	phase     Phase
	meeting   MeetingIdentity
	locked    bool
	segments  *SegmentStore
	document  string // structured markdown; empty means none
	html      string // rendered HTML, cached at finalize
	exchanges []Exchange
	pending   GuardKind
	folder    string
	artifacts map[string]string
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
		s.segments.now = now
	}
}

// New creates a session in the SelectingMeeting phase.
func New(provider llm.Provider, store *storage.Store, opts ...Option) *Session {
	s := &Session{
		provider: provider,
		store:    store,
		renderer: render.New(),
		now:      time.Now,
		segments: NewSegmentStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Accessors. The underlying state is owned by the session; callers get
// copies or read-only views.

// Phase returns the current workflow phase.
func (s *Session) Phase() Phase { return s.phase }

// Meeting returns the current meeting identity.
func (s *Session) Meeting() MeetingIdentity { return s.meeting }

// Locked reports whether the meeting identity is locked.
func (s *Session) Locked() bool { return s.locked }

// Segments returns the session's segment store.
func (s *Session) Segments() *SegmentStore { return s.segments }

// Document returns the structured markdown document, or empty if none.
func (s *Session) Document() string { return s.document }

// HTML returns the rendered HTML cached at finalize, or empty before then.
func (s *Session) HTML() string { return s.html }

// Pending returns the guarded action awaiting confirmation, if any.
func (s *Session) Pending() GuardKind { return s.pending }

// Folder returns the meeting folder path set at finalize.
func (s *Session) Folder() string { return s.folder }

// Artifacts returns the artifact name to path map from finalize.
func (s *Session) Artifacts() map[string]string { return s.artifacts }

// RawNotes returns all captured segments joined in order.
func (s *Session) RawNotes() string { return s.segments.JoinAll() }

// Exchanges returns a copy of the refinement exchange history.
func (s *Session) Exchanges() []Exchange {
	out := make([]Exchange, len(s.exchanges))
	copy(out, s.exchanges)
	return out
}

// hasData reports whether discarding session state would lose anything.
func (s *Session) hasData() bool {
	return s.segments.Len() > 0 || s.document != ""
}

// Lock freezes the meeting identity and enters (or re-enters) the working
// phases. It is the only exit from SelectingMeeting and requires a non-empty
// subject. When the session still holds data from a change-meeting with the
// keep-data resolution, it falls back to Reviewing or Capturing accordingly.
func (s *Session) Lock(meeting MeetingIdentity) error {
	if s.phase != SelectingMeeting {
		return fmt.Errorf("%w: meeting is already locked", ErrWrongPhase)
	}
	if !meeting.HasSubject() {
		return ErrSubjectRequired
	}

	meeting.Subject = strings.TrimSpace(meeting.Subject)
	s.meeting = meeting
	s.locked = true
	if s.document != "" {
		s.phase = Reviewing
	} else {
		s.phase = Capturing
	}
	return nil
}

// Capture appends a note segment. Any pending generate confirmation is
// cleared: the warning shown to the user quoted a segment count that is now
// stale.
func (s *Session) Capture(text string) error {
	if s.phase != Capturing {
		return fmt.Errorf("%w: capture requires the capturing phase", ErrWrongPhase)
	}
	if err := s.segments.Append(text); err != nil {
		return err
	}
	if s.pending == GuardGenerate {
		s.pending = GuardNone
	}
	return nil
}

// RemoveSegment deletes the segment at index i.
func (s *Session) RemoveSegment(i int) error {
	if s.phase != Capturing {
		return fmt.Errorf("%w: segment removal requires the capturing phase", ErrWrongPhase)
	}
	if err := s.segments.RemoveAt(i); err != nil {
		return err
	}
	if s.pending == GuardGenerate {
		s.pending = GuardNone
	}
	return nil
}

// RequestGenerate is the first step of the guarded generate action: it
// validates the preconditions and moves the confirmation slot to pending.
func (s *Session) RequestGenerate() error {
	if s.phase != Capturing {
		return fmt.Errorf("%w: generation starts from the capturing phase", ErrWrongPhase)
	}
	if s.segments.Len() == 0 {
		return ErrNoSegments
	}
	if !s.meeting.HasSubject() {
		return ErrSubjectRequired
	}

	s.pending = GuardGenerate
	return nil
}

// BeginGenerate builds the generation request for a pending generate. It
// reads session state but mutates nothing: until ApplyGenerate commits a
// reply, the phase, segments, and pending confirmation are all unchanged, so
// a failed provider call needs no rollback and the user can retry or cancel.
func (s *Session) BeginGenerate() ([]*types.Message, error) {
	if s.pending != GuardGenerate {
		return nil, ErrNoPendingConfirm
	}
	if s.segments.Len() == 0 {
		return nil, ErrNoSegments
	}

	today := s.now()
	return prompts.BuildGenerationMessages(today, prompts.GenerationParams{
		RawNotes:   s.segments.JoinAll(),
		Subject:    s.meeting.Subject,
		Date:       today.Format("2006-01-02"),
		KeyContact: s.meeting.KeyContact,
		Attendees:  s.meeting.Attendees,
	}), nil
}

// ApplyGenerate commits a generation reply: the session enters Reviewing
// with the reply as its structured document and the pending confirmation
// resolved.
func (s *Session) ApplyGenerate(reply *types.Message) error {
	if s.pending != GuardGenerate {
		return ErrNoPendingConfirm
	}

	s.document = reply.Content
	s.exchanges = nil
	s.pending = GuardNone
	s.phase = Reviewing
	return nil
}

// Complete forwards messages to the completion provider. It touches no
// mutable session state, so it may run off the owning goroutine while that
// goroutine keeps reading the session; the Begin/Apply pair brackets it.
func (s *Session) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	return s.provider.Complete(ctx, messages)
}

// ConfirmGenerate executes a pending generate synchronously: all captured
// segments are joined in order and sent to the completion provider; on
// success the session enters Reviewing with the result as its structured
// document.
//
// On provider failure the phase, segments, and pending confirmation are left
// unchanged so the user can retry or cancel; the error is the user-visible
// message.
func (s *Session) ConfirmGenerate(ctx context.Context) error {
	messages, err := s.BeginGenerate()
	if err != nil {
		return err
	}

	reply, err := s.provider.Complete(ctx, messages)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	return s.ApplyGenerate(reply)
}

// BeginRefine builds the refinement request for a change: the raw notes, the
// current document, the trailing exchange window, and the request itself.
// Like BeginGenerate it mutates nothing.
func (s *Session) BeginRefine(request string) ([]*types.Message, error) {
	if s.phase != Reviewing {
		return nil, fmt.Errorf("%w: refinement requires the reviewing phase", ErrWrongPhase)
	}
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, ErrEmptyInput
	}

	return prompts.BuildRefinementMessages(
		s.now(), s.segments.JoinAll(), s.document, s.historyMessages(), request), nil
}

// ApplyRefine commits a refinement reply: the document is replaced and the
// round is appended to the exchange history.
func (s *Session) ApplyRefine(request string, reply *types.Message) error {
	if s.phase != Reviewing {
		return fmt.Errorf("%w: refinement requires the reviewing phase", ErrWrongPhase)
	}

	s.document = reply.Content
	s.exchanges = append(s.exchanges, Exchange{
		Request:  strings.TrimSpace(request),
		Response: reply.Content,
	})
	return nil
}

// Refine sends a change request to the completion provider synchronously.
// The document is replaced only on success; a failed call leaves everything
// unchanged.
func (s *Session) Refine(ctx context.Context, request string) error {
	messages, err := s.BeginRefine(request)
	if err != nil {
		return err
	}

	reply, err := s.provider.Complete(ctx, messages)
	if err != nil {
		return fmt.Errorf("refinement failed: %w", err)
	}

	return s.ApplyRefine(request, reply)
}

// historyMessages flattens the exchange history into conversation messages
// for prompt building. The prompt layer applies the replay window.
func (s *Session) historyMessages() []*types.Message {
	messages := make([]*types.Message, 0, len(s.exchanges)*2)
	for _, ex := range s.exchanges {
		messages = append(messages, types.NewUserMessage(ex.Request))
		messages = append(messages, types.NewAssistantMessage(ex.Response))
	}
	return messages
}

// SaveEdit replaces the structured document verbatim with user-supplied
// text, bypassing the model.
func (s *Session) SaveEdit(text string) error {
	if s.phase != Reviewing {
		return fmt.Errorf("%w: direct edit requires the reviewing phase", ErrWrongPhase)
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	s.document = text
	return nil
}

// Back returns from Reviewing to Capturing, clearing the structured document
// and exchange history. Captured segments are untouched.
func (s *Session) Back() error {
	if s.phase != Reviewing {
		return fmt.Errorf("%w: back requires the reviewing phase", ErrWrongPhase)
	}

	s.document = ""
	s.exchanges = nil
	s.phase = Capturing
	return nil
}

// Finalize renders the structured document, creates the meeting folder, and
// persists the raw notes, structured text, and rendered HTML. On success the
// session enters Finalized with the HTML cached; on storage failure nothing
// is mutated.
func (s *Session) Finalize() error {
	if s.phase != Reviewing {
		return fmt.Errorf("%w: finalize requires the reviewing phase", ErrWrongPhase)
	}
	if !s.meeting.HasSubject() {
		return ErrSubjectRequired
	}

	html := s.renderer.Render(s.document)

	folder, err := s.store.BuildMeetingFolder(
		s.meeting.Subject, s.meeting.StartTimeLabel(), s.meeting.Unscheduled)
	if err != nil {
		return fmt.Errorf("could not create meeting folder: %w", err)
	}

	artifacts, err := s.store.SaveArtifacts(folder, s.segments.JoinAll(), s.document, html)
	if err != nil {
		return fmt.Errorf("could not save meeting artifacts: %w", err)
	}

	s.html = html
	s.folder = folder
	s.artifacts = artifacts
	s.phase = Finalized
	return nil
}

// RequestChangeMeeting begins the change-meeting action. With data at risk
// it only moves the confirmation slot to pending and reports true; without
// data it unlocks immediately. Resolutions: ConfirmKeepData, ConfirmDiscard,
// or Cancel.
func (s *Session) RequestChangeMeeting() bool {
	if s.hasData() {
		s.pending = GuardChangeMeeting
		return true
	}

	s.unlock()
	return false
}

// RequestNewMeeting begins the new-meeting action. With data at risk it only
// moves the confirmation slot to pending and reports true; without data it
// resets immediately. Resolutions: ConfirmDiscard or Cancel.
func (s *Session) RequestNewMeeting() bool {
	if s.hasData() {
		s.pending = GuardNewMeeting
		return true
	}

	s.reset()
	return false
}

// ConfirmKeepData resolves a pending change-meeting by unlocking the meeting
// identity while keeping segments, document, and exchange history. Once a
// new identity is locked the session falls back to Reviewing or Capturing
// with the data intact.
func (s *Session) ConfirmKeepData() error {
	if s.pending != GuardChangeMeeting {
		return ErrNoPendingConfirm
	}

	s.unlock()
	return nil
}

// ConfirmDiscard resolves a pending change-meeting or new-meeting with a
// full reset: all segments, the document, and the exchange history are
// discarded.
func (s *Session) ConfirmDiscard() error {
	if s.pending != GuardChangeMeeting && s.pending != GuardNewMeeting {
		return ErrNoPendingConfirm
	}

	s.reset()
	return nil
}

// Cancel clears any pending confirmation without executing the action.
func (s *Session) Cancel() error {
	if s.pending == GuardNone {
		return ErrNoPendingConfirm
	}

	s.pending = GuardNone
	return nil
}

// unlock returns to SelectingMeeting keeping the segments, document, and
// exchange history. The cached render and folder belong to the finalized
// identity: a kept document can change again under the next identity, so
// they do not survive the unlock.
func (s *Session) unlock() {
	s.locked = false
	s.pending = GuardNone
	s.html = ""
	s.folder = ""
	s.artifacts = nil
	s.phase = SelectingMeeting
}

// reset fully replaces the session's owned state, never partially.
func (s *Session) reset() {
	s.meeting = MeetingIdentity{}
	s.locked = false
	s.segments.Clear()
	s.document = ""
	s.html = ""
	s.exchanges = nil
	s.pending = GuardNone
	s.folder = ""
	s.artifacts = nil
	s.phase = SelectingMeeting
}
