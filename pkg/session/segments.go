package session

import (
	"strings"
	"time"
)

// NoteSegment is one captured raw note fragment. Segments are immutable once
// created; the store's list order is the authoritative capture order.
type NoteSegment struct {
	// CapturedAt is a wall-clock time-of-day label ("15:04"). It is a display
	// hint only: not guaranteed unique or monotonic.
	CapturedAt string

	// Text is the trimmed fragment text. Never empty.
	Text string
}

// SegmentStore holds the ordered note fragments captured during a session.
// It is owned by exactly one session and is not safe for concurrent use;
// the session processes one action at a time.
type SegmentStore struct {
	segments []NoteSegment
	now      func() time.Time
}

// NewSegmentStore creates an empty segment store.
func NewSegmentStore() *SegmentStore {
	return &SegmentStore{now: time.Now}
}

// Append captures a new segment, stamping it with the current wall-clock
// time. Returns ErrEmptyInput if the trimmed text is empty.
func (s *SegmentStore) Append(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyInput
	}

	s.segments = append(s.segments, NoteSegment{
		CapturedAt: s.now().Format("15:04"),
		Text:       trimmed,
	})
	return nil
}

// RemoveAt deletes the segment at index i, re-numbering the remainder
// contiguously. Returns ErrIndexOutOfRange if i is invalid.
func (s *SegmentStore) RemoveAt(i int) error {
	if i < 0 || i >= len(s.segments) {
		return ErrIndexOutOfRange
	}

	s.segments = append(s.segments[:i], s.segments[i+1:]...)
	return nil
}

// JoinAll returns all segment texts concatenated in capture order, separated
// by a blank line. An empty store yields an empty string.
func (s *SegmentStore) JoinAll() string {
	texts := make([]string, len(s.segments))
	for i, seg := range s.segments {
		texts[i] = seg.Text
	}
	return strings.Join(texts, "\n\n")
}

// WordCount returns the total number of whitespace-delimited tokens across
// all segments. Display only.
func (s *SegmentStore) WordCount() int {
	count := 0
	for _, seg := range s.segments {
		count += len(strings.Fields(seg.Text))
	}
	return count
}

// Len returns the number of captured segments.
func (s *SegmentStore) Len() int {
	return len(s.segments)
}

// Segments returns a copy of the captured segments in order.
func (s *SegmentStore) Segments() []NoteSegment {
	out := make([]NoteSegment, len(s.segments))
	copy(out, s.segments)
	return out
}

// Clear removes all segments.
func (s *SegmentStore) Clear() {
	s.segments = nil
}
