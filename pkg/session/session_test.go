package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/scribe/pkg/storage"
	"github.com/entrhq/scribe/pkg/types"
)

// fakeProvider scripts completion replies for tests. Each call pops the next
// reply; an empty queue or a set error fails the call.
type fakeProvider struct {
	replies []string
	err     error
	calls   [][]*types.Message
}

func (f *fakeProvider) Complete(_ context.Context, messages []*types.Message) (*types.Message, error) {
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.replies) == 0 {
		return nil, errors.New("no scripted reply")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return types.NewAssistantMessage(reply), nil
}

func (f *fakeProvider) GetModel() string   { return "fake-model" }
func (f *fakeProvider) GetBaseURL() string { return "" }

func newTestSession(t *testing.T, provider *fakeProvider) *Session {
	t.Helper()
	clock := func() time.Time {
		return time.Date(2026, 8, 28, 14, 5, 0, 0, time.UTC)
	}
	store := storage.NewStore(t.TempDir(), storage.WithClock(clock))
	return New(provider, store, WithClock(clock))
}

func lockTestMeeting(t *testing.T, s *Session) {
	t.Helper()
	err := s.Lock(MeetingIdentity{
		Subject:    "Q3 Sync",
		StartTime:  "09:30",
		KeyContact: "J. Smith",
		Attendees:  []string{"J. Smith", "Sam"},
	})
	require.NoError(t, err)
}

func TestSessionLock(t *testing.T) {
	t.Run("lock enters capturing", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)

		assert.Equal(t, Capturing, s.Phase())
		assert.True(t, s.Locked())
		assert.Equal(t, "Q3 Sync", s.Meeting().Subject)
	})

	t.Run("lock requires a subject", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		err := s.Lock(MeetingIdentity{Subject: "   "})
		assert.ErrorIs(t, err, ErrSubjectRequired)
		assert.Equal(t, SelectingMeeting, s.Phase())
	})

	t.Run("lock trims the subject", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		require.NoError(t, s.Lock(MeetingIdentity{Subject: "  Standup  "}))
		assert.Equal(t, "Standup", s.Meeting().Subject)
	})

	t.Run("double lock is a phase error", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		err := s.Lock(MeetingIdentity{Subject: "Other"})
		assert.ErrorIs(t, err, ErrWrongPhase)
	})
}

func TestSessionCapture(t *testing.T) {
	t.Run("capture requires a locked meeting", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		err := s.Capture("too early")
		assert.ErrorIs(t, err, ErrWrongPhase)
	})

	t.Run("capture appends in order", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)

		require.NoError(t, s.Capture("budget topic"))
		require.NoError(t, s.Capture("Sam to send deck"))

		assert.Equal(t, 2, s.Segments().Len())
		assert.Equal(t, "budget topic\n\nSam to send deck", s.RawNotes())
	})

	t.Run("capture invalidates a pending generate", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("one"))
		require.NoError(t, s.RequestGenerate())
		require.Equal(t, GuardGenerate, s.Pending())

		require.NoError(t, s.Capture("two"))
		assert.Equal(t, GuardNone, s.Pending(), "stale segment count in the warning")
	})

	t.Run("remove invalidates a pending generate", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("one"))
		require.NoError(t, s.Capture("two"))
		require.NoError(t, s.RequestGenerate())

		require.NoError(t, s.RemoveSegment(0))
		assert.Equal(t, GuardNone, s.Pending())
		assert.Equal(t, 1, s.Segments().Len())
	})
}

func TestSessionGenerate(t *testing.T) {
	t.Run("happy path enters reviewing", func(t *testing.T) {
		provider := &fakeProvider{replies: []string{"## DISCUSSION SUMMARY\nstructured"}}
		s := newTestSession(t, provider)
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("budget slipped to Q4"))
		require.NoError(t, s.Capture("Sam owns the deck"))

		require.NoError(t, s.RequestGenerate())
		require.NoError(t, s.ConfirmGenerate(context.Background()))

		assert.Equal(t, Reviewing, s.Phase())
		assert.Equal(t, "## DISCUSSION SUMMARY\nstructured", s.Document())
		assert.Empty(t, s.Exchanges())

		// The prompt carried all segments joined in order plus the context.
		require.Len(t, provider.calls, 1)
		user := provider.calls[0][len(provider.calls[0])-1]
		assert.Contains(t, user.Content, "budget slipped to Q4\n\nSam owns the deck")
		assert.Contains(t, user.Content, "Meeting Subject: Q3 Sync")
		assert.Contains(t, user.Content, "Key Contact: J. Smith")
	})

	t.Run("generate without segments is refused", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		assert.ErrorIs(t, s.RequestGenerate(), ErrNoSegments)
	})

	t.Run("confirm without pending is refused", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("note"))
		assert.ErrorIs(t, s.ConfirmGenerate(context.Background()), ErrNoPendingConfirm)
	})

	t.Run("provider failure leaves everything unchanged", func(t *testing.T) {
		provider := &fakeProvider{err: errors.New("upstream 500")}
		s := newTestSession(t, provider)
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("note"))
		require.NoError(t, s.RequestGenerate())

		err := s.ConfirmGenerate(context.Background())
		require.Error(t, err)

		assert.Equal(t, Capturing, s.Phase())
		assert.Equal(t, 1, s.Segments().Len())
		assert.Empty(t, s.Document())
		assert.Equal(t, GuardGenerate, s.Pending(), "a failed generate stays pending for retry")

		// Retry with a healthy provider succeeds against the same pending slot.
		provider.err = nil
		provider.replies = []string{"second try"}
		require.NoError(t, s.ConfirmGenerate(context.Background()))
		assert.Equal(t, Reviewing, s.Phase())
	})

	t.Run("cancel clears the pending generate", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("note"))
		require.NoError(t, s.RequestGenerate())

		require.NoError(t, s.Cancel())
		assert.Equal(t, GuardNone, s.Pending())
		assert.Equal(t, Capturing, s.Phase())
	})
}

func TestSessionRefine(t *testing.T) {
	newReviewing := func(t *testing.T, provider *fakeProvider) *Session {
		s := newTestSession(t, provider)
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("raw note about Sam"))
		require.NoError(t, s.RequestGenerate())
		require.NoError(t, s.ConfirmGenerate(context.Background()))
		return s
	}

	t.Run("refinement replaces the document on success", func(t *testing.T) {
		provider := &fakeProvider{replies: []string{"v1 mentions Sam", "v2 without Sam"}}
		s := newReviewing(t, provider)

		require.NoError(t, s.Refine(context.Background(), "remove the mention of Sam"))

		assert.Equal(t, "v2 without Sam", s.Document())
		require.Len(t, s.Exchanges(), 1)
		assert.Equal(t, "remove the mention of Sam", s.Exchanges()[0].Request)
		assert.Equal(t, "v2 without Sam", s.Exchanges()[0].Response)
	})

	t.Run("failed refinement keeps the current document", func(t *testing.T) {
		provider := &fakeProvider{replies: []string{"v1"}}
		s := newReviewing(t, provider)

		provider.err = errors.New("timeout")
		err := s.Refine(context.Background(), "tighten the summary")
		require.Error(t, err)

		assert.Equal(t, "v1", s.Document())
		assert.Empty(t, s.Exchanges())
		assert.Equal(t, Reviewing, s.Phase())
	})

	t.Run("empty request is refused", func(t *testing.T) {
		provider := &fakeProvider{replies: []string{"v1"}}
		s := newReviewing(t, provider)
		assert.ErrorIs(t, s.Refine(context.Background(), "   "), ErrEmptyInput)
	})

	t.Run("refinement outside reviewing is refused", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		assert.ErrorIs(t, s.Refine(context.Background(), "change"), ErrWrongPhase)
	})

	t.Run("direct edit replaces verbatim", func(t *testing.T) {
		provider := &fakeProvider{replies: []string{"v1"}}
		s := newReviewing(t, provider)

		require.NoError(t, s.SaveEdit("hand-written final"))
		assert.Equal(t, "hand-written final", s.Document())

		assert.ErrorIs(t, s.SaveEdit("  "), ErrEmptyInput)
		assert.Equal(t, "hand-written final", s.Document())
	})

	t.Run("back clears the document and history, keeps segments", func(t *testing.T) {
		provider := &fakeProvider{replies: []string{"v1", "v2"}}
		s := newReviewing(t, provider)
		require.NoError(t, s.Refine(context.Background(), "change"))

		require.NoError(t, s.Back())

		assert.Equal(t, Capturing, s.Phase())
		assert.Empty(t, s.Document())
		assert.Empty(t, s.Exchanges())
		assert.Equal(t, 1, s.Segments().Len())
	})
}

func TestSessionFinalize(t *testing.T) {
	t.Run("finalize persists artifacts and caches html", func(t *testing.T) {
		provider := &fakeProvider{replies: []string{"## DECISIONS MADE\n- ship it"}}
		s := newTestSession(t, provider)
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("ship decision"))
		require.NoError(t, s.RequestGenerate())
		require.NoError(t, s.ConfirmGenerate(context.Background()))

		require.NoError(t, s.Finalize())

		assert.Equal(t, Finalized, s.Phase())
		assert.Equal(t, "01_0930_Q3_Sync", filepath.Base(s.Folder()))
		assert.Equal(t, "2026-08-28", filepath.Base(filepath.Dir(s.Folder())))
		assert.Contains(t, s.HTML(), "<body style=")
		assert.Contains(t, s.HTML(), "ship it")

		artifacts := s.Artifacts()
		require.Len(t, artifacts, 3)
		for _, name := range []string{"raw", "txt", "html"} {
			data, err := os.ReadFile(artifacts[name])
			require.NoError(t, err, "artifact %s", name)
			assert.NotEmpty(t, data)
		}

		raw, err := os.ReadFile(artifacts["raw"])
		require.NoError(t, err)
		assert.Equal(t, "ship decision", string(raw))
	})

	t.Run("unscheduled meetings are labeled in the folder name", func(t *testing.T) {
		provider := &fakeProvider{replies: []string{"doc"}}
		s := newTestSession(t, provider)
		require.NoError(t, s.Lock(MeetingIdentity{Subject: "Hallway chat", Unscheduled: true}))
		require.NoError(t, s.Capture("note"))
		require.NoError(t, s.RequestGenerate())
		require.NoError(t, s.ConfirmGenerate(context.Background()))

		require.NoError(t, s.Finalize())
		assert.Equal(t, "01_1405_Unscheduled_Hallway_chat", filepath.Base(s.Folder()))
	})

	t.Run("finalize outside reviewing is refused", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		assert.ErrorIs(t, s.Finalize(), ErrWrongPhase)
	})
}

func TestSessionChangeMeeting(t *testing.T) {
	t.Run("without data it unlocks immediately", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)

		pending := s.RequestChangeMeeting()
		assert.False(t, pending)
		assert.Equal(t, SelectingMeeting, s.Phase())
		assert.False(t, s.Locked())
	})

	t.Run("with data it requires a resolution", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("at-risk data"))

		pending := s.RequestChangeMeeting()
		assert.True(t, pending)
		assert.Equal(t, GuardChangeMeeting, s.Pending())
		assert.Equal(t, Capturing, s.Phase(), "nothing changes until a resolution")
		assert.Equal(t, 1, s.Segments().Len())
	})

	t.Run("keep-data carries segments to the next lock", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("keep me"))
		require.True(t, s.RequestChangeMeeting())

		require.NoError(t, s.ConfirmKeepData())
		assert.Equal(t, SelectingMeeting, s.Phase())
		assert.Equal(t, 1, s.Segments().Len())

		require.NoError(t, s.Lock(MeetingIdentity{Subject: "Correct meeting"}))
		assert.Equal(t, Capturing, s.Phase())
		assert.Equal(t, "keep me", s.RawNotes())
	})

	t.Run("keep-data with a document re-enters reviewing", func(t *testing.T) {
		provider := &fakeProvider{replies: []string{"structured"}}
		s := newTestSession(t, provider)
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("note"))
		require.NoError(t, s.RequestGenerate())
		require.NoError(t, s.ConfirmGenerate(context.Background()))

		require.True(t, s.RequestChangeMeeting())
		require.NoError(t, s.ConfirmKeepData())
		require.NoError(t, s.Lock(MeetingIdentity{Subject: "Renamed"}))

		assert.Equal(t, Reviewing, s.Phase())
		assert.Equal(t, "structured", s.Document())
	})

	t.Run("discard resets everything", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("gone"))
		require.True(t, s.RequestChangeMeeting())

		require.NoError(t, s.ConfirmDiscard())
		assert.Equal(t, SelectingMeeting, s.Phase())
		assert.Equal(t, 0, s.Segments().Len())
		assert.Empty(t, s.Meeting().Subject)
	})

	t.Run("cancel keeps the session exactly as it was", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("still here"))
		require.True(t, s.RequestChangeMeeting())

		require.NoError(t, s.Cancel())
		assert.Equal(t, GuardNone, s.Pending())
		assert.Equal(t, Capturing, s.Phase())
		assert.Equal(t, 1, s.Segments().Len())
		assert.True(t, s.Locked())
	})
}

func TestSessionNewMeeting(t *testing.T) {
	t.Run("without data it resets immediately", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)

		pending := s.RequestNewMeeting()
		assert.False(t, pending)
		assert.Equal(t, SelectingMeeting, s.Phase())
		assert.Empty(t, s.Meeting().Subject)
	})

	t.Run("with data only discard resolves it", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("data"))
		require.True(t, s.RequestNewMeeting())

		// Keep-data is not a valid resolution for new-meeting.
		assert.ErrorIs(t, s.ConfirmKeepData(), ErrNoPendingConfirm)
		assert.Equal(t, GuardNewMeeting, s.Pending())

		require.NoError(t, s.ConfirmDiscard())
		assert.Equal(t, SelectingMeeting, s.Phase())
		assert.Equal(t, 0, s.Segments().Len())
	})

	t.Run("new meeting from finalized starts clean", func(t *testing.T) {
		provider := &fakeProvider{replies: []string{"doc"}}
		s := newTestSession(t, provider)
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("note"))
		require.NoError(t, s.RequestGenerate())
		require.NoError(t, s.ConfirmGenerate(context.Background()))
		require.NoError(t, s.Finalize())

		require.True(t, s.RequestNewMeeting())
		require.NoError(t, s.ConfirmDiscard())

		assert.Equal(t, SelectingMeeting, s.Phase())
		assert.Empty(t, s.Document())
		assert.Empty(t, s.HTML())
		assert.Empty(t, s.Folder())
	})
}

func TestSessionPreparedProviderCalls(t *testing.T) {
	// The update loop builds the request and applies the reply on its own
	// goroutine; only the provider call runs elsewhere. The Begin step must
	// therefore leave every session field untouched.
	t.Run("prepared generate mutates nothing until the reply is applied", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("budget slipped"))
		require.NoError(t, s.RequestGenerate())

		messages, err := s.BeginGenerate()
		require.NoError(t, err)
		require.NotEmpty(t, messages)

		assert.Equal(t, Capturing, s.Phase())
		assert.Equal(t, GuardGenerate, s.Pending())
		assert.Empty(t, s.Document())

		require.NoError(t, s.ApplyGenerate(types.NewAssistantMessage("structured")))
		assert.Equal(t, Reviewing, s.Phase())
		assert.Equal(t, "structured", s.Document())
		assert.Equal(t, GuardNone, s.Pending())
	})

	t.Run("a dropped reply leaves the pending confirmation for retry", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("note"))
		require.NoError(t, s.RequestGenerate())

		_, err := s.BeginGenerate()
		require.NoError(t, err)
		// The provider call failed; no apply happens.

		assert.Equal(t, GuardGenerate, s.Pending())
		_, err = s.BeginGenerate()
		assert.NoError(t, err, "retry must be able to rebuild the request")
	})

	t.Run("apply without a pending generate is refused", func(t *testing.T) {
		s := newTestSession(t, &fakeProvider{})
		lockTestMeeting(t, s)
		err := s.ApplyGenerate(types.NewAssistantMessage("stray"))
		assert.ErrorIs(t, err, ErrNoPendingConfirm)
		assert.Empty(t, s.Document())
	})

	t.Run("prepared refine mutates nothing until applied", func(t *testing.T) {
		provider := &fakeProvider{replies: []string{"v1"}}
		s := newTestSession(t, provider)
		lockTestMeeting(t, s)
		require.NoError(t, s.Capture("note"))
		require.NoError(t, s.RequestGenerate())
		require.NoError(t, s.ConfirmGenerate(context.Background()))

		messages, err := s.BeginRefine("tighten the summary")
		require.NoError(t, err)
		require.NotEmpty(t, messages)
		assert.Equal(t, "v1", s.Document())
		assert.Empty(t, s.Exchanges())

		require.NoError(t, s.ApplyRefine("tighten the summary", types.NewAssistantMessage("v2")))
		assert.Equal(t, "v2", s.Document())
		require.Len(t, s.Exchanges(), 1)
		assert.Equal(t, "tighten the summary", s.Exchanges()[0].Request)
	})
}

func TestSessionKeepDataDropsRenderCache(t *testing.T) {
	// Finalize caches the rendered HTML; carrying data to a new meeting and
	// editing the document must not leave that stale render reachable by
	// copy or export.
	provider := &fakeProvider{replies: []string{"original minutes"}}
	s := newTestSession(t, provider)
	lockTestMeeting(t, s)
	require.NoError(t, s.Capture("note"))
	require.NoError(t, s.RequestGenerate())
	require.NoError(t, s.ConfirmGenerate(context.Background()))
	require.NoError(t, s.Finalize())
	require.Contains(t, s.HTML(), "original minutes")

	require.True(t, s.RequestChangeMeeting())
	require.NoError(t, s.ConfirmKeepData())

	assert.Empty(t, s.HTML(), "unlock must drop the cached render")
	assert.Empty(t, s.Folder())
	assert.Nil(t, s.Artifacts())

	require.NoError(t, s.Lock(MeetingIdentity{Subject: "Follow-up", StartTime: "11:00"}))
	require.Equal(t, Reviewing, s.Phase())
	require.NoError(t, s.SaveEdit("completely different minutes"))
	assert.Empty(t, s.HTML(), "no render exists until the new document is finalized")

	require.NoError(t, s.Finalize())
	assert.Contains(t, s.HTML(), "completely different minutes")
	assert.NotContains(t, s.HTML(), "original minutes")
	assert.Equal(t, "02_1100_Follow-up", filepath.Base(s.Folder()))
}

func TestSessionRefinementWindow(t *testing.T) {
	// After three refinement rounds the next call replays only the trailing
	// two rounds of history, not all three.
	provider := &fakeProvider{replies: []string{"v0", "v1", "v2", "v3", "v4"}}
	s := newTestSession(t, provider)
	lockTestMeeting(t, s)
	require.NoError(t, s.Capture("note"))
	require.NoError(t, s.RequestGenerate())
	require.NoError(t, s.ConfirmGenerate(context.Background()))

	for _, req := range []string{"first change", "second change", "third change"} {
		require.NoError(t, s.Refine(context.Background(), req))
	}
	require.NoError(t, s.Refine(context.Background(), "fourth change"))

	last := provider.calls[len(provider.calls)-1]
	var flat []string
	for _, msg := range last {
		flat = append(flat, msg.Content)
	}
	joined := strings.Join(flat, "\n")

	assert.NotContains(t, joined, "first change")
	assert.Contains(t, joined, "second change")
	assert.Contains(t, joined, "third change")
	assert.Contains(t, joined, "fourth change")
}
