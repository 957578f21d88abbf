package session

// GuardKind tags the guarded action currently awaiting confirmation. Every
// action that would discard captured segments or a structured document must
// pass through a pending state before it executes; it never runs directly
// from idle. One shared sum type covers all guarded actions so the session
// carries a single pending slot instead of per-action flags.
type GuardKind int

const (
	// GuardNone means no confirmation is pending.
	GuardNone GuardKind = iota

	// GuardGenerate is the confirm step before sending all captured segments
	// to the completion provider.
	GuardGenerate

	// GuardChangeMeeting is the confirm step before unlocking the meeting
	// identity. Resolutions: keep data, discard everything, or cancel.
	GuardChangeMeeting

	// GuardNewMeeting is the confirm step before a full session reset.
	// Resolutions: discard everything or cancel.
	GuardNewMeeting
)

// String returns a short name for the guard kind, used in logs and the UI.
func (g GuardKind) String() string {
	switch g {
	case GuardGenerate:
		return "generate"
	case GuardChangeMeeting:
		return "change meeting"
	case GuardNewMeeting:
		return "new meeting"
	default:
		return "none"
	}
}
