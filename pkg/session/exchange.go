package session

// Exchange records one refinement round: the user's change request and the
// provider's full replacement document. The list is append-only; only the
// most recent window is replayed to refinement calls, since older rounds are
// already folded into the current document.
type Exchange struct {
	Request  string
	Response string
}
