package input

import "github.com/lixenwraith/softkey/settings"

// ShiftUpdate says when the caps indicator must be recomputed. Ordered by
// dominance: merging keeps the strongest requirement, and a deferred update
// outranks an immediate one because the deferred obligation survives an
// immediate recompute
type ShiftUpdate uint8

const (
	ShiftNoUpdate    ShiftUpdate = iota // Nothing to do
	ShiftUpdateNow                      // Recompute before control returns to the user
	ShiftUpdateLater                    // Recompute after a short deliberate delay
)

// Transaction accumulates the cross-cutting follow-up work required by one
// top-level input action. Created per OnTextInput/OnCodeInput call, mutated
// while the event chain is processed, then handed back to the host; never
// persisted
type Transaction struct {
	// Settings is the snapshot in effect when the transaction was opened.
	// A settings change mid-flight does not affect it
	Settings *settings.Snapshot

	shiftUpdate ShiftUpdate
}

// NewTransaction opens a transaction against the given snapshot
func NewTransaction(s *settings.Snapshot) *Transaction {
	return &Transaction{Settings: s}
}

// RequireShiftUpdate raises the transaction's shift requirement to at least u.
// Max-merge across all events in the chain: a stronger requirement is never
// lowered by a later weaker one
func (t *Transaction) RequireShiftUpdate(u ShiftUpdate) {
	if u > t.shiftUpdate {
		t.shiftUpdate = u
	}
}

// RequiredShiftUpdate returns the merged requirement for the whole action
func (t *Transaction) RequiredShiftUpdate() ShiftUpdate {
	return t.shiftUpdate
}
