package editor

// Backend is the raw connection to the remote text editor. All calls are
// synchronous, in-process entry points into a possibly slow cross-process
// channel; there is no cancellation once a call is issued. Implementations
// return false (or "", false) when the editor did not accept the call
type Backend interface {
	BeginBatchEdit() bool
	EndBatchEdit() bool
	CommitText(text string, newCursorPosition int) bool
	DeleteSurroundingText(beforeUnits, afterUnits int) bool
	SetSelection(start, end int) bool
	FinishComposingText() bool
	TextBeforeCursor(n int) (string, bool)
	TextAfterCursor(n int) (string, bool)
	SelectedText() (string, bool)
	SendKeyEvent(ev KeyAction) bool
	PerformEditorAction(id int) bool
}

// Provider hands out the current editor connection. It may return nil at any
// moment: the editor can detach or the channel can break between any two
// calls, so the connection must be re-fetched before every operation and a
// nil result means every mutation degrades to a no-op
type Provider interface {
	Connection() Backend
}

// ActionID enumerates the editor-declared IME actions
type ActionID int

const (
	ActionNone ActionID = iota
	ActionGo
	ActionSearch
	ActionSend
	ActionNext
	ActionDone
	ActionPrevious
)

// CapMode is a bit set of requested auto-capitalization modes
type CapMode int

const (
	CapModeOff        CapMode = 0
	CapModeCharacters CapMode = 1 << 0
	CapModeWords      CapMode = 1 << 1
	CapModeSentences  CapMode = 1 << 2
)

// Info describes the attached editor field: its declared action and the
// capitalization modes its input type requests
type Info struct {
	Action         ActionID
	ActionLabel    string // Non-empty when the editor declares a custom action
	CustomActionID int    // Performed verbatim when ActionLabel is set
	CapModes       CapMode
}

// SyntheticKey identifies the small back-compat set of raw key events the
// engine is allowed to send. Raw key events bypass batch-edit semantics, so
// this set is deliberately closed
type SyntheticKey uint8

const (
	SynEnter     SyntheticKey = iota // Literal newline
	SynBackspace                     // Delete before cursor
	SynDigit                         // '0'..'9', some editors require raw digits
	SynLiteral                       // Unknown key carrying a literal character
)

// KeyAction is one synthetic key event
type KeyAction struct {
	Key   SyntheticKey
	Rune  rune // Payload for SynDigit and SynLiteral
	Shift bool // Shift modifier, used by shift-enter
}
