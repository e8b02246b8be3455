package event

import "github.com/lixenwraith/softkey/core"

// Type discriminates input event kinds
type Type uint8

const (
	TypeNotHandled   Type = iota // Placeholder for events the engine ignores
	TypeKeypress                 // Single code point from a software key
	TypeToggle                   // Reserved: combiner toggle (no combiner in this variant)
	TypeModeKey                  // Reserved: combiner mode key
	TypeSoftwareText             // Generated multi-character string (e.g. a TLD key)
	TypeCursorMove               // Cursor repositioning notification
)

// Sentinels for fields that do not apply to a given event
const (
	NotACodePoint  rune = -1
	NotACoordinate int  = -1
)

// Event is one immutable unit of input.
// A functional key is identified purely by CodePoint == NotACodePoint; there
// is no separate flag. Keep that invariant when constructing events by hand
type Event struct {
	Type      Type
	Text      string  // TypeSoftwareText payload
	CodePoint rune    // TypeKeypress payload; NotACodePoint for functional keys
	Code      KeyCode // Functional key identity; NotAKeyCode otherwise
	X, Y      int     // Touch coordinates; NotACoordinate when synthetic

	repeat   bool
	consumed bool
}

// Chain is an owned, acyclic, forward-only sequence of events produced by one
// physical or synthetic input action. Processed strictly in order
type Chain []Event

// NewSoftwareKeypress creates a keypress event for a software key.
// Functional keys pass NotACodePoint and a real key code
func NewSoftwareKeypress(codePoint rune, code KeyCode, x, y int, repeat bool) Event {
	return Event{
		Type:      TypeKeypress,
		CodePoint: codePoint,
		Code:      code,
		X:         x,
		Y:         y,
		repeat:    repeat,
	}
}

// NewSoftwareText creates an event committing a generated string verbatim
func NewSoftwareText(text string) Event {
	return Event{
		Type:      TypeSoftwareText,
		Text:      text,
		CodePoint: NotACodePoint,
		X:         NotACoordinate,
		Y:         NotACoordinate,
	}
}

// NewCursorMove creates a cursor repositioning event. Commits nothing
func NewCursorMove(x, y int) Event {
	return Event{
		Type:      TypeCursorMove,
		CodePoint: NotACodePoint,
		X:         x,
		Y:         y,
	}
}

// NewNotHandled creates a placeholder event the engine ignores
func NewNotHandled() Event {
	return Event{
		Type:      TypeNotHandled,
		CodePoint: NotACodePoint,
		X:         NotACoordinate,
		Y:         NotACoordinate,
	}
}

// IsFunctionalKey reports whether the event carries a functional key rather
// than a code point. Derived from the code point sentinel
func (e Event) IsFunctionalKey() bool {
	return e.CodePoint == NotACodePoint
}

// IsKeyRepeat reports whether the event came from key auto-repeat
func (e Event) IsKeyRepeat() bool {
	return e.repeat
}

// IsConsumed reports whether a prior processing stage already consumed the event
func (e Event) IsConsumed() bool {
	return e.consumed
}

// AsConsumed returns a consumed copy of the event
func (e Event) AsConsumed() Event {
	e.consumed = true
	return e
}

// WithCodePoint returns a copy with the code point rewritten. The one
// sanctioned rewrite hook, for combiner and toggle scenarios
func (e Event) WithCodePoint(cp rune) Event {
	e.CodePoint = cp
	return e
}

// TextToCommit returns the text this event contributes to the editor.
// Consumed events contribute nothing regardless of type
func (e Event) TextToCommit() string {
	if e.consumed {
		return ""
	}
	switch e.Type {
	case TypeModeKey, TypeToggle, TypeNotHandled, TypeCursorMove:
		return ""
	case TypeKeypress:
		return string(e.CodePoint)
	case TypeSoftwareText:
		return e.Text
	}
	core.Fail("unknown event type %d", e.Type)
	return ""
}
