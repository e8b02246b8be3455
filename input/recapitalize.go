package input

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lixenwraith/softkey/editor"
)

// capsStyle is one bucket of the recapitalization rotation
type capsStyle uint8

const (
	styleOriginalMixedCase capsStyle = iota // The span exactly as selected
	styleAllLower
	styleFirstWordUpper
	styleAllUpper

	styleCount = 4
)

// Recapitalizer cycles a selected span through capitalization styles on
// repeated shift presses. Scoped to a single selection: any cursor move
// stops the cycle, and a fresh session disables it until the first move
type Recapitalizer struct {
	enabled bool
	started bool

	locale language.Tag

	cursorStartBefore int
	stringBefore      string

	styleIndex capsStyle
	// The origin wasn't truly mixed case, so rotating through the
	// original-mixed-case bucket would show a state that never existed
	skipOriginal bool

	stringAfter      string
	cursorStartAfter int
	cursorEndAfter   int
}

// NewRecapitalizer creates a recapitalizer; disabled until the first cursor move
func NewRecapitalizer() *Recapitalizer {
	return &Recapitalizer{}
}

// Enable allows recapitalization to be triggered
func (r *Recapitalizer) Enable() { r.enabled = true }

// Disable forbids recapitalization and stops any in-flight cycle
func (r *Recapitalizer) Disable() {
	r.enabled = false
	r.started = false
}

// IsEnabled reports whether recapitalization may be triggered at all
func (r *Recapitalizer) IsEnabled() bool { return r.enabled }

// IsStarted reports whether a cycle is in flight
func (r *Recapitalizer) IsStarted() bool { return r.started }

// Stop ends the current cycle without touching the enabled gate
func (r *Recapitalizer) Stop() { r.started = false }

// IsSetAt reports whether the in-flight cycle produced exactly the given
// selection bounds, i.e. whether a new shift press continues this cycle
func (r *Recapitalizer) IsSetAt(cursorStart, cursorEnd int) bool {
	return r.started && cursorStart == r.cursorStartAfter && cursorEnd == r.cursorEndAfter
}

// Start opens a cycle for the given selection. The origin style of the text
// decides the starting bucket; when the text is already uniformly cased, the
// original-mixed-case bucket is skipped for the rest of the cycle
func (r *Recapitalizer) Start(cursorStart, cursorEnd int, text string, loc language.Tag) {
	if !r.enabled {
		return
	}
	r.locale = loc
	r.cursorStartBefore = cursorStart
	r.stringBefore = text
	r.stringAfter = text
	r.cursorStartAfter = cursorStart
	r.cursorEndAfter = cursorEnd

	origin := styleOf(text, loc)
	r.styleIndex = origin
	r.skipOriginal = origin != styleOriginalMixedCase
	r.started = true
}

// Rotate advances to the next style. Styles whose output is identical to the
// current output are skipped so every press produces a visible change; the
// loop is bounded by one full cycle and can never spin
func (r *Recapitalizer) Rotate() {
	if !r.started {
		return
	}
	old := r.stringAfter
	for i := 0; i < styleCount; i++ {
		r.styleIndex = (r.styleIndex + 1) % styleCount
		if r.styleIndex == styleOriginalMixedCase && r.skipOriginal {
			r.styleIndex = (r.styleIndex + 1) % styleCount
		}
		r.stringAfter = applyStyle(r.styleIndex, r.stringBefore, r.locale)
		if r.stringAfter != old {
			break
		}
	}
	r.cursorEndAfter = r.cursorStartAfter + editor.UTF16Len(r.stringAfter)
}

// CurrentString returns the span text for the current style
func (r *Recapitalizer) CurrentString() string { return r.stringAfter }

// NewCursorStart returns the selection start after the replacement
func (r *Recapitalizer) NewCursorStart() int { return r.cursorStartAfter }

// NewCursorEnd returns the selection end after the replacement
func (r *Recapitalizer) NewCursorEnd() int { return r.cursorEndAfter }

func applyStyle(style capsStyle, text string, loc language.Tag) string {
	switch style {
	case styleOriginalMixedCase:
		return text
	case styleAllLower:
		return cases.Lower(loc).String(text)
	case styleFirstWordUpper:
		return capitalizeFirstAndDowncaseRest(text, loc)
	case styleAllUpper:
		return cases.Upper(loc).String(text)
	}
	return text
}

// styleOf detects the origin style: a string identical to one of the uniform
// transforms starts the rotation at that bucket
func styleOf(text string, loc language.Tag) capsStyle {
	switch {
	case text == cases.Upper(loc).String(text):
		return styleAllUpper
	case text == cases.Lower(loc).String(text):
		return styleAllLower
	case text == capitalizeFirstAndDowncaseRest(text, loc):
		return styleFirstWordUpper
	default:
		return styleOriginalMixedCase
	}
}

// capitalizeFirstAndDowncaseRest upcases the first letter and downcases the
// remainder, locale-aware
func capitalizeFirstAndDowncaseRest(text string, loc language.Tag) string {
	rs := []rune(text)
	for i, c := range rs {
		if unicode.IsLetter(c) {
			head := cases.Upper(loc).String(string(rs[:i+1]))
			tail := cases.Lower(loc).String(string(rs[i+1:]))
			return head + tail
		}
	}
	return text
}
