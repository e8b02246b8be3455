package main

import (
	"unicode/utf16"

	"github.com/lixenwraith/softkey/editor"
)

// editorPane is the demo's in-process editor. It plays the role the remote
// editor plays in a real deployment: it owns the authoritative text buffer and
// selection, accepts the engine's Backend calls, and can be detached to
// exercise the engine's disconnected paths.
//
// Offsets are UTF-16 code units throughout, matching the engine's bookkeeping.
// Touched only on the session handler goroutine
type editorPane struct {
	buf      []uint16
	selStart int
	selEnd   int

	batchNest int
	attached  bool

	action      editor.ActionID
	actionLabel string

	// onCommit fires once per committed string, for keypress feedback
	onCommit func(text string)
}

func newEditorPane() *editorPane {
	return &editorPane{attached: true}
}

// Connection implements editor.Provider. A detached pane returns nil, which
// the engine must treat as "every mutation is a no-op"
func (p *editorPane) Connection() editor.Backend {
	if !p.attached {
		return nil
	}
	return p
}

func (p *editorPane) setAttached(on bool) { p.attached = on }

func (p *editorPane) info() editor.Info {
	return editor.Info{
		Action:      p.action,
		ActionLabel: p.actionLabel,
		CapModes:    editor.CapModeCharacters | editor.CapModeWords | editor.CapModeSentences,
	}
}

// text returns the buffer as a string, with the selection bounds converted to
// rune offsets for rendering
func (p *editorPane) text() (s string, selStart, selEnd int) {
	runes := utf16.Decode(p.buf)
	selStart = len(utf16.Decode(p.buf[:p.selStart]))
	selEnd = len(utf16.Decode(p.buf[:p.selEnd]))
	return string(runes), selStart, selEnd
}

func (p *editorPane) BeginBatchEdit() bool {
	p.batchNest++
	return true
}

func (p *editorPane) EndBatchEdit() bool {
	if p.batchNest > 0 {
		p.batchNest--
	}
	return true
}

func (p *editorPane) CommitText(text string, newCursorPosition int) bool {
	units := utf16.Encode([]rune(text))
	head := append([]uint16{}, p.buf[:p.selStart]...)
	tail := append([]uint16{}, p.buf[p.selEnd:]...)
	p.buf = append(append(head, units...), tail...)
	p.selStart += len(units)
	p.selEnd = p.selStart
	if p.onCommit != nil && text != "" {
		p.onCommit(text)
	}
	return true
}

func (p *editorPane) DeleteSurroundingText(beforeUnits, afterUnits int) bool {
	if beforeUnits > p.selStart {
		beforeUnits = p.selStart
	}
	if p.selEnd+afterUnits > len(p.buf) {
		afterUnits = len(p.buf) - p.selEnd
	}
	head := append([]uint16{}, p.buf[:p.selStart-beforeUnits]...)
	tail := append([]uint16{}, p.buf[p.selEnd+afterUnits:]...)
	p.buf = append(head, tail...)
	p.selStart -= beforeUnits
	p.selEnd = p.selStart
	return true
}

func (p *editorPane) SetSelection(start, end int) bool {
	if start < 0 || end < 0 || start > end || end > len(p.buf) {
		return false
	}
	p.selStart, p.selEnd = start, end
	return true
}

func (p *editorPane) FinishComposingText() bool { return true }

func (p *editorPane) TextBeforeCursor(n int) (string, bool) {
	start := p.selStart - n
	if start < 0 {
		start = 0
	}
	return string(utf16.Decode(p.buf[start:p.selStart])), true
}

func (p *editorPane) TextAfterCursor(n int) (string, bool) {
	end := p.selEnd + n
	if end > len(p.buf) {
		end = len(p.buf)
	}
	return string(utf16.Decode(p.buf[p.selEnd:end])), true
}

func (p *editorPane) SelectedText() (string, bool) {
	return string(utf16.Decode(p.buf[p.selStart:p.selEnd])), true
}

func (p *editorPane) SendKeyEvent(ev editor.KeyAction) bool {
	switch ev.Key {
	case editor.SynEnter:
		return p.CommitText("\n", 1)
	case editor.SynBackspace:
		if p.selStart != p.selEnd {
			return p.DeleteSurroundingText(0, 0)
		}
		if p.selStart == 0 {
			return true
		}
		n := 1
		if p.selStart >= 2 && isLowSurrogate(p.buf[p.selStart-1]) && isHighSurrogate(p.buf[p.selStart-2]) {
			n = 2
		}
		return p.DeleteSurroundingText(n, 0)
	case editor.SynDigit, editor.SynLiteral:
		return p.CommitText(string(ev.Rune), 1)
	}
	return false
}

func (p *editorPane) PerformEditorAction(id int) bool {
	// The demo has no action targets; cycling the declared action shows what
	// an enter press would dispatch
	return true
}

func isHighSurrogate(u uint16) bool { return u >= 0xD800 && u <= 0xDBFF }
func isLowSurrogate(u uint16) bool  { return u >= 0xDC00 && u <= 0xDFFF }
