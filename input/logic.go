package input

import (
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/softkey/core"
	"github.com/lixenwraith/softkey/editor"
	"github.com/lixenwraith/softkey/event"
	"github.com/lixenwraith/softkey/parameter"
	"github.com/lixenwraith/softkey/session"
	"github.com/lixenwraith/softkey/settings"
)

// nonAutoCapsLayouts are the layouts whose scripts have no Latin-style
// capitalization; auto-caps is forced off for them
var nonAutoCapsLayouts = map[string]struct{}{
	"arabic":             {},
	"bengali":            {},
	"bengali_akkhor":     {},
	"farsi":              {},
	"georgian":           {},
	"hebrew":             {},
	"hindi":              {},
	"hindi_compact":      {},
	"kannada":            {},
	"khmer":              {},
	"lao":                {},
	"malayalam":          {},
	"marathi":            {},
	"nepali_romanized":   {},
	"nepali_traditional": {},
	"tamil":              {},
	"telugu":             {},
	"thai":               {},
	"urdu":               {},
}

// Logic is the central input state machine. It consumes event chains,
// mutates the editor through the RichConnection shadow, and reports
// required follow-up work to the host through the returned transaction.
// All methods run on the session handler goroutine
type Logic struct {
	ctx  *session.Context
	host Host
	conn *editor.RichConnection

	recap *Recapitalizer
	info  editor.Info

	// Hardware keys currently held down; cleared on every input start so a
	// stale down event from a previous session can't pair with a fresh up
	pressedHardwareKeys map[int]struct{}
}

// NewLogic wires the state machine to its session, host and editor provider
func NewLogic(ctx *session.Context, host Host, provider editor.Provider) *Logic {
	return &Logic{
		ctx:                 ctx,
		host:                host,
		conn:                editor.NewRichConnection(provider),
		recap:               NewRecapitalizer(),
		pressedHardwareKeys: make(map[int]struct{}),
	}
}

// Connection exposes the editor shadow to the host (caps display, demo UI)
func (l *Logic) Connection() *editor.RichConnection {
	return l.conn
}

// StartInput is called on editor attach, reattach or subtype change.
// Recapitalization stays disabled until the first cursor move
func (l *Logic) StartInput(info editor.Info) {
	l.info = info
	l.recap.Disable()
	clear(l.pressedHardwareKeys)
}

// FinishInput is called on editor detach; the shadow is emptied
func (l *Logic) FinishInput() {
	l.recap.Disable()
	l.conn.Reset()
}

// OnSubtypeChanged resets input state after a language switch; the host
// follows up by rebuilding the keyboard for the new subtype
func (l *Logic) OnSubtypeChanged() {
	l.recap.Disable()
	clear(l.pressedHardwareKeys)
}

// HardwareKeyPressed records a held hardware key
func (l *Logic) HardwareKeyPressed(code int) {
	l.pressedHardwareKeys[code] = struct{}{}
}

// HardwareKeyReleased reports whether the key was tracked as held, and
// untracks it. An untracked release belongs to a previous session and must
// be ignored
func (l *Logic) HardwareKeyReleased(code int) bool {
	_, ok := l.pressedHardwareKeys[code]
	delete(l.pressedHardwareKeys, code)
	return ok
}

// OnTextInput handles compound string insertion, e.g. a ".com" key.
// Inserted text always forces an immediate shift recompute since it can
// change the caps context arbitrarily
func (l *Logic) OnTextInput(s *settings.Snapshot, ev event.Event) *Transaction {
	t := NewTransaction(s)
	l.conn.BeginBatchEdit()
	text := l.applyTldDeduplication(ev.TextToCommit())
	l.conn.CommitText(text, 1)
	l.conn.EndBatchEdit()
	t.RequireShiftUpdate(ShiftUpdateNow)
	return t
}

// applyTldDeduplication drops the leading period of a ".com"-style insertion
// when the character before the cursor is already a period, avoiding ".."
func (l *Logic) applyTldDeduplication(text string) string {
	rs := []rune(text)
	if len(rs) <= 1 || rs[0] != '.' || !unicode.IsLetter(rs[1]) {
		return text
	}
	prev, ok := l.conn.TextBeforeCursor(1)
	if ok && prev == "." {
		return string(rs[1:])
	}
	return text
}

// OnCodeInput processes one event chain in order. Each event's effects,
// including shadow updates, are fully applied before the next event is
// classified: later events may depend on state mutated by earlier ones
func (l *Logic) OnCodeInput(s *settings.Snapshot, chain event.Chain) *Transaction {
	t := NewTransaction(s)
	l.conn.BeginBatchEdit()
	for _, ev := range chain {
		switch {
		case ev.IsConsumed():
			l.handleConsumedEvent(ev)
		case ev.IsFunctionalKey():
			l.handleFunctionalEvent(ev, t)
		default:
			l.handleNonFunctionalEvent(ev, t)
		}
	}
	l.conn.EndBatchEdit()
	return t
}

// handleConsumedEvent commits any side-effect text of an event a prior stage
// already consumed. No other processing: the consumer owns the semantics
func (l *Logic) handleConsumedEvent(ev event.Event) {
	if text := ev.TextToCommit(); text != "" {
		l.conn.CommitText(text, 1)
	}
}

func (l *Logic) handleFunctionalEvent(ev event.Event, t *Transaction) {
	switch ev.Code {
	case event.KeyDelete:
		l.handleBackspace(ev, t)

	case event.KeyShift:
		l.PerformRecapitalization(t.Settings)
		t.RequireShiftUpdate(ShiftUpdateNow)

	case event.KeyCapsLock, event.KeySymbolShift, event.KeyAlphaSymbolSwitch, event.KeyEmoji:
		// Handled by the keyboard layer before events reach this machine

	case event.KeySettings:
		l.host.ShowSettings()

	case event.KeyActionNext:
		l.conn.PerformEditorAction(int(editor.ActionNext))

	case event.KeyActionPrevious:
		l.conn.PerformEditorAction(int(editor.ActionPrevious))

	case event.KeyLanguageSwitch:
		l.ctx.NextSubtype()
		l.OnSubtypeChanged()
		l.host.SubtypeSwitched()

	case event.KeyShiftEnter:
		l.conn.SendKeyEvent(editor.KeyAction{Key: editor.SynEnter, Shift: true})
		t.RequireShiftUpdate(ShiftUpdateNow)

	default:
		core.Fail("unknown key code %v", ev.Code)
	}
}

// handleBackspace deletes backwards and decides the shift-update timing.
// A repeated backspace mid-text defers the recompute so the caps indicator
// doesn't flicker during fast deletion; a repeat that reached the start of
// text, or any single press, recomputes immediately
func (l *Logic) handleBackspace(ev event.Event, t *Transaction) {
	if ev.IsKeyRepeat() && l.conn.ExpectedSelStart() > 0 {
		t.RequireShiftUpdate(ShiftUpdateLater)
	} else {
		t.RequireShiftUpdate(ShiftUpdateNow)
	}

	if l.conn.HasSelection() {
		// Deleting a selection removes the whole span
		units := l.conn.ExpectedSelEnd() - l.conn.ExpectedSelStart()
		end := l.conn.ExpectedSelEnd()
		l.conn.SetSelection(end, end)
		l.conn.DeleteTextBeforeCursor(units)
		return
	}
	l.conn.SendKeyEvent(editor.KeyAction{Key: editor.SynBackspace})
}

func (l *Logic) handleNonFunctionalEvent(ev event.Event, t *Transaction) {
	if ev.CodePoint == '\n' {
		l.handleEnter(t)
		return
	}
	l.commitCodePoint(ev.CodePoint, t)
}

// handleEnter consults the editor's declared action. A custom action label
// wins regardless of the action value; any declared action other than "none"
// is performed; only an actionless editor gets a literal newline
func (l *Logic) handleEnter(t *Transaction) {
	if l.info.ActionLabel != "" {
		l.conn.PerformEditorAction(l.info.CustomActionID)
		return
	}
	if l.info.Action != editor.ActionNone {
		l.conn.PerformEditorAction(int(l.info.Action))
		return
	}
	l.conn.SendKeyEvent(editor.KeyAction{Key: editor.SynEnter})
	t.RequireShiftUpdate(ShiftUpdateNow)
}

// commitCodePoint commits a single character. Word separators and
// other-symbol characters can end a sentence or word, so they force an
// immediate shift recompute; plain characters don't
func (l *Logic) commitCodePoint(cp rune, t *Transaction) {
	if cp >= '0' && cp <= '9' {
		// Some editors only accept digits as raw key events
		l.conn.SendKeyEvent(editor.KeyAction{Key: editor.SynDigit, Rune: cp})
	} else {
		l.conn.CommitText(string(cp), 1)
	}
	if t.Settings.Spacing.IsWordSeparator(cp) || unicode.Is(unicode.So, cp) {
		t.RequireShiftUpdate(ShiftUpdateNow)
	}
}

// OnUpdateSelection adopts the platform-reported bounds as ground truth.
// A cursor move both re-enables recapitalization (the session is live) and
// invalidates any in-flight recapitalization target
func (l *Logic) OnUpdateSelection(newStart, newEnd int) {
	l.conn.ResetCachesUponCursorMoveAndReturnSuccess(newStart, newEnd)
	l.recap.Enable()
	l.recap.Stop()
}

// CurrentAutoCapsState computes the capitalization modes the keyboard should
// display for the given layout, from the cached preceding text
func (l *Logic) CurrentAutoCapsState(s *settings.Snapshot, layout string) editor.CapMode {
	if !s.AutoCap {
		return editor.CapModeOff
	}
	if _, ok := nonAutoCapsLayouts[layout]; ok {
		return editor.CapModeOff
	}
	return l.conn.CursorCapsMode(l.info.CapModes, &s.Spacing, false)
}

// PerformRecapitalization rotates the selected span to its next
// capitalization style, as one atomic batch edit. Guarded by: an active
// selection, the recapitalizer being enabled, and a bounded span size
func (l *Logic) PerformRecapitalization(s *settings.Snapshot) {
	if !l.conn.HasSelection() || !l.recap.IsEnabled() {
		return
	}
	selStart := l.conn.ExpectedSelStart()
	selEnd := l.conn.ExpectedSelEnd()
	if selEnd-selStart > parameter.RecapitalizeMaxLen {
		return
	}

	if !l.recap.IsSetAt(selStart, selEnd) {
		text, ok := l.conn.SelectedText()
		if !ok || text == "" {
			return
		}
		l.recap.Start(selStart, selEnd, text, l.ctx.Subtypes.Current().Locale)
		if !l.recap.IsStarted() {
			return
		}
	}
	l.recap.Rotate()

	l.conn.BeginBatchEdit()
	l.conn.FinishComposingText()
	l.conn.SetSelection(selEnd, selEnd)
	l.conn.DeleteTextBeforeCursor(selEnd - selStart)
	l.conn.CommitText(l.recap.CurrentString(), 0)
	l.conn.SetSelection(l.recap.NewCursorStart(), l.recap.NewCursorEnd())
	l.conn.EndBatchEdit()
}

// RetryResetCachesAndReturnSuccess reloads the shadow cache, rescheduling
// itself with one fewer try on failure. Exhausting the budget is not fatal:
// the caller proceeds with best-effort stale state rather than blocking
// startup on a possibly permanently-broken connection. When tryResume is
// set, the host should refresh the caps indicator after a successful reset
func (l *Logic) RetryResetCachesAndReturnSuccess(tryResume bool, remainingTries int) bool {
	start := l.conn.ExpectedSelStart()
	end := l.conn.ExpectedSelEnd()
	if !l.conn.ResetCachesUponCursorMoveAndReturnSuccess(start, end) {
		if remainingTries > 0 {
			l.ctx.Handler.PostDelayed(parameter.ResetCacheRetryInterval, func() {
				l.RetryResetCachesAndReturnSuccess(tryResume, remainingTries-1)
			})
			return false
		}
		logrus.Warn("editor cache reload retries exhausted, proceeding with stale cache")
	}
	return true
}
