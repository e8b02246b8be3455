package editor

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/softkey/core"
	"github.com/lixenwraith/softkey/parameter"
	"github.com/lixenwraith/softkey/settings"
)

// RichConnection keeps a speculative shadow of the remote editor's state:
// the expected selection bounds and a bounded window of the text immediately
// before the cursor. Every mutation applies an optimistic local update before
// forwarding, because the transport is one-way and waiting for confirmation
// would make each keystroke latency-bound. The shadow is authoritative only
// until the editor moves the cursor out from under us; cursor-move
// notifications reset it to platform truth.
//
// Owned by a single goroutine (the session handler); no internal locking
type RichConnection struct {
	provider Provider

	// Expected selection bounds in UTF-16 code units;
	// parameter.InvalidCursor when unknown
	expectedSelStart int
	expectedSelEnd   int

	// Text immediately before the cursor, bounded by parameter.EditorCacheSize.
	// Valid only while cacheValid; the tail must match the editor's text
	// before the cursor as of the last reload or locally-applied mutation
	before     []uint16
	cacheValid bool

	batchNest int
}

// NewRichConnection creates a shadow over the given connection provider
func NewRichConnection(p Provider) *RichConnection {
	return &RichConnection{
		provider:         p,
		expectedSelStart: parameter.InvalidCursor,
		expectedSelEnd:   parameter.InvalidCursor,
	}
}

// connected re-fetches the live connection. The handle can go stale between
// any two calls, so nothing caches the result across operations
func (rc *RichConnection) connected() (Backend, bool) {
	c := rc.provider.Connection()
	return c, c != nil
}

// Reset empties the shadow on session detach
func (rc *RichConnection) Reset() {
	rc.expectedSelStart = parameter.InvalidCursor
	rc.expectedSelEnd = parameter.InvalidCursor
	rc.before = rc.before[:0]
	rc.cacheValid = false
	rc.batchNest = 0
}

// ExpectedSelStart returns the expected selection start, InvalidCursor if unknown
func (rc *RichConnection) ExpectedSelStart() int { return rc.expectedSelStart }

// ExpectedSelEnd returns the expected selection end, InvalidCursor if unknown
func (rc *RichConnection) ExpectedSelEnd() int { return rc.expectedSelEnd }

// HasSelection reports whether a non-empty selection is expected
func (rc *RichConnection) HasSelection() bool {
	return rc.expectedSelStart != parameter.InvalidCursor &&
		rc.expectedSelEnd != parameter.InvalidCursor &&
		rc.expectedSelStart != rc.expectedSelEnd
}

// HasCursorPosition reports whether the cursor position is known
func (rc *RichConnection) HasCursorPosition() bool {
	return rc.expectedSelStart != parameter.InvalidCursor
}

// BeginBatchEdit opens a batch edit. Nested calls are reference counted and
// only the outermost pair reaches the editor
func (rc *RichConnection) BeginBatchEdit() {
	rc.batchNest++
	if rc.batchNest != 1 {
		return
	}
	if c, ok := rc.connected(); ok {
		c.BeginBatchEdit()
	}
	rc.debugCheckConsistency()
}

// EndBatchEdit closes a batch edit. Ending without a matching begin is a
// programming error; release builds log it and keep the input path up
func (rc *RichConnection) EndBatchEdit() {
	core.Check(rc.batchNest > 0, "endBatchEdit without matching beginBatchEdit")
	if rc.batchNest <= 0 {
		return
	}
	rc.batchNest--
	if rc.batchNest != 0 {
		return
	}
	if c, ok := rc.connected(); ok {
		c.EndBatchEdit()
	}
	rc.debugCheckConsistency()
}

// CommitText appends text at the cursor. The shadow is updated optimistically:
// cache gains the committed units and the expected cursor advances by their
// count, but only while the cursor position is known
func (rc *RichConnection) CommitText(text string, newCursorPosition int) {
	units := encodeUTF16(text)
	rc.before = trimToTail(append(rc.before, units...), parameter.EditorCacheSize)
	if rc.expectedSelStart != parameter.InvalidCursor {
		rc.expectedSelStart += len(units)
		rc.expectedSelEnd = rc.expectedSelStart
	}
	if c, ok := rc.connected(); ok {
		c.CommitText(text, newCursorPosition)
	}
}

// DeleteTextBeforeCursor removes n code units before the cursor. Shadow-first,
// like CommitText
func (rc *RichConnection) DeleteTextBeforeCursor(n int) {
	if n <= 0 {
		return
	}
	if n > len(rc.before) {
		rc.before = rc.before[:0]
	} else {
		rc.before = rc.before[:len(rc.before)-n]
	}
	if rc.expectedSelStart != parameter.InvalidCursor {
		rc.expectedSelStart -= n
		if rc.expectedSelStart < 0 {
			rc.expectedSelStart = 0
		}
		rc.expectedSelEnd = rc.expectedSelStart
	}
	if c, ok := rc.connected(); ok {
		c.DeleteSurroundingText(n, 0)
	}
}

// SetSelection moves the selection. A request matching the current
// expectation is a no-op, avoiding a redundant round trip. Otherwise the
// expectation updates, the editor is told, and the text cache is fully
// reloaded because the cursor itself moved. When the move cannot reach the
// editor the cache is invalidated instead: its tail belongs to the old cursor
// position, and no platform notification will come to heal it
func (rc *RichConnection) SetSelection(start, end int) bool {
	if start < 0 || end < 0 {
		return false
	}
	if rc.expectedSelStart == start && rc.expectedSelEnd == end {
		return true
	}
	rc.expectedSelStart = start
	rc.expectedSelEnd = end
	c, ok := rc.connected()
	if !ok {
		rc.invalidateCache()
		return false
	}
	if !c.SetSelection(start, end) {
		rc.invalidateCache()
		return false
	}
	rc.reloadCache()
	return true
}

// FinishComposingText closes any provisional text span in the editor. The
// shadow tracks committed text only, so there is nothing local to update
func (rc *RichConnection) FinishComposingText() {
	if c, ok := rc.connected(); ok {
		c.FinishComposingText()
	}
}

// SendKeyEvent sends one of the closed back-compat set of raw key events and
// heuristically applies the key's expected effect to the shadow first
func (rc *RichConnection) SendKeyEvent(ev KeyAction) {
	switch ev.Key {
	case SynEnter:
		rc.applyLocalAppend("\n")
	case SynBackspace:
		rc.applyLocalBackspace()
	case SynDigit, SynLiteral:
		rc.applyLocalAppend(string(ev.Rune))
	}
	if c, ok := rc.connected(); ok {
		c.SendKeyEvent(ev)
	}
}

func (rc *RichConnection) applyLocalAppend(text string) {
	units := encodeUTF16(text)
	rc.before = trimToTail(append(rc.before, units...), parameter.EditorCacheSize)
	if rc.expectedSelStart != parameter.InvalidCursor {
		rc.expectedSelStart += len(units)
		rc.expectedSelEnd = rc.expectedSelStart
	}
}

func (rc *RichConnection) applyLocalBackspace() {
	if rc.HasSelection() {
		// The editor deletes the selected span and collapses the cursor
		rc.expectedSelEnd = rc.expectedSelStart
		return
	}
	n := lastCodePointLen(rc.before)
	rc.before = rc.before[:len(rc.before)-n]
	if rc.expectedSelStart > 0 {
		if n == 0 {
			// Empty cache with a known positive cursor: the editor still
			// deletes one code unit
			n = 1
		}
		rc.expectedSelStart -= n
		if rc.expectedSelStart < 0 {
			rc.expectedSelStart = 0
		}
		rc.expectedSelEnd = rc.expectedSelStart
	}
}

// PerformEditorAction asks the editor to run its declared IME action
func (rc *RichConnection) PerformEditorAction(id int) {
	if c, ok := rc.connected(); ok {
		c.PerformEditorAction(id)
	}
}

// TextBeforeCursor returns up to n code units of text before the cursor as a
// string. Served from the shadow cache when it already holds n units, or when
// it holds the entire prefix (the expected cursor start fits in the cache);
// only otherwise does it reach out to the editor
func (rc *RichConnection) TextBeforeCursor(n int) (string, bool) {
	cached := len(rc.before)
	if rc.cacheValid {
		if cached >= n || (rc.expectedSelStart != parameter.InvalidCursor && cached >= rc.expectedSelStart) {
			take := n
			if take > cached {
				take = cached
			}
			return decodeUTF16(trimToTail(rc.before, take)), true
		}
	}
	c, ok := rc.connected()
	if !ok {
		return "", false
	}
	return fetchAndDetectLag(parameter.SlowPartialReloadWarn, "TextBeforeCursor", func() (string, bool) {
		return c.TextBeforeCursor(n)
	})
}

// TextAfterCursor fetches text after the cursor. Never cached: the shadow
// only tracks the prefix window
func (rc *RichConnection) TextAfterCursor(n int) (string, bool) {
	c, ok := rc.connected()
	if !ok {
		return "", false
	}
	return fetchAndDetectLag(parameter.SlowPartialReloadWarn, "TextAfterCursor", func() (string, bool) {
		return c.TextAfterCursor(n)
	})
}

// SelectedText fetches the selected text from the editor
func (rc *RichConnection) SelectedText() (string, bool) {
	c, ok := rc.connected()
	if !ok {
		return "", false
	}
	return fetchAndDetectLag(parameter.SlowPartialReloadWarn, "SelectedText", func() (string, bool) {
		return c.SelectedText()
	})
}

// ResetCachesUponCursorMoveAndReturnSuccess adopts the platform-reported
// selection bounds as ground truth and performs a full cache reload. Returns
// false when the reload failed; the new expectations are kept either way so a
// later retry starts from the right place
func (rc *RichConnection) ResetCachesUponCursorMoveAndReturnSuccess(newStart, newEnd int) bool {
	rc.expectedSelStart = newStart
	rc.expectedSelEnd = newEnd
	if !rc.reloadCache() {
		logrus.Debug("reload failed, will retry text cache later")
		return false
	}
	return true
}

// invalidateCache marks the prefix window unknown without a remote fetch
func (rc *RichConnection) invalidateCache() {
	rc.before = rc.before[:0]
	rc.cacheValid = false
}

// reloadCache refetches the prefix window. On failure the cache is marked
// unknown but the expected bounds are untouched
func (rc *RichConnection) reloadCache() bool {
	rc.invalidateCache()
	c, ok := rc.connected()
	if !ok {
		return false
	}
	text, ok := fetchAndDetectLag(parameter.SlowFullReloadWarn, "reloadCache", func() (string, bool) {
		return c.TextBeforeCursor(parameter.EditorCacheSize)
	})
	if !ok {
		return false
	}
	rc.before = trimToTail(encodeUTF16(text), parameter.EditorCacheSize)
	rc.cacheValid = true
	return true
}

// CursorCapsMode computes the capitalization modes in effect at the cursor
// from the cached prefix. No blocking editor call happens here, with one
// exception: an empty cache at a known nonzero position means the cache was
// never populated, so one reload is attempted first
func (rc *RichConnection) CursorCapsMode(req CapMode, sp *settings.SpacingAndPunctuations, hasSpaceBefore bool) CapMode {
	if _, ok := rc.connected(); !ok {
		return CapModeOff
	}
	if len(rc.before) == 0 && rc.expectedSelStart != 0 && rc.expectedSelStart != parameter.InvalidCursor {
		if !rc.reloadCache() {
			logrus.Warn("cursor caps mode without a usable text cache")
			return CapModeOff
		}
	}
	runes := []rune(decodeUTF16(rc.before))
	return CapsModeForText(runes, req, sp, hasSpaceBefore)
}

// UnicodeSteps converts a count of logical character movements into signed
// UTF-16 code unit steps, collapsing each surrogate pair into one logical
// step. With rightSidePointer set and a selection present, the selection
// itself is traversed instead of the text adjacent to the cursor
func (rc *RichConnection) UnicodeSteps(chars int, rightSidePointer bool) int {
	steps := 0
	if chars < 0 {
		var text string
		var ok bool
		if rightSidePointer && rc.HasSelection() {
			text, ok = rc.SelectedText()
		} else {
			text, ok = rc.TextBeforeCursor(-chars * 2)
		}
		if !ok {
			return 0
		}
		units := encodeUTF16(text)
		for i := len(units) - 1; i >= 0 && chars < 0; i, chars, steps = i-1, chars+1, steps-1 {
			if isSurrogate(units[i]) {
				steps--
				i--
			}
		}
	} else if chars > 0 {
		var text string
		var ok bool
		if rightSidePointer || !rc.HasSelection() {
			text, ok = rc.TextAfterCursor(chars * 2)
		} else {
			text, ok = rc.SelectedText()
		}
		if !ok {
			return 0
		}
		units := encodeUTF16(text)
		for i := 0; i < len(units) && chars > 0; i, chars, steps = i+1, chars-1, steps+1 {
			if isSurrogate(units[i]) {
				steps++
				i++
			}
		}
	}
	return steps
}

// fetchAndDetectLag runs a remote fetch and logs when it exceeds the given
// threshold. Diagnostics only: by the time lag is detected the call has
// already completed, so there is nothing to abort
func fetchAndDetectLag(threshold time.Duration, op string, fetch func() (string, bool)) (string, bool) {
	start := time.Now()
	text, ok := fetch()
	if elapsed := time.Since(start); elapsed >= threshold {
		logrus.WithFields(logrus.Fields{
			"operation": op,
			"elapsed":   elapsed,
		}).Warn("slow editor connection")
	}
	return text, ok
}
