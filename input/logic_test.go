package input

import (
	"testing"
	"time"
	"unicode/utf16"

	"github.com/lixenwraith/softkey/editor"
	"github.com/lixenwraith/softkey/event"
	"github.com/lixenwraith/softkey/session"
	"github.com/lixenwraith/softkey/settings"
)

// mockEditor is a minimal in-memory editor implementing editor.Backend,
// with the document held as UTF-16 code units
type mockEditor struct {
	buf      []uint16
	selStart int
	selEnd   int

	textBeforeCalls int
	actions         []int
}

func newMockEditor(text string) *mockEditor {
	units := utf16.Encode([]rune(text))
	return &mockEditor{buf: units, selStart: len(units), selEnd: len(units)}
}

func (m *mockEditor) String() string { return string(utf16.Decode(m.buf)) }

func (m *mockEditor) BeginBatchEdit() bool { return true }
func (m *mockEditor) EndBatchEdit() bool   { return true }

func (m *mockEditor) CommitText(text string, newCursorPosition int) bool {
	units := utf16.Encode([]rune(text))
	head := append([]uint16{}, m.buf[:m.selStart]...)
	tail := append([]uint16{}, m.buf[m.selEnd:]...)
	m.buf = append(append(head, units...), tail...)
	m.selStart += len(units)
	m.selEnd = m.selStart
	return true
}

func (m *mockEditor) DeleteSurroundingText(beforeUnits, afterUnits int) bool {
	if beforeUnits > m.selStart {
		beforeUnits = m.selStart
	}
	head := append([]uint16{}, m.buf[:m.selStart-beforeUnits]...)
	tail := append([]uint16{}, m.buf[m.selEnd+afterUnits:]...)
	m.buf = append(head, tail...)
	m.selStart -= beforeUnits
	m.selEnd = m.selStart
	return true
}

func (m *mockEditor) SetSelection(start, end int) bool {
	if start < 0 || end < 0 || start > len(m.buf) || end > len(m.buf) {
		return false
	}
	m.selStart, m.selEnd = start, end
	return true
}

func (m *mockEditor) FinishComposingText() bool { return true }

func (m *mockEditor) TextBeforeCursor(n int) (string, bool) {
	m.textBeforeCalls++
	start := m.selStart - n
	if start < 0 {
		start = 0
	}
	return string(utf16.Decode(m.buf[start:m.selStart])), true
}

func (m *mockEditor) TextAfterCursor(n int) (string, bool) {
	end := m.selEnd + n
	if end > len(m.buf) {
		end = len(m.buf)
	}
	return string(utf16.Decode(m.buf[m.selEnd:end])), true
}

func (m *mockEditor) SelectedText() (string, bool) {
	return string(utf16.Decode(m.buf[m.selStart:m.selEnd])), true
}

func (m *mockEditor) SendKeyEvent(ev editor.KeyAction) bool {
	switch ev.Key {
	case editor.SynEnter:
		m.CommitText("\n", 1)
	case editor.SynBackspace:
		if m.selStart != m.selEnd {
			m.DeleteSurroundingText(0, 0)
		} else if m.selStart > 0 {
			m.DeleteSurroundingText(1, 0)
		}
	case editor.SynDigit, editor.SynLiteral:
		m.CommitText(string(ev.Rune), 1)
	}
	return true
}

func (m *mockEditor) PerformEditorAction(id int) bool {
	m.actions = append(m.actions, id)
	return true
}

type mockProvider struct {
	backend editor.Backend
}

func (p *mockProvider) Connection() editor.Backend { return p.backend }

type mockHost struct {
	settingsShown   int
	subtypeSwitches int
}

func (h *mockHost) ShowSettings()    { h.settingsShown++ }
func (h *mockHost) SubtypeSwitched() { h.subtypeSwitches++ }

type fixture struct {
	ctx   *session.Context
	host  *mockHost
	prov  *mockProvider
	mock  *mockEditor
	logic *Logic
}

func newFixture(t *testing.T, text string) *fixture {
	t.Helper()
	p := settings.DefaultProfile()
	p.Subtypes = append(p.Subtypes, settings.SubtypeConfig{
		Name: "Deutsch", Locale: "de-DE", Layout: "qwertz",
	})
	ctx := session.NewContext(p)
	t.Cleanup(ctx.Destroy)

	f := &fixture{
		ctx:  ctx,
		host: &mockHost{},
		mock: newMockEditor(text),
	}
	f.prov = &mockProvider{backend: f.mock}
	f.logic = NewLogic(ctx, f.host, f.prov)
	f.logic.StartInput(editor.Info{CapModes: editor.CapModeCharacters | editor.CapModeWords | editor.CapModeSentences})
	f.logic.OnUpdateSelection(f.mock.selStart, f.mock.selEnd)
	return f
}

func (f *fixture) snapshot() *settings.Snapshot { return f.ctx.Settings() }

func keypress(cp rune) event.Event {
	return event.NewSoftwareKeypress(cp, event.NotAKeyCode, event.NotACoordinate, event.NotACoordinate, false)
}

func functionalKey(code event.KeyCode, repeat bool) event.Event {
	return event.NewSoftwareKeypress(event.NotACodePoint, code, event.NotACoordinate, event.NotACoordinate, repeat)
}

// === Text input ===

func TestTldRewriteDropsDoubledPeriod(t *testing.T) {
	f := newFixture(t, "www.")
	f.logic.OnTextInput(f.snapshot(), event.NewSoftwareText(".com"))
	if got := f.mock.String(); got != "www.com" {
		t.Errorf("editor text = %q, want %q", got, "www.com")
	}
}

func TestTldRewriteKeepsPeriodAfterLetter(t *testing.T) {
	f := newFixture(t, "base")
	f.logic.OnTextInput(f.snapshot(), event.NewSoftwareText(".com"))
	if got := f.mock.String(); got != "base.com" {
		t.Errorf("editor text = %q, want %q", got, "base.com")
	}
}

func TestTldRewriteIgnoresSingleCharacterText(t *testing.T) {
	f := newFixture(t, "end.")
	f.logic.OnTextInput(f.snapshot(), event.NewSoftwareText("."))
	if got := f.mock.String(); got != "end.." {
		t.Errorf("editor text = %q, want %q", got, "end..")
	}
}

func TestTextInputRequiresImmediateShiftUpdate(t *testing.T) {
	f := newFixture(t, "")
	tr := f.logic.OnTextInput(f.snapshot(), event.NewSoftwareText("any"))
	if tr.RequiredShiftUpdate() != ShiftUpdateNow {
		t.Errorf("text input shift update = %v, want now", tr.RequiredShiftUpdate())
	}
}

// === Backspace timing ===

func TestBackspaceSinglePressUpdatesNow(t *testing.T) {
	f := newFixture(t, "abc")
	tr := f.logic.OnCodeInput(f.snapshot(), event.Chain{functionalKey(event.KeyDelete, false)})
	if tr.RequiredShiftUpdate() != ShiftUpdateNow {
		t.Errorf("single backspace shift update = %v, want now", tr.RequiredShiftUpdate())
	}
	if got := f.mock.String(); got != "ab" {
		t.Errorf("editor text = %q, want %q", got, "ab")
	}
}

func TestBackspaceRepeatMidTextUpdatesLater(t *testing.T) {
	f := newFixture(t, "abc")
	tr := f.logic.OnCodeInput(f.snapshot(), event.Chain{functionalKey(event.KeyDelete, true)})
	if tr.RequiredShiftUpdate() != ShiftUpdateLater {
		t.Errorf("repeated backspace shift update = %v, want later", tr.RequiredShiftUpdate())
	}
}

func TestBackspaceRepeatAtStartUpdatesNow(t *testing.T) {
	f := newFixture(t, "")
	tr := f.logic.OnCodeInput(f.snapshot(), event.Chain{functionalKey(event.KeyDelete, true)})
	if tr.RequiredShiftUpdate() != ShiftUpdateNow {
		t.Errorf("repeat at text start shift update = %v, want now", tr.RequiredShiftUpdate())
	}
}

func TestBackspaceDeletesSelection(t *testing.T) {
	f := newFixture(t, "hello world")
	f.mock.SetSelection(5, 11)
	f.logic.OnUpdateSelection(5, 11)

	f.logic.OnCodeInput(f.snapshot(), event.Chain{functionalKey(event.KeyDelete, false)})
	if got := f.mock.String(); got != "hello" {
		t.Errorf("editor text = %q, want %q", got, "hello")
	}
}

// === Enter handling ===

func TestEnterPerformsCustomLabelAction(t *testing.T) {
	f := newFixture(t, "")
	f.logic.StartInput(editor.Info{ActionLabel: "Pay", CustomActionID: 42, Action: editor.ActionDone})

	f.logic.OnCodeInput(f.snapshot(), event.Chain{keypress('\n')})
	if len(f.mock.actions) != 1 || f.mock.actions[0] != 42 {
		t.Errorf("actions = %v, want [42]", f.mock.actions)
	}
}

func TestEnterPerformsDeclaredAction(t *testing.T) {
	f := newFixture(t, "")
	f.logic.StartInput(editor.Info{Action: editor.ActionSearch})

	f.logic.OnCodeInput(f.snapshot(), event.Chain{keypress('\n')})
	if len(f.mock.actions) != 1 || f.mock.actions[0] != int(editor.ActionSearch) {
		t.Errorf("actions = %v, want [%d]", f.mock.actions, int(editor.ActionSearch))
	}
	if f.mock.String() != "" {
		t.Errorf("editor gained text %q on an action enter", f.mock.String())
	}
}

func TestEnterCommitsNewlineWithoutAction(t *testing.T) {
	f := newFixture(t, "line")
	tr := f.logic.OnCodeInput(f.snapshot(), event.Chain{keypress('\n')})
	if got := f.mock.String(); got != "line\n" {
		t.Errorf("editor text = %q, want %q", got, "line\n")
	}
	if tr.RequiredShiftUpdate() != ShiftUpdateNow {
		t.Errorf("newline shift update = %v, want now", tr.RequiredShiftUpdate())
	}
}

// === Character classification ===

func TestSeparatorForcesShiftUpdate(t *testing.T) {
	f := newFixture(t, "word")
	tr := f.logic.OnCodeInput(f.snapshot(), event.Chain{keypress('.')})
	if tr.RequiredShiftUpdate() != ShiftUpdateNow {
		t.Errorf("separator shift update = %v, want now", tr.RequiredShiftUpdate())
	}
}

func TestPlainCharacterNeedsNoShiftUpdate(t *testing.T) {
	f := newFixture(t, "")
	tr := f.logic.OnCodeInput(f.snapshot(), event.Chain{keypress('a')})
	if tr.RequiredShiftUpdate() != ShiftNoUpdate {
		t.Errorf("plain char shift update = %v, want none", tr.RequiredShiftUpdate())
	}
	if f.mock.String() != "a" {
		t.Errorf("editor text = %q, want %q", f.mock.String(), "a")
	}
}

func TestDigitGoesThroughKeyEventPath(t *testing.T) {
	f := newFixture(t, "")
	f.logic.OnCodeInput(f.snapshot(), event.Chain{keypress('5')})
	if f.mock.String() != "5" {
		t.Errorf("editor text = %q, want %q", f.mock.String(), "5")
	}
}

func TestConsumedEventCommitsNothing(t *testing.T) {
	f := newFixture(t, "")
	consumed := keypress('x').AsConsumed()
	tr := f.logic.OnCodeInput(f.snapshot(), event.Chain{consumed})
	if f.mock.String() != "" {
		t.Errorf("consumed event committed %q", f.mock.String())
	}
	if tr.RequiredShiftUpdate() != ShiftNoUpdate {
		t.Errorf("consumed event requested shift update %v", tr.RequiredShiftUpdate())
	}
}

func TestChainProcessedInOrder(t *testing.T) {
	f := newFixture(t, "")
	chain := event.Chain{keypress('a'), functionalKey(event.KeyDelete, false)}
	f.logic.OnCodeInput(f.snapshot(), chain)
	if got := f.mock.String(); got != "" {
		t.Errorf("commit-then-delete left %q, want empty", got)
	}
	if f.logic.Connection().ExpectedSelStart() != 0 {
		t.Errorf("expected cursor = %d, want 0", f.logic.Connection().ExpectedSelStart())
	}
}

func TestUnknownKeyCodeDoesNotCrashRelease(t *testing.T) {
	f := newFixture(t, "")
	// Release builds log unknown key codes and keep serving input
	f.logic.OnCodeInput(f.snapshot(), event.Chain{functionalKey(event.KeyCode(250), false)})
	if f.mock.String() != "" {
		t.Errorf("unknown key committed %q", f.mock.String())
	}
}

// === Host delegation ===

func TestSettingsKeyDelegatesToHost(t *testing.T) {
	f := newFixture(t, "")
	f.logic.OnCodeInput(f.snapshot(), event.Chain{functionalKey(event.KeySettings, false)})
	if f.host.settingsShown != 1 {
		t.Errorf("settings shown %d times, want 1", f.host.settingsShown)
	}
}

func TestLanguageSwitchAdvancesSubtype(t *testing.T) {
	f := newFixture(t, "")
	before := f.ctx.Subtypes.Current().Name
	f.logic.OnCodeInput(f.snapshot(), event.Chain{functionalKey(event.KeyLanguageSwitch, false)})
	if f.host.subtypeSwitches != 1 {
		t.Errorf("host notified %d times, want 1", f.host.subtypeSwitches)
	}
	if after := f.ctx.Subtypes.Current().Name; after == before {
		t.Errorf("subtype did not advance from %q", before)
	}
}

func TestEditorActionKeys(t *testing.T) {
	f := newFixture(t, "")
	f.logic.OnCodeInput(f.snapshot(), event.Chain{
		functionalKey(event.KeyActionNext, false),
		functionalKey(event.KeyActionPrevious, false),
	})
	want := []int{int(editor.ActionNext), int(editor.ActionPrevious)}
	if len(f.mock.actions) != 2 || f.mock.actions[0] != want[0] || f.mock.actions[1] != want[1] {
		t.Errorf("actions = %v, want %v", f.mock.actions, want)
	}
}

// === Auto-caps ===

func TestAutoCapsOffForNonCapsScript(t *testing.T) {
	f := newFixture(t, "Done. ")
	if got := f.logic.CurrentAutoCapsState(f.snapshot(), "arabic"); got != editor.CapModeOff {
		t.Errorf("arabic layout caps state = %v, want off", got)
	}
}

func TestAutoCapsOffWhenDisabled(t *testing.T) {
	f := newFixture(t, "Done. ")
	p := settings.DefaultProfile()
	p.AutoCap = false
	f.ctx.ApplyProfile(p)
	if got := f.logic.CurrentAutoCapsState(f.snapshot(), "qwerty"); got != editor.CapModeOff {
		t.Errorf("caps state with auto-cap disabled = %v, want off", got)
	}
}

func TestAutoCapsAtSentenceStart(t *testing.T) {
	f := newFixture(t, "Done. ")
	got := f.logic.CurrentAutoCapsState(f.snapshot(), "qwerty")
	if got&editor.CapModeSentences == 0 {
		t.Errorf("caps state after sentence = %v, want sentences bit", got)
	}
}

// === Recapitalization ===

func TestRecapitalizationCyclesSelection(t *testing.T) {
	f := newFixture(t, "hello world")
	f.mock.SetSelection(0, 11)
	f.logic.OnUpdateSelection(0, 11)

	f.logic.OnCodeInput(f.snapshot(), event.Chain{functionalKey(event.KeyShift, false)})
	if got := f.mock.String(); got != "Hello world" {
		t.Fatalf("first shift = %q, want %q", got, "Hello world")
	}
	if f.mock.selStart != 0 || f.mock.selEnd != 11 {
		t.Fatalf("selection after replace = (%d, %d), want (0, 11)", f.mock.selStart, f.mock.selEnd)
	}

	f.logic.OnCodeInput(f.snapshot(), event.Chain{functionalKey(event.KeyShift, false)})
	if got := f.mock.String(); got != "HELLO WORLD" {
		t.Errorf("second shift = %q, want %q", got, "HELLO WORLD")
	}
}

func TestRecapitalizationNeedsSelection(t *testing.T) {
	f := newFixture(t, "hello")
	f.logic.OnCodeInput(f.snapshot(), event.Chain{functionalKey(event.KeyShift, false)})
	if got := f.mock.String(); got != "hello" {
		t.Errorf("shift without selection changed text to %q", got)
	}
}

func TestRecapitalizationDisabledBeforeFirstCursorMove(t *testing.T) {
	f := newFixture(t, "hello")
	f.mock.SetSelection(0, 5)
	f.logic.StartInput(editor.Info{})
	// Selection exists but no cursor move arrived since StartInput
	f.logic.Connection().ResetCachesUponCursorMoveAndReturnSuccess(0, 5)
	f.logic.OnCodeInput(f.snapshot(), event.Chain{functionalKey(event.KeyShift, false)})
	if got := f.mock.String(); got != "hello" {
		t.Errorf("recapitalization ran while disabled: %q", got)
	}
}

func TestHardwareKeyReleaseIgnoredWhenUntracked(t *testing.T) {
	f := newFixture(t, "")
	f.logic.HardwareKeyPressed(42)
	if !f.logic.HardwareKeyReleased(42) {
		t.Error("tracked key release not recognized")
	}
	if f.logic.HardwareKeyReleased(42) {
		t.Error("second release of the same key must be ignored")
	}

	// A new input session clears held keys; a release crossing the boundary
	// belongs to the previous session
	f.logic.HardwareKeyPressed(7)
	f.logic.StartInput(editor.Info{})
	if f.logic.HardwareKeyReleased(7) {
		t.Error("release from a previous session was accepted")
	}
}

// === Cache reset retries ===

func TestRetryResetCachesExhaustionIsNotFatal(t *testing.T) {
	f := newFixture(t, "")
	f.prov.backend = nil
	if !f.logic.RetryResetCachesAndReturnSuccess(false, 0) {
		t.Error("exhausted retry budget must still report success to unblock the caller")
	}
}

func TestRetryResetCachesReschedules(t *testing.T) {
	f := newFixture(t, "seed text")
	f.prov.backend = nil
	if f.logic.RetryResetCachesAndReturnSuccess(false, 2) {
		t.Fatal("reset reported success with no connection")
	}

	// Reattach before the delayed retry fires
	f.prov.backend = f.mock
	calls := f.mock.textBeforeCalls
	time.Sleep(250 * time.Millisecond)

	// Synchronize with the handler goroutine before inspecting the mock
	done := make(chan struct{})
	f.ctx.Handler.Post(func() { close(done) })
	<-done

	if f.mock.textBeforeCalls <= calls {
		t.Error("delayed retry never reloaded the cache")
	}
}
