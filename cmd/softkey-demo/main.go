package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/mattn/go-runewidth"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/softkey/core"
	"github.com/lixenwraith/softkey/editor"
	"github.com/lixenwraith/softkey/event"
	"github.com/lixenwraith/softkey/input"
	"github.com/lixenwraith/softkey/parameter"
	"github.com/lixenwraith/softkey/session"
	"github.com/lixenwraith/softkey/settings"
)

const (
	backspaceRepeatWindow = 150 * time.Millisecond
	shiftUpdateDelay      = 100 * time.Millisecond
	clickToneHz           = 1200
	clickToneMs           = 30
)

// renderState is the value snapshot the handler goroutine publishes and the
// draw loop renders. Selection bounds are rune offsets into text
type renderState struct {
	text     string
	selStart int
	selEnd   int

	caps     editor.CapMode
	subtype  string
	soundOn  bool
	attached bool
	action   editor.ActionID
	status   string
}

// Demo is the terminal host driving the input engine against an in-process
// editor pane. The engine and the pane live on the session handler goroutine;
// the draw loop owns the screen and consumes published snapshots
type Demo struct {
	screen tcell.Screen

	ctx   *session.Context
	logic *input.Logic
	pane  *editorPane

	profilePath string
	watcher     *fsnotify.Watcher

	audioInit bool

	// Handler-goroutine state
	status string
	caps   editor.CapMode

	// Draw-loop state
	frames        chan renderState
	last          renderState
	lastBackspace time.Time
}

func NewDemo(profilePath string) (*Demo, error) {
	profile, err := settings.LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	d := &Demo{
		screen:      screen,
		ctx:         session.NewContext(profile),
		pane:        newEditorPane(),
		profilePath: profilePath,
		frames:      make(chan renderState, 1),
	}
	d.logic = input.NewLogic(d.ctx, d, d.pane)

	d.pane.onCommit = func(string) {
		s := d.ctx.Settings()
		if s.SoundOn && s.KeypressSoundVolume > 0 {
			d.playClickSound()
		}
	}

	if err := d.initAudio(); err != nil {
		// The demo runs fine silent
		logrus.WithError(err).Warn("audio initialization failed")
	}
	if err := d.initWatcher(); err != nil {
		logrus.WithError(err).Warn("settings hot reload unavailable")
	}

	d.ctx.Handler.Post(func() {
		d.logic.StartInput(d.pane.info())
		d.logic.OnUpdateSelection(0, 0)
		d.refreshCaps()
		d.publish()
	})
	return d, nil
}

func (d *Demo) initAudio() error {
	sampleRate := beep.SampleRate(44100)
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	d.audioInit = true
	return nil
}

func (d *Demo) playClickSound() {
	if !d.audioInit {
		return
	}
	sampleRate := beep.SampleRate(44100)
	tone, err := generators.SineTone(sampleRate, clickToneHz)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(clickToneMs*time.Millisecond), tone))
}

// initWatcher reloads the settings profile whenever the file changes on disk.
// The watch is on the directory: editors replace files by rename, which drops
// a watch placed on the file itself
func (d *Demo) initWatcher() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(d.profilePath)); err != nil {
		w.Close()
		return err
	}
	d.watcher = w

	core.Go(func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(d.profilePath) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				profile, err := settings.LoadProfile(d.profilePath)
				if err != nil {
					logrus.WithError(err).Warn("settings reload rejected")
					continue
				}
				d.ctx.ApplyProfile(profile)
				d.ctx.Handler.Post(func() {
					d.status = "settings reloaded"
					d.refreshCaps()
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logrus.WithError(err).Warn("settings watcher error")
			}
		}
	})
	return nil
}

// ShowSettings implements input.Host. The demo has no settings UI; it points
// at the file the watcher reloads from
func (d *Demo) ShowSettings() {
	d.status = "edit " + d.profilePath + " to change settings"
	d.publish()
}

// SubtypeSwitched implements input.Host
func (d *Demo) SubtypeSwitched() {
	d.status = "switched to " + d.ctx.Subtypes.Current().Name
	d.logic.StartInput(d.pane.info())
	d.logic.OnUpdateSelection(d.pane.selStart, d.pane.selEnd)
	d.refreshCaps()
}

// === Handler-goroutine operations ===

func (d *Demo) processChain(chain event.Chain) {
	tr := d.logic.OnCodeInput(d.ctx.Settings(), chain)
	d.applyShiftUpdate(tr)
	d.publish()
}

func (d *Demo) processText(ev event.Event) {
	tr := d.logic.OnTextInput(d.ctx.Settings(), ev)
	d.applyShiftUpdate(tr)
	d.publish()
}

func (d *Demo) applyShiftUpdate(tr *input.Transaction) {
	switch tr.RequiredShiftUpdate() {
	case input.ShiftUpdateNow:
		d.refreshCaps()
	case input.ShiftUpdateLater:
		d.ctx.Handler.PostDelayed(shiftUpdateDelay, func() {
			d.refreshCaps()
			d.publish()
		})
	}
}

func (d *Demo) refreshCaps() {
	d.caps = d.logic.CurrentAutoCapsState(d.ctx.Settings(), d.ctx.Subtypes.Current().Layout)
}

func (d *Demo) moveCursor(chars int) {
	steps := d.logic.Connection().UnicodeSteps(chars, false)
	pos := d.pane.selStart + steps
	if chars > 0 {
		pos = d.pane.selEnd + steps
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(d.pane.buf) {
		pos = len(d.pane.buf)
	}
	d.pane.SetSelection(pos, pos)
	d.logic.OnUpdateSelection(pos, pos)
	d.refreshCaps()
	d.publish()
}

func (d *Demo) selectAll() {
	d.pane.SetSelection(0, len(d.pane.buf))
	d.logic.OnUpdateSelection(0, len(d.pane.buf))
	d.publish()
}

func (d *Demo) toggleAttach() {
	d.pane.setAttached(!d.pane.attached)
	if d.pane.attached {
		d.status = "editor reattached"
		d.logic.RetryResetCachesAndReturnSuccess(true, parameter.ResetCacheRetryCount)
	} else {
		d.status = "editor detached, keys go nowhere"
	}
	d.publish()
}

func (d *Demo) cycleAction() {
	d.pane.action = (d.pane.action + 1) % (editor.ActionPrevious + 1)
	d.pane.actionLabel = ""
	d.logic.StartInput(d.pane.info())
	d.status = fmt.Sprintf("enter now dispatches action %d", d.pane.action)
	d.publish()
}

// publish snapshots the pane and pushes it to the draw loop, replacing any
// frame not yet consumed
func (d *Demo) publish() {
	text, selStart, selEnd := d.pane.text()
	st := renderState{
		text:     text,
		selStart: selStart,
		selEnd:   selEnd,
		caps:     d.caps,
		subtype:  d.ctx.Subtypes.Current().Name,
		soundOn:  d.ctx.Settings().SoundOn,
		attached: d.pane.attached,
		action:   d.pane.action,
		status:   d.status,
	}
	select {
	case d.frames <- st:
	default:
		select {
		case <-d.frames:
		default:
		}
		d.frames <- st
	}
}

// === Draw loop (owns the screen) ===

func (d *Demo) run() {
	events := make(chan tcell.Event, 64)
	core.Go(func() {
		for {
			ev := d.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	})

	for {
		select {
		case ev := <-events:
			if !d.handleUIEvent(ev) {
				return
			}
		case st := <-d.frames:
			d.last = st
			d.draw()
		}
	}
}

func (d *Demo) handleUIEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		d.screen.Sync()
		d.draw()

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false

		case tcell.KeyRune:
			d.postKeypress(ev.Rune())

		case tcell.KeyEnter:
			d.postKeypress('\n')

		case tcell.KeyTab:
			d.postKeypress('\t')

		case tcell.KeyBackspace, tcell.KeyBackspace2:
			repeat := time.Since(d.lastBackspace) < backspaceRepeatWindow
			d.lastBackspace = time.Now()
			key := event.NewSoftwareKeypress(event.NotACodePoint, event.KeyDelete,
				event.NotACoordinate, event.NotACoordinate, repeat)
			d.ctx.Handler.Post(func() { d.processChain(event.Chain{key}) })

		case tcell.KeyLeft:
			d.ctx.Handler.Post(func() { d.moveCursor(-1) })
		case tcell.KeyRight:
			d.ctx.Handler.Post(func() { d.moveCursor(1) })

		case tcell.KeyCtrlA:
			d.ctx.Handler.Post(d.selectAll)

		case tcell.KeyF2:
			d.postFunctional(event.KeyLanguageSwitch)
		case tcell.KeyF3:
			text := event.NewSoftwareText(".com")
			d.ctx.Handler.Post(func() { d.processText(text) })
		case tcell.KeyF4:
			d.postFunctional(event.KeyShift)
		case tcell.KeyF5:
			d.ctx.Handler.Post(d.toggleAttach)
		case tcell.KeyF6:
			d.ctx.Handler.Post(d.cycleAction)
		case tcell.KeyF10:
			d.postFunctional(event.KeySettings)
		}
	}
	return true
}

func (d *Demo) postKeypress(cp rune) {
	key := event.NewSoftwareKeypress(cp, event.NotAKeyCode,
		event.NotACoordinate, event.NotACoordinate, false)
	d.ctx.Handler.Post(func() { d.processChain(event.Chain{key}) })
}

func (d *Demo) postFunctional(code event.KeyCode) {
	key := event.NewSoftwareKeypress(event.NotACodePoint, code,
		event.NotACoordinate, event.NotACoordinate, false)
	d.ctx.Handler.Post(func() { d.processChain(event.Chain{key}) })
}

func (d *Demo) draw() {
	d.screen.Clear()
	width, height := d.screen.Size()
	if width == 0 || height < 3 {
		d.screen.Show()
		return
	}

	textStyle := tcell.StyleDefault
	selStyle := tcell.StyleDefault.Reverse(true)
	cursorStyle := tcell.StyleDefault.Reverse(true).Foreground(tcell.ColorYellow)

	x, y := 0, 0
	runes := []rune(d.last.text)
	hasSelection := d.last.selStart != d.last.selEnd
	for i := 0; i <= len(runes) && y < height-2; i++ {
		// The cursor cell sits after the last rune when at end of text
		if i == len(runes) {
			if !hasSelection && i == d.last.selStart {
				d.screen.SetContent(x, y, ' ', nil, cursorStyle)
			}
			break
		}
		r := runes[i]
		if r == '\n' {
			if !hasSelection && i == d.last.selStart {
				d.screen.SetContent(x, y, ' ', nil, cursorStyle)
			}
			x, y = 0, y+1
			continue
		}
		w := runewidth.RuneWidth(r)
		if x+w > width {
			x, y = 0, y+1
			if y >= height-2 {
				break
			}
		}
		style := textStyle
		if hasSelection && i >= d.last.selStart && i < d.last.selEnd {
			style = selStyle
		} else if !hasSelection && i == d.last.selStart {
			style = cursorStyle
		}
		d.screen.SetContent(x, y, r, nil, style)
		x += w
	}

	d.drawStatus(width, height)
	d.screen.Show()
}

func (d *Demo) drawStatus(width, height int) {
	barStyle := tcell.StyleDefault.Reverse(true)

	sound := "sound off"
	if d.last.soundOn {
		sound = "sound on"
	}
	conn := "attached"
	if !d.last.attached {
		conn = "DETACHED"
	}
	bar := fmt.Sprintf(" %s | %s | %s | %s | %s",
		d.last.subtype, capsLabel(d.last.caps), sound, conn, d.last.status)
	drawLine(d.screen, 0, height-2, width, bar, barStyle)

	help := " F2 language  F3 .com  F4 recapitalize  F5 detach  F6 action  F10 settings  ^A select all  Esc quit"
	drawLine(d.screen, 0, height-1, width, help, tcell.StyleDefault.Dim(true))
}

func drawLine(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= width {
			return
		}
		s.SetContent(col, y, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
	for ; col < width; col++ {
		s.SetContent(col, y, ' ', nil, style)
	}
}

// capsLabel renders the auto-caps state the way a keyboard's shift key would
// show it
func capsLabel(m editor.CapMode) string {
	if m&(editor.CapModeSentences|editor.CapModeWords) != 0 {
		return "Abc"
	}
	if m == editor.CapModeOff {
		return "abc (off)"
	}
	return "abc"
}

func (d *Demo) cleanup() {
	if d.watcher != nil {
		d.watcher.Close()
	}
	if d.audioInit {
		speaker.Close()
	}
	d.ctx.Destroy()
	d.screen.Fini()
}

func defaultProfilePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "softkey", "softkey.toml")
	}
	return "softkey.toml"
}

func main() {
	profilePath := flag.String("profile", defaultProfilePath(), "settings profile (TOML)")
	logPath := flag.String("log", "", "diagnostics log file (default discard)")
	flag.Parse()

	// The screen owns the terminal; diagnostics must not scribble over it
	logrus.SetOutput(io.Discard)
	if *logPath != "" {
		if f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			logrus.SetOutput(f)
		}
	}

	demo, err := NewDemo(*profilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer demo.cleanup()
	defer func() {
		if r := recover(); r != nil {
			demo.screen.Fini()
			core.HandleCrash(r)
		}
	}()

	demo.run()
}
