package input

import (
	"testing"

	"golang.org/x/text/language"
)

func startedRecapitalizer(text string) *Recapitalizer {
	r := NewRecapitalizer()
	r.Enable()
	r.Start(0, len([]rune(text)), text, language.AmericanEnglish)
	return r
}

func TestRotateFromMixedCase(t *testing.T) {
	r := startedRecapitalizer("Hello World")

	want := []string{"hello world", "Hello world", "HELLO WORLD", "Hello World"}
	for i, w := range want {
		r.Rotate()
		if got := r.CurrentString(); got != w {
			t.Fatalf("rotation %d = %q, want %q", i+1, got, w)
		}
	}
}

func TestRotateSkipsOriginalBucketForUniformOrigin(t *testing.T) {
	// "ABC" already looks all-upper; the original-mixed-case bucket would be
	// indistinguishable from a valid terminal state and must be skipped
	r := startedRecapitalizer("ABC")

	r.Rotate()
	if got := r.CurrentString(); got != "abc" {
		t.Errorf("first rotation from all-upper = %q, want %q", got, "abc")
	}
	r.Rotate()
	if got := r.CurrentString(); got != "Abc" {
		t.Errorf("second rotation = %q, want %q", got, "Abc")
	}
	r.Rotate()
	if got := r.CurrentString(); got != "ABC" {
		t.Errorf("third rotation = %q, want %q", got, "ABC")
	}
}

func TestRotateNeverLoopsOnCaselessText(t *testing.T) {
	r := startedRecapitalizer("1234")
	r.Rotate() // all transforms are identical; must terminate
	if got := r.CurrentString(); got != "1234" {
		t.Errorf("caseless rotation changed the text to %q", got)
	}
}

func TestRotateUpdatesCursorEnd(t *testing.T) {
	r := NewRecapitalizer()
	r.Enable()
	r.Start(3, 8, "hello", language.AmericanEnglish)
	r.Rotate()
	if r.NewCursorStart() != 3 {
		t.Errorf("cursor start moved to %d", r.NewCursorStart())
	}
	if r.NewCursorEnd() != 3+len("HELLO") {
		t.Errorf("cursor end = %d, want %d", r.NewCursorEnd(), 3+len("HELLO"))
	}
}

func TestStartRequiresEnable(t *testing.T) {
	r := NewRecapitalizer()
	r.Start(0, 5, "hello", language.AmericanEnglish)
	if r.IsStarted() {
		t.Error("disabled recapitalizer accepted a start")
	}
}

func TestDisableStopsCycle(t *testing.T) {
	r := startedRecapitalizer("hello")
	if !r.IsStarted() {
		t.Fatal("cycle did not start")
	}
	r.Disable()
	if r.IsStarted() || r.IsEnabled() {
		t.Error("disable must stop the cycle and close the gate")
	}
}

func TestIsSetAtTracksRotatedBounds(t *testing.T) {
	r := startedRecapitalizer("hello")
	if !r.IsSetAt(0, 5) {
		t.Fatal("fresh cycle should match its own bounds")
	}
	if r.IsSetAt(0, 4) {
		t.Error("different bounds must not match")
	}
}
