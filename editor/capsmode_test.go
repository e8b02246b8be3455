package editor

import (
	"testing"

	"github.com/lixenwraith/softkey/settings"
)

func testSpacing() settings.SpacingAndPunctuations {
	return settings.NewSpacingAndPunctuations(
		settings.DefaultWordSeparators,
		settings.DefaultSentenceTerminators,
		'.', '.', true, false)
}

func germanSpacing() settings.SpacingAndPunctuations {
	return settings.NewSpacingAndPunctuations(
		settings.DefaultWordSeparators,
		settings.DefaultSentenceTerminators,
		'.', '.', false, true)
}

const allModes = CapModeCharacters | CapModeWords | CapModeSentences

func modeFor(t *testing.T, text string, sp settings.SpacingAndPunctuations) CapMode {
	t.Helper()
	return CapsModeForText([]rune(text), allModes, &sp, false)
}

func TestCapsModeStartOfText(t *testing.T) {
	if got := modeFor(t, "", testSpacing()); got != allModes {
		t.Errorf("empty text caps mode = %v, want all modes", got)
	}
}

func TestCapsModeMidWord(t *testing.T) {
	if got := modeFor(t, "Hel", testSpacing()); got != CapModeCharacters {
		t.Errorf("mid-word caps mode = %v, want characters only", got)
	}
}

func TestCapsModeAfterWord(t *testing.T) {
	got := modeFor(t, "Hello ", testSpacing())
	if got != CapModeCharacters|CapModeWords {
		t.Errorf("after word caps mode = %v, want characters|words", got)
	}
}

func TestCapsModeAfterSentence(t *testing.T) {
	for _, text := range []string{"Done. ", "Done! ", "Done? ", "Line one\n"} {
		if got := modeFor(t, text, testSpacing()); got != allModes {
			t.Errorf("%q caps mode = %v, want all modes", text, got)
		}
	}
}

func TestCapsModeAbbreviationIsNotSentenceEnd(t *testing.T) {
	got := modeFor(t, "e.g. ", testSpacing())
	if got&CapModeSentences != 0 {
		t.Errorf("abbreviation %q reported a sentence end: %v", "e.g. ", got)
	}
	if got&CapModeWords == 0 {
		t.Errorf("abbreviation should still start a word: %v", got)
	}
}

func TestCapsModeAmericanQuotedSentence(t *testing.T) {
	got := modeFor(t, `He said "stop." `, testSpacing())
	if got&CapModeSentences == 0 {
		t.Errorf("period inside closing quote should end the sentence: %v", got)
	}
}

func TestCapsModeGermanOrdinal(t *testing.T) {
	got := modeFor(t, "3. ", germanSpacing())
	if got&CapModeSentences != 0 {
		t.Errorf("German ordinal period reported a sentence end: %v", got)
	}
}

func TestCapsModeRespectsRequestedModes(t *testing.T) {
	sp := testSpacing()
	got := CapsModeForText([]rune("Done. "), CapModeWords, &sp, false)
	if got != CapModeWords {
		t.Errorf("restricted request = %v, want words only", got)
	}
	if CapsModeForText([]rune("anything"), CapModeOff, &sp, false) != CapModeOff {
		t.Error("no requested modes must yield off")
	}
}

func TestCapsModeHasSpaceBefore(t *testing.T) {
	// The caller is about to insert a space that the cache doesn't hold yet
	sp := testSpacing()
	got := CapsModeForText([]rune("Done."), allModes, &sp, true)
	if got&CapModeSentences == 0 {
		t.Errorf("pending space after terminator = %v, want sentence start", got)
	}
}
