package editor

import (
	"unicode"

	"github.com/lixenwraith/softkey/settings"
)

// CapsModeForText computes which of the requested capitalization modes apply
// at a cursor placed just after text. Pure function of the given text: no
// editor round trip happens here.
//
// The interesting case is the sentence separator. A period ends a sentence in
// "Done. " but not in "e.g. "; the distinction is whether the token before
// the period contains an embedded abbreviation marker. German additionally
// treats a period after a digit as an ordinal marker ("3. Oktober")
func CapsModeForText(text []rune, req CapMode, sp *settings.SpacingAndPunctuations, hasSpaceBefore bool) CapMode {
	if req&(CapModeCharacters|CapModeWords|CapModeSentences) == 0 {
		return CapModeOff
	}

	// Step back over closing quotes and other end punctuation so that
	// `He said "stop." ` is still recognized as a sentence end
	i := len(text)
	if !hasSpaceBefore {
		for i > 0 {
			c := text[i-1]
			if c != '"' && c != '\'' && !unicode.Is(unicode.Pe, c) && !unicode.Is(unicode.Pf, c) {
				break
			}
			i--
		}
	}

	// Count the whitespace run before the cursor; a newline anywhere in it
	// starts a new paragraph and therefore a new sentence
	j := i
	sawNewline := false
	for j > 0 {
		c := text[j-1]
		if c != ' ' && c != '\t' && c != '\n' {
			break
		}
		if c == '\n' {
			sawNewline = true
		}
		j--
	}

	if j == 0 {
		// Start of text capitalizes like a sentence start
		return (CapModeCharacters | CapModeWords | CapModeSentences) & req
	}

	if i == j && !hasSpaceBefore {
		// The cursor touches a non-space character: mid-word
		return CapModeCharacters & req
	}

	if sawNewline {
		return (CapModeCharacters | CapModeWords | CapModeSentences) & req
	}

	if req&CapModeSentences == 0 {
		return (CapModeCharacters | CapModeWords) & req
	}

	// American typography keeps the sentence-ending period inside a closing
	// double quote: `word." ` still ends the sentence
	if sp.UsesAmericanTypography && j > 0 && text[j-1] == '"' {
		j--
	}
	if j == 0 {
		return (CapModeCharacters | CapModeWords) & req
	}

	c := text[j-1]
	if sp.IsSentenceTerminator(c) {
		return (CapModeCharacters | CapModeWords | CapModeSentences) & req
	}
	if !sp.IsSentenceSeparator(c) {
		return (CapModeCharacters | CapModeWords) & req
	}

	// Ambiguous period. Scan the token before it
	k := j - 1
	if sp.UsesGermanRules && k > 0 && unicode.IsDigit(text[k-1]) {
		// Ordinal number, not a sentence end
		return (CapModeCharacters | CapModeWords) & req
	}
	for k--; k >= 0; k-- {
		c := text[k]
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			continue
		}
		if sp.IsAbbreviationMarker(c) {
			// Embedded marker: "e.g." style abbreviation
			return (CapModeCharacters | CapModeWords) & req
		}
		break
	}
	return (CapModeCharacters | CapModeWords | CapModeSentences) & req
}
