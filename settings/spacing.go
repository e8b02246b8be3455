package settings

import "sort"

// SpacingAndPunctuations classifies code points for word and sentence
// boundaries. Built once per settings snapshot, read-only afterwards
type SpacingAndPunctuations struct {
	sortedWordSeparators      []rune
	sortedSentenceTerminators []rune

	// SentenceSeparator is the period-like character that may end a sentence
	// or mark an abbreviation
	SentenceSeparator rune

	// AbbreviationMarker marks abbreviations ("e.g.") when embedded in a word
	AbbreviationMarker rune

	// UsesAmericanTypography places sentence-ending periods inside closing
	// double quotes
	UsesAmericanTypography bool

	// UsesGermanRules treats a period after a digit as an ordinal marker,
	// not a sentence end
	UsesGermanRules bool
}

// NewSpacingAndPunctuations builds the lookup tables from raw separator sets
func NewSpacingAndPunctuations(wordSeparators, sentenceTerminators string,
	sentenceSeparator, abbreviationMarker rune, american, german bool) SpacingAndPunctuations {

	sp := SpacingAndPunctuations{
		sortedWordSeparators:      sortedRunes(wordSeparators),
		sortedSentenceTerminators: sortedRunes(sentenceTerminators),
		SentenceSeparator:         sentenceSeparator,
		AbbreviationMarker:        abbreviationMarker,
		UsesAmericanTypography:    american,
		UsesGermanRules:           german,
	}
	return sp
}

func sortedRunes(s string) []rune {
	rs := []rune(s)
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
	return rs
}

func containsRune(sorted []rune, r rune) bool {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= r })
	return i < len(sorted) && sorted[i] == r
}

// IsWordSeparator reports whether r separates words
func (sp *SpacingAndPunctuations) IsWordSeparator(r rune) bool {
	return containsRune(sp.sortedWordSeparators, r)
}

// IsSentenceTerminator reports whether r ends a sentence unconditionally
// (e.g. '!' and '?'; the sentence separator needs abbreviation analysis)
func (sp *SpacingAndPunctuations) IsSentenceTerminator(r rune) bool {
	return containsRune(sp.sortedSentenceTerminators, r)
}

// IsSentenceSeparator reports whether r is the ambiguous period-like separator
func (sp *SpacingAndPunctuations) IsSentenceSeparator(r rune) bool {
	return r == sp.SentenceSeparator
}

// IsAbbreviationMarker reports whether r marks an abbreviation inside a word
func (sp *SpacingAndPunctuations) IsAbbreviationMarker(r rune) bool {
	return r == sp.AbbreviationMarker
}
