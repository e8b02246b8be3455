package settings

import "golang.org/x/text/language"

// Snapshot is the immutable per-session view of user settings consumed by the
// input engine. A new snapshot is taken on every settings change or subtype
// switch; in-flight transactions keep the snapshot they were opened with
type Snapshot struct {
	AutoCap             bool
	SoundOn             bool
	VibrateOn           bool
	KeypressSoundVolume float64

	Locale  language.Tag
	Spacing SpacingAndPunctuations
}

// Default word separator and sentence terminator sets for Latin-script locales
const (
	DefaultWordSeparators      = " \t\n\"'.,;:!?()[]{}&*+=<>|/\\_~@#%^-"
	DefaultSentenceTerminators = "!?"
)

// NewSnapshot builds a snapshot for the given locale with the profile's
// feature toggles applied
func NewSnapshot(p *Profile, loc language.Tag) *Snapshot {
	base, _ := loc.Base()
	lang := base.String()
	return &Snapshot{
		AutoCap:             p.AutoCap,
		SoundOn:             p.SoundOn,
		VibrateOn:           p.VibrateOn,
		KeypressSoundVolume: p.KeypressSoundVolume,
		Locale:              loc,
		Spacing: NewSpacingAndPunctuations(
			p.WordSeparators,
			p.SentenceTerminators,
			'.',
			'.',
			lang == "en",
			lang == "de",
		),
	}
}
