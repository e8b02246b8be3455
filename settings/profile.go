package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
)

// Profile is the on-disk settings document. Values absent from the file keep
// their defaults
type Profile struct {
	AutoCap             bool    `toml:"auto_cap"`
	SoundOn             bool    `toml:"sound_on"`
	VibrateOn           bool    `toml:"vibrate_on"`
	KeypressSoundVolume float64 `toml:"keypress_sound_volume"`

	WordSeparators      string `toml:"word_separators"`
	SentenceTerminators string `toml:"sentence_terminators"`

	Subtypes []SubtypeConfig `toml:"subtype"`
}

// SubtypeConfig declares one enabled language+layout pair
type SubtypeConfig struct {
	Name   string `toml:"name"`
	Locale string `toml:"locale"`
	Layout string `toml:"layout"`
}

// DefaultProfile returns the built-in configuration
func DefaultProfile() *Profile {
	return &Profile{
		AutoCap:             true,
		SoundOn:             false,
		VibrateOn:           false,
		KeypressSoundVolume: 0.5,
		WordSeparators:      DefaultWordSeparators,
		SentenceTerminators: DefaultSentenceTerminators,
		Subtypes: []SubtypeConfig{
			{Name: "English (US)", Locale: "en-US", Layout: "qwerty"},
		},
	}
}

// LoadProfile reads a TOML profile, overlaying the file on top of defaults.
// A missing file is not an error: the defaults are returned
func LoadProfile(path string) (*Profile, error) {
	p := DefaultProfile()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return p, nil
	}
	if _, err := toml.DecodeFile(path, p); err != nil {
		return nil, fmt.Errorf("decode settings profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings profile %s: %w", path, err)
	}
	return p, nil
}

// Validate checks cross-field constraints the TOML decoder cannot express
func (p *Profile) Validate() error {
	if p.KeypressSoundVolume < 0 || p.KeypressSoundVolume > 1 {
		return fmt.Errorf("keypress_sound_volume %f outside [0, 1]", p.KeypressSoundVolume)
	}
	if !strings.ContainsRune(p.WordSeparators, ' ') {
		return fmt.Errorf("word_separators must include the space character")
	}
	for i, sc := range p.Subtypes {
		if _, err := language.Parse(sc.Locale); err != nil {
			return fmt.Errorf("subtype %d: bad locale %q: %w", i, sc.Locale, err)
		}
		if sc.Layout == "" {
			return fmt.Errorf("subtype %d: empty layout", i)
		}
	}
	return nil
}
