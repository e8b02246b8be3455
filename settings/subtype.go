package settings

import "golang.org/x/text/language"

// Subtype is one enabled language+layout pair
type Subtype struct {
	Name   string
	Locale language.Tag
	Layout string
}

// SubtypeManager tracks the enabled subtypes and the current selection.
// Owned by the session context; not safe for concurrent mutation, which
// matches the single handler-goroutine ownership model
type SubtypeManager struct {
	enabled []Subtype
	index   int
}

// NewSubtypeManager builds the manager from the profile's subtype catalog.
// An empty catalog falls back to a single en-US qwerty subtype
func NewSubtypeManager(p *Profile) *SubtypeManager {
	m := &SubtypeManager{}
	for _, sc := range p.Subtypes {
		loc, err := language.Parse(sc.Locale)
		if err != nil {
			continue
		}
		m.enabled = append(m.enabled, Subtype{Name: sc.Name, Locale: loc, Layout: sc.Layout})
	}
	if len(m.enabled) == 0 {
		m.enabled = []Subtype{{Name: "English (US)", Locale: language.AmericanEnglish, Layout: "qwerty"}}
	}
	return m
}

// Current returns the active subtype
func (m *SubtypeManager) Current() Subtype {
	return m.enabled[m.index]
}

// Next advances to the next enabled subtype, wrapping, and returns it
func (m *SubtypeManager) Next() Subtype {
	m.index = (m.index + 1) % len(m.enabled)
	return m.enabled[m.index]
}

// HasMultiple reports whether a language switch key is meaningful
func (m *SubtypeManager) HasMultiple() bool {
	return len(m.enabled) > 1
}

// Count returns the number of enabled subtypes
func (m *SubtypeManager) Count() int {
	return len(m.enabled)
}
