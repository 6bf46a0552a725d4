package content

import (
	"fmt"
	"strings"
)

// Section identifies one independently addressable content document.
type Section string

const (
	SectionHero      Section = "hero"
	SectionPortfolio Section = "portfolio"
	SectionContact   Section = "contact"
)

// Sections returns the closed set of sections in render order.
func Sections() []Section {
	return []Section{SectionHero, SectionPortfolio, SectionContact}
}

// ParseSection maps raw input onto a known section, returning
// ErrUnknownSection for anything outside the closed set.
func ParseSection(raw string) (Section, error) {
	section := Section(strings.ToLower(strings.TrimSpace(raw)))
	if !section.Valid() {
		return "", fmt.Errorf("%w: %q (must be hero, portfolio, or contact)", ErrUnknownSection, raw)
	}
	return section, nil
}

// Valid reports whether s belongs to the closed set.
func (s Section) Valid() bool {
	switch s {
	case SectionHero, SectionPortfolio, SectionContact:
		return true
	default:
		return false
	}
}

// StorageKey is the key used by key-value tiers.
func (s Section) StorageKey() string {
	return "content:" + string(s)
}

// FileName is the document name used by file tiers.
func (s Section) FileName() string {
	return string(s) + ".json"
}

func (s Section) String() string {
	return string(s)
}
