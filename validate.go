package content

import (
	"fmt"
	"strings"
)

// Validate checks the minimum required fields of the hero section.
func (h HeroContent) Validate() error {
	switch {
	case blank(h.Title):
		return invalid(SectionHero, "title", "is required")
	case blank(h.CTAText):
		return invalid(SectionHero, "ctaText", "is required")
	case blank(h.CTALink):
		return invalid(SectionHero, "ctaLink", "is required")
	}
	for i, image := range h.Images {
		if blank(image) {
			return invalid(SectionHero, fmt.Sprintf("images[%d]", i), "must not be empty")
		}
	}
	return nil
}

// Validate checks the portfolio header and item ids. Blank ids are tolerated;
// non-blank ids must be unique within the list.
func (p PortfolioContent) Validate() error {
	switch {
	case blank(p.Title):
		return invalid(SectionPortfolio, "title", "is required")
	case blank(p.Subtitle):
		return invalid(SectionPortfolio, "subtitle", "is required")
	case p.Items == nil:
		return invalid(SectionPortfolio, "items", "must be a list")
	}
	seen := make(map[string]int, len(p.Items))
	for i, item := range p.Items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			continue
		}
		if first, dup := seen[id]; dup {
			return invalid(SectionPortfolio, fmt.Sprintf("items[%d].id", i),
				fmt.Sprintf("duplicates items[%d].id %q", first, id))
		}
		seen[id] = i
	}
	return nil
}

// Validate checks the minimum required fields of the contact section.
func (c ContactContent) Validate() error {
	switch {
	case blank(c.Title):
		return invalid(SectionContact, "title", "is required")
	case blank(c.Subtitle):
		return invalid(SectionContact, "subtitle", "is required")
	case blank(c.Email):
		return invalid(SectionContact, "email", "is required")
	}
	return nil
}

// Validate runs the section validator, rejecting nil documents and
// documents addressed to a different section.
func Validate(section Section, doc Document) error {
	if !section.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	doc = normalizeDocument(doc)
	if doc == nil {
		return invalid(section, "", "data is required")
	}
	if doc.Section() != section {
		return invalid(section, "", fmt.Sprintf("got %s document", doc.Section()))
	}
	return doc.Validate()
}

// normalizeDocument dereferences pointer documents so tiers always see value
// types.
func normalizeDocument(doc Document) Document {
	switch typed := doc.(type) {
	case *HeroContent:
		if typed == nil {
			return nil
		}
		return *typed
	case *PortfolioContent:
		if typed == nil {
			return nil
		}
		return *typed
	case *ContactContent:
		if typed == nil {
			return nil
		}
		return *typed
	default:
		return doc
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
