package content

// DefaultSite returns the built-in copy served when no tier holds a section.
// A fresh value is built on every call so callers may mutate it freely.
func DefaultSite() SiteContent {
	return SiteContent{
		Hero: HeroContent{
			Title:   "Where\nElegance Moves\nin constant motion.",
			CTAText: "Request access",
			CTALink: "#contact",
			Images: []string{
				"/video-hero-1.mp4",
				"/video-hero-2.mp4",
			},
		},
		Portfolio: PortfolioContent{
			Title:    "MOVEMENT is THE LANGUAGE,\nMEANING is our DESTINATION.",
			Subtitle: "Elegance is not static. It moves.",
			Items: []PortfolioItem{
				placeholderItem("1", "Web", "Design"),
				placeholderItem("2", "Mobile", "App"),
				placeholderItem("3", "Branding", "Identity"),
				placeholderItem("4", "Luxury", "Fashion"),
				placeholderItem("5", "Lifestyle", "Editorial"),
				placeholderItem("6", "Art", "Culture"),
			},
		},
		Contact: ContactContent{
			Title:     "Request access",
			Subtitle:  "We work with a limited number of brands.\nIf our vision resonates, write to us.",
			Email:     "hello@themovingsociety.com",
			Instagram: "https://instagram.com",
		},
	}
}

// Default returns the built-in document for section, or nil when the section
// is unknown.
func Default(section Section) Document {
	doc, ok := DefaultSite().Document(section)
	if !ok {
		return nil
	}
	return doc
}

func placeholderItem(id string, tags ...string) PortfolioItem {
	return PortfolioItem{
		ID:          id,
		Title:       "Proyecto " + id,
		Description: "Descripción del proyecto " + id,
		Image:       "/placeholder-project.jpg",
		Tags:        tags,
	}
}
