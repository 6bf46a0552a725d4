package content

// Document is the tagged union over the three section shapes. Only the types
// declared in this package implement it.
type Document interface {
	Section() Section
	Validate() error
	isDocument()
}

// HeroContent is the landing hero block. Title may embed line breaks.
// Optional lists use omitzero so an empty list survives a round trip.
type HeroContent struct {
	Title    string   `json:"title" yaml:"title"`
	Subtitle string   `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	CTAText  string   `json:"ctaText" yaml:"ctaText"`
	CTALink  string   `json:"ctaLink" yaml:"ctaLink"`
	Images   []string `json:"images,omitzero" yaml:"images,omitempty"`
}

// PortfolioItem is one entry of the portfolio grid.
type PortfolioItem struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Image       string   `json:"image" yaml:"image"`
	Link        string   `json:"link,omitempty" yaml:"link,omitempty"`
	Tags        []string `json:"tags,omitzero" yaml:"tags,omitempty"`
}

// PortfolioContent is the portfolio section. Items is required; an empty
// list is valid, a missing one is not.
type PortfolioContent struct {
	Title    string          `json:"title" yaml:"title"`
	Subtitle string          `json:"subtitle" yaml:"subtitle"`
	Items    []PortfolioItem `json:"items" yaml:"items"`
}

// ContactContent is the contact call-out.
type ContactContent struct {
	Title     string `json:"title" yaml:"title"`
	Subtitle  string `json:"subtitle" yaml:"subtitle"`
	Email     string `json:"email" yaml:"email"`
	Instagram string `json:"instagram,omitempty" yaml:"instagram,omitempty"`
}

// SiteContent bundles every section, as rendered on the home page.
type SiteContent struct {
	Hero      HeroContent      `json:"hero" yaml:"hero"`
	Portfolio PortfolioContent `json:"portfolio" yaml:"portfolio"`
	Contact   ContactContent   `json:"contact" yaml:"contact"`
}

func (HeroContent) Section() Section      { return SectionHero }
func (PortfolioContent) Section() Section { return SectionPortfolio }
func (ContactContent) Section() Section   { return SectionContact }

func (HeroContent) isDocument()      {}
func (PortfolioContent) isDocument() {}
func (ContactContent) isDocument()   {}

// Document returns the section document stored in the bundle.
func (s SiteContent) Document(section Section) (Document, bool) {
	switch section {
	case SectionHero:
		return s.Hero, true
	case SectionPortfolio:
		return s.Portfolio, true
	case SectionContact:
		return s.Contact, true
	default:
		return nil, false
	}
}

// Set places doc into the matching slot of the bundle.
func (s *SiteContent) Set(doc Document) {
	switch typed := doc.(type) {
	case HeroContent:
		s.Hero = typed
	case *HeroContent:
		s.Hero = *typed
	case PortfolioContent:
		s.Portfolio = typed
	case *PortfolioContent:
		s.Portfolio = *typed
	case ContactContent:
		s.Contact = typed
	case *ContactContent:
		s.Contact = *typed
	}
}
