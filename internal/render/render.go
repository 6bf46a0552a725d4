// Package render turns resolved site content into the public home page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	content "github.com/goliatone/go-content"
)

//go:embed templates/*.html
var templateFS embed.FS

// WhatsApp describes the floating chat button. It is hidden without a phone.
type WhatsApp struct {
	Phone   string
	Message string
}

// URL returns the click-to-chat link.
func (w WhatsApp) URL() string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, w.Phone)
	if digits == "" {
		return ""
	}
	link := "https://wa.me/" + digits
	if w.Message != "" {
		link += "?text=" + url.QueryEscape(w.Message)
	}
	return link
}

// Page is the data passed to the home template.
type Page struct {
	Site     content.SiteContent
	WhatsApp WhatsApp
}

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl *template.Template
	md   goldmark.Markdown
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
	}
	tmpl, err := template.New("home.html").Funcs(template.FuncMap{
		"markdown": r.markdown,
		"lines":    lines,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

// Home writes the landing page for page.
func (r *Renderer) Home(w io.Writer, page Page) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "home.html", page); err != nil {
		return fmt.Errorf("render: home: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// markdown renders editor-written descriptions. Raw HTML in the source is
// dropped by goldmark's default renderer.
func (r *Renderer) markdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// lines splits multi-line titles so templates can insert breaks.
func lines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
