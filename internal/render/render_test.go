package render

import (
	"bytes"
	"html"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	content "github.com/goliatone/go-content"
)

func TestHomeRendersDefaults(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Home(&buf, Page{Site: content.DefaultSite()}))
	out := buf.String()

	assert.Contains(t, out, "<h1>Where<br>Elegance Moves<br>in constant motion.</h1>")
	assert.Contains(t, out, `href="#contact"`)
	assert.Contains(t, out, `id="item-6"`)
	assert.Contains(t, out, "mailto:hello@themovingsociety.com")
	assert.NotContains(t, out, "wa.me")
}

func TestHomeEscapesAndRendersMarkdown(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	site := content.DefaultSite()
	site.Hero.Title = "<script>alert(1)</script>"
	site.Portfolio.Items = []content.PortfolioItem{{
		ID:          "a",
		Title:       "Alpha",
		Description: "**bold** text <b>raw</b>",
		Image:       "/a.jpg",
	}}

	var buf bytes.Buffer
	require.NoError(t, r.Home(&buf, Page{Site: site, WhatsApp: WhatsApp{Phone: "+34 600 000 000", Message: "Hi there"}}))
	out := buf.String()

	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<b>raw</b>")
	assert.Equal(t, "https://wa.me/34600000000?text=Hi+there", whatsAppHref(t, out))
}

var whatsAppLink = regexp.MustCompile(`<a class="whatsapp" href="([^"]*)"`)

// whatsAppHref returns the decoded href of the WhatsApp link. The template
// escapes attribute values, so "+" arrives as "&#43;".
func whatsAppHref(t *testing.T, out string) string {
	t.Helper()
	m := whatsAppLink.FindStringSubmatch(out)
	require.Len(t, m, 2, "whatsapp link not rendered")
	return html.UnescapeString(m[1])
}

func TestWhatsAppURL(t *testing.T) {
	assert.Equal(t, "", WhatsApp{}.URL())
	assert.Equal(t, "", WhatsApp{Phone: "n/a"}.URL())
	assert.Equal(t, "https://wa.me/15551234", WhatsApp{Phone: "+1 (555) 1234"}.URL())
	assert.Equal(t, "https://wa.me/1?text=Hello%2C+world", WhatsApp{Phone: "1", Message: "Hello, world"}.URL())
}
