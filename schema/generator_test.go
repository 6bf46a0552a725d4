package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	content "github.com/goliatone/go-content"
)

func TestForPortfolio(t *testing.T) {
	doc, err := For(content.SectionPortfolio)
	require.NoError(t, err)

	assert.Equal(t, Draft, doc["$schema"])
	assert.Equal(t, "portfolio", doc["title"])
	assert.Equal(t, []string{"items", "subtitle", "title"}, doc["required"])

	props := doc["properties"].(map[string]any)
	items := props["items"].(map[string]any)
	assert.Equal(t, "array", items["type"])

	item := items["items"].(map[string]any)
	assert.Equal(t, []string{"description", "id", "image", "title"}, item["required"])
	tags := item["properties"].(map[string]any)["tags"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string"}, tags["items"])
}

func TestForHeroRequiredFields(t *testing.T) {
	doc, err := For(content.SectionHero)
	require.NoError(t, err)
	assert.Equal(t, []string{"ctaLink", "ctaText", "title"}, doc["required"])
}

func TestForUnknownSection(t *testing.T) {
	_, err := For(content.Section("footer"))
	assert.True(t, errors.Is(err, content.ErrUnknownSection))
}

func TestAllIsJSONSerialisable(t *testing.T) {
	all, err := All()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	raw, err := json.Marshal(all)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"instagram":{"type":"string"}`)
}

func TestGenerateScalarsAndMaps(t *testing.T) {
	type sample struct {
		Count  int               `json:"count"`
		Ratio  float64           `json:"ratio,omitempty"`
		Labels map[string]string `json:"labels,omitempty"`
		Raw    []byte            `json:"raw,omitempty"`
		hidden string
		Skip   string `json:"-"`
	}
	doc, err := Generate(sample{})
	require.NoError(t, err)

	props := doc["properties"].(map[string]any)
	assert.Len(t, props, 4)
	assert.Equal(t, map[string]any{"type": "integer"}, props["count"])
	assert.Equal(t, map[string]any{"type": "number"}, props["ratio"])
	assert.Equal(t, map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "string"}}, props["labels"])
	assert.Equal(t, []string{"count"}, doc["required"])

	_, err = Generate(map[int]string{})
	assert.Error(t, err)
}
