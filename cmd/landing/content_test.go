package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	content "github.com/goliatone/go-content"
)

func TestParseBundleSplitsSections(t *testing.T) {
	raw := []byte(`
hero:
  title: Hello
  subtitle: World
contact:
  description: Write to us
`)
	bundle, err := parseBundle(raw)
	require.NoError(t, err)
	require.Len(t, bundle, 2)

	var hero map[string]any
	require.NoError(t, json.Unmarshal(bundle[content.SectionHero], &hero))
	assert.Equal(t, "Hello", hero["title"])
	assert.NotContains(t, bundle, content.SectionPortfolio)
}

func TestParseBundleRejectsUnknownSection(t *testing.T) {
	_, err := parseBundle([]byte("footer:\n  text: nope\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, content.ErrUnknownSection)
}

func TestHashPasswordReadsStdin(t *testing.T) {
	cmd := newHashPasswordCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader("s3cret\n"))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--cost", "4"})
	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "$2"))
}
