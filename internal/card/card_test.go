package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FrontMatter(t *testing.T) {
	raw := []byte(`---
language: en
license: apache-2.0
tags:
  - token-classification
  - named-entity-recognition
  - pii
entity_labels:
  - NAME
  - SSN
  - MRN
  - ADDRESS
model-index:
  - name: piisec/pii-ner-en
    results: []
---

# Title

Body text.
`)

	c, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"en"}, c.Language)
	assert.Equal(t, "apache-2.0", c.License)
	assert.Equal(t, "piisec/pii-ner-en", c.ModelID)
	assert.Equal(t, []string{"NAME", "SSN", "MRN", "ADDRESS"}, c.EntityLabels)
	require.Len(t, c.ModelIndex, 1)
	assert.Empty(t, c.ModelIndex[0].Results, "documented results table is named but empty")
	assert.Contains(t, c.Body, "# Title")
}

func TestParse_LanguageList(t *testing.T) {
	c, err := Parse([]byte("---\nlanguage:\n  - en\n  - de\n---\nbody"))
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "de"}, c.Language)
}

func TestParse_NoFrontMatter(t *testing.T) {
	c, err := Parse([]byte("# Just markdown\n"))
	require.NoError(t, err)
	assert.Empty(t, c.License)
	assert.Equal(t, "# Just markdown\n", c.Body)
}

func TestParse_UnterminatedFrontMatter(t *testing.T) {
	_, err := Parse([]byte("---\nlicense: apache-2.0\n"))
	require.Error(t, err)
}

func TestParse_FenceMustBeExactLine(t *testing.T) {
	// A line that merely starts with "---" belongs to the front matter; only
	// a line equal to the fence closes it.
	raw := []byte("---\nlicense: apache-2.0\n----: dashes\n---\nbody\n")

	c, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "apache-2.0", c.License)
	assert.Equal(t, "body\n", c.Body)

	// Without a real closing fence, a longer dash line does not terminate.
	_, err = Parse([]byte("---\nlicense: apache-2.0\n----: dashes\n"))
	require.Error(t, err)
}

func TestParse_FenceOnFinalLine(t *testing.T) {
	c, err := Parse([]byte("---\nlicense: apache-2.0\n---"))
	require.NoError(t, err)
	assert.Equal(t, "apache-2.0", c.License)
	assert.Empty(t, c.Body)
}

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, DefaultModelID, c.ModelID)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Card)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Card) {},
		},
		{
			name:    "wrong language",
			mutate:  func(c *Card) { c.Language = []string{"de"} },
			wantErr: "language",
		},
		{
			name:    "wrong license",
			mutate:  func(c *Card) { c.License = "mit" },
			wantErr: "license",
		},
		{
			name:    "missing tag",
			mutate:  func(c *Card) { c.Tags = []string{"token-classification"} },
			wantErr: "missing tag",
		},
		{
			name:    "missing label",
			mutate:  func(c *Card) { c.EntityLabels = []string{"NAME", "SSN", "MRN"} },
			wantErr: "entity labels",
		},
		{
			name:    "label order",
			mutate:  func(c *Card) { c.EntityLabels = []string{"SSN", "NAME", "MRN", "ADDRESS"} },
			wantErr: "entity label",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRender_RoundTrip(t *testing.T) {
	orig := Default()

	raw, err := orig.Render()
	require.NoError(t, err)

	back, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, orig.Language, back.Language)
	assert.Equal(t, orig.License, back.License)
	assert.Equal(t, orig.Tags, back.Tags)
	assert.Equal(t, orig.EntityLabels, back.EntityLabels)
	assert.Equal(t, orig.Body, back.Body)
}
