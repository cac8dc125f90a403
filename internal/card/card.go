// Package card parses and renders model cards.
//
// A model card is a markdown document with a YAML front matter block holding
// the declared metadata of a hosted model: language, license, task tags,
// datasets, and the model-index results table. The card for the documented
// PII model declares the entity label set {NAME, SSN, MRN, ADDRESS}; the
// implicit outside label "O" is never declared on the card itself.
package card

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultModelID is the identifier of the documented hosted model.
const DefaultModelID = "piisec/pii-ner-en"

// CanonicalEntityLabels is the declared entity label set, in card order.
// The outside label "O" is implicit and not part of the declared set.
var CanonicalEntityLabels = []string{"NAME", "SSN", "MRN", "ADDRESS"}

// frontMatterFence separates YAML metadata from the markdown body.
const frontMatterFence = "---"

// Result is one row of the model-index results table. The documented card
// declares a named table with no rows; the fields exist so populated cards
// round-trip.
type Result struct {
	Task    map[string]string `yaml:"task,omitempty"`
	Dataset map[string]string `yaml:"dataset,omitempty"`
	Metrics []map[string]any  `yaml:"metrics,omitempty"`
}

// ModelIndex is the named results table from the card front matter.
type ModelIndex struct {
	Name    string   `yaml:"name"`
	Results []Result `yaml:"results"`
}

// Card is a parsed model card.
type Card struct {
	ModelID      string
	Language     []string
	License      string
	LibraryName  string
	Tags         []string
	Datasets     []string
	Metrics      []string
	BaseModel    string
	EntityLabels []string
	ModelIndex   []ModelIndex

	// Body is the markdown after the front matter, fences excluded.
	Body string
}

// frontMatter mirrors the YAML schema of hub model cards.
type frontMatter struct {
	Language     any          `yaml:"language,omitempty"`
	License      string       `yaml:"license,omitempty"`
	LibraryName  string       `yaml:"library_name,omitempty"`
	Tags         []string     `yaml:"tags,omitempty"`
	Datasets     []string     `yaml:"datasets,omitempty"`
	Metrics      []string     `yaml:"metrics,omitempty"`
	BaseModel    string       `yaml:"base_model,omitempty"`
	EntityLabels []string     `yaml:"entity_labels,omitempty"`
	ModelIndex   []ModelIndex `yaml:"model-index,omitempty"`
}

// Parse reads a model card from raw markdown. A card without front matter
// parses to a Card with only Body set.
func Parse(data []byte) (*Card, error) {
	c := &Card{}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, frontMatterFence+"\n") {
		c.Body = text
		return c, nil
	}

	rest := text[len(frontMatterFence)+1:]
	meta, body, ok := splitFrontMatter(rest)
	if !ok {
		return nil, fmt.Errorf("model card: unterminated front matter")
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		return nil, fmt.Errorf("model card: parse front matter: %w", err)
	}

	c.Language = asStringList(fm.Language)
	c.License = fm.License
	c.LibraryName = fm.LibraryName
	c.Tags = fm.Tags
	c.Datasets = fm.Datasets
	c.Metrics = fm.Metrics
	c.BaseModel = fm.BaseModel
	c.EntityLabels = fm.EntityLabels
	c.ModelIndex = fm.ModelIndex
	c.Body = body

	if len(c.ModelIndex) > 0 {
		c.ModelID = c.ModelIndex[0].Name
	}
	return c, nil
}

// splitFrontMatter scans rest line by line for the closing fence. The fence
// must be a line equal to "---"; lines that merely start with it, such as a
// "----" rule, belong to the front matter.
func splitFrontMatter(rest string) (meta, body string, ok bool) {
	for pos := 0; pos < len(rest); {
		lineEnd := strings.Index(rest[pos:], "\n")
		if lineEnd < 0 {
			break
		}
		line := rest[pos : pos+lineEnd]
		if line == frontMatterFence {
			return rest[:pos], rest[pos+lineEnd+1:], true
		}
		pos += lineEnd + 1
	}
	// A fence on the final line without a trailing newline still closes.
	if strings.HasSuffix(rest, "\n"+frontMatterFence) {
		return rest[:len(rest)-len(frontMatterFence)], "", true
	}
	if rest == frontMatterFence {
		return "", "", true
	}
	return "", "", false
}

// asStringList accepts the two YAML spellings of the language field:
// a plain scalar ("en") or a list (["en"]).
func asStringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Render reproduces the card as markdown with a YAML front matter block.
func (c *Card) Render() ([]byte, error) {
	fm := frontMatter{
		License:      c.License,
		LibraryName:  c.LibraryName,
		Tags:         c.Tags,
		Datasets:     c.Datasets,
		Metrics:      c.Metrics,
		BaseModel:    c.BaseModel,
		EntityLabels: c.EntityLabels,
		ModelIndex:   c.ModelIndex,
	}
	switch len(c.Language) {
	case 0:
	case 1:
		fm.Language = c.Language[0]
	default:
		fm.Language = c.Language
	}

	var buf bytes.Buffer
	buf.WriteString(frontMatterFence + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&fm); err != nil {
		return nil, fmt.Errorf("model card: encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("model card: encode front matter: %w", err)
	}
	buf.WriteString(frontMatterFence + "\n")
	buf.WriteString(c.Body)
	return buf.Bytes(), nil
}

// Validate checks the declared metadata of the documented PII model card:
// English language, Apache-2.0 license, the three task tags, and exactly the
// four canonical entity labels.
func (c *Card) Validate() error {
	if !contains(c.Language, "en") {
		return fmt.Errorf("model card: language must include \"en\", got %v", c.Language)
	}
	if !strings.EqualFold(c.License, "apache-2.0") {
		return fmt.Errorf("model card: license must be apache-2.0, got %q", c.License)
	}
	for _, tag := range []string{"token-classification", "named-entity-recognition", "pii"} {
		if !contains(c.Tags, tag) {
			return fmt.Errorf("model card: missing tag %q", tag)
		}
	}
	if len(c.EntityLabels) != len(CanonicalEntityLabels) {
		return fmt.Errorf("model card: expected %d entity labels, got %d",
			len(CanonicalEntityLabels), len(c.EntityLabels))
	}
	for i, want := range CanonicalEntityLabels {
		if c.EntityLabels[i] != want {
			return fmt.Errorf("model card: entity label %d: want %q, got %q", i, want, c.EntityLabels[i])
		}
	}
	return nil
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
