package redact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piisec/piisec-go/internal/detect"
)

// entitiesFor builds entities by locating needles in text, so offsets never
// drift from the fixtures.
func entitiesFor(t *testing.T, text string, labeled map[string]string) []detect.Entity {
	t.Helper()

	var out []detect.Entity
	for needle, label := range labeled {
		start := strings.Index(text, needle)
		require.GreaterOrEqual(t, start, 0, "needle %q not in fixture", needle)
		out = append(out, detect.Entity{
			Label: label,
			Start: start,
			End:   start + len(needle),
			Text:  needle,
			Score: 1.0,
		})
	}
	return out
}

func TestMask(t *testing.T) {
	text := "John Doe, SSN 123-45-6789, lives at 12 Main St."
	entities := entitiesFor(t, text, map[string]string{
		"John Doe":    "NAME",
		"123-45-6789": "SSN",
		"12 Main St":  "ADDRESS",
	})

	masked := Mask(text, entities)
	assert.Equal(t, "[NAME], SSN [SSN], lives at [ADDRESS].", masked)

	for needle := range map[string]string{"John Doe": "", "123-45-6789": "", "12 Main St": ""} {
		assert.NotContains(t, masked, needle, "masking never leaks entity bytes")
	}
}

func TestMask_NoEntities(t *testing.T) {
	assert.Equal(t, "nothing here", Mask("nothing here", nil))
}

func TestMask_OverlapCollapsed(t *testing.T) {
	text := "John Doe Junior"
	entities := []detect.Entity{
		{Label: "NAME", Start: 0, End: 8, Score: 0.7},
		{Label: "NAME", Start: 5, End: 15, Score: 0.9},
	}

	masked := Mask(text, entities)
	assert.Equal(t, "John [NAME]", masked, "higher score span wins the overlap")
}

func TestMask_MultiByte(t *testing.T) {
	text := "Patientin Josée Müller meldet sich."
	entities := entitiesFor(t, text, map[string]string{"Josée Müller": "NAME"})

	masked := Mask(text, entities)
	assert.Equal(t, "Patientin [NAME] meldet sich.", masked)
}

func TestPseudonymizer_RoundTrip(t *testing.T) {
	text := "John called John about MRN 7654321."
	p := NewPseudonymizer()

	entities := []detect.Entity{
		{Label: "NAME", Start: 0, End: 4, Score: 1.0},
		{Label: "NAME", Start: 12, End: 16, Score: 1.0},
		{Label: "MRN", Start: 27, End: 34, Score: 1.0},
	}

	masked := p.Apply(text, entities)
	assert.NotContains(t, masked, "John")
	assert.NotContains(t, masked, "7654321")

	// Identical spans share one placeholder.
	assert.Contains(t, masked, "«NAME_000001»")
	assert.Equal(t, 2, strings.Count(masked, "«NAME_000001»"))

	restored := p.Restore(masked)
	assert.Equal(t, text, restored)
}

func TestPseudonymizer_Redactions(t *testing.T) {
	text := "SSN 123-45-6789"
	p := NewPseudonymizer()

	p.Apply(text, entitiesFor(t, text, map[string]string{"123-45-6789": "SSN"}))

	inventory := p.Redactions()
	require.Len(t, inventory, 1)
	assert.Equal(t, "123-45-6789", inventory["«SSN_000001»"])

	// The returned map is a copy.
	inventory["«SSN_000001»"] = "tampered"
	assert.Equal(t, "123-45-6789", p.Redactions()["«SSN_000001»"])
}

func TestPseudonymizer_RestoreUnknownPlaceholder(t *testing.T) {
	p := NewPseudonymizer()
	assert.Equal(t, "«NAME_000099» stays", p.Restore("«NAME_000099» stays"))
}
