package detect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		entities []Entity
		want     []string
	}{
		{
			name: "disjoint pass through",
			entities: []Entity{
				{Label: "NAME", Start: 0, End: 4, Score: 0.9},
				{Label: "SSN", Start: 10, End: 21, Score: 0.8},
			},
			want: []string{"NAME", "SSN"},
		},
		{
			name: "higher score wins overlap",
			entities: []Entity{
				{Label: "NAME", Start: 0, End: 8, Score: 0.6},
				{Label: "ADDRESS", Start: 4, End: 12, Score: 0.9},
			},
			want: []string{"ADDRESS"},
		},
		{
			name: "tie goes to longer span",
			entities: []Entity{
				{Label: "NAME", Start: 0, End: 4, Score: 0.8},
				{Label: "ADDRESS", Start: 2, End: 12, Score: 0.8},
			},
			want: []string{"ADDRESS"},
		},
		{
			name: "adjacent spans both survive",
			entities: []Entity{
				{Label: "NAME", Start: 0, End: 4, Score: 0.9},
				{Label: "SSN", Start: 4, End: 8, Score: 0.9},
			},
			want: []string{"NAME", "SSN"},
		},
		{
			name:     "empty",
			entities: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := MergeOverlaps(tt.entities)

			var got []string
			for _, e := range merged {
				got = append(got, e.Label)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeOverlaps_SortedByStart(t *testing.T) {
	merged := MergeOverlaps([]Entity{
		{Label: "SSN", Start: 20, End: 31, Score: 1.0},
		{Label: "NAME", Start: 0, End: 8, Score: 0.7},
	})

	require.Len(t, merged, 2)
	assert.Equal(t, "NAME", merged[0].Label)
	assert.Equal(t, "SSN", merged[1].Label)
}

func TestDetector_Chain(t *testing.T) {
	mc := testPipeline(t, 32, map[string]string{"john": "NAME"})
	detector := NewDetector(NewRules(), mc)

	text := "John, SSN 123-45-6789, MRN 7654321."
	entities, err := detector.Classify(context.Background(), text)
	require.NoError(t, err)

	require.Len(t, entities, 3)
	assert.Equal(t, "NAME", entities[0].Label)
	assert.Equal(t, "John", entities[0].Text)
	assert.Equal(t, "SSN", entities[1].Label)
	assert.Equal(t, SourceRules, entities[1].Source)
	assert.Equal(t, "MRN", entities[2].Label)

	for _, e := range entities {
		assert.Equal(t, text[e.Start:e.End], e.Text)
	}
}

func TestDetector_RulesWinOverlap(t *testing.T) {
	mc := testPipeline(t, 32, map[string]string{"12": "ADDRESS"})
	detector := NewDetector(NewRules(), mc)

	text := "code 12 and SSN 123-45-6789"
	entities, err := detector.Classify(context.Background(), text)
	require.NoError(t, err)

	var ssn *Entity
	for i := range entities {
		if entities[i].Label == "SSN" {
			ssn = &entities[i]
		}
	}
	require.NotNil(t, ssn)
	assert.Equal(t, SourceRules, ssn.Source)
	assert.Equal(t, "123-45-6789", ssn.Text)
}
