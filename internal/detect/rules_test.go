package detect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_SSN(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "dashed",
			text: "SSN is 123-45-6789.",
			want: []string{"123-45-6789"},
		},
		{
			name: "spaced",
			text: "SSN 123 45 6789 on file",
			want: []string{"123 45 6789"},
		},
		{
			name: "mixed separators rejected",
			text: "not an ssn: 123-45 6789",
			want: nil,
		},
		{
			name: "area 000 rejected",
			text: "000-12-3456",
			want: nil,
		},
		{
			name: "area 666 rejected",
			text: "666-12-3456",
			want: nil,
		},
		{
			name: "area 9xx rejected",
			text: "901-12-3456",
			want: nil,
		},
		{
			name: "group 00 rejected",
			text: "123-00-6789",
			want: nil,
		},
		{
			name: "serial 0000 rejected",
			text: "123-45-0000",
			want: nil,
		},
		{
			name: "embedded in longer number rejected",
			text: "order 9123-45-67890",
			want: nil,
		},
		{
			name: "two matches",
			text: "123-45-6789 and 234-56-7890",
			want: []string{"123-45-6789", "234-56-7890"},
		},
	}

	rules := NewRules()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities, err := rules.Classify(context.Background(), tt.text)
			require.NoError(t, err)

			var got []string
			for _, e := range entities {
				require.Equal(t, "SSN", e.Label)
				require.Equal(t, tt.text[e.Start:e.End], e.Text)
				require.Equal(t, 1.0, e.Score)
				require.Equal(t, SourceRules, e.Source)
				got = append(got, e.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRules_MRN(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "bare cue", text: "Patient MRN 1234567 admitted.", want: "1234567"},
		{name: "colon", text: "MRN: 765432", want: "765432"},
		{name: "hash", text: "mrn #98765432", want: "98765432"},
		{name: "spelled out", text: "medical record number 123456", want: "123456"},
		{name: "abbreviated no", text: "Medical record no. 555123", want: "555123"},
	}

	rules := NewRules()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities, err := rules.Classify(context.Background(), tt.text)
			require.NoError(t, err)

			require.Len(t, entities, 1)
			e := entities[0]
			assert.Equal(t, "MRN", e.Label)
			assert.Equal(t, tt.want, e.Text)
			assert.Equal(t, tt.text[e.Start:e.End], e.Text, "span covers only the identifier")
		})
	}
}

func TestRules_NoCueNoMRN(t *testing.T) {
	rules := NewRules()

	entities, err := rules.Classify(context.Background(), "invoice 1234567 paid")
	require.NoError(t, err)
	assert.Empty(t, entities, "digit runs without a cue stay untouched")
}
