package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"model_type": "bert",
		"architectures": ["BertForTokenClassification"],
		"id2label": {"0": "O", "1": "NAME", "2": "SSN", "3": "MRN", "4": "ADDRESS"},
		"max_position_embeddings": 512,
		"vocab_size": 30522,
		"pad_token_id": 0
	}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "bert", cfg.ModelType)
	assert.Equal(t, 512, cfg.MaxSequenceLength())
	assert.Equal(t, int32(0), cfg.PadTokenID)
}

func TestConfig_MaxSequenceLengthDefault(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 512, cfg.MaxSequenceLength())
}

func TestLabelsFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		id2label map[string]string
		want     []string
		wantErr  string
	}{
		{
			name:     "plain labels",
			id2label: map[string]string{"0": "O", "1": "NAME", "2": "SSN", "3": "MRN", "4": "ADDRESS"},
			want:     []string{"O", "NAME", "SSN", "MRN", "ADDRESS"},
		},
		{
			name: "bio labels",
			id2label: map[string]string{
				"0": "O", "1": "B-NAME", "2": "I-NAME", "3": "B-SSN", "4": "I-SSN",
			},
			want: []string{"O", "B-NAME", "I-NAME", "B-SSN", "I-SSN"},
		},
		{
			name:     "sparse ids",
			id2label: map[string]string{"0": "O", "2": "NAME"},
			wantErr:  "not dense",
		},
		{
			name:     "non-numeric id",
			id2label: map[string]string{"zero": "O"},
			wantErr:  "non-numeric",
		},
		{
			name:    "empty table",
			wantErr: "no id2label",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls, err := LabelsFromConfig(&Config{ID2Label: tt.id2label})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ls.Labels())
		})
	}
}

func TestLabelSet_Entity(t *testing.T) {
	plain := DefaultLabels()

	kind, begin := plain.Entity(plain.ID("NAME"))
	assert.Equal(t, "NAME", kind)
	assert.False(t, begin, "plain labels merge adjacent tokens")

	kind, _ = plain.Entity(plain.ID("O"))
	assert.Empty(t, kind)
	assert.True(t, plain.IsOutside(plain.ID("O")))

	bio, err := NewLabelSet([]string{"O", "B-NAME", "I-NAME"})
	require.NoError(t, err)

	kind, begin = bio.Entity(1)
	assert.Equal(t, "NAME", kind)
	assert.True(t, begin)

	kind, begin = bio.Entity(2)
	assert.Equal(t, "NAME", kind)
	assert.False(t, begin)
}

func TestLabelSet_EntityKinds(t *testing.T) {
	bio, err := NewLabelSet([]string{"O", "B-NAME", "I-NAME", "B-SSN", "I-SSN"})
	require.NoError(t, err)
	assert.Equal(t, []string{"NAME", "SSN"}, bio.EntityKinds())

	assert.Equal(t, []string{"NAME", "SSN", "MRN", "ADDRESS"}, DefaultLabels().EntityKinds())
}

func TestNewLabelSet_Invalid(t *testing.T) {
	_, err := NewLabelSet(nil)
	require.Error(t, err)

	_, err = NewLabelSet([]string{"NAME", "NAME"})
	require.Error(t, err)

	_, err = NewLabelSet([]string{"NAME", "SSN"})
	require.Error(t, err, "a label set without an outside label is rejected")
}
