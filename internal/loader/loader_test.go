package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyIdentifier(t *testing.T) {
	_, _, err := Load(context.Background(), "  ")
	require.ErrorIs(t, err, ErrEmptyIdentifier)
}

func TestLoad_OfflineMiss(t *testing.T) {
	t.Setenv("PIISEC_HOME", t.TempDir())
	t.Setenv("PIISEC_HUB_OFFLINE", "1")

	_, _, err := Load(context.Background(), "piisec/pii-ner-en")
	require.Error(t, err, "offline mode with a cold cache cannot resolve")
	assert.Contains(t, err.Error(), "piisec/pii-ner-en")
}

func TestLoadSnapshot_MissingTokenizer(t *testing.T) {
	_, _, err := LoadSnapshot(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load tokenizer")
}
