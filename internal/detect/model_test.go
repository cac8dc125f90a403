package detect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piisec/piisec-go/internal/model"
	"github.com/piisec/piisec-go/internal/tokenizer"
)

// fakeModel is a deterministic TokenClassifier: every token ID maps to a
// fixed label with a fixed logit margin. It stands in for the session so the
// pipeline can be tested without the runtime.
type fakeModel struct {
	labels  *model.LabelSet
	maxSeq  int
	labelOf map[int32]int // token ID -> label index; default outside
	margin  float32
}

func (f *fakeModel) Forward(_ context.Context, batch *model.Batch) (*model.Logits, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	n := f.labels.Len()
	logits := &model.Logits{
		Data:    make([]float32, batch.Size()*batch.SeqLen()*n),
		Batch:   batch.Size(),
		SeqLen:  batch.SeqLen(),
		NLabels: n,
	}
	for b, row := range batch.IDs {
		for s, id := range row {
			scores := logits.Row(b, s)
			scores[f.labelOf[id]] = f.margin
		}
	}
	return logits, nil
}

func (f *fakeModel) Labels() *model.LabelSet { return f.labels }
func (f *fakeModel) MaxSequenceLength() int  { return f.maxSeq }
func (f *fakeModel) Close() error            { return nil }

// testVocab mirrors the tokens of the test sentences.
var testVocab = map[string]int32{
	"[PAD]": 0, "[UNK]": 1, "[CLS]": 2, "[SEP]": 3,
	"john": 4, "do": 5, "##e": 6,
	"ssn": 7, "is": 8, "lives": 9, "at": 10,
	"12": 11, "main": 12, "st": 13,
	",": 14, ".": 15, "-": 16,
	"patient": 17,
}

func testPipeline(t *testing.T, maxSeq int, labelOf map[string]string, opts ...ModelOption) *ModelClassifier {
	t.Helper()

	tok, err := tokenizer.NewWordPiece(testVocab, tokenizer.WordPieceConfig{Lowercase: true})
	require.NoError(t, err)

	labels := model.DefaultLabels()
	byID := make(map[int32]int)
	for text, label := range labelOf {
		id, ok := testVocab[text]
		require.True(t, ok, "unknown test token %q", text)
		byID[id] = labels.ID(label)
		require.NotEqual(t, -1, byID[id])
	}

	mdl := &fakeModel{labels: labels, maxSeq: maxSeq, labelOf: byID, margin: 8}
	mc, err := NewModelClassifier(tok, mdl, opts...)
	require.NoError(t, err)
	return mc
}

func TestModelClassifier_Basic(t *testing.T) {
	mc := testPipeline(t, 32, map[string]string{
		"john": "NAME", "do": "NAME", "##e": "NAME",
	})

	text := "Patient John Doe is here."
	entities, err := mc.Classify(context.Background(), text)
	require.NoError(t, err)

	require.Len(t, entities, 1)
	e := entities[0]
	assert.Equal(t, "NAME", e.Label)
	assert.Equal(t, "John Doe", e.Text)
	assert.Equal(t, text[e.Start:e.End], e.Text, "span reproduces its bytes")
	assert.Equal(t, SourceModel, e.Source)
	assert.Greater(t, e.Score, 0.9)
}

func TestModelClassifier_MultipleEntities(t *testing.T) {
	mc := testPipeline(t, 32, map[string]string{
		"john": "NAME",
		"12":   "ADDRESS", "main": "ADDRESS", "st": "ADDRESS",
	})

	text := "John lives at 12 Main St."
	entities, err := mc.Classify(context.Background(), text)
	require.NoError(t, err)

	require.Len(t, entities, 2)
	assert.Equal(t, "NAME", entities[0].Label)
	assert.Equal(t, "John", entities[0].Text)
	assert.Equal(t, "ADDRESS", entities[1].Label)
	assert.Equal(t, "12 Main St", entities[1].Text)
}

func TestModelClassifier_Threshold(t *testing.T) {
	mc := testPipeline(t, 32,
		map[string]string{"john": "NAME"},
		WithThreshold(0.999))

	// With a margin of 8 over four zero logits the softmax tops out around
	// 0.9987, under this threshold.
	entities, err := mc.Classify(context.Background(), "John is here.")
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestModelClassifier_EmptyInput(t *testing.T) {
	mc := testPipeline(t, 32, map[string]string{"john": "NAME"})

	entities, err := mc.Classify(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestModelClassifier_Windowing(t *testing.T) {
	// Window of 4 content tokens with an overlap of 2 forces several
	// windows over a short sentence.
	mc := testPipeline(t, 6,
		map[string]string{"john": "NAME", "do": "NAME", "##e": "NAME"},
		WithStride(2))

	text := "Patient John Doe lives at 12 Main St . is John"
	entities, err := mc.Classify(context.Background(), text)
	require.NoError(t, err)

	require.NotEmpty(t, entities)
	for _, e := range entities {
		assert.Equal(t, "NAME", e.Label)
		assert.Equal(t, text[e.Start:e.End], e.Text)
	}
	// The first mention survives windowing exactly once.
	assert.Equal(t, "John Doe", entities[0].Text)
}

func TestModelClassifier_Deterministic(t *testing.T) {
	mc := testPipeline(t, 16, map[string]string{"john": "NAME", "12": "ADDRESS"})

	text := "John lives at 12 Main St."
	first, err := mc.Classify(context.Background(), text)
	require.NoError(t, err)
	second, err := mc.Classify(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same handle, same input, same entities")
}

func TestNewModelClassifier_RequiresOffsets(t *testing.T) {
	if testing.Short() {
		t.Skip("tiktoken encodings fetch remote vocabularies")
	}

	tok, err := tokenizer.NewTikToken("cl100k_base")
	require.NoError(t, err)

	_, err = NewModelClassifier(tok, &fakeModel{labels: model.DefaultLabels(), maxSeq: 32})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offsets")
}

func TestNewModelClassifier_BadStride(t *testing.T) {
	tok, err := tokenizer.NewWordPiece(testVocab, tokenizer.WordPieceConfig{Lowercase: true})
	require.NoError(t, err)
	mdl := &fakeModel{labels: model.DefaultLabels(), maxSeq: 8}

	_, err = NewModelClassifier(tok, mdl, WithStride(6))
	require.Error(t, err, "stride must leave the window room to advance")
}
