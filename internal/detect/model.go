package detect

import (
	"context"
	"fmt"
	"math"

	"github.com/piisec/piisec-go/internal/model"
	"github.com/piisec/piisec-go/internal/parallel"
	"github.com/piisec/piisec-go/internal/tokenizer"
)

// SourceModel marks entities produced by the model classifier.
const SourceModel = "model"

// Defaults for the model classifier.
const (
	// DefaultThreshold drops entities the model is less than half sure of.
	DefaultThreshold = 0.5

	// DefaultStride is the token overlap between adjacent windows, so
	// entities cut by a window edge are seen whole by the next window.
	DefaultStride = 64

	// DefaultWindowCap bounds the batch built for one document.
	DefaultWindowCap = 256
)

// ModelClassifier drives a token-classification model over text of any
// length: long inputs are split into overlapping token windows, classified
// as one padded batch, and the per-token labels are merged back into byte
// spans of the original text.
type ModelClassifier struct {
	tok       tokenizer.OffsetTokenizer
	mdl       model.TokenClassifier
	threshold float64
	stride    int
	windowCap int
	par       parallel.Config
}

// ModelOption configures a ModelClassifier.
type ModelOption func(*ModelClassifier)

// WithThreshold sets the minimum entity score.
func WithThreshold(threshold float64) ModelOption {
	return func(m *ModelClassifier) {
		m.threshold = threshold
	}
}

// WithStride sets the token overlap between adjacent windows.
func WithStride(stride int) ModelOption {
	return func(m *ModelClassifier) {
		m.stride = stride
	}
}

// WithWindowCap bounds how many windows one document may produce. Text
// beyond the cap is not classified.
func WithWindowCap(n int) ModelOption {
	return func(m *ModelClassifier) {
		m.windowCap = n
	}
}

// WithParallelism overrides the worker fan-out used for logit postprocessing.
func WithParallelism(cfg parallel.Config) ModelOption {
	return func(m *ModelClassifier) {
		m.par = cfg
	}
}

// NewModelClassifier builds the classifier from loaded handles. Both handles
// must originate from the same model identifier; nothing below enforces that
// beyond the label set check at entity assembly.
func NewModelClassifier(tok tokenizer.Tokenizer, mdl model.TokenClassifier, opts ...ModelOption) (*ModelClassifier, error) {
	offsetTok, ok := tok.(tokenizer.OffsetTokenizer)
	if !ok {
		return nil, fmt.Errorf("tokenizer %T does not report byte offsets", tok)
	}

	m := &ModelClassifier{
		tok:       offsetTok,
		mdl:       mdl,
		threshold: DefaultThreshold,
		stride:    DefaultStride,
		windowCap: DefaultWindowCap,
		par:       parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}

	window := m.innerWindow()
	if window <= 0 {
		return nil, fmt.Errorf("model accepts only %d tokens", m.mdl.MaxSequenceLength())
	}
	if m.stride < 0 || m.stride >= window {
		return nil, fmt.Errorf("stride %d must be in [0, %d)", m.stride, window)
	}
	return m, nil
}

// innerWindow is the number of content tokens per window, leaving room for
// the wrapper tokens.
func (m *ModelClassifier) innerWindow() int {
	window := m.mdl.MaxSequenceLength()
	if m.tok.BosToken() >= 0 {
		window--
	}
	if m.tok.EosToken() >= 0 {
		window--
	}
	return window
}

// tokenPred is the classified label of one content token.
type tokenPred struct {
	labelID int
	score   float64
}

// Classify finds PII entities in text.
func (m *ModelClassifier) Classify(ctx context.Context, text string) ([]Entity, error) {
	enc, err := m.tok.EncodeWithOffsets(text)
	if err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}
	inner := enc.Inner()
	if inner.Len() == 0 {
		return nil, nil
	}

	starts := m.windowStarts(inner.Len())
	batch := m.buildBatch(inner, starts)

	logits, err := m.mdl.Forward(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("classify batch: %w", err)
	}
	if err := logits.Validate(); err != nil {
		return nil, err
	}

	preds := m.assemblePredictions(inner, starts, logits)
	return m.entities(text, inner, preds), nil
}

// windowStarts returns the start index of every token window, honoring the
// window cap.
func (m *ModelClassifier) windowStarts(n int) []int {
	window := m.innerWindow()
	step := window - m.stride

	var starts []int
	for start := 0; start < n; start += step {
		starts = append(starts, start)
		if start+window >= n || len(starts) == m.windowCap {
			break
		}
	}
	return starts
}

// buildBatch wraps and pads one window per batch row.
func (m *ModelClassifier) buildBatch(inner *tokenizer.Encoding, starts []int) *model.Batch {
	window := m.innerWindow()

	sequences := make([][]int32, len(starts))
	for i, start := range starts {
		end := min(start+window, inner.Len())

		var seq []int32
		if bos := m.tok.BosToken(); bos >= 0 {
			seq = append(seq, bos)
		}
		seq = append(seq, inner.IDs[start:end]...)
		if eos := m.tok.EosToken(); eos >= 0 {
			seq = append(seq, eos)
		}
		sequences[i] = seq
	}

	pad := m.tok.PadToken()
	if pad < 0 {
		pad = 0
	}
	return model.NewBatch(sequences, pad)
}

// assemblePredictions converts logits to one prediction per content token.
// Overlapping windows both predict the shared tokens; the higher score wins.
func (m *ModelClassifier) assemblePredictions(inner *tokenizer.Encoding, starts []int, logits *model.Logits) []tokenPred {
	window := m.innerWindow()
	lead := 0
	if m.tok.BosToken() >= 0 {
		lead = 1
	}

	// Softmax and argmax of every batch row, fanned out across workers.
	rows := make([][]tokenPred, len(starts))
	parallel.For(len(starts), func(i int) {
		start := starts[i]
		end := min(start+window, inner.Len())

		preds := make([]tokenPred, end-start)
		for j := range preds {
			row := logits.Row(i, lead+j)
			labelID, score := argmaxSoftmax(row)
			preds[j] = tokenPred{labelID: labelID, score: score}
		}
		rows[i] = preds
	}, m.par)

	merged := make([]tokenPred, inner.Len())
	for i := range merged {
		merged[i] = tokenPred{labelID: -1}
	}
	for i, start := range starts {
		for j, pred := range rows[i] {
			at := start + j
			if pred.score > merged[at].score {
				merged[at] = pred
			}
		}
	}
	return merged
}

// entities folds per-token predictions into entity spans: outside tokens
// split, B- tags split, and everything else merges with a running entity of
// the same kind. Entity scores are the mean of their token scores.
func (m *ModelClassifier) entities(text string, inner *tokenizer.Encoding, preds []tokenPred) []Entity {
	labels := m.mdl.Labels()

	var out []Entity
	var cur *Entity
	var curScores []float64

	flush := func() {
		if cur == nil {
			return
		}
		cur.Score = mean(curScores)
		cur.Text = text[cur.Start:cur.End]
		if cur.Score >= m.threshold {
			out = append(out, *cur)
		}
		cur, curScores = nil, nil
	}

	for i, pred := range preds {
		if pred.labelID < 0 || labels.IsOutside(pred.labelID) {
			flush()
			continue
		}
		kind, begin := labels.Entity(pred.labelID)
		span := inner.Offsets[i]

		if cur != nil && kind == cur.Label && !begin {
			// Continuation: extend the running entity.
			cur.End = span.End
			curScores = append(curScores, pred.score)
			continue
		}

		flush()
		cur = &Entity{
			Label:  kind,
			Start:  span.Start,
			End:    span.End,
			Source: SourceModel,
		}
		curScores = []float64{pred.score}
	}
	flush()
	return out
}

// argmaxSoftmax returns the winning label and its softmax probability.
func argmaxSoftmax(row []float32) (int, float64) {
	maxIdx := 0
	maxVal := row[0]
	for i, v := range row {
		if v > maxVal {
			maxIdx, maxVal = i, v
		}
	}

	var denom float64
	for _, v := range row {
		denom += math.Exp(float64(v - maxVal))
	}
	return maxIdx, 1 / denom
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
