package model

import (
	"context"
	"fmt"
)

// TokenClassifier is the model handle contract: token sequences in, per-token
// label-score distributions out.
//
// Implementations are safe for concurrent Forward calls and release their
// resources on Close.
type TokenClassifier interface {
	// Forward runs one padded batch through the model.
	Forward(ctx context.Context, batch *Batch) (*Logits, error)

	// Labels returns the label set the model was trained with.
	Labels() *LabelSet

	// MaxSequenceLength returns the longest token sequence the model accepts.
	MaxSequenceLength() int

	// Close releases the underlying session.
	Close() error
}

// Batch is a padded batch of token sequences. IDs and Mask are parallel:
// Mask[i][j] is 1 for real tokens and 0 for padding.
type Batch struct {
	IDs  [][]int32
	Mask [][]int32
}

// NewBatch pads a set of token sequences to a common length with padToken.
func NewBatch(sequences [][]int32, padToken int32) *Batch {
	maxLen := 0
	for _, seq := range sequences {
		if len(seq) > maxLen {
			maxLen = len(seq)
		}
	}

	b := &Batch{
		IDs:  make([][]int32, len(sequences)),
		Mask: make([][]int32, len(sequences)),
	}
	for i, seq := range sequences {
		ids := make([]int32, maxLen)
		mask := make([]int32, maxLen)
		copy(ids, seq)
		for j := len(seq); j < maxLen; j++ {
			ids[j] = padToken
		}
		for j := range seq {
			mask[j] = 1
		}
		b.IDs[i] = ids
		b.Mask[i] = mask
	}
	return b
}

// Size returns the number of sequences in the batch.
func (b *Batch) Size() int {
	return len(b.IDs)
}

// SeqLen returns the padded sequence length.
func (b *Batch) SeqLen() int {
	if len(b.IDs) == 0 {
		return 0
	}
	return len(b.IDs[0])
}

// Validate checks that the batch is rectangular and masked consistently.
func (b *Batch) Validate() error {
	if len(b.IDs) != len(b.Mask) {
		return fmt.Errorf("batch: %d id rows but %d mask rows", len(b.IDs), len(b.Mask))
	}
	seqLen := b.SeqLen()
	for i := range b.IDs {
		if len(b.IDs[i]) != seqLen || len(b.Mask[i]) != seqLen {
			return fmt.Errorf("batch: row %d is not padded to %d tokens", i, seqLen)
		}
	}
	return nil
}

// Logits holds the raw model output: one score per (sequence, token, label),
// flattened row-major.
type Logits struct {
	Data    []float32
	Batch   int
	SeqLen  int
	NLabels int
}

// Row returns the label scores of one token as a slice into Data.
func (l *Logits) Row(batch, token int) []float32 {
	start := (batch*l.SeqLen + token) * l.NLabels
	return l.Data[start : start+l.NLabels]
}

// Validate checks that the flat data matches the declared shape.
func (l *Logits) Validate() error {
	want := l.Batch * l.SeqLen * l.NLabels
	if len(l.Data) != want {
		return fmt.Errorf("logits: have %d values, shape wants %d", len(l.Data), want)
	}
	return nil
}
