package tokenizer

// Tokenizer is the core interface for text tokenization.
//
// A tokenizer handle is created once from a model identifier, never mutated
// afterwards, and is safe for concurrent use.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text.
	Decode(tokens []int32) (string, error)

	// VocabSize returns the total vocabulary size.
	VocabSize() int

	// BosToken returns the beginning-of-sequence token ID.
	// Returns -1 if not applicable.
	BosToken() int32

	// EosToken returns the end-of-sequence token ID.
	// Returns -1 if not applicable.
	EosToken() int32

	// PadToken returns the padding token ID.
	// Returns -1 if not applicable.
	PadToken() int32

	// UnkToken returns the unknown token ID.
	// Returns -1 if not applicable.
	UnkToken() int32

	// IsSpecialToken checks if a token ID is a special token.
	IsSpecialToken(token int32) bool
}

// OffsetTokenizer is implemented by tokenizers that can report where each
// token came from in the input. Per-token labels can only be mapped back to
// text spans through these offsets, so token classification requires one.
type OffsetTokenizer interface {
	Tokenizer

	// EncodeWithOffsets converts text to a full encoding with byte offsets.
	EncodeWithOffsets(text string) (*Encoding, error)
}
