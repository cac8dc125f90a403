package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Supported tiktoken encoding names.
const (
	encodingCL100kBase = "cl100k_base"
	encodingP50kBase   = "p50k_base"
	encodingR50kBase   = "r50k_base"
)

// encodingTraits pins the published vocabulary size and sentinel tokens of
// each supported encoding. The underlying library exposes neither.
type encodingTraits struct {
	vocabSize       int
	eosToken        int32
	specialRangeEnd int32
}

var knownEncodings = map[string]encodingTraits{
	encodingCL100kBase: {vocabSize: 100256, eosToken: 100257, specialRangeEnd: 100276},
	encodingP50kBase:   {vocabSize: 50257, eosToken: 50256, specialRangeEnd: 50256},
	encodingR50kBase:   {vocabSize: 50257, eosToken: 50256, specialRangeEnd: 50256},
}

// TikToken wraps an OpenAI tiktoken encoding.
//
// It is a fallback for identifiers that name a tiktoken encoding rather
// than a snapshot directory: useful for counting tokens and round-tripping
// text, but it cannot report byte offsets (the underlying library discards
// them), so it can never drive span-based detection. Classifier
// construction rejects it for that reason.
//
// Constructing one fetches the encoding's vocabulary over the network on
// first use; tests that touch it skip under -short.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
	traits   encodingTraits
}

// NewTikToken creates a tokenizer for a named encoding, such as
// "cl100k_base".
func NewTikToken(encodingName string) (*TikToken, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("get encoding %q: %w", encodingName, err)
	}
	return newTikToken(enc, encodingName), nil
}

// NewTikTokenForModel creates a tokenizer for a named model, such as
// "gpt-4".
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	enc, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		return nil, fmt.Errorf("get encoding for model %q: %w", modelName, err)
	}
	return newTikToken(enc, modelName), nil
}

func newTikToken(enc *tiktoken.Tiktoken, name string) *TikToken {
	traits, ok := knownEncodings[name]
	if !ok {
		// Model names resolve to one of the known encodings; assume the
		// current default when the name is not an encoding itself.
		traits = knownEncodings[encodingCL100kBase]
	}
	return &TikToken{encoding: enc, name: name, traits: traits}
}

// Encode converts text into token IDs.
func (t *TikToken) Encode(text string) ([]int32, error) {
	tokens := t.encoding.Encode(text, nil, nil)
	ids := make([]int32, len(tokens))
	for i, tok := range tokens {
		ids[i] = int32(tok) //nolint:gosec // G115: tiktoken IDs fit int32.
	}
	return ids, nil
}

// Decode converts token IDs back into text.
func (t *TikToken) Decode(ids []int32) (string, error) {
	tokens := make([]int, len(ids))
	for i, id := range ids {
		tokens[i] = int(id)
	}
	return t.encoding.Decode(tokens), nil
}

// VocabSize returns the size of the encoding's vocabulary.
func (t *TikToken) VocabSize() int { return t.traits.vocabSize }

// BosToken returns -1; tiktoken encodings have no beginning-of-sequence
// token.
func (t *TikToken) BosToken() int32 { return -1 }

// EosToken returns the end-of-text token ID.
func (t *TikToken) EosToken() int32 { return t.traits.eosToken }

// PadToken returns -1; tiktoken encodings have no padding token.
func (t *TikToken) PadToken() int32 { return -1 }

// UnkToken returns -1; tiktoken encodings are byte-level and encode any
// input.
func (t *TikToken) UnkToken() int32 { return -1 }

// IsSpecialToken reports whether id falls in the encoding's reserved
// special range.
func (t *TikToken) IsSpecialToken(id int32) bool {
	return id >= int32(t.traits.vocabSize) && id <= t.traits.specialRangeEnd
}

// Name returns the encoding or model name this tokenizer was built from.
func (t *TikToken) Name() string { return t.name }
