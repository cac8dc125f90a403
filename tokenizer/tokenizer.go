// Package tokenizer provides text tokenization for PII detection.
//
// This package wraps the internal tokenizer implementations and provides
// a clean public API for tokenization tasks.
//
// Supported tokenizers:
//   - WordPiece: BERT-family subword tokenization with byte offsets
//   - BPE: Byte-Pair Encoding from HuggingFace
//   - TikToken: OpenAI BPE tokenizers
//
// Example usage:
//
//	import "github.com/piisec/piisec-go/tokenizer"
//
//	// Load the tokenizer for a hosted model
//	tok, err := tokenizer.FromPretrained(ctx, "piisec/pii-ner-en")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Encode text
//	tokens, err := tok.Encode("John Doe, SSN 123-45-6789")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Byte offsets back into the input, when supported
//	if ot, ok := tok.(tokenizer.OffsetTokenizer); ok {
//	    enc, _ := ot.EncodeWithOffsets("John Doe")
//	    for i, span := range enc.Offsets {
//	        fmt.Println(enc.IDs[i], span.Start, span.End)
//	    }
//	}
package tokenizer

import (
	"context"

	"github.com/piisec/piisec-go/internal/hub"
	"github.com/piisec/piisec-go/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
//
// All tokenizer implementations must implement this interface.
type Tokenizer = tokenizer.Tokenizer

// OffsetTokenizer is implemented by tokenizers that can report the byte span
// of every token. Token-classification output needs these spans to map
// predictions back onto the input text.
type OffsetTokenizer = tokenizer.OffsetTokenizer

// Encoding is tokenized text with per-token byte spans.
type Encoding = tokenizer.Encoding

// Span is a half-open byte range into the input text.
type Span = tokenizer.Span

// WordPiece is the BERT-family subword tokenizer.
type WordPiece = tokenizer.WordPiece

// WordPieceConfig configures a WordPiece tokenizer.
type WordPieceConfig = tokenizer.WordPieceConfig

// FromPretrained fetches and loads the tokenizer of a hosted model.
//
// The repository's tokenizer.json (or vocab.txt plus tokenizer_config.json)
// is downloaded into the local cache and loaded from there.
func FromPretrained(ctx context.Context, id string, opts ...hub.Option) (Tokenizer, error) {
	return tokenizer.FromPretrained(ctx, id, opts...)
}

// NewWordPiece creates a WordPiece tokenizer from an in-memory vocabulary.
func NewWordPiece(vocab map[string]int32, cfg WordPieceConfig) (*WordPiece, error) {
	return tokenizer.NewWordPiece(vocab, cfg)
}

// LoadFromHuggingFace loads a tokenizer from a HuggingFace model directory.
//
// The directory should contain tokenizer.json, or vocab.txt with an optional
// tokenizer_config.json.
func LoadFromHuggingFace(modelPath string) (Tokenizer, error) {
	return tokenizer.LoadFromHuggingFace(modelPath)
}

// NewTikToken creates a TikToken tokenizer with the specified encoding.
//
// Supported encodings: "cl100k_base" (GPT-4), "p50k_base" (GPT-3).
func NewTikToken(encodingName string) (Tokenizer, error) {
	return tokenizer.NewTikToken(encodingName)
}

// NewTikTokenForModel creates a TikToken tokenizer for a specific model.
func NewTikTokenForModel(modelName string) (Tokenizer, error) {
	return tokenizer.NewTikTokenForModel(modelName)
}

// AutoLoad attempts to automatically load the correct tokenizer.
//
// It tries multiple strategies:
//  1. Load from a HuggingFace model directory
//  2. Load tiktoken by model name
//  3. Load tiktoken by encoding name
func AutoLoad(pathOrName string) (Tokenizer, error) {
	return tokenizer.AutoLoadTokenizer(pathOrName)
}

// ExampleBPE creates a minimal BPE tokenizer for testing and examples.
func ExampleBPE() Tokenizer {
	return tokenizer.ExampleBPEVocab()
}
