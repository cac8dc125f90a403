// Package tokenizer provides text tokenization for token-classification
// inference.
//
// The package implements the tokenizer families a hosted artifact bundle can
// declare:
//   - WordPiece: BERT-style subword tokenizer (tokenizer.json or vocab.txt)
//   - BPE: Byte-Pair Encoding from HuggingFace tokenizer.json
//   - tiktoken: OpenAI BPE encodings (cl100k_base, p50k_base), kept as the
//     fallback family for identifiers that name an encoding instead of a
//     model directory
//
// WordPiece additionally reports byte offsets for every token, which the
// detection pipeline needs to map per-token labels back to input spans.
//
// Example usage:
//
//	tok, err := tokenizer.AutoLoadTokenizer("/path/to/snapshot")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tokens, err := tok.Encode("Patient John Doe, MRN 1234567.")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	text, err := tok.Decode(tokens)
//	if err != nil {
//	    log.Fatal(err)
//	}
package tokenizer
