package tokenizer

import "fmt"

// pair is one byte-pair merge rule: two adjacent symbols that combine into
// their concatenation.
type pair struct {
	left  string
	right string
}

// BPETokenizer implements byte-pair encoding with byte offset tracking.
//
// Text is pre-tokenized the same way as WordPiece (whitespace split,
// punctuation isolated) so that token spans line up across tokenizer
// families. Within a word, adjacent symbols merge by rank until no rule
// applies; every surviving symbol keeps the byte span of the input it
// covers, which is what lets model predictions over BPE artifacts be
// mapped back onto the original text.
//
// Immutable after construction apart from SetSpecialTokens; safe for
// concurrent use once configured.
type BPETokenizer struct {
	vocab        map[string]int32
	reverseVocab map[int32]string
	ranks        map[pair]int

	bosToken int32
	eosToken int32
	padToken int32
	unkToken int32

	specialTokens map[int32]bool
}

// NewBPETokenizer creates a BPE tokenizer from a vocabulary and an ordered
// list of merge rules. Earlier merges take precedence.
func NewBPETokenizer(vocab map[string]int32, merges []pair) *BPETokenizer {
	reverseVocab := make(map[int32]string, len(vocab))
	for token, id := range vocab {
		reverseVocab[id] = token
	}
	ranks := make(map[pair]int, len(merges))
	for i, m := range merges {
		if _, seen := ranks[m]; !seen {
			ranks[m] = i
		}
	}
	return &BPETokenizer{
		vocab:         vocab,
		reverseVocab:  reverseVocab,
		ranks:         ranks,
		bosToken:      -1,
		eosToken:      -1,
		padToken:      -1,
		unkToken:      -1,
		specialTokens: make(map[int32]bool),
	}
}

// SetSpecialTokens configures the special token IDs. Negative IDs mean the
// token is absent.
func (b *BPETokenizer) SetSpecialTokens(bos, eos, pad, unk int32) {
	b.bosToken = bos
	b.eosToken = eos
	b.padToken = pad
	b.unkToken = unk
	for _, id := range []int32{bos, eos, pad, unk} {
		if id >= 0 {
			b.specialTokens[id] = true
		}
	}
}

// EncodeWithOffsets converts text into token IDs with the byte span each
// token covers in the original input. BOS and EOS wrap the sequence when
// configured; wrapper tokens carry an empty span and are flagged special.
func (b *BPETokenizer) EncodeWithOffsets(text string) (*Encoding, error) {
	enc := &Encoding{}
	if b.bosToken >= 0 {
		enc.append(b.bosToken, Span{}, true)
	}
	for _, word := range preTokenize(text) {
		b.encodeWord(text, word, enc)
	}
	if b.eosToken >= 0 {
		enc.append(b.eosToken, Span{}, true)
	}
	return enc, nil
}

// Encode converts text into token IDs.
func (b *BPETokenizer) Encode(text string) ([]int32, error) {
	enc, err := b.EncodeWithOffsets(text)
	if err != nil {
		return nil, err
	}
	return enc.IDs, nil
}

// encodeWord splits one word into runes, merges adjacent symbols by rank,
// and appends the surviving symbols with their spans. Symbols missing from
// the vocabulary become unknown tokens, or are dropped when no unknown
// token is configured.
func (b *BPETokenizer) encodeWord(text string, word wordSpan, enc *Encoding) {
	raw := text[word.start:word.end]

	var symbols []string
	var spans []Span
	for i, r := range raw {
		s := string(r)
		start := word.start + i
		symbols = append(symbols, s)
		spans = append(spans, Span{Start: start, End: start + len(s)})
	}

	for len(symbols) > 1 {
		best := -1
		bestRank := 0
		for i := 0; i < len(symbols)-1; i++ {
			rank, ok := b.ranks[pair{symbols[i], symbols[i+1]}]
			if ok && (best < 0 || rank < bestRank) {
				best = i
				bestRank = rank
			}
		}
		if best < 0 {
			break
		}
		symbols[best] += symbols[best+1]
		spans[best].End = spans[best+1].End
		symbols = append(symbols[:best+1], symbols[best+2:]...)
		spans = append(spans[:best+1], spans[best+2:]...)
	}

	for i, sym := range symbols {
		if id, ok := b.vocab[sym]; ok {
			enc.append(id, spans[i], false)
			continue
		}
		if b.unkToken >= 0 {
			enc.append(b.unkToken, spans[i], false)
		}
	}
}

// Decode converts token IDs back into text. Special tokens are skipped and
// unknown IDs render as the Unicode replacement character. Symbols carry
// their own spacing, as in byte-level vocabularies, so decoded words join
// without separators.
func (b *BPETokenizer) Decode(ids []int32) (string, error) {
	var out []byte
	for _, id := range ids {
		if b.specialTokens[id] {
			continue
		}
		token, ok := b.reverseVocab[id]
		if !ok {
			out = append(out, "�"...)
			continue
		}
		out = append(out, token...)
	}
	return string(out), nil
}

// VocabSize returns the number of entries in the vocabulary.
func (b *BPETokenizer) VocabSize() int { return len(b.vocab) }

// BosToken returns the beginning-of-sequence token ID, or -1 when absent.
func (b *BPETokenizer) BosToken() int32 { return b.bosToken }

// EosToken returns the end-of-sequence token ID, or -1 when absent.
func (b *BPETokenizer) EosToken() int32 { return b.eosToken }

// PadToken returns the padding token ID, or -1 when absent.
func (b *BPETokenizer) PadToken() int32 { return b.padToken }

// UnkToken returns the unknown token ID, or -1 when absent.
func (b *BPETokenizer) UnkToken() int32 { return b.unkToken }

// IsSpecialToken reports whether id is a configured special token.
func (b *BPETokenizer) IsSpecialToken(id int32) bool { return b.specialTokens[id] }

// TokenToID looks up the ID for a token string.
func (b *BPETokenizer) TokenToID(token string) (int32, error) {
	id, ok := b.vocab[token]
	if !ok {
		return -1, fmt.Errorf("token %q not in vocabulary", token)
	}
	return id, nil
}

// ExampleBPEVocab creates a small BPE tokenizer for tests and examples. It
// can compose the names "john" and "doe" from single letters and maps
// everything else to the unknown token.
func ExampleBPEVocab() *BPETokenizer {
	vocab := map[string]int32{
		"<unk>": 0,
		"j":     1,
		"o":     2,
		"h":     3,
		"n":     4,
		"d":     5,
		"e":     6,
		"jo":    7,
		"hn":    8,
		"do":    9,
		"john":  10,
		"doe":   11,
	}
	merges := []pair{
		{"j", "o"},
		{"h", "n"},
		{"jo", "hn"},
		{"d", "o"},
		{"do", "e"},
	}
	tok := NewBPETokenizer(vocab, merges)
	tok.SetSpecialTokens(-1, -1, -1, 0)
	return tok
}
