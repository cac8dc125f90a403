package tokenizer

import (
	"fmt"
	"strings"
	"unicode"
)

// Default WordPiece tokens and limits, matching the BERT conventions the
// hosted artifacts use.
const (
	defaultContinuingPrefix = "##"
	defaultMaxCharsPerWord  = 100

	tokenCLS = "[CLS]"
	tokenSEP = "[SEP]"
	tokenPAD = "[PAD]"
	tokenUNK = "[UNK]"
)

// WordPieceConfig configures a WordPiece tokenizer.
type WordPieceConfig struct {
	// Lowercase folds input before vocabulary lookup. Offsets always refer
	// to the original bytes.
	Lowercase bool

	// ContinuingPrefix marks non-initial subwords. Defaults to "##".
	ContinuingPrefix string

	// MaxCharsPerWord caps the length of a word before it is mapped to the
	// unknown token wholesale. Defaults to 100.
	MaxCharsPerWord int

	// Special token strings. Empty values fall back to the BERT defaults;
	// tokens absent from the vocabulary resolve to -1.
	ClsToken string
	SepToken string
	PadToken string
	UnkToken string
}

// WordPiece implements greedy longest-match-first subword tokenization with
// byte offset tracking.
//
// The tokenizer is immutable after construction and safe for concurrent use.
type WordPiece struct {
	vocab            map[string]int32
	reverseVocab     map[int32]string
	continuingPrefix string
	lowercase        bool
	maxCharsPerWord  int

	clsToken      int32
	sepToken      int32
	padToken      int32
	unkToken      int32
	specialTokens map[int32]bool
}

// NewWordPiece creates a WordPiece tokenizer from a vocabulary.
func NewWordPiece(vocab map[string]int32, cfg WordPieceConfig) (*WordPiece, error) {
	if len(vocab) == 0 {
		return nil, fmt.Errorf("wordpiece: empty vocabulary")
	}

	if cfg.ContinuingPrefix == "" {
		cfg.ContinuingPrefix = defaultContinuingPrefix
	}
	if cfg.MaxCharsPerWord <= 0 {
		cfg.MaxCharsPerWord = defaultMaxCharsPerWord
	}
	if cfg.ClsToken == "" {
		cfg.ClsToken = tokenCLS
	}
	if cfg.SepToken == "" {
		cfg.SepToken = tokenSEP
	}
	if cfg.PadToken == "" {
		cfg.PadToken = tokenPAD
	}
	if cfg.UnkToken == "" {
		cfg.UnkToken = tokenUNK
	}

	reverseVocab := make(map[int32]string, len(vocab))
	for token, id := range vocab {
		reverseVocab[id] = token
	}

	w := &WordPiece{
		vocab:            vocab,
		reverseVocab:     reverseVocab,
		continuingPrefix: cfg.ContinuingPrefix,
		lowercase:        cfg.Lowercase,
		maxCharsPerWord:  cfg.MaxCharsPerWord,
		clsToken:         lookupOr(vocab, cfg.ClsToken, -1),
		sepToken:         lookupOr(vocab, cfg.SepToken, -1),
		padToken:         lookupOr(vocab, cfg.PadToken, -1),
		unkToken:         lookupOr(vocab, cfg.UnkToken, -1),
		specialTokens:    make(map[int32]bool),
	}

	for _, id := range []int32{w.clsToken, w.sepToken, w.padToken, w.unkToken} {
		if id >= 0 {
			w.specialTokens[id] = true
		}
	}

	if w.unkToken < 0 {
		return nil, fmt.Errorf("wordpiece: unknown token %q not in vocabulary", cfg.UnkToken)
	}
	return w, nil
}

func lookupOr(vocab map[string]int32, token string, fallback int32) int32 {
	if id, ok := vocab[token]; ok {
		return id
	}
	return fallback
}

// wordSpan is one pre-tokenized word as a byte range of the input.
type wordSpan struct {
	start int
	end   int
}

// preTokenize splits text into words on unicode whitespace, with every
// punctuation rune as its own word, tracking byte offsets.
func preTokenize(text string) []wordSpan {
	var words []wordSpan
	wordStart := -1

	flush := func(end int) {
		if wordStart >= 0 {
			words = append(words, wordSpan{start: wordStart, end: end})
			wordStart = -1
		}
	}

	for i, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush(i)
		case isPunctuation(r):
			flush(i)
			words = append(words, wordSpan{start: i, end: i + len(string(r))})
		default:
			if wordStart < 0 {
				wordStart = i
			}
		}
	}
	flush(len(text))
	return words
}

// isPunctuation mirrors the BERT basic tokenizer: unicode punctuation and
// symbols split into single-rune words.
func isPunctuation(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// EncodeWithOffsets converts text to a full encoding. The result is wrapped
// in [CLS] and [SEP] when both are present in the vocabulary.
func (w *WordPiece) EncodeWithOffsets(text string) (*Encoding, error) {
	enc := &Encoding{}

	wrap := w.clsToken >= 0 && w.sepToken >= 0
	if wrap {
		enc.append(w.clsToken, Span{}, true)
	}

	for _, word := range preTokenize(text) {
		w.encodeWord(text, word, enc)
	}

	if wrap {
		enc.append(w.sepToken, Span{}, true)
	}
	return enc, nil
}

// encodeWord appends the subword tokens of one pre-tokenized word. A word
// with no valid decomposition becomes a single unknown token covering the
// whole word.
func (w *WordPiece) encodeWord(text string, word wordSpan, enc *Encoding) {
	raw := text[word.start:word.end]

	// Rune views of the word: the original byte offset of each rune, plus
	// the (optionally lowercased) runes used for vocabulary lookup. Offsets
	// always index the original bytes, so case folding that changes byte
	// length cannot skew spans.
	offsets := make([]int, 0, len(raw))
	runes := make([]rune, 0, len(raw))
	for i, r := range raw {
		offsets = append(offsets, word.start+i)
		if w.lowercase {
			r = unicode.ToLower(r)
		}
		runes = append(runes, r)
	}
	offsets = append(offsets, word.end)

	if len(runes) > w.maxCharsPerWord {
		enc.append(w.unkToken, Span{Start: word.start, End: word.end}, false)
		return
	}

	var pieces []int32
	var spans []Span

	start := 0
	for start < len(runes) {
		end := len(runes)
		id := int32(-1)
		for end > start {
			sub := string(runes[start:end])
			if start > 0 {
				sub = w.continuingPrefix + sub
			}
			if found, ok := w.vocab[sub]; ok {
				id = found
				break
			}
			end--
		}
		if id < 0 {
			// No decomposition: the whole word is unknown.
			enc.append(w.unkToken, Span{Start: word.start, End: word.end}, false)
			return
		}
		pieces = append(pieces, id)
		spans = append(spans, Span{Start: offsets[start], End: offsets[end]})
		start = end
	}

	for i := range pieces {
		enc.append(pieces[i], spans[i], false)
	}
}

func (e *Encoding) append(id int32, span Span, special bool) {
	e.IDs = append(e.IDs, id)
	e.Offsets = append(e.Offsets, span)
	e.Special = append(e.Special, special)
}

// Encode converts text to token IDs.
func (w *WordPiece) Encode(text string) ([]int32, error) {
	enc, err := w.EncodeWithOffsets(text)
	if err != nil {
		return nil, err
	}
	return enc.IDs, nil
}

// Decode converts token IDs back to text. Special tokens are dropped and
// continuing subwords are joined to their predecessor.
func (w *WordPiece) Decode(tokens []int32) (string, error) {
	var sb strings.Builder
	first := true
	for _, id := range tokens {
		if w.specialTokens[id] {
			continue
		}
		token, ok := w.reverseVocab[id]
		if !ok {
			return "", fmt.Errorf("wordpiece: unknown token ID %d", id)
		}
		if cont, found := strings.CutPrefix(token, w.continuingPrefix); found {
			sb.WriteString(cont)
			continue
		}
		if !first {
			sb.WriteByte(' ')
		}
		sb.WriteString(token)
		first = false
	}
	return sb.String(), nil
}

// VocabSize returns the total vocabulary size.
func (w *WordPiece) VocabSize() int {
	return len(w.vocab)
}

// BosToken returns the [CLS] token ID, the sequence opener in this family.
func (w *WordPiece) BosToken() int32 {
	return w.clsToken
}

// EosToken returns the [SEP] token ID, the sequence closer in this family.
func (w *WordPiece) EosToken() int32 {
	return w.sepToken
}

// PadToken returns the padding token ID.
func (w *WordPiece) PadToken() int32 {
	return w.padToken
}

// UnkToken returns the unknown token ID.
func (w *WordPiece) UnkToken() int32 {
	return w.unkToken
}

// IsSpecialToken checks if a token ID is a special token.
func (w *WordPiece) IsSpecialToken(token int32) bool {
	return w.specialTokens[token]
}
