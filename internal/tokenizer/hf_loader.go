package tokenizer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact filenames a model snapshot can declare its tokenizer in.
const (
	tokenizerFilename       = "tokenizer.json"
	vocabFilename           = "vocab.txt"
	tokenizerConfigFilename = "tokenizer_config.json"
)

// HFTokenizerType identifies the tokenizer implementation type.
type HFTokenizerType string

const (
	// HFTypeBPE indicates Byte-Pair Encoding tokenizer.
	HFTypeBPE HFTokenizerType = "BPE"

	// HFTypeWordPiece indicates WordPiece tokenizer (BERT-style).
	HFTypeWordPiece HFTokenizerType = "WordPiece"

	// HFTypeUnigram indicates Unigram tokenizer (SentencePiece-style).
	HFTypeUnigram HFTokenizerType = "Unigram"

	// HFTypeUnknown indicates an unknown or unsupported tokenizer type.
	HFTypeUnknown HFTokenizerType = "Unknown"
)

// hfTokenizerFile mirrors the parts of tokenizer.json the loaders consume.
type hfTokenizerFile struct {
	Normalizer *struct {
		Type      string `json:"type"`
		Lowercase bool   `json:"lowercase"`
	} `json:"normalizer"`
	Model struct {
		Type                    string           `json:"type"`
		UnkToken                string           `json:"unk_token"`
		ContinuingSubwordPrefix string           `json:"continuing_subword_prefix"`
		Vocab                   map[string]int32 `json:"vocab"`
		Merges                  []string         `json:"merges"`
	} `json:"model"`
	AddedTokens []struct {
		ID      int32  `json:"id"`
		Content string `json:"content"`
		Special bool   `json:"special"`
	} `json:"added_tokens"`
}

// tokenizerConfig mirrors the parts of tokenizer_config.json the loaders
// consume.
type tokenizerConfig struct {
	// Pointer so an absent key is distinguishable from an explicit false;
	// only a present key overrides the casing chosen elsewhere.
	DoLowerCase *bool  `json:"do_lower_case"`
	ClsToken    string `json:"cls_token"`
	SepToken    string `json:"sep_token"`
	PadToken    string `json:"pad_token"`
	UnkToken    string `json:"unk_token"`
}

// DetectHFTokenizerType determines the tokenizer type from tokenizer.json.
func DetectHFTokenizerType(path string) (HFTokenizerType, error) {
	//nolint:gosec // G304: loading a tokenizer from a snapshot path is intentional.
	data, err := os.ReadFile(path)
	if err != nil {
		return HFTypeUnknown, fmt.Errorf("read %s: %w", tokenizerFilename, err)
	}

	var file hfTokenizerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return HFTypeUnknown, fmt.Errorf("parse %s: %w", tokenizerFilename, err)
	}

	switch file.Model.Type {
	case "BPE":
		return HFTypeBPE, nil
	case "WordPiece":
		return HFTypeWordPiece, nil
	case "Unigram":
		return HFTypeUnigram, nil
	default:
		return HFTypeUnknown, nil
	}
}

// LoadFromHuggingFace loads a tokenizer from a model snapshot directory.
//
// The directory should contain tokenizer.json, or vocab.txt for bare
// BERT-style artifacts. tokenizer_config.json refines special tokens and
// case folding when present.
func LoadFromHuggingFace(modelPath string) (Tokenizer, error) {
	tokenizerPath := filepath.Join(modelPath, tokenizerFilename)
	if _, err := os.Stat(tokenizerPath); err != nil {
		// Fall back to a bare vocab.txt artifact.
		vocabPath := filepath.Join(modelPath, vocabFilename)
		if _, verr := os.Stat(vocabPath); verr != nil {
			return nil, fmt.Errorf("no %s or %s in %s", tokenizerFilename, vocabFilename, modelPath)
		}
		return LoadWordPieceFromVocab(vocabPath, filepath.Join(modelPath, tokenizerConfigFilename))
	}

	kind, err := DetectHFTokenizerType(tokenizerPath)
	if err != nil {
		return nil, err
	}

	switch kind {
	case HFTypeBPE:
		return LoadBPEFromHuggingFace(tokenizerPath)
	case HFTypeWordPiece:
		return LoadWordPieceFromHuggingFace(tokenizerPath, filepath.Join(modelPath, tokenizerConfigFilename))
	case HFTypeUnigram:
		return nil, fmt.Errorf("unigram tokenizer not yet implemented (requires SentencePiece)")
	default:
		return nil, fmt.Errorf("unknown tokenizer type in %s", tokenizerPath)
	}
}

// LoadWordPieceFromHuggingFace loads a WordPiece tokenizer from
// tokenizer.json, refined by tokenizer_config.json when it exists.
func LoadWordPieceFromHuggingFace(tokenizerPath, configPath string) (*WordPiece, error) {
	//nolint:gosec // G304: loading a tokenizer from a snapshot path is intentional.
	data, err := os.ReadFile(tokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", tokenizerFilename, err)
	}

	var file hfTokenizerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", tokenizerFilename, err)
	}
	if file.Model.Type != string(HFTypeWordPiece) {
		return nil, fmt.Errorf("expected WordPiece model, got %q", file.Model.Type)
	}

	cfg := WordPieceConfig{
		ContinuingPrefix: file.Model.ContinuingSubwordPrefix,
		UnkToken:         file.Model.UnkToken,
	}
	if file.Normalizer != nil {
		cfg.Lowercase = file.Normalizer.Lowercase
	}
	applyTokenizerConfig(&cfg, configPath)

	return NewWordPiece(file.Model.Vocab, cfg)
}

// LoadWordPieceFromVocab loads a WordPiece tokenizer from a vocab.txt file,
// one token per line, line number as ID.
func LoadWordPieceFromVocab(vocabPath, configPath string) (*WordPiece, error) {
	//nolint:gosec // G304: loading a tokenizer from a snapshot path is intentional.
	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", vocabFilename, err)
	}
	defer f.Close()

	vocab := make(map[string]int32)
	scanner := bufio.NewScanner(f)
	var id int32
	for scanner.Scan() {
		vocab[scanner.Text()] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", vocabFilename, err)
	}

	// Bare vocab.txt artifacts are uncased unless the config says otherwise.
	cfg := WordPieceConfig{Lowercase: true}
	applyTokenizerConfig(&cfg, configPath)

	return NewWordPiece(vocab, cfg)
}

// applyTokenizerConfig overlays tokenizer_config.json onto cfg. A missing or
// unreadable config file leaves cfg untouched.
func applyTokenizerConfig(cfg *WordPieceConfig, configPath string) {
	//nolint:gosec // G304: loading a tokenizer from a snapshot path is intentional.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return
	}
	var tc tokenizerConfig
	if err := json.Unmarshal(data, &tc); err != nil {
		return
	}

	if tc.DoLowerCase != nil {
		cfg.Lowercase = *tc.DoLowerCase
	}
	if tc.ClsToken != "" {
		cfg.ClsToken = tc.ClsToken
	}
	if tc.SepToken != "" {
		cfg.SepToken = tc.SepToken
	}
	if tc.PadToken != "" {
		cfg.PadToken = tc.PadToken
	}
	if tc.UnkToken != "" {
		cfg.UnkToken = tc.UnkToken
	}
}

// LoadBPEFromHuggingFace loads a BPE tokenizer from tokenizer.json. Merge
// rules are two space-separated symbols per entry; malformed entries are
// skipped. Added tokens marked special are mapped onto BOS/EOS/PAD/UNK by
// their conventional names.
func LoadBPEFromHuggingFace(tokenizerPath string) (*BPETokenizer, error) {
	//nolint:gosec // G304: loading a tokenizer from a snapshot path is intentional.
	data, err := os.ReadFile(tokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", tokenizerFilename, err)
	}

	var file hfTokenizerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", tokenizerFilename, err)
	}
	if file.Model.Type != string(HFTypeBPE) {
		return nil, fmt.Errorf("expected BPE model, got %q", file.Model.Type)
	}

	merges := make([]pair, 0, len(file.Model.Merges))
	for _, m := range file.Model.Merges {
		parts := strings.Fields(m)
		if len(parts) == 2 {
			merges = append(merges, pair{parts[0], parts[1]})
		}
	}

	tok := NewBPETokenizer(file.Model.Vocab, merges)

	bos, eos, pad, unk := int32(-1), int32(-1), int32(-1), int32(-1)
	for _, added := range file.AddedTokens {
		if !added.Special {
			continue
		}
		switch added.Content {
		case "<s>", "[CLS]", "<bos>":
			bos = added.ID
		case "</s>", "[SEP]", "<eos>":
			eos = added.ID
		case "<pad>", "[PAD]":
			pad = added.ID
		case "<unk>", "[UNK]":
			unk = added.ID
		}
	}
	if unk < 0 && file.Model.UnkToken != "" {
		if id, ok := file.Model.Vocab[file.Model.UnkToken]; ok {
			unk = id
		}
	}
	tok.SetSpecialTokens(bos, eos, pad, unk)

	return tok, nil
}

// TryLoadTikToken attempts to load a tiktoken-compatible tokenizer.
//
// This is a fallback for identifiers that name OpenAI-style tokenizers.
func TryLoadTikToken(modelName string) (Tokenizer, error) {
	// Map common model names to tiktoken encodings.
	encodingMap := map[string]string{
		"gpt-4":                  "cl100k_base",
		"gpt-3.5-turbo":          "cl100k_base",
		"gpt-3":                  "p50k_base",
		"text-davinci-003":       "p50k_base",
		"text-embedding-ada-002": "cl100k_base",
	}

	if encoding, ok := encodingMap[modelName]; ok {
		return NewTikToken(encoding)
	}

	// Try to use the model name directly.
	return NewTikTokenForModel(modelName)
}

// AutoLoadTokenizer attempts to automatically load the correct tokenizer.
//
// It tries multiple strategies:
//  1. Load from a model snapshot directory (tokenizer.json or vocab.txt)
//  2. Load tiktoken by model name
//  3. Load tiktoken by encoding name
func AutoLoadTokenizer(pathOrName string) (Tokenizer, error) {
	// Strategy 1: Try as a model snapshot directory.
	if info, err := os.Stat(pathOrName); err == nil && info.IsDir() {
		tok, err := LoadFromHuggingFace(pathOrName)
		if err == nil {
			return tok, nil
		}
	}

	// Strategy 2: Try as a tiktoken model name.
	if tok, err := TryLoadTikToken(pathOrName); err == nil {
		return tok, nil
	}

	// Strategy 3: Try as a tiktoken encoding name.
	if tok, err := NewTikToken(pathOrName); err == nil {
		return tok, nil
	}

	return nil, fmt.Errorf("failed to auto-load tokenizer from %q", pathOrName)
}
