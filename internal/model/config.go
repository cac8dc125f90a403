package model

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// configFilename is the artifact file holding the model configuration.
const configFilename = "config.json"

// defaultMaxSequenceLength applies when the config declares no position
// limit.
const defaultMaxSequenceLength = 512

// Config mirrors the parts of config.json the handle consumes.
type Config struct {
	ModelType             string            `json:"model_type"`
	Architectures         []string          `json:"architectures"`
	ID2Label              map[string]string `json:"id2label"`
	Label2ID              map[string]int    `json:"label2id"`
	MaxPositionEmbeddings int               `json:"max_position_embeddings"`
	VocabSize             int               `json:"vocab_size"`
	PadTokenID            int32             `json:"pad_token_id"`
}

// LoadConfig reads and parses config.json from a snapshot directory file.
func LoadConfig(path string) (*Config, error) {
	//nolint:gosec // G304: loading a model config from a snapshot path is intentional.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", configFilename, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFilename, err)
	}
	return &cfg, nil
}

// MaxSequenceLength returns the position limit, with the BERT default when
// the config is silent.
func (c *Config) MaxSequenceLength() int {
	if c.MaxPositionEmbeddings > 0 {
		return c.MaxPositionEmbeddings
	}
	return defaultMaxSequenceLength
}

// LabelSet is the dense id-to-label table of a token-classification model.
//
// Labels may be plain (O, NAME, SSN) or BIO-tagged (O, B-NAME, I-NAME);
// Entity strips the scheme prefix so callers always see the entity kind.
type LabelSet struct {
	labels  []string
	index   map[string]int
	outside int
}

// outsideLabels are the spellings of the implicit "none" label.
var outsideLabels = map[string]bool{"O": true, "": true, "none": true, "OUTSIDE": true}

// DefaultLabels returns the documented label set: the outside label plus the
// four declared entity labels.
func DefaultLabels() *LabelSet {
	ls, err := NewLabelSet([]string{"O", "NAME", "SSN", "MRN", "ADDRESS"})
	if err != nil {
		panic("model: default label set invalid: " + err.Error())
	}
	return ls
}

// NewLabelSet builds a label set from a dense id-ordered list.
func NewLabelSet(labels []string) (*LabelSet, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("label set: no labels")
	}

	ls := &LabelSet{
		labels:  labels,
		index:   make(map[string]int, len(labels)),
		outside: -1,
	}
	for i, label := range labels {
		if _, dup := ls.index[label]; dup {
			return nil, fmt.Errorf("label set: duplicate label %q", label)
		}
		ls.index[label] = i
		if outsideLabels[label] && ls.outside < 0 {
			ls.outside = i
		}
	}
	if ls.outside < 0 {
		return nil, fmt.Errorf("label set: no outside label among %v", labels)
	}
	return ls, nil
}

// LabelsFromConfig builds the label set from the id2label table, requiring
// dense ids 0..n-1.
func LabelsFromConfig(cfg *Config) (*LabelSet, error) {
	if len(cfg.ID2Label) == 0 {
		return nil, fmt.Errorf("label set: config declares no id2label table")
	}

	type entry struct {
		id    int
		label string
	}
	entries := make([]entry, 0, len(cfg.ID2Label))
	for key, label := range cfg.ID2Label {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("label set: non-numeric label id %q", key)
		}
		entries = append(entries, entry{id: id, label: label})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	labels := make([]string, len(entries))
	for i, e := range entries {
		if e.id != i {
			return nil, fmt.Errorf("label set: id2label ids are not dense at %d", e.id)
		}
		labels[i] = e.label
	}
	return NewLabelSet(labels)
}

// Len returns the number of labels, outside included.
func (ls *LabelSet) Len() int {
	return len(ls.labels)
}

// Label returns the raw label string for an id.
func (ls *LabelSet) Label(id int) string {
	return ls.labels[id]
}

// Labels returns the raw labels in id order.
func (ls *LabelSet) Labels() []string {
	out := make([]string, len(ls.labels))
	copy(out, ls.labels)
	return out
}

// ID returns the id of a raw label, or -1 when absent.
func (ls *LabelSet) ID(label string) int {
	if id, ok := ls.index[label]; ok {
		return id
	}
	return -1
}

// IsOutside reports whether an id is the implicit "none" label.
func (ls *LabelSet) IsOutside(id int) bool {
	return id == ls.outside
}

// Entity strips a BIO scheme prefix from a label id and reports whether the
// label explicitly begins a new entity (a B- tag). Plain label sets report
// begin=false so adjacent same-kind tokens merge; the outside label yields an
// empty kind.
func (ls *LabelSet) Entity(id int) (kind string, begin bool) {
	if ls.IsOutside(id) {
		return "", false
	}
	label := ls.labels[id]
	switch {
	case strings.HasPrefix(label, "B-"):
		return label[2:], true
	case strings.HasPrefix(label, "I-"):
		return label[2:], false
	default:
		return label, false
	}
}

// EntityKinds returns the distinct entity kinds, scheme prefixes stripped,
// in first-seen id order.
func (ls *LabelSet) EntityKinds() []string {
	var kinds []string
	seen := make(map[string]bool)
	for id := range ls.labels {
		kind, _ := ls.Entity(id)
		if kind == "" || seen[kind] {
			continue
		}
		seen[kind] = true
		kinds = append(kinds, kind)
	}
	return kinds
}
