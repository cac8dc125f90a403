package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/piisec/piisec-go/internal/hub"
	"github.com/piisec/piisec-go/internal/model"
	"github.com/piisec/piisec-go/internal/tokenizer"
)

// Artifact files of a hosted model bundle. Weights and config are required
// for inference; the rest is fetched opportunistically so offline
// inspection and card rendering work from the same snapshot.
var (
	requiredArtifacts = []string{"config.json", "model.onnx"}
	optionalArtifacts = []string{
		"tokenizer.json", "vocab.txt", "tokenizer_config.json",
		"model.safetensors", "README.md",
	}
)

// Load resolves a model identifier into its tokenizer and model handles.
//
// Control flow is linear: resolve the identifier, fetch or revalidate the
// artifact bundle in the snapshot cache, open both handles over the same
// snapshot. Returning the pair from one call is what guarantees the handles
// share an identifier; failures from the hub or the artifact parsers
// propagate unwrapped beyond message context.
func Load(ctx context.Context, id string, opts ...hub.Option) (tokenizer.Tokenizer, model.TokenClassifier, error) {
	return LoadRevision(ctx, id, hub.DefaultRevision, opts...)
}

// LoadRevision is Load pinned to a revision instead of the default branch.
func LoadRevision(ctx context.Context, id, revision string, opts ...hub.Option) (tokenizer.Tokenizer, model.TokenClassifier, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil, ErrEmptyIdentifier
	}

	client, err := hub.New(opts...)
	if err != nil {
		return nil, nil, err
	}
	repo := client.RepoAt(id, revision)

	for _, name := range requiredArtifacts {
		if _, err := repo.Get(ctx, name); err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", id, err)
		}
	}
	for _, name := range optionalArtifacts {
		if _, err := repo.TryGet(ctx, name); err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", id, err)
		}
	}

	return LoadSnapshot(repo.Dir())
}

// LoadSnapshot opens both handles over a local snapshot directory. The
// directory must hold config.json, model.onnx, and a tokenizer artifact.
func LoadSnapshot(dir string) (tokenizer.Tokenizer, model.TokenClassifier, error) {
	tok, err := tokenizer.LoadFromHuggingFace(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load tokenizer: %w", err)
	}

	mdl, err := model.FromSnapshot(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load model: %w", err)
	}
	return tok, mdl, nil
}
