package tokenizer

import (
	"context"
	"fmt"

	"github.com/piisec/piisec-go/internal/hub"
)

// FromPretrained loads the tokenizer of a hosted model by identifier.
//
// The tokenizer artifacts (tokenizer.json, or vocab.txt plus
// tokenizer_config.json) are fetched into the local snapshot cache, then
// loaded with the usual auto-detection. An identifier that resolves to no
// tokenizer artifact at all falls through to the tiktoken strategies, so
// plain encoding names keep working.
func FromPretrained(ctx context.Context, id string, opts ...hub.Option) (Tokenizer, error) {
	client, err := hub.New(opts...)
	if err != nil {
		return nil, err
	}
	return FromRepo(ctx, client.Repo(id))
}

// FromRepo loads the tokenizer from an already configured repo.
func FromRepo(ctx context.Context, repo *hub.Repo) (Tokenizer, error) {
	found := false
	for _, name := range []string{tokenizerFilename, vocabFilename, tokenizerConfigFilename} {
		path, err := repo.TryGet(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("fetch tokenizer artifacts for %s: %w", repo.ID(), err)
		}
		if path != "" && name != tokenizerConfigFilename {
			found = true
		}
	}

	if !found {
		// No tokenizer artifact hosted under this identifier; treat the
		// identifier itself as a tokenizer name.
		return AutoLoadTokenizer(repo.ID())
	}
	return LoadFromHuggingFace(repo.Dir())
}
