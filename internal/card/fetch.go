package card

import (
	"context"
	"fmt"
	"os"

	"github.com/piisec/piisec-go/internal/hub"
)

// cardFilename is the artifact file holding the model card.
const cardFilename = "README.md"

// FromPretrained fetches and parses the model card of a hosted model.
func FromPretrained(ctx context.Context, id string, opts ...hub.Option) (*Card, error) {
	client, err := hub.New(opts...)
	if err != nil {
		return nil, err
	}
	return FromRepo(ctx, client.Repo(id))
}

// FromRepo fetches and parses the model card from an already configured repo.
func FromRepo(ctx context.Context, repo *hub.Repo) (*Card, error) {
	path, err := repo.Get(ctx, cardFilename)
	if err != nil {
		return nil, fmt.Errorf("fetch model card: %w", err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is a cache location owned by this process.
	if err != nil {
		return nil, fmt.Errorf("read model card: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if c.ModelID == "" {
		c.ModelID = repo.ID()
	}
	return c, nil
}
