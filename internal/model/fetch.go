package model

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/piisec/piisec-go/internal/hub"
)

// weightsFilename is the artifact file holding the exported model graph.
const weightsFilename = "model.onnx"

// FromPretrained loads the model handle of a hosted model by identifier.
//
// config.json and model.onnx are fetched into the local snapshot cache, then
// a session is opened over the snapshot.
func FromPretrained(ctx context.Context, id string, opts ...hub.Option) (TokenClassifier, error) {
	client, err := hub.New(opts...)
	if err != nil {
		return nil, err
	}
	return FromRepo(ctx, client.Repo(id))
}

// FromRepo loads the model handle from an already configured repo.
func FromRepo(ctx context.Context, repo *hub.Repo) (TokenClassifier, error) {
	dir, err := repo.Snapshot(ctx, configFilename, weightsFilename)
	if err != nil {
		return nil, fmt.Errorf("fetch model artifacts for %s: %w", repo.ID(), err)
	}
	return FromSnapshot(dir)
}

// FromSnapshot opens the model handle over a local snapshot directory
// holding config.json and model.onnx.
func FromSnapshot(dir string) (TokenClassifier, error) {
	cfg, err := LoadConfig(filepath.Join(dir, configFilename))
	if err != nil {
		return nil, err
	}
	return NewONNXModel(filepath.Join(dir, weightsFilename), cfg)
}
