package loader

import (
	"fmt"
	"strings"

	"github.com/piisec/piisec-go/internal/model"
)

// Inspection reads the safetensors weights without loading a session. The
// one domain-specific check an implementer can run against the artifact is
// that the classifier head is sized for the declared label set.

// classifierWeightSuffix names the token-classification head in BERT-family
// exports.
const classifierWeightSuffix = "classifier.weight"

// FindClassifierHead returns the name of the classifier head weight tensor.
func FindClassifierHead(r *SafeTensorsReader) (string, error) {
	for _, name := range r.TensorNames() {
		if strings.HasSuffix(name, classifierWeightSuffix) {
			return name, nil
		}
	}
	return "", ErrNoClassifier
}

// VerifyLabelHead checks that the classifier head of a safetensors weights
// file has exactly one output row per label. A mismatch means the config and
// the weights come from different artifacts.
func VerifyLabelHead(path string, labels *model.LabelSet) error {
	r, err := NewSafeTensorsReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	name, err := FindClassifierHead(r)
	if err != nil {
		return err
	}
	info, err := r.TensorInfo(name)
	if err != nil {
		return err
	}

	if len(info.Shape) != 2 {
		return fmt.Errorf("%w: head %q has shape %v", ErrLabelMismatch, name, info.Shape)
	}
	if info.Shape[0] != labels.Len() {
		return fmt.Errorf("%w: head %q has %d rows for %d labels",
			ErrLabelMismatch, name, info.Shape[0], labels.Len())
	}

	// The bias, when present, must agree with the weight.
	biasName := strings.TrimSuffix(name, ".weight") + ".bias"
	if biasInfo, err := r.TensorInfo(biasName); err == nil {
		if len(biasInfo.Shape) != 1 || biasInfo.Shape[0] != labels.Len() {
			return fmt.Errorf("%w: bias %q has shape %v for %d labels",
				ErrLabelMismatch, biasName, biasInfo.Shape, labels.Len())
		}
	}
	return nil
}
