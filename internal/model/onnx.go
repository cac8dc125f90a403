//go:build !windows

package model

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Environment variables naming the ONNX Runtime shared library.
const (
	envORTLibrary       = "PIISEC_ORT_LIBRARY"
	envORTLibraryShared = "ONNXRUNTIME_SHARED_LIBRARY_PATH"
)

// Session input and output names used by exported token-classification
// models.
const (
	inputIDs       = "input_ids"
	inputMask      = "attention_mask"
	inputTypeIDs   = "token_type_ids"
	outputLogits   = "logits"
	fallbackOutput = "output"
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// initRuntime initializes the process-wide ONNX Runtime environment exactly
// once. The shared library path comes from PIISEC_ORT_LIBRARY or
// ONNXRUNTIME_SHARED_LIBRARY_PATH; without either the bindings fall back to
// their platform default name.
func initRuntime() error {
	ortInitOnce.Do(func() {
		if ort.IsInitialized() {
			return
		}
		for _, name := range []string{envORTLibrary, envORTLibraryShared} {
			if path := strings.TrimSpace(os.Getenv(name)); path != "" {
				ort.SetSharedLibraryPath(path)
				break
			}
		}
		if err := ort.InitializeEnvironment(); err != nil {
			ortInitErr = fmt.Errorf("%w: %v", ErrNoRuntime, err)
		}
	})
	return ortInitErr
}

// ONNXModel is a TokenClassifier backed by an ONNX Runtime session.
//
// One session is created per handle and held until Close. Forward is safe
// for concurrent use; the runtime serializes or parallelizes internally.
type ONNXModel struct {
	session    *ort.DynamicAdvancedSession
	inputNames []string
	outputName string
	labels     *LabelSet
	maxSeq     int

	mu     sync.RWMutex
	closed bool
}

// NewONNXModel opens a token-classification session from a model file and
// its parsed configuration.
func NewONNXModel(modelPath string, cfg *Config) (*ONNXModel, error) {
	if err := initRuntime(); err != nil {
		return nil, err
	}

	labels, err := LabelsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect model inputs: %w", err)
	}

	inputNames, err := orderInputs(inputs)
	if err != nil {
		return nil, err
	}
	outputName := pickOutput(outputs)

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, []string{outputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("open model session: %w", err)
	}

	return &ONNXModel{
		session:    session,
		inputNames: inputNames,
		outputName: outputName,
		labels:     labels,
		maxSeq:     cfg.MaxSequenceLength(),
	}, nil
}

// orderInputs keeps the canonical feed order regardless of how the exporter
// ordered the graph inputs. token_type_ids is optional.
func orderInputs(infos []ort.InputOutputInfo) ([]string, error) {
	present := make(map[string]bool, len(infos))
	for _, info := range infos {
		present[info.Name] = true
	}
	if !present[inputIDs] || !present[inputMask] {
		names := make([]string, len(infos))
		for i, info := range infos {
			names[i] = info.Name
		}
		return nil, fmt.Errorf("model inputs %v lack %s/%s", names, inputIDs, inputMask)
	}

	ordered := []string{inputIDs, inputMask}
	if present[inputTypeIDs] {
		ordered = append(ordered, inputTypeIDs)
	}
	return ordered, nil
}

// pickOutput prefers the conventional logits output name.
func pickOutput(infos []ort.InputOutputInfo) string {
	for _, info := range infos {
		if info.Name == outputLogits {
			return info.Name
		}
	}
	for _, info := range infos {
		if info.Name == fallbackOutput {
			return info.Name
		}
	}
	if len(infos) > 0 {
		return infos[0].Name
	}
	return outputLogits
}

// Forward runs one padded batch through the session.
func (m *ONNXModel) Forward(ctx context.Context, batch *Batch) (*Logits, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, cols := batch.Size(), batch.SeqLen()
	shape := ort.NewShape(int64(rows), int64(cols))

	inputs := make([]ort.Value, 0, len(m.inputNames))
	destroyAll := func(values []ort.Value) {
		for _, v := range values {
			if v != nil {
				_ = v.Destroy()
			}
		}
	}
	defer func() { destroyAll(inputs) }()

	for _, name := range m.inputNames {
		var data []int64
		switch name {
		case inputIDs:
			data = flatten64(batch.IDs)
		case inputMask:
			data = flatten64(batch.Mask)
		case inputTypeIDs:
			data = make([]int64, rows*cols)
		}
		t, err := ort.NewTensor(shape, data)
		if err != nil {
			return nil, fmt.Errorf("build %s tensor: %w", name, err)
		}
		inputs = append(inputs, t)
	}

	outputs := []ort.Value{nil}
	if err := m.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("run model session: %w", err)
	}
	defer destroyAll(outputs)

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("%w: output is not float32", ErrBadOutput)
	}

	dims := out.GetShape()
	if len(dims) != 3 || int(dims[0]) != rows || int(dims[1]) != cols {
		return nil, fmt.Errorf("%w: got %v, want [%d %d labels]", ErrBadOutput, dims, rows, cols)
	}
	nLabels := int(dims[2])
	if nLabels != m.labels.Len() {
		return nil, fmt.Errorf("%w: %d label scores for %d labels", ErrBadOutput, nLabels, m.labels.Len())
	}

	// The output buffer dies with the tensor, so hand back a copy.
	data := make([]float32, len(out.GetData()))
	copy(data, out.GetData())

	return &Logits{Data: data, Batch: rows, SeqLen: cols, NLabels: nLabels}, nil
}

// Labels returns the label set the model was trained with.
func (m *ONNXModel) Labels() *LabelSet {
	return m.labels
}

// MaxSequenceLength returns the longest token sequence the model accepts.
func (m *ONNXModel) MaxSequenceLength() int {
	return m.maxSeq
}

// Close releases the session. Further Forward calls fail with ErrClosed.
func (m *ONNXModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.session.Destroy()
}

// flatten64 widens a rectangular int32 matrix into the row-major int64 feed
// the runtime expects.
func flatten64(rows [][]int32) []int64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]int64, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		for _, v := range row {
			out = append(out, int64(v))
		}
	}
	return out
}
