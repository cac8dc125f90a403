package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piisec/piisec-go/internal/model"
)

func TestVerifyLabelHead(t *testing.T) {
	labels := model.DefaultLabels() // 5 labels: O + 4 entities.

	tests := []struct {
		name    string
		tensors map[string]tensorFixture
		wantErr error
	}{
		{
			name: "matching head",
			tensors: map[string]tensorFixture{
				"classifier.weight": {
					dtype: SafeTensorsF32,
					shape: []int{5, 4},
					data:  make([]byte, 5*4*4),
				},
				"classifier.bias": {
					dtype: SafeTensorsF32,
					shape: []int{5},
					data:  make([]byte, 5*4),
				},
			},
		},
		{
			name: "wrong row count",
			tensors: map[string]tensorFixture{
				"classifier.weight": {
					dtype: SafeTensorsF32,
					shape: []int{3, 4},
					data:  make([]byte, 3*4*4),
				},
			},
			wantErr: ErrLabelMismatch,
		},
		{
			name: "bias disagrees",
			tensors: map[string]tensorFixture{
				"classifier.weight": {
					dtype: SafeTensorsF32,
					shape: []int{5, 4},
					data:  make([]byte, 5*4*4),
				},
				"classifier.bias": {
					dtype: SafeTensorsF32,
					shape: []int{3},
					data:  make([]byte, 3*4),
				},
			},
			wantErr: ErrLabelMismatch,
		},
		{
			name: "no classifier head",
			tensors: map[string]tensorFixture{
				"embeddings.weight": {
					dtype: SafeTensorsF32,
					shape: []int{5, 4},
					data:  make([]byte, 5*4*4),
				},
			},
			wantErr: ErrNoClassifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSafeTensors(t, tt.tensors)

			err := VerifyLabelHead(path, labels)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFindClassifierHead_NestedName(t *testing.T) {
	path := writeSafeTensors(t, map[string]tensorFixture{
		"bert.classifier.weight": {
			dtype: SafeTensorsF32,
			shape: []int{5, 4},
			data:  make([]byte, 5*4*4),
		},
	})

	r, err := NewSafeTensorsReader(path)
	require.NoError(t, err)
	defer r.Close()

	name, err := FindClassifierHead(r)
	require.NoError(t, err)
	assert.Equal(t, "bert.classifier.weight", name)
}
