package loader

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tensorFixture is one tensor to place into a generated safetensors file.
type tensorFixture struct {
	dtype SafeTensorsDType
	shape []int
	data  []byte
}

// writeSafeTensors builds a minimal valid safetensors file.
func writeSafeTensors(t *testing.T, tensors map[string]tensorFixture) string {
	t.Helper()

	header := make(map[string]any, len(tensors)+1)
	var body []byte
	offset := int64(0)
	for name, fix := range tensors {
		end := offset + int64(len(fix.data))
		header[name] = map[string]any{
			"dtype":        string(fix.dtype),
			"shape":        fix.shape,
			"data_offsets": []int64{offset, end},
		}
		body = append(body, fix.data...)
		offset = end
	}
	header["__metadata__"] = map[string]string{"format": "pt"}

	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)

	var file []byte
	file = binary.LittleEndian.AppendUint64(file, uint64(len(headerJSON)))
	file = append(file, headerJSON...)
	file = append(file, body...)

	path := filepath.Join(t.TempDir(), "model.safetensors")
	require.NoError(t, os.WriteFile(path, file, 0o644))
	return path
}

func f32Bytes(values ...float32) []byte {
	var out []byte
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func u16Bytes(values ...uint16) []byte {
	var out []byte
	for _, v := range values {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

func TestSafeTensorsReader(t *testing.T) {
	path := writeSafeTensors(t, map[string]tensorFixture{
		"classifier.weight": {dtype: SafeTensorsF32, shape: []int{2, 3}, data: f32Bytes(1, 2, 3, 4, 5, 6)},
		"classifier.bias":   {dtype: SafeTensorsF32, shape: []int{2}, data: f32Bytes(0.5, -0.5)},
	})

	r, err := NewSafeTensorsReader(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"classifier.bias", "classifier.weight"}, r.TensorNames())
	assert.Equal(t, "pt", r.Metadata()["format"])

	info, err := r.TensorInfo("classifier.weight")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, info.Shape)
	assert.Equal(t, 6, info.Elements())

	values, err := r.TensorFloat32("classifier.weight")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, values)

	_, err = r.TensorInfo("missing")
	require.ErrorIs(t, err, ErrTensorNotFound)
}

func TestSafeTensorsReader_F16(t *testing.T) {
	// 1.0 = 0x3c00, -2.0 = 0xc000, 0.0 = 0x0000 in IEEE half precision.
	path := writeSafeTensors(t, map[string]tensorFixture{
		"t": {dtype: SafeTensorsF16, shape: []int{3}, data: u16Bytes(0x3c00, 0xc000, 0x0000)},
	})

	r, err := NewSafeTensorsReader(path)
	require.NoError(t, err)
	defer r.Close()

	values, err := r.TensorFloat32("t")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2, 0}, values)
}

func TestSafeTensorsReader_BF16(t *testing.T) {
	// bfloat16 is the top half of the float32 bit pattern.
	path := writeSafeTensors(t, map[string]tensorFixture{
		"t": {dtype: SafeTensorsBF16, shape: []int{2}, data: u16Bytes(0x3f80, 0xc000)},
	})

	r, err := NewSafeTensorsReader(path)
	require.NoError(t, err)
	defer r.Close()

	values, err := r.TensorFloat32("t")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2}, values)
}

func TestSafeTensorsReader_RejectsOutOfBounds(t *testing.T) {
	headerJSON := `{"t": {"dtype": "F32", "shape": [4], "data_offsets": [0, 9999]}}`
	var file []byte
	file = binary.LittleEndian.AppendUint64(file, uint64(len(headerJSON)))
	file = append(file, headerJSON...)
	file = append(file, f32Bytes(1, 2, 3, 4)...)

	path := filepath.Join(t.TempDir(), "bad.safetensors")
	require.NoError(t, os.WriteFile(path, file, 0o644))

	_, err := NewSafeTensorsReader(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside data section")
}

func TestSafeTensorsReader_RejectsTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.safetensors")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	_, err := NewSafeTensorsReader(path)
	require.Error(t, err)
}

func TestF16ToF32_Subnormal(t *testing.T) {
	// Smallest positive subnormal half is 2^-24.
	assert.InDelta(t, math.Pow(2, -24), float64(f16ToF32(0x0001)), 1e-12)
	// Largest subnormal is just under 2^-14.
	assert.InDelta(t, 0x3ff*math.Pow(2, -24), float64(f16ToF32(0x03ff)), 1e-12)
	// Infinity propagates.
	assert.True(t, math.IsInf(float64(f16ToF32(0x7c00)), 1))
}
