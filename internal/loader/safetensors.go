package loader

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// SafeTensors format:
// [8 bytes: header_size (uint64 LE)]
// [header_size bytes: JSON header]
// [tensor data: raw bytes]

// maxHeaderSize rejects corrupted files before allocating for the header.
const maxHeaderSize = 100 * 1024 * 1024

// SafeTensorsDType represents supported SafeTensors data types.
type SafeTensorsDType string

// Supported SafeTensors dtypes.
const (
	SafeTensorsF16  SafeTensorsDType = "F16"
	SafeTensorsF32  SafeTensorsDType = "F32"
	SafeTensorsF64  SafeTensorsDType = "F64"
	SafeTensorsBF16 SafeTensorsDType = "BF16"
	SafeTensorsI32  SafeTensorsDType = "I32"
	SafeTensorsI64  SafeTensorsDType = "I64"
	SafeTensorsU8   SafeTensorsDType = "U8"
	SafeTensorsBool SafeTensorsDType = "BOOL"
)

// SafeTensorInfo describes a tensor in SafeTensors format.
type SafeTensorInfo struct {
	DType       SafeTensorsDType `json:"dtype"`
	Shape       []int            `json:"shape"`
	DataOffsets [2]int64         `json:"data_offsets"` // [start, end]
}

// Elements returns the element count implied by the shape.
func (i *SafeTensorInfo) Elements() int {
	n := 1
	for _, dim := range i.Shape {
		n *= dim
	}
	return n
}

// safeTensorsHeader is the JSON header: tensor names mapped to their info,
// plus the optional __metadata__ block.
type safeTensorsHeader struct {
	Metadata map[string]string
	Tensors  map[string]SafeTensorInfo
}

func (h *safeTensorsHeader) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	h.Tensors = make(map[string]SafeTensorInfo, len(rawMap))
	for key, value := range rawMap {
		if key == "__metadata__" {
			if err := json.Unmarshal(value, &h.Metadata); err != nil {
				return fmt.Errorf("unmarshal metadata: %w", err)
			}
			continue
		}
		var info SafeTensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}
	return nil
}

// SafeTensorsReader reads SafeTensors files through a read-only memory map,
// so inspecting one tensor of a large weights file never loads the rest.
type SafeTensorsReader struct {
	file       *os.File
	data       []byte // mmap'd region (read-only)
	size       int64
	header     safeTensorsHeader
	dataOffset int64
	closed     bool
}

// NewSafeTensorsReader opens and maps a SafeTensors file.
func NewSafeTensorsReader(path string) (*SafeTensorsReader, error) {
	//nolint:gosec // G304: opening a weights file from a snapshot path is intentional.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open safetensors: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat safetensors: %w", err)
	}
	if stat.Size() < 8 {
		_ = file.Close()
		return nil, fmt.Errorf("safetensors file too small: %d bytes", stat.Size())
	}

	data, err := mmapFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap safetensors: %w", err)
	}

	r := &SafeTensorsReader{file: file, data: data, size: stat.Size()}
	if err := r.parseHeader(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("parse safetensors header: %w", err)
	}
	return r, nil
}

func (r *SafeTensorsReader) parseHeader() error {
	headerSize := binary.LittleEndian.Uint64(r.data[0:8])
	if headerSize > maxHeaderSize {
		return fmt.Errorf("header size %d exceeds limit", headerSize)
	}
	headerEnd := 8 + int64(headerSize) //nolint:gosec // G115: bounded by maxHeaderSize.
	if headerEnd > r.size {
		return fmt.Errorf("header extends beyond file: %d > %d", headerEnd, r.size)
	}

	if err := json.Unmarshal(r.data[8:headerEnd], &r.header); err != nil {
		return err
	}
	r.dataOffset = headerEnd

	// Reject tensors that point outside the data section.
	dataSize := r.size - r.dataOffset
	for name, info := range r.header.Tensors {
		start, end := info.DataOffsets[0], info.DataOffsets[1]
		if start < 0 || end < start || end > dataSize {
			return fmt.Errorf("tensor %q: offsets [%d, %d] outside data section of %d bytes",
				name, start, end, dataSize)
		}
	}
	return nil
}

// Close unmaps and closes the file.
func (r *SafeTensorsReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.data != nil {
		err = munmapFile(r.data)
		r.data = nil
	}
	if closeErr := r.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Metadata returns the __metadata__ map from the header.
func (r *SafeTensorsReader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns all tensor names, sorted.
func (r *SafeTensorsReader) TensorNames() []string {
	names := make([]string, 0, len(r.header.Tensors))
	for name := range r.header.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TensorInfo returns information about a specific tensor.
func (r *SafeTensorsReader) TensorInfo(name string) (*SafeTensorInfo, error) {
	info, ok := r.header.Tensors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTensorNotFound, name)
	}
	return &info, nil
}

// TensorData returns the raw bytes of a tensor as a zero-copy slice into the
// mapped region. The slice is valid only while the reader is open.
func (r *SafeTensorsReader) TensorData(name string) ([]byte, error) {
	if r.closed {
		return nil, fmt.Errorf("safetensors reader is closed")
	}
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	start := r.dataOffset + info.DataOffsets[0]
	end := r.dataOffset + info.DataOffsets[1]
	return r.data[start:end], nil
}

// TensorFloat32 reads a tensor and converts it to float32. Supported dtypes
// are F32, F16, and BF16; everything else a classifier head should not be
// made of is rejected.
func (r *SafeTensorsReader) TensorFloat32(name string) ([]float32, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	data, err := r.TensorData(name)
	if err != nil {
		return nil, err
	}

	n := info.Elements()
	switch info.DType {
	case SafeTensorsF32:
		if len(data) != n*4 {
			return nil, fmt.Errorf("tensor %q: %d bytes for %d float32 values", name, len(data), n)
		}
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return out, nil

	case SafeTensorsF16:
		if len(data) != n*2 {
			return nil, fmt.Errorf("tensor %q: %d bytes for %d float16 values", name, len(data), n)
		}
		out := make([]float32, n)
		for i := range out {
			out[i] = f16ToF32(binary.LittleEndian.Uint16(data[i*2:]))
		}
		return out, nil

	case SafeTensorsBF16:
		if len(data) != n*2 {
			return nil, fmt.Errorf("tensor %q: %d bytes for %d bfloat16 values", name, len(data), n)
		}
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(uint32(binary.LittleEndian.Uint16(data[i*2:])) << 16)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("tensor %q: dtype %s not convertible to float32", name, info.DType)
	}
}

// f16ToF32 converts an IEEE 754 half-precision value to float32.
func f16ToF32(bits uint16) float32 {
	sign := uint32(bits&0x8000) << 16
	exp := uint32(bits>>10) & 0x1f
	frac := uint32(bits & 0x3ff)

	switch exp {
	case 0:
		if frac == 0 {
			// Signed zero.
			return math.Float32frombits(sign)
		}
		// Subnormal: renormalize into a f32 normal.
		exp32 := uint32(113)
		for frac&0x400 == 0 {
			frac <<= 1
			exp32--
		}
		frac &= 0x3ff
		return math.Float32frombits(sign | exp32<<23 | frac<<13)
	case 0x1f:
		// Inf or NaN.
		return math.Float32frombits(sign | 0x7f800000 | frac<<13)
	default:
		return math.Float32frombits(sign | (exp+112)<<23 | frac<<13)
	}
}
