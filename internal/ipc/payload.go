package ipc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// TypedArrayTag identifies the element type of a typed-array payload.
type TypedArrayTag uint8

const (
	TagFloat32 TypedArrayTag = 0
	TagFloat64 TypedArrayTag = 1
	TagUint32  TypedArrayTag = 2
	TagInt32   TypedArrayTag = 3
)

// EncodeTypedArray serializes a numeric slice as a 1-byte tag followed by
// its raw little-endian bytes. v must be one of []float32, []float64,
// []uint32, []int32.
func EncodeTypedArray(v any) ([]byte, error) {
	switch s := v.(type) {
	case []float32:
		out := make([]byte, 1+4*len(s))
		out[0] = byte(TagFloat32)
		for i, x := range s {
			binary.LittleEndian.PutUint32(out[1+4*i:], math.Float32bits(x))
		}
		return out, nil
	case []float64:
		out := make([]byte, 1+8*len(s))
		out[0] = byte(TagFloat64)
		for i, x := range s {
			binary.LittleEndian.PutUint64(out[1+8*i:], math.Float64bits(x))
		}
		return out, nil
	case []uint32:
		out := make([]byte, 1+4*len(s))
		out[0] = byte(TagUint32)
		for i, x := range s {
			binary.LittleEndian.PutUint32(out[1+4*i:], x)
		}
		return out, nil
	case []int32:
		out := make([]byte, 1+4*len(s))
		out[0] = byte(TagInt32)
		for i, x := range s {
			binary.LittleEndian.PutUint32(out[1+4*i:], uint32(x))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("ipc: unsupported typed-array element type %T", v)
	}
}

// DecodeTypedArray reconstructs the array encoded by EncodeTypedArray,
// returning one of []float32, []float64, []uint32, []int32 depending on
// the leading tag byte.
func DecodeTypedArray(buf []byte) (any, error) {
	if len(buf) < 1 {
		return nil, ErrShortBuffer
	}
	tag := TypedArrayTag(buf[0])
	body := buf[1:]
	switch tag {
	case TagFloat32:
		if len(body)%4 != 0 {
			return nil, fmt.Errorf("ipc: f32 array length %d not a multiple of 4", len(body))
		}
		out := make([]float32, len(body)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[4*i:]))
		}
		return out, nil
	case TagFloat64:
		if len(body)%8 != 0 {
			return nil, fmt.Errorf("ipc: f64 array length %d not a multiple of 8", len(body))
		}
		out := make([]float64, len(body)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(body[8*i:]))
		}
		return out, nil
	case TagUint32:
		if len(body)%4 != 0 {
			return nil, fmt.Errorf("ipc: u32 array length %d not a multiple of 4", len(body))
		}
		out := make([]uint32, len(body)/4)
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(body[4*i:])
		}
		return out, nil
	case TagInt32:
		if len(body)%4 != 0 {
			return nil, fmt.Errorf("ipc: i32 array length %d not a multiple of 4", len(body))
		}
		out := make([]int32, len(body)/4)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(body[4*i:]))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("ipc: unknown typed-array tag %d", tag)
	}
}
