package ipc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/superposition/marigraph/internal/surface"
	"github.com/superposition/marigraph/internal/vecgrid"
)

// SurfaceMeta is the JSON-encoded metadata block embedded in a SURFACE_FULL
// payload,.Receivers must tolerate and ignore unknown
// extra fields for forward compatibility.
type SurfaceMeta struct {
	Labels    surface.Labels `json:"labels"`
	XDomain   vecgrid.Domain[float64] `json:"x_domain"`
	YDomain   vecgrid.Domain[float64] `json:"y_domain"`
	ZDomain   vecgrid.Domain[float64] `json:"z_domain"`
	Timestamp string                  `json:"timestamp"`
}

func align4(n int) int {
	if rem := n % 4; rem != 0 {
		return n + (4 - rem)
	}
	return n
}

// EncodeSurfaceFull builds the SURFACE_FULL payload.
func EncodeSurfaceFull(s *surface.Surface) []byte {
	meta := SurfaceMeta{
		Labels:    s.Meta.Labels,
		XDomain:   s.Meta.XDomain,
		YDomain:   s.Meta.YDomain,
		ZDomain:   s.Meta.ZDomain,
		Timestamp: s.Meta.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	metaJSON, _ := json.Marshal(meta)
	metaPadded := align4(len(metaJSON))

	headerLen := 12 + metaPadded
	floatsLen := 4*s.NX + 4*s.NY + 4*s.NX*s.NY
	out := make([]byte, headerLen+floatsLen)

	binary.LittleEndian.PutUint32(out[0:4], uint32(s.NX))
	binary.LittleEndian.PutUint32(out[4:8], uint32(s.NY))
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(metaJSON)))
	copy(out[12:12+len(metaJSON)], metaJSON)

	off := headerLen
	for _, v := range s.X {
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(float32(v)))
		off += 4
	}
	for _, v := range s.Y {
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(float32(v)))
		off += 4
	}
	for _, v := range s.Z {
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(float32(v)))
		off += 4
	}
	return out
}

// DecodeSurfaceFull reconstructs a Surface from a SURFACE_FULL payload.
func DecodeSurfaceFull(buf []byte) (*surface.Surface, error) {
	if len(buf) < 12 {
		return nil, ErrShortBuffer
	}
	nx := int(binary.LittleEndian.Uint32(buf[0:4]))
	ny := int(binary.LittleEndian.Uint32(buf[4:8]))
	metaLen := int(binary.LittleEndian.Uint32(buf[8:12]))
	if len(buf) < 12+metaLen {
		return nil, ErrShortBuffer
	}

	var meta SurfaceMeta
	if err := json.Unmarshal(buf[12:12+metaLen], &meta); err != nil {
		return nil, fmt.Errorf("ipc: decoding surface meta: %w", err)
	}

	off := align4(12 + metaLen)
	need := off + 4*nx + 4*ny + 4*nx*ny
	if len(buf) < need {
		return nil, ErrShortBuffer
	}

	readF32 := func(n int) []float64 {
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])))
			off += 4
		}
		return out
	}
	x := readF32(nx)
	y := readF32(ny)
	z := readF32(nx * ny)

	s, err := surface.New(x, y, z, meta.Labels)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// EncodeSurfaceDelta builds the SURFACE_DELTA payload.
func EncodeSurfaceDelta(flatIndices []uint32, newValues []float32) ([]byte, error) {
	if len(flatIndices) != len(newValues) {
		return nil, fmt.Errorf("ipc: flatIndices len=%d != newValues len=%d", len(flatIndices), len(newValues))
	}
	count := len(flatIndices)
	out := make([]byte, 4+4*count+4*count)
	binary.LittleEndian.PutUint32(out[0:4], uint32(count))
	off := 4
	for _, idx := range flatIndices {
		binary.LittleEndian.PutUint32(out[off:], idx)
		off += 4
	}
	for _, v := range newValues {
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(v))
		off += 4
	}
	return out, nil
}

// DecodeSurfaceDelta parses a SURFACE_DELTA payload into flat indices and
// their new values.
func DecodeSurfaceDelta(buf []byte) (flatIndices []uint32, newValues []float32, err error) {
	if len(buf) < 4 {
		return nil, nil, ErrShortBuffer
	}
	count := int(binary.LittleEndian.Uint32(buf[0:4]))
	need := 4 + 4*count + 4*count
	if len(buf) < need {
		return nil, nil, ErrShortBuffer
	}
	off := 4
	flatIndices = make([]uint32, count)
	for i := 0; i < count; i++ {
		flatIndices[i] = binary.LittleEndian.Uint32(buf[off:])
		off += 4
	}
	newValues = make([]float32, count)
	for i := 0; i < count; i++ {
		newValues[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
	}
	return flatIndices, newValues, nil
}
