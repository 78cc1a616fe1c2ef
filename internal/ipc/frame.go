package ipc

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed size in bytes of a Frame's header.
const HeaderSize = 8

// FrameHeader is the fixed 8-byte little-endian header preceding every
// frame's payload.
type FrameHeader struct {
	Length uint32 // length of the payload that follows, not including the header
	Type   MessageType
	Flags  uint8
	Seq    uint16
}

// Frame is a decoded header plus its payload bytes.
type Frame struct {
	Header  FrameHeader
	Payload []byte
}

// Encode serializes a frame built from msgType, flags, seq and payload as
// header||payload.
func Encode(msgType MessageType, flags uint8, seq uint16, payload []byte) []byte {
	out := make([]byte, HeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(payload)))
	out[4] = byte(msgType)
	out[5] = flags
	binary.LittleEndian.PutUint16(out[6:8], seq)
	copy(out[HeaderSize:], payload)
	return out
}

// ErrShortBuffer is returned by DecodeHeader and DecodeFrame when buf does
// not yet hold a complete header or frame.
var ErrShortBuffer = fmt.Errorf("ipc: buffer too short")

// DecodeHeader parses the 8-byte header at the start of buf.
func DecodeHeader(buf []byte) (FrameHeader, error) {
	if len(buf) < HeaderSize {
		return FrameHeader{}, ErrShortBuffer
	}
	return FrameHeader{
		Length: binary.LittleEndian.Uint32(buf[0:4]),
		Type:   MessageType(buf[4]),
		Flags:  buf[5],
		Seq:    binary.LittleEndian.Uint16(buf[6:8]),
	}, nil
}

// DecodeFrame parses one complete frame from the start of buf and returns
// it along with the number of bytes it consumed. It returns ErrShortBuffer
// if buf does not yet contain a complete frame.
func DecodeFrame(buf []byte) (Frame, int, error) {
	header, err := DecodeHeader(buf)
	if err != nil {
		return Frame{}, 0, err
	}
	total := HeaderSize + int(header.Length)
	if len(buf) < total {
		return Frame{}, 0, ErrShortBuffer
	}
	payload := make([]byte, header.Length)
	copy(payload, buf[HeaderSize:total])
	return Frame{Header: header, Payload: payload}, total, nil
}
