// Package ipc implements the wire framing of C5: a fixed 8-byte header
// plus payload, a streaming decoder tolerant of partial frames, and the
// typed-array, surface-full, and surface-delta payload codecs used by the
// worker/supervisor protocol.
package ipc

// MessageType is the wire-ABI u8 message type tag.These
// values MUST NOT be renumbered.
type MessageType uint8

const (
	MsgInit     MessageType = 0x00
	MsgReady    MessageType = 0x01
	MsgShutdown MessageType = 0x02
	MsgPing     MessageType = 0x03
	MsgPong     MessageType = 0x04
	MsgError    MessageType = 0x05
	MsgAck      MessageType = 0x06

	MsgSurfaceFull  MessageType = 0x10
	MsgSurfaceDelta MessageType = 0x11
	MsgChainFull    MessageType = 0x12
	MsgChainDelta   MessageType = 0x13
	MsgTimeseries   MessageType = 0x14
	MsgDispersion   MessageType = 0x15

	MsgSetData   MessageType = 0x20
	MsgAppendData MessageType = 0x21
	MsgClear     MessageType = 0x22
	MsgScroll    MessageType = 0x23
	MsgFocus     MessageType = 0x24
	MsgResize    MessageType = 0x25
	MsgSetTitle  MessageType = 0x26

	MsgSelected      MessageType = 0x30
	MsgClicked       MessageType = 0x31
	MsgSubmitted     MessageType = 0x32
	MsgKeyPressed    MessageType = 0x33
	MsgScrollChanged MessageType = 0x34

	MsgRenderRequest MessageType = 0x40
	MsgRenderResult  MessageType = 0x41

	MsgConfigUpdate MessageType = 0x50
	MsgWiringUpdate MessageType = 0x51
)

var messageTypeNames = map[MessageType]string{
	MsgInit: "INIT", MsgReady: "READY", MsgShutdown: "SHUTDOWN", MsgPing: "PING",
	MsgPong: "PONG", MsgError: "ERROR", MsgAck: "ACK",

	MsgSurfaceFull: "SURFACE_FULL", MsgSurfaceDelta: "SURFACE_DELTA",
	MsgChainFull: "CHAIN_FULL", MsgChainDelta: "CHAIN_DELTA",
	MsgTimeseries: "TIMESERIES", MsgDispersion: "DISPERSION",

	MsgSetData: "SET_DATA", MsgAppendData: "APPEND_DATA", MsgClear: "CLEAR",
	MsgScroll: "SCROLL", MsgFocus: "FOCUS", MsgResize: "RESIZE", MsgSetTitle: "SET_TITLE",

	MsgSelected: "SELECTED", MsgClicked: "CLICKED", MsgSubmitted: "SUBMITTED",
	MsgKeyPressed: "KEY_PRESSED", MsgScrollChanged: "SCROLL_CHANGED",

	MsgRenderRequest: "RENDER_REQUEST", MsgRenderResult: "RENDER_RESULT",

	MsgConfigUpdate: "CONFIG_UPDATE", MsgWiringUpdate: "WIRING_UPDATE",
}

var nameToMessageType = func() map[string]MessageType {
	out := make(map[string]MessageType, len(messageTypeNames))
	for t, name := range messageTypeNames {
		out[name] = t
	}
	return out
}()

// Name returns the canonical event/message name for t, or "UNKNOWN".
func (t MessageType) Name() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

func (t MessageType) String() string { return t.Name() }

// MessageTypeByName resolves a canonical name back to its wire value, the
// inverse of Name.
func MessageTypeByName(name string) (MessageType, bool) {
	t, ok := nameToMessageType[name]
	return t, ok
}

// IsEvent reports whether t is one of the Events-group message types that
// the router's wiring table dispatches on.
func (t MessageType) IsEvent() bool {
	switch t {
	case MsgSelected, MsgClicked, MsgSubmitted, MsgKeyPressed, MsgScrollChanged:
		return true
	default:
		return false
	}
}
