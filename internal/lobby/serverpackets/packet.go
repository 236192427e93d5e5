// Package serverpackets defines the server→client packets of the lobby
// protocol and encodes them into wire frames.
package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// Result bytes leading every request response.
const (
	ResultFailed  byte = 0x00
	ResultSuccess byte = 0x01
)

// Packet is any server→client packet.
type Packet interface {
	Opcode() byte
	encode(b *protocol.ByteBuf)
}

// Write serializes p into a frame payload: opcode byte, then body.
func Write(p Packet) []byte {
	var b protocol.ByteBuf
	b.WriteByte(p.Opcode())
	p.encode(&b)
	return b.Bytes()
}

// Frame serializes p and prefixes the frame length, producing the exact
// bytes that go on the wire. Broadcast paths encode once and hand the
// same frame to every recipient.
func Frame(p Packet) []byte {
	return protocol.EncodeFrame(Write(p))
}
