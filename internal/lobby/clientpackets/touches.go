package clientpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeTouches is the client packet opcode for raw touch frames (C2S 0x03).
const OpcodeTouches = 0x03

// Touches carries an opaque batch of touch frames from a playing client.
// The server never interprets the bytes.
type Touches struct {
	Data []byte
}

// Opcode returns the packet id.
func (*Touches) Opcode() byte { return OpcodeTouches }

// ParseTouches parses a Touches packet body. The whole body is the batch.
func ParseTouches(data []byte) (*Touches, error) {
	b := protocol.NewByteBuf(data)
	return &Touches{Data: b.ReadRemaining()}, nil
}
