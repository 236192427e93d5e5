package clientpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeJudges is the client packet opcode for raw judge events (C2S 0x04).
const OpcodeJudges = 0x04

// Judges carries an opaque batch of judge events from a playing client.
// The server never interprets the bytes.
type Judges struct {
	Data []byte
}

// Opcode returns the packet id.
func (*Judges) Opcode() byte { return OpcodeJudges }

// ParseJudges parses a Judges packet body. The whole body is the batch.
func ParseJudges(data []byte) (*Judges, error) {
	b := protocol.NewByteBuf(data)
	return &Judges{Data: b.ReadRemaining()}, nil
}
