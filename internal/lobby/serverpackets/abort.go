package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeAbort is the server packet opcode answering a play abort
// (S2C 0x13).
const OpcodeAbort = 0x13

// AbortOK confirms the sender is counted out of the current game.
type AbortOK struct{}

// Opcode returns the packet id.
func (AbortOK) Opcode() byte { return OpcodeAbort }

func (AbortOK) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultSuccess)
}

// AbortFailed rejects an abort with a translated reason.
type AbortFailed struct {
	Reason string
}

// Opcode returns the packet id.
func (AbortFailed) Opcode() byte { return OpcodeAbort }

func (p AbortFailed) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultFailed)
	b.WriteString(p.Reason)
}
