package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodePlayed is the server packet opcode answering a play report
// (S2C 0x12).
const OpcodePlayed = 0x12

// PlayedOK confirms the play result was accepted.
type PlayedOK struct{}

// Opcode returns the packet id.
func (PlayedOK) Opcode() byte { return OpcodePlayed }

func (PlayedOK) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultSuccess)
}

// PlayedFailed rejects a play report with a reason.
type PlayedFailed struct {
	Reason string
}

// Opcode returns the packet id.
func (PlayedFailed) Opcode() byte { return OpcodePlayed }

func (p PlayedFailed) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultFailed)
	b.WriteString(p.Reason)
}
