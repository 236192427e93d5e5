package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeChangeState is the server packet opcode announcing a room phase
// transition (S2C 0x06).
const OpcodeChangeState = 0x06

// ChangeState carries the room's new phase to every member.
type ChangeState struct {
	State GameState
}

// Opcode returns the packet id.
func (ChangeState) Opcode() byte { return OpcodeChangeState }

func (p ChangeState) encode(b *protocol.ByteBuf) {
	p.State.encodeTo(b)
}
