package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeJudges is the server packet opcode forwarding a player's raw
// judge events to room observers (S2C 0x04).
const OpcodeJudges = 0x04

// Judges forwards an opaque judge-event batch tagged with its player.
type Judges struct {
	PlayerID int32
	Data     []byte
}

// Opcode returns the packet id.
func (Judges) Opcode() byte { return OpcodeJudges }

func (p Judges) encode(b *protocol.ByteBuf) {
	b.WriteIntLE(p.PlayerID)
	b.WriteBytes(p.Data)
}
