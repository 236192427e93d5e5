package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeTouches is the server packet opcode forwarding a player's raw
// touch frames to room observers (S2C 0x03).
const OpcodeTouches = 0x03

// Touches forwards an opaque touch batch tagged with its player.
type Touches struct {
	PlayerID int32
	Data     []byte
}

// Opcode returns the packet id.
func (Touches) Opcode() byte { return OpcodeTouches }

func (p Touches) encode(b *protocol.ByteBuf) {
	b.WriteIntLE(p.PlayerID)
	b.WriteBytes(p.Data)
}
