package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeCycleRoom is the server packet opcode answering a host-rotation
// toggle (S2C 0x0D).
const OpcodeCycleRoom = 0x0D

// CycleRoomOK confirms the rotation state changed.
type CycleRoomOK struct{}

// Opcode returns the packet id.
func (CycleRoomOK) Opcode() byte { return OpcodeCycleRoom }

func (CycleRoomOK) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultSuccess)
}

// CycleRoomFailed rejects a rotation toggle with a translated reason.
type CycleRoomFailed struct {
	Reason string
}

// Opcode returns the packet id.
func (CycleRoomFailed) Opcode() byte { return OpcodeCycleRoom }

func (p CycleRoomFailed) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultFailed)
	b.WriteString(p.Reason)
}
