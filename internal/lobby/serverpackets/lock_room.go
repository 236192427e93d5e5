package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeLockRoom is the server packet opcode answering a lock toggle
// (S2C 0x0C).
const OpcodeLockRoom = 0x0C

// LockRoomOK confirms the lock state changed.
type LockRoomOK struct{}

// Opcode returns the packet id.
func (LockRoomOK) Opcode() byte { return OpcodeLockRoom }

func (LockRoomOK) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultSuccess)
}

// LockRoomFailed rejects a lock toggle with a translated reason.
type LockRoomFailed struct {
	Reason string
}

// Opcode returns the packet id.
func (LockRoomFailed) Opcode() byte { return OpcodeLockRoom }

func (p LockRoomFailed) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultFailed)
	b.WriteString(p.Reason)
}
