package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeCreateRoom is the server packet opcode answering a room-creation
// request (S2C 0x08).
const OpcodeCreateRoom = 0x08

// CreateRoomOK confirms the room was created with the sender as host.
type CreateRoomOK struct{}

// Opcode returns the packet id.
func (CreateRoomOK) Opcode() byte { return OpcodeCreateRoom }

func (CreateRoomOK) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultSuccess)
}

// CreateRoomFailed rejects a room-creation request with a translated
// reason.
type CreateRoomFailed struct {
	Reason string
}

// Opcode returns the packet id.
func (CreateRoomFailed) Opcode() byte { return OpcodeCreateRoom }

func (p CreateRoomFailed) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultFailed)
	b.WriteString(p.Reason)
}
