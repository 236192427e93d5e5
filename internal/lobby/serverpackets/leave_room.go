package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeLeaveRoom is the server packet opcode answering a leave request
// (S2C 0x0B).
const OpcodeLeaveRoom = 0x0B

// LeaveRoomOK confirms the sender left its room.
type LeaveRoomOK struct{}

// Opcode returns the packet id.
func (LeaveRoomOK) Opcode() byte { return OpcodeLeaveRoom }

func (LeaveRoomOK) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultSuccess)
}

// LeaveRoomFailed rejects a leave request with a translated reason.
type LeaveRoomFailed struct {
	Reason string
}

// Opcode returns the packet id.
func (LeaveRoomFailed) Opcode() byte { return OpcodeLeaveRoom }

func (p LeaveRoomFailed) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultFailed)
	b.WriteString(p.Reason)
}
