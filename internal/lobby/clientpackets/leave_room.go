package clientpackets

// OpcodeLeaveRoom is the client packet opcode for leaving a room (C2S 0x07).
const OpcodeLeaveRoom = 0x07

// LeaveRoom asks the server to remove the sender from its current room.
// It has no payload.
type LeaveRoom struct{}

// Opcode returns the packet id.
func (*LeaveRoom) Opcode() byte { return OpcodeLeaveRoom }
