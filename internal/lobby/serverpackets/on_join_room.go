package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeOnJoinRoom is the server packet opcode telling existing members
// that someone entered their room (S2C 0x0A).
const OpcodeOnJoinRoom = 0x0A

// OnJoinRoom announces a new room member to the others.
type OnJoinRoom struct {
	User    UserProfile
	Monitor bool
}

// Opcode returns the packet id.
func (OnJoinRoom) Opcode() byte { return OpcodeOnJoinRoom }

func (p OnJoinRoom) encode(b *protocol.ByteBuf) {
	p.User.encodeTo(b)
	b.WriteBool(p.Monitor)
}
