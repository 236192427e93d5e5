package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeJoinRoom is the server packet opcode answering a join request
// (S2C 0x09).
//
// Success structure:
//   - result  byte       0x01
//   - state   GameState  current room phase
//   - total   byte       number of roster entries
//   - roster  entries    players (profile, false) then monitors (profile, true)
//   - live    bool       whether the room streams touches and judges
const OpcodeJoinRoom = 0x09

// JoinRoomOK admits the sender to the room and carries the roster.
type JoinRoomOK struct {
	State    GameState
	Users    []UserProfile
	Monitors []UserProfile
	Live     bool
}

// Opcode returns the packet id.
func (JoinRoomOK) Opcode() byte { return OpcodeJoinRoom }

func (p JoinRoomOK) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultSuccess)
	p.State.encodeTo(b)
	b.WriteByte(byte(len(p.Users) + len(p.Monitors)))
	for _, u := range p.Users {
		u.encodeTo(b)
		b.WriteBool(false)
	}
	for _, m := range p.Monitors {
		m.encodeTo(b)
		b.WriteBool(true)
	}
	b.WriteBool(p.Live)
}

// JoinRoomFailed rejects a join request with a translated reason.
type JoinRoomFailed struct {
	Reason string
}

// Opcode returns the packet id.
func (JoinRoomFailed) Opcode() byte { return OpcodeJoinRoom }

func (p JoinRoomFailed) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultFailed)
	b.WriteString(p.Reason)
}
