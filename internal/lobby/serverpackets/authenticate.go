package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeAuthenticate is the server packet opcode answering a login
// request (S2C 0x01).
//
// Success structure:
//   - result   byte         0x01
//   - me       UserProfile  authenticated identity
//   - monitor  bool         whether the user observes instead of playing
//   - hasRoom  bool         presence flag for the snapshot below
//   - room     RoomInfo     only when hasRoom
const OpcodeAuthenticate = 0x01

// AuthenticateOK admits the user to the lobby.
type AuthenticateOK struct {
	Me      UserProfile
	Monitor bool
	Room    *RoomInfo // non-nil when the user is already a room member
}

// Opcode returns the packet id.
func (AuthenticateOK) Opcode() byte { return OpcodeAuthenticate }

func (p AuthenticateOK) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultSuccess)
	p.Me.encodeTo(b)
	b.WriteBool(p.Monitor)
	b.WriteBool(p.Room != nil)
	if p.Room != nil {
		p.Room.encodeTo(b)
	}
}

// AuthenticateFailed rejects a login request with a translated reason.
type AuthenticateFailed struct {
	Reason string
}

// Opcode returns the packet id.
func (AuthenticateFailed) Opcode() byte { return OpcodeAuthenticate }

func (p AuthenticateFailed) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultFailed)
	b.WriteString(p.Reason)
}
