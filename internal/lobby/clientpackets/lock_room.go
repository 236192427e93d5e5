package clientpackets

import (
	"fmt"

	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeLockRoom is the client packet opcode for toggling the room lock
// (C2S 0x08).
//
// Packet structure (C2S 0x08):
//   - lock  bool  desired lock state
const OpcodeLockRoom = 0x08

// LockRoom asks the server to lock or unlock the sender's room.
// Host only.
type LockRoom struct {
	Lock bool
}

// Opcode returns the packet id.
func (*LockRoom) Opcode() byte { return OpcodeLockRoom }

// ParseLockRoom parses a LockRoom packet body.
func ParseLockRoom(data []byte) (*LockRoom, error) {
	b := protocol.NewByteBuf(data)

	lock, err := b.ReadBool()
	if err != nil {
		return nil, fmt.Errorf("reading lock flag: %w", err)
	}

	return &LockRoom{Lock: lock}, nil
}
