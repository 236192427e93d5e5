package clientpackets

import (
	"fmt"

	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeCreateRoom is the client packet opcode for room creation (C2S 0x05).
//
// Packet structure (C2S 0x05):
//   - roomId  string  requested room identifier
const OpcodeCreateRoom = 0x05

// MaxRoomIDLen bounds room identifiers in bytes. Shared with JoinRoom.
const MaxRoomIDLen = 20

// CreateRoom asks the server to create a room with the given id and make
// the sender its host.
type CreateRoom struct {
	RoomID string
}

// Opcode returns the packet id.
func (*CreateRoom) Opcode() byte { return OpcodeCreateRoom }

// ParseCreateRoom parses a CreateRoom packet body.
func ParseCreateRoom(data []byte) (*CreateRoom, error) {
	b := protocol.NewByteBuf(data)

	id, err := b.ReadString(MaxRoomIDLen)
	if err != nil {
		return nil, fmt.Errorf("reading room id: %w", err)
	}

	return &CreateRoom{RoomID: id}, nil
}
