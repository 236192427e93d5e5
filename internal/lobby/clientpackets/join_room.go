package clientpackets

import (
	"fmt"

	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeJoinRoom is the client packet opcode for joining a room (C2S 0x06).
//
// Packet structure (C2S 0x06):
//   - roomId  string  target room identifier
const OpcodeJoinRoom = 0x06

// JoinRoom asks the server to add the sender to an existing room.
// Roster-listed monitors join as observers instead of players.
type JoinRoom struct {
	RoomID string
}

// Opcode returns the packet id.
func (*JoinRoom) Opcode() byte { return OpcodeJoinRoom }

// ParseJoinRoom parses a JoinRoom packet body.
func ParseJoinRoom(data []byte) (*JoinRoom, error) {
	b := protocol.NewByteBuf(data)

	id, err := b.ReadString(MaxRoomIDLen)
	if err != nil {
		return nil, fmt.Errorf("reading room id: %w", err)
	}

	return &JoinRoom{RoomID: id}, nil
}
