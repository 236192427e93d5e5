package clientpackets

import (
	"fmt"

	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeCycleRoom is the client packet opcode for toggling host rotation
// (C2S 0x09).
//
// Packet structure (C2S 0x09):
//   - cycle  bool  desired rotation state
const OpcodeCycleRoom = 0x09

// CycleRoom asks the server to enable or disable host rotation in the
// sender's room. Host only.
type CycleRoom struct {
	Cycle bool
}

// Opcode returns the packet id.
func (*CycleRoom) Opcode() byte { return OpcodeCycleRoom }

// ParseCycleRoom parses a CycleRoom packet body.
func ParseCycleRoom(data []byte) (*CycleRoom, error) {
	b := protocol.NewByteBuf(data)

	cycle, err := b.ReadBool()
	if err != nil {
		return nil, fmt.Errorf("reading cycle flag: %w", err)
	}

	return &CycleRoom{Cycle: cycle}, nil
}
