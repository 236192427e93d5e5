package clientpackets

import (
	"fmt"

	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodePlayed is the client packet opcode for reporting a finished play
// (C2S 0x0E).
//
// Packet structure (C2S 0x0E):
//   - recordId  int32  identity-service record id of the play
const OpcodePlayed = 0x0E

// Played reports that the sender finished playing and uploaded a record.
type Played struct {
	RecordID int32
}

// Opcode returns the packet id.
func (*Played) Opcode() byte { return OpcodePlayed }

// ParsePlayed parses a Played packet body.
func ParsePlayed(data []byte) (*Played, error) {
	b := protocol.NewByteBuf(data)

	id, err := b.ReadIntLE()
	if err != nil {
		return nil, fmt.Errorf("reading record id: %w", err)
	}

	return &Played{RecordID: id}, nil
}
