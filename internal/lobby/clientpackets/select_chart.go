package clientpackets

import (
	"fmt"

	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeSelectChart is the client packet opcode for picking a chart
// (C2S 0x0A).
//
// Packet structure (C2S 0x0A):
//   - chartId  int32  identity-service chart id
const OpcodeSelectChart = 0x0A

// SelectChart asks the server to set the room's chart. Host only.
type SelectChart struct {
	ChartID int32
}

// Opcode returns the packet id.
func (*SelectChart) Opcode() byte { return OpcodeSelectChart }

// ParseSelectChart parses a SelectChart packet body.
func ParseSelectChart(data []byte) (*SelectChart, error) {
	b := protocol.NewByteBuf(data)

	id, err := b.ReadIntLE()
	if err != nil {
		return nil, fmt.Errorf("reading chart id: %w", err)
	}

	return &SelectChart{ChartID: id}, nil
}
