package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeSelectChart is the server packet opcode answering a chart pick
// (S2C 0x0E).
const OpcodeSelectChart = 0x0E

// SelectChartOK confirms the chart was set.
type SelectChartOK struct{}

// Opcode returns the packet id.
func (SelectChartOK) Opcode() byte { return OpcodeSelectChart }

func (SelectChartOK) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultSuccess)
}

// SelectChartFailed rejects a chart pick with a translated reason.
type SelectChartFailed struct {
	Reason string
}

// Opcode returns the packet id.
func (SelectChartFailed) Opcode() byte { return OpcodeSelectChart }

func (p SelectChartFailed) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultFailed)
	b.WriteString(p.Reason)
}
