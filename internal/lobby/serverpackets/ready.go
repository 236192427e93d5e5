package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeReady is the server packet opcode answering a ready toggle
// (S2C 0x10).
const OpcodeReady = 0x10

// ReadyOK confirms the sender was marked ready.
type ReadyOK struct{}

// Opcode returns the packet id.
func (ReadyOK) Opcode() byte { return OpcodeReady }

func (ReadyOK) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultSuccess)
}

// ReadyFailed rejects a ready toggle with a translated reason.
type ReadyFailed struct {
	Reason string
}

// Opcode returns the packet id.
func (ReadyFailed) Opcode() byte { return OpcodeReady }

func (p ReadyFailed) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultFailed)
	b.WriteString(p.Reason)
}
