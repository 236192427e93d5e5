package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeRequestStart is the server packet opcode answering a start request
// (S2C 0x0F).
const OpcodeRequestStart = 0x0F

// RequestStartOK confirms the room moved to the ready phase.
type RequestStartOK struct{}

// Opcode returns the packet id.
func (RequestStartOK) Opcode() byte { return OpcodeRequestStart }

func (RequestStartOK) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultSuccess)
}

// RequestStartFailed rejects a start request with a translated reason.
type RequestStartFailed struct {
	Reason string
}

// Opcode returns the packet id.
func (RequestStartFailed) Opcode() byte { return OpcodeRequestStart }

func (p RequestStartFailed) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultFailed)
	b.WriteString(p.Reason)
}
