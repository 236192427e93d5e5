package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeCancelReady is the server packet opcode answering a ready
// cancellation (S2C 0x11).
const OpcodeCancelReady = 0x11

// CancelReadyOK confirms the ready mark was dropped.
type CancelReadyOK struct{}

// Opcode returns the packet id.
func (CancelReadyOK) Opcode() byte { return OpcodeCancelReady }

func (CancelReadyOK) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultSuccess)
}

// CancelReadyFailed rejects a ready cancellation with a translated reason.
type CancelReadyFailed struct {
	Reason string
}

// Opcode returns the packet id.
func (CancelReadyFailed) Opcode() byte { return OpcodeCancelReady }

func (p CancelReadyFailed) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultFailed)
	b.WriteString(p.Reason)
}
