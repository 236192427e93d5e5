package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeChat is the server packet opcode answering a chat request
// (S2C 0x02). The relayed text itself travels as a ChatMessage.
const OpcodeChat = 0x02

// ChatOK confirms a chat message was accepted.
type ChatOK struct{}

// Opcode returns the packet id.
func (ChatOK) Opcode() byte { return OpcodeChat }

func (ChatOK) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultSuccess)
}

// ChatFailed rejects a chat request with a translated reason.
type ChatFailed struct {
	Reason string
}

// Opcode returns the packet id.
func (ChatFailed) Opcode() byte { return OpcodeChat }

func (p ChatFailed) encode(b *protocol.ByteBuf) {
	b.WriteByte(ResultFailed)
	b.WriteString(p.Reason)
}
