package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodePong is the server packet opcode answering Ping (S2C 0x00).
const OpcodePong = 0x00

// Pong answers a keepalive probe. No payload.
type Pong struct{}

// Opcode returns the packet id.
func (Pong) Opcode() byte { return OpcodePong }

func (Pong) encode(*protocol.ByteBuf) {}
