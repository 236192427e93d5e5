package serverpackets

import (
	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeChangeHost is the server packet opcode telling one client whether
// it now holds host rights (S2C 0x07). Unlike NewHostMessage, this is a
// unicast: each affected client gets its own flag.
const OpcodeChangeHost = 0x07

// ChangeHost tells the receiving client its own host status.
type ChangeHost struct {
	IsHost bool
}

// Opcode returns the packet id.
func (ChangeHost) Opcode() byte { return OpcodeChangeHost }

func (p ChangeHost) encode(b *protocol.ByteBuf) {
	b.WriteBool(p.IsHost)
}
