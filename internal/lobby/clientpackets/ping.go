package clientpackets

// OpcodePing is the client packet opcode for keepalive probes (C2S 0x00).
const OpcodePing = 0x00

// Ping is a keepalive probe. It has no payload and is answered with Pong
// even before authentication.
type Ping struct{}

// Opcode returns the packet id.
func (*Ping) Opcode() byte { return OpcodePing }
