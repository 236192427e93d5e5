package clientpackets

// OpcodeRequestStart is the client packet opcode for starting the ready
// phase (C2S 0x0B).
const OpcodeRequestStart = 0x0B

// RequestStart moves the room into the ready phase. Host only, no payload.
type RequestStart struct{}

// Opcode returns the packet id.
func (*RequestStart) Opcode() byte { return OpcodeRequestStart }
