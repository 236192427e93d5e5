package clientpackets

// OpcodeReady is the client packet opcode for signalling readiness
// (C2S 0x0C).
const OpcodeReady = 0x0C

// Ready marks the sender ready during the ready phase. No payload.
type Ready struct{}

// Opcode returns the packet id.
func (*Ready) Opcode() byte { return OpcodeReady }
