package clientpackets

// OpcodeAbort is the client packet opcode for abandoning a play
// (C2S 0x0F).
const OpcodeAbort = 0x0F

// Abort reports that the sender gave up mid-play. No payload.
type Abort struct{}

// Opcode returns the packet id.
func (*Abort) Opcode() byte { return OpcodeAbort }
