package clientpackets

// OpcodeCancelReady is the client packet opcode for withdrawing readiness
// (C2S 0x0D).
const OpcodeCancelReady = 0x0D

// CancelReady withdraws the sender's ready mark. From the host this
// cancels the whole ready phase. No payload.
type CancelReady struct{}

// Opcode returns the packet id.
func (*CancelReady) Opcode() byte { return OpcodeCancelReady }
