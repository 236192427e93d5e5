// Package clientpackets defines the client→server packets of the lobby
// protocol and decodes them from frame payloads.
package clientpackets

import (
	"fmt"

	"github.com/udisondev/phira-mp/internal/protocol"
)

// Packet is any client→server packet.
type Packet interface {
	Opcode() byte
}

// Decode decodes one frame payload into a typed packet. The first byte
// selects the packet type; the remainder is the packet body.
func Decode(payload []byte) (Packet, error) {
	if len(payload) == 0 {
		return nil, &protocol.CodecError{Reason: "empty frame"}
	}
	body := payload[1:]

	switch payload[0] {
	case OpcodePing:
		return &Ping{}, nil
	case OpcodeAuthenticate:
		return ParseAuthenticate(body)
	case OpcodeChat:
		return ParseChat(body)
	case OpcodeTouches:
		return ParseTouches(body)
	case OpcodeJudges:
		return ParseJudges(body)
	case OpcodeCreateRoom:
		return ParseCreateRoom(body)
	case OpcodeJoinRoom:
		return ParseJoinRoom(body)
	case OpcodeLeaveRoom:
		return &LeaveRoom{}, nil
	case OpcodeLockRoom:
		return ParseLockRoom(body)
	case OpcodeCycleRoom:
		return ParseCycleRoom(body)
	case OpcodeSelectChart:
		return ParseSelectChart(body)
	case OpcodeRequestStart:
		return &RequestStart{}, nil
	case OpcodeReady:
		return &Ready{}, nil
	case OpcodeCancelReady:
		return &CancelReady{}, nil
	case OpcodePlayed:
		return ParsePlayed(body)
	case OpcodeAbort:
		return &Abort{}, nil
	default:
		return nil, &protocol.CodecError{Reason: fmt.Sprintf("unknown packet id 0x%02X", payload[0])}
	}
}
