package clientpackets

import (
	"fmt"

	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeChat is the client packet opcode for chat messages (C2S 0x02).
//
// Packet structure (C2S 0x02):
//   - message  string  chat text
const OpcodeChat = 0x02

// MaxChatLen bounds the chat message field in bytes.
const MaxChatLen = 200

// Chat is a chat message sent by a room member.
type Chat struct {
	Message string
}

// Opcode returns the packet id.
func (*Chat) Opcode() byte { return OpcodeChat }

// ParseChat parses a Chat packet body.
func ParseChat(data []byte) (*Chat, error) {
	b := protocol.NewByteBuf(data)

	msg, err := b.ReadString(MaxChatLen)
	if err != nil {
		return nil, fmt.Errorf("reading message: %w", err)
	}

	return &Chat{Message: msg}, nil
}
