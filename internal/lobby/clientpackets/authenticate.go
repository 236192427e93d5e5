package clientpackets

import (
	"fmt"

	"github.com/udisondev/phira-mp/internal/protocol"
)

// OpcodeAuthenticate is the client packet opcode for login (C2S 0x01).
//
// Packet structure (C2S 0x01):
//   - token  string  identity-service token
const OpcodeAuthenticate = 0x01

// MaxTokenLen bounds the token field in bytes.
const MaxTokenLen = 32

// Authenticate carries the identity-service token presented at login.
type Authenticate struct {
	Token string
}

// Opcode returns the packet id.
func (*Authenticate) Opcode() byte { return OpcodeAuthenticate }

// ParseAuthenticate parses an Authenticate packet body.
func ParseAuthenticate(data []byte) (*Authenticate, error) {
	b := protocol.NewByteBuf(data)

	token, err := b.ReadString(MaxTokenLen)
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}

	return &Authenticate{Token: token}, nil
}
