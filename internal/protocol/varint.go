package protocol

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// maximumVarIntSize is the largest number of bytes a VarInt may occupy.
// A 32-bit value needs at most five 7-bit groups.
const maximumVarIntSize = 5

var (
	// ErrNeedMoreData reports that the input ended in the middle of a value.
	ErrNeedMoreData = errors.New("need more data")

	// ErrBadVarInt reports a VarInt whose continuation bit is still set
	// after the fifth byte.
	ErrBadVarInt = errors.New("varint exceeds five bytes")
)

// CodecError reports wire data that is structurally readable but invalid:
// an unknown packet id, an out-of-range string length, a bad frame length.
type CodecError struct {
	Reason string
}

func (e *CodecError) Error() string {
	return "codec: " + e.Reason
}

// AppendVarInt appends the VarInt encoding of v to dst and returns the
// extended slice. Seven value bits per byte, least-significant group
// first, high bit set while more bytes follow. Values are 32-bit two's
// complement, so negatives always occupy five bytes.
func AppendVarInt(dst []byte, v int32) []byte {
	u := uint32(v)
	for {
		group := byte(u & 0x7F)
		u >>= 7
		if u == 0 {
			return append(dst, group)
		}
		dst = append(dst, group|0x80)
	}
}

// VarIntLen returns the encoded size of v in bytes.
func VarIntLen(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// ReadVarInt decodes a VarInt from the read cursor.
func (b *ByteBuf) ReadVarInt() (int32, error) {
	first, err := b.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("ReadVarInt: %w", ErrNeedMoreData)
	}
	if first&0x80 == 0 {
		return int32(first), nil
	}

	value := uint32(first & 0x7F)
	shift := uint(7)
	for i := 1; i < maximumVarIntSize; i++ {
		next, err := b.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("ReadVarInt: %w", ErrNeedMoreData)
		}
		value |= uint32(next&0x7F) << shift
		if next&0x80 == 0 {
			return int32(value), nil
		}
		shift += 7
	}
	return 0, ErrBadVarInt
}

// WriteVarInt appends the VarInt encoding of v.
func (b *ByteBuf) WriteVarInt(v int32) {
	b.data = AppendVarInt(b.data, v)
}

// ReadString decodes a VarInt byte length followed by that many UTF-8
// bytes. max bounds the byte length; longer or negative lengths and
// invalid UTF-8 are rejected as corrupt.
func (b *ByteBuf) ReadString(max int) (string, error) {
	n, err := b.ReadVarInt()
	if err != nil {
		return "", fmt.Errorf("ReadString: %w", err)
	}
	if n < 0 || int(n) > max {
		return "", &CodecError{Reason: fmt.Sprintf("string length %d out of range (max %d)", n, max)}
	}
	if !b.Readable(int(n)) {
		return "", fmt.Errorf("ReadString: %w (need=%d, have=%d)", ErrNeedMoreData, n, b.Remaining())
	}
	raw := b.data[b.pos : b.pos+int(n)]
	if !utf8.Valid(raw) {
		return "", &CodecError{Reason: "string is not valid utf-8"}
	}
	b.pos += int(n)
	return string(raw), nil
}

// WriteString appends a VarInt length prefix and the UTF-8 bytes of s.
func (b *ByteBuf) WriteString(s string) {
	b.WriteVarInt(int32(len(s)))
	b.data = append(b.data, s...)
}
