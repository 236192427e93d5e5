package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ByteBuf is a byte buffer with a read cursor over its contents.
// Reads consume from the cursor; writes always append at the end.
// Multi-byte packet fields are little-endian. The big-endian Short,
// Medium and Int writers exist for Netty-style length fields and are
// not used by the lobby packets themselves.
type ByteBuf struct {
	data []byte
	pos  int
}

// NewByteBuf creates a buffer whose read cursor starts at the beginning
// of data. Writes append after the existing contents.
func NewByteBuf(data []byte) *ByteBuf {
	return &ByteBuf{data: data}
}

// Readable reports whether at least n bytes remain to read.
func (b *ByteBuf) Readable(n int) bool {
	return len(b.data)-b.pos >= n
}

// Remaining returns the number of unread bytes.
func (b *ByteBuf) Remaining() int {
	return len(b.data) - b.pos
}

// Position returns the current read position.
func (b *ByteBuf) Position() int {
	return b.pos
}

// Len returns the total buffer length, read and unread.
func (b *ByteBuf) Len() int {
	return len(b.data)
}

// Bytes returns the entire buffer contents.
func (b *ByteBuf) Bytes() []byte {
	return b.data
}

// ReadByte reads a single byte.
func (b *ByteBuf) ReadByte() (byte, error) {
	if !b.Readable(1) {
		return 0, fmt.Errorf("ReadByte: %w (pos=%d, len=%d)", ErrNeedMoreData, b.pos, len(b.data))
	}
	v := b.data[b.pos]
	b.pos++
	return v, nil
}

// ReadBool reads a boolean encoded as one byte; zero means false.
func (b *ByteBuf) ReadBool() (bool, error) {
	v, err := b.ReadByte()
	if err != nil {
		return false, fmt.Errorf("ReadBool: %w", err)
	}
	return v != 0, nil
}

// ReadIntLE reads an int32 (4 bytes, LE).
func (b *ByteBuf) ReadIntLE() (int32, error) {
	if !b.Readable(4) {
		return 0, fmt.Errorf("ReadIntLE: %w (pos=%d, len=%d)", ErrNeedMoreData, b.pos, len(b.data))
	}
	v := int32(binary.LittleEndian.Uint32(b.data[b.pos:]))
	b.pos += 4
	return v, nil
}

// ReadFloatLE reads a float32 (4 bytes, LE).
func (b *ByteBuf) ReadFloatLE() (float32, error) {
	if !b.Readable(4) {
		return 0, fmt.Errorf("ReadFloatLE: %w (pos=%d, len=%d)", ErrNeedMoreData, b.pos, len(b.data))
	}
	bits := binary.LittleEndian.Uint32(b.data[b.pos:])
	b.pos += 4
	return math.Float32frombits(bits), nil
}

// ReadBytes reads n bytes and returns them as a copy.
func (b *ByteBuf) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("ReadBytes: negative count %d", n)
	}
	if !b.Readable(n) {
		return nil, fmt.Errorf("ReadBytes: %w (pos=%d, need=%d, len=%d)", ErrNeedMoreData, b.pos, n, len(b.data))
	}
	out := make([]byte, n)
	copy(out, b.data[b.pos:b.pos+n])
	b.pos += n
	return out, nil
}

// ReadRemaining reads all unread bytes and returns them as a copy.
func (b *ByteBuf) ReadRemaining() []byte {
	out := make([]byte, b.Remaining())
	copy(out, b.data[b.pos:])
	b.pos = len(b.data)
	return out
}

// Skip advances the read cursor by n bytes without returning them.
func (b *ByteBuf) Skip(n int) error {
	if n < 0 {
		return fmt.Errorf("Skip: negative count %d", n)
	}
	if !b.Readable(n) {
		return fmt.Errorf("Skip: %w (pos=%d, need=%d, len=%d)", ErrNeedMoreData, b.pos, n, len(b.data))
	}
	b.pos += n
	return nil
}

// WriteByte appends a single byte.
func (b *ByteBuf) WriteByte(v byte) {
	b.data = append(b.data, v)
}

// WriteBool appends a boolean as one byte, 1 for true and 0 for false.
func (b *ByteBuf) WriteBool(v bool) {
	if v {
		b.data = append(b.data, 1)
	} else {
		b.data = append(b.data, 0)
	}
}

// WriteIntLE appends an int32 (4 bytes, LE).
func (b *ByteBuf) WriteIntLE(v int32) {
	b.data = binary.LittleEndian.AppendUint32(b.data, uint32(v))
}

// WriteFloatLE appends a float32 (4 bytes, LE).
func (b *ByteBuf) WriteFloatLE(v float32) {
	b.data = binary.LittleEndian.AppendUint32(b.data, math.Float32bits(v))
}

// WriteShort appends an int16 (2 bytes, BE).
func (b *ByteBuf) WriteShort(v int16) {
	b.data = binary.BigEndian.AppendUint16(b.data, uint16(v))
}

// WriteMedium appends the low 24 bits of v (3 bytes, BE).
func (b *ByteBuf) WriteMedium(v int32) {
	b.data = append(b.data, byte(v>>16), byte(v>>8), byte(v))
}

// WriteInt appends an int32 (4 bytes, BE).
func (b *ByteBuf) WriteInt(v int32) {
	b.data = binary.BigEndian.AppendUint32(b.data, uint32(v))
}

// WriteBytes appends raw bytes.
func (b *ByteBuf) WriteBytes(data []byte) {
	b.data = append(b.data, data...)
}

// Reset drops all contents and rewinds the read cursor.
func (b *ByteBuf) Reset() {
	b.data = b.data[:0]
	b.pos = 0
}
