package protocol

import (
	"bytes"
	"errors"
	"testing"
)

// varintCases covers every byte-length boundary of the encoding plus the
// negative path, which always occupies five bytes.
var varintCases = []struct {
	value   int32
	encoded []byte
}{
	{0, []byte{0x00}},
	{1, []byte{0x01}},
	{63, []byte{0x3F}},
	{64, []byte{0x40}},
	{127, []byte{0x7F}},
	{128, []byte{0x80, 0x01}},
	{16383, []byte{0xFF, 0x7F}},
	{16384, []byte{0x80, 0x80, 0x01}},
	{2097151, []byte{0xFF, 0xFF, 0x7F}},
	{2097152, []byte{0x80, 0x80, 0x80, 0x01}},
	{2147483647, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
	{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
	{-2147483648, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
}

func TestAppendVarInt(t *testing.T) {
	for _, tc := range varintCases {
		got := AppendVarInt(nil, tc.value)
		if !bytes.Equal(got, tc.encoded) {
			t.Errorf("AppendVarInt(%d) = % X, want % X", tc.value, got, tc.encoded)
		}
		if VarIntLen(tc.value) != len(tc.encoded) {
			t.Errorf("VarIntLen(%d) = %d, want %d", tc.value, VarIntLen(tc.value), len(tc.encoded))
		}
	}
}

func TestReadVarInt(t *testing.T) {
	for _, tc := range varintCases {
		b := NewByteBuf(tc.encoded)
		got, err := b.ReadVarInt()
		if err != nil {
			t.Fatalf("ReadVarInt(% X) failed: %v", tc.encoded, err)
		}
		if got != tc.value {
			t.Errorf("ReadVarInt(% X) = %d, want %d", tc.encoded, got, tc.value)
		}
		if b.Remaining() != 0 {
			t.Errorf("ReadVarInt(% X) left %d unread bytes", tc.encoded, b.Remaining())
		}
	}
}

func TestVarIntRoundTrip(t *testing.T) {
	var buf ByteBuf
	for _, tc := range varintCases {
		buf.WriteVarInt(tc.value)
	}
	for _, tc := range varintCases {
		got, err := buf.ReadVarInt()
		if err != nil {
			t.Fatalf("round trip read %d: %v", tc.value, err)
		}
		if got != tc.value {
			t.Errorf("round trip %d: got %d", tc.value, got)
		}
	}
}

func TestReadVarInt_TooLong(t *testing.T) {
	b := NewByteBuf([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	_, err := b.ReadVarInt()
	if !errors.Is(err, ErrBadVarInt) {
		t.Errorf("expected ErrBadVarInt, got %v", err)
	}
}

func TestReadVarInt_Truncated(t *testing.T) {
	for _, input := range [][]byte{{}, {0x80}, {0xFF, 0xFF}} {
		b := NewByteBuf(input)
		_, err := b.ReadVarInt()
		if !errors.Is(err, ErrNeedMoreData) {
			t.Errorf("ReadVarInt(% X): expected ErrNeedMoreData, got %v", input, err)
		}
	}
}

func TestReadString(t *testing.T) {
	var buf ByteBuf
	buf.WriteString("hello")
	buf.WriteString("")
	buf.WriteString("房间")

	s, err := buf.ReadString(32)
	if err != nil || s != "hello" {
		t.Fatalf("ReadString = %q, %v; want \"hello\"", s, err)
	}
	s, err = buf.ReadString(32)
	if err != nil || s != "" {
		t.Fatalf("ReadString = %q, %v; want empty", s, err)
	}
	s, err = buf.ReadString(32)
	if err != nil || s != "房间" {
		t.Fatalf("ReadString = %q, %v; want \"房间\"", s, err)
	}
}

func TestReadString_TooLong(t *testing.T) {
	var buf ByteBuf
	buf.WriteString("this message is longer than the limit")

	_, err := buf.ReadString(8)
	var ce *CodecError
	if !errors.As(err, &ce) {
		t.Errorf("expected CodecError for oversize string, got %v", err)
	}
}

func TestReadString_NegativeLength(t *testing.T) {
	b := NewByteBuf([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F})
	_, err := b.ReadString(32)
	var ce *CodecError
	if !errors.As(err, &ce) {
		t.Errorf("expected CodecError for negative length, got %v", err)
	}
}

func TestReadString_Truncated(t *testing.T) {
	b := NewByteBuf([]byte{0x05, 'h', 'i'})
	_, err := b.ReadString(32)
	if !errors.Is(err, ErrNeedMoreData) {
		t.Errorf("expected ErrNeedMoreData, got %v", err)
	}
}

func TestReadString_InvalidUTF8(t *testing.T) {
	b := NewByteBuf([]byte{0x02, 0xFF, 0xFE})
	_, err := b.ReadString(32)
	var ce *CodecError
	if !errors.As(err, &ce) {
		t.Errorf("expected CodecError for invalid utf-8, got %v", err)
	}
}
