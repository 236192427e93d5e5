package protocol

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestByteBuf_ByteAndBool(t *testing.T) {
	var buf ByteBuf
	buf.WriteByte(0x42)
	buf.WriteBool(true)
	buf.WriteBool(false)

	if !bytes.Equal(buf.Bytes(), []byte{0x42, 0x01, 0x00}) {
		t.Fatalf("unexpected encoding: % X", buf.Bytes())
	}

	v, err := buf.ReadByte()
	if err != nil || v != 0x42 {
		t.Fatalf("ReadByte = 0x%02X, %v", v, err)
	}
	b1, err := buf.ReadBool()
	if err != nil || !b1 {
		t.Fatalf("ReadBool = %v, %v; want true", b1, err)
	}
	b2, err := buf.ReadBool()
	if err != nil || b2 {
		t.Fatalf("ReadBool = %v, %v; want false", b2, err)
	}
}

func TestByteBuf_IntLE(t *testing.T) {
	var buf ByteBuf
	buf.WriteIntLE(0x12345678)
	buf.WriteIntLE(-1)

	if !bytes.Equal(buf.Bytes(), []byte{0x78, 0x56, 0x34, 0x12, 0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Fatalf("unexpected encoding: % X", buf.Bytes())
	}

	v, err := buf.ReadIntLE()
	if err != nil || v != 0x12345678 {
		t.Fatalf("ReadIntLE = 0x%08X, %v", v, err)
	}
	v, err = buf.ReadIntLE()
	if err != nil || v != -1 {
		t.Fatalf("ReadIntLE = %d, %v; want -1", v, err)
	}
}

func TestByteBuf_FloatLE(t *testing.T) {
	var buf ByteBuf
	buf.WriteFloatLE(0.975)
	buf.WriteFloatLE(float32(math.Inf(1)))

	v, err := buf.ReadFloatLE()
	if err != nil || v != 0.975 {
		t.Fatalf("ReadFloatLE = %v, %v; want 0.975", v, err)
	}
	v, err = buf.ReadFloatLE()
	if err != nil || !math.IsInf(float64(v), 1) {
		t.Fatalf("ReadFloatLE = %v, %v; want +Inf", v, err)
	}
}

func TestByteBuf_BigEndianWriters(t *testing.T) {
	var buf ByteBuf
	buf.WriteShort(0x1234)
	buf.WriteMedium(0x56789A)
	buf.WriteInt(0x0BCDEF01)

	want := []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0x0B, 0xCD, 0xEF, 0x01}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("unexpected encoding: % X, want % X", buf.Bytes(), want)
	}
}

func TestByteBuf_WriteMedium_Negative(t *testing.T) {
	var buf ByteBuf
	buf.WriteMedium(-1)
	if !bytes.Equal(buf.Bytes(), []byte{0xFF, 0xFF, 0xFF}) {
		t.Fatalf("unexpected encoding: % X", buf.Bytes())
	}
}

func TestByteBuf_ReadBytes(t *testing.T) {
	b := NewByteBuf([]byte{0x11, 0x22, 0x33, 0x44})

	head, err := b.ReadBytes(2)
	if err != nil || !bytes.Equal(head, []byte{0x11, 0x22}) {
		t.Fatalf("ReadBytes = % X, %v", head, err)
	}

	rest := b.ReadRemaining()
	if !bytes.Equal(rest, []byte{0x33, 0x44}) {
		t.Fatalf("ReadRemaining = % X", rest)
	}
	if b.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %d", b.Remaining())
	}
}

func TestByteBuf_ReadBytes_CopyIsMutable(t *testing.T) {
	src := []byte{0x11, 0x22, 0x33}
	b := NewByteBuf(src)

	out, err := b.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	out[0] = 0xEE
	if src[0] != 0x11 {
		t.Error("ReadBytes must copy, not alias the source")
	}
}

func TestByteBuf_NotEnoughData(t *testing.T) {
	b := NewByteBuf([]byte{0x01, 0x02})

	if _, err := b.ReadIntLE(); !errors.Is(err, ErrNeedMoreData) {
		t.Errorf("ReadIntLE: expected ErrNeedMoreData, got %v", err)
	}
	if _, err := b.ReadFloatLE(); !errors.Is(err, ErrNeedMoreData) {
		t.Errorf("ReadFloatLE: expected ErrNeedMoreData, got %v", err)
	}
	if _, err := b.ReadBytes(3); !errors.Is(err, ErrNeedMoreData) {
		t.Errorf("ReadBytes: expected ErrNeedMoreData, got %v", err)
	}
	if err := b.Skip(3); !errors.Is(err, ErrNeedMoreData) {
		t.Errorf("Skip: expected ErrNeedMoreData, got %v", err)
	}
}

func TestByteBuf_Skip(t *testing.T) {
	b := NewByteBuf([]byte{0x01, 0x02, 0x03})
	if err := b.Skip(2); err != nil {
		t.Fatalf("Skip failed: %v", err)
	}
	v, err := b.ReadByte()
	if err != nil || v != 0x03 {
		t.Fatalf("ReadByte after Skip = 0x%02X, %v", v, err)
	}
}

func TestByteBuf_Reset(t *testing.T) {
	var buf ByteBuf
	buf.WriteIntLE(7)
	buf.Reset()
	if buf.Len() != 0 || buf.Position() != 0 {
		t.Fatalf("Reset left len=%d pos=%d", buf.Len(), buf.Position())
	}
}
