package protocol

import (
	"fmt"
	"io"
)

// MaxFrameLen bounds a single frame payload. Chat and roster payloads are
// tiny; only raw touch batches approach kilobytes. Anything near this
// limit indicates a corrupt or hostile stream.
const MaxFrameLen = 1 << 20

// ReadMessage reads one VarInt-length-prefixed frame from r and returns
// its payload. The length prefix is read byte by byte so a partial frame
// never consumes bytes belonging to the next one.
func ReadMessage(r io.Reader) ([]byte, error) {
	var (
		one   [1]byte
		value uint32
		shift uint
		n     int32
	)
	for i := 0; ; i++ {
		if i == maximumVarIntSize {
			return nil, ErrBadVarInt
		}
		if _, err := io.ReadFull(r, one[:]); err != nil {
			return nil, fmt.Errorf("reading frame length: %w", err)
		}
		value |= uint32(one[0]&0x7F) << shift
		if one[0]&0x80 == 0 {
			n = int32(value)
			break
		}
		shift += 7
	}

	if n < 0 || n > MaxFrameLen {
		return nil, &CodecError{Reason: fmt.Sprintf("frame length %d out of range (max %d)", n, MaxFrameLen)}
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading frame payload: %w", err)
	}
	return payload, nil
}

// WriteMessage writes payload to w as one length-prefixed frame.
func WriteMessage(w io.Writer, payload []byte) error {
	if _, err := w.Write(EncodeFrame(payload)); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// EncodeFrame prepends the VarInt length of payload, producing the exact
// bytes that go on the wire.
func EncodeFrame(payload []byte) []byte {
	frame := make([]byte, 0, VarIntLen(int32(len(payload)))+len(payload))
	frame = AppendVarInt(frame, int32(len(payload)))
	return append(frame, payload...)
}
