package rfbencoder

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Reader decodes just enough of the inbound peer-originated message
// stream for this pipeline's own bookkeeping: applying MaxCutText and the
// fence payload cap, and handing the payload back to the caller. Full
// reverse message parsing (fences as control messages, clipboard
// negotiation) is out of scope; this exists only so size checks can be
// enforced without a separate dependency on the message reader.
type Reader struct {
	r          io.Reader
	maxCutText int
}

// NewReader wraps r, applying maxCutText (or MaxCutTextDefault if <= 0)
// to every ReadCutText call.
func NewReader(r io.Reader, maxCutText int) *Reader {
	if maxCutText <= 0 {
		maxCutText = MaxCutTextDefault
	}
	return &Reader{r: r, maxCutText: maxCutText}
}

// ReadCutText reads a ClientCutText payload's length-prefixed body.
// Lengths over MaxCutText are drained from the stream and reported as an
// OversizedPayload error rather than returned, so the stream stays in sync
// for the next message; nothing is logged here.
func (rd *Reader) ReadCutText() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(rd.r, lenBuf[:]); err != nil {
		return nil, errProtocolViolation("ReadCutText", err)
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if int(length) > rd.maxCutText {
		if _, err := io.CopyN(io.Discard, rd.r, int64(length)); err != nil {
			return nil, errProtocolViolation("ReadCutText", err)
		}
		return nil, errOversizedPayload("ReadCutText", fmt.Errorf("cut text %d bytes exceeds %d", length, rd.maxCutText))
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		return nil, errProtocolViolation("ReadCutText", err)
	}
	return buf, nil
}

// ReadFence reads a ClientFence payload: u32 flags, u8 length, payload.
// A length over MaxFencePayload is an OversizedPayload; the bytes are
// still drained so the stream stays in sync.
func (rd *Reader) ReadFence() (FenceFlags, []byte, error) {
	var flagBuf [4]byte
	if _, err := io.ReadFull(rd.r, flagBuf[:]); err != nil {
		return 0, nil, errProtocolViolation("ReadFence", err)
	}
	flags := FenceFlags(binary.BigEndian.Uint32(flagBuf[:]))

	var lenByte [1]byte
	if _, err := io.ReadFull(rd.r, lenByte[:]); err != nil {
		return 0, nil, errProtocolViolation("ReadFence", err)
	}
	length := int(lenByte[0])
	if length > MaxFencePayload {
		if _, err := io.CopyN(io.Discard, rd.r, int64(length)); err != nil {
			return 0, nil, errProtocolViolation("ReadFence", err)
		}
		return 0, nil, errOversizedPayload("ReadFence", fmt.Errorf("fence payload %d bytes exceeds %d", length, MaxFencePayload))
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		return 0, nil, errProtocolViolation("ReadFence", err)
	}
	return flags, buf, nil
}
