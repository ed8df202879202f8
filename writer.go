package rfbencoder

import (
	"encoding/binary"
	"fmt"
	"io"
)

// encodingCopyRect and encodingLastRect are wire encoding ids outside the
// Codec family: CopyRect has no content-class routing, and LastRect is a
// zero-payload terminator rect rather than a real encoding.
const (
	encodingCopyRect int32 = 1
	encodingLastRect int32 = -224
)

// Writer serializes framebuffer updates onto a byte stream per §6.1.
// Only the owning thread ever calls it; it holds no internal
// synchronization because the manager enforces that contract.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w for framebuffer-update serialization.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (wr *Writer) writeU8(v uint8) error   { return wr.write([]byte{v}) }
func (wr *Writer) write(b []byte) error {
	_, err := wr.w.Write(b)
	return err
}

func (wr *Writer) writeU16(v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return wr.write(b[:])
}

func (wr *Writer) writeS32(v int32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return wr.write(b[:])
}

// BeginUpdate writes the FramebufferUpdate message header: msg type 0,
// one pad byte, then num_rects — or the 0xFFFF LastRect sentinel when the
// peer supports deferring the count.
func (wr *Writer) BeginUpdate(lastRectSupported bool, numRects int) error {
	if err := wr.writeU8(0); err != nil {
		return err
	}
	if err := wr.writeU8(0); err != nil {
		return err
	}
	if lastRectSupported {
		return wr.writeU16(0xFFFF)
	}
	return wr.writeU16(uint16(numRects))
}

// EndUpdate writes the LastRect terminator rect when the peer supports
// it; there is nothing to emit otherwise, since the header already
// carried the exact count.
func (wr *Writer) EndUpdate(lastRectSupported bool) error {
	if !lastRectSupported {
		return nil
	}
	return wr.writeRectHeader(Rect{}, encodingLastRect)
}

func (wr *Writer) writeRectHeader(r Rect, encoding int32) error {
	if err := wr.writeU16(uint16(r.X())); err != nil {
		return err
	}
	if err := wr.writeU16(uint16(r.Y())); err != nil {
		return err
	}
	if err := wr.writeU16(uint16(r.Width())); err != nil {
		return err
	}
	if err := wr.writeU16(uint16(r.Height())); err != nil {
		return err
	}
	return wr.writeS32(encoding)
}

// WriteCopyRect writes one CopyRect record: rect header with CopyRect's
// encoding id, then the u16/u16 source position.
func (wr *Writer) WriteCopyRect(r Rect, src Point) error {
	if err := wr.writeRectHeader(r, encodingCopyRect); err != nil {
		return err
	}
	if err := wr.writeU16(uint16(src.X)); err != nil {
		return err
	}
	return wr.writeU16(uint16(src.Y))
}

// WriteEncodedRect writes one codec-produced rect: header plus its opaque
// payload bytes.
func (wr *Writer) WriteEncodedRect(out *OutputItem) error {
	if err := wr.writeRectHeader(out.rect, out.codec.Encoding()); err != nil {
		return err
	}
	return wr.write(out.Payload)
}

const serverCutTextMsgType = 3

// WriteCutText writes a ServerCutText message: msg type, 3 pad bytes, u32
// length, then the text itself. maxCutText bounds the payload the same
// way the inbound message reader bounds ClientCutText (§6.4); exceeding
// it returns an OversizedPayload error and writes nothing (nothing is
// logged).
func (wr *Writer) WriteCutText(text []byte, maxCutText int) error {
	if maxCutText <= 0 {
		maxCutText = MaxCutTextDefault
	}
	if len(text) > maxCutText {
		return errOversizedPayload("WriteCutText", fmt.Errorf("cut text %d bytes exceeds %d", len(text), maxCutText))
	}
	if err := wr.writeU8(serverCutTextMsgType); err != nil {
		return err
	}
	if err := wr.write([]byte{0, 0, 0}); err != nil {
		return err
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(len(text)))
	if err := wr.write(b[:]); err != nil {
		return err
	}
	return wr.write(text)
}

// ExtendedClipboardCaps flags which clipboard actions this server can
// perform, sent once during capability negotiation.
type ExtendedClipboardCaps uint32

const (
	ClipboardCapText    ExtendedClipboardCaps = 1 << 0
	ClipboardCapRTF     ExtendedClipboardCaps = 1 << 1
	ClipboardCapHTML    ExtendedClipboardCaps = 1 << 2
	ClipboardCapRequest ExtendedClipboardCaps = 1 << 24
	ClipboardCapPeek    ExtendedClipboardCaps = 1 << 25
	ClipboardCapNotify  ExtendedClipboardCaps = 1 << 26
	ClipboardCapProvide ExtendedClipboardCaps = 1 << 27
)

// extended clipboard sub-action pseudo-flags, carried in the same u32
// flags field as the capability bits, distinguished by which action the
// message represents.
const (
	clipboardActionCaps    = 1 << 28
	clipboardActionRequest = 1 << 29
	clipboardActionPeek    = 1 << 30
	clipboardActionNotify  = 1 << 31
)

func (wr *Writer) writeExtendedClipboard(peer PeerCaps, flags uint32, payload []byte) error {
	if !peer.ExtendedClipboard {
		return errPeerIncapable("writeExtendedClipboard", fmt.Errorf("peer did not declare extended clipboard support"))
	}
	if err := wr.writeU8(serverCutTextMsgType); err != nil {
		return err
	}
	if err := wr.write([]byte{0, 0, 0}); err != nil {
		return err
	}
	length := -int32(4 + len(payload))
	if err := wr.writeS32(length); err != nil {
		return err
	}
	if err := wr.writeS32(int32(flags)); err != nil {
		return err
	}
	return wr.write(payload)
}

// WriteExtendedClipboardCaps advertises which clipboard actions/formats
// this server supports.
func (wr *Writer) WriteExtendedClipboardCaps(peer PeerCaps, caps ExtendedClipboardCaps) error {
	return wr.writeExtendedClipboard(peer, uint32(caps)|clipboardActionCaps, nil)
}

// WriteExtendedClipboardRequest asks the peer to send clipboard data in
// one of the given formats.
func (wr *Writer) WriteExtendedClipboardRequest(peer PeerCaps, formats ExtendedClipboardCaps) error {
	return wr.writeExtendedClipboard(peer, uint32(formats)|clipboardActionRequest, nil)
}

// WriteExtendedClipboardNotify tells the peer new clipboard data is
// available in the given formats, without sending it yet.
func (wr *Writer) WriteExtendedClipboardNotify(peer PeerCaps, formats ExtendedClipboardCaps) error {
	return wr.writeExtendedClipboard(peer, uint32(formats)|clipboardActionNotify, nil)
}

// WriteExtendedClipboardProvide sends clipboard data for one format,
// zlib-compressed the way the extended-clipboard protocol requires.
func (wr *Writer) WriteExtendedClipboardProvide(peer PeerCaps, format ExtendedClipboardCaps, compressed []byte) error {
	return wr.writeExtendedClipboard(peer, uint32(format), compressed)
}
