package rfbencoder

import (
	"bytes"
	"compress/zlib"
)

// Tight compression-control byte values (bit 7 set branch).
const (
	tightCtrlFill = 0x80
	tightCtrlJPEG = 0x90
)

// Tight basic-compression filter ids (bit 7 clear branch), matching the
// filterID := compControl&0x70 decode.
const (
	tightFilterCopy    = 0x00
	tightFilterPalette = 0x20
)

// tightStreamCopy and tightStreamPalette are which of the protocol's four
// independent zlib streams this codec commits each filter to. Using fixed
// stream indices per filter keeps the control-byte encoding simple: the
// decode side derives streamID as (compControl>>4)&0x03, so these values
// must stay consistent with the filter bits above.
const (
	tightStreamCopy    = 0
	tightStreamPalette = 2
)

// TightCodec implements the Tight encoding's basic-compression filters
// (plain zlib and palette) plus solid fills. It holds one zlib.Writer per
// protocol stream slot, each a persistent stream across rects within a
// connection — the reason Tight is Ordered.
type TightCodec struct {
	baseCodec
	streams [4]*tightStream
}

type tightStream struct {
	zw  *zlib.Writer
	buf bytes.Buffer
}

func newTightStream() *tightStream {
	s := &tightStream{}
	s.zw = zlib.NewWriter(&s.buf)
	return s
}

func newTightCodec() *TightCodec { return &TightCodec{} }

func (c *TightCodec) Id() CodecId         { return CodecTight }
func (c *TightCodec) Flags() EncoderFlags { return FlagOrdered | FlagUseNativePF }
func (c *TightCodec) MaxPaletteSize() int { return 256 }
func (c *TightCodec) IsSupported(peer PeerCaps) bool { return peer.Supports(CodecTight) }

func (c *TightCodec) stream(id int) *tightStream {
	if c.streams[id] == nil {
		c.streams[id] = newTightStream()
	}
	return c.streams[id]
}

// compressThrough writes data into the numbered stream, sync-flushes it,
// and returns only the bytes newly produced by this call — a
// self-contained deflate block the peer's persistent zlib.Reader can
// decompress without waiting for more input.
func compressThrough(s *tightStream, data []byte) ([]byte, error) {
	before := s.buf.Len()
	if _, err := s.zw.Write(data); err != nil {
		return nil, err
	}
	if err := s.zw.Flush(); err != nil {
		return nil, err
	}
	chunk := make([]byte, s.buf.Len()-before)
	copy(chunk, s.buf.Bytes()[before:])
	s.buf.Reset()
	return chunk, nil
}

// appendCompactLength appends length's compact (1-3 byte, 7-bits-per-byte
// with a continuation bit) encoding, mirroring the decode side's
// readCompressedData bit-for-bit.
func appendCompactLength(buf []byte, length int) []byte {
	b0 := byte(length & 0x7F)
	if length < 0x80 {
		return append(buf, b0)
	}
	buf = append(buf, b0|0x80)
	rest := length >> 7
	b1 := byte(rest & 0x7F)
	if rest < 0x80 {
		return append(buf, b1)
	}
	buf = append(buf, b1|0x80)
	return append(buf, byte(rest>>7))
}

func (c *TightCodec) WriteRect(pixels []byte, pf PixelFormat, palette *Palette, peer PeerCaps, out *OutputItem) error {
	if palette == nil || palette.Size() == 0 {
		return c.writeCopy(pixels, out)
	}
	return c.writePalette(pixels, pf, palette, out)
}

func (c *TightCodec) writeCopy(pixels []byte, out *OutputItem) error {
	chunk, err := compressThrough(c.stream(tightStreamCopy), pixels)
	if err != nil {
		return errCodecFailure("tight.writeCopy", err)
	}
	buf := []byte{tightFilterCopy | (tightStreamCopy << 4)}
	buf = appendCompactLength(buf, len(chunk))
	buf = append(buf, chunk...)
	out.Payload = buf
	return nil
}

func (c *TightCodec) writePalette(pixels []byte, pf PixelFormat, palette *Palette, out *OutputItem) error {
	bpp := pf.BytesPerPixel()
	width := out.rect.Width()
	height := out.rect.Height()

	bitsPerIndex := 8
	if palette.Size() <= 2 {
		bitsPerIndex = 1
	}
	rowSize := width
	if bitsPerIndex == 1 {
		rowSize = (width + 7) / 8
	}
	indexed := make([]byte, rowSize*height)
	for y := 0; y < height; y++ {
		rowOff := y * width * bpp
		if bitsPerIndex == 8 {
			out := y * rowSize
			for x := 0; x < width; x++ {
				v := pf.GetPixel(pixels, rowOff+x*bpp)
				indexed[out+x] = byte(palette.IndexOf(v))
			}
			continue
		}
		for x := 0; x < width; x++ {
			v := pf.GetPixel(pixels, rowOff+x*bpp)
			if palette.IndexOf(v) == 1 {
				indexed[y*rowSize+x/8] |= 1 << (7 - uint(x%8))
			}
		}
	}

	chunk, err := compressThrough(c.stream(tightStreamPalette), indexed)
	if err != nil {
		return errCodecFailure("tight.writePalette", err)
	}

	buf := []byte{tightFilterPalette | (tightStreamPalette << 4)}
	buf = append(buf, byte(palette.Size()-1))
	for i := 0; i < palette.Size(); i++ {
		colour := make([]byte, bpp)
		pf.PutPixel(colour, 0, palette.At(i))
		buf = append(buf, colour...)
	}
	buf = appendCompactLength(buf, len(chunk))
	buf = append(buf, chunk...)
	out.Payload = buf
	return nil
}

func (c *TightCodec) WriteSolidRect(w, h int, pf PixelFormat, colour []byte, peer PeerCaps, out *OutputItem) error {
	buf := []byte{tightCtrlFill}
	buf = append(buf, colour[:pf.BytesPerPixel()]...)
	out.Payload = buf
	return nil
}
