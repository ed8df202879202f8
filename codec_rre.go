package rfbencoder

import "encoding/binary"

// RRECodec implements Rise-and-Run-length Encoding: one background colour
// for the whole rect plus a list of sub-rectangles that override it.
// Stateless between calls.
type RRECodec struct {
	baseCodec
}

func newRRECodec() *RRECodec { return &RRECodec{} }

func (c *RRECodec) Id() CodecId           { return CodecRRE }
func (c *RRECodec) Flags() EncoderFlags   { return 0 }
func (c *RRECodec) MaxPaletteSize() int   { return 0 }
func (c *RRECodec) IsSupported(peer PeerCaps) bool { return peer.Supports(CodecRRE) }

// subRect is one override rectangle inside an RRE-encoded rect, relative
// to the rect's own origin.
type subRect struct {
	colour      []byte
	x, y, w, h uint16
}

// WriteRect picks the most frequent pixel value as the background, then
// emits maximal horizontal runs of every other value as sub-rectangles,
// scanned row-major.
func (c *RRECodec) WriteRect(pixels []byte, pf PixelFormat, palette *Palette, peer PeerCaps, out *OutputItem) error {
	bpp := pf.BytesPerPixel()
	width := out.rect.Width()
	height := out.rect.Height()

	bg := mostFrequentPixel(pixels, bpp, pf)
	bgColour := make([]byte, bpp)
	pf.PutPixel(bgColour, 0, bg)

	var subs []subRect
	for row := 0; row < height; row++ {
		rowOff := row * width * bpp
		col := 0
		for col < width {
			v := pf.GetPixel(pixels, rowOff+col*bpp)
			if v == bg {
				col++
				continue
			}
			start := col
			for col < width && pf.GetPixel(pixels, rowOff+col*bpp) == v {
				col++
			}
			colour := make([]byte, bpp)
			pf.PutPixel(colour, 0, v)
			subs = append(subs, subRect{colour: colour, x: uint16(start), y: uint16(row), w: uint16(col - start), h: 1})
		}
	}

	buf := make([]byte, 0, 4+bpp+len(subs)*(bpp+8))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(subs)))
	buf = append(buf, bgColour...)
	for _, s := range subs {
		buf = append(buf, s.colour...)
		buf = binary.BigEndian.AppendUint16(buf, s.x)
		buf = binary.BigEndian.AppendUint16(buf, s.y)
		buf = binary.BigEndian.AppendUint16(buf, s.w)
		buf = binary.BigEndian.AppendUint16(buf, s.h)
	}
	out.Payload = buf
	return nil
}

func (c *RRECodec) WriteSolidRect(w, h int, pf PixelFormat, colour []byte, peer PeerCaps, out *OutputItem) error {
	buf := make([]byte, 0, 4+len(colour))
	buf = binary.BigEndian.AppendUint32(buf, 0)
	buf = append(buf, colour...)
	out.Payload = buf
	return nil
}

// mostFrequentPixel scans a pixel buffer decoded with pf and returns the
// value with the most occurrences, used as RRE's background.
func mostFrequentPixel(pixels []byte, bpp int, pf PixelFormat) uint32 {
	counts := make(map[uint32]int)
	var best uint32
	bestCount := -1
	for off := 0; off+bpp <= len(pixels); off += bpp {
		v := pf.GetPixel(pixels, off)
		counts[v]++
		if counts[v] > bestCount {
			bestCount = counts[v]
			best = v
		}
	}
	return best
}
