package rfbencoder

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// PixelFormat describes how a pixel value is laid out in memory and on the
// wire. Equality is value-wise (it's a plain struct, comparable with ==).
type PixelFormat struct {
	BitsPerPixel uint8
	Depth        uint8
	BigEndian    bool
	TrueColor    bool
	RedMax, GreenMax, BlueMax       uint16
	RedShift, GreenShift, BlueShift uint8
}

const pixelFormatWireLen = 16

// NewPixelFormat returns a sensible PixelFormat for the given bits per
// pixel: true-colour for 16 and 32, colour-mapped (TrueColor false) for 8.
// Any other value gives the zero PixelFormat.
func NewPixelFormat(bpp uint8) PixelFormat {
	switch bpp {
	case 8:
		return PixelFormat{BitsPerPixel: 8, Depth: 8, TrueColor: false}
	case 16:
		return PixelFormat{
			BitsPerPixel: 16, Depth: 16, TrueColor: true,
			RedMax: 31, GreenMax: 63, BlueMax: 31,
			RedShift: 11, GreenShift: 5, BlueShift: 0,
		}
	case 32:
		return PixelFormat{
			BitsPerPixel: 32, Depth: 24, TrueColor: true,
			RedMax: 255, GreenMax: 255, BlueMax: 255,
			RedShift: 16, GreenShift: 8, BlueShift: 0,
		}
	default:
		return PixelFormat{}
	}
}

// BytesPerPixel returns BitsPerPixel/8.
func (pf PixelFormat) BytesPerPixel() int { return int(pf.BitsPerPixel) / 8 }

func (pf PixelFormat) order() binary.ByteOrder {
	if pf.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// wireFormat is the on-the-wire shape of a PixelFormat: a fixed 16-byte
// block with 3 bytes of padding, same as the protocol's SetPixelFormat
// payload.
type wireFormat struct {
	BPP                             uint8
	Depth                           uint8
	BigEndian                       uint8
	TrueColor                       uint8
	RedMax, GreenMax, BlueMax       uint16
	RedShift, GreenShift, BlueShift uint8
	_                               [3]byte
}

func (pf PixelFormat) toWire() wireFormat {
	b2u8 := func(b bool) uint8 {
		if b {
			return 1
		}
		return 0
	}
	return wireFormat{
		BPP: pf.BitsPerPixel, Depth: pf.Depth,
		BigEndian: b2u8(pf.BigEndian), TrueColor: b2u8(pf.TrueColor),
		RedMax: pf.RedMax, GreenMax: pf.GreenMax, BlueMax: pf.BlueMax,
		RedShift: pf.RedShift, GreenShift: pf.GreenShift, BlueShift: pf.BlueShift,
	}
}

func fromWire(w wireFormat) PixelFormat {
	return PixelFormat{
		BitsPerPixel: w.BPP, Depth: w.Depth,
		BigEndian: w.BigEndian != 0, TrueColor: w.TrueColor != 0,
		RedMax: w.RedMax, GreenMax: w.GreenMax, BlueMax: w.BlueMax,
		RedShift: w.RedShift, GreenShift: w.GreenShift, BlueShift: w.BlueShift,
	}
}

// Marshal encodes pf into its 16-byte wire representation.
func (pf PixelFormat) Marshal() ([]byte, error) {
	switch pf.BitsPerPixel {
	case 8, 16, 32:
	default:
		return nil, fmt.Errorf("pixelformat: invalid bits-per-pixel %d; must be 8, 16, or 32", pf.BitsPerPixel)
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, pf.toWire()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read parses a 16-byte wire PixelFormat from r.
func (pf *PixelFormat) Read(r io.Reader) error {
	buf := make([]byte, pixelFormatWireLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	return pf.Unmarshal(buf)
}

func (pf *PixelFormat) Unmarshal(data []byte) error {
	var w wireFormat
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &w); err != nil {
		return err
	}
	*pf = fromWire(w)
	return nil
}

func (pf PixelFormat) String() string {
	return fmt.Sprintf("{bpp:%d depth:%d big-endian:%v true-color:%v max:(%d,%d,%d) shift:(%d,%d,%d)}",
		pf.BitsPerPixel, pf.Depth, pf.BigEndian, pf.TrueColor,
		pf.RedMax, pf.GreenMax, pf.BlueMax, pf.RedShift, pf.GreenShift, pf.BlueShift)
}

// GetPixel reads one native-width pixel value out of buf at byte offset
// off, honoring pf's endianness.
func (pf PixelFormat) GetPixel(buf []byte, off int) uint32 {
	switch pf.BitsPerPixel {
	case 8:
		return uint32(buf[off])
	case 16:
		return uint32(pf.order().Uint16(buf[off : off+2]))
	case 32:
		return pf.order().Uint32(buf[off : off+4])
	default:
		return 0
	}
}

// PutPixel writes one native-width pixel value into buf at byte offset off.
func (pf PixelFormat) PutPixel(buf []byte, off int, v uint32) {
	switch pf.BitsPerPixel {
	case 8:
		buf[off] = byte(v)
	case 16:
		pf.order().PutUint16(buf[off:off+2], uint16(v))
	case 32:
		pf.order().PutUint32(buf[off:off+4], v)
	}
}

// RGB splits a true-colour native pixel value into its 8-bit red/green/blue
// components, scaling each channel's max-width value up to 0-255.
func (pf PixelFormat) RGB(pixel uint32) (r, g, b uint8) {
	scale := func(v uint32, max uint16) uint8 {
		if max == 0 {
			return 0
		}
		return uint8((v * 255) / uint32(max))
	}
	rv := (pixel >> pf.RedShift) & uint32(pf.RedMax)
	gv := (pixel >> pf.GreenShift) & uint32(pf.GreenMax)
	bv := (pixel >> pf.BlueShift) & uint32(pf.BlueMax)
	return scale(rv, pf.RedMax), scale(gv, pf.GreenMax), scale(bv, pf.BlueMax)
}
