package rfbencoder

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
)

const zrleTile = 64

// ZRLECodec runs one persistent zlib stream across every rect it encodes,
// flushing (zlib sync-flush, not Close) after each rect so the emitted
// bytes are self-contained on the wire while the compressor's dictionary
// keeps accumulating context across rects — which is exactly why this
// codec is Ordered: rects must reach the stream in submission order or
// the peer's decompressor desyncs.
type ZRLECodec struct {
	baseCodec
	zw  *zlib.Writer
	buf bytes.Buffer
}

func newZRLECodec() *ZRLECodec {
	c := &ZRLECodec{}
	c.zw = zlib.NewWriter(&c.buf)
	return c
}

func (c *ZRLECodec) Id() CodecId         { return CodecZRLE }
func (c *ZRLECodec) Flags() EncoderFlags { return FlagOrdered | FlagUseNativePF }
func (c *ZRLECodec) MaxPaletteSize() int { return 0 }
func (c *ZRLECodec) IsSupported(peer PeerCaps) bool { return peer.Supports(CodecZRLE) }

// writeTiles feeds every 64x64 tile into the zlib stream with subencoding
// byte 0 (raw cpixels); the palette and RLE tile subencodings are not used.
func (c *ZRLECodec) writeTiles(pixels []byte, pf PixelFormat, width, height int) error {
	bpp := pf.BytesPerPixel()
	cpixel := zrleCPixelSize(pf)
	for y := 0; y < height; y += zrleTile {
		tileH := min(zrleTile, height-y)
		for x := 0; x < width; x += zrleTile {
			tileW := min(zrleTile, width-x)
			if _, err := c.zw.Write([]byte{0}); err != nil {
				return err
			}
			for ty := 0; ty < tileH; ty++ {
				rowOff := (y+ty)*width*bpp + x*bpp
				for tx := 0; tx < tileW; tx++ {
					px := pixels[rowOff+tx*bpp : rowOff+tx*bpp+bpp]
					if _, err := c.zw.Write(zrleCPixel(px, cpixel)); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// zrleCPixelSize returns how many bytes ZRLE's "compact pixel" format
// uses for a given pixel format: any 32bpp format drops its high-order
// byte (the unused padding byte of the 24-bit-depth format
// NewPixelFormat(32) builds), everything else is sent at full width.
func zrleCPixelSize(pf PixelFormat) int {
	if pf.BitsPerPixel == 32 {
		return 3
	}
	return pf.BytesPerPixel()
}

func zrleCPixel(px []byte, cpixel int) []byte {
	if len(px) == cpixel {
		return px
	}
	// 32bpp -> 3 bytes: drop the padding byte, keep the three colour
	// bytes in their existing order.
	return px[:cpixel]
}

func (c *ZRLECodec) flushChunk(out *OutputItem) error {
	if err := c.zw.Flush(); err != nil {
		return fmt.Errorf("zrle: flush: %w", err)
	}
	// c.buf is reset after every chunk, so everything in it (including the
	// zlib header and any bytes emitted during writeTiles) belongs here.
	chunk := make([]byte, c.buf.Len())
	copy(chunk, c.buf.Bytes())
	c.buf.Reset()
	framed := make([]byte, 4+len(chunk))
	binary.BigEndian.PutUint32(framed, uint32(len(chunk)))
	copy(framed[4:], chunk)
	out.Payload = framed
	return nil
}

func (c *ZRLECodec) WriteRect(pixels []byte, pf PixelFormat, palette *Palette, peer PeerCaps, out *OutputItem) error {
	if err := c.writeTiles(pixels, pf, out.rect.Width(), out.rect.Height()); err != nil {
		return err
	}
	return c.flushChunk(out)
}

func (c *ZRLECodec) WriteSolidRect(w, h int, pf PixelFormat, colour []byte, peer PeerCaps, out *OutputItem) error {
	bpp := pf.BytesPerPixel()
	pixels := make([]byte, w*h*bpp)
	for i := 0; i < w*h; i++ {
		copy(pixels[i*bpp:(i+1)*bpp], colour)
	}
	if err := c.writeTiles(pixels, pf, w, h); err != nil {
		return err
	}
	return c.flushChunk(out)
}
