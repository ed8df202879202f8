package rfbencoder

const hextileTile = 16

// hextile sub-encoding mask bits.
const (
	hextileRaw               = 1 << 0
	hextileBackgroundSpec    = 1 << 1
	hextileForegroundSpec    = 1 << 2
	hextileAnySubrects       = 1 << 3
	hextileSubrectsColoured  = 1 << 4
)

// HextileCodec divides a rect into 16x16 tiles and encodes each
// independently: a uniform tile becomes a single background colour, any
// other tile falls back to raw pixels. It never carries state across
// tiles or calls.
type HextileCodec struct {
	baseCodec
}

func newHextileCodec() *HextileCodec { return &HextileCodec{} }

func (c *HextileCodec) Id() CodecId           { return CodecHextile }
func (c *HextileCodec) Flags() EncoderFlags   { return 0 }
func (c *HextileCodec) MaxPaletteSize() int   { return 0 }
func (c *HextileCodec) IsSupported(peer PeerCaps) bool { return peer.Supports(CodecHextile) }

func (c *HextileCodec) WriteRect(pixels []byte, pf PixelFormat, palette *Palette, peer PeerCaps, out *OutputItem) error {
	bpp := pf.BytesPerPixel()
	width := out.rect.Width()
	height := out.rect.Height()

	var buf []byte
	for y := 0; y < height; y += hextileTile {
		tileH := min(hextileTile, height-y)
		for x := 0; x < width; x += hextileTile {
			tileW := min(hextileTile, width-x)
			first := pf.GetPixel(pixels, (y*width+x)*bpp)
			uniform := true
			for ty := 0; ty < tileH && uniform; ty++ {
				rowOff := (y+ty)*width*bpp + x*bpp
				for tx := 0; tx < tileW; tx++ {
					if pf.GetPixel(pixels, rowOff+tx*bpp) != first {
						uniform = false
						break
					}
				}
			}
			if uniform {
				bg := make([]byte, bpp)
				pf.PutPixel(bg, 0, first)
				buf = append(buf, hextileBackgroundSpec)
				buf = append(buf, bg...)
				continue
			}
			buf = append(buf, hextileRaw)
			for ty := 0; ty < tileH; ty++ {
				rowOff := (y+ty)*width*bpp + x*bpp
				buf = append(buf, pixels[rowOff:rowOff+tileW*bpp]...)
			}
		}
	}
	out.Payload = buf
	return nil
}

func (c *HextileCodec) WriteSolidRect(w, h int, pf PixelFormat, colour []byte, peer PeerCaps, out *OutputItem) error {
	bpp := pf.BytesPerPixel()
	var buf []byte
	for y := 0; y < h; y += hextileTile {
		for x := 0; x < w; x += hextileTile {
			buf = append(buf, hextileBackgroundSpec)
			buf = append(buf, colour[:bpp]...)
		}
	}
	out.Payload = buf
	return nil
}
