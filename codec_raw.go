package rfbencoder

// RawCodec emits pixels verbatim, in the peer's requested pixel format,
// with no compression. It has no cross-call state, so it's stateless
// between calls and safe to run from any worker concurrently.
type RawCodec struct {
	baseCodec
}

func newRawCodec() *RawCodec { return &RawCodec{} }

func (c *RawCodec) Id() CodecId           { return CodecRaw }
func (c *RawCodec) Flags() EncoderFlags   { return 0 }
func (c *RawCodec) MaxPaletteSize() int   { return 0 }
func (c *RawCodec) IsSupported(peer PeerCaps) bool { return true }

func (c *RawCodec) WriteRect(pixels []byte, pf PixelFormat, palette *Palette, peer PeerCaps, out *OutputItem) error {
	out.Payload = append(out.Payload[:0], pixels...)
	return nil
}

func (c *RawCodec) WriteSolidRect(w, h int, pf PixelFormat, colour []byte, peer PeerCaps, out *OutputItem) error {
	bpp := pf.BytesPerPixel()
	buf := make([]byte, w*h*bpp)
	for i := 0; i < w*h; i++ {
		copy(buf[i*bpp:(i+1)*bpp], colour)
	}
	out.Payload = buf
	return nil
}
