package rfbencoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
)

// TightJPEGCodec is Tight's JPEG compression-control branch: FullColour
// rects go through libjpeg-equivalent lossy compression, everything else
// (it still has to carry a palette-classified rect if the selector ever
// routes one here) falls back to the same basic/palette paths TightCodec
// uses, since TightJPEG is a specialization of Tight, not a separate
// stream family.
type TightJPEGCodec struct {
	baseCodec
	tight *TightCodec
}

func newTightJPEGCodec() *TightJPEGCodec {
	return &TightJPEGCodec{tight: newTightCodec()}
}

func (c *TightJPEGCodec) Id() CodecId         { return CodecTightJPEG }
func (c *TightJPEGCodec) Flags() EncoderFlags { return FlagOrdered | FlagUseNativePF }
func (c *TightJPEGCodec) MaxPaletteSize() int { return 256 }
func (c *TightJPEGCodec) IsSupported(peer PeerCaps) bool { return peer.Supports(CodecTightJPEG) }

func (c *TightJPEGCodec) SetCompressLevel(level int8) { c.tight.SetCompressLevel(level) }
func (c *TightJPEGCodec) SetQualityLevel(level int8) {
	c.baseCodec.SetQualityLevel(level)
	c.tight.SetQualityLevel(level)
}
func (c *TightJPEGCodec) SetFineQualityLevel(level int8, subsampling Subsampling) {
	c.baseCodec.SetFineQualityLevel(level, subsampling)
	c.tight.SetFineQualityLevel(level, subsampling)
}

func (c *TightJPEGCodec) WriteRect(pixels []byte, pf PixelFormat, palette *Palette, peer PeerCaps, out *OutputItem) error {
	if palette != nil && palette.Size() > 0 {
		return c.tight.WriteRect(pixels, pf, palette, peer, out)
	}
	return c.writeJPEG(pixels, pf, out.rect.Width(), out.rect.Height(), out)
}

func (c *TightJPEGCodec) WriteSolidRect(w, h int, pf PixelFormat, colour []byte, peer PeerCaps, out *OutputItem) error {
	return c.tight.WriteSolidRect(w, h, pf, colour, peer, out)
}

func (c *TightJPEGCodec) writeJPEG(pixels []byte, pf PixelFormat, w, h int, out *OutputItem) error {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bpp := pf.BytesPerPixel()
	for y := 0; y < h; y++ {
		rowOff := y * w * bpp
		for x := 0; x < w; x++ {
			v := pf.GetPixel(pixels, rowOff+x*bpp)
			r, g, b := pf.RGB(v)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	quality := jpegQuality(c.qualityLevel, c.fineQualityLevel)
	var jpegBuf bytes.Buffer
	if err := jpeg.Encode(&jpegBuf, img, &jpeg.Options{Quality: quality}); err != nil {
		return errCodecFailure("tightjpeg.writeJPEG", err)
	}

	buf := []byte{tightCtrlJPEG}
	buf = appendCompactLength(buf, jpegBuf.Len())
	buf = append(buf, jpegBuf.Bytes()...)
	out.Payload = buf
	return nil
}

// jpegQuality maps the codec's fine-grained quality knob (0-100, when
// set) or coarse quality level (0-9) to the stdlib encoder's 1-100 scale.
func jpegQuality(qualityLevel, fineQualityLevel int8) int {
	if fineQualityLevel >= 0 {
		q := int(fineQualityLevel)
		if q > 100 {
			q = 100
		}
		return q
	}
	if qualityLevel < 0 {
		return 75
	}
	return 5 + int(qualityLevel)*10
}
