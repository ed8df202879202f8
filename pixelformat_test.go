package rfbencoder

import "testing"

func TestPixelFormatMarshalRoundTrip(t *testing.T) {
	pf := NewPixelFormat(32)
	wire, err := pf.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(wire) != pixelFormatWireLen {
		t.Fatalf("wire length = %d, want %d", len(wire), pixelFormatWireLen)
	}
	var got PixelFormat
	if err := got.Unmarshal(wire); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != pf {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, pf)
	}
}

func TestPixelFormatMarshalRejectsInvalidBPP(t *testing.T) {
	pf := PixelFormat{BitsPerPixel: 24}
	if _, err := pf.Marshal(); err == nil {
		t.Fatal("expected an error for an unsupported bits-per-pixel value")
	}
}

func TestPixelFormatGetPutPixelRoundTrip(t *testing.T) {
	for _, bpp := range []uint8{8, 16, 32} {
		pf := NewPixelFormat(bpp)
		buf := make([]byte, pf.BytesPerPixel())
		var v uint32 = 0x00ABCDEF & ((1 << bpp) - 1)
		pf.PutPixel(buf, 0, v)
		if got := pf.GetPixel(buf, 0); got != v {
			t.Fatalf("bpp=%d: GetPixel = %#x, want %#x", bpp, got, v)
		}
	}
}

func TestPixelFormatRGBExtraction(t *testing.T) {
	pf := NewPixelFormat(32)
	v := (uint32(0xAA) << pf.RedShift) | (uint32(0x55) << pf.GreenShift) | (uint32(0x11) << pf.BlueShift)
	r, g, b := pf.RGB(v)
	if r != 0xAA || g != 0x55 || b != 0x11 {
		t.Fatalf("RGB(%#x) = (%d,%d,%d), want (170,85,17)", v, r, g, b)
	}
}
