package rfbencoder

import (
	"bytes"
	"testing"

	"github.com/bigangryrobot/rfbencoder/internal/testdecode"
)

func samplePixels(pf PixelFormat, w, h int) []byte {
	return fillPixels(pf, w, h, func(x, y int) uint32 {
		if (x/4+y/4)%2 == 0 {
			return 0x102030
		}
		return 0x405060
	})
}

func TestRawRoundTrip(t *testing.T) {
	pf := NewPixelFormat(32)
	w, h := 16, 16
	pixels := samplePixels(pf, w, h)
	codec := newRawCodec()
	out := &OutputItem{rect: NewRect(0, 0, w, h)}
	if err := codec.WriteRect(pixels, pf, nil, PeerCaps{}, out); err != nil {
		t.Fatalf("WriteRect: %v", err)
	}
	got, err := testdecode.Raw(out.Payload, w, h, pf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, pixels) {
		t.Fatal("round-tripped pixels differ from the original")
	}
}

func TestRRERoundTrip(t *testing.T) {
	pf := NewPixelFormat(16)
	w, h := 32, 32
	pixels := samplePixels(pf, w, h)
	codec := newRRECodec()
	out := &OutputItem{rect: NewRect(0, 0, w, h)}
	if err := codec.WriteRect(pixels, pf, nil, PeerCaps{}, out); err != nil {
		t.Fatalf("WriteRect: %v", err)
	}
	got, err := testdecode.RRE(out.Payload, w, h, pf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, pixels) {
		t.Fatal("RRE round trip differs from the original pixels")
	}
}

func TestHextileRoundTrip(t *testing.T) {
	pf := NewPixelFormat(32)
	w, h := 48, 48
	pixels := samplePixels(pf, w, h)
	codec := newHextileCodec()
	out := &OutputItem{rect: NewRect(0, 0, w, h)}
	if err := codec.WriteRect(pixels, pf, nil, PeerCaps{}, out); err != nil {
		t.Fatalf("WriteRect: %v", err)
	}
	got, err := testdecode.Hextile(out.Payload, w, h, pf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, pixels) {
		t.Fatal("Hextile round trip differs from the original pixels")
	}
}

func TestAllCodecsSolidRoundTripViaFill(t *testing.T) {
	pf := NewPixelFormat(32)
	w, h := 20, 20
	colour := make([]byte, pf.BytesPerPixel())
	pf.PutPixel(colour, 0, 0xABCDEF)
	want := fillPixels(pf, w, h, func(x, y int) uint32 { return 0xABCDEF })

	for _, tc := range []struct {
		name  string
		codec Codec
	}{
		{"Raw", newRawCodec()},
		{"RRE", newRRECodec()},
		{"Hextile", newHextileCodec()},
	} {
		out := &OutputItem{rect: NewRect(0, 0, w, h)}
		if err := tc.codec.WriteSolidRect(w, h, pf, colour, PeerCaps{}, out); err != nil {
			t.Fatalf("%s WriteSolidRect: %v", tc.name, err)
		}
		var got []byte
		var err error
		switch tc.name {
		case "Raw":
			got, err = testdecode.Raw(out.Payload, w, h, pf)
		case "RRE":
			got, err = testdecode.RRE(out.Payload, w, h, pf)
		case "Hextile":
			got, err = testdecode.Hextile(out.Payload, w, h, pf)
		}
		if err != nil {
			t.Fatalf("%s decode: %v", tc.name, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("%s solid round trip differs from the expected fill", tc.name)
		}
	}
}

func TestTightCopyRoundTrip(t *testing.T) {
	pf := NewPixelFormat(32)
	w, h := 16, 16
	pixels := samplePixels(pf, w, h)
	codec := newTightCodec()
	out := &OutputItem{rect: NewRect(0, 0, w, h)}
	if err := codec.WriteRect(pixels, pf, NewPalette(256), PeerCaps{}, out); err != nil {
		t.Fatalf("WriteRect: %v", err)
	}
	got, err := testdecode.TightCopy(out.Payload, w, h, pf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, pixels) {
		t.Fatal("Tight copy round trip differs from the original pixels")
	}
}

func TestZRLERoundTrip(t *testing.T) {
	pf := NewPixelFormat(32)
	codec := newZRLECodec()
	decoder := testdecode.NewZRLEDecoder(pf)

	for i, dims := range []struct{ w, h int }{{80, 80}, {16, 40}, {128, 16}} {
		pixels := samplePixels(pf, dims.w, dims.h)
		out := &OutputItem{rect: NewRect(0, 0, dims.w, dims.h)}
		if err := codec.WriteRect(pixels, pf, nil, PeerCaps{}, out); err != nil {
			t.Fatalf("rect %d WriteRect: %v", i, err)
		}
		got, err := decoder.Decode(out.Payload, dims.w, dims.h)
		if err != nil {
			t.Fatalf("rect %d decode: %v", i, err)
		}
		if !bytes.Equal(got, pixels) {
			t.Fatalf("rect %d: ZRLE round trip differs from the original pixels", i)
		}
	}
}

func TestTightPaletteRoundTrip(t *testing.T) {
	pf := NewPixelFormat(32)
	w, h := 24, 24
	pixels := fillPixels(pf, w, h, func(x, y int) uint32 {
		if (x+y)%2 == 0 {
			return 0x112233
		}
		return 0x445566
	})
	palette := NewPalette(256)
	for _, c := range []uint32{0x112233, 0x445566} {
		palette.Insert(c)
	}

	codec := newTightCodec()
	out := &OutputItem{rect: NewRect(0, 0, w, h)}
	if err := codec.WriteRect(pixels, pf, palette, PeerCaps{}, out); err != nil {
		t.Fatalf("WriteRect: %v", err)
	}
	got, err := testdecode.NewTightDecoder(pf).Decode(out.Payload, w, h)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, pixels) {
		t.Fatal("Tight palette round trip differs from the original pixels")
	}
}

func TestTightPaletteAndCopyShareDecoderAcrossStreams(t *testing.T) {
	pf := NewPixelFormat(32)
	w, h := 16, 16
	codec := newTightCodec()
	decoder := testdecode.NewTightDecoder(pf)

	copyPixels := samplePixels(pf, w, h)
	out1 := &OutputItem{rect: NewRect(0, 0, w, h)}
	if err := codec.WriteRect(copyPixels, pf, nil, PeerCaps{}, out1); err != nil {
		t.Fatalf("copy WriteRect: %v", err)
	}
	got1, err := decoder.Decode(out1.Payload, w, h)
	if err != nil {
		t.Fatalf("copy decode: %v", err)
	}
	if !bytes.Equal(got1, copyPixels) {
		t.Fatal("copy rect round trip differs from the original pixels")
	}

	palettePixels := fillPixels(pf, w, h, func(x, y int) uint32 { return 0x0F0F0F })
	palette := NewPalette(256)
	palette.Insert(0x0F0F0F)
	out2 := &OutputItem{rect: NewRect(0, 0, w, h)}
	if err := codec.WriteRect(palettePixels, pf, palette, PeerCaps{}, out2); err != nil {
		t.Fatalf("palette WriteRect: %v", err)
	}
	got2, err := decoder.Decode(out2.Payload, w, h)
	if err != nil {
		t.Fatalf("palette decode: %v", err)
	}
	if !bytes.Equal(got2, palettePixels) {
		t.Fatal("palette rect round trip differs from the original pixels")
	}
}

func TestTightFillRoundTrip(t *testing.T) {
	pf := NewPixelFormat(32)
	w, h := 10, 10
	colour := make([]byte, pf.BytesPerPixel())
	pf.PutPixel(colour, 0, 0x030201)
	codec := newTightCodec()
	out := &OutputItem{rect: NewRect(0, 0, w, h)}
	if err := codec.WriteSolidRect(w, h, pf, colour, PeerCaps{}, out); err != nil {
		t.Fatalf("WriteSolidRect: %v", err)
	}
	got, err := testdecode.TightFill(out.Payload, w, h, pf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := fillPixels(pf, w, h, func(x, y int) uint32 { return 0x030201 })
	if !bytes.Equal(got, want) {
		t.Fatal("Tight fill round trip differs from the expected fill")
	}
}
