package rfbencoder

import (
	"bytes"
	"testing"
)

func demoPeer(pf PixelFormat) PeerCaps {
	return PeerCaps{
		PreferredEncoding: CodecTight,
		SupportedEncodings: map[CodecId]bool{
			CodecRaw: true, CodecRRE: true, CodecHextile: true,
			CodecTight: true, CodecTightJPEG: true, CodecZRLE: true,
		},
		PixelFormat:   pf,
		JPEGQuality:   -1,
		CompressLevel: -1,
		LastRect:      true,
		Fence:         true,
	}
}

// RecordingWriter tees everything written through it into an in-memory
// buffer a test can inspect afterward, the same shape a frame-buffer-stream
// recorder wraps a live connection with.
type RecordingWriter struct {
	bytes.Buffer
}

func TestEncodeManagerWriteUpdateProducesWellFormedStream(t *testing.T) {
	pf := NewPixelFormat(32)
	surface := NewMemPixelSurface(256, 256, pf)
	colour := make([]byte, pf.BytesPerPixel())
	pf.PutPixel(colour, 0, 0x112233)
	surface.Fill(surface.Rect(), colour)

	var rec RecordingWriter
	manager := NewEncodeManager(NewWriter(&rec), Config{Workers: 2})
	defer manager.Close()

	peer := demoPeer(pf)
	info := UpdateInfo{Changed: NewRegion(surface.Rect())}
	if err := manager.WriteUpdate(surface, info, peer, nil); err != nil {
		t.Fatalf("WriteUpdate: %v", err)
	}

	out := rec.Bytes()
	if len(out) < 4 {
		t.Fatalf("stream too short: %d bytes", len(out))
	}
	if out[0] != 0 {
		t.Fatalf("FramebufferUpdate msg type = %d, want 0", out[0])
	}
	if out[2] != 0xFF || out[3] != 0xFF {
		t.Fatalf("num_rects should be the LastRect sentinel 0xFFFF for a peer that supports it")
	}
	// The stream must end with the LastRect terminator rect.
	term := out[len(out)-12:]
	wantTerm := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0x20}
	if !bytes.Equal(term, wantTerm) {
		t.Fatalf("stream doesn't end with the LastRect terminator: last 12 bytes = %v", term)
	}
}

func TestEncodeManagerWriteUpdateWithCopyRect(t *testing.T) {
	pf := NewPixelFormat(16)
	surface := NewMemPixelSurface(64, 64, pf)

	var rec RecordingWriter
	manager := NewEncodeManager(NewWriter(&rec), Config{Workers: 1})
	defer manager.Close()

	peer := demoPeer(pf)
	info := UpdateInfo{
		Copied:    NewRegion(NewRect(0, 0, 32, 32)),
		CopyDelta: Point{4, 4},
	}
	if err := manager.WriteUpdate(surface, info, peer, nil); err != nil {
		t.Fatalf("WriteUpdate: %v", err)
	}
	if rec.Len() == 0 {
		t.Fatal("expected a non-empty update stream for a CopyRect-only update")
	}
}

func TestEncodeManagerMultipleUpdatesKeepZRLEStreamAlive(t *testing.T) {
	pf := NewPixelFormat(32)
	surface := NewMemPixelSurface(128, 128, pf)
	var rec RecordingWriter
	manager := NewEncodeManager(NewWriter(&rec), Config{Workers: 2})
	defer manager.Close()

	peer := demoPeer(pf)
	peer.PreferredEncoding = CodecZRLE

	for i := 0; i < 3; i++ {
		colour := make([]byte, pf.BytesPerPixel())
		pf.PutPixel(colour, 0, uint32(i+1))
		surface.Fill(NewRect(0, 0, 10, 10), colour)
		// A second colour keeps the rect from being classed Solid, so it
		// routes to the preferred ZRLE codec rather than to Tight.
		pf.PutPixel(colour, 0, uint32(0x100+i))
		surface.Fill(NewRect(0, 0, 5, 10), colour)
		info := UpdateInfo{Changed: NewRegion(NewRect(0, 0, 10, 10))}
		if err := manager.WriteUpdate(surface, info, peer, nil); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
}
