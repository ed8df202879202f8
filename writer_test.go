package rfbencoder

import (
	"bytes"
	"testing"
)

func TestWriterBeginUpdateExactCount(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.BeginUpdate(false, 3); err != nil {
		t.Fatalf("BeginUpdate: %v", err)
	}
	want := []byte{0, 0, 0, 3}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("header = %v, want %v", buf.Bytes(), want)
	}
}

func TestWriterBeginEndUpdateLastRect(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.BeginUpdate(true, 0); err != nil {
		t.Fatalf("BeginUpdate: %v", err)
	}
	wantHeader := []byte{0, 0, 0xFF, 0xFF}
	if !bytes.Equal(buf.Bytes(), wantHeader) {
		t.Fatalf("header = %v, want %v", buf.Bytes(), wantHeader)
	}
	buf.Reset()
	if err := w.EndUpdate(true); err != nil {
		t.Fatalf("EndUpdate: %v", err)
	}
	// rect header: x,y,w,h all 0, then s32 encoding = -224.
	want := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0x20}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("LastRect terminator = %v, want %v", buf.Bytes(), want)
	}
}

func TestWriterEndUpdateNoOpWithoutLastRect(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.EndUpdate(false); err != nil {
		t.Fatalf("EndUpdate: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no bytes written, got %d", buf.Len())
	}
}

func TestWriterWriteCopyRect(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	r := NewRect(1, 2, 3, 4)
	if err := w.WriteCopyRect(r, Point{5, 6}); err != nil {
		t.Fatalf("WriteCopyRect: %v", err)
	}
	want := []byte{
		0, 1, 0, 2, 0, 3, 0, 4, // x,y,w,h
		0, 0, 0, 1, // encoding = 1 (CopyRect)
		0, 5, 0, 6, // src x,y
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("CopyRect bytes = %v, want %v", buf.Bytes(), want)
	}
}

func TestWriterWriteCutTextOversized(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	err := w.WriteCutText([]byte("hello"), 3)
	if _, ok := KindOf(err); !ok {
		t.Fatalf("expected a classified error, got %v", err)
	}
	if kind, _ := KindOf(err); kind != OversizedPayload {
		t.Fatalf("kind = %v, want OversizedPayload", kind)
	}
}

func TestWriterWriteCutTextWithinLimit(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	text := []byte("hi")
	if err := w.WriteCutText(text, 10); err != nil {
		t.Fatalf("WriteCutText: %v", err)
	}
	want := []byte{3, 0, 0, 0, 0, 0, 0, 2, 'h', 'i'}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("CutText bytes = %v, want %v", buf.Bytes(), want)
	}
}

func TestWriterFenceRejectsIncapablePeer(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	err := w.WriteFence(PeerCaps{Fence: false}, FenceFlagSyncNext, nil)
	if kind, ok := KindOf(err); !ok || kind != PeerIncapable {
		t.Fatalf("kind = %v (ok=%v), want PeerIncapable", kind, ok)
	}
}

func TestWriterFenceRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	big := make([]byte, MaxFencePayload+1)
	err := w.WriteFence(PeerCaps{Fence: true}, 0, big)
	if kind, ok := KindOf(err); !ok || kind != OversizedPayload {
		t.Fatalf("kind = %v (ok=%v), want OversizedPayload", kind, ok)
	}
}
