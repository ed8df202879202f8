package rfbencoder

import (
	"bytes"
	"testing"
)

func TestReaderReadCutTextWithinLimit(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 2, 'h', 'i'})
	r := NewReader(&buf, 10)
	got, err := r.ReadCutText()
	if err != nil {
		t.Fatalf("ReadCutText: %v", err)
	}
	if string(got) != "hi" {
		t.Fatalf("got %q, want %q", got, "hi")
	}
}

func TestReaderReadCutTextOversizedIsDrained(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 5})
	buf.WriteString("hello")
	buf.WriteString("next")
	r := NewReader(&buf, 3)
	_, err := r.ReadCutText()
	if kind, ok := KindOf(err); !ok || kind != OversizedPayload {
		t.Fatalf("kind = %v (ok=%v), want OversizedPayload", kind, ok)
	}
	rest := make([]byte, 4)
	if _, err := buf.Read(rest); err != nil {
		t.Fatalf("read remaining stream: %v", err)
	}
	if string(rest) != "next" {
		t.Fatalf("stream desynced after oversized drain: got %q, want %q", rest, "next")
	}
}

func TestReaderReadFenceWithinLimit(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 1}) // flags = FenceFlagBlockBefore
	buf.WriteByte(3)
	buf.WriteString("abc")
	r := NewReader(&buf, 10)
	flags, payload, err := r.ReadFence()
	if err != nil {
		t.Fatalf("ReadFence: %v", err)
	}
	if flags != FenceFlagBlockBefore {
		t.Fatalf("flags = %v, want FenceFlagBlockBefore", flags)
	}
	if string(payload) != "abc" {
		t.Fatalf("payload = %q, want %q", payload, "abc")
	}
}

func TestReaderReadFenceOversized(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0})
	buf.WriteByte(byte(MaxFencePayload + 1))
	buf.Write(make([]byte, MaxFencePayload+1))
	r := NewReader(&buf, 10)
	_, _, err := r.ReadFence()
	if kind, ok := KindOf(err); !ok || kind != OversizedPayload {
		t.Fatalf("kind = %v (ok=%v), want OversizedPayload", kind, ok)
	}
}
