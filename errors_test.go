package rfbencoder

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindOf(t *testing.T) {
	err := errOversizedPayload("ReadCutText", fmt.Errorf("too big"))
	kind, ok := KindOf(err)
	if !ok || kind != OversizedPayload {
		t.Fatalf("KindOf = (%v, %v), want (OversizedPayload, true)", kind, ok)
	}
}

func TestErrorKindOfWrapped(t *testing.T) {
	inner := errProtocolViolation("ReadFence", fmt.Errorf("short read"))
	wrapped := fmt.Errorf("serve: %w", inner)
	kind, ok := KindOf(wrapped)
	if !ok || kind != ProtocolViolation {
		t.Fatalf("KindOf(wrapped) = (%v, %v), want (ProtocolViolation, true)", kind, ok)
	}
}

func TestErrorIsComparesByKindNotOp(t *testing.T) {
	a := errCodecFailure("encode rect 1", fmt.Errorf("boom"))
	b := errCodecFailure("encode rect 2", fmt.Errorf("different cause"))
	if !errors.Is(a, b) {
		t.Fatal("two *Error values with the same Kind should satisfy errors.Is")
	}
	c := errPeerIncapable("WriteFence", fmt.Errorf("no fence support"))
	if errors.Is(a, c) {
		t.Fatal("errors with different Kinds should not satisfy errors.Is")
	}
}

func TestErrorKindOfPlainError(t *testing.T) {
	if _, ok := KindOf(fmt.Errorf("plain")); ok {
		t.Fatal("a plain error should not resolve to any Kind")
	}
}
