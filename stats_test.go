package rfbencoder

import "testing"

func TestStatsRecordRectAccumulates(t *testing.T) {
	s := newStats()
	s.recordRect(CodecTight, ClassFullColour, 1000, 32, 200)
	s.recordRect(CodecTight, ClassFullColour, 500, 32, 100)
	c := s.cell(CodecTight, ClassFullColour)
	if c.Rects != 2 {
		t.Fatalf("Rects = %d, want 2", c.Rects)
	}
	if c.Pixels != 1500 {
		t.Fatalf("Pixels = %d, want 1500", c.Pixels)
	}
	if c.Bytes != 300 {
		t.Fatalf("Bytes = %d, want 300", c.Bytes)
	}
}

func TestStatsEquivalentBytesFormula(t *testing.T) {
	if got := equivalentBytes(100, 32); got != 12+100*32/8 {
		t.Fatalf("equivalentBytes = %d, want %d", got, 12+100*32/8)
	}
}

func TestStatsRatioZeroActual(t *testing.T) {
	if got := ratio(100, 0); got != 0 {
		t.Fatalf("ratio with zero actual bytes = %v, want 0", got)
	}
}

func TestStatsRecordCopyRectSeparateFromCells(t *testing.T) {
	s := newStats()
	s.recordCopyRect(64, 32)
	if s.copyRect.Rects != 1 {
		t.Fatalf("copyRect.Rects = %d, want 1", s.copyRect.Rects)
	}
	if len(s.cells) != 0 {
		t.Fatalf("recordCopyRect should not populate the per-codec cells map")
	}
}
