package rfbencoder

import "testing"

func TestFindSolidRectsWholeRegionUniform(t *testing.T) {
	pf := NewPixelFormat(32)
	s := NewMemPixelSurface(64, 64, pf)
	colour := make([]byte, pf.BytesPerPixel())
	pf.PutPixel(colour, 0, 0xAABBCC)
	s.Fill(s.Rect(), colour)

	changed := NewRegion(s.Rect())
	solids, leftover := findSolidRects(s, changed)
	if len(solids) != 1 {
		t.Fatalf("expected 1 solid rect for a uniform surface, got %d", len(solids))
	}
	if solids[0].rect != s.Rect() {
		t.Fatalf("solid rect = %+v, want the whole surface %+v", solids[0].rect, s.Rect())
	}
	if !leftover.IsEmpty() {
		t.Fatalf("leftover should be empty, got %d rects", leftover.NumRects())
	}
}

func TestFindSolidRectsSmallerThanSearchBlock(t *testing.T) {
	pf := NewPixelFormat(32)
	// Smaller than one search block on a side: never considered solid.
	s := NewMemPixelSurface(8, 8, pf)
	changed := NewRegion(s.Rect())
	solids, leftover := findSolidRects(s, changed)
	if len(solids) != 0 {
		t.Fatalf("expected no solid rects below the search block size, got %d", len(solids))
	}
	if leftover.NumRects() != 1 {
		t.Fatalf("leftover should be the whole rect, got %d pieces", leftover.NumRects())
	}
}

func TestFindSolidRectsPartialSolidBlock(t *testing.T) {
	pf := NewPixelFormat(32)
	s := NewMemPixelSurface(64, 64, pf)
	bg := make([]byte, pf.BytesPerPixel())
	pf.PutPixel(bg, 0, 0x010101)
	s.Fill(s.Rect(), bg)

	noise := make([]byte, pf.BytesPerPixel())
	pf.PutPixel(noise, 0, 0xFF00FF)
	s.Fill(NewRect(0, 0, 4, 4), noise)

	changed := NewRegion(s.Rect())
	solids, leftover := findSolidRects(s, changed)
	totalSolidArea := 0
	for _, sr := range solids {
		totalSolidArea += sr.rect.Area()
	}
	leftoverArea := 0
	for _, r := range leftover.Rects() {
		leftoverArea += r.Area()
	}
	if totalSolidArea+leftoverArea != s.Rect().Area() {
		t.Fatalf("solid+leftover area = %d, want %d", totalSolidArea+leftoverArea, s.Rect().Area())
	}
}
