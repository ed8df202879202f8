package rfbencoder

import "testing"

func TestRectAreaAndDims(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	if r.X() != 10 || r.Y() != 20 || r.Width() != 30 || r.Height() != 40 {
		t.Fatalf("unexpected dims: %+v", r)
	}
	if r.Area() != 1200 {
		t.Fatalf("area = %d, want 1200", r.Area())
	}
}

func TestRectIntersect(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 10, 10)
	got := a.Intersect(b)
	want := NewRect(5, 5, 5, 5)
	if got != want {
		t.Fatalf("intersect = %+v, want %+v", got, want)
	}

	c := NewRect(100, 100, 1, 1)
	if !a.Intersect(c).IsEmpty() {
		t.Fatalf("disjoint rects should intersect empty")
	}
}

func TestRectSplitCountMatchesSplit(t *testing.T) {
	cases := []struct{ w, h int }{
		{100, 100}, {2048, 2048}, {4096, 4096}, {1, 1}, {65536, 1},
	}
	for _, c := range cases {
		r := NewRect(0, 0, c.w, c.h)
		subs := r.Split(65536, 2048)
		want := splitCount(c.w, c.h, 65536, 2048)
		if len(subs) != want {
			t.Fatalf("w=%d h=%d: got %d sub-rects, splitCount said %d", c.w, c.h, len(subs), want)
		}
		area := 0
		for _, s := range subs {
			if s.Width() > 2048 {
				t.Fatalf("sub-rect width %d exceeds 2048", s.Width())
			}
			if s.Area() > 65536 {
				t.Fatalf("sub-rect area %d exceeds 65536", s.Area())
			}
			area += s.Area()
		}
		if area != r.Area() {
			t.Fatalf("w=%d h=%d: sub-rect areas sum to %d, want %d", c.w, c.h, area, r.Area())
		}
	}
}

func TestRectValidAndEmpty(t *testing.T) {
	if !NewRect(0, 0, 0, 0).IsEmpty() {
		t.Fatal("zero-size rect should be empty")
	}
	if NewRect(0, 0, 1, 1).IsEmpty() {
		t.Fatal("unit rect should not be empty")
	}
}
