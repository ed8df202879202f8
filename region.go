package rfbencoder

// Region is a set of disjoint Rects whose union is the geometric region it
// represents. Union and Subtract both preserve disjointness.
type Region struct {
	rects []Rect
}

// NewRegion builds a Region from rects, normalizing away empty members.
func NewRegion(rects ...Rect) Region {
	var reg Region
	for _, r := range rects {
		reg = reg.Union(r)
	}
	return reg
}

func (reg Region) IsEmpty() bool { return len(reg.rects) == 0 }

func (reg Region) NumRects() int { return len(reg.rects) }

// Rects returns the disjoint rects making up reg, in no particular order.
func (reg Region) Rects() []Rect {
	out := make([]Rect, len(reg.rects))
	copy(out, reg.rects)
	return out
}

// RectsOrdered returns the disjoint rects sorted so that iteration order is
// deterministic: top-to-bottom, then left-to-right. reverseX/reverseY flip
// each axis's order, matching the CopyRect self-overwrite-avoidance rule in
// §4.5: ordering reversed in each axis when copy_delta has the
// corresponding sign.
func (reg Region) RectsOrdered(reverseX, reverseY bool) []Rect {
	out := reg.Rects()
	less := func(i, j int) bool {
		a, b := out[i], out[j]
		ay, by := a.TopLeft.Y, b.TopLeft.Y
		if reverseY {
			ay, by = -ay, -by
		}
		if ay != by {
			return ay < by
		}
		ax, bx := a.TopLeft.X, b.TopLeft.X
		if reverseX {
			ax, bx = -ax, -bx
		}
		return ax < bx
	}
	insertionSort(out, less)
	return out
}

func insertionSort(rs []Rect, less func(i, j int) bool) {
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			rs[j], rs[j-1] = rs[j-1], rs[j]
		}
	}
}

// Union adds r to reg, merging against overlapping rects so the result
// stays a disjoint set.
func (reg Region) Union(r Rect) Region {
	if r.IsEmpty() {
		return reg
	}
	pending := []Rect{r}
	var merged []Rect
	for _, existing := range reg.rects {
		var next []Rect
		for _, p := range pending {
			if p.Intersect(existing).IsEmpty() {
				next = append(next, p)
				continue
			}
			next = append(next, subtractRect(p, existing)...)
		}
		pending = next
		merged = append(merged, existing)
	}
	merged = append(merged, pending...)
	return Region{rects: merged}
}

// UnionRegion merges other into reg.
func (reg Region) UnionRegion(other Region) Region {
	out := reg
	for _, r := range other.rects {
		out = out.Union(r)
	}
	return out
}

// Subtract removes r from reg, preserving disjointness by re-expressing
// every rect that overlaps r as its non-overlapping remainder pieces.
func (reg Region) Subtract(r Rect) Region {
	if r.IsEmpty() || reg.IsEmpty() {
		return reg
	}
	var out []Rect
	for _, existing := range reg.rects {
		if existing.Intersect(r).IsEmpty() {
			out = append(out, existing)
			continue
		}
		out = append(out, subtractRect(existing, r)...)
	}
	return Region{rects: out}
}

// SubtractRegion removes every rect of other from reg.
func (reg Region) SubtractRegion(other Region) Region {
	out := reg
	for _, r := range other.rects {
		out = out.Subtract(r)
	}
	return out
}

// subtractRect returns a's area minus b's area as up to four disjoint
// rects: the classic windowing-system rect-minus-rect split, taking the
// top strip, bottom strip, left strip and right strip of the overlap in
// turn so the pieces never overlap each other.
func subtractRect(a, b Rect) []Rect {
	ov := a.Intersect(b)
	if ov.IsEmpty() {
		return []Rect{a}
	}
	var out []Rect
	// Top strip: full width of a, above the overlap.
	if ov.TopLeft.Y > a.TopLeft.Y {
		out = append(out, Rect{
			TopLeft:     Point{a.TopLeft.X, a.TopLeft.Y},
			BottomRight: Point{a.BottomRight.X, ov.TopLeft.Y},
		})
	}
	// Bottom strip: full width of a, below the overlap.
	if ov.BottomRight.Y < a.BottomRight.Y {
		out = append(out, Rect{
			TopLeft:     Point{a.TopLeft.X, ov.BottomRight.Y},
			BottomRight: Point{a.BottomRight.X, a.BottomRight.Y},
		})
	}
	// Left strip: restricted to the overlap's row band, left of overlap.
	if ov.TopLeft.X > a.TopLeft.X {
		out = append(out, Rect{
			TopLeft:     Point{a.TopLeft.X, ov.TopLeft.Y},
			BottomRight: Point{ov.TopLeft.X, ov.BottomRight.Y},
		})
	}
	// Right strip: restricted to the overlap's row band, right of overlap.
	if ov.BottomRight.X < a.BottomRight.X {
		out = append(out, Rect{
			TopLeft:     Point{ov.BottomRight.X, ov.TopLeft.Y},
			BottomRight: Point{a.BottomRight.X, ov.BottomRight.Y},
		})
	}
	return out
}
