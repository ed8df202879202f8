package rfbencoder

// Point is an integer pixel coordinate.
type Point struct {
	X, Y int
}

// Rect is a half-open axis-aligned rectangle: TopLeft is inclusive,
// BottomRight is exclusive.
type Rect struct {
	TopLeft     Point
	BottomRight Point
}

// NewRect builds a Rect from the top-left point and a width/height.
func NewRect(x, y, w, h int) Rect {
	return Rect{
		TopLeft:     Point{x, y},
		BottomRight: Point{x + w, y + h},
	}
}

func (r Rect) X() int      { return r.TopLeft.X }
func (r Rect) Y() int      { return r.TopLeft.Y }
func (r Rect) Width() int  { return r.BottomRight.X - r.TopLeft.X }
func (r Rect) Height() int { return r.BottomRight.Y - r.TopLeft.Y }

// Area returns (br.x-tl.x)*(br.y-tl.y). Degenerate rects (width or height
// <= 0) have area 0.
func (r Rect) Area() int {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func (r Rect) IsEmpty() bool { return r.Area() == 0 }

// Valid reports whether tl.x <= br.x and tl.y <= br.y.
func (r Rect) Valid() bool {
	return r.TopLeft.X <= r.BottomRight.X && r.TopLeft.Y <= r.BottomRight.Y
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{
		TopLeft:     Point{r.TopLeft.X + dx, r.TopLeft.Y + dy},
		BottomRight: Point{r.BottomRight.X + dx, r.BottomRight.Y + dy},
	}
}

// Intersect returns the largest rect contained in both r and other. The
// result may be empty (IsEmpty() true) if they don't overlap.
func (r Rect) Intersect(other Rect) Rect {
	out := Rect{
		TopLeft:     Point{max(r.TopLeft.X, other.TopLeft.X), max(r.TopLeft.Y, other.TopLeft.Y)},
		BottomRight: Point{min(r.BottomRight.X, other.BottomRight.X), min(r.BottomRight.Y, other.BottomRight.Y)},
	}
	if !out.Valid() {
		return Rect{}
	}
	return out
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.TopLeft.X && p.X < r.BottomRight.X &&
		p.Y >= r.TopLeft.Y && p.Y < r.BottomRight.Y
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// splitCount returns how many sub-rects §4.5's splitting formula would
// produce for r: sub-rects of area <= maxArea and width <= maxWidth.
func splitCount(w, h, maxArea, maxWidth int) int {
	if w*h < maxArea && w < maxWidth {
		return 1
	}
	sw := min(w, maxWidth)
	sh := maxArea / sw
	if sh < 1 {
		sh = 1
	}
	nx := (w + sw - 1) / sw
	ny := (h + sh - 1) / sh
	return nx * ny
}

// Split partitions r into sub-rects of area <= maxArea and width <=
// maxWidth, in row-major order, matching splitCount's count exactly.
func (r Rect) Split(maxArea, maxWidth int) []Rect {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return nil
	}
	if w*h < maxArea && w < maxWidth {
		return []Rect{r}
	}
	sw := min(w, maxWidth)
	sh := maxArea / sw
	if sh < 1 {
		sh = 1
	}
	var out []Rect
	for y := r.TopLeft.Y; y < r.BottomRight.Y; y += sh {
		rh := min(sh, r.BottomRight.Y-y)
		for x := r.TopLeft.X; x < r.BottomRight.X; x += sw {
			rw := min(sw, r.BottomRight.X-x)
			out = append(out, NewRect(x, y, rw, rh))
		}
	}
	return out
}
