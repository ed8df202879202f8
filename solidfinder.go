package rfbencoder

const (
	solidSearchBlock  = 16
	solidBlockMinArea = 2048
)

// solidRect is one carved-out monochromatic rectangle plus its colour, in
// the surface's native pixel format.
type solidRect struct {
	rect   Rect
	colour []byte
}

// findSolidRects scans every rect of changed for large monochromatic
// blocks, carving each one out and recursing on the geometric leftovers,
// in the order §4.2 specifies. It returns the solid rects found, in the
// order they were carved, and the remainder of changed with all of them
// subtracted.
func findSolidRects(surface PixelSurface, changed Region) ([]solidRect, Region) {
	var found []solidRect
	remaining := changed
	for _, r := range changed.Rects() {
		sub, leftover := findSolidInRect(surface, r)
		found = append(found, sub...)
		remaining = remaining.Subtract(r)
		remaining = remaining.UnionRegion(leftover)
	}
	return found, remaining
}

// findSolidInRect implements the single-rect recursive search of §4.2
// steps 1-6, returning every solid rect carved from r and the leftover
// region (r minus all carved solids) still needing general encoding.
func findSolidInRect(surface PixelSurface, r Rect) ([]solidRect, Region) {
	if r.Width() < solidSearchBlock || r.Height() < solidSearchBlock {
		return nil, NewRegion(r)
	}

	pf := surface.PixelFormat()
	bpp := pf.BytesPerPixel()

	for by := r.Y(); by+solidSearchBlock <= r.BottomRight.Y; by += solidSearchBlock {
		for bx := r.X(); bx+solidSearchBlock <= r.BottomRight.X; bx += solidSearchBlock {
			block := NewRect(bx, by, solidSearchBlock, solidSearchBlock)
			buf := make([]byte, solidSearchBlock*solidSearchBlock*bpp)
			if err := surface.GetImage(buf, block); err != nil {
				continue
			}
			candidate := pf.GetPixel(buf, 0)
			if !tileUniform(pf, buf, candidate) {
				continue
			}

			best := extendSolidAreaByBlock(surface, pf, r, bx, by, candidate)
			if best == r {
				return carveAndRecurse(surface, r, best, candidate, pf)
			}
			if best.Area() < solidBlockMinArea {
				continue
			}
			best = extendSolidAreaByPixel(surface, pf, r, best, candidate)
			return carveAndRecurse(surface, r, best, candidate, pf)
		}
	}
	return nil, NewRegion(r)
}

// tileUniform reports whether every pixel in buf equals candidate, reading
// each pixel through pf so the comparison honors pf's endianness the same
// way candidate itself was produced.
func tileUniform(pf PixelFormat, buf []byte, candidate uint32) bool {
	bpp := pf.BytesPerPixel()
	for off := 0; off+bpp <= len(buf); off += bpp {
		if pf.GetPixel(buf, off) != candidate {
			return false
		}
	}
	return true
}

func blockUniform(surface PixelSurface, pf PixelFormat, block Rect, candidate uint32) bool {
	bpp := pf.BytesPerPixel()
	buf := make([]byte, block.Width()*block.Height()*bpp)
	if err := surface.GetImage(buf, block); err != nil {
		return false
	}
	return tileUniform(pf, buf, candidate)
}

// extendSolidAreaByBlock grows the uniform 16x16 tile at (bx,by) rightward
// in 16-pixel steps until a non-matching tile is hit, then tries growing
// downward by whole row-strips bounded by the best width so far, tracking
// the (width,height) pair with maximum area.
func extendSolidAreaByBlock(surface PixelSurface, pf PixelFormat, bound Rect, bx, by int, candidate uint32) Rect {
	w := solidSearchBlock
	for bx+w+solidSearchBlock <= bound.BottomRight.X {
		block := NewRect(bx+w, by, solidSearchBlock, solidSearchBlock)
		if by+solidSearchBlock > bound.BottomRight.Y || !blockUniform(surface, pf, block, candidate) {
			break
		}
		w += solidSearchBlock
	}

	bestW, bestH := w, solidSearchBlock
	bestArea := bestW * bestH

	h := solidSearchBlock
	for by+h+solidSearchBlock <= bound.BottomRight.Y {
		ny := by + h
		rowOk := true
		for x := bx; x < bx+bestW; x += solidSearchBlock {
			bw := min(solidSearchBlock, bestW-(x-bx))
			block := NewRect(x, ny, bw, solidSearchBlock)
			if !blockUniform(surface, pf, block, candidate) {
				rowOk = false
				break
			}
		}
		if !rowOk {
			break
		}
		h += solidSearchBlock
		if bestW*h > bestArea {
			bestArea = bestW * h
			bestH = h
		}
	}

	return NewRect(bx, by, bestW, bestH)
}

// extendSolidAreaByPixel independently grows best one row/column at a
// time in each of the four directions while the new edge stays uniform,
// bounded by the rect it was found in.
func extendSolidAreaByPixel(surface PixelSurface, pf PixelFormat, bound Rect, best Rect, candidate uint32) Rect {
	r := best
	for r.X() > bound.X() {
		edge := NewRect(r.X()-1, r.Y(), 1, r.Height())
		if !blockUniform(surface, pf, edge, candidate) {
			break
		}
		r.TopLeft.X--
	}
	for r.BottomRight.X < bound.BottomRight.X {
		edge := NewRect(r.BottomRight.X, r.Y(), 1, r.Height())
		if !blockUniform(surface, pf, edge, candidate) {
			break
		}
		r.BottomRight.X++
	}
	for r.Y() > bound.Y() {
		edge := NewRect(r.X(), r.Y()-1, r.Width(), 1)
		if !blockUniform(surface, pf, edge, candidate) {
			break
		}
		r.TopLeft.Y--
	}
	for r.BottomRight.Y < bound.BottomRight.Y {
		edge := NewRect(r.X(), r.BottomRight.Y, r.Width(), 1)
		if !blockUniform(surface, pf, edge, candidate) {
			break
		}
		r.BottomRight.Y++
	}
	return r
}

// carveAndRecurse emits the solid rect found at best and recurses on every
// geometric leftover piece of r once best is removed from it, per §4.2
// step 5. The pieces come from the same rect-minus-rect split
// Region.Subtract uses, so all four possible strips (above, below, left,
// right of best) are covered, not just the subset that happens to run the
// full height or width of r.
func carveAndRecurse(surface PixelSurface, r Rect, best Rect, candidate uint32, pf PixelFormat) ([]solidRect, Region) {
	colour := make([]byte, pf.BytesPerPixel())
	pf.PutPixel(colour, 0, candidate)
	found := []solidRect{{rect: best, colour: colour}}
	var leftover Region

	for _, piece := range subtractRect(r, best) {
		subFound, subLeftover := findSolidInRect(surface, piece)
		found = append(found, subFound...)
		leftover = leftover.UnionRegion(subLeftover)
	}

	return found, leftover
}
