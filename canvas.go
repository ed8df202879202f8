package rfbencoder

import (
	"sync"
)

// PixelSurface is the read-only view of the current framebuffer the
// pipeline pulls pixels from. Implementations must allow concurrent reads
// from multiple workers during a single WriteUpdate call.
type PixelSurface interface {
	PixelFormat() PixelFormat
	Rect() Rect
	// GetImage copies region's pixels, in the surface's native pixel
	// format, into dst. dst must be at least region.Width()*bpp*region.Height() bytes.
	GetImage(dst []byte, region Rect) error
	// GetBuffer returns a zero-copy borrow of region's pixels and the
	// buffer's stride in bytes, when the surface's backing storage makes
	// that possible. ok is false if a borrow can't be produced and the
	// caller should fall back to GetImage.
	GetBuffer(region Rect) (buf []byte, stride int, ok bool)
}

// MemPixelSurface is an in-memory PixelSurface backed by a single packed
// pixel buffer in native format, row-major, no padding between rows. It is
// safe for concurrent use: reads may run in parallel, writes (used to
// simulate framebuffer changes between updates, e.g. in a demo server) take
// an exclusive lock.
type MemPixelSurface struct {
	mu     sync.RWMutex
	pf     PixelFormat
	width  int
	height int
	pix    []byte
}

// NewMemPixelSurface allocates a zeroed surface of the given size and
// pixel format.
func NewMemPixelSurface(width, height int, pf PixelFormat) *MemPixelSurface {
	return &MemPixelSurface{
		pf:     pf,
		width:  width,
		height: height,
		pix:    make([]byte, width*height*pf.BytesPerPixel()),
	}
}

func (s *MemPixelSurface) PixelFormat() PixelFormat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pf
}

func (s *MemPixelSurface) Rect() Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NewRect(0, 0, s.width, s.height)
}

func (s *MemPixelSurface) stride() int { return s.width * s.pf.BytesPerPixel() }

func (s *MemPixelSurface) GetImage(dst []byte, region Rect) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bpp := s.pf.BytesPerPixel()
	rowBytes := region.Width() * bpp
	stride := s.stride()
	for row := 0; row < region.Height(); row++ {
		srcOff := (region.Y()+row)*stride + region.X()*bpp
		dstOff := row * rowBytes
		copy(dst[dstOff:dstOff+rowBytes], s.pix[srcOff:srcOff+rowBytes])
	}
	return nil
}

// GetBuffer only returns a genuine zero-copy borrow (ok true) when region
// spans the surface's full width, so its rows are contiguous. Otherwise it
// returns a private copy, the same bytes GetImage would produce, with a
// stride of region.Width()*bpp and ok false.
func (s *MemPixelSurface) GetBuffer(region Rect) ([]byte, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stride := s.stride()
	bpp := s.pf.BytesPerPixel()
	if region.X() == 0 && region.Width() == s.width {
		off := region.Y() * stride
		end := region.BottomRight.Y * stride
		return s.pix[off:end], stride, true
	}
	buf := make([]byte, region.Width()*region.Height()*bpp)
	rowBytes := region.Width() * bpp
	for row := 0; row < region.Height(); row++ {
		srcOff := (region.Y()+row)*stride + region.X()*bpp
		copy(buf[row*rowBytes:(row+1)*rowBytes], s.pix[srcOff:srcOff+rowBytes])
	}
	return buf, rowBytes, false
}

// Fill writes colour (one native pixel's worth of bytes) into every pixel
// of region. Used by demo/test code to manufacture framebuffer changes.
func (s *MemPixelSurface) Fill(region Rect, colour []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bpp := s.pf.BytesPerPixel()
	stride := s.stride()
	for row := region.Y(); row < region.BottomRight.Y; row++ {
		rowOff := row*stride + region.X()*bpp
		for col := 0; col < region.Width(); col++ {
			copy(s.pix[rowOff+col*bpp:rowOff+(col+1)*bpp], colour)
		}
	}
}

// Draw copies raw pixel bytes (already in the surface's native format,
// row-major, no padding) into region.
func (s *MemPixelSurface) Draw(region Rect, pixels []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bpp := s.pf.BytesPerPixel()
	stride := s.stride()
	rowBytes := region.Width() * bpp
	for row := 0; row < region.Height(); row++ {
		dstOff := (region.Y()+row)*stride + region.X()*bpp
		copy(s.pix[dstOff:dstOff+rowBytes], pixels[row*rowBytes:(row+1)*rowBytes])
	}
}

// Copy performs an in-surface screen-to-screen copy, src -> dst, size
// pixels wide/tall. Used to simulate the effect a CopyRect update
// describes on the server's own idea of the framebuffer.
func (s *MemPixelSurface) Copy(dst, src Point, size Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bpp := s.pf.BytesPerPixel()
	stride := s.stride()
	rowBytes := size.X * bpp
	if dst.Y > src.Y {
		for row := size.Y - 1; row >= 0; row-- {
			d := (dst.Y+row)*stride + dst.X*bpp
			sOff := (src.Y+row)*stride + src.X*bpp
			copy(s.pix[d:d+rowBytes], s.pix[sOff:sOff+rowBytes])
		}
		return
	}
	for row := 0; row < size.Y; row++ {
		d := (dst.Y+row)*stride + dst.X*bpp
		sOff := (src.Y+row)*stride + src.X*bpp
		copy(s.pix[d:d+rowBytes], s.pix[sOff:sOff+rowBytes])
	}
}
