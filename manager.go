package rfbencoder

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bigangryrobot/rfbencoder/internal/logger"
)

const (
	subRectMaxArea  = 65536
	subRectMaxWidth = 2048
)

// EncodeManager owns the codec set, worker pool, and stats for one
// connection's lifetime, and sequences every framebuffer update it's
// asked to write.
type EncodeManager struct {
	cfg     Config
	codecs  map[CodecId]Codec
	stats   *Stats
	pool    *workerPool
	writer  *Writer
	nextSeq uint64

	mu             sync.Mutex
	lastErr        error
	activeSelector *Selector
}

// NewEncodeManager builds a manager writing framebuffer updates to w.
func NewEncodeManager(w *Writer, cfg Config) *EncodeManager {
	m := &EncodeManager{
		cfg:    cfg,
		codecs: newCodecSet(),
		stats:  newStats(),
		writer: w,
	}
	m.pool = newWorkerPool(cfg.workers(), m.codecs, m.analyze, m.encode, m.recordCodecFailure)
	return m
}

// Close shuts the worker pool down and waits for every worker to exit;
// workers finish any work still queued, including ordered queues they
// own, before exiting.
func (m *EncodeManager) Close() {
	m.pool.shutdown()
}

func (m *EncodeManager) recordCodecFailure(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
	logger.Errorf("encode: codec failure: %v", err)
}

// WriteUpdate sequences one framebuffer update end to end per §4.5:
// header, CopyRects, Solid rects (if LastRect is supported), the
// remainder split and pushed through the worker pool, then end-of-update.
// A CodecFailure aborts the update (the pool itself keeps running).
func (m *EncodeManager) WriteUpdate(surface PixelSurface, info UpdateInfo, peer PeerCaps, cursorRect *Rect) error {
	m.mu.Lock()
	m.lastErr = nil
	m.mu.Unlock()

	selector := NewSelector(peer, m.codecs)

	changed := info.Changed
	var solids []solidRect
	if peer.LastRect {
		solids, changed = findSolidRects(surface, changed)
	}

	numRects, err := m.computeNumRects(info, changed, len(solids), cursorRect != nil, peer)
	if err != nil {
		return err
	}

	if err := m.writer.BeginUpdate(peer.LastRect, numRects); err != nil {
		return err
	}

	if err := m.writeCopyRects(info, peer); err != nil {
		return err
	}

	if err := m.writeSolidRects(solids, surface.PixelFormat(), selector, peer); err != nil {
		return err
	}

	if err := m.writeRects(surface, changed, selector, peer); err != nil {
		return err
	}

	if cursorRect != nil {
		if err := m.writeRects(surface, NewRegion(*cursorRect), selector, peer); err != nil {
			return err
		}
	}

	if err := m.writer.EndUpdate(peer.LastRect); err != nil {
		return err
	}

	m.mu.Lock()
	err = m.lastErr
	m.mu.Unlock()
	return err
}

// computeNumRects implements §4.5 step 1's exact-count path, used when
// the peer doesn't support LastRect.
func (m *EncodeManager) computeNumRects(info UpdateInfo, changed Region, numSolid int, hasCursor bool, peer PeerCaps) (int, error) {
	if peer.LastRect {
		return 0, nil
	}
	count := info.Copied.NumRects() + numSolid
	for _, r := range changed.Rects() {
		count += splitCount(r.Width(), r.Height(), subRectMaxArea, subRectMaxWidth)
	}
	if hasCursor {
		count++
	}
	return count, nil
}

// writeCopyRects emits one CopyRect per rect of info.Copied, ordering
// an axis in reverse (right-to-left, bottom-to-top) when CopyDelta is
// positive on it, so the peer never overwrites source pixels before it's
// done reading them.
func (m *EncodeManager) writeCopyRects(info UpdateInfo, peer PeerCaps) error {
	reverseX := info.CopyDelta.X > 0
	reverseY := info.CopyDelta.Y > 0
	bpp := int(peer.PixelFormat.BitsPerPixel)
	for _, r := range info.Copied.RectsOrdered(reverseX, reverseY) {
		src := Point{r.X() - info.CopyDelta.X, r.Y() - info.CopyDelta.Y}
		if err := m.writer.WriteCopyRect(r, src); err != nil {
			return err
		}
		m.stats.recordCopyRect(r.Area(), bpp)
	}
	return nil
}

// writeSolidRects writes every carved solid rect synchronously on the
// owner thread, per §4.2's "do not go through the parallel work queue".
func (m *EncodeManager) writeSolidRects(solids []solidRect, pf PixelFormat, selector *Selector, peer PeerCaps) error {
	for _, s := range solids {
		codecId := selector.CodecFor(ClassSolid)
		codec := m.codecs[codecId]
		out := &OutputItem{rect: s.rect, class: ClassSolid, codec: codecId}
		if err := codec.WriteSolidRect(s.rect.Width(), s.rect.Height(), pf, s.colour, peer, out); err != nil {
			return errCodecFailure("writeSolidRects", err)
		}
		if err := m.writer.WriteEncodedRect(out); err != nil {
			return err
		}
		m.stats.recordRect(codecId, ClassSolid, s.rect.Area(), int(pf.BitsPerPixel), len(out.Payload))
	}
	return nil
}

// writeRects splits changed into sub-rects bounded by §4.5's area/width
// formula, queues each as a WorkItem, and flushes the pool, writing
// encoded rects to the wire in the order the pool finished encoding them.
// That is not necessarily submission order: rects routed to one Ordered
// codec are written in the order that codec encoded them. A codec failure
// reported during the flush is returned once the pool has drained.
func (m *EncodeManager) writeRects(surface PixelSurface, changed Region, selector *Selector, peer PeerCaps) error {
	m.currentSelector(selector)

	var writeErr error
	for _, r := range changed.Rects() {
		for _, sub := range r.Split(subRectMaxArea, subRectMaxWidth) {
			seq := atomic.AddUint64(&m.nextSeq, 1)
			m.pool.submit(&WorkItem{seq: seq, rect: sub, surface: surface, peer: peer})
		}
	}

	m.pool.flush(func(out *OutputItem) {
		if err := m.writer.WriteEncodedRect(out); err != nil && writeErr == nil {
			writeErr = err
			return
		}
		pf := surface.PixelFormat()
		m.stats.recordRect(out.codec, out.class, out.rect.Area(), int(pf.BitsPerPixel), len(out.Payload))
	})
	m.pool.checkDrained()
	if writeErr != nil {
		return writeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// currentSelector stashes the selector analyze/encode need for the
// duration of one writeRects call. The manager only ever runs one update
// at a time (the owner thread is single-threaded by contract), so a
// plain field is safe.
func (m *EncodeManager) currentSelector(s *Selector) {
	m.mu.Lock()
	m.activeSelector = s
	m.mu.Unlock()
}

func (m *EncodeManager) analyze(item *WorkItem) *PreparedItem {
	m.mu.Lock()
	selector := m.activeSelector
	m.mu.Unlock()

	pf := item.surface.PixelFormat()
	bpp := pf.BytesPerPixel()
	buf, _, _ := item.surface.GetBuffer(item.rect)
	if len(buf) < item.rect.Width()*item.rect.Height()*bpp {
		fresh := make([]byte, item.rect.Width()*item.rect.Height()*bpp)
		_ = item.surface.GetImage(fresh, item.rect)
		buf = fresh
	}

	fullColourIsJPEG := selector.CodecFor(ClassFullColour) == CodecTightJPEG
	indexedCodec := m.codecs[selector.CodecFor(ClassIndexed)]
	indexedRLECodec := m.codecs[selector.CodecFor(ClassIndexedRLE)]
	maxPaletteSize := min(indexedCodec.MaxPaletteSize(), indexedRLECodec.MaxPaletteSize())
	maxColours := maxColoursFor(item.rect.Area(), item.peer.CompressLevel, fullColourIsJPEG, maxPaletteSize)

	a := analyzeRect(buf, pf, item.rect.Width(), item.rect.Height(), maxColours)
	codecId := selector.CodecFor(a.class)
	codec := m.codecs[codecId]

	pixels := buf
	if !codec.Flags().UseNativePF() {
		pixels = convertToPeerFormat(buf, pf, item.peer.PixelFormat)
		pf = item.peer.PixelFormat
	}

	return &PreparedItem{
		seq: item.seq, rect: item.rect, pixels: pixels, pf: pf,
		class: a.class, palette: a.palette, codec: codecId, peer: item.peer,
	}
}

func (m *EncodeManager) encode(p *PreparedItem) (*OutputItem, error) {
	codec := m.codecs[p.codec]
	out := &OutputItem{seq: p.seq, rect: p.rect, class: p.class, codec: p.codec}
	var err error
	if p.class == ClassSolid {
		colour := make([]byte, p.pf.BytesPerPixel())
		p.pf.PutPixel(colour, 0, p.palette.At(0))
		err = codec.WriteSolidRect(p.rect.Width(), p.rect.Height(), p.pf, colour, p.peer, out)
	} else {
		err = codec.WriteRect(p.pixels, p.pf, p.palette, p.peer, out)
	}
	if err != nil {
		return nil, fmt.Errorf("encode rect %v via %s: %w", p.rect, p.codec, err)
	}
	return out, nil
}

// convertToPeerFormat re-packs pixels from srcPf into dstPf, pixel by
// pixel, through the shared RGB extraction/reassembly path.
func convertToPeerFormat(pixels []byte, srcPf, dstPf PixelFormat) []byte {
	if srcPf == dstPf {
		return pixels
	}
	srcBpp := srcPf.BytesPerPixel()
	dstBpp := dstPf.BytesPerPixel()
	n := len(pixels) / srcBpp
	out := make([]byte, n*dstBpp)
	for i := 0; i < n; i++ {
		v := srcPf.GetPixel(pixels, i*srcBpp)
		var dv uint32
		if dstPf.TrueColor && srcPf.TrueColor {
			r, g, b := srcPf.RGB(v)
			rv := uint32(r) * uint32(dstPf.RedMax) / 255
			gv := uint32(g) * uint32(dstPf.GreenMax) / 255
			bv := uint32(b) * uint32(dstPf.BlueMax) / 255
			dv = (rv << dstPf.RedShift) | (gv << dstPf.GreenShift) | (bv << dstPf.BlueShift)
		} else {
			dv = v
		}
		dstPf.PutPixel(out, i*dstBpp, dv)
	}
	return out
}

// LogStats emits the human-readable summary §4.6 describes.
func (m *EncodeManager) LogStats() { m.stats.logSummary() }
