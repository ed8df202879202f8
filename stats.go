package rfbencoder

import (
	"fmt"
	"strings"

	"github.com/bigangryrobot/rfbencoder/internal/logger"
)

// statsKey indexes EncoderStatsCell by (CodecId, ContentClass). CopyRect
// traffic is tracked separately since it has no ContentClass.
type statsKey struct {
	codec CodecId
	class ContentClass
}

// EncoderStatsCell accumulates one (CodecId, ContentClass) bucket's worth
// of output.
type EncoderStatsCell struct {
	Rects           int64
	Pixels          int64
	Bytes           int64
	EquivalentBytes int64
}

// equivalentBytes is the hypothetical raw-encoding cost for a rect of the
// given area and bits-per-pixel: the baseline stats report compression
// ratios against.
func equivalentBytes(area int, bpp int) int64 {
	return int64(12 + area*bpp/8)
}

// Stats tracks per-codec, per-content-class output volume across the
// lifetime of an EncodeManager, and renders a human-readable summary.
type Stats struct {
	cells    map[statsKey]*EncoderStatsCell
	copyRect EncoderStatsCell
}

func newStats() *Stats {
	return &Stats{cells: make(map[statsKey]*EncoderStatsCell)}
}

func (s *Stats) cell(codec CodecId, class ContentClass) *EncoderStatsCell {
	k := statsKey{codec, class}
	c, ok := s.cells[k]
	if !ok {
		c = &EncoderStatsCell{}
		s.cells[k] = c
	}
	return c
}

// recordRect accounts one encoded rect of the given area, bpp, and
// on-wire byte count.
func (s *Stats) recordRect(codec CodecId, class ContentClass, area, bpp, wireBytes int) {
	c := s.cell(codec, class)
	c.Rects++
	c.Pixels += int64(area)
	c.Bytes += int64(wireBytes)
	c.EquivalentBytes += equivalentBytes(area, bpp)
}

// recordCopyRect accounts one CopyRect, which has no payload bytes of its
// own beyond the fixed src_x/src_y pair.
func (s *Stats) recordCopyRect(area, bpp int) {
	s.copyRect.Rects++
	s.copyRect.Pixels += int64(area)
	s.copyRect.Bytes += 4
	s.copyRect.EquivalentBytes += equivalentBytes(area, bpp)
}

// logSummary emits a totals line plus one line per non-empty (codec,
// class) bucket, matching §4.6's "omit codecs with zero rects" rule.
func (s *Stats) logSummary() {
	var totalRects, totalBytes, totalEquiv int64
	add := func(c EncoderStatsCell) {
		totalRects += c.Rects
		totalBytes += c.Bytes
		totalEquiv += c.EquivalentBytes
	}
	add(s.copyRect)
	for _, c := range s.cells {
		add(*c)
	}
	if totalRects == 0 {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "encode stats: %d rects, %d bytes, ratio 1:%.2f\n", totalRects, totalBytes, ratio(totalEquiv, totalBytes))
	if s.copyRect.Rects > 0 {
		fmt.Fprintf(&b, "  CopyRect: %d rects, %d bytes, ratio 1:%.2f\n",
			s.copyRect.Rects, s.copyRect.Bytes, ratio(s.copyRect.EquivalentBytes, s.copyRect.Bytes))
	}
	for k, c := range s.cells {
		if c.Rects == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s/%s: %d rects, %d bytes, ratio 1:%.2f\n",
			k.codec, k.class, c.Rects, c.Bytes, ratio(c.EquivalentBytes, c.Bytes))
	}
	logger.Infof("%s", strings.TrimRight(b.String(), "\n"))
}

func ratio(equiv, actual int64) float64 {
	if actual == 0 {
		return 0
	}
	return float64(equiv) / float64(actual)
}
