package rfbencoder

import "unsafe"

// analysis is what the Content Analyzer produces for one sub-rectangle.
type analysis struct {
	class   ContentClass
	palette *Palette
}

// maxColoursFor implements §4.3 step 1: the palette-size ceiling for a
// rect of the given area, compression level, and whether the FullColour
// slot resolved to TightJPEG.
func maxColoursFor(area int, compressLevel int, fullColourIsJPEG bool, indexedMaxPaletteSize int) int {
	var maxColours int
	if fullColourIsJPEG && compressLevel >= 0 && compressLevel < 2 {
		maxColours = 24
	} else if fullColourIsJPEG {
		maxColours = 96
	} else {
		divisor := 16
		if compressLevel >= 0 {
			divisor = 8 * compressLevel
		}
		if divisor < 4 {
			divisor = 4
		}
		maxColours = area / divisor
	}
	if maxColours < 2 {
		maxColours = 2
	}
	cap := indexedMaxPaletteSize
	if cap <= 0 || cap > 256 {
		cap = 256
	}
	if maxColours > cap {
		maxColours = cap
	}
	return maxColours
}

// pixelWord is the set of integer widths the analyzer is specialized for
// — one generic body below, monomorphized for 8/16/32 bits per pixel and
// dispatched at runtime on pf.BitsPerPixel, the same split the original's
// per-bpp analyzeRect variants make.
type pixelWord interface {
	uint8 | uint16 | uint32
}

// asWords reinterprets a native-format pixel buffer as a slice of T
// without copying, avoiding a per-pixel byte-assembly loop on the hot
// analysis path. It relies on pixels being laid out in the machine's
// native byte order, which is how an in-memory PixelSurface stores them.
func asWords[T pixelWord](pixels []byte) []T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	n := len(pixels) / size
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&pixels[0])), n)
}

// analyzeWords is the generic analyzer body: build the palette, count
// maximal horizontal runs, and report whether the palette overflowed.
func analyzeWords[T pixelWord](words []T, width, height, maxColours int) (palette *Palette, rleRuns int, overflowed bool) {
	palette = NewPalette(maxColours)
	for y := 0; y < height; y++ {
		row := words[y*width : y*width+width]
		x := 0
		for x < width {
			v := row[x]
			if !palette.Insert(uint32(v)) {
				return palette, rleRuns, true
			}
			for x < width && row[x] == v {
				x++
			}
			rleRuns++
		}
	}
	return palette, rleRuns, false
}

// analyzeRect implements §4.3 in full: palette-build with overflow
// detection, run counting, RLE decision, and classification.
func analyzeRect(pixels []byte, pf PixelFormat, width, height int, maxColours int) analysis {
	area := width * height
	var palette *Palette
	var rleRuns int
	var overflowed bool

	switch pf.BitsPerPixel {
	case 8:
		palette, rleRuns, overflowed = analyzeWords(asWords[uint8](pixels), width, height, maxColours)
	case 16:
		palette, rleRuns, overflowed = analyzeWords(asWords[uint16](pixels), width, height, maxColours)
	default:
		palette, rleRuns, overflowed = analyzeWords(asWords[uint32](pixels), width, height, maxColours)
	}

	if overflowed {
		palette.Clear()
		return analysis{class: ClassFullColour, palette: palette}
	}

	useRLE := rleRuns <= 2*area

	switch palette.Size() {
	case 0:
		return analysis{class: ClassFullColour, palette: palette}
	case 1:
		return analysis{class: ClassSolid, palette: palette}
	case 2:
		if useRLE {
			return analysis{class: ClassBitmapRLE, palette: palette}
		}
		return analysis{class: ClassBitmap, palette: palette}
	default:
		if useRLE {
			return analysis{class: ClassIndexedRLE, palette: palette}
		}
		return analysis{class: ClassIndexed, palette: palette}
	}
}
