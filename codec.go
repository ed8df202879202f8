package rfbencoder

// ContentClass is how the Content Analyzer classifies a sub-rectangle's
// pixels before an encoder is chosen for it.
type ContentClass int

const (
	ClassSolid ContentClass = iota
	ClassBitmap
	ClassBitmapRLE
	ClassIndexed
	ClassIndexedRLE
	ClassFullColour
	numContentClasses
)

func (c ContentClass) String() string {
	switch c {
	case ClassSolid:
		return "Solid"
	case ClassBitmap:
		return "Bitmap"
	case ClassBitmapRLE:
		return "BitmapRLE"
	case ClassIndexed:
		return "Indexed"
	case ClassIndexedRLE:
		return "IndexedRLE"
	case ClassFullColour:
		return "FullColour"
	default:
		return "Unknown"
	}
}

// CodecId names one of the fixed family of encoder plugins.
type CodecId int

const (
	CodecRaw CodecId = iota
	CodecRRE
	CodecHextile
	CodecTight
	CodecTightJPEG
	CodecZRLE
)

func (c CodecId) String() string {
	switch c {
	case CodecRaw:
		return "Raw"
	case CodecRRE:
		return "RRE"
	case CodecHextile:
		return "Hextile"
	case CodecTight:
		return "Tight"
	case CodecTightJPEG:
		return "TightJPEG"
	case CodecZRLE:
		return "ZRLE"
	default:
		return "Unknown"
	}
}

// Encoding returns the wire encoding id this codec is written under.
func (c CodecId) Encoding() int32 {
	switch c {
	case CodecRaw:
		return 0
	case CodecRRE:
		return 2
	case CodecHextile:
		return 5
	case CodecTight:
		return 7
	case CodecZRLE:
		return 16
	case CodecTightJPEG:
		return 7 // TightJPEG is Tight's JPEG compression-control branch, same wire id.
	default:
		return 0
	}
}

// EncoderFlags is a bitset describing a codec instance's contract.
type EncoderFlags int

const (
	// FlagOrdered means the codec holds cross-call stream state (a
	// compressor) and rectangles emitted through it must be serialized
	// in submission order.
	FlagOrdered EncoderFlags = 1 << iota
	// FlagUseNativePF means the codec consumes pixels in the surface's
	// native pixel format rather than the peer's requested format.
	FlagUseNativePF
)

func (f EncoderFlags) Ordered() bool      { return f&FlagOrdered != 0 }
func (f EncoderFlags) UseNativePF() bool  { return f&FlagUseNativePF != 0 }

// Codec is the plugin contract every encoder implements (§6.2).
type Codec interface {
	Id() CodecId
	Flags() EncoderFlags
	// MaxPaletteSize is the largest palette an Indexed/IndexedRLE
	// rectangle may carry through this codec; 0 if not applicable.
	MaxPaletteSize() int
	IsSupported(peer PeerCaps) bool
	SetCompressLevel(level int8)
	SetQualityLevel(level int8)
	SetFineQualityLevel(level int8, subsampling Subsampling)
	// WriteRect encodes pixels (native or peer format per Flags) with
	// the given palette (possibly empty, for FullColour) into out.
	WriteRect(pixels []byte, pf PixelFormat, palette *Palette, peer PeerCaps, out *OutputItem) error
	// WriteSolidRect encodes a w x h rectangle of a single native-format
	// colour.
	WriteSolidRect(w, h int, pf PixelFormat, colour []byte, peer PeerCaps, out *OutputItem) error
}

// newCodecSet constructs one instance of every codec, the set an
// EncodeManager owns for the lifetime of a connection (stateful codecs'
// stream state spans updates).
func newCodecSet() map[CodecId]Codec {
	return map[CodecId]Codec{
		CodecRaw:       newRawCodec(),
		CodecRRE:       newRRECodec(),
		CodecHextile:   newHextileCodec(),
		CodecZRLE:      newZRLECodec(),
		CodecTight:     newTightCodec(),
		CodecTightJPEG: newTightJPEGCodec(),
	}
}
