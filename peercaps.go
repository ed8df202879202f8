package rfbencoder

// Subsampling names a JPEG chroma-subsampling mode a peer may request.
// Gray discards color entirely and is used as a blanket hint to force
// TightJPEG for every content class (§4.1 step 4).
type Subsampling int

const (
	SubsampleAuto Subsampling = iota
	Subsample1X
	Subsample2X
	Subsample4X
	SubsampleGray
)

// PeerCaps is a snapshot of what a connected peer declared it supports,
// taken once per update so the pipeline's view of capabilities can't
// change mid-flight.
type PeerCaps struct {
	PreferredEncoding CodecId
	SupportedEncodings map[CodecId]bool
	PixelFormat        PixelFormat

	// JPEGQuality is -1 when unspecified, else 0..9.
	JPEGQuality int
	Subsampling Subsampling
	// CompressLevel is -1 when unspecified, else 0..9.
	CompressLevel int

	ExtendedClipboard     bool
	Fence                 bool
	LastRect              bool
	ContinuousUpdates     bool
}

// Supports reports whether the peer advertised support for id.
func (pc PeerCaps) Supports(id CodecId) bool {
	return pc.SupportedEncodings != nil && pc.SupportedEncodings[id]
}
