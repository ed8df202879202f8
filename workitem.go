package rfbencoder

// WorkItem is one sub-rectangle queued for worker-pool analysis and
// encoding. Owned by the queue until a worker claims it.
type WorkItem struct {
	seq     uint64
	rect    Rect
	surface PixelSurface
	peer    PeerCaps
}

// PreparedItem is the Content Analyzer's output for one WorkItem: the
// pixel buffer to encode, its classification, and the palette (if any).
type PreparedItem struct {
	seq     uint64
	rect    Rect
	pixels  []byte
	pf      PixelFormat
	class   ContentClass
	palette *Palette
	codec   CodecId
	peer    PeerCaps
}

// OutputItem is one encoded rectangle ready for the owner thread to write
// to the peer. Its lifetime ends when the serializer has written it.
type OutputItem struct {
	seq   uint64
	rect  Rect
	class ContentClass
	codec CodecId
	// Payload is the codec-specific encoded bytes, opaque to the
	// manager (§6.1: codec payloads are opaque to the core).
	Payload []byte
}
