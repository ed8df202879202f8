package rfbencoder

// baseCodec carries the three tunables every codec accepts (§6.2) even
// when a particular codec ignores some of them.
type baseCodec struct {
	compressLevel    int8
	qualityLevel     int8
	fineQualityLevel int8
	subsampling      Subsampling
}

func (b *baseCodec) SetCompressLevel(level int8) { b.compressLevel = level }
func (b *baseCodec) SetQualityLevel(level int8)  { b.qualityLevel = level }
func (b *baseCodec) SetFineQualityLevel(level int8, subsampling Subsampling) {
	b.fineQualityLevel = level
	b.subsampling = subsampling
}

// writeColourBytes packs colour (already sized to pf.BytesPerPixel) into a
// freshly-sliced buffer so codecs never alias the caller's slice.
func writeColourBytes(colour []byte) []byte {
	out := make([]byte, len(colour))
	copy(out, colour)
	return out
}
