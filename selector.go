package rfbencoder

// Selector maps each of the six content classes to a CodecId, given a
// peer's capabilities and preferred encoding, following §4.1's
// tie-break order exactly.
type Selector struct {
	slots [numContentClasses]CodecId
}

// SupportedPreferredEncoding is EncodeManager::supported(int)'s
// allow-list: the preferred-encoding hints in step 2 only apply for
// these ids, mirroring the original's static allow-list of encodings
// usable as a client's stated preference.
func SupportedPreferredEncoding(id CodecId) bool {
	switch id {
	case CodecRaw, CodecRRE, CodecHextile, CodecTight, CodecZRLE:
		return true
	default:
		return false
	}
}

// NewSelector builds the content-class -> codec mapping for one peer
// snapshot, given which codecs the pipeline has declared supported.
func NewSelector(peer PeerCaps, codecs map[CodecId]Codec) *Selector {
	s := &Selector{}
	for i := range s.slots {
		s.slots[i] = CodecRaw
	}

	jpegOk := codecs[CodecTightJPEG] != nil && codecs[CodecTightJPEG].IsSupported(peer) &&
		peer.PixelFormat.BitsPerPixel >= 16

	// Step 2: preferred-encoding hints.
	if SupportedPreferredEncoding(peer.PreferredEncoding) {
		switch peer.PreferredEncoding {
		case CodecRRE:
			s.slots[ClassBitmapRLE] = CodecRRE
			s.slots[ClassIndexedRLE] = CodecRRE
		case CodecHextile:
			s.slots[ClassBitmapRLE] = CodecHextile
			s.slots[ClassIndexedRLE] = CodecHextile
			s.slots[ClassFullColour] = CodecHextile
		case CodecTight:
			if jpegOk {
				s.slots[ClassFullColour] = CodecTightJPEG
			} else {
				s.slots[ClassFullColour] = CodecTight
			}
			s.slots[ClassIndexed] = CodecTight
			s.slots[ClassIndexedRLE] = CodecTight
			s.slots[ClassBitmap] = CodecTight
			s.slots[ClassBitmapRLE] = CodecTight
		case CodecZRLE:
			// Solid is deliberately left at Raw here; the fallback
			// pass below picks it up. Preserved as-is: the source
			// does this and it's documented as intentional.
			s.slots[ClassFullColour] = CodecZRLE
			s.slots[ClassBitmap] = CodecZRLE
			s.slots[ClassBitmapRLE] = CodecZRLE
			s.slots[ClassIndexed] = CodecZRLE
			s.slots[ClassIndexedRLE] = CodecZRLE
		}
	}

	// Step 3: fill remaining Raw slots.
	if s.slots[ClassFullColour] == CodecRaw {
		s.slots[ClassFullColour] = firstSupported(codecs, peer, jpegOk, CodecTightJPEG, CodecZRLE, CodecTight, CodecHextile)
	}
	if s.slots[ClassIndexed] == CodecRaw {
		s.slots[ClassIndexed] = firstSupported(codecs, peer, false, CodecZRLE, CodecTight, CodecHextile)
	}
	if s.slots[ClassIndexedRLE] == CodecRaw {
		s.slots[ClassIndexedRLE] = s.slots[ClassIndexed]
	}
	if s.slots[ClassBitmap] == CodecRaw {
		s.slots[ClassBitmap] = s.slots[ClassIndexed]
	}
	if s.slots[ClassBitmapRLE] == CodecRaw {
		s.slots[ClassBitmapRLE] = s.slots[ClassBitmap]
	}
	if s.slots[ClassSolid] == CodecRaw {
		s.slots[ClassSolid] = firstSupported(codecs, peer, false, CodecTight, CodecRRE, CodecZRLE, CodecHextile)
	}

	// Step 4: gray-subsampling override.
	if peer.Subsampling == SubsampleGray && jpegOk {
		for i := range s.slots {
			s.slots[i] = CodecTightJPEG
		}
	}

	// Step 5: push tunables into every selected codec.
	seen := make(map[CodecId]bool)
	for _, id := range s.slots {
		if seen[id] {
			continue
		}
		seen[id] = true
		if codec, ok := codecs[id]; ok {
			codec.SetCompressLevel(int8(peer.CompressLevel))
			codec.SetQualityLevel(int8(peer.JPEGQuality))
			codec.SetFineQualityLevel(-1, peer.Subsampling)
		}
	}

	return s
}

// firstSupported returns the first of candidates the peer supports,
// substituting jpegOk for a direct CodecTightJPEG.IsSupported check since
// that codec also requires bpp>=16 (already folded into jpegOk).
func firstSupported(codecs map[CodecId]Codec, peer PeerCaps, jpegOk bool, candidates ...CodecId) CodecId {
	for _, id := range candidates {
		if id == CodecTightJPEG {
			if jpegOk {
				return id
			}
			continue
		}
		if codec, ok := codecs[id]; ok && codec.IsSupported(peer) {
			return id
		}
	}
	return CodecRaw
}

// CodecFor returns the codec chosen for class.
func (s *Selector) CodecFor(class ContentClass) CodecId { return s.slots[class] }
