package rfbencoder

// UpdateInfo describes one framebuffer-update cycle's worth of work:
// which pixels changed outright, and which regions are known to equal a
// prior frame translated by CopyDelta.
type UpdateInfo struct {
	Changed Region
	Copied  Region
	// CopyDelta is (dx, dy): a pixel at p in Copied equals the pixel that
	// was at p-CopyDelta in the previous frame.
	CopyDelta Point
}
