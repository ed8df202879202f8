package rfbencoder

import "fmt"

// MaxFencePayload is the hard cap the protocol places on a fence
// message's payload.
const MaxFencePayload = 64

// FenceFlags mirrors the wire flags carried alongside a fence payload.
type FenceFlags uint32

const (
	FenceFlagBlockBefore FenceFlags = 1 << 0
	FenceFlagBlockAfter  FenceFlags = 1 << 1
	FenceFlagSyncNext    FenceFlags = 1 << 2
)

// WriteFence writes a fence message: u8 type, 3 pad bytes, u32 flags, u8
// length, payload. It refuses to write to a peer that never declared
// fence support, and rejects payloads over MaxFencePayload — fences can
// be echoed straight back from an inbound fence, so both the write and
// (out-of-core) read path enforce the same cap.
func (wr *Writer) WriteFence(peer PeerCaps, flags FenceFlags, payload []byte) error {
	if !peer.Fence {
		return errPeerIncapable("WriteFence", fmt.Errorf("peer did not declare fence support"))
	}
	if len(payload) > MaxFencePayload {
		return errOversizedPayload("WriteFence", fmt.Errorf("fence payload %d bytes exceeds %d", len(payload), MaxFencePayload))
	}
	if err := wr.writeU8(248); err != nil { // msg type: ServerFence
		return err
	}
	if err := wr.write([]byte{0, 0, 0}); err != nil {
		return err
	}
	if err := wr.writeS32(int32(flags)); err != nil {
		return err
	}
	if err := wr.writeU8(uint8(len(payload))); err != nil {
		return err
	}
	return wr.write(payload)
}
