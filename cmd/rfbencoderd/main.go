// Command rfbencoderd is a minimal RFB server that drives the encoding
// pipeline over a real socket: it performs the version/security/init
// handshake, then pushes framebuffer updates for a synthetic, slowly
// animating desktop until the client disconnects.
package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/bigangryrobot/rfbencoder"
	"github.com/bigangryrobot/rfbencoder/internal/logger"
)

const protocolVersion = "RFB 003.008\n"

const (
	secTypeNone = 1
)

func main() {
	addr := flag.String("addr", ":5900", "listen address")
	width := flag.Int("width", 1024, "framebuffer width")
	height := flag.Int("height", 768, "framebuffer height")
	flag.Parse()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatalf("listen on %s: %v", *addr, err)
	}
	logger.Infof("rfbencoderd listening on %s", *addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.Errorf("accept: %v", err)
			continue
		}
		go serve(conn, *width, *height)
	}
}

func serve(conn net.Conn, width, height int) {
	defer conn.Close()
	logger.Infof("client connected: %s", conn.RemoteAddr())

	br := bufio.NewReader(conn)
	bw := bufio.NewWriter(conn)

	pf := rfbencoder.NewPixelFormat(32)
	if err := handshake(br, bw, width, height, pf); err != nil {
		logger.Errorf("handshake with %s failed: %v", conn.RemoteAddr(), err)
		return
	}

	surface := rfbencoder.NewMemPixelSurface(width, height, pf)
	paintStripes(surface, pf)

	writer := rfbencoder.NewWriter(bw)
	manager := rfbencoder.NewEncodeManager(writer, rfbencoder.Config{})
	defer manager.Close()

	// A minimal demo peer: supports the full codec family and the
	// LastRect/Fence extensions, no JPEG/compression hints. A real server
	// would derive this from SetEncodings/SetPixelFormat/fence-negotiation
	// messages instead of assuming it.
	peer := rfbencoder.PeerCaps{
		PreferredEncoding: rfbencoder.CodecTight,
		SupportedEncodings: map[rfbencoder.CodecId]bool{
			rfbencoder.CodecRaw: true, rfbencoder.CodecRRE: true,
			rfbencoder.CodecHextile: true, rfbencoder.CodecTight: true,
			rfbencoder.CodecTightJPEG: true, rfbencoder.CodecZRLE: true,
		},
		PixelFormat:   pf,
		JPEGQuality:   -1,
		CompressLevel: -1,
		LastRect:      true,
		Fence:         true,
	}

	go drainInbound(br, conn)

	full := surface.Rect()
	if err := manager.WriteUpdate(surface, rfbencoder.UpdateInfo{Changed: rfbencoder.NewRegion(full)}, peer, nil); err != nil {
		logger.Errorf("initial update to %s: %v", conn.RemoteAddr(), err)
		return
	}
	if err := bw.Flush(); err != nil {
		logger.Errorf("flush initial update to %s: %v", conn.RemoteAddr(), err)
		return
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	frame := 0
	for range ticker.C {
		frame++
		dirty := animate(surface, pf, frame)
		if dirty.IsEmpty() {
			continue
		}
		info := rfbencoder.UpdateInfo{Changed: dirty}
		if err := manager.WriteUpdate(surface, info, peer, nil); err != nil {
			logger.Errorf("update to %s: %v", conn.RemoteAddr(), err)
			return
		}
		if err := bw.Flush(); err != nil {
			logger.Errorf("flush update to %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}

// handshake runs the server side of the RFB version/security/init
// exchange: protocol versions, security type None, ClientInit's shared
// flag, then ServerInit.
func handshake(r io.Reader, w *bufio.Writer, width, height int, pf rfbencoder.PixelFormat) error {
	if _, err := w.WriteString(protocolVersion); err != nil {
		return fmt.Errorf("write server version: %w", err)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	var clientVersion [12]byte
	if _, err := io.ReadFull(r, clientVersion[:]); err != nil {
		return fmt.Errorf("read client version: %w", err)
	}
	if !bytes.HasPrefix(clientVersion[:], []byte("RFB")) {
		return fmt.Errorf("invalid client version signature: %q", clientVersion)
	}

	if err := w.WriteByte(1); err != nil { // one security type offered
		return err
	}
	if err := w.WriteByte(secTypeNone); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	var choice [1]byte
	if _, err := io.ReadFull(r, choice[:]); err != nil {
		return fmt.Errorf("read security choice: %w", err)
	}
	if choice[0] != secTypeNone {
		return fmt.Errorf("client chose unsupported security type %d", choice[0])
	}
	if err := binary.Write(w, binary.BigEndian, uint32(0)); err != nil { // SecurityResult: OK
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	var shared [1]byte
	if _, err := io.ReadFull(r, shared[:]); err != nil {
		return fmt.Errorf("read client init: %w", err)
	}

	if err := binary.Write(w, binary.BigEndian, uint16(width)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint16(height)); err != nil {
		return err
	}
	wire, err := pf.Marshal()
	if err != nil {
		return err
	}
	if _, err := w.Write(wire); err != nil {
		return err
	}
	name := []byte("rfbencoderd")
	if err := binary.Write(w, binary.BigEndian, uint32(len(name))); err != nil {
		return err
	}
	if _, err := w.Write(name); err != nil {
		return err
	}
	return w.Flush()
}

// drainInbound discards client-to-server messages (FramebufferUpdateRequest,
// pointer/key events, clipboard...); this demo only pushes updates on its
// own timer and never inspects damage hints from the client.
func drainInbound(r io.Reader, conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		if _, err := r.Read(buf); err != nil {
			return
		}
	}
}

func paintStripes(s *rfbencoder.MemPixelSurface, pf rfbencoder.PixelFormat) {
	full := s.Rect()
	colours := [][3]uint8{{200, 40, 40}, {40, 160, 80}, {40, 80, 200}}
	bpp := pf.BytesPerPixel()
	stripeH := full.Height() / len(colours)
	if stripeH == 0 {
		stripeH = 1
	}
	for i, c := range colours {
		y := i * stripeH
		h := stripeH
		if i == len(colours)-1 {
			h = full.Height() - y
		}
		if h <= 0 {
			continue
		}
		colour := make([]byte, bpp)
		pf.PutPixel(colour, 0, packRGB(pf, c[0], c[1], c[2]))
		s.Fill(rfbencoder.NewRect(0, y, full.Width(), h), colour)
	}
}

// animate nudges a small square across the top stripe each tick and
// returns the region that changed, so the server has something to
// re-encode every frame.
func animate(s *rfbencoder.MemPixelSurface, pf rfbencoder.PixelFormat, frame int) rfbencoder.Region {
	full := s.Rect()
	const side = 48
	if full.Width() <= side || full.Height() <= side {
		return rfbencoder.Region{}
	}
	travel := full.Width() - side
	x := frame * 8 % travel
	y := 8

	white := make([]byte, pf.BytesPerPixel())
	pf.PutPixel(white, 0, packRGB(pf, 250, 250, 250))
	black := make([]byte, pf.BytesPerPixel())
	pf.PutPixel(black, 0, packRGB(pf, 10, 10, 10))

	region := rfbencoder.NewRegion(rfbencoder.NewRect(0, 0, full.Width(), side+16))
	s.Fill(rfbencoder.NewRect(0, 0, full.Width(), side+16), black)
	s.Fill(rfbencoder.NewRect(x, y, side, side), white)
	return region
}

func packRGB(pf rfbencoder.PixelFormat, r, g, b uint8) uint32 {
	rv := uint32(r) * uint32(pf.RedMax) / 255
	gv := uint32(g) * uint32(pf.GreenMax) / 255
	bv := uint32(b) * uint32(pf.BlueMax) / 255
	return (rv << pf.RedShift) | (gv << pf.GreenShift) | (bv << pf.BlueShift)
}
