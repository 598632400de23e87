// Package vp8 inspects VP8 keyframes and decodes them to raw BGR pixels.
package vp8

import (
	"encoding/binary"
	"fmt"
)

const (
	// frame tag (3) + start code (3) + width (2) + height (2)
	keyframeHeaderLen = 10

	MaxWidth  = 3840
	MaxHeight = 2160

	ivfFileHeaderLen  = 32
	ivfFrameHeaderLen = 12
)

var startCode = [3]byte{0x9d, 0x01, 0x2a}

// ============================================================
// KEYFRAME DETECTION
// ============================================================

// IsKeyframe reports whether frame is a complete VP8 keyframe header.
func IsKeyframe(frame []byte) bool {
	if len(frame) < keyframeHeaderLen {
		return false
	}
	if frame[0]&0x1 != 0 {
		return false
	}
	return frame[3] == startCode[0] && frame[4] == startCode[1] && frame[5] == startCode[2]
}

// KeyframeDims reads the coded width and height from a keyframe.
func KeyframeDims(frame []byte) (int, int, error) {
	if len(frame) < keyframeHeaderLen {
		return 0, 0, fmt.Errorf("frame too small: %d bytes", len(frame))
	}

	frameTag := uint32(frame[0]) | uint32(frame[1])<<8 | uint32(frame[2])<<16
	if frameTag&0x1 != 0 {
		return 0, 0, fmt.Errorf("not a keyframe (tag: 0x%x)", frameTag)
	}

	if frame[3] != startCode[0] || frame[4] != startCode[1] || frame[5] != startCode[2] {
		return 0, 0, fmt.Errorf("invalid start code: %02x %02x %02x", frame[3], frame[4], frame[5])
	}

	// upper two bits are the scaling mode
	width := int(binary.LittleEndian.Uint16(frame[6:8]) & 0x3FFF)
	height := int(binary.LittleEndian.Uint16(frame[8:10]) & 0x3FFF)

	if width == 0 || height == 0 {
		return 0, 0, fmt.Errorf("zero dimension: %dx%d", width, height)
	}
	if width > MaxWidth || height > MaxHeight {
		return 0, 0, fmt.Errorf("dimension too large: %dx%d", width, height)
	}

	return width, height, nil
}

// ============================================================
// DECODE SIZE
// ============================================================

// DecodeSize fits width x height inside maxW x maxH, preserving aspect ratio
// and rounding down to even numbers. Frames that already fit are unchanged.
func DecodeSize(width, height, maxW, maxH int) (int, int) {
	if maxW <= 0 || maxH <= 0 || (width <= maxW && height <= maxH) {
		return width, height
	}

	scale := float64(maxW) / float64(width)
	if s := float64(maxH) / float64(height); s < scale {
		scale = s
	}

	newWidth := int(float64(width)*scale) / 2 * 2
	newHeight := int(float64(height)*scale) / 2 * 2

	return max(newWidth, 2), max(newHeight, 2)
}

// ============================================================
// IVF CONTAINER
// ============================================================

// IVF wraps a single VP8 frame in a one-frame IVF container for ffmpeg.
func IVF(frame []byte, width, height int) []byte {
	out := make([]byte, ivfFileHeaderLen+ivfFrameHeaderLen+len(frame))

	copy(out[0:4], "DKIF")
	binary.LittleEndian.PutUint16(out[4:6], 0) // version
	binary.LittleEndian.PutUint16(out[6:8], ivfFileHeaderLen)
	copy(out[8:12], "VP80")
	binary.LittleEndian.PutUint16(out[12:14], uint16(width))
	binary.LittleEndian.PutUint16(out[14:16], uint16(height))
	binary.LittleEndian.PutUint32(out[16:20], 30) // timebase denominator
	binary.LittleEndian.PutUint32(out[20:24], 1)  // timebase numerator
	binary.LittleEndian.PutUint32(out[24:28], 1)  // frame count

	hdr := out[ivfFileHeaderLen:]
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(frame)))
	// hdr[4:12] timestamp stays zero

	copy(out[ivfFileHeaderLen+ivfFrameHeaderLen:], frame)
	return out
}
