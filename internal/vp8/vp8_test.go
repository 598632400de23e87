package vp8

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyframe builds a minimal VP8 keyframe header followed by padding.
func keyframe(width, height int) []byte {
	f := make([]byte, 16)
	f[0] = 0x10 // bit 0 clear = keyframe
	f[3], f[4], f[5] = 0x9d, 0x01, 0x2a
	binary.LittleEndian.PutUint16(f[6:8], uint16(width))
	binary.LittleEndian.PutUint16(f[8:10], uint16(height))
	return f
}

func TestIsKeyframe(t *testing.T) {
	assert.True(t, IsKeyframe(keyframe(640, 480)))

	inter := keyframe(640, 480)
	inter[0] |= 0x1
	assert.False(t, IsKeyframe(inter))

	badCode := keyframe(640, 480)
	badCode[4] = 0x00
	assert.False(t, IsKeyframe(badCode))

	assert.False(t, IsKeyframe([]byte{0x10, 0, 0, 0x9d, 0x01, 0x2a}))
	assert.False(t, IsKeyframe(nil))
}

func TestKeyframeDims(t *testing.T) {
	w, h, err := KeyframeDims(keyframe(1280, 720))
	require.NoError(t, err)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)
}

func TestKeyframeDims_IgnoresScalingBits(t *testing.T) {
	f := keyframe(640, 480)
	f[7] |= 0xC0 // horizontal scale bits
	w, h, err := KeyframeDims(f)
	require.NoError(t, err)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestKeyframeDims_Errors(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		want  string
	}{
		{"short", []byte{0x10, 0, 0}, "too small"},
		{"inter frame", func() []byte { f := keyframe(640, 480); f[0] = 0x11; return f }(), "not a keyframe"},
		{"start code", func() []byte { f := keyframe(640, 480); f[5] = 0; return f }(), "invalid start code"},
		{"zero", keyframe(0, 480), "zero dimension"},
		{"too large", keyframe(4096, 2160), "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := KeyframeDims(tt.frame)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"fits", 640, 480, 640, 480, 640, 480},
		{"smaller", 320, 240, 640, 480, 320, 240},
		{"width bound", 1280, 720, 640, 480, 640, 360},
		{"height bound", 720, 1280, 640, 480, 270, 480},
		{"odd rounds down", 1000, 500, 333, 333, 332, 166},
		{"no bounds", 1920, 1080, 0, 0, 1920, 1080},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := DecodeSize(tt.w, tt.h, tt.maxW, tt.maxH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestIVF(t *testing.T) {
	frame := keyframe(640, 480)
	out := IVF(frame, 640, 480)

	require.Len(t, out, 32+12+len(frame))
	assert.Equal(t, "DKIF", string(out[0:4]))
	assert.Equal(t, uint16(32), binary.LittleEndian.Uint16(out[6:8]))
	assert.Equal(t, "VP80", string(out[8:12]))
	assert.Equal(t, uint16(640), binary.LittleEndian.Uint16(out[12:14]))
	assert.Equal(t, uint16(480), binary.LittleEndian.Uint16(out[14:16]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(out[24:28]))
	assert.Equal(t, uint32(len(frame)), binary.LittleEndian.Uint32(out[32:36]))
	assert.Equal(t, frame, out[44:])
}

func TestDecoderArgs(t *testing.T) {
	d := NewDecoder(640, 480)

	same := d.Args(640, 480, 640, 480)
	assert.NotContains(t, same, "-vf")
	assert.Equal(t, "pipe:1", same[len(same)-1])

	scaled := d.Args(1280, 720, 640, 360)
	assert.Contains(t, scaled, "scale=640:360:flags=fast_bilinear")
}

func TestDecode_RejectsNonKeyframe(t *testing.T) {
	d := NewDecoder(640, 480)
	_, err := d.Decode(context.Background(), []byte{0x01, 0x02})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse dims")
}

func TestDecode_MissingFFmpeg(t *testing.T) {
	d := NewDecoder(640, 480)
	d.FFmpegPath = "/nonexistent/ffmpeg"
	_, err := d.Decode(context.Background(), keyframe(640, 480))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestBufferPool(t *testing.T) {
	p := newBufferPool()
	buf := p.Get()
	buf.WriteString("abc")
	p.Put(buf)

	again := p.Get()
	assert.Equal(t, 0, again.Len())
	p.Put(nil)
}
