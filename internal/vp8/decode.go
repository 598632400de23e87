package vp8

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// ============================================================
// BUFFER POOL
// ============================================================

const (
	maxPooledBufferSize = 10 * 1024 * 1024 // 10MB
	initialBufferCap    = 512 * 1024       // 512KB
)

type bufferPool struct {
	pool sync.Pool
}

func newBufferPool() *bufferPool {
	return &bufferPool{
		pool: sync.Pool{
			New: func() any {
				buf := new(bytes.Buffer)
				buf.Grow(initialBufferCap)
				return buf
			},
		},
	}
}

func (p *bufferPool) Get() *bytes.Buffer {
	buf := p.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func (p *bufferPool) Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() >= maxPooledBufferSize {
		return
	}
	p.pool.Put(buf)
}

// ============================================================
// FFMPEG DECODER
// ============================================================

// Image is a decoded frame in packed BGR24 layout.
type Image struct {
	Width  int
	Height int
	BGR    []byte
}

// Decoder turns VP8 keyframes into BGR images by piping them through ffmpeg.
type Decoder struct {
	FFmpegPath string
	MaxWidth   int
	MaxHeight  int
	Timeout    time.Duration

	buffers *bufferPool
}

func NewDecoder(maxWidth, maxHeight int) *Decoder {
	return &Decoder{
		FFmpegPath: "ffmpeg",
		MaxWidth:   maxWidth,
		MaxHeight:  maxHeight,
		Timeout:    2 * time.Second,
		buffers:    newBufferPool(),
	}
}

// Args returns the ffmpeg arguments for one frame of the given sizes.
func (d *Decoder) Args(origWidth, origHeight, outWidth, outHeight int) []string {
	args := []string{
		"-loglevel", "error",
		"-nostdin",
		"-f", "ivf",
		"-i", "pipe:0",
	}

	if outWidth != origWidth || outHeight != origHeight {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d:flags=fast_bilinear", outWidth, outHeight))
	}

	return append(args,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"-threads", "1",
		"pipe:1",
	)
}

// Decode decodes a single keyframe, downscaling to the decoder's bounds.
func (d *Decoder) Decode(ctx context.Context, frame []byte) (*Image, error) {
	origWidth, origHeight, err := KeyframeDims(frame)
	if err != nil {
		return nil, fmt.Errorf("parse dims: %w", err)
	}

	width, height := DecodeSize(origWidth, origHeight, d.MaxWidth, d.MaxHeight)
	ivfData := IVF(frame, origWidth, origHeight)

	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.FFmpegPath, d.Args(origWidth, origHeight, width, height)...)
	cmd.Stdin = bytes.NewReader(ivfData)

	buf := d.buffers.Get()
	defer d.buffers.Put(buf)

	var stderrBuf bytes.Buffer
	cmd.Stdout = buf
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		stderr := stderrBuf.String()
		if len(stderr) > 200 {
			stderr = stderr[:200] + "..."
		}
		return nil, fmt.Errorf("decode: %w (%s)", err, stderr)
	}

	expectedSize := width * height * 3
	if buf.Len() < expectedSize {
		return nil, fmt.Errorf("short frame: %d < %d", buf.Len(), expectedSize)
	}

	// copy out so the buffer can go back to the pool
	pixels := make([]byte, expectedSize)
	copy(pixels, buf.Bytes()[:expectedSize])

	return &Image{Width: width, Height: height, BGR: pixels}, nil
}
