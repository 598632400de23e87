package webrtc

import (
	"errors"
	"io"
	"log"

	"checkin-kiosk/internal/camera/cvimage"
	"checkin-kiosk/internal/vp8"

	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/pion/webrtc/v4/pkg/media/samplebuilder"
)

// ============================================================
// VIDEO CAPTURE
// ============================================================

// captureLoop reassembles VP8 frames from the track and keeps the most
// recent keyframe decoded for Capture.
func (r *RemoteCamera) captureLoop(s *session, track *webrtc.TrackRemote) {
	log.Printf("📸 Capture started (session %s)", s.id)
	defer log.Printf("   🧹 Capture stopped (session %s)", s.id)

	sampleBuilder := samplebuilder.New(
		r.cfg.SampleBufferMax,
		&codecs.VP8Packet{},
		track.Codec().ClockRate,
	)

	samples := make(chan *media.Sample, 10)

	go func() {
		defer close(samples)
		for {
			pkt, _, err := track.ReadRTP()
			if err != nil {
				if !errors.Is(err, io.EOF) && s.ctx.Err() == nil {
					log.Printf("   ⚠️  RTP error: %v", err)
				}
				return
			}

			sampleBuilder.Push(pkt)
			for sample := sampleBuilder.Pop(); sample != nil; sample = sampleBuilder.Pop() {
				select {
				case samples <- sample:
				case <-s.ctx.Done():
					return
				default:
					// decoder is behind; the next keyframe supersedes this one
				}
			}
		}
	}()

	for {
		select {
		case <-s.ctx.Done():
			return

		case sample, ok := <-samples:
			if !ok {
				log.Println("   📡 Stream ended")
				return
			}
			r.handleSample(s, sample.Data)
		}
	}
}

func (r *RemoteCamera) handleSample(s *session, data []byte) {
	s.mu.Lock()
	s.stats.Samples++
	s.mu.Unlock()

	if !vp8.IsKeyframe(data) {
		return
	}

	s.mu.Lock()
	s.stats.Keyframes++
	s.mu.Unlock()

	img, err := r.decoder.Decode(s.ctx, data)
	if err != nil {
		s.mu.Lock()
		s.stats.Failures++
		s.mu.Unlock()
		log.Printf("   ⚠️  Keyframe decode: %v", err)
		return
	}

	mat, err := cvimage.FromBGR(img.Width, img.Height, img.BGR)
	if err != nil {
		log.Printf("   ⚠️  %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		mat.Close()
		return
	}

	if s.stats.Decoded == 0 {
		log.Printf("   ✅ First keyframe decoded (%dx%d)", img.Width, img.Height)
	}

	if s.latest != nil {
		s.latest.Close()
	}
	s.latest = &mat
	s.stats.Decoded++
}
