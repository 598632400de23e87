package webrtc

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"checkin-kiosk/internal/audio"

	"github.com/pion/rtcp"
	"github.com/pion/webrtc/v4"
)

// ============================================================
// PEER CONNECTION CREATION
// ============================================================

func (r *RemoteCamera) createPeerConnection() (*webrtc.PeerConnection, error) {
	mediaEngine := &webrtc.MediaEngine{}

	if err := mediaEngine.RegisterCodec(webrtc.RTPCodecParameters{
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:  webrtc.MimeTypeVP8,
			ClockRate: 90000,
			RTCPFeedback: []webrtc.RTCPFeedback{
				{Type: "goog-remb"},
				{Type: "ccm", Parameter: "fir"},
				{Type: "nack"},
				{Type: "nack", Parameter: "pli"},
			},
		},
		PayloadType: 96,
	}, webrtc.RTPCodecTypeVideo); err != nil {
		return nil, fmt.Errorf("failed to register VP8: %w", err)
	}

	if err := mediaEngine.RegisterCodec(webrtc.RTPCodecParameters{
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:    webrtc.MimeTypeOpus,
			ClockRate:   48000,
			Channels:    2,
			SDPFmtpLine: "minptime=10;useinbandfec=1",
		},
		PayloadType: 111,
	}, webrtc.RTPCodecTypeAudio); err != nil {
		return nil, fmt.Errorf("failed to register Opus: %w", err)
	}

	api := webrtc.NewAPI(webrtc.WithMediaEngine(mediaEngine))

	config := webrtc.Configuration{}
	if len(r.cfg.ICEServers) > 0 {
		config.ICEServers = []webrtc.ICEServer{{URLs: r.cfg.ICEServers}}
	}

	return api.NewPeerConnection(config)
}

// ============================================================
// PEER CONNECTION HANDLERS
// ============================================================

func (r *RemoteCamera) setupPeerConnectionHandlers(s *session, pc *webrtc.PeerConnection) {
	pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate == nil {
			log.Println("✅ ICE gathering complete")
			return
		}
		r.signaler.Broadcast(EventCandidate, Candidate{Session: s.id, Candidate: candidate.ToJSON()})
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Printf("🔗 Connection: %s", state.String())
		switch state {
		case webrtc.PeerConnectionStateConnected:
			r.Play(audio.CueWelcome)

		case webrtc.PeerConnectionStateFailed:
			log.Printf("🔴 Connection failed (session %s)", s.id)
			s.markReady(fmt.Errorf("peer connection %s", state.String()))
		}
	})

	pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		log.Printf("🎬 Track: %s (Codec: %s)", track.Kind().String(), track.Codec().MimeType)

		if track.Kind() != webrtc.RTPCodecTypeVideo {
			return
		}
		if !strings.EqualFold(track.Codec().MimeType, webrtc.MimeTypeVP8) {
			s.markReady(fmt.Errorf("unsupported video codec %s", track.Codec().MimeType))
			return
		}

		ssrc := uint32(track.SSRC())

		// ask for a keyframe right away so the first capture is not empty
		go func() {
			for i := 0; i < 3; i++ {
				if err := pc.WriteRTCP([]rtcp.Packet{
					&rtcp.PictureLossIndication{MediaSSRC: ssrc},
				}); err == nil {
					log.Println("   ⚡ Immediate PLI sent")
				}
				time.Sleep(100 * time.Millisecond)
			}
		}()

		go r.startPLISender(s.ctx, pc, ssrc)
		go r.captureLoop(s, track)

		s.markReady(nil)
	})
}

// ============================================================
// AUDIO TRACK SETUP
// ============================================================

func (r *RemoteCamera) setupAudioTrack(s *session, pc *webrtc.PeerConnection) error {
	audioTrack, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio",
		"kiosk-cues",
	)
	if err != nil {
		return fmt.Errorf("failed to create audio track: %w", err)
	}

	rtpSender, err := pc.AddTrack(audioTrack)
	if err != nil {
		return fmt.Errorf("failed to add track: %w", err)
	}

	// drain RTCP so the interceptors keep running
	go func() {
		rtcpBuf := make([]byte, 1500)
		for {
			if _, _, rtcpErr := rtpSender.Read(rtcpBuf); rtcpErr != nil {
				return
			}
		}
	}()

	s.mu.Lock()
	s.audioPlayer = audio.NewPlayer(audioTrack)
	s.mu.Unlock()

	log.Println("   ✅ Audio track added to peer connection")
	return nil
}

// ============================================================
// PLI SENDER
// ============================================================

func (r *RemoteCamera) startPLISender(ctx context.Context, pc *webrtc.PeerConnection, ssrc uint32) {
	ticker := time.NewTicker(r.cfg.PLIInterval)
	defer ticker.Stop()

	consecutiveErrors := 0
	const maxErrors = 3

	defer log.Println("   🛑 PLI sender stopped")

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			state := pc.ConnectionState()
			if state == webrtc.PeerConnectionStateClosed ||
				state == webrtc.PeerConnectionStateFailed {
				return
			}

			if err := pc.WriteRTCP([]rtcp.Packet{
				&rtcp.PictureLossIndication{MediaSSRC: ssrc},
			}); err != nil {
				consecutiveErrors++
				if consecutiveErrors >= maxErrors {
					log.Printf("   ⚠️  PLI stopping (errors: %d)", consecutiveErrors)
					return
				}
			} else {
				consecutiveErrors = 0
			}
		}
	}
}
