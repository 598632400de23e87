// Package audio streams OGG/Opus cue files onto a WebRTC audio track.
package audio

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/pion/webrtc/v4/pkg/media/oggreader"
)

// errStopped ends a stream when the player is shut down mid-file.
var errStopped = errors.New("player stopped")

// Sink receives Opus samples. *webrtc.TrackLocalStaticSample satisfies it.
type Sink interface {
	WriteSample(s media.Sample) error
}

// Item is one file to play.
type Item struct {
	FilePath string
	Name     string // for logs, e.g. "welcome", "confirm_success"
	Loop     bool
	OnFinish func()
}

// Player plays queued items one at a time onto a single sink.
type Player struct {
	sink     Sink
	stopChan chan struct{}
	stopOnce sync.Once
	queue    chan Item

	mu          sync.Mutex
	isPlaying   bool
	currentFile string
	played      int
}

// NewPlayer starts the queue goroutine; Stop ends it.
func NewPlayer(sink Sink) *Player {
	p := &Player{
		sink:     sink,
		stopChan: make(chan struct{}),
		queue:    make(chan Item, 10),
	}

	go p.processQueue()

	return p
}

// Play queues item behind whatever is playing. A full queue drops it.
func (p *Player) Play(item Item) {
	select {
	case <-p.stopChan:
		return
	default:
	}

	select {
	case p.queue <- item:
		log.Printf("🎵 Queued: %s", item.Name)
	default:
		log.Printf("⚠️  Queue full, skipping: %s", item.Name)
	}
}

// PlayNow drops pending items and queues item next.
func (p *Player) PlayNow(item Item) {
	p.mu.Lock()
	for len(p.queue) > 0 {
		<-p.queue
	}
	p.mu.Unlock()

	p.Play(item)
}

func (p *Player) Stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
}

// Status reports what is playing and how many items are waiting.
func (p *Player) Status() (isPlaying bool, currentFile string, queueSize int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isPlaying, p.currentFile, len(p.queue)
}

// Played counts items that finished streaming without error.
func (p *Player) Played() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}

func (p *Player) processQueue() {
	for {
		select {
		case <-p.stopChan:
			log.Println("🛑 Audio player stopped")
			return

		case item := <-p.queue:
			p.playItem(item)
		}
	}
}

func (p *Player) playItem(item Item) {
	p.mu.Lock()
	p.isPlaying = true
	p.currentFile = item.Name
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.isPlaying = false
		p.currentFile = ""
		p.mu.Unlock()

		if item.OnFinish != nil {
			item.OnFinish()
		}
	}()

	log.Printf("▶️  Playing: %s", item.Name)

	for {
		err := p.streamOGG(item.FilePath)
		switch {
		case err == io.EOF:
			log.Printf("✅ Finished: %s", item.Name)
			p.mu.Lock()
			p.played++
			p.mu.Unlock()
		case errors.Is(err, errStopped):
			return
		case err != nil:
			log.Printf("❌ Error playing %s: %v", item.Name, err)
			return
		}

		if !item.Loop {
			return
		}

		select {
		case <-p.stopChan:
			return
		default:
			log.Printf("🔄 Looping: %s", item.Name)
		}
	}
}

// streamOGG writes each Ogg page of an Opus file to the sink in real time.
func (p *Player) streamOGG(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("cannot open file: %w", err)
	}
	defer file.Close()

	ogg, _, err := oggreader.NewWith(file)
	if err != nil {
		return fmt.Errorf("cannot create OGG reader: %w", err)
	}

	var lastGranule uint64

	for {
		select {
		case <-p.stopChan:
			return errStopped
		default:
		}

		pageData, pageHeader, err := ogg.ParseNextPage()
		if err == io.EOF {
			return io.EOF
		}
		if err != nil {
			return err
		}

		// Opus granule positions count 48kHz samples
		sampleDuration := time.Duration(0)
		if pageHeader.GranulePosition > lastGranule && lastGranule != 0 {
			sampleCount := pageHeader.GranulePosition - lastGranule
			sampleDuration = time.Duration(float64(sampleCount)/48000*1000) * time.Millisecond
		}
		lastGranule = pageHeader.GranulePosition

		if sampleDuration == 0 {
			sampleDuration = 20 * time.Millisecond
		}

		if err := p.sink.WriteSample(media.Sample{Data: pageData, Duration: sampleDuration}); err != nil {
			return err
		}

		time.Sleep(sampleDuration)
	}
}
