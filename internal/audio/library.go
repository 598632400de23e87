package audio

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"checkin-kiosk/models"
)

// Cue names
const (
	CueWelcome        = "welcome"
	CueConfirmSuccess = "confirm_success"
	CueConfirmFail    = "confirm_fail"
)

// Library maps cue names to OGG files.
type Library struct {
	sounds map[string]string
	mu     sync.RWMutex
}

func NewLibrary() *Library {
	return &Library{sounds: make(map[string]string)}
}

// LoadLibrary registers every configured cue whose file exists.
// Missing files are logged and skipped.
func LoadLibrary(cfg models.AudioConfig) *Library {
	lib := NewLibrary()
	if !cfg.Enabled {
		return lib
	}

	for name, path := range map[string]string{
		CueWelcome:        cfg.WelcomePath,
		CueConfirmSuccess: cfg.ConfirmSuccessPath,
		CueConfirmFail:    cfg.ConfirmFailPath,
	} {
		if path == "" {
			continue
		}
		if err := lib.Register(name, path); err != nil {
			log.Printf("⚠️  Audio %s: %v", name, err)
		}
	}
	return lib
}

func (l *Library) Register(name, filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", filePath)
	}

	l.mu.Lock()
	l.sounds[name] = filePath
	l.mu.Unlock()

	log.Printf("📚 Registered audio: %s -> %s", name, filePath)
	return nil
}

func (l *Library) Get(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	path, exists := l.sounds[name]
	return path, exists
}

// List returns registered cue names, sorted.
func (l *Library) List() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.sounds))
	for name := range l.sounds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Item builds a one-shot playback item for a registered cue.
func (l *Library) Item(name string) (Item, bool) {
	path, ok := l.Get(name)
	if !ok {
		return Item{}, false
	}
	return Item{FilePath: path, Name: name}, true
}
