package speech

import (
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hzlou/assistant-platform/internal/store"
)

const (
	historyCollection = "speech_history"
	maxHistory        = 50
	defaultLimit      = 10
)

// unavailableText stands in while no recognition backend is wired up.
const unavailableText = "Speech recognition is temporarily unavailable. Please try again later."

type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Service is the speech-to-text stub. It validates the payload, answers with
// a fixed message and keeps a bounded per-user transcript history.
type Service struct {
	mu      sync.Mutex
	history map[string][]Entry

	snap *store.Snapshot
	log  *zap.Logger
	now  func() time.Time
}

func NewService(snap *store.Snapshot, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		history: make(map[string][]Entry),
		snap:    snap,
		log:     log,
		now:     time.Now,
	}
	snap.Load(historyCollection, &s.history)
	return s
}

// Transcribe decodes the base64 audio payload and returns the stub text.
// A decode failure is the only error path.
func (s *Service) Transcribe(audioBase64, userID string) (string, error) {
	if _, err := base64.StdEncoding.DecodeString(audioBase64); err != nil {
		return "", err
	}

	text := unavailableText
	if userID != "" {
		s.record(userID, text)
	}
	return text, nil
}

func (s *Service) record(userID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.history[userID], Entry{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: s.now(),
	})
	if n := len(entries); n > maxHistory {
		entries = entries[n-maxHistory:]
	}
	s.history[userID] = entries
	s.snap.Save(historyCollection, s.history)
}

// History returns the user's most recent transcripts, oldest first.
func (s *Service) History(userID string, limit int) []Entry {
	if limit <= 0 {
		limit = defaultLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.history[userID]
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return append([]Entry(nil), entries...)
}
