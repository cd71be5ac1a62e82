package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hzlou/assistant-platform/internal/ai"
	"github.com/hzlou/assistant-platform/internal/store"
)

const conversationsCollection = "conversations"

const previewRunes = 50

// Service owns per-user, per-conversation append-only message logs. The whole
// collection is snapshotted after every mutation.
type Service struct {
	mu            sync.Mutex
	conversations map[string]map[string]*Conversation // user id -> conversation id

	snap *store.Snapshot
	log  *zap.Logger
	now  func() time.Time
}

func NewService(snap *store.Snapshot, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		conversations: make(map[string]map[string]*Conversation),
		snap:          snap,
		log:           log,
		now:           time.Now,
	}
	snap.Load(conversationsCollection, &s.conversations)
	return s
}

// Create starts an empty conversation under the user's namespace. An empty
// title defaults to "New conversation <timestamp>".
func (s *Service) Create(userID, title string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if title == "" {
		title = "New conversation " + now.Format("2006-01-02 15:04")
	}
	conv := &Conversation{
		ID:        "conv-" + ulid.Make().String(),
		Title:     title,
		Timestamp: now,
		Messages:  []Message{},
	}
	if s.conversations[userID] == nil {
		s.conversations[userID] = make(map[string]*Conversation)
	}
	s.conversations[userID][conv.ID] = conv
	s.snap.Save(conversationsCollection, s.conversations)
	return copyConversation(conv)
}

// AddMessage appends to a conversation and bumps its last-activity timestamp.
// Returns false when the conversation does not exist for that user.
func (s *Service) AddMessage(userID, conversationID, role, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[userID][conversationID]
	if !ok {
		return false
	}
	now := s.now()
	conv.Messages = append(conv.Messages, Message{Role: role, Content: content, Timestamp: now})
	conv.Timestamp = now
	s.snap.Save(conversationsCollection, s.conversations)
	return true
}

func (s *Service) Get(userID, conversationID string) (*Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[userID][conversationID]
	if !ok {
		return nil, false
	}
	return copyConversation(conv), true
}

// MessagesForAPI projects the stored log to the role/content shape the
// completion provider expects. Absent conversations yield an empty slice.
func (s *Service) MessagesForAPI(userID, conversationID string) []ai.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[userID][conversationID]
	if !ok {
		return []ai.Message{}
	}
	out := make([]ai.Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		out = append(out, ai.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// List returns conversation summaries sorted by last activity, newest first.
func (s *Service) List(userID string) []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Summary, 0, len(s.conversations[userID]))
	for _, conv := range s.conversations[userID] {
		sum := Summary{
			ID:           conv.ID,
			Title:        conv.Title,
			Timestamp:    conv.Timestamp,
			MessageCount: len(conv.Messages),
		}
		if n := len(conv.Messages); n > 0 {
			last := conv.Messages[n-1]
			last.Content = truncate(last.Content, previewRunes)
			sum.LastMessage = &last
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// Delete removes a conversation. Returns whether a deletion occurred.
func (s *Service) Delete(userID, conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[userID][conversationID]; !ok {
		return false
	}
	delete(s.conversations[userID], conversationID)
	s.snap.Save(conversationsCollection, s.conversations)
	return true
}

// SetTitle renames a conversation without touching its activity timestamp.
func (s *Service) SetTitle(userID, conversationID, title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[userID][conversationID]
	if !ok {
		return false
	}
	conv.Title = title
	s.snap.Save(conversationsCollection, s.conversations)
	return true
}

func copyConversation(conv *Conversation) *Conversation {
	cp := *conv
	cp.Messages = append([]Message(nil), conv.Messages...)
	return &cp
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
