package feedback

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hzlou/assistant-platform/internal/store"
)

var ErrInvalidKnowledge = errors.New("topic and content are required")

const (
	feedbacksCollection   = "feedbacks"
	knowledgeCollection   = "knowledge_base"
	preferencesCollection = "user_preferences"

	maxInteractionTimes = 100
	defaultRecCount     = 3
	currentTopicPicks   = 2
	favoriteTopicLimit  = 3
)

// generalTopics is the fallback pool when personalized picks come up short.
var generalTopics = []string{"customer service tips", "FAQ", "product guide"}

// Service owns the feedback log, the topic-keyed knowledge base and per-user
// preferences. The three collections share one mutex and are snapshotted
// together after every mutation.
type Service struct {
	mu        sync.Mutex
	feedbacks map[string]map[string]*Feedback       // user id -> feedback id
	knowledge map[string]map[string]*KnowledgeEntry // topic -> knowledge id
	prefs     map[string]*Preference                // user id

	snap *store.Snapshot
	log  *zap.Logger
	now  func() time.Time
	pick func(n int) int // random index source
}

func NewService(snap *store.Snapshot, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		feedbacks: make(map[string]map[string]*Feedback),
		knowledge: make(map[string]map[string]*KnowledgeEntry),
		prefs:     make(map[string]*Preference),
		snap:      snap,
		log:       log,
		now:       time.Now,
		pick:      rand.Intn,
	}
	snap.Load(feedbacksCollection, &s.feedbacks)
	snap.Load(knowledgeCollection, &s.knowledge)
	snap.Load(preferencesCollection, &s.prefs)
	return s
}

func (s *Service) saveLocked() {
	s.snap.Save(feedbacksCollection, s.feedbacks)
	s.snap.Save(knowledgeCollection, s.knowledge)
	s.snap.Save(preferencesCollection, s.prefs)
}

// AddFeedback records one rating submission. Rating range is the caller's
// responsibility. Recording touches the user's interaction log but does not
// feed the topic-interest counters; those move only through
// RecordTopicInterest.
func (s *Service) AddFeedback(userID, conversationID, messageID string, rating int, comment string) *Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()

	fb := &Feedback{
		ID:             "fb-" + uuid.NewString(),
		ConversationID: conversationID,
		MessageID:      messageID,
		Rating:         rating,
		Comment:        comment,
		Timestamp:      s.now(),
	}
	if s.feedbacks[userID] == nil {
		s.feedbacks[userID] = make(map[string]*Feedback)
	}
	s.feedbacks[userID][fb.ID] = fb

	pref := s.prefLocked(userID)
	pref.InteractionTimes = append(pref.InteractionTimes, fb.Timestamp)
	if n := len(pref.InteractionTimes); n > maxInteractionTimes {
		pref.InteractionTimes = pref.InteractionTimes[n-maxInteractionTimes:]
	}

	s.saveLocked()
	cp := *fb
	return &cp
}

// RecordTopicInterest bumps the user's counter for a topic. A non-positive
// weight counts as 1.
func (s *Service) RecordTopicInterest(userID, topic string, weight int) {
	if weight <= 0 {
		weight = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefLocked(userID).Topics[topic] += weight
	s.saveLocked()
}

// AddKnowledge appends an entry under the topic bucket.
func (s *Service) AddKnowledge(topic, content, source string) (*KnowledgeEntry, error) {
	if topic == "" || content == "" {
		return nil, ErrInvalidKnowledge
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.addKnowledgeLocked(topic, content, source)
	s.saveLocked()
	cp := *entry
	return &cp, nil
}

func (s *Service) addKnowledgeLocked(topic, content, source string) *KnowledgeEntry {
	entry := &KnowledgeEntry{
		ID:        "k-" + uuid.NewString(),
		Content:   content,
		Source:    source,
		CreatedAt: s.now(),
	}
	if s.knowledge[topic] == nil {
		s.knowledge[topic] = make(map[string]*KnowledgeEntry)
	}
	s.knowledge[topic][entry.ID] = entry
	return entry
}

// Recommendations ranks up to count suggestions for a user, in priority
// order: entries from the current topic, then entries from the user's
// favorite topics, then a bounded sweep over the general topics. Duplicate
// content is never returned twice.
func (s *Service) Recommendations(userID, currentTopic string, count int) []Recommendation {
	if count <= 0 {
		count = defaultRecCount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([]Recommendation, 0, count)
	seen := make(map[string]bool)
	add := func(r Recommendation) bool {
		if seen[r.Content] {
			return false
		}
		seen[r.Content] = true
		recs = append(recs, r)
		return true
	}

	if currentTopic != "" {
		entries := s.topicEntriesByUsageLocked(currentTopic)
		for i := 0; i < len(entries) && i < currentTopicPicks && len(recs) < count; i++ {
			add(Recommendation{
				Type:    "knowledge",
				Topic:   currentTopic,
				Content: entries[i].Content,
				Reason:  "related to your current topic",
			})
		}
	}

	if pref, ok := s.prefs[userID]; ok && len(pref.Topics) > 0 {
		for _, tw := range topTopics(pref.Topics, favoriteTopicLimit) {
			if len(recs) >= count {
				break
			}
			if entry := s.randomEntryLocked(tw.Topic); entry != nil {
				add(Recommendation{
					Type:    "knowledge",
					Topic:   tw.Topic,
					Content: entry.Content,
					Reason:  fmt.Sprintf("based on your interest in %q", tw.Topic),
				})
			}
		}
	}

	// General fallback, bounded: a pass that adds nothing means the pool is
	// exhausted of non-duplicate content.
	for pass := 0; pass < count && len(recs) < count; pass++ {
		added := false
		for _, topic := range generalTopics {
			if len(recs) >= count {
				break
			}
			if entry := s.randomEntryLocked(topic); entry != nil {
				if add(Recommendation{
					Type:    "general",
					Topic:   topic,
					Content: entry.Content,
					Reason:  "something you might be interested in",
				}) {
					added = true
				}
			}
		}
		if !added {
			break
		}
	}

	if len(recs) > count {
		recs = recs[:count]
	}
	return recs
}

func (s *Service) topicEntriesByUsageLocked(topic string) []*KnowledgeEntry {
	entries := make([]*KnowledgeEntry, 0, len(s.knowledge[topic]))
	for _, e := range s.knowledge[topic] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UsedCount != entries[j].UsedCount {
			return entries[i].UsedCount > entries[j].UsedCount
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries
}

func (s *Service) randomEntryLocked(topic string) *KnowledgeEntry {
	bucket := s.knowledge[topic]
	if len(bucket) == 0 {
		return nil
	}
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return bucket[ids[s.pick(len(ids))]]
}

// FeedbacksByConversation scans every user's feedback map; there is no index
// by conversation id.
func (s *Service) FeedbacksByConversation(conversationID string) []Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Feedback
	for _, byID := range s.feedbacks {
		for _, fb := range byID {
			if fb.ConversationID == conversationID {
				out = append(out, *fb)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// MostCommonTopics aggregates interest counters across all users.
func (s *Service) MostCommonTopics(count int) []TopicWeight {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := make(map[string]int)
	for _, pref := range s.prefs {
		for topic, w := range pref.Topics {
			totals[topic] += w
		}
	}
	ranked := topTopics(totals, count)
	return ranked
}

// SeedDefaultKnowledge loads a small starter knowledge base. It is a no-op
// whenever the base already has any content.
func (s *Service) SeedDefaultKnowledge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.knowledge) > 0 {
		return
	}
	defaults := map[string][]string{
		"customer service tips": {
			"Patience and empathy are the foundation of a good support experience.",
			"Use positive language, even when handling complaints.",
			"Offer clear step-by-step guidance, not just the final answer.",
		},
		"FAQ": {
			"Login problems are usually resolved by resetting the password.",
			"Slow responses are often caused by network issues or high server load.",
			"Sync issues usually clear up after refreshing or signing in again.",
		},
		"product guide": {
			"Check the help docs before trying a new feature for the best experience.",
			"Back up your data regularly to avoid accidental loss.",
			"Keyboard shortcuts can significantly speed up everyday tasks.",
		},
	}
	for topic, contents := range defaults {
		for _, content := range contents {
			s.addKnowledgeLocked(topic, content, "default")
		}
	}
	s.saveLocked()
	s.log.Info("seeded default knowledge base", zap.Int("topics", len(defaults)))
}

func (s *Service) prefLocked(userID string) *Preference {
	pref, ok := s.prefs[userID]
	if !ok {
		pref = &Preference{
			Topics:            make(map[string]int),
			InteractionTimes:  []time.Time{},
			FavoriteQuestions: []string{},
		}
		s.prefs[userID] = pref
	}
	if pref.Topics == nil {
		pref.Topics = make(map[string]int)
	}
	return pref
}

func topTopics(weights map[string]int, limit int) []TopicWeight {
	out := make([]TopicWeight, 0, len(weights))
	for topic, w := range weights {
		out = append(out, TopicWeight{Topic: topic, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Topic < out[j].Topic
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
