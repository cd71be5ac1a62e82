package feedback

import "time"

type Feedback struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	MessageID      string    `json:"message_id"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type KnowledgeEntry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UsedCount int       `json:"used_count"`
}

// Preference tracks what a user cares about. InteractionTimes keeps only the
// most recent 100 entries.
type Preference struct {
	Topics            map[string]int `json:"topics"`
	InteractionTimes  []time.Time    `json:"interaction_times"`
	FavoriteQuestions []string       `json:"favorite_questions"`
}

type Recommendation struct {
	Type    string `json:"type"` // "knowledge" or "general"
	Topic   string `json:"topic"`
	Content string `json:"content"`
	Reason  string `json:"reason"`
}

type TopicWeight struct {
	Topic  string `json:"topic"`
	Weight int    `json:"weight"`
}
