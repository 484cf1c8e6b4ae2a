package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/baalimago/multibot/internal/models"
)

// Message is one immutable entry of a Session.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the append-only history of one conversation with one model.
type Session struct {
	ConversationID string
	ModelID        string
	Created        time.Time

	mu       sync.Mutex
	messages []Message
	now      func() time.Time
}

func NewSession(conversationID, modelID string) *Session {
	return &Session{
		ConversationID: conversationID,
		ModelID:        modelID,
		Created:        time.Now(),
		now:            time.Now,
	}
}

// Append a message and return it. The id is derived from the append time
// and the position, so it's unique within the session.
func (s *Session) Append(role, text string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.newMessage(s.now(), role, text)
	s.messages = append(s.messages, msg)
	return msg
}

func (s *Session) newMessage(ts time.Time, role, text string) Message {
	return Message{
		ID:        fmt.Sprintf("%v-%v", ts.UnixMilli(), len(s.messages)),
		Role:      role,
		Text:      text,
		Timestamp: ts,
	}
}

// Messages returns a copy of the history, oldest first.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	cpy := make([]Message, len(s.messages))
	copy(cpy, s.messages)
	return cpy
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// History converts the session into request messages using the role
// recorded on each message.
func (s *Session) History() []models.Message {
	msgs := s.Messages()
	ret := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		ret = append(ret, models.Message{Role: m.Role, Content: m.Text})
	}
	return ret
}

// Exchange appends a user prompt and the assistant reply as one unit, so
// that concurrent requests on the same session never interleave turns.
func (s *Session) Exchange(prompt, reply string) (Message, Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.now()
	user := s.newMessage(ts, models.RoleUser, prompt)
	s.messages = append(s.messages, user)
	assistant := s.newMessage(ts, models.RoleAssistant, reply)
	s.messages = append(s.messages, assistant)
	return user, assistant
}
