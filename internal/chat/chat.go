package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

type transcript struct {
	ConversationID string    `json:"conversationId"`
	ModelID        string    `json:"modelId"`
	Created        time.Time `json:"created,omitempty"`
	Messages       []Message `json:"messages"`
}

// IDFromPrompt creates a conversation id from the first five words of the
// prompt.
func IDFromPrompt(prompt string) string {
	ret := strings.Join(firstTokens(strings.Split(prompt, " "), 5), "_")
	ret = strings.ReplaceAll(ret, "/", ".")
	ret = strings.ReplaceAll(ret, "\\", ".")
	return ret
}

func firstTokens(prompt []string, n int) []string {
	ret := make([]string, 0, n)
	for _, token := range prompt {
		if token == "" {
			continue
		}
		if len(ret) == n {
			break
		}
		ret = append(ret, token)
	}
	return ret
}

func fileSafe(s string) string {
	return strings.NewReplacer("/", ".", "\\", ".", " ", "_", ":", ".").Replace(s)
}

// TranscriptPath is where the session of the pair is stored within dir.
func TranscriptPath(dir, conversationID, modelID string) string {
	return filepath.Join(dir, fileSafe(conversationID)+"_"+fileSafe(modelID)+".json")
}

func FromPath(path string) (*Session, error) {
	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_REPLY_MODE")) {
		ancli.PrintOK(fmt.Sprintf("reading chat from '%v'\n", path))
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	var t transcript
	err = json.Unmarshal(b, &t)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	s := NewSession(t.ConversationID, t.ModelID)
	if !t.Created.IsZero() {
		s.Created = t.Created
	}
	s.messages = t.Messages
	return s, nil
}

func Save(saveAt string, s *Session) error {
	t := transcript{
		ConversationID: s.ConversationID,
		ModelID:        s.ModelID,
		Created:        s.Created,
		Messages:       s.Messages(),
	}
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := os.MkdirAll(saveAt, 0o755); err != nil {
		return fmt.Errorf("failed to create conversations dir: %w", err)
	}
	fileName := TranscriptPath(saveAt, s.ConversationID, s.ModelID)
	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_REPLY_MODE")) {
		ancli.PrintOK(fmt.Sprintf("saving chat to: '%v', content (on new line):\n'%v'\n", fileName, string(b)))
	}
	return os.WriteFile(fileName, b, 0o644)
}
