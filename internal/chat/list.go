package chat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

var ErrConversationNotFound = errors.New("conversation not found")

// Summary of one stored transcript.
type Summary struct {
	ConversationID string
	ModelID        string
	Created        time.Time
	Messages       int
	Path           string
}

// List the transcripts in dir, newest first. Unreadable files are skipped.
func List(dir string) ([]Summary, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob transcripts: %w", err)
	}
	ret := make([]Summary, 0, len(paths))
	for _, p := range paths {
		s, err := FromPath(p)
		if err != nil {
			ancli.PrintWarn(fmt.Sprintf("skipping transcript '%v': %v\n", p, err))
			continue
		}
		ret = append(ret, Summary{
			ConversationID: s.ConversationID,
			ModelID:        s.ModelID,
			Created:        s.Created,
			Messages:       s.Len(),
			Path:           p,
		})
	}
	slices.SortStableFunc(ret, func(a, b Summary) int {
		return b.Created.Compare(a.Created)
	})
	return ret, nil
}

// Delete every transcript of the conversation, returning how many were
// removed.
func Delete(dir, conversationID string) (int, error) {
	all, err := List(dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, s := range all {
		if s.ConversationID != conversationID {
			continue
		}
		if err := os.Remove(s.Path); err != nil {
			return removed, fmt.Errorf("failed to remove '%v': %w", s.Path, err)
		}
		removed++
	}
	if removed == 0 {
		return 0, fmt.Errorf("%w: '%v'", ErrConversationNotFound, conversationID)
	}
	return removed, nil
}
