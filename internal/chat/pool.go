package chat

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// Pool owns the sessions of the process, one per model. Asking for a model
// with another conversation id replaces that model's session.
type Pool struct {
	mu       sync.Mutex
	sessions map[string]*Session
	// dir is where transcripts are kept, empty means memory only
	dir string
}

func NewPool(dir string) *Pool {
	return &Pool{
		sessions: make(map[string]*Session),
		dir:      dir,
	}
}

// Session returns the session for the pair, creating it on first use. If
// the pool persists transcripts, an existing transcript is loaded.
func (p *Pool) Session(conversationID, modelID string) *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sessions[modelID]; ok && s.ConversationID == conversationID {
		return s
	}
	s := p.load(conversationID, modelID)
	p.sessions[modelID] = s
	return s
}

func (p *Pool) load(conversationID, modelID string) *Session {
	if p.dir == "" {
		return NewSession(conversationID, modelID)
	}
	s, err := FromPath(TranscriptPath(p.dir, conversationID, modelID))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			ancli.PrintWarn(fmt.Sprintf("failed to load transcript, starting new session: %v\n", err))
		}
		return NewSession(conversationID, modelID)
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("loaded session '%v' with %v messages\n", conversationID, s.Len()))
	}
	return s
}

// Persist writes the transcript of s, if the pool has a directory.
func (p *Pool) Persist(s *Session) error {
	if p.dir == "" {
		return nil
	}
	return Save(p.dir, s)
}
