// Package bot binds one backend configuration to one conversation and
// exposes the completion, chat and abort contract shared by every bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/multibot/internal/chat"
	"github.com/baalimago/multibot/internal/directory"
	"github.com/baalimago/multibot/internal/models"
	"github.com/baalimago/multibot/internal/reasoning"
	"github.com/baalimago/multibot/internal/text/generic"
	"github.com/google/uuid"
)

const (
	CustomLogo    = "custom-model.svg"
	customDesc    = "Custom model using your own API configuration."
	fallbackLogin = "https://example.com"
)

// ConfigSource resolves custom model configurations by id.
type ConfigSource interface {
	Get(ctx context.Context, id string) (models.ModelConfig, error)
}

// Streamer is the streaming completion client.
type Streamer interface {
	Stream(ctx context.Context, cfg models.ModelConfig, messages []models.Message, h generic.Handlers)
}

// Deps are the services shared by every Handle, constructed once at
// startup.
type Deps struct {
	Directory ConfigSource
	Streamer  Streamer
	Sessions  *chat.Pool
	// Getenv looks up api keys of built-in bots, os.Getenv if nil
	Getenv func(string) string
}

// Handle is one bot. Its capabilities are resolved when it's constructed
// and never change afterwards.
type Handle struct {
	BotName           string
	Logo              string
	Desc              string
	RequiresLogin     bool
	MaxTokenLimit     int
	SupportsImage     bool
	SupportsUploadPDF bool
	IsPaid            bool
	IsNew             bool
	IsReasoning       bool
	IsCustom          bool
	LoginURL          string
	ConversationID    string
	// ModelID is the id of the bound custom model config, or the
	// bot name for built-in bots
	ModelID string

	resolve func(ctx context.Context) (models.ModelConfig, *models.ResponseError)
	deps    Deps

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
}

// New returns a Handle bound to the custom model cfg. The config is looked
// up again for each request, so edits and removals are honored.
func New(cfg models.ModelConfig, deps Deps) *Handle {
	h := &Handle{
		BotName:       cfg.Name,
		Logo:          CustomLogo,
		Desc:          customDesc,
		MaxTokenLimit: cfg.ContextWindow,
		SupportsImage: bool(cfg.SupportsImage),
		IsNew:         true,
		IsReasoning:   cfg.IsReasoning,
		IsCustom:      true,
		LoginURL:      loginURL(cfg.BaseURL),
		ModelID:       cfg.ID,
		deps:          deps,
	}
	id := cfg.ID
	h.resolve = func(ctx context.Context) (models.ModelConfig, *models.ResponseError) {
		c, err := deps.Directory.Get(ctx, id)
		if errors.Is(err, directory.ErrNotFound) {
			return models.ModelConfig{}, &models.ResponseError{
				Code:    models.ErrCodeUnknown,
				Message: fmt.Sprintf("Custom model with ID %v not found", id),
			}
		}
		if err != nil {
			return models.ModelConfig{}, &models.ResponseError{Code: models.ErrCodeUnknown, Message: err.Error()}
		}
		return c, nil
	}
	return h
}

func loginURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		ancli.PrintWarn(fmt.Sprintf("invalid api base url '%v', using default login url\n", baseURL))
		return fallbackLogin
	}
	return baseURL
}

// WithConversation returns a copy of h bound to conversationID. The copy
// has its own in-flight requests.
func (h *Handle) WithConversation(conversationID string) *Handle {
	return &Handle{
		BotName:           h.BotName,
		Logo:              h.Logo,
		Desc:              h.Desc,
		RequiresLogin:     h.RequiresLogin,
		MaxTokenLimit:     h.MaxTokenLimit,
		SupportsImage:     h.SupportsImage,
		SupportsUploadPDF: h.SupportsUploadPDF,
		IsPaid:            h.IsPaid,
		IsNew:             h.IsNew,
		IsReasoning:       h.IsReasoning,
		IsCustom:          h.IsCustom,
		LoginURL:          h.LoginURL,
		ModelID:           h.ModelID,
		ConversationID:    conversationID,
		resolve:           h.resolve,
		deps:              h.deps,
	}
}

// track registers a cancellable child of ctx. Entries are keyed per call,
// so requests sharing a requestID keep their own cancel func.
func (h *Handle) track(ctx context.Context, requestID string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	key := requestID + "/" + uuid.NewString()
	h.mu.Lock()
	if h.inflight == nil {
		h.inflight = make(map[string]context.CancelFunc)
	}
	h.inflight[key] = cancel
	h.mu.Unlock()
	return ctx, func() {
		h.mu.Lock()
		delete(h.inflight, key)
		h.mu.Unlock()
		cancel()
	}
}

// Abort cancels every in-flight request of h. Calling it again, or with
// nothing in flight, does nothing.
func (h *Handle) Abort() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, cancel := range h.inflight {
		if misc.Truthy(os.Getenv("DEBUG")) {
			ancli.PrintOK(fmt.Sprintf("aborting request '%v' of '%v'\n", id, h.BotName))
		}
		cancel()
		delete(h.inflight, id)
	}
}

// InFlight is the amount of requests currently running.
func (h *Handle) InFlight() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.inflight)
}

// run one request to its end. emit receives every response, the terminal
// one included, unless ctx is cancelled. The returned text is the visible
// text of a successful request.
func (h *Handle) run(ctx context.Context, prompt string, emit func(models.ConversationResponse)) (string, error) {
	cfg, rerr := h.resolve(ctx)
	if rerr != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		emit(models.ConversationResponse{Type: models.Error, Error: rerr})
		return "", rerr
	}
	session := h.deps.Sessions.Session(h.ConversationID, h.ModelID)
	messages := append(session.History(), models.Message{Role: models.RoleUser, Content: prompt})
	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_BOT")) {
		ancli.PrintOK(fmt.Sprintf("'%v' completion with %v messages\n", h.BotName, len(messages)))
	}

	acc := reasoning.New(cfg.IsReasoning)
	var final string
	var streamErr error
	h.deps.Streamer.Stream(ctx, cfg, messages, generic.Handlers{
		OnChunk: func(d models.StreamDelta) {
			emit(models.GeneratingResponse(acc.Add(d)))
		},
		OnError: func(err error) {
			streamErr = err
			emit(models.ErrorResponse(models.ErrCodeUnknown, err.Error()))
		},
		OnDone: func() {
			final = acc.Text()
			session.Exchange(prompt, acc.Content())
			if err := h.deps.Sessions.Persist(session); err != nil {
				ancli.PrintWarn(fmt.Sprintf("failed to persist session: %v\n", err))
			}
			emit(models.DoneResponse(final))
		},
	})
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if streamErr != nil {
		return "", streamErr
	}
	return final, nil
}

// Request is one running completion.
type Request struct {
	ID     string
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel the request. No callback fires after Cancel returns, unless one
// was already running.
func (r *Request) Cancel() {
	r.cancel()
}

func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Wait until the request has finished or been cancelled.
func (r *Request) Wait() {
	<-r.done
}

// Completion streams prompt to the bot in the background. cb receives zero
// or more GENERATING responses and then exactly one DONE or ERROR, all
// keyed by requestID. If requestID is empty, one is generated. A cancelled
// request is silent.
func (h *Handle) Completion(ctx context.Context, prompt, requestID string, cb models.Callback) *Request {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	reqCtx, untrack := h.track(ctx, requestID)
	r := &Request{ID: requestID, cancel: untrack, done: make(chan struct{})}
	go func() {
		defer close(r.done)
		defer untrack()
		_, _ = h.run(reqCtx, prompt, func(resp models.ConversationResponse) {
			if reqCtx.Err() != nil {
				return
			}
			cb(requestID, resp)
		})
	}()
	return r
}

// EventType of a chat Event.
type EventType string

const (
	EventUpdate EventType = "update"
	EventError  EventType = "error"
	EventDone   EventType = "done"
)

type Event struct {
	Type    EventType
	Message string
	Error   *models.ResponseError
}

// Chat streams prompt and blocks until the reply is complete. onEvent may
// be nil.
func (h *Handle) Chat(ctx context.Context, prompt string, onEvent func(Event)) (string, error) {
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	reqCtx, untrack := h.track(ctx, uuid.NewString())
	defer untrack()
	return h.run(reqCtx, prompt, func(resp models.ConversationResponse) {
		if reqCtx.Err() != nil {
			return
		}
		switch resp.Type {
		case models.Generating:
			onEvent(Event{Type: EventUpdate, Message: resp.Text})
		case models.Done:
			onEvent(Event{Type: EventDone, Message: resp.Text})
		case models.Error:
			onEvent(Event{Type: EventError, Error: resp.Error})
		}
	})
}
