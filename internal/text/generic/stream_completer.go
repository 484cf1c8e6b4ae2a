package generic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/multibot/internal/models"
	"github.com/tidwall/gjson"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

type eventKind int

const (
	eventSkip eventKind = iota
	eventChunk
	eventDone
)

// Stream a chat completion for cfg. It blocks until the stream terminates.
// ctx is the cancel token: once it's done, the body is released and no
// handler is called, not even OnDone.
func (s *StreamCompleter) Stream(ctx context.Context, cfg models.ModelConfig, messages []models.Message, h Handlers) {
	h = h.withDefaults()
	req, err := s.createRequest(ctx, cfg, messages)
	if err != nil {
		h.OnError(fmt.Errorf("failed to create request: %w", err))
		return
	}
	res, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		h.OnError(fmt.Errorf("failed to execute request: %w", err))
		return
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		if ctx.Err() != nil {
			return
		}
		h.OnError(apiErrorFrom(res.StatusCode, body))
		return
	}
	s.readEvents(ctx, res.Body, h)
}

func (h Handlers) withDefaults() Handlers {
	if h.OnChunk == nil {
		h.OnChunk = func(models.StreamDelta) {}
	}
	if h.OnError == nil {
		h.OnError = func(error) {}
	}
	if h.OnDone == nil {
		h.OnDone = func() {}
	}
	return h
}

func apiErrorFrom(statusCode int, body []byte) *APIError {
	msg := gjson.GetBytes(body, "error.message").String()
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	if msg == "" {
		msg = fmt.Sprintf("status %v", statusCode)
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}

func completionsURL(cfg models.ModelConfig) (string, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to parse base url: %w", err)
	}
	if cfg.APIKind == models.APIKindAzure {
		q := u.Query()
		q.Set("api-version", cfg.APIVersion)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (s *StreamCompleter) createRequest(ctx context.Context, cfg models.ModelConfig, messages []models.Message) (*http.Request, error) {
	reqData := req{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: cfg.Temperature,
		Stream:      true,
	}
	if s.debug {
		ancli.PrintOK(fmt.Sprintf("generic streamcompleter request: %v\n", debug.IndentedJsonFmt(reqData)))
	}
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	u, err := completionsURL(cfg)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %v", cfg.APIKey))
	req.Header.Set("Accept", "text/event-stream")
	if cfg.APIKind == models.APIKindAzure {
		req.Header.Set("api-key", cfg.APIKey)
	}
	return req, nil
}

// readEvents reads one chunk at a time, decoding utf-8 incrementally so
// that runes split across reads are carried over.
func (s *StreamCompleter) readEvents(ctx context.Context, body io.Reader, h Handlers) {
	r := transform.NewReader(body, unicode.UTF8.NewDecoder())
	framer := eventFramer{}
	buf := make([]byte, s.readSize)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := r.Read(buf)
		if n > 0 {
			for _, event := range framer.push(string(buf[:n])) {
				if s.dispatch(ctx, event, h) {
					return
				}
			}
		}
		if err == io.EOF {
			if rest := framer.flush(); rest != "" {
				if s.dispatch(ctx, rest, h) {
					return
				}
			}
			if ctx.Err() != nil {
				return
			}
			h.OnDone()
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			h.OnError(fmt.Errorf("failed to read stream: %w", err))
			return
		}
	}
}

// dispatch event to h, returning true if the stream is finished.
func (s *StreamCompleter) dispatch(ctx context.Context, event string, h Handlers) bool {
	if ctx.Err() != nil {
		return true
	}
	delta, kind := s.handleEvent(event)
	switch kind {
	case eventDone:
		h.OnDone()
		return true
	case eventChunk:
		h.OnChunk(delta)
	}
	return false
}

func (s *StreamCompleter) handleEvent(event string) (models.StreamDelta, eventKind) {
	if !strings.HasPrefix(event, dataPrefix) {
		return models.StreamDelta{}, eventSkip
	}
	payload := strings.TrimSpace(strings.TrimPrefix(event, dataPrefix))
	if payload == doneSentinel {
		return models.StreamDelta{}, eventDone
	}
	if s.debug {
		ancli.PrintOK(fmt.Sprintf("token: %+v\n", payload))
	}
	var chunk chatCompletionChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		// Malformed events are skipped, the stream continues
		ancli.PrintWarn(fmt.Sprintf("failed to unmarshal event: %v, err: %v\n", payload, err))
		return models.StreamDelta{}, eventSkip
	}
	return normalize(chunk), eventChunk
}

func normalize(chunk chatCompletionChunk) models.StreamDelta {
	var delta models.StreamDelta
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
		return delta
	}
	d := chunk.Choices[0].Delta
	if d.Content != nil {
		delta.Content = *d.Content
	}
	if d.ReasoningContent != nil {
		delta.Reasoning = *d.ReasoningContent
	}
	return delta
}
