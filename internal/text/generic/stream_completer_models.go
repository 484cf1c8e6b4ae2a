package generic

import (
	"fmt"
	"net/http"

	"github.com/baalimago/multibot/internal/models"
)

// StreamCompleter talks to OpenAI and Azure compatible chat completion
// endpoints and reports the streamed deltas through Handlers.
type StreamCompleter struct {
	client *http.Client
	// readSize is the amount of bytes requested from the body per read
	readSize int
	debug    bool
}

// Handlers receives the outcome of one Stream call. OnChunk fires zero or
// more times, in arrival order, followed by exactly one of OnError or
// OnDone. After cancellation nothing fires.
type Handlers struct {
	OnChunk func(models.StreamDelta)
	OnError func(error)
	OnDone  func()
}

// APIError is reported when the backend answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %v", e.Message)
}

type chatCompletionChunk struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int      `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index        int    `json:"index"`
	Delta        *Delta `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

type Delta struct {
	Content          *string `json:"content"`
	ReasoningContent *string `json:"reasoning_content"`
	Role             string  `json:"role"`
}

type req struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	Stream      bool             `json:"stream"`
}
