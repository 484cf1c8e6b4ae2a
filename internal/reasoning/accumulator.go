// Package reasoning turns the content and reasoning deltas of one request
// into display text.
package reasoning

import (
	"strings"

	"github.com/baalimago/multibot/internal/models"
)

const (
	ThinkingHeader = "Thinking:\n"
	AnswerHeader   = "\n\nAnswer:\n"
)

// Accumulator is not safe for concurrent use, one belongs to one request.
type Accumulator struct {
	IsReasoning bool
	content     strings.Builder
	reasoning   strings.Builder
}

func New(isReasoning bool) *Accumulator {
	return &Accumulator{IsReasoning: isReasoning}
}

// Add the delta and return the visible text of everything seen so far.
func (a *Accumulator) Add(d models.StreamDelta) string {
	if d.Content != "" {
		a.content.WriteString(d.Content)
	}
	if d.Reasoning != "" {
		a.reasoning.WriteString(d.Reasoning)
	}
	return a.Text()
}

// Text is derived from the accumulated state on every call.
func (a *Accumulator) Text() string {
	return Format(a.IsReasoning, a.content.String(), a.reasoning.String())
}

// Content is the accumulated answer, without any reasoning.
func (a *Accumulator) Content() string {
	return a.content.String()
}

func Format(isReasoning bool, content, reasoning string) string {
	if !isReasoning || reasoning == "" {
		return content
	}
	return ThinkingHeader + strings.TrimSpace(reasoning) + AnswerHeader + content
}
