package reasoning

import (
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/multibot/internal/models"
)

func TestAccumulator_ReasoningModel(t *testing.T) {
	a := New(true)
	got := a.Add(models.StreamDelta{Reasoning: "step1"})
	testboil.FailTestIfDiff(t, got, "Thinking:\nstep1\n\nAnswer:\n")
	got = a.Add(models.StreamDelta{Content: "answer"})
	testboil.FailTestIfDiff(t, got, "Thinking:\nstep1\n\nAnswer:\nanswer")
	testboil.FailTestIfDiff(t, a.Content(), "answer")
}

func TestAccumulator_PlainModel(t *testing.T) {
	a := New(false)
	a.Add(models.StreamDelta{Reasoning: "step1"})
	got := a.Add(models.StreamDelta{Content: "answer"})
	testboil.FailTestIfDiff(t, got, "answer")
}

func TestAccumulator_ReasoningModelWithoutReasoning(t *testing.T) {
	a := New(true)
	a.Add(models.StreamDelta{Content: "Hel"})
	got := a.Add(models.StreamDelta{Content: "lo"})
	testboil.FailTestIfDiff(t, got, "Hello")
}

func TestAccumulator_TrimsReasoningAndIgnoresEmpty(t *testing.T) {
	a := New(true)
	a.Add(models.StreamDelta{Reasoning: "\n  first "})
	a.Add(models.StreamDelta{})
	a.Add(models.StreamDelta{Reasoning: "second\n"})
	testboil.FailTestIfDiff(t, a.Text(), "Thinking:\nfirst second\n\nAnswer:\n")
}
