package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/multibot/internal/models"
)

func TestSession_AppendKeepsOrder(t *testing.T) {
	s := NewSession("conv", "m1")
	const n = 25
	for i := 0; i < n; i++ {
		s.Append(models.RoleAssistant, fmt.Sprintf("msg-%v", i))
	}
	msgs := s.Messages()
	testboil.FailTestIfDiff(t, len(msgs), n)
	testboil.FailTestIfDiff(t, s.Len(), n)
	seen := map[string]bool{}
	for i, m := range msgs {
		testboil.FailTestIfDiff(t, m.Text, fmt.Sprintf("msg-%v", i))
		if seen[m.ID] {
			t.Fatalf("duplicate message id: %v", m.ID)
		}
		seen[m.ID] = true
	}
}

func TestSession_MessagesIsACopy(t *testing.T) {
	s := NewSession("conv", "m1")
	s.Append(models.RoleUser, "original")
	msgs := s.Messages()
	msgs[0].Text = "mutated"
	testboil.FailTestIfDiff(t, s.Messages()[0].Text, "original")
}

func TestSession_IDIsTimestampDerived(t *testing.T) {
	s := NewSession("conv", "m1")
	fixed := time.UnixMilli(1712000000000)
	s.now = func() time.Time { return fixed }
	m := s.Append(models.RoleUser, "hi")
	testboil.FailTestIfDiff(t, m.ID, "1712000000000-0")
	testboil.FailTestIfDiff(t, m.Timestamp.Equal(fixed), true)
}

func TestSession_ExchangeAndHistory(t *testing.T) {
	s := NewSession("conv", "m1")
	s.Exchange("question", "answer")
	// A lone assistant message keeps its role, no position parity involved
	s.Append(models.RoleAssistant, "retried answer")
	h := s.History()
	testboil.FailTestIfDiff(t, len(h), 3)
	testboil.FailTestIfDiff(t, h[0], models.Message{Role: models.RoleUser, Content: "question"})
	testboil.FailTestIfDiff(t, h[1], models.Message{Role: models.RoleAssistant, Content: "answer"})
	testboil.FailTestIfDiff(t, h[2], models.Message{Role: models.RoleAssistant, Content: "retried answer"})
}

func TestSession_ConcurrentExchangesDoNotInterleave(t *testing.T) {
	s := NewSession("conv", "m1")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Exchange(fmt.Sprintf("q%v", i), fmt.Sprintf("a%v", i))
		}()
	}
	wg.Wait()
	msgs := s.Messages()
	testboil.FailTestIfDiff(t, len(msgs), 40)
	for i := 0; i < len(msgs); i += 2 {
		testboil.FailTestIfDiff(t, msgs[i].Role, models.RoleUser)
		testboil.FailTestIfDiff(t, msgs[i+1].Role, models.RoleAssistant)
		testboil.FailTestIfDiff(t, msgs[i+1].Text, "a"+msgs[i].Text[1:])
	}
}
