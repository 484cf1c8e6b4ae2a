package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/multibot/internal/bot"
	"github.com/baalimago/multibot/internal/chat"
	"github.com/baalimago/multibot/internal/models"
	"github.com/baalimago/multibot/internal/summary"
	"github.com/baalimago/multibot/internal/utils"
)

var errNoBots = errors.New("no bots selected, select some with 'multibot select <botName>...'")

// queryCmd sends one prompt to every bot of the current selection. In chat
// mode only the first bot is asked.
type queryCmd struct {
	svc      *services
	prompt   string
	chatMode bool
}

func (q *queryCmd) Query(ctx context.Context) error {
	bots := q.svc.registry.Current()
	if len(bots) == 0 {
		return errNoBots
	}
	convID := q.svc.convID
	if convID == "" {
		convID = chat.IDFromPrompt(q.prompt)
	}
	ctx, cancel := context.WithTimeout(ctx, q.svc.timeout)
	defer cancel()

	var err error
	if q.chatMode || len(bots) == 1 {
		err = q.stream(ctx, bots[0].WithConversation(convID))
	} else {
		err = q.fanOut(ctx, bots, convID)
	}
	if err != nil {
		return err
	}
	if !q.svc.raw {
		ancli.Noticef("continue with: multibot -c %v %v <prompt>\n", convID, q.verb())
	}
	return nil
}

func (q *queryCmd) verb() string {
	if q.chatMode {
		return "chat"
	}
	return "q"
}

func (q *queryCmd) stream(ctx context.Context, h *bot.Handle) error {
	if !q.svc.raw {
		printHeader(h.BotName, false)
	}
	p := &streamPrinter{}
	_, err := h.Chat(ctx, q.prompt, func(e bot.Event) {
		if e.Type == bot.EventUpdate || e.Type == bot.EventDone {
			p.update(e.Message)
		}
	})
	p.finish()
	return ctxErr(ctx, err)
}

func (q *queryCmd) fanOut(ctx context.Context, bots []*bot.Handle, convID string) error {
	results := make([]models.ConversationResponse, len(bots))
	reqs := make([]*bot.Request, 0, len(bots))
	for i, b := range bots {
		i := i
		h := b.WithConversation(convID)
		reqs = append(reqs, h.Completion(ctx, q.prompt, "", func(_ string, resp models.ConversationResponse) {
			if resp.IsTerminal() {
				results[i] = resp
			}
		}))
	}
	for _, r := range reqs {
		r.Wait()
	}
	if err := ctxErr(ctx, ctx.Err()); err != nil {
		return err
	}

	failed := 0
	for i, b := range bots {
		printHeader(b.BotName, q.svc.raw)
		resp := results[i]
		if resp.Type == models.Error {
			failed++
			ancli.PrintErr(fmt.Sprintf("%v\n", resp.Error))
			continue
		}
		fmt.Println(resp.Text)
	}
	if failed == len(bots) {
		return fmt.Errorf("all %v bots failed", failed)
	}
	return nil
}

// ctxErr maps a cancellation to ErrUserInitiatedExit.
func ctxErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) && errors.Is(ctx.Err(), context.Canceled) {
		return utils.ErrUserInitiatedExit
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}

type summarizeCmd struct {
	svc *services
	url string
}

func (s *summarizeCmd) Query(ctx context.Context) error {
	page, err := s.svc.fetcher.FetchPage(ctx, s.url)
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}
	if !s.svc.raw {
		ancli.Okf("%v\n", summary.Label(page))
	}
	q := &queryCmd{svc: s.svc, prompt: summary.Prompt(page)}
	return q.Query(ctx)
}
