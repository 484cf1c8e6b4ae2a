package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/multibot/internal/chat"
)

// conversationsCmd lists and deletes stored transcripts.
type conversationsCmd struct {
	dir  string
	raw  bool
	args []string
}

func (c *conversationsCmd) Query(ctx context.Context) error {
	sub := "list"
	if len(c.args) > 0 {
		sub = c.args[0]
	}
	switch sub {
	case "list", "l":
		all, err := chat.List(c.dir)
		if err != nil {
			return err
		}
		for _, s := range all {
			fmt.Printf("%v\t%v\t%v messages\t%v\n", s.ConversationID, s.ModelID, s.Messages, s.Created.Format("2006-01-02 15:04"))
		}
		return nil
	case "show", "s":
		if len(c.args) != 2 {
			return errors.New("show requires exactly one conversation id")
		}
		return c.show(c.args[1])
	case "rm", "r", "delete", "d":
		if len(c.args) != 2 {
			return errors.New("rm requires exactly one conversation id")
		}
		n, err := chat.Delete(c.dir, c.args[1])
		if err != nil {
			return err
		}
		ancli.Okf("removed %v transcripts of '%v'\n", n, c.args[1])
		return nil
	}
	return fmt.Errorf("unknown conversations subcommand: '%v'", sub)
}

func (c *conversationsCmd) show(conversationID string) error {
	all, err := chat.List(c.dir)
	if err != nil {
		return err
	}
	found := false
	for _, s := range all {
		if s.ConversationID != conversationID {
			continue
		}
		found = true
		session, err := chat.FromPath(s.Path)
		if err != nil {
			return err
		}
		printHeader(s.ModelID, c.raw)
		for _, m := range session.Messages() {
			fmt.Printf("%v: %v\n", m.Role, m.Text)
		}
	}
	if !found {
		return fmt.Errorf("%w: '%v'", chat.ErrConversationNotFound, conversationID)
	}
	return nil
}
