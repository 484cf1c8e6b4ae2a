package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/multibot/internal/models"
	"github.com/baalimago/multibot/internal/store"
	"github.com/baalimago/multibot/internal/utils"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const modelsUsage = `Usage: multibot models <subcommand>

  l|list                  List all bots by category
  a|add    <json>         Add a custom model
  e|edit   <id> <json>    Set the given fields of a custom model
  r|rm     <id>           Remove a custom model
  d|default <id|->        Set, or with '-' clear, the default model

Example:
  multibot models add '{"name":"local","apiKey":"ollama","model":"llama3","apiBaseUrl":"http://localhost:11434/v1"}'
`

type modelsCmd struct {
	svc  *services
	args []string
}

func (m *modelsCmd) Query(ctx context.Context) error {
	sub := "list"
	if len(m.args) > 0 {
		sub = m.args[0]
	}
	var rest []string
	if len(m.args) > 1 {
		rest = m.args[1:]
	}
	switch sub {
	case "list", "l":
		return m.list(ctx)
	case "add", "a":
		return m.add(ctx, utils.JoinArgs(rest))
	case "edit", "e":
		if len(rest) < 2 {
			return errors.New("edit requires an id and a json object")
		}
		return m.edit(ctx, rest[0], utils.JoinArgs(rest[1:]))
	case "rm", "r", "remove":
		if len(rest) != 1 {
			return errors.New("rm requires exactly one id")
		}
		if err := m.svc.directory.Remove(ctx, rest[0]); err != nil {
			return err
		}
		// drop the removed bot from the persisted selection
		if err := m.svc.registry.Init(ctx); err != nil {
			return fmt.Errorf("failed to refresh selection: %w", err)
		}
		ancli.Okf("removed model: '%v'\n", rest[0])
		return nil
	case "default", "d":
		if len(rest) != 1 {
			return errors.New("default requires exactly one id, or '-' to clear")
		}
		id := rest[0]
		if id == "-" {
			id = ""
		}
		return m.svc.registry.SetDefault(ctx, id)
	case "help", "h":
		fmt.Print(modelsUsage)
		return nil
	}
	return fmt.Errorf("unknown models subcommand: '%v'", sub)
}

func (m *modelsCmd) list(ctx context.Context) error {
	var defaultID string
	if _, err := m.svc.store.Get(ctx, store.KeyDefaultModel, &defaultID); err != nil {
		return fmt.Errorf("failed to read default model: %w", err)
	}
	for _, c := range m.svc.registry.Categories() {
		printHeader(c.Name, m.svc.raw)
		if len(c.Bots) == 0 {
			fmt.Println("  -")
		}
		for _, b := range c.Bots {
			var tags []string
			if b.IsCustom {
				tags = append(tags, "id: "+b.ModelID)
			}
			if b.IsCustom && b.ModelID == defaultID {
				tags = append(tags, "default")
			}
			if b.RequiresLogin {
				tags = append(tags, "requires login")
			}
			if b.IsReasoning {
				tags = append(tags, "reasoning")
			}
			if len(tags) == 0 {
				fmt.Printf("  %v\n", b.BotName)
				continue
			}
			fmt.Printf("  %v (%v)\n", b.BotName, strings.Join(tags, ", "))
		}
	}
	return nil
}

// add decodes the json onto the defaults of a new model.
func (m *modelsCmd) add(ctx context.Context, raw string) error {
	if !gjson.Valid(raw) {
		return fmt.Errorf("%w: not valid json: '%v'", models.ErrInvalidConfig, raw)
	}
	cfg := models.ModelConfig{
		ContextWindow: models.DefaultContextWindow,
		Temperature:   models.DefaultTemperature,
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
	}
	added, err := m.svc.directory.Add(ctx, cfg)
	if err != nil {
		return err
	}
	ancli.Okf("added model '%v' with id: %v\n", added.Name, added.ID)
	fmt.Println(added.ID)
	return nil
}

// edit sets each field of patch on the stored config. The id can't change.
func (m *modelsCmd) edit(ctx context.Context, id, patch string) error {
	if !gjson.Valid(patch) || !gjson.Parse(patch).IsObject() {
		return fmt.Errorf("%w: not a json object: '%v'", models.ErrInvalidConfig, patch)
	}
	existing, err := m.svc.directory.Get(ctx, id)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	var setErr error
	gjson.Parse(patch).ForEach(func(key, value gjson.Result) bool {
		doc, setErr = sjson.SetRawBytes(doc, key.String(), []byte(value.Raw))
		return setErr == nil
	})
	if setErr != nil {
		return fmt.Errorf("failed to apply patch: %w", setErr)
	}
	var updated models.ModelConfig
	if err := json.Unmarshal(doc, &updated); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
	}
	updated.ID = existing.ID
	if err := m.svc.directory.Update(ctx, updated); err != nil {
		return err
	}
	ancli.Okf("updated model: '%v'\n", id)
	return nil
}

type selectCmd struct {
	svc   *services
	names []string
}

func (s *selectCmd) Query(ctx context.Context) error {
	if err := s.svc.registry.SetSelection(ctx, s.names...); err != nil {
		return err
	}
	return (&currentCmd{svc: s.svc}).Query(ctx)
}

type currentCmd struct {
	svc *services
}

func (c *currentCmd) Query(ctx context.Context) error {
	for _, b := range c.svc.registry.Current() {
		fmt.Println(b.BotName)
	}
	return nil
}
