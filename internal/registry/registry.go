// Package registry merges custom and built-in bots and keeps the current
// selection, and its persisted mirror, deduplicated by name.
package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/multibot/internal/bot"
	"github.com/baalimago/multibot/internal/models"
	"github.com/baalimago/multibot/internal/store"
)

var ErrUnknownBot = errors.New("unknown bot")

// Directory is the source of custom model configurations.
type Directory interface {
	List(ctx context.Context) ([]models.ModelConfig, error)
	Get(ctx context.Context, id string) (models.ModelConfig, error)
}

type Category struct {
	Name string
	Bots []*bot.Handle
}

type Registry struct {
	store store.Store
	dir   Directory
	deps  bot.Deps
	debug bool

	mu         sync.Mutex
	custom     []*bot.Handle
	all        []*bot.Handle
	categories []Category
	current    []*bot.Handle
}

// New registry. deps.Directory is set to dir if unset.
func New(s store.Store, dir Directory, deps bot.Deps) *Registry {
	if deps.Directory == nil {
		deps.Directory = dir
	}
	return &Registry{
		store: s,
		dir:   dir,
		deps:  deps,
		debug: misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_REGISTRY")),
	}
}

// Init builds the bot lists and restores the persisted selection. Without
// a persisted selection the default selection is applied.
func (r *Registry) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.build(ctx); err != nil {
		return err
	}
	var persisted []string
	if _, err := r.store.Get(ctx, store.KeyCurrentModels, &persisted); err != nil {
		return fmt.Errorf("failed to read current models: %w", err)
	}
	if len(persisted) == 0 {
		return r.selectDefault(ctx)
	}
	return r.restore(ctx)
}

// Load rebuilds the bot lists from the directory and applies the default
// selection, replacing the persisted one.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.build(ctx); err != nil {
		return err
	}
	if err := r.store.Remove(ctx, store.KeyCurrentModels); err != nil {
		return fmt.Errorf("failed to clear current models: %w", err)
	}
	return r.selectDefault(ctx)
}

// Restore reconciles the live selection with the persisted name list.
func (r *Registry) Restore(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.all == nil {
		if err := r.build(ctx); err != nil {
			return err
		}
	}
	return r.restore(ctx)
}

func (r *Registry) build(ctx context.Context) error {
	cfgs, err := r.dir.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list custom models: %w", err)
	}
	custom := make([]*bot.Handle, 0, len(cfgs))
	for _, cfg := range cfgs {
		custom = append(custom, bot.New(cfg, r.deps))
	}

	builtins := bot.Builtins()
	all := slices.Clone(custom)
	var categories []Category
	for _, spec := range builtins {
		h := bot.NewBuiltin(spec, r.deps)
		all = append(all, h)
		i := slices.IndexFunc(categories, func(c Category) bool { return c.Name == spec.Category })
		if i == -1 {
			categories = append(categories, Category{Name: spec.Category})
			i = len(categories) - 1
		}
		categories[i].Bots = append(categories[i].Bots, h)
	}
	categories = append(categories, Category{Name: bot.CategoryCustom, Bots: slices.Clone(custom)})

	r.custom = custom
	r.all = all
	r.categories = categories
	if r.debug {
		ancli.PrintOK(fmt.Sprintf("registry built, custom: %v, total: %v\n", len(custom), len(all)))
	}
	return nil
}

// selectDefault picks, in order: the persisted default model, the first
// custom model, the built-in fallback. The choice is persisted.
func (r *Registry) selectDefault(ctx context.Context) error {
	var defaultID string
	found, err := r.store.Get(ctx, store.KeyDefaultModel, &defaultID)
	if err != nil {
		return fmt.Errorf("failed to read default model: %w", err)
	}
	var selection []*bot.Handle
	if found {
		if h := r.customByID(defaultID); h != nil {
			selection = []*bot.Handle{h}
		} else {
			if r.debug {
				ancli.PrintWarn(fmt.Sprintf("default model '%v' no longer exists, removing\n", defaultID))
			}
			if err := r.store.Remove(ctx, store.KeyDefaultModel); err != nil {
				return fmt.Errorf("failed to remove stale default model: %w", err)
			}
		}
	}
	if selection == nil && len(r.custom) > 0 {
		first := r.custom[0]
		selection = []*bot.Handle{first}
		if err := r.store.Set(ctx, store.KeyDefaultModel, first.ModelID); err != nil {
			return fmt.Errorf("failed to persist default model: %w", err)
		}
	}
	if selection == nil {
		selection = r.resolve(bot.FallbackSelection)
	}
	r.current = selection
	return r.persist(ctx, names(selection))
}

func (r *Registry) restore(ctx context.Context) error {
	var persisted []string
	if _, err := r.store.Get(ctx, store.KeyCurrentModels, &persisted); err != nil {
		return fmt.Errorf("failed to read current models: %w", err)
	}
	unique := Dedup(persisted)
	if len(unique) != len(persisted) {
		if err := r.persist(ctx, unique); err != nil {
			return err
		}
	}
	resolved := r.resolve(unique)
	if len(resolved) == 0 {
		return r.selectDefault(ctx)
	}
	r.current = resolved
	if got := names(resolved); !slices.Equal(got, unique) {
		return r.persist(ctx, got)
	}
	return nil
}

// SaveSelection persists the live selection, reducing it to one bot per
// name first.
func (r *Registry) SaveSelection(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveSelection(ctx)
}

func (r *Registry) saveSelection(ctx context.Context) error {
	all := names(r.current)
	unique := Dedup(all)
	if len(unique) != len(all) {
		reduced := make([]*bot.Handle, 0, len(unique))
		seen := make(map[string]bool, len(unique))
		for _, h := range r.current {
			if seen[h.BotName] {
				continue
			}
			seen[h.BotName] = true
			reduced = append(reduced, h)
		}
		r.current = reduced
	}
	return r.persist(ctx, unique)
}

// SetSelection replaces the live selection with the named bots and
// persists it.
func (r *Registry) SetSelection(ctx context.Context, botNames ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var unknown []string
	selection := make([]*bot.Handle, 0, len(botNames))
	for _, name := range botNames {
		h := r.find(name)
		if h == nil {
			unknown = append(unknown, name)
			continue
		}
		selection = append(selection, h)
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %v", ErrUnknownBot, strings.Join(unknown, ", "))
	}
	r.current = selection
	return r.saveSelection(ctx)
}

// SetDefault persists id as the default model. An empty id clears it.
func (r *Registry) SetDefault(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" {
		return r.store.Remove(ctx, store.KeyDefaultModel)
	}
	if r.customByID(id) == nil {
		return fmt.Errorf("%w: no custom model with id '%v'", ErrUnknownBot, id)
	}
	return r.store.Set(ctx, store.KeyDefaultModel, id)
}

func (r *Registry) persist(ctx context.Context, botNames []string) error {
	if botNames == nil {
		botNames = []string{}
	}
	if err := r.store.Set(ctx, store.KeyCurrentModels, botNames); err != nil {
		return fmt.Errorf("failed to persist current models: %w", err)
	}
	return nil
}

// resolve names to at most one bot each, skipping unknown names.
func (r *Registry) resolve(botNames []string) []*bot.Handle {
	ret := make([]*bot.Handle, 0, len(botNames))
	for _, name := range Dedup(botNames) {
		if h := r.find(name); h != nil {
			ret = append(ret, h)
		}
	}
	return ret
}

func (r *Registry) find(name string) *bot.Handle {
	for _, h := range r.all {
		if h.BotName == name {
			return h
		}
	}
	return nil
}

func (r *Registry) customByID(id string) *bot.Handle {
	for _, h := range r.custom {
		if h.ModelID == id {
			return h
		}
	}
	return nil
}

// Find the first bot named name. Custom bots shadow built-ins.
func (r *Registry) Find(name string) (*bot.Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.find(name)
	return h, h != nil
}

func (r *Registry) Current() []*bot.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.current)
}

// All bots, custom ones first.
func (r *Registry) All() []*bot.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.all)
}

func (r *Registry) Categories() []Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		ret = append(ret, Category{Name: c.Name, Bots: slices.Clone(c.Bots)})
	}
	return ret
}

func names(handles []*bot.Handle) []string {
	ret := make([]string, 0, len(handles))
	for _, h := range handles {
		ret = append(ret, h.BotName)
	}
	return ret
}

// Dedup returns the unique names in order of first occurrence.
func Dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	ret := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		ret = append(ret, s)
	}
	return ret
}
