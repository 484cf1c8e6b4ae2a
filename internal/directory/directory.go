// Package directory is the persisted catalog of user configured models.
package directory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/multibot/internal/models"
	"github.com/baalimago/multibot/internal/store"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("model not found")

// Directory is CRUD over the 'customModels' key. The store is always the
// source of truth, nothing is cached between calls.
type Directory struct {
	store store.Store
	mu    sync.Mutex
	newID func() string
	debug bool
}

func New(s store.Store) *Directory {
	return &Directory{
		store: s,
		newID: uuid.NewString,
		debug: misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_DIRECTORY")),
	}
}

func (d *Directory) list(ctx context.Context) ([]models.ModelConfig, error) {
	var configs []models.ModelConfig
	if _, err := d.store.Get(ctx, store.KeyCustomModels, &configs); err != nil {
		return nil, fmt.Errorf("failed to load custom models: %w", err)
	}
	for i := range configs {
		configs[i] = configs[i].WithDefaults()
	}
	return configs, nil
}

// List all configs in insertion order.
func (d *Directory) List(ctx context.Context) ([]models.ModelConfig, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	configs, err := d.list(ctx)
	if err != nil {
		return nil, err
	}
	if d.debug {
		ancli.PrintOK(fmt.Sprintf("custom models loaded: %v\n", len(configs)))
	}
	return configs, nil
}

// Get returns the config with id, or an error wrapping ErrNotFound.
func (d *Directory) Get(ctx context.Context, id string) (models.ModelConfig, error) {
	configs, err := d.List(ctx)
	if err != nil {
		return models.ModelConfig{}, err
	}
	for _, c := range configs {
		if c.ID == id {
			return c, nil
		}
	}
	return models.ModelConfig{}, fmt.Errorf("%w: '%v'", ErrNotFound, id)
}

// Add validates cfg, assigns it a fresh id and appends it. The stored
// config is returned.
func (d *Directory) Add(ctx context.Context, cfg models.ModelConfig) (models.ModelConfig, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return models.ModelConfig{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	configs, err := d.list(ctx)
	if err != nil {
		return models.ModelConfig{}, err
	}
	cfg.ID = d.newID()
	for slices.ContainsFunc(configs, func(c models.ModelConfig) bool { return c.ID == cfg.ID }) {
		cfg.ID = d.newID()
	}
	configs = append(configs, cfg)
	if err := d.store.Set(ctx, store.KeyCustomModels, configs); err != nil {
		return models.ModelConfig{}, fmt.Errorf("failed to save custom models: %w", err)
	}
	return cfg, nil
}

// Update replaces the config with the same id.
func (d *Directory) Update(ctx context.Context, cfg models.ModelConfig) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	configs, err := d.list(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(configs, func(c models.ModelConfig) bool { return c.ID == cfg.ID })
	if i == -1 {
		return fmt.Errorf("%w: '%v'", ErrNotFound, cfg.ID)
	}
	configs[i] = cfg
	if err := d.store.Set(ctx, store.KeyCustomModels, configs); err != nil {
		return fmt.Errorf("failed to save custom models: %w", err)
	}
	return nil
}

// Remove deletes the config with id. If it was the default model, the
// default is cleared as well.
func (d *Directory) Remove(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	configs, err := d.list(ctx)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(configs, func(c models.ModelConfig) bool { return c.ID == id })
	if i == -1 {
		return fmt.Errorf("%w: '%v'", ErrNotFound, id)
	}
	configs = slices.Delete(configs, i, i+1)
	if err := d.store.Set(ctx, store.KeyCustomModels, configs); err != nil {
		return fmt.Errorf("failed to save custom models: %w", err)
	}
	var defaultID string
	if _, err := d.store.Get(ctx, store.KeyDefaultModel, &defaultID); err != nil {
		return fmt.Errorf("failed to load default model: %w", err)
	}
	if defaultID == id {
		if err := d.store.Remove(ctx, store.KeyDefaultModel); err != nil {
			return fmt.Errorf("failed to clear default model: %w", err)
		}
	}
	return nil
}
