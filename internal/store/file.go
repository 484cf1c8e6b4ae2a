package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// File keeps every key in one json document. Writes patch the document in
// place, so keys written by others survive.
type File struct {
	path  string
	mu    sync.Mutex
	debug bool
}

func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}
	return &File{
		path:  path,
		debug: misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_STORE")),
	}, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) read() ([]byte, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []byte("{}"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	if len(b) == 0 {
		return []byte("{}"), nil
	}
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("store at '%v' is not valid json", f.path)
	}
	return b, nil
}

func (f *File) write(b []byte) error {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}

func (f *File) Get(ctx context.Context, key string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return false, err
	}
	res := gjson.GetBytes(doc, escapeKey(key))
	if !res.Exists() || res.Type == gjson.Null {
		return false, nil
	}
	if err := json.Unmarshal([]byte(res.Raw), dst); err != nil {
		return true, fmt.Errorf("failed to decode key '%v': %w", key, err)
	}
	if f.debug {
		ancli.PrintOK(fmt.Sprintf("store get '%v': %v\n", key, res.Raw))
	}
	return true, nil
}

func (f *File) Set(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode key '%v': %w", key, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return err
	}
	doc, err = sjson.SetRawBytes(doc, escapeKey(key), raw)
	if err != nil {
		return fmt.Errorf("failed to set key '%v': %w", key, err)
	}
	if f.debug {
		ancli.PrintOK(fmt.Sprintf("store set '%v': %s\n", key, raw))
	}
	return f.write(doc)
}

func (f *File) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return err
	}
	if !gjson.GetBytes(doc, escapeKey(key)).Exists() {
		return nil
	}
	doc, err = sjson.DeleteBytes(doc, escapeKey(key))
	if err != nil {
		return fmt.Errorf("failed to remove key '%v': %w", key, err)
	}
	return f.write(doc)
}
