// Package store is the opaque key-value persistence used for model
// configurations and the registry selection.
package store

import (
	"context"
	"strings"
)

// Keys persisted by the registry and the model directory.
const (
	KeyCustomModels  = "customModels"
	KeyDefaultModel  = "defaultModel"
	KeyCurrentModels = "currentModelsKey"
)

// Store is a json backed key-value store. Get decodes the value at key into
// dst and reports whether the key existed.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Remove(ctx context.Context, key string) error
}

// escapeKey so that a key is never interpreted as a gjson/sjson path.
func escapeKey(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%', ':':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
