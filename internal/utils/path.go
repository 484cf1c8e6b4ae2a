package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetConfigDir returns <UserConfigDir>/.multibot, unless overridden by
// MULTIBOT_CONFIG_HOME.
func GetConfigDir() (string, error) {
	if home := os.Getenv("MULTIBOT_CONFIG_HOME"); home != "" {
		return home, nil
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(cfg, ".multibot"), nil
}
