package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// CreateConfigDir along with the conversations directory, if missing.
func CreateConfigDir(configDirPath string) error {
	if _, err := os.Stat(configDirPath); err == nil {
		return nil
	}
	conversationsDir := filepath.Join(configDirPath, "conversations")
	if err := os.MkdirAll(conversationsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config + conversations directory: %w", err)
	}
	ancli.PrintOK(fmt.Sprintf("created config directory at: '%v'\n", configDirPath))
	return nil
}

func createDefaultConfigFile[T any](configDirPath, configFileName string, dflt *T) error {
	configFilePath := filepath.Join(configDirPath, configFileName)
	if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
		if misc.Truthy(os.Getenv("DEBUG")) {
			ancli.PrintOK(fmt.Sprintf("attempting to create file: '%v'\n", configFilePath))
		}
		if err := CreateFile(configFilePath, dflt); err != nil {
			return fmt.Errorf("failed to write config: '%v', error: %w", configFileName, err)
		}
	}
	return nil
}

// LoadConfigFromFile at configDirPath/configFileName. The file is created
// from dflt if missing, and fields added to dflt since the file was
// written are appended to it.
func LoadConfigFromFile[T any](configDirPath, configFileName string, dflt *T) (T, error) {
	var conf T
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("attempting to load file: %v\n", filepath.Join(configDirPath, configFileName)))
	}
	if err := CreateConfigDir(configDirPath); err != nil {
		return conf, err
	}
	if err := createDefaultConfigFile(configDirPath, configFileName, dflt); err != nil {
		return conf, err
	}

	configPath := filepath.Join(configDirPath, configFileName)
	if err := ReadAndUnmarshal(configPath, &conf); err != nil {
		return conf, fmt.Errorf("failed to unmarshal config '%v', error: %w", configFileName, err)
	}

	if setNonZeroValueFields(&conf, dflt) {
		if err := WriteFile(configPath, &conf); err != nil {
			return conf, fmt.Errorf("failed to write config '%v' post zero-field appendage, error: %w", configFileName, err)
		}
		ancli.PrintOK(fmt.Sprintf("appended new fields to config and updated config file: %v\n", configPath))
	}

	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("found config: %+v\n", conf))
	}
	return conf, nil
}

// setNonZeroValueFields on a using b as template
func setNonZeroValueFields[T any](a, b *T) bool {
	hasChanged := false
	t := reflect.TypeOf(*a)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		aVal := reflect.ValueOf(a).Elem().Field(i)
		bVal := reflect.ValueOf(b).Elem().Field(i)
		if aVal.IsZero() && !bVal.IsZero() {
			hasChanged = true
			aVal.Set(bVal)
		}
	}
	return hasChanged
}

// ReturnNonDefault of a short and a long flag. Both being set is an error.
func ReturnNonDefault[T comparable](a, b, defaultVal T) (T, error) {
	if a != defaultVal && b != defaultVal {
		return defaultVal, fmt.Errorf("values are mutually exclusive")
	}
	if a != defaultVal {
		return a, nil
	}
	return b, nil
}
