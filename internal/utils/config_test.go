package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

func TestReturnNonDefault(t *testing.T) {
	tests := []struct {
		name       string
		a          string
		b          string
		defaultVal string
		want       string
		wantErr    bool
	}{
		{name: "Both defaults", a: "d", b: "d", defaultVal: "d", want: "d"},
		{name: "A non-default", a: "x", b: "d", defaultVal: "d", want: "x"},
		{name: "B non-default", a: "d", b: "x", defaultVal: "d", want: "x"},
		{name: "Both non-default", a: "x", b: "y", defaultVal: "d", want: "d", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReturnNonDefault(tt.a, tt.b, tt.defaultVal)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReturnNonDefault() error = %v, wantErr %v", err, tt.wantErr)
			}
			testboil.FailTestIfDiff(t, got, tt.want)
		})
	}
}

func TestCreateConfigDir(t *testing.T) {
	configDirPath := filepath.Join(t.TempDir(), ".multibot")
	if err := CreateConfigDir(configDirPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(configDirPath, "conversations")); err != nil {
		t.Fatalf("expected conversations directory: %v", err)
	}
	if err := CreateConfigDir(configDirPath); err != nil {
		t.Fatalf("unexpected error on existing dir: %v", err)
	}
}

type testConfig struct {
	Name    string `json:"name"`
	Timeout string `json:"timeout"`
	Raw     bool   `json:"raw"`
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Run("it should create the default file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "conf")
		dflt := testConfig{Name: "bot", Timeout: "5m"}
		got, err := LoadConfigFromFile(dir, "config.json", &dflt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, got, dflt)
		if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
			t.Fatalf("expected config file: %v", err)
		}
	})

	t.Run("it should keep set fields and append new ones", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"name":"mine"}`), 0o644); err != nil {
			t.Fatal(err)
		}
		dflt := testConfig{Name: "bot", Timeout: "5m"}
		got, err := LoadConfigFromFile(dir, "config.json", &dflt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, got, testConfig{Name: "mine", Timeout: "5m"})

		var onDisk testConfig
		if err := ReadAndUnmarshal(filepath.Join(dir, "config.json"), &onDisk); err != nil {
			t.Fatal(err)
		}
		testboil.FailTestIfDiff(t, onDisk.Timeout, "5m")
	})

	t.Run("it should fail on broken json", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{`), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadConfigFromFile(dir, "config.json", &testConfig{})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestCreateFile_Exclusive(t *testing.T) {
	p := filepath.Join(t.TempDir(), "f.json")
	v := testConfig{Name: "a"}
	if err := CreateFile(p, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CreateFile(p, &v); err == nil {
		t.Fatal("expected error on existing file")
	}
}

func TestGetConfigDir_Override(t *testing.T) {
	t.Setenv("MULTIBOT_CONFIG_HOME", "/tmp/somewhere")
	got, err := GetConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	testboil.FailTestIfDiff(t, got, "/tmp/somewhere")
}

func TestJoinArgs(t *testing.T) {
	testboil.FailTestIfDiff(t, JoinArgs([]string{"a", "", "b"}), "a b")
	testboil.FailTestIfDiff(t, len(GetFirstTokens([]string{"a", "b", "c"}, 2)), 2)
}
