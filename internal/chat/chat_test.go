package chat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/multibot/internal/models"
)

func TestSaveAndFromPath(t *testing.T) {
	tmp := t.TempDir()
	s := NewSession("my_chat", "m/1")
	s.Exchange("hello", "hi there")
	if err := Save(tmp, s); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	file := filepath.Join(tmp, "my_chat_m.1.json")
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("expected file %v to exist: %v", file, err)
	}
	loaded, err := FromPath(file)
	if err != nil {
		t.Fatalf("frompath failed: %v", err)
	}
	testboil.FailTestIfDiff(t, loaded.ConversationID, "my_chat")
	testboil.FailTestIfDiff(t, loaded.ModelID, "m/1")
	testboil.FailTestIfDiff(t, loaded.Len(), 2)
	testboil.FailTestIfDiff(t, loaded.Messages()[1].Text, "hi there")
	testboil.FailTestIfDiff(t, loaded.Messages()[1].Role, models.RoleAssistant)

	// Appending continues after the loaded messages
	m := loaded.Append(models.RoleUser, "again")
	testboil.FailTestIfDiff(t, loaded.Len(), 3)
	testboil.AssertStringContains(t, m.ID, "-2")
}

func TestFromPathError(t *testing.T) {
	if _, err := FromPath("nonexistent.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIDFromPrompt(t *testing.T) {
	prompt := "hello world some/test path\\dir other extra"
	got := IDFromPrompt(prompt)
	want := "hello_world_some.test_path.dir_other"
	if got != want {
		t.Errorf("IDFromPrompt() = %q, want %q", got, want)
	}
}
