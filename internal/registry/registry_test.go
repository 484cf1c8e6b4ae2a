package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/multibot/internal/bot"
	"github.com/baalimago/multibot/internal/chat"
	"github.com/baalimago/multibot/internal/directory"
	"github.com/baalimago/multibot/internal/models"
	"github.com/baalimago/multibot/internal/store"
)

func cfg(name string) models.ModelConfig {
	return models.ModelConfig{
		Name:          name,
		APIKey:        "k",
		Model:         "m",
		ContextWindow: 8000,
		Temperature:   0.7,
	}
}

type fixture struct {
	store *store.Memory
	dir   *directory.Directory
	reg   *Registry
}

func newFixture(t *testing.T, customNames ...string) fixture {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()
	d := directory.New(s)
	for _, n := range customNames {
		if _, err := d.Add(ctx, cfg(n)); err != nil {
			t.Fatalf("failed to add '%v': %v", n, err)
		}
	}
	r := New(s, d, bot.Deps{Sessions: chat.NewPool("")})
	return fixture{store: s, dir: d, reg: r}
}

func (f fixture) persisted(t *testing.T) []string {
	t.Helper()
	var got []string
	if _, err := f.store.Get(context.Background(), store.KeyCurrentModels, &got); err != nil {
		t.Fatalf("failed to read current models: %v", err)
	}
	return got
}

func (f fixture) defaultID(t *testing.T) (string, bool) {
	t.Helper()
	var got string
	found, err := f.store.Get(context.Background(), store.KeyDefaultModel, &got)
	if err != nil {
		t.Fatalf("failed to read default model: %v", err)
	}
	return got, found
}

func assertNames(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected: %v, got: %v", want, got)
	}
	for i := range want {
		testboil.FailTestIfDiff(t, got[i], want[i])
	}
}

func TestLoad_DefaultSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("it should select the persisted default", func(t *testing.T) {
		f := newFixture(t, "A", "B")
		cfgs, _ := f.dir.List(ctx)
		if err := f.store.Set(ctx, store.KeyDefaultModel, cfgs[1].ID); err != nil {
			t.Fatal(err)
		}
		if err := f.reg.Load(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertNames(t, names(f.reg.Current()), []string{"B"})
		assertNames(t, f.persisted(t), []string{"B"})
	})

	t.Run("it should select and persist the first custom model", func(t *testing.T) {
		f := newFixture(t, "A", "B")
		if err := f.reg.Load(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertNames(t, names(f.reg.Current()), []string{"A"})
		assertNames(t, f.persisted(t), []string{"A"})
		cfgs, _ := f.dir.List(ctx)
		id, found := f.defaultID(t)
		testboil.FailTestIfDiff(t, found, true)
		testboil.FailTestIfDiff(t, id, cfgs[0].ID)
	})

	t.Run("it should fall back to built-ins", func(t *testing.T) {
		f := newFixture(t)
		if err := f.reg.Load(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertNames(t, names(f.reg.Current()), bot.FallbackSelection)
		_, found := f.defaultID(t)
		testboil.FailTestIfDiff(t, found, false)
	})

	t.Run("it should remove a dangling default", func(t *testing.T) {
		f := newFixture(t, "A")
		if err := f.store.Set(ctx, store.KeyDefaultModel, "gone"); err != nil {
			t.Fatal(err)
		}
		if err := f.reg.Load(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertNames(t, names(f.reg.Current()), []string{"A"})
		cfgs, _ := f.dir.List(ctx)
		id, _ := f.defaultID(t)
		testboil.FailTestIfDiff(t, id, cfgs[0].ID)
	})
}

func TestLoad_ListsAndCategories(t *testing.T) {
	f := newFixture(t, "A", "B")
	if err := f.reg.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := f.reg.All()
	testboil.FailTestIfDiff(t, len(all), 2+len(bot.Builtins()))
	testboil.FailTestIfDiff(t, all[0].BotName, "A")
	testboil.FailTestIfDiff(t, all[1].BotName, "B")
	testboil.FailTestIfDiff(t, all[2].BotName, bot.Builtins()[0].BotName)

	var got []string
	for _, c := range f.reg.Categories() {
		got = append(got, c.Name)
	}
	assertNames(t, got, []string{
		bot.CategoryOpenAI,
		bot.CategoryMicrosoft,
		bot.CategoryMoonshot,
		bot.CategoryPerplexity,
		bot.CategoryCustom,
	})
	custom := f.reg.Categories()[4]
	assertNames(t, names(custom.Bots), []string{"A", "B"})
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("it should dedupe and re-persist", func(t *testing.T) {
		f := newFixture(t)
		if err := f.store.Set(ctx, store.KeyCurrentModels, []string{"Kimi", "Copilot", "Kimi"}); err != nil {
			t.Fatal(err)
		}
		if err := f.reg.Restore(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertNames(t, names(f.reg.Current()), []string{"Kimi", "Copilot"})
		assertNames(t, f.persisted(t), []string{"Kimi", "Copilot"})
	})

	t.Run("it should skip unknown names and keep state valid", func(t *testing.T) {
		f := newFixture(t)
		if err := f.store.Set(ctx, store.KeyCurrentModels, []string{"nope", "Kimi"}); err != nil {
			t.Fatal(err)
		}
		if err := f.reg.Restore(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertNames(t, names(f.reg.Current()), []string{"Kimi"})
		assertNames(t, f.persisted(t), []string{"Kimi"})
	})

	t.Run("it should fall back when nothing resolves", func(t *testing.T) {
		f := newFixture(t, "A")
		if err := f.store.Set(ctx, store.KeyCurrentModels, []string{"nope"}); err != nil {
			t.Fatal(err)
		}
		if err := f.reg.Restore(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertNames(t, names(f.reg.Current()), []string{"A"})
		assertNames(t, f.persisted(t), []string{"A"})
	})

	t.Run("it should not write when already clean", func(t *testing.T) {
		f := newFixture(t)
		if err := f.store.Set(ctx, store.KeyCurrentModels, []string{"Kimi"}); err != nil {
			t.Fatal(err)
		}
		if err := f.reg.Restore(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, f.store.SetCount(store.KeyCurrentModels), 1)
	})
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("it should keep a persisted selection", func(t *testing.T) {
		f := newFixture(t, "A")
		if err := f.store.Set(ctx, store.KeyCurrentModels, []string{"Copilot", "A"}); err != nil {
			t.Fatal(err)
		}
		if err := f.reg.Init(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertNames(t, names(f.reg.Current()), []string{"Copilot", "A"})
	})

	t.Run("it should apply the default selection when nothing is persisted", func(t *testing.T) {
		f := newFixture(t, "A")
		if err := f.reg.Init(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertNames(t, names(f.reg.Current()), []string{"A"})
	})
}

func TestSaveSelection_ReducesDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if err := f.reg.Load(ctx); err != nil {
		t.Fatal(err)
	}
	kimi, _ := f.reg.Find("Kimi")
	copilot, _ := f.reg.Find("Copilot")
	other := kimi.WithConversation("other")
	f.reg.current = []*bot.Handle{kimi, copilot, other}

	if err := f.reg.SaveSelection(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cur := f.reg.Current()
	testboil.FailTestIfDiff(t, len(cur), 2)
	testboil.FailTestIfDiff(t, cur[0], kimi)
	assertNames(t, f.persisted(t), []string{"Kimi", "Copilot"})
}

func TestSetSelection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "A")
	if err := f.reg.Load(ctx); err != nil {
		t.Fatal(err)
	}

	if err := f.reg.SetSelection(ctx, "A", "Kimi", "A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertNames(t, names(f.reg.Current()), []string{"A", "Kimi"})
	assertNames(t, f.persisted(t), []string{"A", "Kimi"})

	err := f.reg.SetSelection(ctx, "Kimi", "missing")
	if !errors.Is(err, ErrUnknownBot) {
		t.Fatalf("expected ErrUnknownBot, got: %v", err)
	}
	testboil.AssertStringContains(t, err.Error(), "missing")
	assertNames(t, names(f.reg.Current()), []string{"A", "Kimi"})
}

func TestSetDefault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "A")
	if err := f.reg.Load(ctx); err != nil {
		t.Fatal(err)
	}
	cfgs, _ := f.dir.List(ctx)

	if err := f.reg.SetDefault(ctx, "nope"); !errors.Is(err, ErrUnknownBot) {
		t.Fatalf("expected ErrUnknownBot, got: %v", err)
	}
	if err := f.reg.SetDefault(ctx, cfgs[0].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id, _ := f.defaultID(t)
	testboil.FailTestIfDiff(t, id, cfgs[0].ID)

	if err := f.reg.SetDefault(ctx, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, found := f.defaultID(t)
	testboil.FailTestIfDiff(t, found, false)
}

func TestFind_CustomShadowsBuiltin(t *testing.T) {
	f := newFixture(t, "Kimi")
	if err := f.reg.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	h, ok := f.reg.Find("Kimi")
	testboil.FailTestIfDiff(t, ok, true)
	testboil.FailTestIfDiff(t, h.IsCustom, true)
	_, ok = f.reg.Find("does-not-exist")
	testboil.FailTestIfDiff(t, ok, false)
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if err := f.reg.Load(ctx); err != nil {
		t.Fatal(err)
	}
	done := make(chan error)
	for i := 0; i < 10; i++ {
		i := i
		go func() {
			sel := []string{"Kimi", "Copilot"}
			if i%2 == 0 {
				sel = []string{"Copilot", "Copilot", "Kimi"}
			}
			done <- f.reg.SetSelection(ctx, sel...)
		}()
	}
	for j := 0; j < 10; j++ {
		if err := <-done; err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	got := f.persisted(t)
	testboil.FailTestIfDiff(t, len(got), 2)
	testboil.FailTestIfDiff(t, fmt.Sprint(Dedup(got)), fmt.Sprint(got))
}
