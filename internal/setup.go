package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/multibot/internal/bot"
	"github.com/baalimago/multibot/internal/chat"
	"github.com/baalimago/multibot/internal/directory"
	"github.com/baalimago/multibot/internal/models"
	"github.com/baalimago/multibot/internal/registry"
	"github.com/baalimago/multibot/internal/store"
	"github.com/baalimago/multibot/internal/summary"
	"github.com/baalimago/multibot/internal/text/generic"
	"github.com/baalimago/multibot/internal/utils"
)

// Config is persisted as config.json in the config directory.
type Config struct {
	StorePath        string `json:"storePath"`
	ConversationsDir string `json:"conversationsDir"`
	RequestTimeout   string `json:"requestTimeout"`
	RawOutput        bool   `json:"rawOutput"`
}

const configFileName = "config.json"

func defaultConfig(configDir string) Config {
	return Config{
		StorePath:        filepath.Join(configDir, "store.json"),
		ConversationsDir: filepath.Join(configDir, "conversations"),
		RequestTimeout:   "5m",
	}
}

type Mode int

const (
	HELP Mode = iota
	VERSION
	MODELS
	SELECT
	CURRENT
	QUERY
	CHAT
	SUMMARIZE
	CONVERSATIONS
)

func getModeFromArgs(cmd string) (Mode, error) {
	switch cmd {
	case "help", "h":
		return HELP, nil
	case "version", "v":
		return VERSION, nil
	case "models", "m":
		return MODELS, nil
	case "select", "s":
		return SELECT, nil
	case "current":
		return CURRENT, nil
	case "query", "q":
		return QUERY, nil
	case "chat", "c":
		return CHAT, nil
	case "summarize", "sum":
		return SUMMARIZE, nil
	case "conversations", "conv":
		return CONVERSATIONS, nil
	default:
		return HELP, fmt.Errorf("unknown command: '%s'", cmd)
	}
}

// services are constructed once per invocation and shared by the commands.
type services struct {
	store     store.Store
	directory *directory.Directory
	registry  *registry.Registry
	fetcher   *summary.Fetcher
	timeout   time.Duration
	raw       bool
	convID    string
}

func loadConfig(flagSet Configurations) (Config, error) {
	configDir := flagSet.ConfigDir
	if configDir == "" {
		var err error
		configDir, err = utils.GetConfigDir()
		if err != nil {
			return Config{}, err
		}
	}
	dflt := defaultConfig(configDir)
	conf, err := utils.LoadConfigFromFile(configDir, configFileName, &dflt)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return conf, nil
}

func newServices(ctx context.Context, conf Config, flagSet Configurations) (*services, error) {
	timeout, err := time.ParseDuration(conf.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid requestTimeout '%v': %w", conf.RequestTimeout, err)
	}
	fileStore, err := store.NewFile(conf.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	dir := directory.New(fileStore)
	deps := bot.Deps{
		Directory: dir,
		Streamer:  generic.New(&http.Client{}),
		Sessions:  chat.NewPool(conf.ConversationsDir),
	}
	reg := registry.New(fileStore, dir, deps)
	if err := reg.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to init registry: %w", err)
	}
	return &services{
		store:     fileStore,
		directory: dir,
		registry:  reg,
		fetcher:   summary.NewFetcher(nil),
		timeout:   timeout,
		raw:       conf.RawOutput || flagSet.PrintRaw,
		convID:    flagSet.ConversationID,
	}, nil
}

// Setup parses args and returns the command they describe.
func Setup(ctx context.Context, usage string, args []string) (models.Querier, error) {
	flagSet, rest, err := parseFlags(defaultFlags, args)
	if err != nil {
		return nil, err
	}
	if len(rest) == 0 {
		rest = []string{"help"}
	}
	mode, err := getModeFromArgs(rest[0])
	if err != nil {
		return nil, err
	}
	switch mode {
	case HELP:
		fmt.Print(usage)
		return nil, utils.ErrUserInitiatedExit
	case VERSION:
		return printVersion()
	}

	conf, err := loadConfig(flagSet)
	if err != nil {
		return nil, err
	}
	if mode == CONVERSATIONS {
		return &conversationsCmd{
			dir:  conf.ConversationsDir,
			raw:  conf.RawOutput || flagSet.PrintRaw,
			args: rest[1:],
		}, nil
	}
	svc, err := newServices(ctx, conf, flagSet)
	if err != nil {
		return nil, err
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("mode: %v, args: %v\n", mode, rest[1:]))
	}

	cmdArgs := rest[1:]
	switch mode {
	case MODELS:
		return &modelsCmd{svc: svc, args: cmdArgs}, nil
	case SELECT:
		if len(cmdArgs) == 0 {
			return nil, fmt.Errorf("select requires at least one bot name")
		}
		return &selectCmd{svc: svc, names: cmdArgs}, nil
	case CURRENT:
		return &currentCmd{svc: svc}, nil
	case QUERY, CHAT:
		prompt := utils.JoinArgs(cmdArgs)
		if prompt == "" {
			return nil, fmt.Errorf("found no prompt, pass it as arguments")
		}
		return &queryCmd{svc: svc, prompt: prompt, chatMode: mode == CHAT}, nil
	case SUMMARIZE:
		if len(cmdArgs) != 1 {
			return nil, fmt.Errorf("summarize requires exactly one url")
		}
		return &summarizeCmd{svc: svc, url: cmdArgs[0]}, nil
	}
	return nil, fmt.Errorf("unhandled mode: %v", mode)
}
