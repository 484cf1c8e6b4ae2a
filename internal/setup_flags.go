package internal

import (
	"flag"
	"fmt"
	"io"

	"github.com/baalimago/multibot/internal/utils"
)

type Configurations struct {
	ConversationID string
	PrintRaw       bool
	ConfigDir      string
}

var defaultFlags = Configurations{}

// parseFlags parses CLI flags into Configurations, returning the remaining
// args.
func parseFlags(defaults Configurations, args []string) (Configurations, []string, error) {
	fs := flag.NewFlagSet("multibot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cShort := fs.String("c", defaults.ConversationID, "Set the conversation to continue. Mutually exclusive with conversation flag.")
	cLong := fs.String("conversation", defaults.ConversationID, "Set the conversation to continue. Mutually exclusive with c flag.")

	printRawShort := fs.Bool("r", defaults.PrintRaw, "Set to true to print raw output, without bot headers or colors.")
	printRawLong := fs.Bool("raw", defaults.PrintRaw, "Set to true to print raw output, without bot headers or colors.")

	configDir := fs.String("config", defaults.ConfigDir, "Set the config directory. Default is <UserConfigDir>/.multibot")

	if err := fs.Parse(args); err != nil {
		return Configurations{}, nil, fmt.Errorf("failed to parse args: %w", err)
	}

	conversationID, err := utils.ReturnNonDefault(*cShort, *cLong, defaults.ConversationID)
	if err != nil {
		return Configurations{}, nil, flagError(err, "c", "conversation")
	}

	return Configurations{
		ConversationID: conversationID,
		PrintRaw:       *printRawShort || *printRawLong,
		ConfigDir:      *configDir,
	}, fs.Args(), nil
}

func flagError(err error, shortFlag, longFlag string) error {
	return fmt.Errorf("flags '%v' and '%v': %w", shortFlag, longFlag, err)
}
