package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"
	"github.com/baalimago/multibot/internal"
	"github.com/baalimago/multibot/internal/utils"
)

const usage = `multibot - ask several chat bots at once

Prerequisites:
  - Add a custom model with 'multibot models add', pointing at any OpenAI compatible api
  - (Optional) Set OPENAI_API_KEY, MOONSHOT_API_KEY or PERPLEXITY_API_KEY to use the built-in bots
  - (Optional) Set the NO_COLOR environment variable to disable ansi color output

Usage: multibot [flags] <command>

Flags:
  -c, -conversation string     Continue the conversation with the given id.
  -r, -raw bool                Print raw output, without bot headers or colors.
  -config string               Use this config directory instead of <UserConfigDir>/.multibot

Commands:
  h|help                        Display this help message
  v|version                     Print the version
  m|models                      Manage custom models, see 'multibot models help'
  s|select <botName>...         Select the bots to ask
  current                       Print the selected bots
  q|query <prompt>              Ask every selected bot
  c|chat <prompt>               Chat with the first selected bot
  sum|summarize <url>           Ask the selected bots to summarize a web page
  conv|conversations [list]     List stored conversations
  conv|conversations show <id>  Print a stored conversation
  conv|conversations rm <id>    Delete a stored conversation

Examples:
  - multibot models add '{"name":"local","apiKey":"ollama","model":"llama3","apiBaseUrl":"http://localhost:11434/v1"}'
  - multibot select local Kimi
  - multibot q "What's the difference between a mutex and a semaphore?"
  - multibot -c whats_the_difference_between_a chat "And a channel?"
  - multibot summarize https://go.dev/blog/go1.24
`

func main() {
	ancli.SetupSlog()
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	querier, err := internal.Setup(ctx, usage, args)
	if err != nil {
		if errors.Is(err, utils.ErrUserInitiatedExit) {
			return 0
		}
		ancli.PrintErr(fmt.Sprintf("failed to setup: %v\n", err))
		return 1
	}
	go func() { shutdown.Monitor(cancel) }()
	err = querier.Query(ctx)
	if err != nil {
		if errors.Is(err, utils.ErrUserInitiatedExit) {
			ancli.Okf("Seems like you wanted out. Byebye!\n")
			return 0
		}
		ancli.PrintErr(fmt.Sprintf("failed to run: %v\n", err))
		return 1
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK("things seems to have worked out. Bye bye!\n")
	}
	return 0
}
