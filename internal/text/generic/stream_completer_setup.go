package generic

import (
	"net/http"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

const defaultReadSize = 4096

// New returns a StreamCompleter using client. A nil client means
// http.DefaultClient.
func New(client *http.Client) *StreamCompleter {
	if client == nil {
		client = http.DefaultClient
	}
	return &StreamCompleter{
		client:   client,
		readSize: defaultReadSize,
		debug:    misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_STREAM")),
	}
}
