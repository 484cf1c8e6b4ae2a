package internal

import (
	"fmt"
	"unicode/utf8"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

// streamPrinter prints the growth of a cumulative text.
type streamPrinter struct {
	printed string
}

func (p *streamPrinter) update(text string) {
	common := commonPrefix(p.printed, text)
	if common < len(p.printed) {
		// the text was rewritten, so continue on a new line
		fmt.Print("\n")
	}
	fmt.Print(text[common:])
	p.printed = text
}

func (p *streamPrinter) finish() {
	if p.printed != "" {
		fmt.Print("\n")
	}
}

// commonPrefix is the byte length of the shared prefix of a and b, cut
// back to a rune boundary of b.
func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	for i > 0 && i < len(b) && !utf8.RuneStart(b[i]) {
		i--
	}
	return i
}

func printHeader(name string, raw bool) {
	if raw {
		fmt.Printf("%v:\n", name)
		return
	}
	fmt.Printf("%v:\n", ancli.ColoredMessage(ancli.CYAN, name))
}
