package generic

import "strings"

const eventDelimiter = "\n\n"

// eventFramer splits decoded text into SSE events. Whatever follows the
// last delimiter is kept until more text arrives.
type eventFramer struct {
	buf string
}

func (f *eventFramer) push(text string) []string {
	f.buf += text
	// A "\r" at the end of buf is kept as is, its "\n" may be in the next push
	f.buf = strings.ReplaceAll(f.buf, "\r\n", "\n")
	parts := strings.Split(f.buf, eventDelimiter)
	f.buf = parts[len(parts)-1]
	return parts[:len(parts)-1]
}

// flush returns the incomplete trailing event, if any.
func (f *eventFramer) flush() string {
	rest := strings.TrimSpace(f.buf)
	f.buf = ""
	return rest
}
