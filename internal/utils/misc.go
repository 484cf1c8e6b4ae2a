package utils

import (
	"errors"
	"strings"
)

var ErrUserInitiatedExit = errors.New("user exit")

// GetFirstTokens returns the first n non-empty tokens of the prompt
func GetFirstTokens(prompt []string, n int) []string {
	ret := make([]string, 0, n)
	for _, token := range prompt {
		if token == "" {
			continue
		}
		if len(ret) == n {
			break
		}
		ret = append(ret, token)
	}
	return ret
}

// JoinArgs into a prompt, dropping empty args.
func JoinArgs(args []string) string {
	return strings.Join(GetFirstTokens(args, len(args)), " ")
}
