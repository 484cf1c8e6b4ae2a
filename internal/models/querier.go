package models

import "context"

// Querier is a command, ready to run.
type Querier interface {
	Query(ctx context.Context) error
}
