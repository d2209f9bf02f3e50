// Package kv provides the durable string store the leaderboard persists
// through, with memory, file and Redis backends.
package kv

import "context"

// Store is a minimal durable key-value store. Get reports ok=false for a key
// that has never been set.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
