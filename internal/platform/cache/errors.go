package cache

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrCacheMiss is returned when a key is not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnboundedPattern rejects scan patterns that would match every key on a
	// shared Redis instance.
	ErrUnboundedPattern = errors.New("pattern must include a key prefix")
)

func checkPattern(pattern string) error {
	if strings.Trim(pattern, "*") == "" {
		return ErrUnboundedPattern
	}
	return nil
}

// Cancelled requests are expected and logged below error level.
func isContextDoneError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
