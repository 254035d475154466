package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/oksasatya/go-user-registry/internal/domain/entity"
)

type outcome int

const (
	outcomeIndexed  outcome = iota
	outcomeSkipped          // not an event this worker handles
	outcomeRejected         // malformed, drop
	outcomeRetry            // index failed, requeue
)

type indexer interface {
	Index(ctx context.Context, u entity.PublicUser) error
}

// handleEvent decodes a registration event and adds the user to the directory.
func handleEvent(ctx context.Context, dir indexer, body []byte) (outcome, error) {
	var ev entity.UserRegistered
	if err := json.Unmarshal(body, &ev); err != nil {
		return outcomeRejected, errors.Wrap(err, "decode event")
	}
	if ev.Type != entity.EventUserRegistered {
		return outcomeSkipped, nil
	}
	if ev.Username == "" {
		return outcomeRejected, errors.New("event without username")
	}
	if err := dir.Index(ctx, entity.PublicUser{Username: ev.Username}); err != nil {
		return outcomeRetry, err
	}
	return outcomeIndexed, nil
}

const (
	retryBase = 500 * time.Millisecond
	retryMax  = 30 * time.Second
)

// retryDelay is the pause before requeueing after the given number of
// consecutive index failures: 500ms doubling up to 30s.
func retryDelay(failures int) time.Duration {
	if failures < 1 {
		return 0
	}
	d := retryBase
	for i := 1; i < failures && d < retryMax; i++ {
		d *= 2
	}
	if d > retryMax {
		d = retryMax
	}
	return d
}
