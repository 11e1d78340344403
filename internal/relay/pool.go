package relay

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ChadFarrow/5050-sub001/internal/logger"
	"github.com/ChadFarrow/5050-sub001/internal/protocol"
)

const (
	gatherAttempts = 3
	gatherBackoff  = 500 * time.Millisecond
)

// Gather fetches from every relay and concatenates the batches. A
// relay failing is logged and skipped, never fatal: the ledger dedups
// by id, so overlapping answers are fine and a partial answer is still
// a valid (if smaller) record set.
func Gather(ctx context.Context, urls []string, filters ...Filter) []protocol.Event {
	var merged []protocol.Event
	for _, url := range urls {
		batch, err := fetchWithRetry(ctx, url, filters)
		if err != nil {
			logger.Warn("relay fetch failed... skip", zap.String("relay", url), zap.Error(err))
			continue
		}
		merged = append(merged, batch...)
	}
	return merged
}

func fetchWithRetry(ctx context.Context, url string, filters []Filter) ([]protocol.Event, error) {
	var lastErr error
	for attempt := 0; attempt < gatherAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(gatherBackoff):
			}
		}

		client, err := Dial(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		batch, err := client.Fetch(ctx, filters...)
		client.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return batch, nil
	}
	return nil, lastErr
}

// PublishAll sends an event to every relay and succeeds when at least
// one accepts it.
func PublishAll(ctx context.Context, urls []string, ev *protocol.Event) error {
	var lastErr error
	accepted := 0
	for _, url := range urls {
		client, err := Dial(ctx, url)
		if err != nil {
			lastErr = err
			logger.Warn("relay dial failed... skip", zap.String("relay", url), zap.Error(err))
			continue
		}
		err = client.Publish(ctx, ev)
		client.Close()
		if err != nil {
			lastErr = err
			logger.Warn("relay publish failed... skip", zap.String("relay", url), zap.Error(err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		if lastErr == nil {
			return errors.New("no relays configured")
		}
		return lastErr
	}
	return nil
}
