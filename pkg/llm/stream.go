package llm

import (
	"context"
	"time"
)

// StreamRunes emits text one character at a time, waiting delay between characters.
// It stops early when ctx is done or emit fails.
func StreamRunes(ctx context.Context, text string, delay time.Duration, emit func(chunk string) error) error {
	var ticker *time.Ticker
	if delay > 0 {
		ticker = time.NewTicker(delay)
		defer ticker.Stop()
	}

	for _, r := range text {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(string(r)); err != nil {
			return err
		}
		if ticker == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
