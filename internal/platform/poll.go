package platform

import (
	"context"
	"iter"
	"time"
)

const seenWindowSize = 1024

// NewQuestions polls the new-questions feed every PollInterval. Each yielded
// batch holds only ids not yielded before. Fetch errors are yielded and
// polling continues; the sequence ends when ctx is done or the consumer
// stops.
func (c *HTTPClient) NewQuestions(ctx context.Context) iter.Seq2[[]int64, error] {
	return poll(ctx, c.cfg.PollInterval, c.fetchNewIDs)
}

func poll(ctx context.Context, interval time.Duration, fetch func(context.Context) ([]int64, error)) iter.Seq2[[]int64, error] {
	return func(yield func([]int64, error) bool) {
		seen := newSeenWindow(seenWindowSize)
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			ids, err := fetch(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				if !yield(nil, err) {
					return
				}
			} else if fresh := seen.filter(ids); len(fresh) > 0 {
				if !yield(fresh, nil) {
					return
				}
			}
			timer.Reset(interval)
		}
	}
}
