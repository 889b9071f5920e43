// Package processing fans inbound messages out to a bounded worker pool.
package processing

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"salvo-backend/internal/model"
)

const maxWorkers = 16

// Handler handles one message.
type Handler interface {
	Handle(ctx context.Context, msg model.InboundMessage) error
}

// Stats summarises one ProcessMessages call.
type Stats struct {
	Messages       int64 `json:"messages"`
	Failed         int64 `json:"failed"`
	DurationMillis int64 `json:"duration_ms"`
}

// ProcessMessages handles msgs with up to workers goroutines. Messages from
// the same sender go to the same job and keep their order, so a text
// followed by a location is seen in that order. Handler errors are logged
// and counted; cancellation stops dispatch and returns ctx.Err().
func ProcessMessages(ctx context.Context, h Handler, msgs []model.InboundMessage, workers int, log zerolog.Logger) (*Stats, error) {
	start := time.Now()
	if len(msgs) == 0 {
		return &Stats{}, nil
	}

	groups := bySender(msgs)
	workerCount := calcWorkerCount(len(groups), workers)
	jobs := make(chan []model.InboundMessage)
	var wg sync.WaitGroup
	var done, failed atomic.Int64

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range jobs {
				for _, m := range group {
					if ctx.Err() != nil {
						return
					}
					done.Add(1)
					if err := h.Handle(ctx, m); err != nil {
						failed.Add(1)
						log.Error().Err(err).Str("message_id", m.ID).Msg("message handling failed")
					}
				}
			}
		}()
	}

	for _, g := range groups {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- g:
		}
	}

	close(jobs)
	wg.Wait()

	return &Stats{
		Messages:       done.Load(),
		Failed:         failed.Load(),
		DurationMillis: time.Since(start).Milliseconds(),
	}, nil
}

// bySender groups msgs per sender, keeping first-seen sender order and
// message order within a sender.
func bySender(msgs []model.InboundMessage) [][]model.InboundMessage {
	index := map[string]int{}
	var groups [][]model.InboundMessage
	for _, m := range msgs {
		i, ok := index[m.From]
		if !ok {
			i = len(groups)
			index[m.From] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], m)
	}
	return groups
}

func calcWorkerCount(jobs, limit int) int {
	if limit <= 0 || limit > maxWorkers {
		limit = maxWorkers
	}
	if jobs < limit {
		return max(jobs, 1)
	}
	return limit
}
