package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/api/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Job is a unit of background work.
type Job func(ctx context.Context)

type task struct {
	key string
	run Job
}

// Dispatcher routes background refetches to a fixed set of workers using
// consistent hashing on the cache key, so refetches of one key run in order.
type Dispatcher struct {
	workers []chan task
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan task, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan task, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Schedule hands job to the worker responsible for key. It never blocks:
// when that worker's buffer is full the job is dropped and false returned.
func (d *Dispatcher) Schedule(key string, job func(ctx context.Context)) bool {
	idx := d.shardIndex(key)
	select {
	case d.workers[idx] <- task{key: key, run: job}:
		metrics.RefreshQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		d.log.Warn().Str("key", key).Int("worker_id", idx).Msg("refresh queue full, dropping refetch")
		return false
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan task) {
	depth := metrics.RefreshQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.run(ctx, id, t)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, t task) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("key", t.key).Int("worker_id", id).Msg("refetch panicked")
		}
	}()
	t.run(ctx)
}
