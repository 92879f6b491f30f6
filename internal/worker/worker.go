package worker

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/vigilo-hq/vigilo/internal/dispatch"
	"github.com/vigilo-hq/vigilo/internal/domain/event"
	"github.com/vigilo-hq/vigilo/internal/pkg/logger"
	"github.com/vigilo-hq/vigilo/internal/queue"
)

// Worker consumes the alert lanes and drives the dispatch pipeline. A
// semaphore bounds in-flight dispatches across all lanes; the cron
// schedule re-runs pattern sweeps independently of inbound traffic.
type Worker struct {
	consumer queue.Consumer
	router   *dispatch.Router
	logger   *logger.Logger
	sem      chan struct{}
	cron     *cron.Cron
	schedule string
}

// New creates a worker with the given dispatch concurrency
func New(consumer queue.Consumer, router *dispatch.Router, log *logger.Logger, concurrency int, sweepSchedule string) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		consumer: consumer,
		router:   router,
		logger:   log,
		sem:      make(chan struct{}, concurrency),
		cron:     cron.New(),
		schedule: sweepSchedule,
	}
}

// Start runs the sweep schedule and blocks consuming events until the
// context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	if w.schedule != "" {
		if _, err := w.cron.AddFunc(w.schedule, func() {
			w.logger.Debug("Running scheduled pattern sweep")
			w.router.Sweep(ctx)
		}); err != nil {
			return err
		}
		w.cron.Start()
	}

	w.logger.Infof("Worker started with %d dispatch slots", cap(w.sem))
	return w.consumer.Run(ctx, w.handle)
}

func (w *Worker) handle(ctx context.Context, ev event.Event) error {
	select {
	case w.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-w.sem }()

	return w.router.Dispatch(ctx, ev)
}

// Stop halts the sweep schedule and closes the consumer
func (w *Worker) Stop() {
	if w.schedule != "" {
		w.cron.Stop()
	}
	if err := w.consumer.Close(); err != nil {
		w.logger.ErrorWithErr(err, "Failed to close consumer")
	}
	w.logger.Info("Worker stopped")
}
