package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/caterlane/caterpay/internal/adapter/processor"
	"github.com/caterlane/caterpay/internal/domain/model"
)

// ReconcilerFacade exposes the subset of application functionality required by the dispatcher.
type ReconcilerFacade interface {
	VerifyNotification(ctx context.Context, payload string) (processor.VerificationResult, error)
	Reconcile(ctx context.Context, n model.Notification, verified bool) error
}

// IPNDispatcher fans processor notifications out to a bounded worker pool.
// The HTTP handler has already acknowledged the processor by the time an
// event lands here, so everything below is invisible to the caller.
type IPNDispatcher struct {
	facade        ReconcilerFacade
	verifyTimeout time.Duration
	workers       int
	logger        *slog.Logger

	jobs   chan model.Notification
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewIPNDispatcher constructs the notification worker pool.
func NewIPNDispatcher(facade ReconcilerFacade, verifyTimeout time.Duration, queueSize, workers int, logger *slog.Logger) *IPNDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &IPNDispatcher{
		facade:        facade,
		verifyTimeout: verifyTimeout,
		workers:       workers,
		logger:        logger,
		jobs:          make(chan model.Notification, queueSize),
	}
}

// Start launches background processing.
func (d *IPNDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}
}

// Stop waits for all workers to finish.
func (d *IPNDispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// Submit enqueues a notification without blocking the request goroutine.
// A full queue drops the event; the processor's redelivery covers it.
func (d *IPNDispatcher) Submit(n model.Notification) bool {
	select {
	case d.jobs <- n:
		return true
	default:
		d.logger.Warn("notification queue full, event dropped", slog.String("transaction", n.TransactionID))
		return false
	}
}

func (d *IPNDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.jobs:
			d.handle(ctx, n)
		}
	}
}

func (d *IPNDispatcher) handle(ctx context.Context, n model.Notification) {
	verifyCtx, cancel := context.WithTimeout(ctx, d.verifyTimeout)
	result, err := d.facade.VerifyNotification(verifyCtx, n.Raw)
	cancel()
	if err != nil {
		// Timeout or transport failure: no state change, no alert. The
		// processor redelivers the event later.
		d.logger.Error("verification handshake failed",
			slog.String("transaction", n.TransactionID),
			slog.String("error", err.Error()),
		)
		return
	}

	verified := result == processor.ResultVerified
	if err := d.facade.Reconcile(ctx, n, verified); err != nil {
		d.logger.Error("reconciliation failed",
			slog.String("transaction", n.TransactionID),
			slog.String("error", err.Error()),
		)
	}
}
