// Package driver runs the background lifecycle of a Chord node: the
// startup join-retry loop and the periodic maintenance loop. Unlike
// the multiple independent stabilizer goroutines a Koorde node runs,
// a Chord node ticks stabilize, check_predecessor, reconcile_successors
// and fix_fingers in that fixed order on a single loop, since later
// steps depend on the routing state the earlier ones just settled.
package driver

import (
	"context"
	"fmt"
	"time"

	"chorddht/internal/chord"
	"chorddht/internal/domain"
	"chorddht/internal/logger"
)

// Driver owns the background goroutine that keeps a node's routing
// state converged once it has joined the ring.
type Driver struct {
	svc    *chord.Service
	logger logger.Logger

	maintenanceInterval time.Duration
	joinRetryInterval   time.Duration
	maxJoinRetries      int
	requestTimeout      time.Duration
}

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithLogger attaches a structured logger to the driver.
func WithLogger(lgr logger.Logger) Option {
	return func(d *Driver) { d.logger = lgr }
}

// New constructs a Driver for svc. maintenanceInterval paces the
// stabilize/check_predecessor/reconcile_successors/fix_fingers tick;
// joinRetryInterval and maxJoinRetries bound the startup join attempt;
// requestTimeout bounds each join attempt and each maintenance step
// as a whole (all RPCs one step makes share that deadline).
func New(svc *chord.Service, maintenanceInterval, joinRetryInterval time.Duration, maxJoinRetries int, requestTimeout time.Duration, opts ...Option) *Driver {
	d := &Driver{
		svc:                 svc,
		logger:              &logger.NopLogger{},
		maintenanceInterval: maintenanceInterval,
		joinRetryInterval:   joinRetryInterval,
		maxJoinRetries:      maxJoinRetries,
		requestTimeout:      requestTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// JoinWithRetry attempts to join the ring through bootstrap, making at
// most maxJoinRetries attempts in total, joinRetryInterval apart. It
// returns nil on the first successful join, ctx's error if ctx is done
// while waiting between attempts, or the last join error once every
// attempt has failed.
func (d *Driver) JoinWithRetry(ctx context.Context, bootstrap domain.Peer) error {
	var lastErr error
	for attempt := 1; attempt <= d.maxJoinRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, d.requestTimeout)
		err := d.svc.Join(callCtx, bootstrap)
		cancel()
		if err == nil {
			d.logger.Info("joined ring", logger.F("attempt", attempt), logger.FPeer("bootstrap", bootstrap))
			return nil
		}
		lastErr = err
		d.logger.Warn("join attempt failed", logger.F("attempt", attempt), logger.F("err", err))

		if attempt == d.maxJoinRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.joinRetryInterval):
		}
	}
	return fmt.Errorf("join failed after %d attempts: %w", d.maxJoinRetries, lastErr)
}

// Run blocks, ticking the maintenance cycle every maintenanceInterval
// until ctx is canceled. Each tick runs stabilize, check_predecessor,
// reconcile_successors and fix_fingers in that order on the calling
// goroutine, so no two maintenance steps for this node ever overlap.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("maintenance loop stopped")
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *Driver) tick(ctx context.Context) {
	callCtx, cancel := context.WithTimeout(ctx, d.requestTimeout)
	d.svc.Stabilize(callCtx)
	cancel()

	callCtx, cancel = context.WithTimeout(ctx, d.requestTimeout)
	d.svc.CheckPredecessor(callCtx)
	cancel()

	callCtx, cancel = context.WithTimeout(ctx, d.requestTimeout)
	d.svc.ReconcileSuccessors(callCtx)
	cancel()

	callCtx, cancel = context.WithTimeout(ctx, d.requestTimeout)
	d.svc.FixFingers(callCtx)
	cancel()

	d.svc.Store().DebugLog()
}
