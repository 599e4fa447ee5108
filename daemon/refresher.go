// Package daemon runs the background market data refresh loop.
package daemon

import (
	"context"
	"time"

	"github.com/papertrade/trading"
)

const refreshTick = 1 * time.Minute

// Refresher periodically synchronizes the markets of all enabled
// exchanges and refreshes their ticker snapshots. Provider outages are
// logged and retried on the next tick; an internal fault stops the
// loop and surfaces on ErrChan.
type Refresher struct {
	logger   trading.Logger
	registry *trading.Registry
	errChan  chan error
}

func RunRefresher(
	ctx context.Context,
	logger trading.Logger,
	registry *trading.Registry,
) *Refresher {
	refresher := &Refresher{
		logger:   logger,
		registry: registry,
		errChan:  make(chan error, 1),
	}

	go refresher.loop(ctx)

	return refresher
}

func (r *Refresher) loop(ctx context.Context) {
	ticker := time.NewTicker(refreshTick)
	defer ticker.Stop()

	r.refreshAll(ctx)

	for {
		select {
		case <-ticker.C:
			if !r.refreshAll(ctx) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (r *Refresher) refreshAll(ctx context.Context) bool {
	exchanges, err := r.registry.EnabledExchanges()
	if err != nil {
		r.errChan <- err
		return false
	}

	for _, exchange := range exchanges {
		exchangeLogger := r.logger.WithField("exchange", exchange.Name)

		if err := r.registry.SyncExchange(ctx, exchange); err != nil {
			if trading.IsUnavailable(err) {
				exchangeLogger.Warningf(
					"exchange sync skipped: [%v]",
					err,
				)
				continue
			}

			r.errChan <- err
			return false
		}

		if err := r.registry.RefreshExchange(ctx, exchange); err != nil {
			if trading.IsUnavailable(err) {
				exchangeLogger.Warningf(
					"exchange refresh skipped: [%v]",
					err,
				)
				continue
			}

			r.errChan <- err
			return false
		}

		exchangeLogger.Debugf("exchange markets refreshed")
	}

	return true
}

func (r *Refresher) ErrChan() <-chan error {
	return r.errChan
}
