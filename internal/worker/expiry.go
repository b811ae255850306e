// Package worker runs background maintenance over the loyalty ledger.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultServiceTimeout    = 10 * time.Second
	defaultExpiryInterval    = time.Hour
	defaultBatchLimit    int = 100
)

type LedgerServicer interface {
	ExpireDue(ctx context.Context, limit int) (int, error)
}

// ExpiryProcessor periodically offsets earned ledger entries whose
// expiry timestamp has passed.
type ExpiryProcessor struct {
	svs        LedgerServicer
	l          *logrus.Entry
	interval   time.Duration
	batchLimit int
}

func New(svs LedgerServicer, l *logrus.Logger) *ExpiryProcessor {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "loyalty",
		"module":    "expiry",
	})

	return &ExpiryProcessor{
		svs:        svs,
		l:          loggerEntry,
		interval:   defaultExpiryInterval,
		batchLimit: defaultBatchLimit,
	}
}

// SetInterval sets the pause between expiry sweeps.
func (p *ExpiryProcessor) SetInterval(interval time.Duration) *ExpiryProcessor {
	p.interval = interval
	return p
}

// SetBatchLimit sets the number of ledger entries processed per sweep.
func (p *ExpiryProcessor) SetBatchLimit(limit int) *ExpiryProcessor {
	p.batchLimit = limit
	return p
}

// Run sweeps in an endless loop until the context is cancelled. Each
// sweep drains all due entries in batches so a long backlog does not
// wait for the next tick.
func (p *ExpiryProcessor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"interval":   p.interval.String(),
		"batchLimit": p.batchLimit,
	}).Info("Starting")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.l.Info("Got stop signal, exiting...")
			return
		case <-ticker.C:
			if err := p.sweep(ctx); err != nil {
				p.l.WithError(err).Error("expiry sweep")
			}
		}
	}
}

func (p *ExpiryProcessor) sweep(ctx context.Context) error {
	var total int
	for {
		reqCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
		expired, err := p.svs.ExpireDue(reqCtx, p.batchLimit)
		cancel()
		if err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
		total += expired
		if expired < p.batchLimit {
			break
		}
	}
	if total > 0 {
		p.l.WithField("expired", total).Info("Entries expired")
	}
	return nil
}
