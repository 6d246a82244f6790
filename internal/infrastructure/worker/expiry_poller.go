package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/approval"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
)

// ExpiryCandidate is a released batch with its synthesis start time.
type ExpiryCandidate struct {
	BatchID        int64
	SynthesisStart time.Time
}

// BatchSource lists batches that may have outlived their shelf life.
type BatchSource interface {
	ExpiryCandidates(ctx context.Context) ([]ExpiryCandidate, error)
}

// StatusChanger applies validated batch status changes.
type StatusChanger interface {
	ChangeBatchStatus(ctx context.Context, batchID int64, next status.BatchStatus, changedBy int64, notes string) (*approval.ApprovalRequest, error)
}

// ExpiryPoller periodically expires released batches whose shelf life has
// run out. Dispatch gating reads the batch status, so expiry has to land in
// the database, not just in a computed view.
type ExpiryPoller struct {
	batches       BatchSource
	statusChanger StatusChanger
	logger        *zap.Logger

	pollInterval     time.Duration
	shelfLifeMinutes float64
	systemUserID     int64

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
	now       func() time.Time
}

// NewExpiryPoller creates a new expiry poller
func NewExpiryPoller(
	batches BatchSource,
	statusChanger StatusChanger,
	pollInterval time.Duration,
	shelfLifeMinutes float64,
	systemUserID int64,
	logger *zap.Logger,
) *ExpiryPoller {
	return &ExpiryPoller{
		batches:          batches,
		statusChanger:    statusChanger,
		logger:           logger,
		pollInterval:     pollInterval,
		shelfLifeMinutes: shelfLifeMinutes,
		systemUserID:     systemUserID,
		now:              time.Now,
	}
}

// Start starts the expiry polling worker
func (p *ExpiryPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return fmt.Errorf("expiry poller is already running")
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.isRunning = true
	p.done = make(chan struct{})

	p.logger.Info("ExpiryPoller started",
		zap.Duration("poll_interval", p.pollInterval),
		zap.Float64("shelf_life_minutes", p.shelfLifeMinutes))

	go p.pollLoop(ctx)

	return nil
}

// Stop stops the expiry polling worker and waits for the loop to exit
func (p *ExpiryPoller) Stop() {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = false
	p.cancel()
	done := p.done
	p.mu.Unlock()

	<-done
	p.logger.Info("ExpiryPoller stopped")
}

// Name returns the worker name for identification
func (p *ExpiryPoller) Name() string {
	return "ExpiryPoller"
}

func (p *ExpiryPoller) pollLoop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

// sweep expires every candidate whose shelf life ran out. One failed batch
// does not stop the rest of the sweep.
func (p *ExpiryPoller) sweep(ctx context.Context) {
	candidates, err := p.batches.ExpiryCandidates(ctx)
	if err != nil {
		p.logger.Error("Failed to list expiry candidates", zap.Error(err))
		return
	}

	now := p.now()
	expired := 0
	for _, c := range candidates {
		age := now.Sub(c.SynthesisStart).Minutes()
		if age <= p.shelfLifeMinutes {
			continue
		}

		notes := fmt.Sprintf("shelf life exceeded: %.0f min since synthesis", age)
		if _, err := p.statusChanger.ChangeBatchStatus(ctx, c.BatchID, status.BatchExpired, p.systemUserID, notes); err != nil {
			p.logger.Error("Failed to expire batch",
				zap.Int64("batch_id", c.BatchID),
				zap.Error(err))
			continue
		}
		expired++
	}

	if expired > 0 {
		p.logger.Info("Expiry sweep completed",
			zap.Int("candidates", len(candidates)),
			zap.Int("expired", expired))
	}
}
