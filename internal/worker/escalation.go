package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

// Escalator exposes the delivery operations required by the escalation worker.
type Escalator interface {
	EscalationCandidates(ctx context.Context, limit int) ([]model.DeliveryRecord, error)
	Escalate(ctx context.Context, record model.DeliveryRecord) error
}

// Observer is notified about every escalation outcome.
type Observer interface {
	ObserveEscalation(err error)
}

type nopObserver struct{}

func (nopObserver) ObserveEscalation(error) {}

// EscalationProcessor periodically moves deliveries that exhausted their attempts to failed_final.
type EscalationProcessor struct {
	escalator    Escalator
	observer     Observer
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.DeliveryRecord
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// NewEscalationProcessor constructs the escalation worker pool. A nil observer disables reporting.
func NewEscalationProcessor(escalator Escalator, observer Observer, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *EscalationProcessor {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &EscalationProcessor{
		escalator:    escalator,
		observer:     observer,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.DeliveryRecord, batchSize*workers),
		inflight:     make(map[string]struct{}),
	}
}

// Start launches background processing.
func (p *EscalationProcessor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *EscalationProcessor) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *EscalationProcessor) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *EscalationProcessor) fetchAndDispatch(ctx context.Context) {
	records, err := p.escalator.EscalationCandidates(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch escalation candidates failed", slog.String("error", err.Error()))
		return
	}
	for _, record := range records {
		// A record still queued from an earlier poll is selected again until it is escalated.
		if !p.claim(record.OrderID) {
			continue
		}
		select {
		case <-ctx.Done():
			p.release(record.OrderID)
			return
		case p.jobs <- record:
		}
	}
}

func (p *EscalationProcessor) claim(orderID string) bool {
	p.inflightMu.Lock()
	defer p.inflightMu.Unlock()
	if _, ok := p.inflight[orderID]; ok {
		return false
	}
	p.inflight[orderID] = struct{}{}
	return true
}

func (p *EscalationProcessor) release(orderID string) {
	p.inflightMu.Lock()
	defer p.inflightMu.Unlock()
	delete(p.inflight, orderID)
}

func (p *EscalationProcessor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case record, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handle(ctx, record)
		}
	}
}

func (p *EscalationProcessor) handle(ctx context.Context, record model.DeliveryRecord) {
	defer p.release(record.OrderID)
	err := p.escalator.Escalate(ctx, record)
	p.observer.ObserveEscalation(err)
	if err != nil {
		p.logger.Error("escalate delivery failed",
			slog.String("order", record.OrderID),
			slog.Int("attempts", record.Attempts),
			slog.String("error", err.Error()),
		)
		return
	}
	p.logger.Info("delivery escalated",
		slog.String("order", record.OrderID),
		slog.String("partner", record.PartnerID),
		slog.Int("attempts", record.Attempts),
	)
}
