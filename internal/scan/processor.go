package scan

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Processor triggers every scan on a fixed interval across all organizations
type Processor struct {
	runner       *Runner
	interval     time.Duration
	timeout      time.Duration
	initialDelay time.Duration
	logger       *slog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewProcessor creates a new scan processor
func NewProcessor(runner *Runner, interval, timeout time.Duration, logger *slog.Logger) *Processor {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Processor{
		runner:       runner,
		interval:     interval,
		timeout:      timeout,
		initialDelay: 5 * time.Second,
		logger:       logger,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the ticker loop. Calling Start twice is a no-op.
func (p *Processor) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
	p.logger.Info("Scan processor started", slog.Duration("interval", p.interval))
}

// Stop ends the loop and waits for an in-flight run to finish
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	p.logger.Info("Scan processor stopped")
}

func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) run() {
	defer p.wg.Done()

	select {
	case <-time.After(p.initialDelay):
		p.tick()
	case <-p.stopCh:
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.tick()
		case <-p.stopCh:
			return
		}
	}
}

func (p *Processor) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.RunOnce(ctx); err != nil {
		p.logger.Error("Scheduled scan failed", slog.Any("error", err))
	}
}

// RunOnce runs every scan once for all organizations. Both scans run even if the first fails.
func (p *Processor) RunOnce(ctx context.Context) error {
	var firstErr error
	for _, name := range []string{NameOverdue, NameContracts} {
		res, err := p.runner.Run(ctx, name, "")
		if err != nil {
			p.logger.Error("Scan failed", slog.String("scan", name), slog.Any("error", err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		p.logger.Info("Scan completed",
			slog.String("scan", name),
			slog.Bool("skipped", res.Skipped),
			slog.Int("checked", res.Checked),
			slog.Int("updated", res.Updated),
			slog.Int("failed", res.Failed),
		)
	}
	return firstErr
}
