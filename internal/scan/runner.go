package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
)

const (
	NameOverdue   = "overdue"
	NameContracts = "contracts"

	defaultLockTTL = 10 * time.Minute
)

// Scanner is implemented by OverdueScanner and ContractScanner
type Scanner interface {
	Scan(ctx context.Context, now time.Time, organizationID string) (Result, error)
}

// Runner runs scans under a run lock so overlapping triggers skip instead of racing
type Runner struct {
	scanners map[string]Scanner
	locker   Locker
	lockTTL  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewRunner(overdue, contracts Scanner, locker Locker, lockTTL time.Duration, logger *slog.Logger) *Runner {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &Runner{
		scanners: map[string]Scanner{
			NameOverdue:   overdue,
			NameContracts: contracts,
		},
		locker:  locker,
		lockTTL: lockTTL,
		logger:  logger,
		now:     time.Now,
	}
}

func (r *Runner) Overdue(ctx context.Context, organizationID string) (Result, error) {
	return r.Run(ctx, NameOverdue, organizationID)
}

func (r *Runner) Contracts(ctx context.Context, organizationID string) (Result, error) {
	return r.Run(ctx, NameContracts, organizationID)
}

// Run executes the named scan. When the lock is held elsewhere the returned Result has Skipped set.
func (r *Runner) Run(ctx context.Context, name, organizationID string) (Result, error) {
	scanner, ok := r.scanners[name]
	if !ok {
		return Result{}, errors.Errorf("unknown scan %q", name)
	}

	lockName := "scan:" + name + ":" + scope(organizationID)
	release, err := r.locker.Acquire(ctx, lockName, r.lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			r.logger.Info("Scan skipped, lock held",
				slog.String("scan", name),
				slog.String("lock", lockName),
			)
			return Result{Skipped: true}, nil
		}
		return Result{}, err
	}
	defer release()

	started := time.Now()
	res, err := scanner.Scan(ctx, r.now(), organizationID)
	if err != nil {
		return res, err
	}

	r.logger.Debug("Scan run completed",
		slog.String("scan", name),
		slog.Duration("duration", time.Since(started)),
	)
	return res, nil
}

func scope(organizationID string) string {
	if organizationID == "" {
		return "all"
	}
	return organizationID
}
