// AngelaMos | 2026
// resetter.go

package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nutriai/backend/internal/metrics"
)

type Store interface {
	ResetQuotas(ctx context.Context) (int64, error)
}

// Resetter zeroes every user's daily counter on a cron schedule evaluated
// in UTC.
type Resetter struct {
	store   Store
	cron    *cron.Cron
	timeout time.Duration
	logger  *slog.Logger
}

func NewResetter(store Store, logger *slog.Logger) *Resetter {
	return &Resetter{
		store:   store,
		cron:    cron.New(cron.WithLocation(time.UTC)),
		timeout: time.Minute,
		logger:  logger,
	}
}

func (r *Resetter) Start(schedule string) error {
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return fmt.Errorf("schedule quota reset %q: %w", schedule, err)
	}
	r.cron.Start()
	r.logger.Info("quota reset scheduled", "schedule", schedule)
	return nil
}

// Stop waits for a running reset to finish or ctx to expire.
func (r *Resetter) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (r *Resetter) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if _, err := r.ResetNow(ctx); err != nil {
		r.logger.Error("quota reset failed", "error", err)
	}
}

func (r *Resetter) ResetNow(ctx context.Context) (int64, error) {
	n, err := r.store.ResetQuotas(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset quotas: %w", err)
	}
	metrics.RecordQuotaReset(n)
	r.logger.Info("daily quotas reset", "users", n)
	return n, nil
}
