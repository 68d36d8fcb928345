package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dorfbook/simparse/pkg/config"
	"dorfbook/simparse/pkg/history"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days records are kept.
	// Zero or negative keeps records forever.
	RetentionDays int

	// PruneSchedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// MaxRecords is the maximum number of records kept. Zero is unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 30,
		PruneSchedule: "0 3 * * *",
	}
}

// ConfigFrom converts the history retention section.
func ConfigFrom(cfg config.RetentionConfig) *Config {
	return &Config{
		RetentionDays: cfg.Days,
		PruneSchedule: cfg.PruneSchedule,
		MaxRecords:    cfg.MaxRecords,
	}
}

// Observer is notified of every successful prune.
type Observer interface {
	RecordHistoryPruned(n int64)
}

// Pruner enforces retention policies on history records.
type Pruner struct {
	store     history.Store
	config    *Config
	observer  Observer
	logger    *slog.Logger
	scheduler *Scheduler
	now       func() time.Time
}

// NewPruner creates a new retention pruner. observer may be nil.
func NewPruner(store history.Store, config *Config, observer Observer) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Pruner{
		store:    store,
		config:   config,
		observer: observer,
		logger:   slog.Default().With("component", "history.retention"),
		now:      time.Now,
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Prune deletes records older than the retention period, then the oldest
// records beyond MaxRecords. It returns the total number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.observer != nil && totalDeleted > 0 {
		p.observer.RecordHistoryPruned(totalDeleted)
	}

	if totalDeleted == 0 {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("history pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)

	p.logger.Debug("pruning by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	deleted, err := p.store.Delete(ctx, &history.Query{Until: &cutoff})
	if err != nil {
		return 0, history.NewRetentionError("prune_age", err)
	}
	return deleted, nil
}

func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.store.Count(ctx, &history.Query{})
	if err != nil {
		return 0, history.NewRetentionError("prune_count", err)
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	// newest record that falls outside the kept window
	boundary, err := p.store.Query(ctx, &history.Query{
		Offset: int(p.config.MaxRecords),
		Limit:  1,
	})
	if err != nil {
		return 0, history.NewRetentionError("prune_count", err)
	}
	if len(boundary) == 0 {
		return 0, nil
	}

	cutoff := boundary[0].RecordedAt
	p.logger.Info("record count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"cutoff_time", cutoff,
	)

	deleted, err := p.store.Delete(ctx, &history.Query{Until: &cutoff})
	if err != nil {
		return 0, history.NewRetentionError("prune_count", err)
	}
	return deleted, nil
}

// Start starts the cron scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the cron scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the next scheduled pruning time, or nil.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
