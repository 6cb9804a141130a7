package maintenance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/stowagehq/stowage/internal/services"
	"github.com/stowagehq/stowage/pkg/logger"
)

const (
	defaultSchedule  = "@daily"
	defaultKeep      = 7
	backupPrefix     = "stowage-backup-"
	backupExtension  = ".json"
	backupTimeLayout = "20060102-150405"
)

// Backuper writes periodic dataset exports to a directory and prunes old
// snapshots beyond the retention count.
type Backuper struct {
	exchange *services.ExchangeService
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger

	dir      string
	schedule string
	keep     int
}

// Option customises the Backuper.
type Option func(*Backuper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(b *Backuper) {
		if c != nil {
			b.cron = c
		}
	}
}

// WithNow overrides the clock used for snapshot naming.
func WithNow(now func() time.Time) Option {
	return func(b *Backuper) {
		if now != nil {
			b.now = now
		}
	}
}

// WithSchedule overrides the cron specification for backups.
func WithSchedule(spec string) Option {
	return func(b *Backuper) {
		if spec != "" {
			b.schedule = spec
		}
	}
}

// WithKeep adjusts how many snapshots are retained.
func WithKeep(keep int) Option {
	return func(b *Backuper) {
		if keep > 0 {
			b.keep = keep
		}
	}
}

// NewBackuper constructs a Backuper with sensible defaults.
func NewBackuper(exchange *services.ExchangeService, dir string, opts ...Option) *Backuper {
	b := &Backuper{
		exchange: exchange,
		now:      time.Now,
		log:      logger.WithModule("maintenance"),
		dir:      dir,
		schedule: defaultSchedule,
		keep:     defaultKeep,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.cron == nil {
		b.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return b
}

// Start registers the backup job and launches the scheduler.
func (b *Backuper) Start() error {
	if b.exchange == nil || b.dir == "" {
		return nil
	}

	if _, err := b.cron.AddFunc(b.schedule, func() {
		if err := b.RunOnce(context.Background()); err != nil {
			b.log.Warn("scheduled backup failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	b.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running job to complete.
func (b *Backuper) Stop() context.Context {
	if b.cron == nil {
		return context.Background()
	}
	return b.cron.Stop()
}

// RunOnce writes one snapshot and prunes old ones. Also used during graceful
// shutdown and in tests.
func (b *Backuper) RunOnce(ctx context.Context) error {
	if b.exchange == nil || b.dir == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	name := backupPrefix + b.now().Format(backupTimeLayout) + backupExtension
	path := filepath.Join(b.dir, name)

	if err := b.exchange.ExportToFile(ctx, path); err != nil {
		return fmt.Errorf("maintenance: write backup: %w", err)
	}
	b.log.Info("backup written", zap.String("path", path))

	return b.prune()
}

// prune deletes the oldest snapshots beyond the retention count. Snapshot
// names embed their creation time, so lexicographic order is age order.
func (b *Backuper) prune() error {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return fmt.Errorf("maintenance: list backups: %w", err)
	}

	var snapshots []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.Type().IsRegular() && strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, backupExtension) {
			snapshots = append(snapshots, name)
		}
	}
	if len(snapshots) <= b.keep {
		return nil
	}

	sort.Strings(snapshots)

	var errs error
	for _, name := range snapshots[:len(snapshots)-b.keep] {
		if err := os.Remove(filepath.Join(b.dir, name)); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		b.log.Info("old backup pruned", zap.String("name", name))
	}
	return errs
}
