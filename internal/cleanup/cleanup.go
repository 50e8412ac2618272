package cleanup

import (
	"context"
	"fmt"
	"log"
	"property-backoffice/internal/config"
	"property-backoffice/internal/models"
	"time"

	"gorm.io/gorm"
)

// Service prunes delete log entries older than the retention window
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// SetClock replaces the clock used to compute the cutoff
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Options holds one pruning run's settings
type Options struct {
	RetentionDays    int  // entries older than this many days are pruned
	MaxDeletionCount int  // abort when more entries than this are eligible (0 = no limit)
	DryRun           bool // only count what would be pruned
}

// OptionsFromConfig builds run options from the cleanup section of the config
func OptionsFromConfig(cfg config.CleanupConfig) Options {
	return Options{
		RetentionDays:    cfg.RetentionDays,
		MaxDeletionCount: cfg.MaxDeletionCount,
	}
}

// Result holds the result of a pruning run
type Result struct {
	TargetCount  int64     `json:"target_count"`
	DeletedCount int64     `json:"deleted_count"`
	DryRun       bool      `json:"dry_run"`
	Cutoff       time.Time `json:"cutoff"`
	ExecutedAt   time.Time `json:"executed_at"`
}

// LimitError is returned when the safety limit would be exceeded
type LimitError struct {
	Count, Limit int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("safety check failed: %d delete log entries exceed max deletion limit of %d", e.Count, e.Limit)
}

// PruneDeleteLogs removes delete log entries whose deleted_at is before
// now minus RetentionDays. A non-positive retention prunes nothing.
func (s *Service) PruneDeleteLogs(ctx context.Context, opts Options) (*Result, error) {
	now := s.now()
	result := &Result{DryRun: opts.DryRun, ExecutedAt: now}
	if opts.RetentionDays <= 0 {
		log.Println("[Cleanup] Retention disabled, nothing to prune")
		return result, nil
	}
	result.Cutoff = now.AddDate(0, 0, -opts.RetentionDays)

	expired := s.db.WithContext(ctx).Model(&models.DeleteLog{}).Where("deleted_at < ?", result.Cutoff)
	if err := expired.Count(&result.TargetCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count expired delete logs: %w", err)
	}
	if result.TargetCount == 0 {
		return result, nil
	}

	if opts.MaxDeletionCount > 0 && result.TargetCount > int64(opts.MaxDeletionCount) {
		return nil, &LimitError{Count: result.TargetCount, Limit: int64(opts.MaxDeletionCount)}
	}

	if opts.DryRun {
		log.Printf("[Cleanup] [DRY-RUN] Would prune %d delete log entries before %s",
			result.TargetCount, result.Cutoff.Format("2006-01-02"))
		return result, nil
	}

	res := s.db.WithContext(ctx).Where("deleted_at < ?", result.Cutoff).Delete(&models.DeleteLog{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to prune delete logs: %w", res.Error)
	}
	result.DeletedCount = res.RowsAffected

	log.Printf("[Cleanup] Pruned %d/%d delete log entries (retention: %d days)",
		result.DeletedCount, result.TargetCount, opts.RetentionDays)
	return result, nil
}

// Stats summarizes the delete log
func (s *Service) Stats(ctx context.Context) (map[string]interface{}, error) {
	db := s.db.WithContext(ctx)
	stats := make(map[string]interface{})

	var total int64
	if err := db.Model(&models.DeleteLog{}).Count(&total).Error; err != nil {
		return nil, err
	}
	stats["total"] = total

	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := db.Model(&models.DeleteLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}
	byReason := make(map[string]int64, len(reasonCounts))
	for _, rc := range reasonCounts {
		byReason[rc.Reason] = rc.Count
	}
	stats["by_reason"] = byReason

	var recent int64
	if err := db.Model(&models.DeleteLog{}).
		Where("deleted_at >= ?", s.now().AddDate(0, 0, -30)).
		Count(&recent).Error; err != nil {
		return nil, err
	}
	stats["last_30_days"] = recent

	return stats, nil
}
