package workers

import (
	"chat-memory/contract"
	"chat-memory/infrastructure/storage"
	"chat-memory/observability"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

var _ contract.Worker = (*Janitor)(nil)

const (
	jobRetention = "retention"
	jobArchive   = "archive"
	statusOK     = "ok"
	statusFailed = "failed"
)

type JanitorConfig struct {
	RetentionPeriod   time.Duration
	RetentionSchedule string
	ArchiveIdleAfter  time.Duration
	ArchiveSchedule   string
}

// Janitor runs the durable store maintenance on cron schedules.
// An empty schedule or a non positive period disables the matching job.
type Janitor struct {
	messages  storage.IMessageRepository
	sessions  storage.ISessionRepository
	log       *slog.Logger
	metrics   *observability.Metrics
	config    JanitorConfig
	retention cron.Schedule
	archive   cron.Schedule
	now       func() time.Time
}

func NewJanitor(
	messages storage.IMessageRepository,
	sessions storage.ISessionRepository,
	log *slog.Logger,
	metrics *observability.Metrics,
	config JanitorConfig) (*Janitor, error) {
	j := &Janitor{
		messages: messages,
		sessions: sessions,
		log:      log,
		metrics:  metrics,
		config:   config,
		now:      time.Now,
	}
	var err error
	if config.RetentionSchedule != "" && config.RetentionPeriod > 0 {
		if j.retention, err = cron.ParseStandard(config.RetentionSchedule); err != nil {
			return nil, fmt.Errorf("retention schedule %q: %w", config.RetentionSchedule, err)
		}
	}
	if config.ArchiveSchedule != "" && config.ArchiveIdleAfter > 0 {
		if j.archive, err = cron.ParseStandard(config.ArchiveSchedule); err != nil {
			return nil, fmt.Errorf("archive schedule %q: %w", config.ArchiveSchedule, err)
		}
	}
	return j, nil
}

func (j *Janitor) Run(ctx context.Context) error {
	if j.retention == nil && j.archive == nil {
		j.log.Info("No maintenance job scheduled")
		<-ctx.Done()
		return nil
	}

	scheduler := cron.New(cron.WithLocation(time.UTC))
	if j.retention != nil {
		scheduler.Schedule(j.retention, cron.FuncJob(func() { _, _ = j.SweepRetention(ctx) }))
	}
	if j.archive != nil {
		scheduler.Schedule(j.archive, cron.FuncJob(func() { _, _ = j.ArchiveIdle(ctx) }))
	}
	scheduler.Start()
	j.log.Info("Janitor started",
		"retention_schedule", j.config.RetentionSchedule,
		"archive_schedule", j.config.ArchiveSchedule)

	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}

// SweepRetention deletes durable messages older than the retention period.
func (j *Janitor) SweepRetention(ctx context.Context) (int64, error) {
	if j.config.RetentionPeriod <= 0 {
		return 0, nil
	}
	before := j.now().Add(-j.config.RetentionPeriod)
	deleted, err := j.messages.DeleteOlderThan(ctx, before)
	if err != nil {
		j.log.Error("Retention sweep failed", "before", before, "error", err)
		j.metrics.JanitorRuns.WithLabelValues(jobRetention, statusFailed).Inc()
		return 0, err
	}
	j.log.Info("Retention sweep done", "before", before, "deleted", deleted)
	j.metrics.JanitorRuns.WithLabelValues(jobRetention, statusOK).Inc()
	return deleted, nil
}

// ArchiveIdle moves ACTIVE sessions idle for longer than ArchiveIdleAfter to ARCHIVED.
// A session touched between listing and archiving is left alone.
func (j *Janitor) ArchiveIdle(ctx context.Context) (int, error) {
	if j.config.ArchiveIdleAfter <= 0 {
		return 0, nil
	}
	idleSince := j.now().Add(-j.config.ArchiveIdleAfter)
	sessions, err := j.sessions.ListArchivable(ctx, idleSince)
	if err != nil {
		j.log.Error("Listing idle sessions failed", "error", err)
		j.metrics.JanitorRuns.WithLabelValues(jobArchive, statusFailed).Inc()
		return 0, err
	}

	archived := 0
	for _, session := range sessions {
		ok, err := j.sessions.Archive(ctx, session.ConversationID, idleSince)
		if err != nil {
			j.log.Error("Archiving session failed", "conversation_id", session.ConversationID, "error", err)
			j.metrics.JanitorRuns.WithLabelValues(jobArchive, statusFailed).Inc()
			return archived, err
		}
		if ok {
			archived++
		}
	}
	j.log.Info("Idle sessions archived", "idle_since", idleSince, "archived", archived)
	j.metrics.JanitorRuns.WithLabelValues(jobArchive, statusOK).Inc()
	return archived, nil
}
