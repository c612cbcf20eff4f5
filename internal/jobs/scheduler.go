package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// TaskCleanup asks the worker to purge expired refresh tokens and resets.
const TaskCleanup = "cleanup"

type Scheduler struct {
	cron     *cron.Cron
	queue    *redis.Client
	stream   string
	schedule string
	log      zerolog.Logger
}

func NewScheduler(queue *redis.Client, stream, schedule string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		queue:    queue,
		stream:   stream,
		schedule: schedule,
		log:      log,
	}
}

// Start is a no-op without a queue; the memory driver runs without redis.
func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.enqueueCleanup); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Str("stream", s.stream).Msg("scheduler started")
	return nil
}

// Stop halts the schedule and waits up to timeout for a running job.
func (s *Scheduler) Stop(timeout time.Duration) {
	select {
	case <-s.cron.Stop().Done():
	case <-time.After(timeout):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueCleanup() {
	if err := s.enqueueTask(context.Background(), map[string]any{
		"type": TaskCleanup,
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue cleanup failed")
	}
}

func (s *Scheduler) enqueueTask(ctx context.Context, payload map[string]any) error {
	if s.queue == nil {
		return nil
	}
	_, err := s.queue.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: payload,
	}).Result()
	return err
}
