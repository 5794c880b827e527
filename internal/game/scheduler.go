package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler polls the lottery on a fixed interval. Ticks never overlap; a
// slow draw makes the next poll skip.
type Scheduler struct {
	svc   *Service
	cron  *cron.Cron
	every time.Duration
	log   *slog.Logger
}

func NewScheduler(svc *Service, every time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if every <= 0 {
		every = DrawPollEvery
	}
	cl := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	return &Scheduler{
		svc:   svc,
		cron:  cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		every: every,
		log:   logger,
	}
}

// Start runs one tick immediately and then one per interval until ctx is
// done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.tick(ctx)
	s.cron.Schedule(cron.Every(s.every), cron.FuncJob(func() { s.tick(ctx) }))
	s.cron.Start()
	s.log.Info("lottery scheduler started", "every", s.every.String())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, _, err := s.svc.RunLotteryTick(ctx); err != nil {
		s.log.Error("lottery tick failed", "err", err)
	}
}
