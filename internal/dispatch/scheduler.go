package dispatch

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler flushes due notifications (explicit scheduled_at and quiet-hours
// deferrals) back into the dispatch queue once a minute.
type Scheduler struct {
	cron   *cron.Cron
	svc    *Service
	logger *logrus.Logger
}

func NewScheduler(svc *Service, logger *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), svc: svc, logger: logger}
	if _, err := s.cron.AddFunc("* * * * *", func() {
		s.svc.FlushDue(context.Background())
	}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop halts the cron loop and waits for a running flush to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}
