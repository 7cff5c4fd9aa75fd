package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/velocraft/velocraft-backend/internal/app/service"
	"github.com/velocraft/velocraft-backend/pkg/logger"
)

// SessionSweeper periodically drops configuration sessions that have been
// idle past their TTL. Pending orders survive the sweep and resume from the
// database on the next request.
type SessionSweeper struct {
	cron                *cron.Cron
	configuratorService service.ConfiguratorService
	schedule            string
	idleTTL             time.Duration
}

func NewSessionSweeper(configuratorService service.ConfiguratorService, schedule string, idleTTL time.Duration) *SessionSweeper {
	return &SessionSweeper{
		cron:                cron.New(),
		configuratorService: configuratorService,
		schedule:            schedule,
		idleTTL:             idleTTL,
	}
}

// Start registers the sweep job and starts the cron loop.
func (s *SessionSweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		swept := s.configuratorService.SweepIdleSessions(s.idleTTL)
		if swept > 0 {
			logger.Info("Idle session sweep finished", map[string]interface{}{
				"swept":    swept,
				"idle_ttl": s.idleTTL.String(),
			})
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for session sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Session sweeper started", map[string]interface{}{
		"schedule": s.schedule,
		"idle_ttl": s.idleTTL.String(),
	})

	return nil
}

// Stop halts the cron loop.
func (s *SessionSweeper) Stop() {
	logger.Info("Stopping session sweeper...", nil)
	s.cron.Stop()
	logger.Info("Session sweeper stopped", nil)
}
