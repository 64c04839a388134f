package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
)

// DefaultStatsInterval matches the dashboard auto-refresh period.
const DefaultStatsInterval = 30 * time.Second

// RoomLister reports which sessions currently have dashboard subscribers.
type RoomLister interface {
	ActiveSessions() []model.SessionID
}

// StatsSource computes the aggregate of a session.
type StatsSource interface {
	SessionStats(ctx context.Context, sessionID model.SessionID) (*model.SessionStats, error)
}

// StatsBroadcastWorker periodically pushes session:stats events to every
// session that has at least one subscribed dashboard. Stats go to the
// local hub only, since every instance serves its own subscribers.
type StatsBroadcastWorker struct {
	rooms     RoomLister
	stats     StatsSource
	publisher interfaces.EventPublisher
	interval  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func NewStatsBroadcastWorker(rooms RoomLister, stats StatsSource, publisher interfaces.EventPublisher, interval time.Duration) *StatsBroadcastWorker {
	if interval <= 0 {
		interval = DefaultStatsInterval
	}
	return &StatsBroadcastWorker{
		rooms:     rooms,
		stats:     stats,
		publisher: publisher,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background broadcast loop without blocking.
func (w *StatsBroadcastWorker) Start(ctx context.Context) error {
	logging.Default().Info("Stats broadcast worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *StatsBroadcastWorker) Stop() {
	logging.Default().Info("Stats broadcast worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Stats broadcast worker stopped")
}

func (w *StatsBroadcastWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Broadcast(ctx); err != nil {
				logging.Default().Error("Stats broadcast failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Stats broadcast worker context cancelled")
			return
		}
	}
}

// Broadcast performs a single cycle. A failure for one session does not
// prevent the others; the first error is returned. Rooms watching a session
// that does not exist are skipped.
func (w *StatsBroadcastWorker) Broadcast(ctx context.Context) error {
	var firstErr error
	for _, sessionID := range w.rooms.ActiveSessions() {
		stats, err := w.stats.SessionStats(ctx, sessionID)
		if goerr.HasTag(err, errutil.TagNotFound) {
			logging.From(ctx).Debug("Skip stats for unknown session", "session_id", sessionID)
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = goerr.Wrap(err, "failed to compute session stats", goerr.V("session_id", sessionID))
			}
			continue
		}

		if err := w.publisher.Publish(ctx, model.NewSessionStatsEvent(stats)); err != nil && firstErr == nil {
			firstErr = goerr.Wrap(err, "failed to publish session stats", goerr.V("session_id", sessionID))
		}
	}
	return firstErr
}
