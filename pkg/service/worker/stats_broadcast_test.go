package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/service/realtime"
	"github.com/yonnovia/iawashing/pkg/service/worker"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
)

type mockStatsSource struct {
	mu        sync.Mutex
	calls     int
	failID    model.SessionID
	missingID model.SessionID
}

func (m *mockStatsSource) SessionStats(ctx context.Context, sessionID model.SessionID) (*model.SessionStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if sessionID == m.failID {
		return nil, errors.New("stats unavailable")
	}
	if sessionID == m.missingID {
		return nil, goerr.New("session not found", goerr.T(errutil.TagNotFound))
	}
	return &model.SessionStats{SessionID: sessionID, Total: 2, Moyen: 2, AverageScore: 55}, nil
}

func (m *mockStatsSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestStatsBroadcastWorker_Broadcast(t *testing.T) {
	ctx := context.Background()
	hub := realtime.NewHub()
	source := &mockStatsSource{failID: model.NewSessionID()}

	watched := model.NewSessionID()
	sub := hub.Subscribe(watched)
	defer sub.Close()
	failing := hub.Subscribe(source.failID)
	defer failing.Close()

	w := worker.NewStatsBroadcastWorker(hub, source, hub, time.Minute)
	err := w.Broadcast(ctx)
	gt.Error(t, err)

	select {
	case ev := <-sub.Events():
		gt.Value(t, ev.Event).Equal(model.EventSessionStats)
		gt.Value(t, ev.SessionID).Equal(watched)
		gt.Value(t, ev.Stats.Total).Equal(2)
	case <-time.After(time.Second):
		t.Fatal("no stats event")
	}
	gt.Value(t, len(failing.Events())).Equal(0)
	gt.Value(t, source.callCount()).Equal(2)
}

func TestStatsBroadcastWorker_UnknownSession(t *testing.T) {
	hub := realtime.NewHub()
	source := &mockStatsSource{missingID: model.NewSessionID()}

	sub := hub.Subscribe(source.missingID)
	defer sub.Close()

	w := worker.NewStatsBroadcastWorker(hub, source, hub, time.Minute)
	gt.NoError(t, w.Broadcast(context.Background()))
	gt.Value(t, source.callCount()).Equal(1)
	gt.Value(t, len(sub.Events())).Equal(0)
}

func TestStatsBroadcastWorker_NoSubscribers(t *testing.T) {
	hub := realtime.NewHub()
	source := &mockStatsSource{}

	w := worker.NewStatsBroadcastWorker(hub, source, hub, time.Minute)
	gt.NoError(t, w.Broadcast(context.Background()))
	gt.Value(t, source.callCount()).Equal(0)
}

func TestStatsBroadcastWorker_StartStop(t *testing.T) {
	hub := realtime.NewHub()
	source := &mockStatsSource{}
	sessionID := model.NewSessionID()
	sub := hub.Subscribe(sessionID)
	defer sub.Close()

	w := worker.NewStatsBroadcastWorker(hub, source, hub, 10*time.Millisecond)
	gt.NoError(t, w.Start(context.Background())).Required()

	select {
	case ev := <-sub.Events():
		gt.Value(t, ev.SessionID).Equal(sessionID)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not broadcast")
	}

	w.Stop()
}
