package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/repository/memory"
	"github.com/yonnovia/iawashing/pkg/usecase"
)

type mockPublisher struct {
	mu     sync.Mutex
	events []*model.DashboardEvent
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, event *model.DashboardEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockPublisher) published() []*model.DashboardEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.DashboardEvent(nil), m.events...)
}

type mockMetrics struct {
	mu     sync.Mutex
	levels []string
}

func (m *mockMetrics) RecordSubmission(level string, score int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels = append(m.levels, level)
}

// fakeClock returns strictly increasing times so that ordering is stable.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	repo      *memory.Memory
	uc        *usecase.UseCases
	publisher *mockPublisher
	metrics   *mockMetrics
	clock     *fakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:      memory.New(),
		publisher: &mockPublisher{},
		metrics:   &mockMetrics{},
		clock:     newFakeClock(),
	}
	env.uc = usecase.New(env.repo,
		usecase.WithPublisher(env.publisher),
		usecase.WithMetrics(env.metrics),
		usecase.WithClock(env.clock.Now),
	)
	return env
}

func (env *testEnv) createSession(t *testing.T, title string) model.SessionID {
	t.Helper()
	s, err := env.uc.Admin.CreateSession(context.Background(), usecase.CreateSessionInput{Title: title})
	gt.NoError(t, err).Required()
	return s.ID
}

func bestAnswers() map[string]any {
	return map[string]any{
		"q1": "Oui", "q2": "Oui", "q3": "3+", "q4": "Oui", "q5": "Oui",
		"q6": "Oui", "q7": "Oui", "q8": "Oui", "q9": "Non", "q10": "<6 mois",
	}
}
