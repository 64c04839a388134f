package realtime

import (
	"context"
	"sync"

	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
)

const defaultBufferSize = 16

// Hub fans dashboard events out to in-process subscribers grouped by
// session. A subscriber whose buffer is full misses the event instead of
// blocking the publisher.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[model.SessionID]map[*Subscription]struct{}
	bufferSize int
}

var _ interfaces.EventPublisher = &Hub{}

type HubOption func(*Hub)

// WithBufferSize sets the per-subscriber channel capacity.
func WithBufferSize(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		rooms:      make(map[model.SessionID]map[*Subscription]struct{}),
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscription receives the events of one session until Close is called.
type Subscription struct {
	hub       *Hub
	sessionID model.SessionID
	ch        chan *model.DashboardEvent
	once      sync.Once
}

// Events returns the receive channel. It is closed by Close.
func (s *Subscription) Events() <-chan *model.DashboardEvent {
	return s.ch
}

func (s *Subscription) SessionID() model.SessionID {
	return s.sessionID
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Subscribe joins the room of a session.
func (h *Hub) Subscribe(sessionID model.SessionID) *Subscription {
	sub := &Subscription{
		hub:       h,
		sessionID: sessionID,
		ch:        make(chan *model.DashboardEvent, h.bufferSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[sessionID]
	if !ok {
		room = make(map[*Subscription]struct{})
		h.rooms[sessionID] = room
	}
	room[sub] = struct{}{}
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[sub.sessionID]; ok {
		delete(room, sub)
		if len(room) == 0 {
			delete(h.rooms, sub.sessionID)
		}
	}
	close(sub.ch)
}

// Publish delivers the event to local subscribers of its session.
func (h *Hub) Publish(ctx context.Context, event *model.DashboardEvent) error {
	dropped := h.Broadcast(event)
	if dropped > 0 {
		logging.From(ctx).Warn("dashboard event dropped for slow subscribers",
			"session_id", event.SessionID,
			"event", event.Event,
			"dropped", dropped)
	}
	return nil
}

// Broadcast delivers the event and returns how many subscribers missed it.
func (h *Hub) Broadcast(event *model.DashboardEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for sub := range h.rooms[event.SessionID] {
		select {
		case sub.ch <- event:
		default:
			dropped++
		}
	}
	return dropped
}

// ActiveSessions lists the sessions that have at least one subscriber.
func (h *Hub) ActiveSessions() []model.SessionID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]model.SessionID, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	return ids
}

// SubscriberCount returns the number of subscribers of a session.
func (h *Hub) SubscriberCount(sessionID model.SessionID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}
