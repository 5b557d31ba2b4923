package gateway

import (
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
)

type queueKey struct {
	draftID uuid.UUID
	teamID  uuid.UUID
}

// QueueStore keeps each team's queued players in memory. Queues outlive the
// connection that set them, so a reconnecting owner keeps their queue.
type QueueStore struct {
	mu     sync.RWMutex
	queues map[queueKey][]uuid.UUID
}

var _ orchestrator.QueueSource = (*QueueStore)(nil)

func NewQueueStore() *QueueStore {
	return &QueueStore{queues: make(map[queueKey][]uuid.UUID)}
}

// Set replaces a team's queue. An empty list clears it.
func (s *QueueStore) Set(draftID, teamID uuid.UUID, players []uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := queueKey{draftID, teamID}
	if len(players) == 0 {
		delete(s.queues, key)
		return
	}
	s.queues[key] = append([]uuid.UUID(nil), players...)
}

func (s *QueueStore) Queue(draftID, teamID uuid.UUID) []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]uuid.UUID(nil), s.queues[queueKey{draftID, teamID}]...)
}
