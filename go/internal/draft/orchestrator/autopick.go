package orchestrator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// AutoPickStrategy makes the last-resort choice when neither the team queue
// nor the ranking yields a legal player. candidates are legal, undrafted and
// sorted by ascending id.
type AutoPickStrategy interface {
	Select(candidates []models.Player) (models.Player, bool)
}

// LowestIDStrategy picks the undrafted player with the lowest id.
type LowestIDStrategy struct{}

func (LowestIDStrategy) Select(candidates []models.Player) (models.Player, bool) {
	if len(candidates) == 0 {
		return models.Player{}, false
	}
	return candidates[0], true
}

// RandomStrategy uses random choice for the player.
type RandomStrategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomStrategy constructs a RandomStrategy with its own seed.
func NewRandomStrategy() *RandomStrategy {
	src := rand.NewSource(time.Now().UnixNano())
	return &RandomStrategy{rng: rand.New(src)}
}

func (s *RandomStrategy) Select(candidates []models.Player) (models.Player, bool) {
	if len(candidates) == 0 {
		return models.Player{}, false
	}
	s.mu.Lock()
	i := s.rng.Intn(len(candidates))
	s.mu.Unlock()
	return candidates[i], true
}

// NewStrategy returns the strategy for a configured fallback.
func NewStrategy(f Fallback) AutoPickStrategy {
	if f == FallbackRandom {
		return NewRandomStrategy()
	}
	return LowestIDStrategy{}
}

type pickSource string

const (
	sourceQueue    pickSource = "queue"
	sourceRanking  pickSource = "ranking"
	sourceFallback pickSource = "fallback"
)

// chooseAutoPick walks queue, ranking and fallback in order, checking each
// candidate with the validator.
func (a *actor) chooseAutoPick(team uuid.UUID) (uuid.UUID, pickSource, bool) {
	if q := a.o.queues; q != nil {
		for _, id := range q.Queue(a.draft.ID, team) {
			if a.check(team, id) == nil {
				return id, sourceQueue, true
			}
		}
	}
	for _, id := range a.ranked {
		if a.check(team, id) == nil {
			return id, sourceRanking, true
		}
	}
	var legal []models.Player
	for _, id := range a.poolIDs {
		if a.check(team, id) == nil {
			legal = append(legal, a.pool[id])
		}
	}
	if p, ok := a.o.strategy.Select(legal); ok {
		return p.ID, sourceFallback, true
	}
	return uuid.Nil, "", false
}
