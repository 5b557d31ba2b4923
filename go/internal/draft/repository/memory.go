package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// Memory is an in-process draft store with one lock per draft. It enforces
// the same uniqueness the Postgres schema does.
type Memory struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID]*partition
}

type partition struct {
	mu     sync.Mutex
	draft  *models.Draft
	picks  []models.DraftPick
	outbox []events.Envelope
}

func NewMemory() *Memory {
	return &Memory{drafts: make(map[uuid.UUID]*partition)}
}

var _ orchestrator.DraftStore = (*Memory)(nil)

func (m *Memory) partition(id uuid.UUID) (*partition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, sql.ErrNoRows)
	}
	return p, nil
}

// CreateDraft stores a draft header with an empty log.
func (m *Memory) CreateDraft(_ context.Context, d *models.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[d.ID]; ok {
		return fmt.Errorf("draft %s already exists", d.ID)
	}
	c := d.Clone()
	if c.Status == "" {
		c.Status = models.DraftStatusPending
	}
	if c.NextPickID == 0 {
		c.NextPickID = 1
	}
	m.drafts[d.ID] = &partition{draft: c}
	return nil
}

func (m *Memory) GetDraft(_ context.Context, id uuid.UUID) (*models.Draft, error) {
	p, err := m.partition(id)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.Clone(), nil
}

func (m *Memory) ListPicks(_ context.Context, id uuid.UUID) ([]models.DraftPick, error) {
	p, err := m.partition(id)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.DraftPick(nil), p.picks...), nil
}

func (m *Memory) ListDraftIDsByStatus(_ context.Context, statuses ...models.DraftStatus) ([]uuid.UUID, error) {
	want := make(map[models.DraftStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	m.mu.RLock()
	parts := make(map[uuid.UUID]*partition, len(m.drafts))
	for id, p := range m.drafts {
		parts[id] = p
	}
	m.mu.RUnlock()

	var ids []uuid.UUID
	for id, p := range parts {
		p.mu.Lock()
		if want[p.draft.Status] {
			ids = append(ids, id)
		}
		p.mu.Unlock()
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (m *Memory) Apply(_ context.Context, mu orchestrator.Mutation) error {
	if mu.Draft == nil {
		return fmt.Errorf("mutation has no draft header")
	}
	p, err := m.partition(mu.Draft.ID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	picks := p.picks
	if mu.TruncateTo != nil {
		var kept []models.DraftPick
		for _, pk := range picks {
			if pk.PickNumber <= *mu.TruncateTo {
				kept = append(kept, pk)
			}
		}
		picks = kept
	}
	if a := mu.Append; a != nil {
		for _, pk := range picks {
			if pk.PickNumber == a.PickNumber {
				return fmt.Errorf("insert pick: duplicate pick_number %d", a.PickNumber)
			}
			if pk.PlayerID == a.PlayerID {
				return fmt.Errorf("insert pick: player %s already drafted", a.PlayerID)
			}
			if pk.ID == a.ID {
				return fmt.Errorf("insert pick: duplicate id %d", a.ID)
			}
		}
		picks = append(append([]models.DraftPick(nil), picks...), *a)
	}

	p.picks = picks
	p.draft = mu.Draft.Clone()
	p.outbox = append(p.outbox, mu.Events...)
	return nil
}

// Outbox returns the outbox rows recorded for a draft.
func (m *Memory) Outbox(id uuid.UUID) []events.Envelope {
	p, err := m.partition(id)
	if err != nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Envelope(nil), p.outbox...)
}
