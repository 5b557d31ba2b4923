package pick

import (
	"github.com/google/uuid"
)

// Slot is one cell of the round x team grid.
type Slot struct {
	Index       int       `json:"index"`         // 0-based overall index
	Round       int       `json:"round"`         // 1-based
	PickInRound int       `json:"pick_in_round"` // 1-based
	PickNumber  int       `json:"pick_number"`   // 1-based overall
	TeamID      uuid.UUID `json:"team_id"`
}

// RoundFor returns the 1-based round of the 0-based overall index.
func RoundFor(numTeams, index int) int {
	if numTeams <= 0 {
		return 0
	}
	return index/numTeams + 1
}

// SlotAt returns the slot for the 0-based overall index. Odd rounds run in
// team order, even rounds run reversed.
func SlotAt(order []uuid.UUID, index int) Slot {
	n := len(order)
	if n == 0 || index < 0 {
		return Slot{Index: index}
	}
	round := RoundFor(n, index)
	pos := index % n
	if round%2 == 0 {
		pos = n - 1 - pos
	}
	return Slot{
		Index:       index,
		Round:       round,
		PickInRound: index%n + 1,
		PickNumber:  index + 1,
		TeamID:      order[pos],
	}
}

// TeamOnClock returns the team picking at the 0-based overall index.
func TeamOnClock(order []uuid.UUID, index int) uuid.UUID {
	return SlotAt(order, index).TeamID
}

// Grid generates every slot of a snake draft.
func Grid(order []uuid.UUID, rounds int) []Slot {
	total := rounds * len(order)
	slots := make([]Slot, 0, total)
	for i := 0; i < total; i++ {
		slots = append(slots, SlotAt(order, i))
	}
	return slots
}
