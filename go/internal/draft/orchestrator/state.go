package orchestrator

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/pick"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// buildState renders the client snapshot of d with its pick log.
func buildState(d *models.Draft, picks []models.DraftPick, now time.Time) events.FullState {
	st := events.FullState{
		DraftID:          d.ID,
		Status:           d.Status,
		CurrentRound:     d.CurrentRound,
		CurrentPickIndex: d.CurrentPickIndex,
		PickSeconds:      d.PickSeconds,
		RoundsTotal:      d.RoundsTotal,
		TeamOrder:        append([]uuid.UUID(nil), d.TeamOrder...),
		Picks:            make([]events.PickView, 0, len(picks)),
	}
	for _, p := range picks {
		st.Picks = append(st.Picks, events.NewPickView(p))
	}
	if d.Status != models.DraftStatusCompleted && d.CurrentPickIndex < d.TotalPicks() {
		team := pick.TeamOnClock(d.TeamOrder, d.CurrentPickIndex)
		st.CurrentTeamID = &team
	}

	switch d.Status {
	case models.DraftStatusActive:
		if d.Deadline != nil {
			dl := *d.Deadline
			st.Deadline = &dl
			st.SecondsRemaining = ceilSeconds(dl.Sub(now))
		}
	case models.DraftStatusPaused:
		if d.PausedRemaining != nil {
			st.SecondsRemaining = ceilSeconds(*d.PausedRemaining)
		}
	case models.DraftStatusPending:
		st.SecondsRemaining = d.PickSeconds
	}
	return st
}

// ceilSeconds rounds up so a clock never shows 0 while time remains.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// roundFor clamps the derived round to the last round once every slot is
// filled.
func roundFor(d *models.Draft, index int) int {
	if index >= d.TotalPicks() && d.RoundsTotal > 0 {
		return d.RoundsTotal
	}
	return pick.RoundFor(len(d.TeamOrder), index)
}
