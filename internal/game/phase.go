package game

import (
	"encoding/json"
	"fmt"
)

// Phase is the room's position in the round state machine. Transitions
// only ever happen on the router loop.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseGivingClue
	PhaseGuessing
	PhaseResults
	PhaseWaiting
	PhaseFinished
)

var phaseNames = map[Phase]string{
	PhaseLobby:      "lobby",
	PhaseGivingClue: "giving-clue",
	PhaseGuessing:   "guessing",
	PhaseResults:    "results",
	PhaseWaiting:    "waiting",
	PhaseFinished:   "finished",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// MarshalJSON emits the wire name, never the numeric value.
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for ph, name := range phaseNames {
		if name == s {
			*p = ph
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", s)
}

// roundActive reports whether a round is currently being played, i.e.
// the phases during which the countdown timer runs.
func (p Phase) roundActive() bool {
	return p == PhaseGivingClue || p == PhaseGuessing
}

// joinable reports whether new players may still enter the room: in the
// lobby and in the pause between rounds.
func (p Phase) joinable() bool {
	return p == PhaseLobby || p == PhaseWaiting
}
