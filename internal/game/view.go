package game

// PlayerView is the public shape of a room member.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	Ready     bool   `json:"ready"`
	IsHost    bool   `json:"isHost"`
	Score     int    `json:"score"`
}

// RoundView is the live round as one recipient is allowed to see it.
type RoundView struct {
	Number           int         `json:"number"`
	TotalRounds      int         `json:"totalRounds"`
	ClueGiverID      string      `json:"clueGiverId"`
	AxisPair         AxisPair    `json:"axisPair"`
	Clue             string      `json:"clue,omitempty"`
	TargetCoordinate *Coordinate `json:"targetCoordinate"`
	YourGuess        *Coordinate `json:"yourGuess,omitempty"`
	GuessedPlayerIDs []string    `json:"guessedPlayerIds"`
	TimeRemaining    int         `json:"timeRemaining"`
}

// RoomView is a full room snapshot for one recipient.
type RoomView struct {
	ID       string       `json:"id"`
	Code     string       `json:"code"`
	HostID   string       `json:"hostId"`
	Phase    Phase        `json:"phase"`
	Settings RoomSettings `json:"settings"`
	Players  []PlayerView `json:"players"`
	Round    *RoundView   `json:"round,omitempty"`
}

// targetVisibleTo is the one rule deciding who may see the target: the
// clue-giver always, everyone else only once the round is resolved.
func targetVisibleTo(room *Room, playerID string) bool {
	if room.phase == PhaseResults || room.phase == PhaseFinished {
		return true
	}
	return room.round.clueGiverID != "" && room.round.clueGiverID == playerID
}

// visibleTarget returns the target for recipients allowed to see it and
// nil for everyone else. Every outbound payload carrying a target goes
// through here.
func visibleTarget(room *Room, playerID string) *Coordinate {
	if !targetVisibleTo(room, playerID) {
		return nil
	}
	t := room.round.target
	return &t
}

// BuildRoomView projects the room for one recipient.
func BuildRoomView(room *Room, forPlayerID string) RoomView {
	view := RoomView{
		ID:       room.id,
		Code:     room.code,
		HostID:   room.hostID,
		Phase:    room.phase,
		Settings: room.settings,
		Players:  make([]PlayerView, 0, len(room.players)),
	}
	for _, p := range room.players {
		view.Players = append(view.Players, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Connected: p.Connected,
			Ready:     p.Ready,
			IsHost:    p.ID == room.hostID,
			Score:     p.Score,
		})
	}

	if room.round.number == 0 || room.phase == PhaseLobby {
		return view
	}

	round := &RoundView{
		Number:           room.round.number,
		TotalRounds:      room.settings.Rounds,
		ClueGiverID:      room.round.clueGiverID,
		AxisPair:         room.round.axes,
		Clue:             room.round.clue,
		TargetCoordinate: visibleTarget(room, forPlayerID),
		GuessedPlayerIDs: append([]string(nil), room.round.guessOrder...),
		TimeRemaining:    room.round.timeLeft,
	}
	if g, ok := room.round.guesses[forPlayerID]; ok {
		guess := g
		round.YourGuess = &guess
	}
	view.Round = round
	return view
}

// roundStartPayload builds the per-recipient round announcement.
func roundStartPayload(room *Room, forPlayerID string) RoundStartPayload {
	return RoundStartPayload{
		RoundNumber:      room.round.number,
		TotalRounds:      room.settings.Rounds,
		ClueGiverID:      room.round.clueGiverID,
		AxisPair:         room.round.axes,
		TargetCoordinate: visibleTarget(room, forPlayerID),
		Duration:         room.settings.RoundSeconds,
	}
}
