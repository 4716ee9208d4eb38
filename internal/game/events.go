package game

import "encoding/json"

// Inbound event types.
const (
	EventRoomCreate   = "room.create"
	EventRoomJoin     = "room.join"
	EventPlayerLeave  = "player.leave"
	EventPlayerReady  = "player.ready"
	EventGameStart    = "game.start"
	EventSubmitClue   = "game.submitClue"
	EventSubmitGuess  = "game.submitGuess"
	EventRequestState = "game.requestState"
	EventChatSend     = "chat.send"
)

// Outbound event types.
const (
	EventRoomCreated    = "room.created"
	EventRoomJoined     = "room.joined"
	EventPlayerJoined   = "room.playerJoined"
	EventPlayerLeft     = "room.playerLeft"
	EventHostChanged    = "room.hostChanged"
	EventRoomReady      = "room.playerReady"
	EventRoundStart     = "game.roundStart"
	EventClueSubmitted  = "game.clueSubmitted"
	EventGuessSubmitted = "game.guessSubmitted"
	EventRoundEnd       = "game.roundEnd"
	EventGameFinished   = "game.finished"
	EventPhaseChange    = "game.phaseChange"
	EventTimerUpdate    = "timer.update"
	EventGameState      = "game.state"
	EventChatMessage    = "chat.message"
	EventError          = "error"
)

// Envelope is the frame every client message arrives in.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event is an outbound frame before encoding.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// --- inbound payloads ---

type CreateRoomRequest struct {
	PlayerName string        `json:"playerName"`
	Settings   *RoomSettings `json:"settings,omitempty"`
}

type JoinRoomRequest struct {
	PlayerName string `json:"playerName"`
	RoomCode   string `json:"roomCode"`
}

type ReadyRequest struct {
	Ready bool `json:"ready"`
}

type SubmitClueRequest struct {
	Clue string `json:"clue"`
}

type SubmitGuessRequest struct {
	Coordinate Coordinate `json:"coordinate"`
}

type ChatSendRequest struct {
	Message string `json:"message"`
}

// --- outbound payloads ---

type RoomCreatedPayload struct {
	PlayerID string   `json:"playerId"`
	Room     RoomView `json:"room"`
}

type RoomJoinedPayload struct {
	PlayerID string   `json:"playerId"`
	Room     RoomView `json:"room"`
}

type PlayerJoinedPayload struct {
	Player PlayerView `json:"player"`
}

type PlayerLeftPayload struct {
	PlayerID       string `json:"playerId"`
	IsDisconnected bool   `json:"isDisconnected"`
}

type HostChangedPayload struct {
	HostID string `json:"hostId"`
}

type PlayerReadyPayload struct {
	PlayerID string `json:"playerId"`
	Ready    bool   `json:"ready"`
}

type RoundStartPayload struct {
	RoundNumber      int         `json:"roundNumber"`
	TotalRounds      int         `json:"totalRounds"`
	ClueGiverID      string      `json:"clueGiverId"`
	AxisPair         AxisPair    `json:"axisPair"`
	TargetCoordinate *Coordinate `json:"targetCoordinate"`
	Duration         int         `json:"duration"`
}

type ClueSubmittedPayload struct {
	Clue string `json:"clue"`
}

type GuessSubmittedPayload struct {
	PlayerID      string `json:"playerId"`
	GuessedCount  int    `json:"guessedCount"`
	TotalGuessers int    `json:"totalGuessers"`
}

type GuessView struct {
	PlayerID   string     `json:"playerId"`
	Coordinate Coordinate `json:"coordinate"`
}

// BestGuessView is the closest guess of the round. Ties go to the
// earlier submission.
type BestGuessView struct {
	PlayerID   string     `json:"playerId"`
	Coordinate Coordinate `json:"coordinate"`
	Score      int        `json:"score"`
}

type RoundEndPayload struct {
	RoundNumber      int            `json:"roundNumber"`
	TargetCoordinate Coordinate     `json:"targetCoordinate"`
	Guesses          []GuessView    `json:"guesses"`
	RoundScores      map[string]int `json:"roundScores"`
	TotalScores      map[string]int `json:"totalScores"`
	BonusAwarded     bool           `json:"bonusAwarded"`
	BestGuess        *BestGuessView `json:"bestGuess"`
}

type GameStats struct {
	RoundsPlayed    int `json:"roundsPlayed"`
	DurationSeconds int `json:"durationSeconds"`
	AxisPairsUsed   int `json:"axisPairsUsed"`
}

type GameFinishedPayload struct {
	FinalScores map[string]int `json:"finalScores"`
	WinnerID    string         `json:"winnerId"`
	Stats       GameStats      `json:"stats"`
}

type PhaseChangePayload struct {
	Phase Phase `json:"phase"`
}

type TimerUpdatePayload struct {
	TimeRemaining int   `json:"timeRemaining"`
	Phase         Phase `json:"phase"`
}

type GameStatePayload struct {
	PlayerID string   `json:"playerId"`
	Room     RoomView `json:"room"`
}

type ChatMessagePayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
	SentAt     int64  `json:"sentAt"`
}

type ErrorPayload struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
