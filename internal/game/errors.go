package game

import "errors"

// ErrorKind buckets game errors for logging and metrics. The wire only
// ever sees the Code.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindRoom
	KindGame
	KindInfra
)

// GameError is the one error type the engine returns to clients. Code
// is a stable machine-readable identifier; Details carries optional
// field-level context for validation failures.
type GameError struct {
	Code    string
	Kind    ErrorKind
	Message string
	Details map[string]any
}

func (e *GameError) Error() string {
	return e.Code + ": " + e.Message
}

// Is matches sentinels by code so errors.Is works across WithDetails
// copies.
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy carrying extra context. Sentinels stay
// immutable.
func (e *GameError) WithDetails(details map[string]any) *GameError {
	clone := *e
	clone.Details = details
	return &clone
}

var (
	ErrRoomNotFound   = &GameError{Code: "room-not-found", Kind: KindRoom, Message: "no room with that code"}
	ErrRoomFull       = &GameError{Code: "room-full", Kind: KindRoom, Message: "room is at capacity"}
	ErrGameInProgress = &GameError{Code: "game-in-progress", Kind: KindRoom, Message: "game already started"}
	ErrDuplicateName  = &GameError{Code: "duplicate-name", Kind: KindRoom, Message: "name already taken in this room"}
	ErrAlreadyInRoom  = &GameError{Code: "already-in-room", Kind: KindRoom, Message: "player already belongs to a room"}
	ErrNotInRoom      = &GameError{Code: "not-in-room", Kind: KindRoom, Message: "player does not belong to a room"}

	ErrNotHost              = &GameError{Code: "not-host", Kind: KindGame, Message: "only the host may do that"}
	ErrNotEnoughPlayers     = &GameError{Code: "not-enough-players", Kind: KindGame, Message: "too few players to start"}
	ErrWrongPhase           = &GameError{Code: "wrong-phase", Kind: KindGame, Message: "operation not allowed in the current phase"}
	ErrNotClueGiver         = &GameError{Code: "not-clue-giver", Kind: KindGame, Message: "only the clue-giver may submit the clue"}
	ErrClueGiverCannotGuess = &GameError{Code: "clue-giver-cannot-guess", Kind: KindGame, Message: "the clue-giver does not guess"}
	ErrAlreadyGuessed       = &GameError{Code: "already-guessed", Kind: KindGame, Message: "first guess already recorded"}

	ErrInvalidName     = &GameError{Code: "invalid-name", Kind: KindValidation, Message: "display name is not acceptable"}
	ErrInvalidCode     = &GameError{Code: "invalid-code", Kind: KindValidation, Message: "room code is not acceptable"}
	ErrInvalidClue     = &GameError{Code: "invalid-clue", Kind: KindValidation, Message: "clue is not acceptable"}
	ErrInvalidGuess    = &GameError{Code: "invalid-guess", Kind: KindValidation, Message: "coordinate is out of bounds"}
	ErrInvalidMessage  = &GameError{Code: "invalid-message", Kind: KindValidation, Message: "chat message is not acceptable"}
	ErrInvalidSettings = &GameError{Code: "invalid-settings", Kind: KindValidation, Message: "room settings are out of bounds"}
	ErrUnknownEvent    = &GameError{Code: "unknown-event", Kind: KindValidation, Message: "unrecognized event type"}
	ErrMalformedEvent  = &GameError{Code: "malformed-event", Kind: KindValidation, Message: "event payload could not be decoded"}

	ErrCodesExhausted = &GameError{Code: "codes-exhausted", Kind: KindInfra, Message: "could not allocate a unique room code"}
	ErrSendBufferFull = &GameError{Code: "send-buffer-full", Kind: KindInfra, Message: "session outbound buffer is full"}
	ErrRateLimited    = &GameError{Code: "rate-limited", Kind: KindInfra, Message: "too many events, slow down"}
	ErrInternal       = &GameError{Code: "internal-error", Kind: KindInfra, Message: "something went wrong"}
)

// AsGameError coerces any error into a *GameError for the wire. Non-game
// errors collapse to internal-error so internals never leak.
func AsGameError(err error) *GameError {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge
	}
	return ErrInternal
}
