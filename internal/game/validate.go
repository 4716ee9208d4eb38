package game

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxNameLen    = 20
	maxClueLen    = 100
	maxChatLen    = 200
	minCodeLen    = 4
	maxCodeLen    = 6
	minRounds     = 1
	maxRounds     = 10
	minRoundSecs  = 30
	maxRoundSecs  = 180
	coordinateMax = 100
)

// ValidatePlayerName trims and checks a display name, returning the
// normalized form.
func ValidatePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return "", ErrInvalidName.WithDetails(map[string]any{"reason": "empty"})
	}
	if n > maxNameLen {
		return "", ErrInvalidName.WithDetails(map[string]any{"reason": "too-long", "max": maxNameLen})
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return "", ErrInvalidName.WithDetails(map[string]any{"reason": "unprintable"})
		}
	}
	return name, nil
}

// ValidateRoomCode normalizes a join code to uppercase and checks its
// shape. Generated codes are always 6 characters; older clients may
// send shorter ones, so 4..6 is accepted.
func ValidateRoomCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < minCodeLen || len(code) > maxCodeLen {
		return "", ErrInvalidCode.WithDetails(map[string]any{"reason": "length"})
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", ErrInvalidCode.WithDetails(map[string]any{"reason": "charset"})
		}
	}
	return code, nil
}

// ValidateClue enforces the clue contract: non-empty after trim, capped
// length, and no digits anywhere (digits could smuggle coordinates).
func ValidateClue(clue string) (string, error) {
	clue = strings.TrimSpace(clue)
	n := utf8.RuneCountInString(clue)
	if n == 0 {
		return "", ErrInvalidClue.WithDetails(map[string]any{"reason": "empty"})
	}
	if n > maxClueLen {
		return "", ErrInvalidClue.WithDetails(map[string]any{"reason": "too-long", "max": maxClueLen})
	}
	for _, r := range clue {
		if unicode.IsDigit(r) {
			return "", ErrInvalidClue.WithDetails(map[string]any{"reason": "digits"})
		}
	}
	return clue, nil
}

// ValidateCoordinate checks bounds and rejects the non-finite values
// JSON decoding can let through via large exponents.
func ValidateCoordinate(c Coordinate) error {
	if math.IsNaN(c.X) || math.IsNaN(c.Y) || math.IsInf(c.X, 0) || math.IsInf(c.Y, 0) {
		return ErrInvalidGuess.WithDetails(map[string]any{"reason": "not-finite"})
	}
	if c.X < 0 || c.X > coordinateMax || c.Y < 0 || c.Y > coordinateMax {
		return ErrInvalidGuess.WithDetails(map[string]any{"reason": "out-of-bounds"})
	}
	return nil
}

// ValidateChatMessage trims and bounds a chat line.
func ValidateChatMessage(msg string) (string, error) {
	msg = strings.TrimSpace(msg)
	n := utf8.RuneCountInString(msg)
	if n == 0 {
		return "", ErrInvalidMessage.WithDetails(map[string]any{"reason": "empty"})
	}
	if n > maxChatLen {
		return "", ErrInvalidMessage.WithDetails(map[string]any{"reason": "too-long", "max": maxChatLen})
	}
	return msg, nil
}

// ValidateSettings fills defaults for zero fields and bounds the rest.
func ValidateSettings(s *RoomSettings, cfg Config) (RoomSettings, error) {
	out := RoomSettings{Rounds: cfg.DefaultRounds, RoundSeconds: cfg.RoundSeconds}
	if s == nil {
		return out, nil
	}
	if s.Rounds != 0 {
		if s.Rounds < minRounds || s.Rounds > maxRounds {
			return RoomSettings{}, ErrInvalidSettings.WithDetails(map[string]any{"field": "rounds", "min": minRounds, "max": maxRounds})
		}
		out.Rounds = s.Rounds
	}
	if s.RoundSeconds != 0 {
		if s.RoundSeconds < minRoundSecs || s.RoundSeconds > maxRoundSecs {
			return RoomSettings{}, ErrInvalidSettings.WithDetails(map[string]any{"field": "roundSeconds", "min": minRoundSecs, "max": maxRoundSecs})
		}
		out.RoundSeconds = s.RoundSeconds
	}
	return out, nil
}
