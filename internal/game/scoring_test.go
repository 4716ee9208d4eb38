package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuessScore(t *testing.T) {
	tests := []struct {
		name   string
		target Coordinate
		guess  Coordinate
		want   int
	}{
		{"exact hit", Coordinate{50, 50}, Coordinate{50, 50}, 100},
		{"corner from center", Coordinate{50, 50}, Coordinate{100, 100}, 50},
		{"opposite corners", Coordinate{0, 0}, Coordinate{100, 100}, 0},
		{"ten away", Coordinate{50, 50}, Coordinate{50, 60}, 93},
		{"symmetric", Coordinate{25, 75}, Coordinate{75, 25}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessScore(tt.target, tt.guess))
		})
	}
}

func TestGuessScoreDeterministic(t *testing.T) {
	target := Coordinate{33.3, 66.6}
	guess := Coordinate{12.1, 88.8}

	first := GuessScore(target, guess)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, GuessScore(target, guess))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.LessOrEqual(t, first, 100)
}

func TestScoreRoundBonusAllOrNothing(t *testing.T) {
	target := Coordinate{50, 50}

	t.Run("all within threshold", func(t *testing.T) {
		guesses := map[string]Coordinate{
			"p1": {50, 60}, // distance 10, score 93
			"p2": {50, 65}, // distance 15 sits exactly on the threshold
		}
		scores, bonus := ScoreRound(target, guesses, "giver", 15, 25)

		assert.True(t, bonus)
		assert.Equal(t, 93, scores["p1"])
		assert.Equal(t, 89, scores["p2"])
		// mean(93,89)=91, plus the bonus
		assert.Equal(t, 116, scores["giver"])
	})

	t.Run("one stray kills the bonus", func(t *testing.T) {
		guesses := map[string]Coordinate{
			"p1": {50, 60},
			"p2": {50, 65},
			"p3": {50, 70}, // distance 20, outside
		}
		scores, bonus := ScoreRound(target, guesses, "giver", 15, 25)

		assert.False(t, bonus)
		assert.Equal(t, 86, scores["p3"])
		// mean(93,89,86)=89.33 rounds to 89, no bonus
		assert.Equal(t, 89, scores["giver"])
	})
}

func TestScoreRoundNoGuesses(t *testing.T) {
	scores, bonus := ScoreRound(Coordinate{10, 10}, nil, "giver", 15, 25)

	assert.False(t, bonus)
	assert.Equal(t, map[string]int{"giver": 0}, scores)
}
