package game

import "math"

// maxDistance is the corner-to-corner diagonal of the 100x100 space,
// the worst possible guess.
var maxDistance = math.Hypot(coordinateMax, coordinateMax)

func distance(a, b Coordinate) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// GuessScore maps a guess to 0..100 by linear falloff over Euclidean
// distance from the target. Exact hit scores 100; the far corner
// against a centered target still earns ~50.
func GuessScore(target, guess Coordinate) int {
	s := math.Round(100 * (1 - distance(target, guess)/maxDistance))
	if s < 0 {
		return 0
	}
	return int(s)
}

// ScoreRound computes every per-round score. Guessers score
// individually; the clue-giver earns the rounded mean of the guesser
// scores, plus the flat bonus when every guess landed within
// bonusThreshold of the target. With zero guesses the clue-giver scores
// zero and no bonus is possible.
func ScoreRound(target Coordinate, guesses map[string]Coordinate, clueGiverID string, bonusThreshold float64, bonusPoints int) (scores map[string]int, bonus bool) {
	scores = make(map[string]int, len(guesses)+1)
	if len(guesses) == 0 {
		scores[clueGiverID] = 0
		return scores, false
	}

	sum := 0
	bonus = true
	for id, g := range guesses {
		s := GuessScore(target, g)
		scores[id] = s
		sum += s
		if distance(target, g) > bonusThreshold {
			bonus = false
		}
	}

	giver := int(math.Round(float64(sum) / float64(len(guesses))))
	if bonus {
		giver += bonusPoints
	}
	scores[clueGiverID] = giver
	return scores, bonus
}
