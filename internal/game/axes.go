package game

import (
	"math/rand"
	"sort"
)

// Spectrum is one labeled axis from the built-in deck. The ID is stable
// and only used for per-room freshness tracking.
type Spectrum struct {
	ID   string
	Axis Axis
}

// DefaultSpectrums returns the built-in deck. The engine copies it at
// construction so tests can substitute a tiny deterministic deck.
func DefaultSpectrums() []Spectrum {
	return []Spectrum{
		{"cold-hot", Axis{"Cold", "Hot"}},
		{"quiet-loud", Axis{"Quiet", "Loud"}},
		{"soft-hard", Axis{"Soft", "Hard"}},
		{"cheap-expensive", Axis{"Cheap", "Expensive"}},
		{"common-rare", Axis{"Common", "Rare"}},
		{"boring-exciting", Axis{"Boring", "Exciting"}},
		{"casual-formal", Axis{"Casual", "Formal"}},
		{"safe-dangerous", Axis{"Safe", "Dangerous"}},
		{"dry-wet", Axis{"Dry", "Wet"}},
		{"light-heavy", Axis{"Light", "Heavy"}},
		{"rough-smooth", Axis{"Rough", "Smooth"}},
		{"simple-complex", Axis{"Simple", "Complex"}},
		{"slow-fast", Axis{"Slow", "Fast"}},
		{"small-large", Axis{"Small", "Large"}},
		{"sweet-savory", Axis{"Sweet", "Savory"}},
		{"ugly-beautiful", Axis{"Ugly", "Beautiful"}},
		{"useless-useful", Axis{"Useless", "Useful"}},
		{"weak-strong", Axis{"Weak", "Strong"}},
		{"young-old", Axis{"Young", "Old"}},
		{"serious-funny", Axis{"Serious", "Funny"}},
		{"natural-artificial", Axis{"Natural", "Artificial"}},
		{"clean-dirty", Axis{"Clean", "Dirty"}},
		{"ancient-modern", Axis{"Ancient", "Modern"}},
		{"fragile-durable", Axis{"Fragile", "Durable"}},
	}
}

// pickAxisPair selects two distinct spectrums, preferring the ones the
// room has seen least recently. used is the room's history, oldest
// first; the two chosen ids are appended to it.
func pickAxisPair(rng *rand.Rand, catalog []Spectrum, used []string) (AxisPair, []string) {
	lastUse := make(map[string]int, len(used))
	for i, id := range used {
		lastUse[id] = i
	}

	// Random permutation first so freshness ties break randomly, then a
	// stable sort by recency keeps never-used spectrums in front.
	order := rng.Perm(len(catalog))
	sort.SliceStable(order, func(a, b int) bool {
		ia, oka := lastUse[catalog[order[a]].ID]
		ib, okb := lastUse[catalog[order[b]].ID]
		if oka != okb {
			return !oka
		}
		if !oka {
			return false
		}
		return ia < ib
	})

	x := catalog[order[0]]
	y := catalog[order[1]]
	used = append(used, x.ID, y.ID)
	return AxisPair{X: x.Axis, Y: y.Axis}, used
}
