package game

import "math/rand"

// DefaultCodeAlphabet skips 0/O/1/I so codes survive being read aloud.
const DefaultCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the length of generated join codes.
const CodeLength = 6

// maxCodeAttempts bounds rejection sampling so a saturated (or tiny,
// in tests) code space errors out instead of spinning forever.
const maxCodeAttempts = 512

// CodeGenerator mints room join codes. Alphabet and length are
// injectable so tests can exhaust the space deliberately.
type CodeGenerator struct {
	alphabet string
	length   int
	rng      *rand.Rand
}

func NewCodeGenerator(alphabet string, length int, rng *rand.Rand) *CodeGenerator {
	return &CodeGenerator{alphabet: alphabet, length: length, rng: rng}
}

// Generate samples codes until taken reports a free one.
func (g *CodeGenerator) Generate(taken func(string) bool) (string, error) {
	buf := make([]byte, g.length)
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		for i := range buf {
			buf[i] = g.alphabet[g.rng.Intn(len(g.alphabet))]
		}
		code := string(buf)
		if !taken(code) {
			return code, nil
		}
	}
	return "", ErrCodesExhausted
}
