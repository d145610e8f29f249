package belief

import (
	"github.com/notnil/chess"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/reconbeth/game"
)

// SenseCandidates are the 36 squares whose 3x3 window lies on the board,
// rank by rank from b2.
func SenseCandidates() []chess.Square {
	out := make([]chess.Square, 0, 36)
	for r := 1; r <= 6; r++ {
		for f := 1; f <= 6; f++ {
			out = append(out, chess.Square(r*game.ColNum+f))
		}
	}
	return out
}

// tally accumulates one distinct window.
type tally struct {
	p float64
	n int
}

// ModalCount groups the hypotheses by the window they show at center,
// buckets those groups by size, and returns the size carrying the most
// probability. Ties go to the size seen first.
func ModalCount(h *Set, center chess.Square) int {
	seen := make(map[game.Window]int)
	var tallies []tally
	for i := 0; i < h.Len(); i++ {
		s := h.State(i)
		w := s.Window(center)
		j, ok := seen[w]
		if !ok {
			j = len(tallies)
			seen[w] = j
			tallies = append(tallies, tally{})
		}
		tallies[j].p += h.Weight(i)
		tallies[j].n++
	}
	if len(tallies) == 0 {
		return 0
	}

	bucket := make(map[int]int)
	var counts []int
	var probs []float64
	for _, t := range tallies {
		j, ok := bucket[t.n]
		if !ok {
			j = len(counts)
			bucket[t.n] = j
			counts = append(counts, t.n)
			probs = append(probs, 0)
		}
		probs[j] += t.p
	}
	return counts[floats.MaxIdx(probs)]
}

// ChooseSense picks the square whose result most likely leaves the fewest
// hypotheses. Only interior squares that are also allowed are considered;
// a nil allowed list permits all of them. Ties go to the earliest candidate.
func ChooseSense(h *Set, allowed []chess.Square) (chess.Square, error) {
	cands := SenseCandidates()
	if allowed != nil {
		ok := make(map[chess.Square]bool, len(allowed))
		for _, sq := range allowed {
			ok[sq] = true
		}
		var kept []chess.Square
		for _, sq := range cands {
			if ok[sq] {
				kept = append(kept, sq)
			}
		}
		if len(kept) == 0 {
			kept = allowed
		}
		cands = kept
	}
	if len(cands) == 0 {
		return chess.NoSquare, errors.New("no sense action available")
	}
	if h.Len() == 0 {
		return cands[0], ErrExhausted
	}

	best, choice := h.Len()+1, cands[0]
	for _, sq := range cands {
		if c := ModalCount(h, sq); c < best {
			best, choice = c, sq
		}
	}
	return choice, nil
}

// FilterSense keeps the hypotheses agreeing with every observation and
// renormalizes. An empty result is reported as ErrExhausted.
func FilterSense(h *Set, obs []game.Observation) (*Set, error) {
	pattern := game.NewPattern(obs)
	out := h.Filter(pattern.Matches)
	if err := out.Normalize(); err != nil {
		return out, errors.Wrapf(err, "sense result %s", pattern)
	}
	return out, nil
}
