package belief

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/reconbeth/game"
)

// ErrExhausted is returned when no hypothesis is consistent with what was observed.
var ErrExhausted = errors.New("hypothesis set exhausted")

// Set is a weighted collection of distinct positions. Iteration follows
// insertion order so tie-breaks downstream are reproducible.
type Set struct {
	index   map[game.State]int
	states  []game.State
	weights []float64
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{index: make(map[game.State]int)}
}

// NewSetOf returns a set with the given states at uniform weight. Without
// states the set is empty and ErrExhausted is returned with it.
func NewSetOf(states ...game.State) (*Set, error) {
	h := NewSet()
	for _, s := range states {
		h.Add(s, 1)
	}
	if err := h.Normalize(); err != nil {
		return h, errors.Wrap(err, "new set")
	}
	return h, nil
}

// Add merges p into the weight of s.
func (h *Set) Add(s game.State, p float64) {
	if i, ok := h.index[s]; ok {
		h.weights[i] += p
		return
	}
	h.index[s] = len(h.states)
	h.states = append(h.states, s)
	h.weights = append(h.weights, p)
}

func (h *Set) Len() int {
	if h == nil {
		return 0
	}
	return len(h.states)
}

// State returns the i-th hypothesis in insertion order.
func (h *Set) State(i int) game.State { return h.states[i] }

// Weight returns the weight of the i-th hypothesis.
func (h *Set) Weight(i int) float64 { return h.weights[i] }

// Lookup returns the weight of s.
func (h *Set) Lookup(s game.State) (float64, bool) {
	i, ok := h.index[s]
	if !ok {
		return 0, false
	}
	return h.weights[i], true
}

// Each calls fn for each hypothesis in insertion order.
func (h *Set) Each(fn func(s game.State, p float64)) {
	for i, s := range h.states {
		fn(s, h.weights[i])
	}
}

// Total is the sum of all weights.
func (h *Set) Total() float64 { return floats.Sum(h.weights) }

// Normalize rescales weights to sum to one. An empty or weightless set
// yields ErrExhausted and is left untouched.
func (h *Set) Normalize() error {
	if len(h.weights) == 0 {
		return ErrExhausted
	}
	tot := floats.Sum(h.weights)
	if tot <= 0 {
		return ErrExhausted
	}
	floats.Scale(1/tot, h.weights)
	return nil
}

// Filter returns the hypotheses for which keep holds, weights unchanged.
func (h *Set) Filter(keep func(s *game.State) bool) *Set {
	out := NewSet()
	for i := range h.states {
		if keep(&h.states[i]) {
			out.Add(h.states[i], h.weights[i])
		}
	}
	return out
}

// States returns a copy of the hypotheses in insertion order.
func (h *Set) States() []game.State {
	out := make([]game.State, len(h.states))
	copy(out, h.states)
	return out
}
