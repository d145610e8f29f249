package search

import (
	"github.com/reconbeth/game"
)

// Candidate is a move with its aggregated value.
type Candidate struct {
	Move  game.Move
	Value float64
}

// byValue is a sortable list of candidates. It sorts the list with best value first
type byValue []Candidate

func (l byValue) Len() int           { return len(l) }
func (l byValue) Less(i, j int) bool { return l[i].Value > l[j].Value }
func (l byValue) Swap(i, j int)      { l[i], l[j] = l[j], l[i] }

// legalSet indexes moves for lookup. A queen promotion also answers for the
// same move without a promotion piece.
func legalSet(moves []game.Move) map[game.Move]bool {
	set := make(map[game.Move]bool, len(moves))
	for _, m := range moves {
		set[m] = true
		if m.Promo != 0 && m.Promo == game.PromoPieces[0] {
			set[m.Bare()] = true
		}
	}
	return set
}
