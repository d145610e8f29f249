package game

import (
	"sort"

	"github.com/notnil/chess"
)

// Window is the 3x3 block of pieces around a sensed square, from the lower
// left corner row by row. Off-board cells are empty.
type Window [9]chess.Piece

// Window reads the 3x3 block centred on center.
func (s *State) Window(center chess.Square) Window {
	var w Window
	for i, sq := range WindowSquares(center) {
		if sq != chess.NoSquare {
			w[i] = s.Squares[sq]
		}
	}
	return w
}

// WindowSquares lists the squares covered by sensing center, in Window
// order. Off-board cells are chess.NoSquare.
func WindowSquares(center chess.Square) [9]chess.Square {
	var out [9]chess.Square
	i := 0
	for dr := -1; dr <= 1; dr++ {
		for df := -1; df <= 1; df++ {
			sq, ok := offset(center, delta{df, dr})
			if !ok {
				sq = chess.NoSquare
			}
			out[i] = sq
			i++
		}
	}
	return out
}

func (w Window) String() string {
	b := make([]byte, len(w))
	for i, p := range w {
		b[i] = PieceChar(p)
	}
	return string(b)
}

// Observation is one square reported by a sense, with chess.NoPiece for empty.
type Observation struct {
	Square chess.Square
	Piece  chess.Piece
}

// Pattern is a sense result sorted by square.
type Pattern []Observation

// NewPattern copies and sorts observations.
func NewPattern(obs []Observation) Pattern {
	p := make(Pattern, len(obs))
	copy(p, obs)
	sort.Slice(p, func(i, j int) bool { return p[i].Square < p[j].Square })
	return p
}

// Matches reports whether s agrees with every observation.
func (p Pattern) Matches(s *State) bool {
	for _, o := range p {
		if s.Piece(o.Square) != o.Piece {
			return false
		}
	}
	return true
}

func (p Pattern) String() string {
	b := make([]byte, len(p))
	for i, o := range p {
		b[i] = PieceChar(o.Piece)
	}
	return string(b)
}

// Observe is the pattern s would produce when sensing center.
func (s *State) Observe(center chess.Square) Pattern {
	var p Pattern
	for _, sq := range WindowSquares(center) {
		if sq != chess.NoSquare {
			p = append(p, Observation{Square: sq, Piece: s.Squares[sq]})
		}
	}
	return p
}
