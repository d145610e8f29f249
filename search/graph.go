package search

import (
	"github.com/awalterschulze/gographviz"
	"github.com/notnil/chess"
	"github.com/pkg/errors"

	"github.com/reconbeth/game"
)

// Graph maps each move along a queen line to the move one step shorter on
// the same line. One-step moves, knight jumps, promotions and castling hang
// off the root, which is the null move.
//
// If the parent of a move is illegal in some position, the move itself is
// blocked in that position and ends where the parent would have.
type Graph struct {
	parent map[game.Move]game.Move
}

// NewGraph builds the graph for color, given its current castling rights.
func NewGraph(color chess.Color, rights game.Castling) *Graph {
	g := &Graph{parent: make(map[game.Move]game.Move, 64*28)}
	for sq := chess.A1; sq <= chess.H8; sq++ {
		for _, d := range game.Directions {
			prev := game.NullMove
			for n := 1; ; n++ {
				to, ok := game.Step(sq, d[0], d[1], n)
				if !ok {
					break
				}
				m := game.NewMove(sq, to)
				g.parent[m] = prev
				prev = m
			}
		}
	}
	for _, side := range []chess.Side{chess.KingSide, chess.QueenSide} {
		if rights.Has(color, side) {
			g.parent[game.CastlingMove(color, side)] = game.NullMove
		}
	}
	return g
}

// Parent returns the parent of m, or the root for moves the graph does not
// know. The promotion piece is ignored.
func (g *Graph) Parent(m game.Move) game.Move {
	if m.IsNull() {
		return game.NullMove
	}
	if p, ok := g.parent[m.Bare()]; ok {
		return p
	}
	return game.NullMove
}

// Ancestor walks up from m and returns the first strict ancestor for which
// known holds, or the root.
func (g *Graph) Ancestor(m game.Move, known func(game.Move) bool) game.Move {
	for p := g.Parent(m); !p.IsNull(); p = g.Parent(p) {
		if known(p) {
			return p
		}
	}
	return game.NullMove
}

// Order sorts moves so that every move comes after any of its ancestors in
// the list. Moves keep their relative input order otherwise; duplicates are
// dropped.
func (g *Graph) Order(moves []game.Move) []game.Move {
	in := make(map[game.Move]bool, len(moves))
	for _, m := range moves {
		in[m] = true
	}
	out := make([]game.Move, 0, len(moves))
	done := make(map[game.Move]bool, len(moves))
	var visit func(m game.Move)
	visit = func(m game.Move) {
		if done[m] {
			return
		}
		done[m] = true
		if p := g.Ancestor(m, func(a game.Move) bool { return in[a] }); !p.IsNull() {
			visit(p)
		}
		out = append(out, m)
	}
	for _, m := range moves {
		if !m.IsNull() {
			visit(m)
		}
	}
	return out
}

// Dot renders the subgraph spanned by moves and their ancestors in DOT.
func (g *Graph) Dot(moves []game.Move) (string, error) {
	const name = "submoves"
	gv := gographviz.NewEscape()
	if err := gv.SetName(name); err != nil {
		return "", errors.WithStack(err)
	}
	if err := gv.SetDir(true); err != nil {
		return "", errors.WithStack(err)
	}
	added := make(map[game.Move]bool)
	add := func(m game.Move) error {
		if added[m] {
			return nil
		}
		added[m] = true
		return gv.AddNode(name, m.String(), nil)
	}
	if err := add(game.NullMove); err != nil {
		return "", errors.WithStack(err)
	}
	linked := make(map[game.Move]bool)
	for _, m := range moves {
		for cur := m; !cur.IsNull() && !linked[cur]; cur = g.Parent(cur) {
			linked[cur] = true
			if err := add(cur); err != nil {
				return "", errors.WithStack(err)
			}
			p := g.Parent(cur)
			if err := add(p); err != nil {
				return "", errors.WithStack(err)
			}
			if err := gv.AddEdge(p.String(), cur.String(), true, nil); err != nil {
				return "", errors.WithStack(err)
			}
		}
	}
	return gv.String(), nil
}
