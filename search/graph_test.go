package search

import (
	"testing"
	"time"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"

	"github.com/reconbeth/game"
)

var mv = game.MustParseMove

func TestGraphParent(t *testing.T) {
	g := NewGraph(chess.White, game.WhiteKingSide|game.WhiteQueenSide)
	assert.Equal(t, mv("e2e3"), g.Parent(mv("e2e4")))
	assert.Equal(t, game.NullMove, g.Parent(mv("e2e3")))
	assert.Equal(t, mv("a1a7"), g.Parent(mv("a1a8")))
	assert.Equal(t, mv("c1d2"), g.Parent(mv("c1e3")))
	assert.Equal(t, game.NullMove, g.Parent(mv("g1f3")))
	assert.Equal(t, game.NullMove, g.Parent(mv("e7e8q")))
	assert.Equal(t, mv("b7b6"), g.Parent(mv("b7b5")))
	assert.Equal(t, game.NullMove, g.Parent(game.NullMove))

	// castling hangs off the root while the right is held
	assert.Equal(t, game.NullMove, g.Parent(mv("e1g1")))
	assert.Equal(t, game.NullMove, g.Parent(mv("e1c1")))
	assert.Equal(t, mv("e8f8"), g.Parent(mv("e8g8")))

	g = NewGraph(chess.White, game.NoCastling)
	assert.Equal(t, mv("e1f1"), g.Parent(mv("e1g1")))
}

func TestGraphOrder(t *testing.T) {
	g := NewGraph(chess.White, game.NoCastling)
	in := []game.Move{mv("a1a3"), mv("e2e4"), mv("a1a2"), mv("e2e3"), mv("e2e4"), game.NullMove}
	assert.Equal(t, []game.Move{mv("a1a2"), mv("a1a3"), mv("e2e3"), mv("e2e4")}, g.Order(in))

	// a missing link still orders through the nearer ancestor
	in = []game.Move{mv("d1d5"), mv("d1d2")}
	assert.Equal(t, []game.Move{mv("d1d2"), mv("d1d5")}, g.Order(in))
	assert.Equal(t, mv("d1d2"), g.Ancestor(mv("d1d5"), func(m game.Move) bool { return m == mv("d1d2") }))
}

func TestGraphDot(t *testing.T) {
	g := NewGraph(chess.White, game.NoCastling)
	dot, err := g.Dot([]game.Move{mv("e2e4"), mv("g1f3")})
	assert.NoError(t, err)
	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, "e2e3")
	assert.Contains(t, dot, "e2e4")
	assert.Contains(t, dot, "g1f3")
}

func TestQueryTime(t *testing.T) {
	c := DefaultConfig()
	assert.True(t, c.IsValid())
	assert.Equal(t, (30*time.Second-100*time.Millisecond)/20, c.QueryTime(time.Minute, 2, 9))
	assert.Equal(t, 45*time.Millisecond, c.QueryTime(time.Second, 2, 9))
	assert.Equal(t, time.Millisecond, c.QueryTime(50*time.Millisecond, 2, 9))
	assert.Equal(t, time.Duration(0), c.Budget(50*time.Millisecond))
	assert.Equal(t, 30*time.Second-100*time.Millisecond, c.Budget(time.Hour))
	assert.Equal(t, time.Duration(0), c.Budget(0))
	assert.Equal(t, time.Duration(0), c.Budget(-time.Second))
}
