package game

import (
	"testing"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMove(t *testing.T) {
	m, err := ParseMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, Move{From: chess.E2, To: chess.E4}, m)
	assert.Equal(t, "e2e4", m.String())

	m, err = ParseMove("a7a8q")
	require.NoError(t, err)
	assert.Equal(t, chess.Queen, m.Promo)
	assert.Equal(t, "a7a8q", m.String())
	assert.Equal(t, Move{From: chess.A7, To: chess.A8}, m.Bare())

	m, err = ParseMove("0000")
	require.NoError(t, err)
	assert.True(t, m.IsNull())
	assert.Equal(t, "0000", NullMove.String())

	for _, bad := range []string{"e9e4", "e2e4x", "e2"} {
		_, err := ParseMove(bad)
		assert.Equal(t, ErrBadMove, errors.Cause(err), bad)
	}
}

func TestCastlingMove(t *testing.T) {
	assert.Equal(t, "e1g1", CastlingMove(chess.White, chess.KingSide).String())
	assert.Equal(t, "e1c1", CastlingMove(chess.White, chess.QueenSide).String())
	assert.Equal(t, "e8g8", CastlingMove(chess.Black, chess.KingSide).String())
	assert.Equal(t, "e8c8", CastlingMove(chess.Black, chess.QueenSide).String())
}

func TestWindow(t *testing.T) {
	s := NewState()
	assert.Equal(t, "RNBPPP...", s.Window(chess.B2).String())

	obs := []Observation{
		{chess.C3, chess.NoPiece}, {chess.A1, chess.WhiteRook}, {chess.B1, chess.WhiteKnight},
		{chess.C1, chess.WhiteBishop}, {chess.A2, chess.WhitePawn}, {chess.B2, chess.WhitePawn},
		{chess.C2, chess.WhitePawn}, {chess.A3, chess.NoPiece}, {chess.B3, chess.NoPiece},
	}
	p := NewPattern(obs)
	assert.Equal(t, chess.A1, p[0].Square)
	assert.Equal(t, "RNBPPP...", p.String())
	assert.True(t, p.Matches(&s))
	assert.Equal(t, p, s.Observe(chess.B2))

	other := MustParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/1NBQKBNR w Kkq - 0 1")
	assert.False(t, p.Matches(&other))

	corner := WindowSquares(chess.A1)
	assert.Equal(t, chess.NoSquare, corner[0])
	assert.Equal(t, chess.A1, corner[4])
	assert.Len(t, s.Observe(chess.A1), 4)
}
