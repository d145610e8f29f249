package belief

import (
	"testing"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconbeth/game"
)

const noRookFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/1NBQKBNR w Kkq - 0 1"

func cornerObservations(c3 chess.Piece) []game.Observation {
	return []game.Observation{
		{Square: chess.A1, Piece: chess.WhiteRook},
		{Square: chess.B1, Piece: chess.WhiteKnight},
		{Square: chess.C1, Piece: chess.WhiteBishop},
		{Square: chess.A2, Piece: chess.WhitePawn},
		{Square: chess.B2, Piece: chess.WhitePawn},
		{Square: chess.C2, Piece: chess.WhitePawn},
		{Square: chess.A3, Piece: chess.NoPiece},
		{Square: chess.B3, Piece: chess.NoPiece},
		{Square: chess.C3, Piece: c3},
	}
}

func TestSenseCandidates(t *testing.T) {
	cands := SenseCandidates()
	require.Len(t, cands, 36)
	assert.Equal(t, chess.B2, cands[0])
	assert.Equal(t, chess.G7, cands[35])
}

func TestChooseSense(t *testing.T) {
	h := uniform(t, game.NewState(), game.MustParseFEN(noRookFEN))
	assert.Equal(t, 1, ModalCount(h, chess.B2))
	assert.Equal(t, 2, ModalCount(h, chess.C3))

	sq, err := ChooseSense(h, nil)
	require.NoError(t, err)
	assert.Equal(t, chess.B2, sq)

	sq, err = ChooseSense(h, []chess.Square{chess.D4, chess.C3})
	require.NoError(t, err)
	assert.Equal(t, chess.C3, sq)
}

func TestChooseSenseEmpty(t *testing.T) {
	sq, err := ChooseSense(NewSet(), nil)
	assert.Equal(t, ErrExhausted, errors.Cause(err))
	assert.Equal(t, chess.B2, sq)
}

func TestModalCountPrefersProbableBucket(t *testing.T) {
	// three positions differ on b2's window, the fourth repeats the first
	a := game.NewState()
	b := game.MustParseFEN(noRookFEN)
	c := game.MustParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/R1BQKBNR w KQkq - 0 1")
	d := game.MustParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBN1 w Qkq - 0 1")
	h := NewSet()
	h.Add(a, 0.4)
	h.Add(b, 0.1)
	h.Add(c, 0.1)
	h.Add(d, 0.4)
	require.NoError(t, h.Normalize())
	// a and d share the b2 window: buckets {2: 0.8, 1: 0.2}
	assert.Equal(t, 2, ModalCount(h, chess.B2))
}

func TestFilterSense(t *testing.T) {
	h := uniform(t, game.NewState(), game.MustParseFEN(noRookFEN))

	kept, err := FilterSense(h, cornerObservations(chess.NoPiece))
	require.NoError(t, err)
	require.Equal(t, 1, kept.Len())
	assert.Equal(t, game.NewState(), kept.State(0))
	assert.InDelta(t, 1.0, kept.Weight(0), 1e-12)

	again, err := FilterSense(kept, cornerObservations(chess.NoPiece))
	require.NoError(t, err)
	assert.Equal(t, kept.States(), again.States())

	none, err := FilterSense(h, cornerObservations(chess.WhitePawn))
	assert.Equal(t, ErrExhausted, errors.Cause(err))
	assert.Equal(t, 0, none.Len())
}
