package search

import (
	"context"
	"testing"
	"time"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconbeth/belief"
	"github.com/reconbeth/game"
	"github.com/reconbeth/oracle"
)

// fakeEval answers from a table keyed by "<fen> <root>"; unknown keys score 0cp.
type fakeEval struct {
	scores   map[string]oracle.Score
	fail     map[string]bool
	calls    []string
	restarts int
}

func key(fen string, root string) string { return fen + " " + root }

func (f *fakeEval) Start(context.Context) error { return nil }
func (f *fakeEval) Close() error                { return nil }

func (f *fakeEval) Restart(context.Context) error {
	f.restarts++
	return nil
}

func (f *fakeEval) Evaluate(_ context.Context, s game.State, _ time.Duration, root game.Move) oracle.Result {
	k := key(s.FEN(), root.String())
	f.calls = append(f.calls, k)
	if f.fail[k] {
		return oracle.Result{Err: errors.New("engine crashed")}
	}
	return oracle.Result{Score: f.scores[k]}
}

func uniform(t *testing.T, states ...game.State) *belief.Set {
	h, err := belief.NewSetOf(states...)
	require.NoError(t, err)
	return h
}

func value(t *testing.T, dec Decision, m game.Move) float64 {
	for _, c := range dec.Candidates {
		if c.Move == m {
			return c.Value
		}
	}
	t.Fatalf("no candidate %v", m)
	return 0
}

const afterPassFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1"

func TestChooseBlockedMovesInherit(t *testing.T) {
	start := game.StartingFEN
	f := &fakeEval{scores: map[string]oracle.Score{
		key(afterPassFEN, "0000"): {CP: 0},
		key(start, "e2e4"):        {CP: 100},
		key(start, "e2e3"):        {CP: 0},
		key(start, "d2d4"):        {CP: 50},
		key(start, "b1c3"):        {CP: -50},
	}}
	sc := New(DefaultConfig(), f, zerolog.Nop())
	h := uniform(t, game.NewState())
	actions := []game.Move{mv("a1a3"), mv("e2e4"), mv("e2e3"), mv("a1a2"), mv("b1c3"), mv("f1b5"), mv("d2d4")}

	dec, err := sc.Choose(context.Background(), h, chess.White, game.WhiteKingSide|game.WhiteQueenSide, actions, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, mv("e2e4"), dec.Move)
	assert.Len(t, f.calls, 5)
	assert.Equal(t, 5, dec.Queries)

	pass := value(t, dec, game.NullMove)
	assert.InDelta(t, 0.5, pass, 1e-6)
	assert.InDelta(t, pass, value(t, dec, mv("a1a2")), 1e-9)
	assert.InDelta(t, pass, value(t, dec, mv("a1a3")), 1e-9)
	assert.InDelta(t, pass, value(t, dec, mv("f1b5")), 1e-9)
	assert.InDelta(t, 0.640, value(t, dec, mv("e2e4")), 1e-3)
	assert.Equal(t, game.NullMove, dec.Candidates[0].Move)
}

func TestChooseKingCapture(t *testing.T) {
	f := &fakeEval{}
	sc := New(DefaultConfig(), f, zerolog.Nop())
	h := uniform(t, game.MustParseFEN("4k3/8/8/8/8/8/8/4QK2 w - - 0 1"))
	dec, err := sc.Choose(context.Background(), h, chess.White, game.NoCastling,
		[]game.Move{mv("e1e2"), mv("e1e8"), mv("f1g1")}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, mv("e1e8"), dec.Move)
	assert.Equal(t, 1.0, dec.Value)
	assert.Equal(t, 0.0, value(t, dec, game.NullMove))
	assert.Equal(t, 0.0, value(t, dec, mv("e1e2")))
	assert.Empty(t, f.calls)
}

func TestChooseCheckmatedIsNeutral(t *testing.T) {
	f := &fakeEval{}
	sc := New(DefaultConfig(), f, zerolog.Nop())
	h := uniform(t, game.MustParseFEN("4k3/8/8/8/8/8/5PPP/r5K1 w - - 0 1"))
	dec, err := sc.Choose(context.Background(), h, chess.White, game.NoCastling,
		[]game.Move{mv("g1f1"), mv("h2h3"), mv("g1h1")}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, game.NullMove, dec.Move)
	for _, c := range dec.Candidates {
		assert.InDelta(t, 0.5, c.Value, 1e-9)
	}
	assert.Empty(t, f.calls)
}

func TestChooseOracleFailure(t *testing.T) {
	start := game.StartingFEN
	f := &fakeEval{
		scores: map[string]oracle.Score{
			key(afterPassFEN, "0000"): {CP: 200},
			key(start, "e2e4"):        {CP: 300},
			key(start, "d2d4"):        {CP: 50},
		},
		fail: map[string]bool{key(start, "e2e4"): true},
	}
	sc := New(DefaultConfig(), f, zerolog.Nop())
	dec, err := sc.Choose(context.Background(), uniform(t, game.NewState()), chess.White, game.NoCastling,
		[]game.Move{mv("e2e4"), mv("d2d4")}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, mv("d2d4"), dec.Move)
	assert.Equal(t, 1, f.restarts)
	assert.Equal(t, 1, dec.Failed)
	assert.InDelta(t, 0.5, value(t, dec, mv("e2e4")), 1e-9)
}

func TestChooseAggregation(t *testing.T) {
	a := game.NewState()
	b := game.MustParseFEN("rnbqkbnr/ppppppp1/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	f := &fakeEval{scores: map[string]oracle.Score{
		key(a.Push(game.NullMove).FEN(), "0000"): {CP: 400},
		key(b.Push(game.NullMove).FEN(), "0000"): {CP: 400},
		key(a.FEN(), "e2e4"):                     {CP: 800},
		key(b.FEN(), "e2e4"):                     {CP: -100},
		key(a.FEN(), "d2d4"):                     {CP: 50},
		key(b.FEN(), "d2d4"):                     {CP: 50},
	}}
	h := uniform(t, a, b)
	actions := []game.Move{mv("e2e4"), mv("d2d4")}

	sc := New(DefaultConfig(), f, zerolog.Nop())
	dec, err := sc.Choose(context.Background(), h, chess.White, game.NoCastling, actions, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, mv("e2e4"), dec.Move)
	assert.InDelta(t, 0.0909, value(t, dec, game.NullMove), 1e-3)

	conf := DefaultConfig()
	conf.Aggregation = Minimax
	sc = New(conf, f, zerolog.Nop())
	dec, err = sc.Choose(context.Background(), h, chess.White, game.NoCastling, actions, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, mv("d2d4"), dec.Move)
}

func TestChooseOutOfTime(t *testing.T) {
	f := &fakeEval{}
	sc := New(DefaultConfig(), f, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dec, err := sc.Choose(ctx, uniform(t, game.NewState()), chess.White, game.NoCastling,
		[]game.Move{mv("e2e4"), mv("d2d4")}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, game.NullMove, dec.Move)
	assert.Equal(t, 3, dec.Skipped)
	assert.Empty(t, f.calls)
}

// stuckEval never answers before the context ends.
type stuckEval struct {
	stuck        bool
	restarts     int
	restartDelay time.Duration
}

func (f *stuckEval) Start(context.Context) error { return nil }
func (f *stuckEval) Close() error                { return nil }

func (f *stuckEval) Restart(context.Context) error {
	f.restarts++
	time.Sleep(f.restartDelay)
	return nil
}

func (f *stuckEval) Evaluate(ctx context.Context, _ game.State, _ time.Duration, _ game.Move) oracle.Result {
	if !f.stuck {
		return oracle.Result{}
	}
	<-ctx.Done()
	return oracle.Result{Err: ctx.Err()}
}

func TestChooseStaysWithinClock(t *testing.T) {
	f := &stuckEval{stuck: true, restartDelay: 300 * time.Millisecond}
	sc := New(DefaultConfig(), f, zerolog.Nop())
	remaining := 500 * time.Millisecond

	start := time.Now()
	dec, err := sc.Choose(context.Background(), uniform(t, game.NewState()), chess.White, game.NoCastling,
		[]game.Move{mv("e2e4"), mv("d2d4")}, remaining)
	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.Less(t, int64(elapsed), int64(remaining))
	assert.Equal(t, game.NullMove, dec.Move)
	assert.Equal(t, 0, dec.Failed)
	assert.Equal(t, 3, dec.Skipped)
	assert.Equal(t, 0, f.restarts)

	// the busy session is replaced at the start of the next turn
	f.stuck = false
	f.restartDelay = 0
	dec, err = sc.Choose(context.Background(), uniform(t, game.NewState()), chess.White, game.NoCastling,
		[]game.Move{mv("e2e4")}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, f.restarts)
	assert.Equal(t, 0, dec.Skipped)
}

func TestChooseNoClock(t *testing.T) {
	f := &fakeEval{}
	sc := New(DefaultConfig(), f, zerolog.Nop())
	dec, err := sc.Choose(context.Background(), uniform(t, game.NewState()), chess.White, game.NoCastling,
		[]game.Move{mv("e2e4")}, 0)
	require.NoError(t, err)
	assert.Equal(t, game.NullMove, dec.Move)
	assert.Equal(t, 2, dec.Skipped)
	assert.Empty(t, f.calls)
}

func TestChooseEmptySet(t *testing.T) {
	sc := New(DefaultConfig(), &fakeEval{}, zerolog.Nop())
	dec, err := sc.Choose(context.Background(), belief.NewSet(), chess.White, game.NoCastling, nil, time.Minute)
	assert.Equal(t, belief.ErrExhausted, errors.Cause(err))
	assert.Equal(t, game.NullMove, dec.Move)
}
