package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/reconbeth/belief"
	"github.com/reconbeth/game"
	"github.com/reconbeth/oracle"
)

// Decision is the outcome of one move selection.
type Decision struct {
	Move       game.Move   // game.NullMove means pass
	Value      float64     // aggregated value of Move
	Candidates []Candidate // the pass first, then moves in evaluation order

	PerQuery time.Duration
	Queries  int // oracle calls made
	Failed   int // oracle calls that returned no score
	Skipped  int // queries replaced by the neutral score once the turn ran out
}

// Scorer picks moves by scoring every requestable move in every hypothesis.
type Scorer struct {
	Config
	eval oracle.Evaluator
	log  zerolog.Logger

	// a query was cut off by the turn deadline and left the session busy
	stale bool
}

// New creates a Scorer.
func New(conf Config, eval oracle.Evaluator, log zerolog.Logger) *Scorer {
	return &Scorer{
		Config: conf,
		eval:   eval,
		log:    log.With().Str("component", "search").Logger(),
	}
}

// Choose selects the move, or the pass, with the best aggregated score over
// h. rights are color's own castling rights; remaining is the game clock.
//
// Moves that cannot be played in a hypothesis are not sent to the oracle:
// they inherit the score of their nearest scored ancestor in the submove
// graph, which is what the move would actually do.
func (sc *Scorer) Choose(ctx context.Context, h *belief.Set, color chess.Color, rights game.Castling, actions []game.Move, remaining time.Duration) (Decision, error) {
	if h.Len() == 0 {
		return Decision{Move: game.NullMove}, errors.Wrap(belief.ErrExhausted, "choose move")
	}
	graph := NewGraph(color, rights)
	moves := graph.Order(actions)
	cands := append([]game.Move{game.NullMove}, moves...)

	dec := Decision{PerQuery: sc.QueryTime(remaining, h.Len(), len(moves))}
	turnCtx, cancel := context.WithTimeout(ctx, sc.Budget(remaining))
	defer cancel()
	if sc.stale {
		sc.reset(turnCtx)
	}

	values := make([]float64, len(cands))
	if sc.Aggregation == Minimax {
		for i := range values {
			values[i] = math.Inf(1)
		}
	}
	for i := 0; i < h.Len(); i++ {
		s := h.State(i)
		p := h.Weight(i)
		row := sc.scoreHypothesis(turnCtx, &s, color, graph, moves, &dec)
		for j, m := range cands {
			v := float64(row[m])
			switch sc.Aggregation {
			case Minimax:
				values[j] = math.Min(values[j], v)
			default:
				values[j] += p * v
			}
		}
	}

	best := floats.MaxIdx(values)
	dec.Move = cands[best]
	dec.Value = values[best]
	dec.Candidates = make([]Candidate, len(cands))
	for j, m := range cands {
		dec.Candidates[j] = Candidate{Move: m, Value: values[j]}
	}

	sc.logDecision(dec, h.Len())
	return dec, nil
}

// scoreHypothesis returns a score in [0, 1] for the pass and every move,
// from color's point of view, assuming s is the true position.
func (sc *Scorer) scoreHypothesis(ctx context.Context, s *game.State, color chess.Color, graph *Graph, moves []game.Move, dec *Decision) map[game.Move]float32 {
	row := make(map[game.Move]float32, len(moves)+1)

	if s.IsCheckmate() {
		row[game.NullMove] = sc.Neutral
		for _, m := range moves {
			row[m] = sc.Neutral
		}
		return row
	}

	if king := s.KingSquare(color.Other()); king != chess.NoSquare && len(s.PseudoLegalCaptures(king)) > 0 {
		row[game.NullMove] = 0
		for _, m := range moves {
			if m.To == king {
				row[m] = 1
			} else {
				row[m] = 0
			}
		}
		return row
	}

	row[game.NullMove] = sc.query(ctx, s.Push(game.NullMove), game.NullMove, color, dec)
	legal := legalSet(s.PseudoLegalMoves())
	for _, m := range moves {
		if legal[m] {
			row[m] = sc.query(ctx, *s, m, color, dec)
			continue
		}
		anc := graph.Ancestor(m, func(a game.Move) bool {
			_, ok := row[a]
			return ok
		})
		row[m] = row[anc]
	}
	return row
}

// query asks the oracle about s, restricted to root unless it is the pass.
// Failures and an expired turn both score neutral. A failure restarts the
// oracle within the turn; a query cut off by the turn deadline leaves the
// restart to the next turn.
func (sc *Scorer) query(ctx context.Context, s game.State, root game.Move, color chess.Color, dec *Decision) float32 {
	if ctx.Err() != nil {
		dec.Skipped++
		return sc.Neutral
	}
	dec.Queries++
	res := sc.eval.Evaluate(ctx, s, dec.PerQuery, root)
	switch {
	case res.Failed() && ctx.Err() != nil:
		dec.Skipped++
		sc.stale = true
		sc.log.Debug().Err(res.Err).Stringer("root", root).Msg("oracle query cut off by turn deadline")
		return res.WinProbability(sc.Neutral)
	case res.Failed():
		dec.Failed++
		sc.log.Warn().Err(res.Err).
			Dur("limit", dec.PerQuery).
			Stringer("root", root).
			Str("fen", s.FEN()).
			Str("board", s.Draw()).
			Msg("oracle query failed")
		sc.reset(ctx)
		return res.WinProbability(sc.Neutral)
	}
	p := res.WinProbability(sc.Neutral)
	if s.Turn != color {
		p = 1 - p
	}
	return p
}

// reset restarts the oracle, bounded by ctx.
func (sc *Scorer) reset(ctx context.Context) {
	sc.stale = false
	if err := sc.eval.Restart(ctx); err != nil {
		sc.log.Error().Err(err).Msg("oracle restart failed")
	}
}

func (sc *Scorer) logDecision(dec Decision, hyps int) {
	sc.log.Info().
		Stringer("move", dec.Move).
		Float64("value", dec.Value).
		Int("hypotheses", hyps).
		Int("queries", dec.Queries).
		Int("failed", dec.Failed).
		Int("skipped", dec.Skipped).
		Dur("per_query", dec.PerQuery).
		Msg("chose move")

	if e := sc.log.Debug(); e.Enabled() {
		ranked := make(byValue, len(dec.Candidates))
		copy(ranked, dec.Candidates)
		sort.Stable(ranked)
		top := make([]string, 0, 5)
		for i := 0; i < len(ranked) && i < 5; i++ {
			top = append(top, fmt.Sprintf("%v=%.3f", ranked[i].Move, ranked[i].Value))
		}
		e.Strs("top", top).Msg("candidates")
	}
}
