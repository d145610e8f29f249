package reconbeth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/notnil/chess"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/reconbeth/belief"
	"github.com/reconbeth/game"
	"github.com/reconbeth/oracle"
	"github.com/reconbeth/search"
)

// An Agent plays one game at a time. The harness calls the handlers in turn
// order; none of them may be called concurrently.
//
// When the hypotheses run out the agent keeps answering with legal actions
// and reports belief.ErrExhausted alongside.
type Agent struct {
	conf   Config
	eval   oracle.Evaluator
	scorer *search.Scorer

	baseLog zerolog.Logger
	log     zerolog.Logger

	gameID  uuid.UUID
	color   chess.Color
	tracker *belief.Tracker
	hyps    *belief.Set

	// initial position while the opponent's first move is unreported
	opening *game.State
}

// Color is the side the agent plays in the current game.
func (a *Agent) Color() chess.Color { return a.color }

// GameID identifies the current game in logs.
func (a *Agent) GameID() uuid.UUID { return a.gameID }

// Hypotheses is the current belief.
func (a *Agent) Hypotheses() *belief.Set { return a.hyps }

// Tracker follows the agent's own pieces.
func (a *Agent) Tracker() *belief.Tracker { return a.tracker }

// HandleGameStart resets the agent for a new game. If the opponent moves
// first the belief starts with every position one opponent move away, until
// the result of that move narrows it down.
func (a *Agent) HandleGameStart(ctx context.Context, color chess.Color, initial game.State, opponent string) error {
	a.gameID = uuid.New()
	a.color = color
	a.log = a.baseLog.With().
		Str("game", a.gameID.String()).
		Str("color", game.ColorName(color)).
		Str("opponent", opponent).
		Logger()

	a.tracker = belief.NewTracker(color, initial)
	a.opening = nil
	var err error
	if initial.Turn == color {
		a.hyps, err = belief.NewSetOf(initial)
	} else {
		a.hyps, err = belief.Expand(initial)
		a.opening = &initial
	}
	if err != nil {
		a.log.Error().Err(err).Str("fen", initial.FEN()).Msg("no starting belief")
		return err
	}
	a.log.Info().Str("fen", initial.FEN()).Int("hypotheses", a.hyps.Len()).Msg("game start")

	if err := a.eval.Start(ctx); err != nil {
		a.log.Error().Err(err).Msg("oracle did not start")
		return errors.Wrap(err, "start oracle")
	}
	return nil
}

// HandleOpponentMoveResult advances the belief over the opponent's unseen
// move. It does nothing when the opponent has not moved since the game start.
// The result of the opponent's opening move replaces the expanded start
// belief with the successors of the initial position that match it.
func (a *Agent) HandleOpponentMoveResult(captured bool, sq chess.Square) error {
	if a.tracker.OurTurn() {
		a.log.Debug().Msg("no opponent move to account for")
		return nil
	}
	if !captured {
		sq = chess.NoSquare
	}
	before := a.hyps.Len()
	from := a.hyps
	if a.opening != nil {
		var err error
		if from, err = belief.NewSetOf(*a.opening); err != nil {
			return err
		}
		a.opening = nil
	}
	a.tracker.PassOpponent(sq)
	next, err := belief.Transition(from, captured, sq)
	a.hyps = next
	a.log.Debug().Bool("captured", captured).Str("square", game.SquareName(sq)).
		Int("before", before).Int("after", next.Len()).Msg("opponent move")
	if err != nil {
		a.log.Error().Err(err).Msg("belief exhausted")
		return err
	}
	return a.verify()
}

// ChooseSense picks the square to sense among senseActions. moveActions and
// remaining are accepted for the harness' sake and do not affect the choice.
func (a *Agent) ChooseSense(senseActions []chess.Square, moveActions []game.Move, remaining time.Duration) (chess.Square, error) {
	sq, err := belief.ChooseSense(a.hyps, senseActions)
	a.log.Debug().Str("square", game.SquareName(sq)).Int("hypotheses", a.hyps.Len()).Msg("sense")
	return sq, err
}

// HandleSenseResult keeps the hypotheses matching the observed window.
func (a *Agent) HandleSenseResult(obs []game.Observation) error {
	before := a.hyps.Len()
	next, err := belief.FilterSense(a.hyps, obs)
	a.hyps = next
	a.log.Debug().Str("pattern", game.NewPattern(obs).String()).
		Int("before", before).Int("after", next.Len()).Msg("sense result")
	if err != nil {
		a.log.Error().Err(err).Msg("belief exhausted")
		return err
	}
	return nil
}

// ChooseMove picks a move among moveActions, or game.NullMove to pass.
func (a *Agent) ChooseMove(ctx context.Context, moveActions []game.Move, remaining time.Duration) (game.Move, error) {
	dec, err := a.scorer.Choose(ctx, a.hyps, a.color, a.tracker.State().Castling, moveActions, remaining)
	if err != nil {
		a.log.Error().Err(err).Msg("passing")
		return game.NullMove, err
	}
	if e := a.log.Debug(); e.Enabled() {
		g := search.NewGraph(a.color, a.tracker.State().Castling)
		if dot, err := g.Dot(g.Order(moveActions)); err == nil {
			e.Str("graph", dot).Msg("submove graph")
		}
	}
	return dec.Move, nil
}

// HandleMoveResult conditions the belief on what became of the requested
// move and plays the executed one on every survivor.
func (a *Agent) HandleMoveResult(requested, taken game.Move, captured bool, sq chess.Square) error {
	if !captured {
		sq = chess.NoSquare
	}
	before := a.hyps.Len()
	next, err := belief.FilterMove(a.hyps, a.color, requested, taken, belief.Capture{Captured: captured, Square: sq})
	a.hyps = next
	a.tracker.Apply(taken)
	a.log.Debug().Stringer("requested", requested).Stringer("taken", taken).
		Bool("captured", captured).Int("before", before).Int("after", next.Len()).Msg("move result")
	if err != nil {
		a.log.Error().Err(err).Msg("belief exhausted")
		return err
	}
	return a.verify()
}

// HandleGameEnd logs the outcome and stops the oracle.
func (a *Agent) HandleGameEnd(winner chess.Color, reason WinReason) error {
	a.log.Info().
		Bool("won", winner == a.color).
		Str("winner", game.ColorName(winner)).
		Stringer("reason", reason).
		Int("hypotheses", a.hyps.Len()).
		Msg("game over")
	return a.Close()
}

// Close stops the oracle.
func (a *Agent) Close() error {
	return errors.Wrap(a.eval.Close(), "close oracle")
}

func (a *Agent) verify() error {
	if !a.conf.CheckConsistency {
		return nil
	}
	if err := a.tracker.Verify(a.hyps); err != nil {
		a.log.Error().Err(err).Msg("belief disagrees with own pieces")
		return err
	}
	return nil
}
