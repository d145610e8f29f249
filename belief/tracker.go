package belief

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/notnil/chess"
	"github.com/pkg/errors"

	"github.com/reconbeth/game"
)

// ErrInconsistent marks a hypothesis that disagrees with the tracked own pieces.
var ErrInconsistent = errors.New("hypothesis disagrees with own pieces")

// Tracker follows the agent's own pieces, which are always known exactly.
// Its board holds no opponent pieces and only the agent's castling rights.
type Tracker struct {
	color chess.Color
	state game.State
}

// NewTracker strips everything but color's pieces and rights from initial.
func NewTracker(color chess.Color, initial game.State) *Tracker {
	return &Tracker{color: color, state: initial.Only(color)}
}

func (t *Tracker) Color() chess.Color { return t.color }

func (t *Tracker) State() game.State { return t.state }

// OurTurn reports whether the tracked board has the agent to move.
func (t *Tracker) OurTurn() bool { return t.state.Turn == t.color }

// PassOpponent hands the turn back after an unseen opponent move, removing
// the piece lost on captured if there was one.
func (t *Tracker) PassOpponent(captured chess.Square) {
	t.state = t.state.Push(game.NullMove)
	if captured != chess.NoSquare {
		t.state = t.state.Without(captured)
	}
}

// Apply plays the agent's own executed move, or the pass.
func (t *Tracker) Apply(taken game.Move) {
	t.state = t.state.Push(taken)
	// opponent pieces never live on the tracked board
	t.state = t.state.Only(t.color)
}

// Verify checks every hypothesis in h against the tracked own pieces and
// castling rights. All disagreements are reported together.
func (t *Tracker) Verify(h *Set) error {
	var result *multierror.Error
	for i := 0; i < h.Len(); i++ {
		s := h.State(i)
		if err := t.check(&s); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "hypothesis %d %s", i, s.FEN()))
		}
	}
	return result.ErrorOrNil()
}

func (t *Tracker) check(s *game.State) error {
	for sq, mine := range t.state.Squares {
		theirs := s.Squares[sq]
		switch {
		case mine != chess.NoPiece && theirs != mine:
			return errors.WithMessage(ErrInconsistent, fmt.Sprintf("missing %c on %v", game.PieceChar(mine), chess.Square(sq)))
		case mine == chess.NoPiece && theirs != chess.NoPiece && theirs.Color() == t.color:
			return errors.WithMessage(ErrInconsistent, fmt.Sprintf("extra %c on %v", game.PieceChar(theirs), chess.Square(sq)))
		}
	}
	if s.Castling.Only(t.color) != t.state.Castling {
		return errors.WithMessage(ErrInconsistent, fmt.Sprintf("castling %v, want %v", s.Castling.Only(t.color), t.state.Castling))
	}
	return nil
}
