package belief

import (
	"github.com/notnil/chess"
	"github.com/pkg/errors"

	"github.com/reconbeth/game"
)

// Capture is the capture report attached to an executed move.
type Capture struct {
	Captured bool
	Square   chess.Square
}

// CheckMove reports whether m is pseudo-legal for color in s and, when a
// capture report is given, whether it agrees with it.
//
// The pass is legal and never captures. Castling is legal only when the
// right is held and the path is empty, and never captures.
func CheckMove(s *game.State, m game.Move, color chess.Color, capture *Capture) bool {
	quiet := capture == nil || !capture.Captured
	if m.IsNull() {
		return quiet
	}
	if side, ok := s.CastlingSide(m, color); ok {
		return s.CanCastle(color, side) && s.CastlePathClear(color, side) && quiet
	}
	if !s.IsPseudoLegal(m) {
		return false
	}
	if capture == nil {
		return true
	}
	if capture.Captured {
		csq := s.CapturedSquare(m)
		return csq != chess.NoSquare && (csq == capture.Square || m.To == capture.Square)
	}
	return !s.IsCapture(m)
}

// FilterMove conditions the set on the outcome of the agent's own move.
//
// When the requested move was executed unchanged every hypothesis must make
// it legal with the reported capture. Otherwise the requested move must have
// been illegal, and the executed one legal with the reported capture.
// Survivors advance by the executed move, or by the pass.
func FilterMove(h *Set, color chess.Color, requested, taken game.Move, capture Capture) (*Set, error) {
	out := NewSet()
	same := requested.Bare() == taken.Bare()
	for i := 0; i < h.Len(); i++ {
		s := h.State(i)
		var keep bool
		if same {
			keep = CheckMove(&s, taken, color, &capture)
		} else {
			keep = !CheckMove(&s, requested, color, nil) && CheckMove(&s, taken, color, &capture)
		}
		if keep {
			out.Add(s.Push(taken), h.Weight(i))
		}
	}
	if err := out.Normalize(); err != nil {
		return out, errors.Wrapf(err, "move result %v -> %v", requested, taken)
	}
	return out, nil
}
