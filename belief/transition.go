package belief

import (
	"github.com/notnil/chess"
	"github.com/pkg/errors"

	"github.com/reconbeth/game"
)

// Expand replaces s by every position one move of the side to move away,
// captures and the pass included, at uniform weight. It seeds the set when
// the opponent moves first.
func Expand(s game.State) (*Set, error) {
	h := NewSet()
	moves := append(s.PseudoLegalMoves(), game.NullMove)
	for _, m := range moves {
		h.Add(s.Push(m), 1)
	}
	if err := h.Normalize(); err != nil {
		return h, errors.Wrapf(err, "expand %s", s.FEN())
	}
	return h, nil
}

// OpponentCandidates lists the moves the side to move in s could have made
// given the capture report.
//
// With a capture they are the pseudo-legal captures on sq. Without one they
// are the quiet pseudo-legal moves, the pass, and any castling whose right is
// held with an empty path; a castle through check cannot be ruled out from
// the agent's side of the board.
func OpponentCandidates(s *game.State, captured bool, sq chess.Square) []game.Move {
	if captured {
		return s.PseudoLegalCaptures(sq)
	}
	seen := make(map[game.Move]bool)
	var out []game.Move
	add := func(m game.Move) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	for _, m := range s.PseudoLegalMoves() {
		if !s.IsCapture(m) {
			add(m)
		}
	}
	add(game.NullMove)
	them := s.Turn
	for _, side := range []chess.Side{chess.KingSide, chess.QueenSide} {
		if s.CanCastle(them, side) && s.CastlePathClear(them, side) {
			add(game.CastlingMove(them, side))
		}
	}
	return out
}

// Transition advances every hypothesis by one unseen opponent move. The
// weight of a hypothesis is split evenly over its candidates and merged
// where two branches meet. Hypotheses without candidates drop out.
func Transition(h *Set, captured bool, sq chess.Square) (*Set, error) {
	out := NewSet()
	for i := 0; i < h.Len(); i++ {
		s := h.State(i)
		cands := OpponentCandidates(&s, captured, sq)
		if len(cands) == 0 {
			continue
		}
		p := h.Weight(i) / float64(len(cands))
		for _, m := range cands {
			out.Add(s.Push(m), p)
		}
	}
	if err := out.Normalize(); err != nil {
		return out, errors.Wrapf(err, "opponent transition (capture %t on %s)", captured, game.SquareName(sq))
	}
	return out, nil
}
