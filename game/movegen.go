package game

import (
	"github.com/notnil/chess"
)

// PseudoLegalMoves generates every move of the side to move that obeys piece
// movement, ignoring whether the own king is left in check. Moves capturing
// the enemy king are included. Castling additionally requires the right, an
// empty path, and that the king neither stands in nor passes through check.
func (s *State) PseudoLegalMoves() []Move {
	moves := make([]Move, 0, 48)
	us := s.Turn
	for i, p := range s.Squares {
		if p == chess.NoPiece || p.Color() != us {
			continue
		}
		from := chess.Square(i)
		switch p.Type() {
		case chess.Pawn:
			moves = s.pawnMoves(moves, from, us)
		case chess.Knight:
			moves = s.stepMoves(moves, from, us, knightDeltas)
		case chess.King:
			moves = s.stepMoves(moves, from, us, queenDeltas)
		case chess.Bishop:
			moves = s.slideMoves(moves, from, us, bishopDeltas)
		case chess.Rook:
			moves = s.slideMoves(moves, from, us, rookDeltas)
		case chess.Queen:
			moves = s.slideMoves(moves, from, us, queenDeltas)
		}
	}
	for _, side := range []chess.Side{chess.KingSide, chess.QueenSide} {
		if s.castleAllowed(us, side) {
			moves = append(moves, CastlingMove(us, side))
		}
	}
	return moves
}

// PseudoLegalCaptures lists the pseudo-legal captures whose captured piece
// sits on target, or whose destination is target. chess.NoSquare matches
// every capture.
func (s *State) PseudoLegalCaptures(target chess.Square) []Move {
	var caps []Move
	for _, m := range s.PseudoLegalMoves() {
		csq := s.CapturedSquare(m)
		if csq == chess.NoSquare {
			continue
		}
		if target == chess.NoSquare || csq == target || m.To == target {
			caps = append(caps, m)
		}
	}
	return caps
}

// IsPseudoLegal reports whether m is among s.PseudoLegalMoves. A missing
// promotion piece on a promoting move is read as a queen.
func (s *State) IsPseudoLegal(m Move) bool {
	if m.IsNull() {
		return false
	}
	m = s.withDefaultPromo(m)
	for _, c := range s.PseudoLegalMoves() {
		if c == m {
			return true
		}
	}
	return false
}

// LegalMoves filters PseudoLegalMoves to those not leaving the mover's king
// attacked.
func (s *State) LegalMoves() []Move {
	var legal []Move
	us := s.Turn
	for _, m := range s.PseudoLegalMoves() {
		next := s.Push(m)
		k := next.KingSquare(us)
		if k == chess.NoSquare || !next.Attacked(k, us.Other()) {
			legal = append(legal, m)
		}
	}
	return legal
}

// InCheck reports whether the side to move has its king attacked.
func (s *State) InCheck() bool {
	k := s.KingSquare(s.Turn)
	return k != chess.NoSquare && s.Attacked(k, s.Turn.Other())
}

// IsCheckmate reports whether the side to move is in check with no legal move.
func (s *State) IsCheckmate() bool {
	return s.InCheck() && len(s.LegalMoves()) == 0
}

// CanCastle reports whether c holds the castling right on side with king and
// rook on their home squares. It says nothing about the squares in between.
func (s *State) CanCastle(c chess.Color, side chess.Side) bool {
	return s.Castling.Has(c, side) && s.piecesHome(c, side)
}

// CastlePathClear reports whether the squares between c's king and rook on
// side are empty.
func (s *State) CastlePathClear(c chess.Color, side chess.Side) bool {
	king, rook := castleHome(c, side)
	lo, hi := king, rook
	if lo > hi {
		lo, hi = hi, lo
	}
	for sq := lo + 1; sq < hi; sq++ {
		if s.Squares[sq] != chess.NoPiece {
			return false
		}
	}
	return true
}

// Attacked reports whether any piece of color by attacks sq.
func (s *State) Attacked(sq chess.Square, by chess.Color) bool {
	// pawns attack diagonally forward, so look backwards from sq
	for _, df := range []int{-1, 1} {
		if from, ok := offset(sq, delta{df, -pawnDir(by)}); ok && s.Squares[from] == pieceOf(chess.Pawn, by) {
			return true
		}
	}
	for _, d := range knightDeltas {
		if from, ok := offset(sq, d); ok && s.Squares[from] == pieceOf(chess.Knight, by) {
			return true
		}
	}
	for _, d := range queenDeltas {
		if from, ok := offset(sq, d); ok && s.Squares[from] == pieceOf(chess.King, by) {
			return true
		}
	}
	if s.slideHits(sq, rookDeltas, pieceOf(chess.Rook, by), pieceOf(chess.Queen, by)) {
		return true
	}
	return s.slideHits(sq, bishopDeltas, pieceOf(chess.Bishop, by), pieceOf(chess.Queen, by))
}

func (s *State) slideHits(sq chess.Square, deltas []delta, a, b chess.Piece) bool {
	for _, d := range deltas {
		cur := sq
		for {
			next, ok := offset(cur, d)
			if !ok {
				break
			}
			p := s.Squares[next]
			if p == a || p == b {
				return true
			}
			if p != chess.NoPiece {
				break
			}
			cur = next
		}
	}
	return false
}

func (s *State) pawnMoves(moves []Move, from chess.Square, us chess.Color) []Move {
	dir := pawnDir(us)
	if one, ok := offset(from, delta{0, dir}); ok && s.Squares[one] == chess.NoPiece {
		moves = appendPawn(moves, from, one, us)
		if from.Rank() == pawnStartRank(us) {
			if two, ok := offset(from, delta{0, 2 * dir}); ok && s.Squares[two] == chess.NoPiece {
				moves = append(moves, Move{From: from, To: two})
			}
		}
	}
	for _, df := range []int{-1, 1} {
		to, ok := offset(from, delta{df, dir})
		if !ok {
			continue
		}
		if t := s.Squares[to]; t != chess.NoPiece && t.Color() != us {
			moves = appendPawn(moves, from, to, us)
		} else if to == s.EnPassant && t == chess.NoPiece {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

func appendPawn(moves []Move, from, to chess.Square, us chess.Color) []Move {
	if to.Rank() != promoRank(us) {
		return append(moves, Move{From: from, To: to})
	}
	for _, t := range PromoPieces {
		moves = append(moves, Move{From: from, To: to, Promo: t})
	}
	return moves
}

func (s *State) stepMoves(moves []Move, from chess.Square, us chess.Color, deltas []delta) []Move {
	for _, d := range deltas {
		to, ok := offset(from, d)
		if !ok {
			continue
		}
		if t := s.Squares[to]; t == chess.NoPiece || t.Color() != us {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

func (s *State) slideMoves(moves []Move, from chess.Square, us chess.Color, deltas []delta) []Move {
	for _, d := range deltas {
		cur := from
		for {
			to, ok := offset(cur, d)
			if !ok {
				break
			}
			t := s.Squares[to]
			if t != chess.NoPiece && t.Color() == us {
				break
			}
			moves = append(moves, Move{From: from, To: to})
			if t != chess.NoPiece {
				break
			}
			cur = to
		}
	}
	return moves
}

func (s *State) castleAllowed(us chess.Color, side chess.Side) bool {
	if !s.CanCastle(us, side) || !s.CastlePathClear(us, side) {
		return false
	}
	them := us.Other()
	king, _ := castleHome(us, side)
	step := chess.Square(1)
	if side == chess.QueenSide {
		step = -1
	}
	for _, sq := range []chess.Square{king, king + step, king + 2*step} {
		if s.Attacked(sq, them) {
			return false
		}
	}
	return true
}

func (s *State) withDefaultPromo(m Move) Move {
	p := s.Piece(m.From)
	if m.Promo == chess.NoPieceType && p.Type() == chess.Pawn && m.To.Rank() == promoRank(p.Color()) {
		m.Promo = chess.Queen
	}
	return m
}
