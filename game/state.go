package game

import (
	"github.com/notnil/chess"
)

const (
	RowNum = 8
	ColNum = 8
)

// Castling holds castling rights as flags. They are tracked independently of
// where the rooks currently stand.
type Castling uint8

const (
	WhiteKingSide Castling = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  Castling = 0
	AllCastling          = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

func castleFlag(c chess.Color, side chess.Side) Castling {
	switch {
	case c == chess.White && side == chess.KingSide:
		return WhiteKingSide
	case c == chess.White && side == chess.QueenSide:
		return WhiteQueenSide
	case c == chess.Black && side == chess.KingSide:
		return BlackKingSide
	case c == chess.Black && side == chess.QueenSide:
		return BlackQueenSide
	}
	return NoCastling
}

// Has reports whether the flag for color and side is set.
func (r Castling) Has(c chess.Color, side chess.Side) bool {
	f := castleFlag(c, side)
	return f != NoCastling && r&f != 0
}

// Only keeps the rights of a single color.
func (r Castling) Only(c chess.Color) Castling {
	return r & (castleFlag(c, chess.KingSide) | castleFlag(c, chess.QueenSide))
}

func (r Castling) String() string {
	var s []byte
	if r&WhiteKingSide != 0 {
		s = append(s, 'K')
	}
	if r&WhiteQueenSide != 0 {
		s = append(s, 'Q')
	}
	if r&BlackKingSide != 0 {
		s = append(s, 'k')
	}
	if r&BlackQueenSide != 0 {
		s = append(s, 'q')
	}
	if len(s) == 0 {
		return "-"
	}
	return string(s)
}

// State is one fully specified position: placement, side to move, castling
// rights and the en passant target. It is a plain comparable value, so two
// hypotheses are the same iff they are ==, and a State can key a map.
//
// EnPassant is chess.NoSquare unless a pawn of the side to move could
// actually capture en passant.
type State struct {
	Squares   [64]chess.Piece
	Turn      chess.Color
	Castling  Castling
	EnPassant chess.Square
}

// NewState returns the standard starting position.
func NewState() State {
	s, err := ParseFEN(StartingFEN)
	if err != nil {
		panic(err)
	}
	return s
}

// Piece returns the piece on sq, or chess.NoPiece for empty or off-board squares.
func (s *State) Piece(sq chess.Square) chess.Piece {
	if sq < chess.A1 || sq > chess.H8 {
		return chess.NoPiece
	}
	return s.Squares[sq]
}

// KingSquare returns the square of c's king or chess.NoSquare.
func (s *State) KingSquare(c chess.Color) chess.Square {
	king := pieceOf(chess.King, c)
	for sq, p := range s.Squares {
		if p == king {
			return chess.Square(sq)
		}
	}
	return chess.NoSquare
}

// Without returns a copy of s with sq emptied. Castling rights tied to sq are
// dropped with the piece.
func (s State) Without(sq chess.Square) State {
	if sq < chess.A1 || sq > chess.H8 {
		return s
	}
	s.Squares[sq] = chess.NoPiece
	s.Castling &^= cornerRights(sq) | homeRights(sq)
	return s
}

// Only returns a copy of s keeping only c's pieces and castling rights.
func (s State) Only(c chess.Color) State {
	for sq, p := range s.Squares {
		if p != chess.NoPiece && p.Color() != c {
			s.Squares[sq] = chess.NoPiece
		}
	}
	s.Castling = s.Castling.Only(c)
	s.EnPassant = chess.NoSquare
	return s
}

// Push returns the position after m. The null move only hands the turn over.
// A pawn reaching the last rank without a promotion piece becomes a queen.
func (s State) Push(m Move) State {
	next := s
	next.Turn = s.Turn.Other()
	next.EnPassant = chess.NoSquare
	if m.IsNull() {
		return next
	}

	p := s.Piece(m.From)
	if p == chess.NoPiece {
		return next
	}
	mover := p.Color()
	next.Squares[m.From] = chess.NoPiece

	switch p.Type() {
	case chess.Pawn:
		if m.To == s.EnPassant && s.Squares[m.To] == chess.NoPiece && m.From.File() != m.To.File() {
			next.Squares[epVictim(m.To, mover)] = chess.NoPiece
		}
		if m.To.Rank() == promoRank(mover) {
			promo := m.Promo
			if promo == chess.NoPieceType {
				promo = chess.Queen
			}
			p = pieceOf(promo, mover)
		}
		if abs(int(m.To.Rank())-int(m.From.Rank())) == 2 {
			target := chess.Square((int(m.From) + int(m.To)) / 2)
			if next.hasEnPassantCapturer(target, mover.Other()) {
				next.EnPassant = target
			}
		}
	case chess.King:
		if df := int(m.To.File()) - int(m.From.File()); df == 2 || df == -2 {
			rookFrom, rookTo := castleRookSquares(m.From, df > 0)
			if next.Squares[rookFrom] == pieceOf(chess.Rook, mover) {
				next.Squares[rookFrom] = chess.NoPiece
				next.Squares[rookTo] = pieceOf(chess.Rook, mover)
			}
		}
		next.Castling &^= castleFlag(mover, chess.KingSide) | castleFlag(mover, chess.QueenSide)
	}

	next.Squares[m.To] = p
	next.Castling &^= cornerRights(m.From) | cornerRights(m.To) | homeRights(m.To)
	return next
}

// hasEnPassantCapturer reports whether a pawn of c could capture onto target.
func (s *State) hasEnPassantCapturer(target chess.Square, c chess.Color) bool {
	victim := epVictim(target, c)
	pawn := pieceOf(chess.Pawn, c)
	for _, df := range []int{-1, 1} {
		if sq, ok := offset(victim, delta{df, 0}); ok && s.Squares[sq] == pawn {
			return true
		}
	}
	return false
}

// normalize drops castling rights whose king or rook is not at home and an
// en passant target nobody can use, so equal positions compare equal.
func (s *State) normalize() {
	for _, c := range []chess.Color{chess.White, chess.Black} {
		for _, side := range []chess.Side{chess.KingSide, chess.QueenSide} {
			if s.Castling.Has(c, side) && !s.piecesHome(c, side) {
				s.Castling &^= castleFlag(c, side)
			}
		}
	}
	if s.EnPassant != chess.NoSquare {
		r := s.EnPassant.Rank()
		if (r != chess.Rank3 && r != chess.Rank6) ||
			s.Squares[s.EnPassant] != chess.NoPiece ||
			s.Squares[epVictim(s.EnPassant, s.Turn)] != pieceOf(chess.Pawn, s.Turn.Other()) ||
			!s.hasEnPassantCapturer(s.EnPassant, s.Turn) {
			s.EnPassant = chess.NoSquare
		}
	}
}

func (s *State) piecesHome(c chess.Color, side chess.Side) bool {
	king, rook := castleHome(c, side)
	return s.Squares[king] == pieceOf(chess.King, c) && s.Squares[rook] == pieceOf(chess.Rook, c)
}

// epVictim is the square of the pawn removed when c captures en passant on target.
func epVictim(target chess.Square, c chess.Color) chess.Square {
	if c == chess.White {
		return target - 8
	}
	return target + 8
}

func promoRank(c chess.Color) chess.Rank {
	if c == chess.White {
		return chess.Rank8
	}
	return chess.Rank1
}

// castleHome returns the king and rook home squares for c castling on side.
func castleHome(c chess.Color, side chess.Side) (king, rook chess.Square) {
	king, rook = chess.E1, chess.H1
	if side == chess.QueenSide {
		rook = chess.A1
	}
	if c == chess.Black {
		king += 56
		rook += 56
	}
	return king, rook
}

func castleRookSquares(king chess.Square, kingSide bool) (from, to chess.Square) {
	if kingSide {
		return king + 3, king + 1
	}
	return king - 4, king - 1
}

func cornerRights(sq chess.Square) Castling {
	switch sq {
	case chess.H1:
		return WhiteKingSide
	case chess.A1:
		return WhiteQueenSide
	case chess.H8:
		return BlackKingSide
	case chess.A8:
		return BlackQueenSide
	}
	return NoCastling
}

func homeRights(sq chess.Square) Castling {
	switch sq {
	case chess.E1:
		return WhiteKingSide | WhiteQueenSide
	case chess.E8:
		return BlackKingSide | BlackQueenSide
	}
	return NoCastling
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
