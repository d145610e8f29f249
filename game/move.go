package game

import (
	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// Move is a from/to pair with an optional promotion piece. Moves are
// comparable and used as map keys.
type Move struct {
	From  chess.Square
	To    chess.Square
	Promo chess.PieceType
}

// NullMove is the pass. It is also the root of the submove graph.
var NullMove = Move{From: chess.NoSquare, To: chess.NoSquare}

// ErrBadMove is returned when a UCI move string cannot be parsed.
var ErrBadMove = errors.New("bad move")

// NewMove builds a move without promotion.
func NewMove(from, to chess.Square) Move { return Move{From: from, To: to} }

// IsNull reports whether m passes the turn.
func (m Move) IsNull() bool {
	return m.From == chess.NoSquare || m.To == chess.NoSquare || m.From == m.To
}

// Bare strips the promotion piece.
func (m Move) Bare() Move {
	m.Promo = chess.NoPieceType
	return m
}

// String returns the UCI form; the null move is "0000".
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	b := []byte{SquareName(m.From)[0], SquareName(m.From)[1], SquareName(m.To)[0], SquareName(m.To)[1]}
	if c, ok := promoChars[m.Promo]; ok {
		b = append(b, c)
	}
	return string(b)
}

// ParseMove parses UCI notation such as "e2e4", "a7a8q" or "0000".
func ParseMove(s string) (Move, error) {
	if s == "0000" || s == "" {
		return NullMove, nil
	}
	if len(s) != 4 && len(s) != 5 {
		return NullMove, errors.Wrapf(ErrBadMove, "%q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NullMove, errors.Wrapf(ErrBadMove, "%q", s)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NullMove, errors.Wrapf(ErrBadMove, "%q", s)
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		for t, c := range promoChars {
			if c == s[4] {
				m.Promo = t
			}
		}
		if m.Promo == chess.NoPieceType {
			return NullMove, errors.Wrapf(ErrBadMove, "%q: unknown promotion", s)
		}
	}
	return m, nil
}

// MustParseMove is ParseMove for literals known to be valid.
func MustParseMove(s string) Move {
	m, err := ParseMove(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseSquare parses algebraic square names like "e4".
func ParseSquare(s string) (chess.Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return chess.NoSquare, errors.Errorf("bad square %q", s)
	}
	return chess.Square(int(s[1]-'1')*ColNum + int(s[0]-'a')), nil
}

// SquareName is the algebraic name of sq, or "-" for chess.NoSquare.
func SquareName(sq chess.Square) string {
	if sq < chess.A1 || sq > chess.H8 {
		return "-"
	}
	return string([]byte{'a' + byte(int(sq)%ColNum), '1' + byte(int(sq)/ColNum)})
}

// CastlingMove returns the king move that castles c on side.
func CastlingMove(c chess.Color, side chess.Side) Move {
	king, _ := castleHome(c, side)
	if side == chess.KingSide {
		return Move{From: king, To: king + 2}
	}
	return Move{From: king, To: king - 2}
}

// CastlingSide reports whether m is c's king moving two or more files from
// its home square, and on which side.
func (s *State) CastlingSide(m Move, c chess.Color) (chess.Side, bool) {
	if m.IsNull() || s.Piece(m.From) != pieceOf(chess.King, c) {
		return chess.KingSide, false
	}
	home, _ := castleHome(c, chess.KingSide)
	if m.From != home || m.From.Rank() != m.To.Rank() {
		return chess.KingSide, false
	}
	switch df := int(m.To.File()) - int(m.From.File()); {
	case df >= 2:
		return chess.KingSide, true
	case df <= -2:
		return chess.QueenSide, true
	}
	return chess.KingSide, false
}

// IsCapture reports whether m takes a piece in s, en passant included.
func (s *State) IsCapture(m Move) bool {
	return s.CapturedSquare(m) != chess.NoSquare
}

// CapturedSquare returns the square of the piece m removes, which differs
// from m.To only for en passant. It is chess.NoSquare for quiet moves.
func (s *State) CapturedSquare(m Move) chess.Square {
	if m.IsNull() {
		return chess.NoSquare
	}
	mover := s.Piece(m.From)
	if mover == chess.NoPiece {
		return chess.NoSquare
	}
	if t := s.Piece(m.To); t != chess.NoPiece && t.Color() != mover.Color() {
		return m.To
	}
	if mover.Type() == chess.Pawn && m.To == s.EnPassant && m.From.File() != m.To.File() {
		return epVictim(m.To, mover.Color())
	}
	return chess.NoSquare
}
