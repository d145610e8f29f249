package game

import (
	"strconv"
	"strings"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrBadFEN is returned for positions that cannot be decoded.
var ErrBadFEN = errors.New("bad FEN")

// ParseFEN decodes a FEN string. Missing trailing fields default to
// "w - - 0 1". Clocks are accepted but not kept: they are not part of a
// position's identity. Castling rights without king and rook at home and
// unusable en passant targets are dropped.
func ParseFEN(fen string) (State, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return State{}, errors.Wrap(ErrBadFEN, "empty")
	}
	defaults := []string{"", "w", "-", "-", "0", "1"}
	for len(fields) < len(defaults) {
		fields = append(fields, defaults[len(fields)])
	}
	full := strings.Join(fields[:6], " ")
	if _, err := chess.FEN(full); err != nil {
		return State{}, errors.Wrapf(ErrBadFEN, "%q: %v", fen, err)
	}

	var s State
	if err := s.decodePlacement(fields[0]); err != nil {
		return State{}, errors.Wrapf(ErrBadFEN, "%q: %v", fen, err)
	}
	switch fields[1] {
	case "w":
		s.Turn = chess.White
	case "b":
		s.Turn = chess.Black
	default:
		return State{}, errors.Wrapf(ErrBadFEN, "%q: turn %q", fen, fields[1])
	}
	for _, c := range fields[2] {
		switch c {
		case 'K':
			s.Castling |= WhiteKingSide
		case 'Q':
			s.Castling |= WhiteQueenSide
		case 'k':
			s.Castling |= BlackKingSide
		case 'q':
			s.Castling |= BlackQueenSide
		case '-':
		default:
			return State{}, errors.Wrapf(ErrBadFEN, "%q: castling %q", fen, fields[2])
		}
	}
	s.EnPassant = chess.NoSquare
	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return State{}, errors.Wrapf(ErrBadFEN, "%q: %v", fen, err)
		}
		s.EnPassant = sq
	}
	s.normalize()
	return s, nil
}

// MustParseFEN is ParseFEN for literals known to be valid.
func MustParseFEN(fen string) State {
	s, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *State) decodePlacement(board string) error {
	ranks := strings.Split(board, "/")
	if len(ranks) != RowNum {
		return errors.Errorf("%d ranks", len(ranks))
	}
	for i, row := range ranks {
		r := RowNum - 1 - i
		f := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				f += int(c - '0')
				continue
			}
			p, ok := charPieces[c]
			if !ok {
				return errors.Errorf("piece %q", c)
			}
			if f >= ColNum {
				return errors.Errorf("rank %d overflows", r+1)
			}
			s.Squares[r*ColNum+f] = p
			f++
		}
		if f != ColNum {
			return errors.Errorf("rank %d has %d files", r+1, f)
		}
	}
	return nil
}

// FEN encodes s with zeroed clocks.
func (s State) FEN() string {
	var b strings.Builder
	for r := RowNum - 1; r >= 0; r-- {
		empty := 0
		for f := 0; f < ColNum; f++ {
			p := s.Squares[r*ColNum+f]
			if p == chess.NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteByte(pieceChars[p])
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
		if r > 0 {
			b.WriteByte('/')
		}
	}
	if s.Turn == chess.Black {
		b.WriteString(" b ")
	} else {
		b.WriteString(" w ")
	}
	b.WriteString(s.Castling.String())
	b.WriteByte(' ')
	b.WriteString(SquareName(s.EnPassant))
	b.WriteString(" 0 1")
	return b.String()
}

func (s State) String() string { return s.FEN() }

// Board converts the placement into a notnil board.
func (s *State) Board() *chess.Board {
	m := make(map[chess.Square]chess.Piece)
	for sq, p := range s.Squares {
		if p != chess.NoPiece {
			m[chess.Square(sq)] = p
		}
	}
	return chess.NewBoard(m)
}

// Draw renders the placement as text for logs.
func (s *State) Draw() string { return s.Board().Draw() }

// FromPosition converts a notnil position into a State.
func FromPosition(pos *chess.Position) State {
	var s State
	for sq, p := range pos.Board().SquareMap() {
		s.Squares[sq] = p
	}
	s.Turn = pos.Turn()
	rights := pos.CastleRights()
	for _, c := range []chess.Color{chess.White, chess.Black} {
		for _, side := range []chess.Side{chess.KingSide, chess.QueenSide} {
			if rights.CanCastle(c, side) {
				s.Castling |= castleFlag(c, side)
			}
		}
	}
	s.EnPassant = chess.NoSquare
	// the position only exposes its en passant target through its FEN
	if fields := strings.Fields(pos.String()); len(fields) > 3 {
		if sq, err := ParseSquare(fields[3]); err == nil {
			s.EnPassant = sq
		}
	}
	s.normalize()
	return s
}

// Position converts s into a notnil game position. The position must hold
// both kings for the rules library to evaluate it.
func (s State) Position() (*chess.Position, error) {
	opt, err := chess.FEN(s.FEN())
	if err != nil {
		return nil, errors.Wrapf(ErrBadFEN, "%v", err)
	}
	return chess.NewGame(opt).Position(), nil
}
