package game

import (
	"github.com/notnil/chess"
)

var allPieces = []chess.Piece{
	chess.WhiteKing, chess.WhiteQueen, chess.WhiteRook, chess.WhiteBishop, chess.WhiteKnight, chess.WhitePawn,
	chess.BlackKing, chess.BlackQueen, chess.BlackRook, chess.BlackBishop, chess.BlackKnight, chess.BlackPawn,
}

var pieceChars = map[chess.Piece]byte{
	chess.WhiteKing: 'K', chess.WhiteQueen: 'Q', chess.WhiteRook: 'R',
	chess.WhiteBishop: 'B', chess.WhiteKnight: 'N', chess.WhitePawn: 'P',
	chess.BlackKing: 'k', chess.BlackQueen: 'q', chess.BlackRook: 'r',
	chess.BlackBishop: 'b', chess.BlackKnight: 'n', chess.BlackPawn: 'p',
}

var charPieces = func() map[byte]chess.Piece {
	m := make(map[byte]chess.Piece, len(pieceChars))
	for p, c := range pieceChars {
		m[c] = p
	}
	return m
}()

var promoChars = map[chess.PieceType]byte{
	chess.Queen: 'q', chess.Rook: 'r', chess.Bishop: 'b', chess.Knight: 'n',
}

// PromoPieces lists promotion targets in generation order.
var PromoPieces = []chess.PieceType{chess.Queen, chess.Rook, chess.Bishop, chess.Knight}

type pieceKey struct {
	t chess.PieceType
	c chess.Color
}

var pieceIndex = func() map[pieceKey]chess.Piece {
	m := make(map[pieceKey]chess.Piece, len(allPieces))
	for _, p := range allPieces {
		m[pieceKey{p.Type(), p.Color()}] = p
	}
	return m
}()

func pieceOf(t chess.PieceType, c chess.Color) chess.Piece {
	return pieceIndex[pieceKey{t, c}]
}

// PieceChar returns the FEN letter of p, or '.' for an empty square.
func PieceChar(p chess.Piece) byte {
	if c, ok := pieceChars[p]; ok {
		return c
	}
	return '.'
}

// ColorName is the long name of a color as used in logs.
func ColorName(c chess.Color) string {
	switch c {
	case chess.White:
		return "white"
	case chess.Black:
		return "black"
	}
	return "none"
}

type delta struct{ df, dr int }

var (
	rookDeltas   = []delta{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDeltas = []delta{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDeltas  = []delta{{0, 1}, {0, -1}, {1, 0}, {-1, 0}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightDeltas = []delta{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

// Directions are the eight (file, rank) steps a queen or king moves along.
var Directions = [8][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

func offset(sq chess.Square, d delta) (chess.Square, bool) {
	f := int(sq)%ColNum + d.df
	r := int(sq)/ColNum + d.dr
	if f < 0 || f >= ColNum || r < 0 || r >= RowNum {
		return chess.NoSquare, false
	}
	return chess.Square(r*ColNum + f), true
}

// Step returns the square n steps from sq along the direction (df, dr).
func Step(sq chess.Square, df, dr, n int) (chess.Square, bool) {
	return offset(sq, delta{df * n, dr * n})
}

func pawnDir(c chess.Color) int {
	if c == chess.White {
		return 1
	}
	return -1
}

func pawnStartRank(c chess.Color) chess.Rank {
	if c == chess.White {
		return chess.Rank2
	}
	return chess.Rank7
}
