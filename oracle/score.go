package oracle

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Score is an engine evaluation from the side to move's point of view.
type Score struct {
	CP     int  // centipawns, when !IsMate
	Mate   int  // moves to mate; negative when the side to move is mated
	IsMate bool
}

// WinProbability maps the score onto [0, 1] for the side to move. Centipawns
// go through 1/(1+10^(-cp/400)); a mate for the mover is 1, against is 0.
func (s Score) WinProbability() float32 {
	if s.IsMate {
		if s.Mate > 0 {
			return 1
		}
		return 0
	}
	return 1 / (1 + math32.Pow(10, -float32(s.CP)/400))
}

func (s Score) String() string {
	if s.IsMate {
		return fmt.Sprintf("mate %d", s.Mate)
	}
	return fmt.Sprintf("cp %d", s.CP)
}

// Result is the outcome of one oracle query. A failed query carries Err and
// no usable score.
type Result struct {
	Score Score
	Err   error
}

// Failed reports whether the query produced no usable score.
func (r Result) Failed() bool { return r.Err != nil }

// WinProbability returns the mapped score, or neutral when the query failed.
func (r Result) WinProbability(neutral float32) float32 {
	if r.Failed() {
		return neutral
	}
	return r.Score.WinProbability()
}
