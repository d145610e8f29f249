package search

import (
	"time"
)

// Aggregation folds per-hypothesis scores into one value per move.
type Aggregation int

const (
	// Expectation weighs each hypothesis by its probability.
	Expectation Aggregation = iota
	// Minimax takes the worst score over all hypotheses.
	Minimax
)

func (a Aggregation) String() string {
	switch a {
	case Expectation:
		return "expectation"
	case Minimax:
		return "minimax"
	}
	return "unknown"
}

// Config is the structure to configure move selection
type Config struct {
	TurnTarget   time.Duration `json:"turn_target"`   // upper bound on oracle time per turn
	SafetyMargin time.Duration `json:"safety_margin"` // kept back from the remaining clock
	MinQuery     time.Duration `json:"min_query"`     // floor on a single oracle query
	Neutral      float32       `json:"neutral"`       // score for failed or skipped queries
	Aggregation  Aggregation   `json:"aggregation"`
}

func DefaultConfig() Config {
	return Config{
		TurnTarget:   30 * time.Second,
		SafetyMargin: 100 * time.Millisecond,
		MinQuery:     time.Millisecond,
		Neutral:      0.5,
		Aggregation:  Expectation,
	}
}

func (c Config) IsValid() bool {
	return c.TurnTarget > 0 &&
		c.SafetyMargin >= 0 &&
		c.MinQuery > 0 &&
		c.Neutral >= 0 && c.Neutral <= 1 &&
		(c.Aggregation == Expectation || c.Aggregation == Minimax)
}

// Budget is the oracle time available this turn. An empty or negative clock
// leaves none.
func (c Config) Budget(remaining time.Duration) time.Duration {
	budget := c.TurnTarget - c.SafetyMargin
	if remaining-c.SafetyMargin < budget {
		budget = remaining - c.SafetyMargin
	}
	if budget < 0 {
		return 0
	}
	return budget
}

// QueryTime splits the turn budget evenly over hyps*(moves+1) queries, the
// extra one per hypothesis being the pass.
func (c Config) QueryTime(remaining time.Duration, hyps, moves int) time.Duration {
	n := hyps * (moves + 1)
	if n <= 0 {
		return c.MinQuery
	}
	q := c.Budget(remaining) / time.Duration(n)
	if q < c.MinQuery {
		return c.MinQuery
	}
	return q
}
