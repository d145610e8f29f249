package reconbeth

import (
	"github.com/rs/zerolog"

	"github.com/reconbeth/oracle"
	"github.com/reconbeth/search"
)

// Config for the Agent.
// It holds attributes that impact the oracle process and move selection.
type Config struct {
	Name       string        `json:"name"`
	OracleConf oracle.Config `json:"oracle_conf"`
	SearchConf search.Config `json:"search_conf"`

	// verify every hypothesis against the own pieces after each update
	CheckConsistency bool `json:"check_consistency"`
}

// DefaultConfig uses the engine at path with default search settings.
func DefaultConfig(path string) Config {
	return Config{
		Name:       "reconbeth",
		OracleConf: oracle.DefaultConf(path),
		SearchConf: search.DefaultConfig(),
	}
}

func (c Config) IsValid() bool {
	return c.OracleConf.IsValid() && c.SearchConf.IsValid()
}

// WinReason is why a game ended.
type WinReason int

const (
	UnknownReason WinReason = iota
	KingCapture
	Timeout
	Resign
	TurnLimit
	MoveLimit
)

func (r WinReason) String() string {
	switch r {
	case KingCapture:
		return "king capture"
	case Timeout:
		return "timeout"
	case Resign:
		return "resign"
	case TurnLimit:
		return "turn limit"
	case MoveLimit:
		return "move limit"
	}
	return "unknown"
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger replaces the default stderr logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Agent) { a.baseLog = log }
}
