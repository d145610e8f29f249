package reconbeth

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/reconbeth/oracle"
	"github.com/reconbeth/search"
)

const (
	// ExecutableEnv names the engine binary.
	ExecutableEnv = "STOCKFISH_EXECUTABLE"
	// ThreadsEnv sets the engine's search threads.
	ThreadsEnv = "STOCKFISH_THREADS"
)

// LoadConfig reads the engine settings from the environment after loading
// the given dotenv files (".env" when none are given). Missing files are not
// an error.
func LoadConfig(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "load env")
	}
	path := os.Getenv(ExecutableEnv)
	if path == "" {
		return Config{}, errors.Wrapf(oracle.ErrConfig, "%s is not set", ExecutableEnv)
	}
	conf := DefaultConfig(path)
	if v := os.Getenv(ThreadsEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, errors.Wrapf(oracle.ErrConfig, "%s=%q", ThreadsEnv, v)
		}
		conf.OracleConf.Threads = n
	}
	return conf, nil
}

// New creates an Agent that evaluates with the UCI engine in conf. The
// engine itself is started at the beginning of each game.
func New(conf Config, opts ...Option) (*Agent, error) {
	if !conf.SearchConf.IsValid() {
		return nil, errors.Wrapf(oracle.ErrConfig, "search config %+v", conf.SearchConf)
	}
	if err := conf.OracleConf.Validate(); err != nil {
		return nil, err
	}
	a := newAgent(conf, opts...)
	a.eval = oracle.New(conf.OracleConf, a.baseLog)
	a.scorer = search.New(conf.SearchConf, a.eval, a.baseLog)
	return a, nil
}

// NewWithEvaluator creates an Agent around any Evaluator. Only the search
// part of conf is used.
func NewWithEvaluator(conf Config, eval oracle.Evaluator, opts ...Option) (*Agent, error) {
	if !conf.SearchConf.IsValid() {
		return nil, errors.Wrapf(oracle.ErrConfig, "search config %+v", conf.SearchConf)
	}
	a := newAgent(conf, opts...)
	a.eval = eval
	a.scorer = search.New(conf.SearchConf, eval, a.baseLog)
	return a, nil
}

func newAgent(conf Config, opts ...Option) *Agent {
	a := &Agent{
		conf:    conf,
		baseLog: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("agent", conf.Name).Logger(),
	}
	for _, o := range opts {
		o(a)
	}
	a.log = a.baseLog
	return a
}
