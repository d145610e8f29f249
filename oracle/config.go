package oracle

import (
	"os"
	"time"

	"github.com/pkg/errors"
)

// ErrConfig is returned when the engine configuration is unusable.
var ErrConfig = errors.New("invalid oracle config")

// Config configures the UCI engine process
type Config struct {
	Path         string        `json:"path"`          // engine executable
	Threads      int           `json:"threads"`       // engine search threads
	HashMB       int           `json:"hash_mb"`       // transposition table size
	StartTimeout time.Duration `json:"start_timeout"` // handshake budget
	Grace        time.Duration `json:"grace"`         // slack over movetime before a query counts as failed
	QuitTimeout  time.Duration `json:"quit_timeout"`  // wait for the process to exit after quit
}

func DefaultConf(path string) Config {
	return Config{
		Path:         path,
		Threads:      1,
		HashMB:       16,
		StartTimeout: 10 * time.Second,
		Grace:        500 * time.Millisecond,
		QuitTimeout:  3 * time.Second,
	}
}

func (conf Config) IsValid() bool {
	return conf.Path != "" &&
		conf.Threads >= 1 &&
		conf.HashMB >= 1 &&
		conf.StartTimeout > 0 &&
		conf.Grace >= 0 &&
		conf.QuitTimeout > 0
}

// Validate is IsValid plus a check that the executable exists.
func (conf Config) Validate() error {
	if !conf.IsValid() {
		return errors.Wrapf(ErrConfig, "%+v", conf)
	}
	info, err := os.Stat(conf.Path)
	if err != nil {
		return errors.Wrapf(ErrConfig, "engine %q: %v", conf.Path, err)
	}
	if info.IsDir() {
		return errors.Wrapf(ErrConfig, "engine %q is a directory", conf.Path)
	}
	return nil
}
