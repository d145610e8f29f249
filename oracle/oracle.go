package oracle

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/reconbeth/game"
)

// Evaluator scores fully specified positions. Implementations never panic on
// a bad position; a failed query is reported through Result.Err.
type Evaluator interface {
	// Start brings the evaluator up. It may be called again after Close.
	Start(ctx context.Context) error

	// Evaluate searches s for at most limit. A non-null root restricts the
	// search to that first move. The score is from s.Turn's point of view.
	Evaluate(ctx context.Context, s game.State, limit time.Duration, root game.Move) Result

	// Restart replaces a session left unusable by a failed query.
	Restart(ctx context.Context) error

	io.Closer
}

// Oracle is an Evaluator backed by a UCI engine process.
type Oracle struct {
	conf Config
	log  zerolog.Logger

	launch  func(ctx context.Context, conf Config) (*Session, error)
	session *Session
	cancel  context.CancelFunc

	queries  int
	failures int
	restarts int
}

// New creates an oracle for conf. No process is started until Start.
func New(conf Config, log zerolog.Logger) *Oracle {
	return &Oracle{
		conf:   conf,
		log:    log.With().Str("component", "oracle").Logger(),
		launch: func(ctx context.Context, conf Config) (*Session, error) {
			return StartSession(ctx, conf)
		},
	}
}

// Start launches the engine and completes the handshake within StartTimeout.
func (o *Oracle) Start(ctx context.Context) error {
	if o.session != nil {
		return nil
	}
	// the process outlives ctx; Close ends it
	procCtx, cancel := context.WithCancel(context.Background())
	session, err := o.launch(procCtx, o.conf)
	if err != nil {
		cancel()
		return errors.Wrap(err, "launch engine")
	}

	hctx, hcancel := context.WithTimeout(ctx, o.conf.StartTimeout)
	defer hcancel()
	if err := session.Handshake(hctx, o.conf); err != nil {
		session.Close()
		cancel()
		return errors.Wrap(err, "engine handshake")
	}
	o.session = session
	o.cancel = cancel
	o.log.Debug().Str("path", o.conf.Path).Int("threads", o.conf.Threads).Msg("engine ready")
	return nil
}

// Evaluate implements Evaluator. A query exceeding limit by more than the
// configured grace fails.
func (o *Oracle) Evaluate(ctx context.Context, s game.State, limit time.Duration, root game.Move) Result {
	o.queries++
	if o.session == nil {
		o.failures++
		return Result{Err: ErrClosed}
	}
	if limit < time.Millisecond {
		limit = time.Millisecond
	}
	qctx, cancel := context.WithTimeout(ctx, limit+o.conf.Grace)
	defer cancel()

	var searchmoves string
	if !root.IsNull() {
		searchmoves = root.String()
	}
	score, err := o.session.Analyse(qctx, s.FEN(), limit, searchmoves)
	if err != nil {
		o.failures++
		return Result{Err: errors.WithMessagef(err, "analyse %q searchmoves %q", s.FEN(), searchmoves)}
	}
	return Result{Score: score}
}

// Restart kills the current session, if any, and starts a fresh one. The
// handshake is bounded by ctx as well as StartTimeout.
func (o *Oracle) Restart(ctx context.Context) error {
	o.restarts++
	// a busy engine may not read quit in time
	if o.cancel != nil {
		o.cancel()
	}
	if err := o.Close(); err != nil {
		o.log.Warn().Err(err).Msg("closing engine before restart")
	}
	o.log.Info().Int("restarts", o.restarts).Msg("restarting engine")
	return o.Start(ctx)
}

// Close stops the engine process.
func (o *Oracle) Close() error {
	if o.session == nil {
		return nil
	}
	err := o.session.Close()
	o.session = nil
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	return errors.Wrap(err, "close engine")
}

// Stats returns query, failure and restart counts since creation.
func (o *Oracle) Stats() (queries, failures, restarts int) {
	return o.queries, o.failures, o.restarts
}
