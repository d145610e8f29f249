package oracle

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrClosed  = errors.New("engine is closed")
	ErrNoScore = errors.New("no score in engine output")
	ErrEOF     = errors.New("engine stdout closed")

	// ErrProtocol marks a malformed line; the stream stays usable.
	ErrProtocol = errors.New("malformed engine output")
)

// Engine manages a UCI engine process.
type Engine struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	quit   time.Duration

	mu     sync.Mutex
	closed bool
}

// Start launches an external UCI engine process. The process lives until
// ctx is done or Close is called.
func Start(ctx context.Context, path string, quit time.Duration, args ...string) (*Engine, error) {
	if path == "" {
		return nil, errors.New("engine path is required")
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = filepath.Dir(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "start %s", path)
	}
	return &Engine{cmd: cmd, stdin: stdin, stdout: stdout, quit: quit}, nil
}

// Send sends a single command line to the engine.
func (e *Engine) Send(line string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	_, err := io.WriteString(e.stdin, line)
	return errors.WithStack(err)
}

// Close asks the engine to quit and kills it if it does not exit in time.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	_ = e.Send("quit")
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	done := make(chan error, 1)
	go func() { done <- e.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(e.quit):
		_ = e.cmd.Process.Kill()
		return errors.New("engine did not exit in time")
	}
}

// Reader reads and parses UCI protocol lines from the engine.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader creates a Reader for engine stdout.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next blocks until a line is available or EOF occurs.
func (r *Reader) Next() (Event, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return Event{}, err
		}
		return Event{}, io.EOF
	}
	return ParseLine(r.scanner.Text())
}

// EventType represents a UCI protocol event type.
type EventType int

const (
	EventUnknown EventType = iota
	EventID
	EventUCIOK
	EventReadyOK
	EventInfo
	EventBestMove
)

// Event is a parsed UCI protocol line.
type Event struct {
	Type   EventType
	Key    string
	Value  string
	Move   string
	Ponder string
	Raw    string
}

// ParseLine converts a raw line into a protocol event. Blank lines are
// reported as unknown events.
func ParseLine(line string) (Event, error) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Event{Type: EventUnknown}, nil
	}
	switch fields[0] {
	case "id":
		if len(fields) < 3 {
			return Event{}, errors.Wrapf(ErrProtocol, "invalid id: %q", line)
		}
		return Event{Type: EventID, Key: fields[1], Value: strings.Join(fields[2:], " ")}, nil
	case "uciok":
		return Event{Type: EventUCIOK}, nil
	case "readyok":
		return Event{Type: EventReadyOK}, nil
	case "bestmove":
		if len(fields) < 2 {
			return Event{}, errors.Wrapf(ErrProtocol, "invalid bestmove: %q", line)
		}
		e := Event{Type: EventBestMove, Move: fields[1]}
		if len(fields) >= 4 && fields[2] == "ponder" {
			e.Ponder = fields[3]
		}
		return e, nil
	case "info":
		return Event{Type: EventInfo, Raw: line}, nil
	default:
		return Event{Type: EventUnknown, Raw: line}, nil
	}
}

// sender is the write side of an engine.
type sender interface {
	Send(line string) error
	Close() error
}

// Session manages a UCI engine session and event stream.
type Session struct {
	engine sender
	events chan Event
	errCh  chan error
}

// StartSession launches a UCI engine and starts a reader goroutine.
func StartSession(ctx context.Context, conf Config, args ...string) (*Session, error) {
	engine, err := Start(ctx, conf.Path, conf.QuitTimeout, args...)
	if err != nil {
		return nil, err
	}
	return newSession(engine, engine.stdout), nil
}

func newSession(engine sender, stdout io.Reader) *Session {
	reader := NewReader(stdout)
	events := make(chan Event, 64)
	errCh := make(chan error, 1)
	go func() {
		defer close(events)
		for {
			event, err := reader.Next()
			if errors.Cause(err) == ErrProtocol {
				continue
			}
			if err != nil {
				select {
				case errCh <- err:
				default:
				}
				return
			}
			events <- event
		}
	}()
	return &Session{engine: engine, events: events, errCh: errCh}
}

// Close terminates the engine process.
func (s *Session) Close() error {
	if s == nil || s.engine == nil {
		return nil
	}
	err := s.engine.Close()
	// unblock the reader if nobody consumes its buffered events
	go func() {
		for range s.events {
		}
	}()
	return err
}

// Handshake runs the standard UCI handshake and applies the engine options.
func (s *Session) Handshake(ctx context.Context, conf Config) error {
	if err := s.engine.Send("uci"); err != nil {
		return err
	}
	if _, err := s.waitForEvent(ctx, EventUCIOK); err != nil {
		return errors.Wrap(err, "waiting for uciok")
	}
	opts := []string{
		fmt.Sprintf("setoption name Threads value %d", conf.Threads),
		fmt.Sprintf("setoption name Hash value %d", conf.HashMB),
		"ucinewgame",
		"isready",
	}
	for _, o := range opts {
		if err := s.engine.Send(o); err != nil {
			return err
		}
	}
	_, err := s.waitForEvent(ctx, EventReadyOK)
	return errors.Wrap(err, "waiting for readyok")
}

// Analyse runs a bounded search of fen, optionally restricted to a single
// root move, and returns the last reported score.
func (s *Session) Analyse(ctx context.Context, fen string, movetime time.Duration, root string) (Score, error) {
	if err := s.engine.Send("position fen " + fen); err != nil {
		return Score{}, err
	}
	ms := movetime.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	cmd := fmt.Sprintf("go movetime %d", ms)
	if root != "" {
		cmd += " searchmoves " + root
	}
	if err := s.engine.Send(cmd); err != nil {
		return Score{}, err
	}

	var score Score
	haveScore := false
	for {
		event, err := s.nextEvent(ctx)
		if err != nil {
			return Score{}, err
		}
		switch event.Type {
		case EventInfo:
			if parsed, ok := parseInfoScore(event.Raw); ok {
				score = parsed
				haveScore = true
			}
		case EventBestMove:
			if !haveScore {
				return Score{}, ErrNoScore
			}
			return score, nil
		}
	}
}

func (s *Session) waitForEvent(ctx context.Context, want EventType) (Event, error) {
	for {
		event, err := s.nextEvent(ctx)
		if err != nil {
			return Event{}, err
		}
		if event.Type == want {
			return event, nil
		}
	}
}

func (s *Session) nextEvent(ctx context.Context) (Event, error) {
	select {
	case <-ctx.Done():
		return Event{}, errors.WithStack(ctx.Err())
	case event, ok := <-s.events:
		if ok {
			return event, nil
		}
		// the reader reports its error before closing events
		select {
		case err := <-s.errCh:
			if err != nil && err != io.EOF {
				return Event{}, errors.WithStack(err)
			}
		default:
		}
		return Event{}, ErrEOF
	}
}

// parseInfoScore extracts "score cp N" or "score mate N" from an info line.
func parseInfoScore(line string) (Score, bool) {
	fields := strings.Fields(line)
	for i := 0; i+2 < len(fields); i++ {
		if fields[i] != "score" {
			continue
		}
		value, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return Score{}, false
		}
		switch fields[i+1] {
		case "cp":
			return Score{CP: value}, true
		case "mate":
			return Score{Mate: value, IsMate: true}, true
		}
		return Score{}, false
	}
	return Score{}, false
}
