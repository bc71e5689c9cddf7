// Package prompt runs the interactive read-compute-print loop.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/okian/getaway/internal/adapters/render"
	repository "github.com/okian/getaway/internal/adapters/repository"
	"github.com/okian/getaway/internal/domain/model"
	"github.com/okian/getaway/internal/domain/recommend"
	"github.com/okian/getaway/pkg/logger"
)

// DefaultPrompt is printed before every read.
const DefaultPrompt = "\nEnter your current city (or 'q' to quit): "

// State is the loop's lifecycle state.
type State int

// Loop states.
const (
	AwaitingInput State = iota
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Recommender answers a single city query.
type Recommender interface {
	Recommend(ctx context.Context, city string) ([]model.Recommendation, error)
}

// Option applies a configuration option to the Loop.
type Option func(*Loop)

// WithLogger sets the logger used for query failures.
func WithLogger(l logger.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.logger = l
		}
	}
}

// WithPrompt overrides the prompt text.
func WithPrompt(p string) Option {
	return func(lp *Loop) {
		lp.prompt = p
	}
}

// Loop reads city names from in and writes results to out until told to stop.
type Loop struct {
	rec    Recommender
	in     io.Reader
	out    io.Writer
	prompt string
	logger logger.Logger

	mu    sync.Mutex
	state State
}

// New creates a loop over in and out.
func New(rec Recommender, in io.Reader, out io.Writer, opts ...Option) *Loop {
	l := &Loop{
		rec:    rec,
		in:     in,
		out:    out,
		prompt: DefaultPrompt,
		logger: logger.Nop(),
		state:  AwaitingInput,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsExit reports whether line asks the loop to stop: q, quit or exit in any case.
func IsExit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "q", "quit", "exit":
		return true
	default:
		return false
	}
}

// State returns the current state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Run blocks until an exit word is read, input ends or ctx is done.
// It returns nil on a normal exit and ctx.Err() on cancellation.
// Query errors are printed and do not stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	defer l.setState(Terminated)

	lines := make(chan string, 1)
	readErr := make(chan error, 1)
	next := make(chan struct{})
	go l.read(lines, readErr, next)
	defer close(next)

	for {
		if _, err := io.WriteString(l.out, l.prompt); err != nil {
			return err
		}

		select {
		case next <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}

		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case line = <-lines:
		}

		if IsExit(line) {
			return nil
		}
		city := strings.TrimSpace(line)
		if city == "" {
			continue
		}
		if err := l.handle(ctx, city); err != nil {
			return err
		}
	}
}

// read scans one line each time next is signalled. EOF is reported as a nil error.
// lines and errs must be buffered so a send never blocks after Run has returned.
func (l *Loop) read(lines chan<- string, errs chan<- error, next <-chan struct{}) {
	sc := bufio.NewScanner(l.in)
	for range next {
		if !sc.Scan() {
			errs <- sc.Err()
			return
		}
		lines <- sc.Text()
	}
}

// handle runs one query and prints its outcome. Only write errors are returned.
func (l *Loop) handle(ctx context.Context, city string) error {
	recs, err := l.rec.Recommend(ctx, city)
	switch {
	case err == nil:
		return render.Table(l.out, recommend.NormalizeCity(city), recs)
	case errors.Is(err, recommend.ErrCityNotFound):
		return render.NotFound(l.out)
	case errors.Is(err, repository.ErrDataUnavailable):
		l.logger.Warn(ctx, "query without destination data",
			logger.String("city", city),
			logger.Error(err),
		)
		return render.Unavailable(l.out)
	default:
		l.logger.Error(ctx, "recommendation failed",
			logger.String("city", city),
			logger.Error(err),
		)
		_, werr := fmt.Fprintf(l.out, "Error: %v\n", err)
		return werr
	}
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}
