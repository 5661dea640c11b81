package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/simbleau/convo/internal/logging"
	"github.com/simbleau/convo/pkg/session"
	"github.com/simbleau/convo/pkg/tree"
	"github.com/simbleau/convo/pkg/walker"
)

// ContentRenderer transforms dialogue before it is written, e.g. markdown
// to ANSI. A nil renderer prints the text as is.
type ContentRenderer func(string) (string, error)

// Runner drives an interactive walk: print the current node, show the
// choices as a numbered menu, read a line, advance.
type Runner struct {
	in       io.Reader
	out      io.Writer
	renderer ContentRenderer
	logger   *slog.Logger

	manager   *session.Manager
	sessionID string

	lines     chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// Option configures the Runner.
type Option func(*Runner)

// WithIO sets the input and output streams. Nil values keep the defaults
// (Stdin and Stdout).
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *Runner) {
		if in != nil {
			r.in = in
		}
		if out != nil {
			r.out = out
		}
	}
}

// WithRenderer configures the content renderer.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.renderer = renderer
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithSession routes every step through the manager so the walk survives
// restarts. An empty sessionID gets a generated one when Run starts; read
// it back with SessionID.
func WithSession(manager *session.Manager, sessionID string) Option {
	return func(r *Runner) {
		r.manager = manager
		r.sessionID = sessionID
	}
}

// New creates a Runner reading from Stdin and writing to Stdout unless
// configured otherwise.
func New(opts ...Option) *Runner {
	r := &Runner{
		in:     os.Stdin,
		out:    os.Stdout,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SessionID returns the session this runner persists to. It is set once
// Run has started a managed walk.
func (r *Runner) SessionID() string {
	return r.sessionID
}

// Run walks the tree interactively until a terminal node, EOF, the :q
// command, or ctx cancellation. All of those end the walk with a nil
// error; only broken trees and failing stores are reported.
func (r *Runner) Run(ctx context.Context, t *tree.Tree) error {
	w, err := r.resolveWalker(ctx, t)
	if err != nil {
		return err
	}

	var back []string
	for {
		if ctx.Err() != nil {
			return nil
		}

		r.printNode(w)
		if w.IsTerminal() {
			r.logger.Debug("walk finished", "node", w.Current())
			return nil
		}

		line, err := r.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		switch line {
		case "":
			continue
		case ":q":
			return nil
		case ":r":
			back = back[:0]
			if err := r.moveTo(ctx, t, w, t.Root()); err != nil {
				return err
			}
			continue
		case ":b":
			if len(back) == 0 {
				fmt.Fprintln(r.out, "Nothing to go back to.")
				continue
			}
			prev := back[len(back)-1]
			if err := r.moveTo(ctx, t, w, prev); err != nil {
				return err
			}
			back = back[:len(back)-1]
			continue
		}

		name, ok := r.resolveChoice(w, line)
		if !ok {
			fmt.Fprintf(r.out, "No choice %q here. Enter a number or a link name.\n", line)
			continue
		}

		from := w.Current()
		if _, err := w.Advance(name); err != nil {
			var dangling *walker.TargetNotFoundError
			if errors.As(err, &dangling) {
				fmt.Fprintf(r.out, "That path is broken: %v\n", err)
				continue
			}
			return err
		}
		if err := r.persistStep(ctx, t, name); err != nil {
			return err
		}
		back = append(back, from)
	}
}

// resolveWalker builds the walker, resuming a managed session when one is
// configured.
func (r *Runner) resolveWalker(ctx context.Context, t *tree.Tree) (*walker.Walker, error) {
	if r.manager == nil {
		return walker.FromRoot(t)
	}

	state, resumed, err := r.manager.LoadOrStart(ctx, t, r.sessionID)
	if err != nil {
		return nil, err
	}
	r.sessionID = state.SessionID

	if resumed {
		fmt.Fprintf(r.out, ">>> Resuming session %q at %q.\n", state.SessionID, state.Current)
	} else {
		fmt.Fprintf(r.out, ">>> Session %q started.\n", state.SessionID)
	}
	r.logger.Info("session ready", "session_id", state.SessionID, "node", state.Current, "resumed", resumed)

	return walker.New(t, state.Current)
}

func (r *Runner) printNode(w *walker.Walker) {
	text := w.Dialogue()
	if r.renderer != nil {
		if rendered, err := r.renderer(text); err == nil {
			text = rendered
		}
	}
	fmt.Fprintln(r.out, strings.TrimSpace(text))

	i := 0
	for name, l := range w.Links() {
		i++
		if l.Dialogue != "" {
			fmt.Fprintf(r.out, "  %d) %s  %q\n", i, name, l.Dialogue)
		} else {
			fmt.Fprintf(r.out, "  %d) %s\n", i, name)
		}
	}
}

// resolveChoice maps a line to a link name: either a 1-based menu number
// or the name itself.
func (r *Runner) resolveChoice(w *walker.Walker, line string) (string, bool) {
	var names []string
	for name := range w.Links() {
		names = append(names, name)
	}

	if n, err := strconv.Atoi(line); err == nil {
		if n < 1 || n > len(names) {
			return "", false
		}
		return names[n-1], true
	}

	for _, name := range names {
		if name == line {
			return name, true
		}
	}
	return "", false
}

// moveTo repositions the walker and, when managed, persists the jump.
func (r *Runner) moveTo(ctx context.Context, t *tree.Tree, w *walker.Walker, id string) error {
	if err := w.Reset(id); err != nil {
		return err
	}
	if r.manager != nil {
		if _, err := r.manager.Reset(ctx, t, r.sessionID, id); err != nil {
			return fmt.Errorf("persist step: %w", err)
		}
	}
	return nil
}

func (r *Runner) persistStep(ctx context.Context, t *tree.Tree, name string) error {
	if r.manager == nil {
		return nil
	}
	if _, err := r.manager.Advance(ctx, t, r.sessionID, name); err != nil {
		return fmt.Errorf("persist step: %w", err)
	}
	r.logger.Debug("state saved", "session_id", r.sessionID)
	return nil
}

func (r *Runner) initPump() {
	r.startOnce.Do(func() {
		r.lines = make(chan inputResult)
		go r.pump()
	})
}

// pump feeds lines from the input stream into a channel so readLine can
// select against ctx while a read is in flight.
func (r *Runner) pump() {
	reader := bufio.NewReader(r.in)
	for {
		text, err := reader.ReadString('\n')
		if text != "" {
			r.lines <- inputResult{text: text}
		}
		if err != nil {
			if err == io.EOF {
				close(r.lines)
				return
			}
			r.lines <- inputResult{err: err}
			// Backoff to avoid spinning on a persistently failing stream.
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func (r *Runner) readLine(ctx context.Context) (string, error) {
	r.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(r.out, "> ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-r.lines:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}

			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(r.out, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}
