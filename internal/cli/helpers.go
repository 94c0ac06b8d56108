package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/scenery/internal/logging"
	"github.com/aretw0/scenery/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.stop.Do(func() { signal.Stop(sc.sigCh) })
	}()

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger. Logs go to stderr so they
// never mix with the conversation on stdout.
func NewLogger(opts Options) *slog.Logger {
	if opts.Debug {
		return logging.New(slog.LevelDebug)
	}
	if opts.LogLevel == "" {
		return logging.NewNop()
	}
	return logging.New(logging.ParseLevel(opts.LogLevel))
}

func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPostEnter: func(ctx context.Context, e *domain.PostEvent) {
			logger.Debug("enter post", "post_id", e.PostID, "kind", e.Kind)
		},
		OnPostLeave: func(ctx context.Context, e *domain.PostEvent) {
			logger.Debug("leave post", "post_id", e.PostID, "input", e.Input.Kind)
		},
		OnNoTransition: func(ctx context.Context, e *domain.PostEvent) {
			logger.Debug("no transition", "post_id", e.PostID, "input", e.Input.Value)
		},
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
