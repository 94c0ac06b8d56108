package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/scenery"
	"github.com/aretw0/scenery/internal/presentation/tui"
	"github.com/aretw0/scenery/pkg/runner"
)

// RunSession plays the project in the terminal until the conversation ends,
// input is exhausted or the process is interrupted.
func RunSession(opts Options, stdin io.Reader, stdout io.Writer) error {
	logger := NewLogger(opts)
	quiet := opts.JSON || !runner.IsTerminal(stdout)

	if !quiet {
		tui.PrintBanner(stdout)
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	project := NewProject(opts, logger)
	g, err := project.LoadGraph(sigCtx)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	var extra []scenery.Option
	if opts.Debug {
		extra = append(extra, scenery.WithLifecycleHooks(debugHooks(logger)))
	}
	bot, closeStore, err := project.NewBot(g, extra...)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close state store", "err", err)
		}
	}()

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = runner.DefaultSessionID
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(stdin, stdout)
	} else {
		handler = runner.NewTextHandler(stdin, stdout)
	}

	r := runner.NewRunner(bot,
		runner.WithInputHandler(handler),
		runner.WithLogger(logger),
		runner.WithSessionID(sessionID),
		runner.WithResume(!opts.Fresh),
	)
	runErr := r.Run(sigCtx)
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}

	if !quiet {
		logCompletion(stdout, bot, sessionID, runErr, sigCtx.Signal())
	}
	return handleExecutionError(runErr)
}

func logCompletion(w io.Writer, bot *scenery.Bot, sessionID string, err error, sig os.Signal) {
	post := "?"
	if p, _, cerr := bot.Current(context.Background(), sessionID); cerr == nil {
		post = p.ID
	}

	switch {
	case err == nil:
		printSystemMessage(w, "Finished at '%s' post.", post)
	case sig == os.Interrupt:
		fmt.Fprintln(w, "[CTRL+C]")
		printSystemMessage(w, "Interrupted at '%s' post.", post)
	case sig != nil:
		fmt.Fprintln(w)
		printSystemMessage(w, "Terminated at '%s' post.", post)
	case isInterrupted(err):
		printSystemMessage(w, "Paused at '%s' post.", post)
	}
}
