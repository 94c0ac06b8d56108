/*
Package runner drives one conversation from a terminal or a pipe.

The Runner feeds user lines to a bot and prints the posts it answers with,
until the session reaches a post without rules or the input ends. How posts
are printed and how lines become inputs is the job of an IOHandler:

  - TextHandler: interactive use. Buttons are listed with numbers and can be
    pressed by number or label.
  - JSONHandler: JSON lines, for driving a bot from another program.

# Usage

	r := runner.NewRunner(bot,
		runner.WithSessionID("cli"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
