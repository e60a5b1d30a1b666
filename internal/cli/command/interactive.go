package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv-go/internal/cli/repl"
)

// REPLCommand returns the interactive mode command.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Start interactive mode (default when no command is given)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "history",
				Usage:   "History file, empty to disable",
				EnvVars: []string{"RESPKV_HISTORY"},
				Value:   repl.DefaultHistoryPath(),
			},
		},
		Action: runREPL,
	}
}

func runREPL(c *cli.Context) error {
	s, err := connect(c)
	if err != nil {
		return err
	}
	defer s.client.Close()

	exec := func(_ context.Context, args []string) error {
		return s.do(c, args...)
	}

	history := repl.DefaultHistoryPath()
	if c.Command != nil && c.Command.Name == "repl" {
		history = c.String("history")
	}

	r := repl.New(exec,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithPrompt(fmt.Sprintf("%s> ", s.client.Addr())),
		repl.WithHistory(repl.NewHistory(history)),
	)
	return r.Run(c.Context)
}
