package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv-go/internal/cli/connection"
	"github.com/yndnr/respkv-go/internal/cli/output"
	"github.com/yndnr/respkv-go/internal/infra/buildinfo"
	"github.com/yndnr/respkv-go/pkg/resp"
)

// DefaultServer is the address used when --server is not given.
const DefaultServer = "127.0.0.1:6379"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "respkv-cli",
		Usage:     "Command-line client for respkv-server",
		UsageText: "respkv-cli [global options] [command [arguments...]]",
		Version:   buildinfo.String(),
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
			RawCommand(),
			REPLCommand(),
		},
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				return fmt.Errorf("unknown command %q, see --help", c.Args().First())
			}
			return runREPL(c)
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Server address (host:port or unix:///path/to.sock)",
			EnvVars: []string{"RESPKV_SERVER"},
			Value:   DefaultServer,
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Connect and per-command timeout",
			Value:   connection.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, raw, json, yaml",
			Value:   string(output.FormatText),
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Timeout time.Duration
	Output  output.Format
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Timeout: c.Duration("timeout"),
		Output:  output.Format(c.String("output")),
	}
}

// session bundles what a command needs to talk to the server.
type session struct {
	client    *connection.Client
	formatter output.Formatter
	timeout   time.Duration
}

// connect dials the server named by the global flags.
func connect(c *cli.Context) (*session, error) {
	flags := ParseGlobalFlags(c)

	formatter, err := output.NewFormatter(flags.Output)
	if err != nil {
		return nil, err
	}
	client, err := connection.Dial(c.Context, flags.Server, flags.Timeout)
	if err != nil {
		return nil, err
	}
	return &session{client: client, formatter: formatter, timeout: flags.Timeout}, nil
}

// do sends args and prints the reply to the app's writer. Error replies
// are printed, not returned.
func (s *session) do(c *cli.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(c.Context, s.timeout)
	defer cancel()

	reply, err := s.client.Do(ctx, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return s.print(c, reply)
}

func (s *session) print(c *cli.Context, v resp.Value) error {
	return s.formatter.Format(c.App.Writer, v)
}

// runOnce connects, sends one command and disconnects.
func runOnce(c *cli.Context, args ...string) error {
	s, err := connect(c)
	if err != nil {
		return err
	}
	defer s.client.Close()
	return s.do(c, args...)
}
