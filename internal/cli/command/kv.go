package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:   "ping",
		Usage:  "Check the connection to the server",
		Action: func(c *cli.Context) error { return runOnce(c, "PING") },
	}
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Ask the server to return a message",
		ArgsUsage: "MESSAGE",
		Action: func(c *cli.Context) error {
			if err := expectArgs(c, 1); err != nil {
				return err
			}
			return runOnce(c, "ECHO", c.Args().Get(0))
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if err := expectArgs(c, 1); err != nil {
				return err
			}
			return runOnce(c, "GET", c.Args().Get(0))
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set the value of a key",
		ArgsUsage: "KEY VALUE",
		Action: func(c *cli.Context) error {
			if err := expectArgs(c, 2); err != nil {
				return err
			}
			return runOnce(c, "SET", c.Args().Get(0), c.Args().Get(1))
		},
	}
}

// RawCommand returns the raw command, which sends its arguments unchanged.
func RawCommand() *cli.Command {
	return &cli.Command{
		Name:      "raw",
		Aliases:   []string{"do"},
		Usage:     "Send any command, e.g. raw SET k v",
		ArgsUsage: "COMMAND [ARG...]",
		Action: func(c *cli.Context) error {
			if !c.Args().Present() {
				return fmt.Errorf("%s: missing command", c.Command.Name)
			}
			return runOnce(c, c.Args().Slice()...)
		},
	}
}

func expectArgs(c *cli.Context, n int) error {
	if got := c.Args().Len(); got != n {
		return fmt.Errorf("%s: expected %d argument(s) %s, got %d",
			c.Command.Name, n, c.Command.ArgsUsage, got)
	}
	return nil
}
