package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrUnbalancedQuotes is returned by SplitArgs for an unterminated quote.
var ErrUnbalancedQuotes = errors.New("invalid argument(s): unbalanced quotes")

// Executor runs one command line split into arguments.
type Executor func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithPrompt sets the prompt text.
func WithPrompt(prompt string) Option {
	return func(r *REPL) {
		r.prompt = prompt
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// New creates a new REPL that hands each command to exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    "respkv> ",
		exec:      exec,
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads commands until exit, quit, end of input or ctx ends. Command
// errors are printed and do not stop the loop.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: cannot load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: cannot save history: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}
		r.history.Add(line)

		if stop := r.handle(ctx, line); stop || eof {
			return nil
		}
	}
}

// handle runs one line and reports whether the loop should end.
func (r *REPL) handle(ctx context.Context, line string) bool {
	args, err := SplitArgs(line)
	if err != nil {
		fmt.Fprintf(r.output, "(error) %v\n", err)
		return false
	}

	switch strings.ToLower(args[0]) {
	case "exit", "quit":
		return true
	case "help":
		prefix := ""
		if len(args) > 1 {
			prefix = args[1]
		}
		r.printHelp(prefix)
		return false
	}

	if err := r.exec(ctx, args); err != nil {
		fmt.Fprintf(r.output, "(error) %v\n", err)
	}
	return false
}

func (r *REPL) printHelp(prefix string) {
	matches := r.completer.Complete(prefix)
	if len(matches) == 0 {
		fmt.Fprintf(r.output, "no command matches %q\n", prefix)
		return
	}
	for _, c := range matches {
		usage := c.Name
		if c.Args != "" {
			usage += " " + c.Args
		}
		fmt.Fprintf(r.output, "  %-22s %s\n", usage, c.Summary)
	}
}

// SplitArgs splits a command line into arguments. Double-quoted arguments
// understand \n, \r, \t, \", \\ and \xHH escapes; single-quoted arguments
// are literal except for \'.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   byte
		escaped bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]

		switch {
		case escaped:
			escaped = false
			if quote == '\'' {
				if ch != '\'' {
					cur.WriteByte('\\')
				}
				cur.WriteByte(ch)
				continue
			}
			switch ch {
			case 'n':
				cur.WriteByte('\n')
			case 'r':
				cur.WriteByte('\r')
			case 't':
				cur.WriteByte('\t')
			case 'x':
				if i+2 < len(line) && isHex(line[i+1]) && isHex(line[i+2]) {
					cur.WriteByte(unhex(line[i+1])<<4 | unhex(line[i+2]))
					i += 2
				} else {
					cur.WriteByte('x')
				}
			default:
				cur.WriteByte(ch)
			}
		case quote != 0:
			switch ch {
			case '\\':
				escaped = true
			case quote:
				quote = 0
				// A closing quote must end the argument.
				if i+1 < len(line) && line[i+1] != ' ' && line[i+1] != '\t' {
					return nil, ErrUnbalancedQuotes
				}
			default:
				cur.WriteByte(ch)
			}
		case ch == ' ' || ch == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		case (ch == '"' || ch == '\'') && !inArg:
			quote = ch
			inArg = true
		default:
			cur.WriteByte(ch)
			inArg = true
		}
	}

	if quote != 0 || escaped {
		return nil, ErrUnbalancedQuotes
	}
	if inArg {
		args = append(args, cur.String())
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	return args, nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
