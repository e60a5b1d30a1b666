package resp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCommand means a decoded value is not a command frame.
var ErrInvalidCommand = errors.New("resp: invalid command")

// Command is a recognized request name. Unknown is a valid classification,
// not an error.
type Command int

// Commands.
const (
	Unknown Command = iota
	Ping
	Echo
	Get
	Set
)

// String returns the upper-case command name.
func (c Command) String() string {
	switch c {
	case Ping:
		return "PING"
	case Echo:
		return "ECHO"
	case Get:
		return "GET"
	case Set:
		return "SET"
	default:
		return "UNKNOWN"
	}
}

// ParseCommand classifies a command name, ignoring case.
func ParseCommand(name string) Command {
	switch strings.ToUpper(name) {
	case "PING":
		return Ping
	case "ECHO":
		return Echo
	case "GET":
		return Get
	case "SET":
		return Set
	default:
		return Unknown
	}
}

// ToCommand extracts the command and its arguments from a request frame.
//
// Only a non-empty array whose first element is a simple or bulk string is a
// command frame. The remaining elements are returned in order, unchanged.
func ToCommand(v Value) (Command, []Value, error) {
	if v.Kind != KindArray || v.Null {
		return Unknown, nil, fmt.Errorf("%w: expected array, got %s", ErrInvalidCommand, v.Kind)
	}
	if len(v.Array) == 0 {
		return Unknown, nil, fmt.Errorf("%w: empty array", ErrInvalidCommand)
	}
	name, ok := v.Array[0].Text()
	if !ok {
		return Unknown, nil, fmt.Errorf("%w: command name is %s", ErrInvalidCommand, v.Array[0].Kind)
	}
	return ParseCommand(name), v.Array[1:], nil
}

// CommandArgs builds a request frame: an array of bulk strings.
func CommandArgs(name string, args ...string) Value {
	elems := make([]Value, 0, len(args)+1)
	elems = append(elems, BulkString(name))
	for _, a := range args {
		elems = append(elems, BulkString(a))
	}
	return ArrayOf(elems...)
}
