package redisserver

import (
	"github.com/yndnr/respkv-go/pkg/resp"
)

// Fixed replies.
var (
	replyPong    = resp.SimpleString("PONG")
	replyOK      = resp.SimpleString("OK")
	replyUnknown = resp.Error("Unknown command")
	replyNoEcho  = resp.Error("ERR wrong number of arguments for 'echo' command")
)

// KV is the store the dispatcher reads and writes.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// CommandHandler maps decoded commands to replies. It keeps no state
// between commands; all shared state lives in the store.
type CommandHandler struct {
	store KV
}

// NewCommandHandler creates a CommandHandler backed by store.
func NewCommandHandler(store KV) *CommandHandler {
	return &CommandHandler{store: store}
}

// Dispatch executes cmd and returns its reply. Missing arguments never
// fail the connection: each command has its own fallback reply.
func (h *CommandHandler) Dispatch(cmd resp.Command, args []resp.Value) resp.Value {
	switch cmd {
	case resp.Ping:
		return replyPong
	case resp.Echo:
		return h.handleEcho(args)
	case resp.Get:
		return h.handleGet(args)
	case resp.Set:
		return h.handleSet(args)
	default:
		return replyUnknown
	}
}

func (h *CommandHandler) handleEcho(args []resp.Value) resp.Value {
	if len(args) == 0 {
		return replyNoEcho
	}
	return args[0]
}

func (h *CommandHandler) handleGet(args []resp.Value) resp.Value {
	key, ok := textArg(args, 0)
	if !ok {
		return resp.NullBulkString()
	}
	value, found := h.store.Get(key)
	if !found {
		return resp.NullBulkString()
	}
	return resp.BulkString(value)
}

func (h *CommandHandler) handleSet(args []resp.Value) resp.Value {
	key, ok := textArg(args, 0)
	if !ok {
		return resp.NullBulkString()
	}
	value, ok := textArg(args, 1)
	if !ok {
		return resp.NullBulkString()
	}
	h.store.Set(key, value)
	return replyOK
}

// textArg returns args[i] as text. Out-of-range, null and non-string
// arguments count as missing.
func textArg(args []resp.Value, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	return args[i].Text()
}
