package redisserver

import (
	"testing"

	"github.com/yndnr/respkv-go/internal/storage/memory"
	"github.com/yndnr/respkv-go/pkg/resp"
)

// ============================================================
// Mock store for testing
// ============================================================

// recordingKV records store calls on top of a plain map.
type recordingKV struct {
	data map[string]string
	gets int
	sets int
}

func newRecordingKV() *recordingKV {
	return &recordingKV{data: make(map[string]string)}
}

func (kv *recordingKV) Get(key string) (string, bool) {
	kv.gets++
	v, ok := kv.data[key]
	return v, ok
}

func (kv *recordingKV) Set(key, value string) {
	kv.sets++
	kv.data[key] = value
}

// ============================================================
// Dispatch Table
// ============================================================

func TestDispatch(t *testing.T) {
	tests := []struct {
		name     string
		cmd      resp.Command
		args     []resp.Value
		seed     map[string]string
		want     resp.Value
		wantGets int
		wantSets int
	}{
		{
			name: "PING",
			cmd:  resp.Ping,
			want: resp.SimpleString("PONG"),
		},
		{
			name: "PING ignores arguments",
			cmd:  resp.Ping,
			args: []resp.Value{resp.BulkString("hello")},
			want: resp.SimpleString("PONG"),
		},
		{
			name: "ECHO bulk",
			cmd:  resp.Echo,
			args: []resp.Value{resp.BulkString("hello")},
			want: resp.BulkString("hello"),
		},
		{
			name: "ECHO returns argument unchanged",
			cmd:  resp.Echo,
			args: []resp.Value{resp.Integer(5), resp.BulkString("ignored")},
			want: resp.Integer(5),
		},
		{
			name: "ECHO without argument",
			cmd:  resp.Echo,
			want: resp.Error("ERR wrong number of arguments for 'echo' command"),
		},
		{
			name:     "GET missing key",
			cmd:      resp.Get,
			args:     []resp.Value{resp.BulkString("foo")},
			want:     resp.NullBulkString(),
			wantGets: 1,
		},
		{
			name:     "GET existing key",
			cmd:      resp.Get,
			args:     []resp.Value{resp.BulkString("foo")},
			seed:     map[string]string{"foo": "bar"},
			want:     resp.BulkString("bar"),
			wantGets: 1,
		},
		{
			name: "GET without key",
			cmd:  resp.Get,
			want: resp.NullBulkString(),
		},
		{
			name: "GET with integer key",
			cmd:  resp.Get,
			args: []resp.Value{resp.Integer(1)},
			want: resp.NullBulkString(),
		},
		{
			name:     "SET",
			cmd:      resp.Set,
			args:     []resp.Value{resp.BulkString("foo"), resp.BulkString("bar")},
			want:     resp.SimpleString("OK"),
			wantSets: 1,
		},
		{
			name:     "SET with simple string args",
			cmd:      resp.Set,
			args:     []resp.Value{resp.SimpleString("foo"), resp.SimpleString("bar")},
			want:     resp.SimpleString("OK"),
			wantSets: 1,
		},
		{
			name: "SET without value",
			cmd:  resp.Set,
			args: []resp.Value{resp.BulkString("foo")},
			want: resp.NullBulkString(),
		},
		{
			name: "SET without arguments",
			cmd:  resp.Set,
			want: resp.NullBulkString(),
		},
		{
			name: "SET with null value",
			cmd:  resp.Set,
			args: []resp.Value{resp.BulkString("foo"), resp.NullBulkString()},
			want: resp.NullBulkString(),
		},
		{
			name: "unknown command",
			cmd:  resp.Unknown,
			args: []resp.Value{resp.BulkString("x")},
			want: resp.Error("Unknown command"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newRecordingKV()
			for k, v := range tt.seed {
				kv.data[k] = v
			}
			h := NewCommandHandler(kv)

			got := h.Dispatch(tt.cmd, tt.args)
			if !got.Equal(tt.want) {
				t.Errorf("Dispatch() = %v, want %v", got, tt.want)
			}
			if kv.gets != tt.wantGets {
				t.Errorf("store gets = %d, want %d", kv.gets, tt.wantGets)
			}
			if kv.sets != tt.wantSets {
				t.Errorf("store sets = %d, want %d", kv.sets, tt.wantSets)
			}
		})
	}
}

func TestDispatch_SetThenGet(t *testing.T) {
	h := NewCommandHandler(memory.New())

	steps := []struct {
		cmd  resp.Command
		args []string
		want resp.Value
	}{
		{resp.Get, []string{"k"}, resp.NullBulkString()},
		{resp.Set, []string{"k", "v1"}, resp.SimpleString("OK")},
		{resp.Set, []string{"k", "v2"}, resp.SimpleString("OK")},
		{resp.Get, []string{"k"}, resp.BulkString("v2")},
	}

	for i, st := range steps {
		args := make([]resp.Value, len(st.args))
		for j, a := range st.args {
			args[j] = resp.BulkString(a)
		}
		if got := h.Dispatch(st.cmd, args); !got.Equal(st.want) {
			t.Errorf("step %d %v: got %v, want %v", i, st.cmd, got, st.want)
		}
	}
}
