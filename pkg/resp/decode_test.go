package resp

import (
	"errors"
	"strings"
	"testing"
)

// ============================================================
// Decode Tests - Scalar Kinds
// ============================================================

func TestDecode_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"simple string", "+OK\r\n", SimpleString("OK")},
		{"empty simple string", "+\r\n", SimpleString("")},
		{"error", "-Unknown command\r\n", Error("Unknown command")},
		{"integer", ":1000\r\n", Integer(1000)},
		{"negative integer", ":-42\r\n", Integer(-42)},
		{"max int64", ":9223372036854775807\r\n", Integer(9223372036854775807)},
		{"bulk string", "$5\r\nhello\r\n", BulkString("hello")},
		{"empty bulk string", "$0\r\n\r\n", BulkString("")},
		{"bulk with CRLF inside", "$4\r\na\r\nb\r\n", BulkString("a\r\nb")},
		{"null bulk string", "$-1\r\n", NullBulkString()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
			if n != len(tt.input) {
				t.Errorf("consumed = %d, want %d", n, len(tt.input))
			}
		})
	}
}

// ============================================================
// Decode Tests - Arrays
// ============================================================

func TestDecode_Arrays(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{
			name:  "PING request",
			input: "*1\r\n$4\r\nPING\r\n",
			want:  CommandArgs("PING"),
		},
		{
			name:  "SET request",
			input: "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n",
			want:  CommandArgs("SET", "foo", "bar"),
		},
		{
			name:  "empty array",
			input: "*0\r\n",
			want:  ArrayOf(),
		},
		{
			name:  "null array",
			input: "*-1\r\n",
			want:  NullArray(),
		},
		{
			name:  "mixed kinds",
			input: "*4\r\n+OK\r\n-ERR x\r\n:7\r\n$-1\r\n",
			want:  ArrayOf(SimpleString("OK"), Error("ERR x"), Integer(7), NullBulkString()),
		},
		{
			name:  "nested",
			input: "*2\r\n*2\r\n:1\r\n:2\r\n*1\r\n$1\r\na\r\n",
			want:  ArrayOf(ArrayOf(Integer(1), Integer(2)), ArrayOf(BulkString("a"))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
			if n != len(tt.input) {
				t.Errorf("consumed = %d, want %d", n, len(tt.input))
			}
		})
	}
}

func TestDecode_ConsumesOnlyFirstValue(t *testing.T) {
	first := "*1\r\n$4\r\nPING\r\n"
	second := "*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"
	buf := []byte(first + second)

	v, n, err := Decode(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(first) {
		t.Fatalf("consumed = %d, want %d", n, len(first))
	}
	if !v.Equal(CommandArgs("PING")) {
		t.Errorf("first = %v", v)
	}

	v, n, err = Decode(buf[n:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(second) {
		t.Errorf("consumed = %d, want %d", n, len(second))
	}
	if !v.Equal(CommandArgs("GET", "foo")) {
		t.Errorf("second = %v", v)
	}
}

func TestDecode_DoesNotMutateInput(t *testing.T) {
	input := "*2\r\n$4\r\nECHO\r\n$5\r\nhello\r\n"
	buf := []byte(input)
	if _, _, err := Decode(buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(buf) != input {
		t.Errorf("input mutated: %q", buf)
	}
}

// ============================================================
// Decode Tests - Incomplete Input
// ============================================================

func TestDecode_Incomplete(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty buffer", ""},
		{"sigil only", "+"},
		{"simple string without CRLF", "+OK"},
		{"simple string with CR only", "+OK\r"},
		{"integer without CRLF", ":12"},
		{"bulk header only", "$5\r\n"},
		{"bulk partial payload", "$5\r\nhel"},
		{"bulk missing LF", "$5\r\nhello\r"},
		{"array header only", "*2\r\n"},
		{"array missing last element", "*2\r\n$3\r\nGET\r\n"},
		{"array partial nested element", "*2\r\n$3\r\nGET\r\n$3\r\nfo"},
		{"nested array incomplete", "*1\r\n*2\r\n:1\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, n, err := Decode([]byte(tt.input))
			if !errors.Is(err, ErrIncomplete) {
				t.Errorf("err = %v, want ErrIncomplete", err)
			}
			if n != 0 {
				t.Errorf("consumed = %d, want 0", n)
			}
		})
	}
}

// ============================================================
// Decode Tests - Malformed Input
// ============================================================

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown sigil", "!oops\r\n"},
		{"inline command", "PING\r\n"},
		{"bare LF terminator", "+OK\n"},
		{"stray CR in line", "+O\rK\r\n"},
		{"non-numeric integer", ":abc\r\n"},
		{"empty integer", ":\r\n"},
		{"integer overflow", ":9223372036854775808\r\n"},
		{"non-numeric bulk length", "$x\r\nabc\r\n"},
		{"negative bulk length", "$-2\r\n"},
		{"empty bulk length", "$\r\n"},
		{"bulk terminator mismatch", "$3\r\nfooXY"},
		{"bulk payload too long", "$2\r\nfoo\r\n"},
		{"non-numeric array length", "*x\r\n"},
		{"negative array length", "*-5\r\n"},
		{"bad element inside array", "*2\r\n$3\r\nGET\r\n!x\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.input))
			if !errors.Is(err, ErrProtocol) {
				t.Errorf("err = %v, want ErrProtocol", err)
			}
			if errors.Is(err, ErrIncomplete) {
				t.Error("malformed input must not report ErrIncomplete")
			}
		})
	}
}

func TestDecode_Limits(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bulk length over limit", "$536870913\r\n"},
		{"huge bulk length", "$99999999999999999999999\r\n"},
		{"array length over limit", "*1048577\r\n"},
		{"unterminated long line", "+" + strings.Repeat("a", MaxLineLen+1)},
		{"nesting too deep", strings.Repeat("*1\r\n", MaxDepth+1) + ":1\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.input))
			if !errors.Is(err, ErrLimitExceeded) {
				t.Errorf("err = %v, want ErrLimitExceeded", err)
			}
			if !errors.Is(err, ErrProtocol) {
				t.Errorf("limit errors must also be protocol errors: %v", err)
			}
		})
	}
}

func TestDecode_MaxDepthAllowed(t *testing.T) {
	input := strings.Repeat("*1\r\n", MaxDepth) + ":1\r\n"
	if _, _, err := Decode([]byte(input)); err != nil {
		t.Errorf("nesting of %d should decode: %v", MaxDepth, err)
	}
}

// ============================================================
// Fragmentation Invariance
// ============================================================

func TestDecode_FragmentationInvariance(t *testing.T) {
	inputs := []string{
		"*1\r\n$4\r\nPING\r\n",
		"*2\r\n$4\r\nECHO\r\n$5\r\nhello\r\n",
		"*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n",
		"*2\r\n*2\r\n:1\r\n:-2\r\n*3\r\n+a\r\n-b\r\n$-1\r\n",
		"$11\r\nhello\r\nworld\r\n",
		"*-1\r\n",
	}

	for _, input := range inputs {
		want, wantN, err := Decode([]byte(input))
		if err != nil {
			t.Fatalf("whole decode of %q: %v", input, err)
		}

		for split := 0; split < len(input); split++ {
			buf := []byte(input[:split])
			_, _, err := Decode(buf)
			if !errors.Is(err, ErrIncomplete) {
				t.Fatalf("prefix %q: err = %v, want ErrIncomplete", input[:split], err)
			}

			buf = append(buf, input[split:]...)
			got, n, err := Decode(buf)
			if err != nil {
				t.Fatalf("split %d of %q: %v", split, input, err)
			}
			if !got.Equal(want) || n != wantN {
				t.Errorf("split %d of %q: got %v (%d bytes), want %v (%d bytes)", split, input, got, n, want, wantN)
			}
		}
	}
}

// ============================================================
// Fuzz
// ============================================================

func FuzzDecode(f *testing.F) {
	seeds := []string{
		"*1\r\n$4\r\nPING\r\n",
		"*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n",
		"+OK\r\n",
		":-1\r\n",
		"$-1\r\n",
		"*-1\r\n",
		"*2\r\n*0\r\n-e\r\n",
	}
	for _, s := range seeds {
		f.Add([]byte(s))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		v, n, err := Decode(data)
		if err != nil {
			if n != 0 {
				t.Fatalf("consumed %d bytes on error %v", n, err)
			}
			return
		}
		if n <= 0 || n > len(data) {
			t.Fatalf("consumed %d of %d bytes", n, len(data))
		}

		// The canonical encoding must decode to the same value.
		again, m, err := Decode(Encode(v))
		if err != nil {
			t.Fatalf("re-decode of %v: %v", v, err)
		}
		if !again.Equal(v) || m != len(Encode(v)) {
			t.Fatalf("re-decode mismatch: %v vs %v", again, v)
		}
	})
}
