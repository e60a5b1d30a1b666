package resp

import (
	"bytes"
	"errors"
	"testing"

	tresp "github.com/tidwall/resp"
)

// Cross-check the codec against an independent RESP implementation.

func TestInterop_DecodeForeignEncoding(t *testing.T) {
	var buf bytes.Buffer
	w := tresp.NewWriter(&buf)
	if err := w.WriteArray([]tresp.Value{
		tresp.StringValue("SET"),
		tresp.StringValue("foo"),
		tresp.StringValue("bar"),
	}); err != nil {
		t.Fatalf("WriteArray() error = %v", err)
	}
	if err := w.WriteSimpleString("OK"); err != nil {
		t.Fatalf("WriteSimpleString() error = %v", err)
	}
	if err := w.WriteInteger(-12); err != nil {
		t.Fatalf("WriteInteger() error = %v", err)
	}
	if err := w.WriteError(errors.New("ERR boom")); err != nil {
		t.Fatalf("WriteError() error = %v", err)
	}
	if err := w.WriteNull(); err != nil {
		t.Fatalf("WriteNull() error = %v", err)
	}

	want := []Value{
		CommandArgs("SET", "foo", "bar"),
		SimpleString("OK"),
		Integer(-12),
		Error("ERR boom"),
		NullBulkString(),
	}

	data := buf.Bytes()
	for i, w := range want {
		got, n, err := Decode(data)
		if err != nil {
			t.Fatalf("value %d: Decode() error = %v", i, err)
		}
		if !got.Equal(w) {
			t.Errorf("value %d = %v, want %v", i, got, w)
		}
		data = data[n:]
	}
	if len(data) != 0 {
		t.Errorf("%d trailing bytes", len(data))
	}
}

func TestInterop_ForeignDecodesEncoding(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Encode(CommandArgs("ECHO", "hello")))
	buf.Write(Encode(Integer(99)))
	buf.Write(Encode(NullBulkString()))

	r := tresp.NewReader(&buf)

	v, _, err := r.ReadValue()
	if err != nil {
		t.Fatalf("ReadValue() error = %v", err)
	}
	if v.Type() != tresp.Array || len(v.Array()) != 2 {
		t.Fatalf("first value = %v", v)
	}
	if v.Array()[0].String() != "ECHO" || v.Array()[1].String() != "hello" {
		t.Errorf("array = %v", v.Array())
	}

	v, _, err = r.ReadValue()
	if err != nil {
		t.Fatalf("ReadValue() error = %v", err)
	}
	if v.Type() != tresp.Integer || v.Integer() != 99 {
		t.Errorf("second value = %v", v)
	}

	v, _, err = r.ReadValue()
	if err != nil {
		t.Fatalf("ReadValue() error = %v", err)
	}
	if !v.IsNull() {
		t.Errorf("third value should be null, got %v", v)
	}
}
