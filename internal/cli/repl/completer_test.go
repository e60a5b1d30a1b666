package repl

import "testing"

func TestCompleter_Complete(t *testing.T) {
	c := NewCompleter()

	tests := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"ECHO", "exit", "GET", "help", "PING", "quit", "SET"}},
		{"g", []string{"GET"}},
		{"E", []string{"ECHO", "exit"}},
		{"se", []string{"SET"}},
		{"x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got := c.Complete(tt.prefix)
			if len(got) != len(tt.want) {
				t.Fatalf("Complete(%q) returned %d commands, want %d", tt.prefix, len(got), len(tt.want))
			}
			for i, cmd := range got {
				if cmd.Name != tt.want[i] {
					t.Errorf("Complete(%q)[%d] = %q, want %q", tt.prefix, i, cmd.Name, tt.want[i])
				}
			}
		})
	}
}

func TestCompleter_EntriesHaveSummaries(t *testing.T) {
	for _, cmd := range NewCompleter().Complete("") {
		if cmd.Summary == "" {
			t.Errorf("command %q has no summary", cmd.Name)
		}
	}
}
