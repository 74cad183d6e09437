package tokenizer

import (
	"context"
	"strings"
	"testing"
)

// FuzzTokenizer checks that no input panics and that the tokenizer always terminates.
// Run with: go test -fuzz=FuzzTokenizer -fuzztime=30s ./internal/tokenizer
func FuzzTokenizer(f *testing.F) {
	seeds := []string{
		"",
		"a",
		",",
		"\n",
		"\r\n",
		"\r",
		"\"",
		"\"\"",
		"a,b,c",
		"\"quoted\"",
		"\"with,comma\"",
		"\"with\"\"quote\"",
		"a\nb\nc",
		"ab\"c,d\"",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		tok, err := New(strings.NewReader(input), DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i <= len(input)+1; i++ {
			if _, err := tok.Next(context.Background()); err != nil {
				return
			}
		}
		t.Fatalf("more rows than input bytes for %q", input)
	})
}
