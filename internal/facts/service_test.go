package facts

import (
	"context"
	"errors"
	"testing"
)

type fakeCompleter struct {
	reply string
	err   error
}

func (f fakeCompleter) Complete(context.Context, string, string) (string, error) {
	return f.reply, f.err
}

func TestDecodeShapes(t *testing.T) {
	cases := map[string]string{
		"strings":         `["a","b"]`,
		"objects":         `[{"fact":"a"},{"fact":"b"}]`,
		"envelope":        `{"facts":["a","b"]}`,
		"envelope object": `{"facts":[{"fact":"a"},{"fact":" b "}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Decode([]byte(doc))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != 2 || got[0] != "a" || got[1] != "b" {
				t.Fatalf("unexpected facts %v", got)
			}
		})
	}
}

func TestDecodeRejectsUnknownShape(t *testing.T) {
	for _, doc := range []string{`{"fact":"a"}`, `[1,2]`, `"a"`} {
		if _, err := Decode([]byte(doc)); err == nil {
			t.Fatalf("expected error for %s", doc)
		}
	}
}

func TestFactsFallsBack(t *testing.T) {
	cases := map[string]*Service{
		"unconfigured": NewService(nil),
		"backend":      NewService(fakeCompleter{err: errors.New("down")}),
		"garbage":      NewService(fakeCompleter{reply: "not json"}),
		"empty":        NewService(fakeCompleter{reply: `{"facts":[]}`}),
	}
	for name, svc := range cases {
		t.Run(name, func(t *testing.T) {
			got := svc.Facts(context.Background(), "T20", 5)
			if len(got) != 5 || got[0] != fallbackFacts[0] {
				t.Fatalf("expected fallback facts, got %v", got)
			}
		})
	}
}

func TestFactsTrimsToCount(t *testing.T) {
	svc := NewService(fakeCompleter{reply: "```json\n" + `["a","b","c"]` + "\n```"})
	got := svc.Facts(context.Background(), "IPL", 2)
	if len(got) != 2 || got[1] != "b" {
		t.Fatalf("unexpected facts %v", got)
	}
}
