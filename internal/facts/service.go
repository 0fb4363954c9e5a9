// Package facts serves the short cricket facts shown while a quiz loads.
package facts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"cricket-quiz-service/internal/llm"
)

const (
	DefaultCount = 5
	maxCount     = 10
)

var fallbackFacts = []string{
	"Sir Don Bradman's Test batting average is an incredible 99.94.",
	"The first-ever cricket World Cup was held in 1975 in England.",
	"A 'hat-trick' is when a bowler takes three wickets on three consecutive deliveries.",
	"Jim Laker holds the record for taking 19 wickets in a single Test match.",
	"The longest Test match in history was played between England and South Africa in 1939, lasting 12 days.",
}

const systemPrompt = `You write short, surprising, accurate cricket facts. Reply with ONLY a JSON object {"facts":["..."]}. Each fact is one sentence.`

// Fallback returns a copy of the built-in facts.
func Fallback() []string {
	return append([]string(nil), fallbackFacts...)
}

type Service struct {
	llm llm.Completer
}

func NewService(completer llm.Completer) *Service {
	return &Service{llm: completer}
}

// Facts returns up to count facts themed on format. It never fails: any
// backend or decode problem yields the built-in facts.
func (s *Service) Facts(ctx context.Context, format string, count int) []string {
	if count <= 0 {
		count = DefaultCount
	}
	if count > maxCount {
		count = maxCount
	}
	if s.llm == nil {
		return Fallback()
	}
	if format == "" {
		format = "cricket"
	}
	raw, err := s.llm.Complete(ctx, systemPrompt, fmt.Sprintf("Give me %d facts about %s cricket.", count, format))
	if err != nil {
		log.Printf("[facts] generate for %s: %v", format, err)
		return Fallback()
	}
	facts, err := Decode([]byte(llm.CleanJSON(raw)))
	if err != nil || len(facts) == 0 {
		log.Printf("[facts] decode for %s: %v", format, err)
		return Fallback()
	}
	if len(facts) > count {
		facts = facts[:count]
	}
	return facts
}

type factItem struct {
	Fact string `json:"fact"`
}

type factEnvelope struct {
	Facts json.RawMessage `json:"facts"`
}

var errUnknownShape = errors.New("unrecognised facts document")

// Decode accepts exactly three shapes, tried in order: an array of strings,
// an array of {"fact": "..."} objects, or {"facts": <either array>}.
func Decode(doc []byte) ([]string, error) {
	trimmed := strings.TrimSpace(string(doc))
	if strings.HasPrefix(trimmed, "{") {
		var env factEnvelope
		if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
			return nil, fmt.Errorf("decode facts envelope: %w", err)
		}
		if len(env.Facts) == 0 {
			return nil, errUnknownShape
		}
		return decodeArray(env.Facts)
	}
	return decodeArray([]byte(trimmed))
}

func decodeArray(doc []byte) ([]string, error) {
	var plain []string
	if err := json.Unmarshal(doc, &plain); err == nil {
		return clean(plain), nil
	}
	var items []factItem
	if err := json.Unmarshal(doc, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.Fact)
		}
		return clean(out), nil
	}
	return nil, errUnknownShape
}

func clean(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
