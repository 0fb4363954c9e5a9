package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"cricket-quiz-service/internal/domain"
)

type fakeCompleter struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeCompleter) Complete(_ context.Context, _, userPrompt string) (string, error) {
	f.prompt = userPrompt
	return f.reply, f.err
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestFallbackInterpolatesScore(t *testing.T) {
	svc := NewService(nil)
	res := svc.Analyze(context.Background(), RawAttempt{Format: "T20", Score: intPtr(3), TotalQuestions: intPtr(5)})

	if res.Source != domain.AnalysisSourceFallback {
		t.Fatalf("expected fallback source, got %s", res.Source)
	}
	want := "A solid effort on the T20 quiz! You scored 3 out of 5. We're showing general feedback as the AI coach is unavailable."
	if res.Summary != want {
		t.Fatalf("unexpected summary %q", res.Summary)
	}
	if len(res.Strengths) == 0 || len(res.Weaknesses) == 0 || len(res.Recommendations) == 0 {
		t.Fatalf("fallback lists must be populated: %+v", res)
	}
}

func TestFallbackDefaults(t *testing.T) {
	res := Fallback(RawAttempt{})
	if !strings.Contains(res.Summary, "the cricket quiz") || !strings.Contains(res.Summary, "scored a good out of your") {
		t.Fatalf("unexpected default summary %q", res.Summary)
	}
}

func TestAnalyzeUsesModelOutput(t *testing.T) {
	reply := "```json\n" + `{"summary":"Great run chase.","strengths":["Stats"],"weaknesses":["History"],"recommendations":["Read Wisden"]}` + "\n```"
	completer := &fakeCompleter{reply: reply}
	svc := NewService(completer)

	res := svc.Analyze(context.Background(), RawAttempt{
		Format:      "ODI",
		Questions:   []RawQuestion{{Text: "Who?", Answer: "Sachin"}},
		UserAnswers: []*string{strPtr("Sachin")},
	})
	if res.Source != domain.AnalysisSourceAI || res.Summary != "Great run chase." {
		t.Fatalf("expected ai analysis, got %+v", res)
	}
	if !strings.Contains(completer.prompt, `"isCorrect":true`) || !strings.Contains(completer.prompt, `"question":"Who?"`) {
		t.Fatalf("expected normalized questions in prompt, got %q", completer.prompt)
	}
}

func TestAnalyzeFallsBackOnInvalidOutput(t *testing.T) {
	cases := map[string]*fakeCompleter{
		"backend error":  {err: errors.New("quota")},
		"not json":       {reply: "sure, here you go"},
		"missing fields": {reply: `{"summary":"ok"}`},
	}
	for name, completer := range cases {
		t.Run(name, func(t *testing.T) {
			svc := NewService(completer)
			res := svc.Analyze(context.Background(), RawAttempt{
				Format:      "IPL",
				Questions:   []RawQuestion{{Question: "q", CorrectAnswer: "a"}},
				UserAnswers: []*string{nil},
			})
			if res.Source != domain.AnalysisSourceFallback {
				t.Fatalf("expected fallback, got %+v", res)
			}
		})
	}
}

func TestNormalizeAliasesAndNoBall(t *testing.T) {
	attempt := RawAttempt{
		Questions: []RawQuestion{
			{Question: "a", CorrectAnswer: "x"},
			{Text: "b", Answer: domain.NoBall},
			{Text: "c", Answer: "z"},
		},
		UserAnswers: []*string{strPtr("x"), strPtr(domain.NoBall)},
	}
	got := Normalize(attempt)
	if len(got) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(got))
	}
	if !got[0].IsCorrect {
		t.Fatalf("first answer should be correct")
	}
	if got[1].Question != "b" || got[1].IsCorrect {
		t.Fatalf("no-ball must never be correct: %+v", got[1])
	}
	if got[2].UserAnswer != "" || got[2].IsCorrect {
		t.Fatalf("missing answer should be empty and incorrect: %+v", got[2])
	}
}

func TestDecodeAttemptRejectsWrongShape(t *testing.T) {
	if _, err := DecodeAttempt(json.RawMessage(`{"score":"three"}`)); err == nil {
		t.Fatalf("expected decode error")
	}
	a, err := DecodeAttempt(json.RawMessage(`{"format":"T20","score":3,"totalQuestions":5}`))
	if err != nil || *a.Score != 3 || *a.TotalQuestions != 5 {
		t.Fatalf("unexpected decode result %+v, %v", a, err)
	}
}

func TestDecodeHeaderToleratesLooseNumbers(t *testing.T) {
	cases := []struct {
		raw          string
		format       string
		score, total *int
	}{
		{`{"format":"ODI","score":3.0,"totalQuestions":5}`, "ODI", intPtr(3), intPtr(5)},
		{`{"format":"Test","score":" 4 ","totalQuestions":"5"}`, "Test", intPtr(4), intPtr(5)},
		{`{"format":7,"score":2.5,"totalQuestions":true}`, "", nil, nil},
		{`{"score":"many"}`, "", nil, nil},
		{`[1,2]`, "", nil, nil},
	}
	for _, tc := range cases {
		got := DecodeHeader(json.RawMessage(tc.raw))
		if got.Format != tc.format {
			t.Fatalf("%s: format %q, want %q", tc.raw, got.Format, tc.format)
		}
		if !sameInt(got.Score, tc.score) || !sameInt(got.TotalQuestions, tc.total) {
			t.Fatalf("%s: score/total %v/%v, want %v/%v", tc.raw, got.Score, got.TotalQuestions, tc.score, tc.total)
		}
	}
}

func TestIsObject(t *testing.T) {
	for raw, want := range map[string]bool{
		` {"a":1}`: true,
		`{}`:       true,
		`""`:       false,
		`false`:    false,
		`0`:        false,
		`[]`:       false,
		`null`:     false,
		``:         false,
	} {
		if got := IsObject(json.RawMessage(raw)); got != want {
			t.Fatalf("IsObject(%q) = %v, want %v", raw, got, want)
		}
	}
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
