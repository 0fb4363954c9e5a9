package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"cricket-quiz-service/internal/domain"
)

type scriptedCompleter struct {
	replies []string
	errs    []error
	prompts []string
}

func (s *scriptedCompleter) Complete(_ context.Context, _, userPrompt string) (string, error) {
	i := len(s.prompts)
	s.prompts = append(s.prompts, userPrompt)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

type stubHistory struct {
	attempts []domain.QuizAttempt
	limit    int
}

func (h *stubHistory) RecentAttempts(_ context.Context, _ string, limit int) ([]domain.QuizAttempt, error) {
	h.limit = limit
	return h.attempts, nil
}

func validQuizJSON(t *testing.T) string {
	t.Helper()
	_, _, questions := StaticQuiz("T20")
	data, err := json.Marshal(map[string]any{"questions": questions})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestGenerateQuizValidOutput(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{"```json\n" + validQuizJSON(t) + "\n```"}}
	history := &stubHistory{attempts: []domain.QuizAttempt{
		{Questions: []domain.QuestionRecord{{Question: "Who won the 2011 World Cup?"}}},
		{Questions: []domain.QuestionRecord{{Question: "Who won the 2011 World Cup?"}, {Question: "Who is the IPL's top scorer?"}}},
	}}
	gateway := NewGateway(completer, history)

	questions, err := gateway.GenerateQuiz(context.Background(), "T20", "u1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != QuestionsPerQuiz {
		t.Fatalf("expected %d questions, got %d", QuestionsPerQuiz, len(questions))
	}
	if history.limit != 5 {
		t.Fatalf("expected history depth 5, got %d", history.limit)
	}
	prompt := completer.prompts[0]
	if strings.Count(prompt, "Who won the 2011 World Cup?") != 1 || !strings.Contains(prompt, "top scorer") {
		t.Fatalf("expected deduplicated exclusion list in prompt, got %q", prompt)
	}
}

func TestGenerateQuizAcceptsBareArray(t *testing.T) {
	_, _, questions := StaticQuiz("ODI")
	data, _ := json.Marshal(questions)
	gateway := NewGateway(&scriptedCompleter{replies: []string{string(data)}}, nil)

	out, err := gateway.GenerateQuiz(context.Background(), "ODI", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out[0].ID != "static-1" {
		t.Fatalf("unexpected first question %+v", out[0])
	}
}

func TestGenerateQuizRejectsInvalidOutput(t *testing.T) {
	bad := `{"questions":[{"id":"a","question":"q","options":["x","y","z"],"correctAnswer":"x","explanation":"e"}]}`
	completer := &scriptedCompleter{replies: []string{bad, bad, bad}}
	gateway := NewGateway(completer, nil)

	_, err := gateway.GenerateQuiz(context.Background(), "IPL", "u1")
	var genErr *Error
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if genErr.Stage != StageValidate {
		t.Fatalf("expected validate stage, got %s", genErr.Stage)
	}
	if len(completer.prompts) != 3 {
		t.Fatalf("expected 1 call plus 2 retries, got %d", len(completer.prompts))
	}
}

func TestGenerateQuizRejectsWrongAnswer(t *testing.T) {
	_, _, questions := StaticQuiz("Test")
	questions[2].CorrectAnswer = "not an option"
	data, _ := json.Marshal(map[string]any{"questions": questions})
	gateway := NewGateway(&scriptedCompleter{replies: []string{string(data)}}, nil, WithRetries(0))

	_, err := gateway.GenerateQuiz(context.Background(), "Test", "")
	if !IsGenerationError(err) || !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected generation error wrapping ErrInvalidQuestion, got %v", err)
	}
}

func TestGenerateQuizBackendFailure(t *testing.T) {
	completer := &scriptedCompleter{errs: []error{errors.New("timeout")}}
	gateway := NewGateway(completer, nil, WithRetries(0))

	_, err := gateway.GenerateQuiz(context.Background(), "WPL", "")
	var genErr *Error
	if !errors.As(err, &genErr) || genErr.Stage != StageBackend {
		t.Fatalf("expected backend stage error, got %v", err)
	}
}

func TestGenerateQuizRetriesThenSucceeds(t *testing.T) {
	completer := &scriptedCompleter{
		errs:    []error{errors.New("503"), nil},
		replies: []string{"", validQuizJSON(t)},
	}
	gateway := NewGateway(completer, nil)

	if _, err := gateway.GenerateQuiz(context.Background(), "T20", ""); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(completer.prompts) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(completer.prompts))
	}
}

func TestStaticQuizIsValid(t *testing.T) {
	title, _, questions := StaticQuiz("IPL")
	if err := ValidateQuiz(questions); err != nil {
		t.Fatalf("static quiz invalid: %v", err)
	}
	if !strings.HasPrefix(title, "IPL") {
		t.Fatalf("expected format in title, got %q", title)
	}
}
