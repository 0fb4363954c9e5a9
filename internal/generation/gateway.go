package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"cricket-quiz-service/internal/domain"
	"cricket-quiz-service/internal/llm"
)

// QuestionsPerQuiz is the fixed length of a generated quiz.
const QuestionsPerQuiz = 5

// HistoryReader returns a user's most recent attempts, newest first.
type HistoryReader interface {
	RecentAttempts(ctx context.Context, userID string, limit int) ([]domain.QuizAttempt, error)
}

// Stage names the gateway step that failed.
type Stage string

const (
	StageBackend  Stage = "backend"
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
)

// Error is the typed generation failure. Callers serve static content when they see it.
type Error struct {
	Stage  Stage
	Format string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generate %s quiz: %s: %v", e.Format, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsGenerationError reports whether err is (or wraps) a generation failure.
func IsGenerationError(err error) bool {
	var genErr *Error
	return errors.As(err, &genErr)
}

// Gateway asks the language model for themed quizzes and validates what comes back.
type Gateway struct {
	llm          llm.Completer
	history      HistoryReader
	historyDepth int
	retries      int
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithHistoryDepth sets how many recent attempts feed the do-not-repeat list.
func WithHistoryDepth(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.historyDepth = n
		}
	}
}

// WithRetries sets the prompt level retry budget.
func WithRetries(n int) Option {
	return func(g *Gateway) {
		if n >= 0 {
			g.retries = n
		}
	}
}

func NewGateway(completer llm.Completer, history HistoryReader, opts ...Option) *Gateway {
	g := &Gateway{
		llm:          completer,
		history:      history,
		historyDepth: 5,
		retries:      2,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateQuiz returns five validated questions of escalating difficulty for format.
// It never returns partially valid data: any failure is an *Error.
func (g *Gateway) GenerateQuiz(ctx context.Context, format, userID string) ([]domain.QuestionRecord, error) {
	seen := g.recentQuestions(ctx, userID)
	userPrompt := buildQuizPrompt(format, seen)

	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Stage: StageBackend, Format: format, Err: err}
		}
		questions, err := g.generateOnce(ctx, format, userPrompt)
		if err == nil {
			return questions, nil
		}
		lastErr = err
		log.Printf("[generation] attempt %d for %s failed: %v", attempt+1, format, err)
	}
	return nil, lastErr
}

func (g *Gateway) generateOnce(ctx context.Context, format, userPrompt string) ([]domain.QuestionRecord, error) {
	raw, err := g.llm.Complete(ctx, quizSystemPrompt, userPrompt)
	if err != nil {
		return nil, &Error{Stage: StageBackend, Format: format, Err: err}
	}
	doc := normalizeQuizDocument(raw)
	if !json.Valid(doc) {
		return nil, &Error{Stage: StageDecode, Format: format, Err: errors.New("output is not valid JSON")}
	}
	if err := validateSchema(quizSchema, doc); err != nil {
		return nil, &Error{Stage: StageValidate, Format: format, Err: err}
	}
	questions, err := DecodeQuiz(doc)
	if err != nil {
		return nil, &Error{Stage: StageDecode, Format: format, Err: err}
	}
	if err := ValidateQuiz(questions); err != nil {
		return nil, &Error{Stage: StageValidate, Format: format, Err: err}
	}
	return questions, nil
}

// recentQuestions builds the do-not-repeat list. History is best effort.
func (g *Gateway) recentQuestions(ctx context.Context, userID string) []string {
	if g.history == nil || userID == "" {
		return nil
	}
	attempts, err := g.history.RecentAttempts(ctx, userID, g.historyDepth)
	if err != nil {
		log.Printf("[generation] recent questions for %s: %v", userID, err)
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, attempt := range attempts {
		for _, q := range attempt.Questions {
			text := strings.TrimSpace(q.Question)
			if text == "" {
				continue
			}
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			out = append(out, text)
		}
	}
	return out
}

type quizEnvelope struct {
	Questions []domain.QuestionRecord `json:"questions"`
}

// normalizeQuizDocument applies the single accepted normalization: a bare
// array of questions is wrapped as {"questions":[...]}.
func normalizeQuizDocument(raw string) []byte {
	trimmed := strings.TrimSpace(llm.CleanJSON(raw))
	if strings.HasPrefix(trimmed, "[") {
		trimmed = `{"questions":` + trimmed + `}`
	}
	return []byte(trimmed)
}

// DecodeQuiz decodes a {"questions":[...]} document.
func DecodeQuiz(doc []byte) ([]domain.QuestionRecord, error) {
	var env quizEnvelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return nil, fmt.Errorf("decode quiz: %w", err)
	}
	return env.Questions, nil
}

// ValidateQuiz enforces the semantic rules the JSON schema cannot express.
func ValidateQuiz(questions []domain.QuestionRecord) error {
	if len(questions) != QuestionsPerQuiz {
		return fmt.Errorf("expected %d questions, got %d", QuestionsPerQuiz, len(questions))
	}
	ids := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if _, dup := ids[q.ID]; dup {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		ids[q.ID] = struct{}{}
	}
	return nil
}
