package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cricket-quiz-service/internal/domain"
)

// RawAttempt is a completed attempt as submitted by a client.
// Questions may use either the canonical field names or the legacy aliases.
type RawAttempt struct {
	UserID         string        `json:"userId,omitempty"`
	SlotID         string        `json:"slotId,omitempty"`
	Brand          string        `json:"brand,omitempty"`
	Format         string        `json:"format,omitempty"`
	Score          *int          `json:"score,omitempty"`
	TotalQuestions *int          `json:"totalQuestions,omitempty"`
	Questions      []RawQuestion `json:"questions,omitempty"`
	UserAnswers    []*string     `json:"userAnswers,omitempty"`
}

// RawQuestion accepts `question` or `text`, and `correctAnswer` or `answer`.
type RawQuestion struct {
	Question      string `json:"question,omitempty"`
	Text          string `json:"text,omitempty"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	Answer        string `json:"answer,omitempty"`
}

// NormalizedQuestion is the canonical per-question record sent to the coach.
type NormalizedQuestion struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correctAnswer"`
	UserAnswer    string `json:"userAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// DecodeAttempt decodes a client attempt. A document that does not fit the
// RawAttempt shape is an error; callers then fall back to the template.
func DecodeAttempt(raw json.RawMessage) (RawAttempt, error) {
	var attempt RawAttempt
	if err := json.Unmarshal(raw, &attempt); err != nil {
		return RawAttempt{}, fmt.Errorf("decode attempt: %w", err)
	}
	return attempt, nil
}

// IsObject reports whether raw holds a JSON object.
func IsObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// DecodeHeader reads only the fields the fallback template needs, tolerating
// numbers sent as floats or strings. Fields it cannot read stay unset.
func DecodeHeader(raw json.RawMessage) RawAttempt {
	var header struct {
		UserID         any `json:"userId"`
		Format         any `json:"format"`
		Score          any `json:"score"`
		TotalQuestions any `json:"totalQuestions"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return RawAttempt{}
	}
	var out RawAttempt
	if v, ok := header.UserID.(string); ok {
		out.UserID = v
	}
	if v, ok := header.Format.(string); ok {
		out.Format = strings.TrimSpace(v)
	}
	out.Score = looseInt(header.Score)
	out.TotalQuestions = looseInt(header.TotalQuestions)
	return out
}

func looseInt(v any) *int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	i := int(f)
	return &i
}

// FromAttempt converts a session attempt into its raw form.
func FromAttempt(a *domain.QuizAttempt) RawAttempt {
	score, total := a.Score, a.TotalQuestions
	raw := RawAttempt{
		UserID:         a.UserID,
		SlotID:         a.SlotID,
		Brand:          a.Brand,
		Format:         a.Format,
		Score:          &score,
		TotalQuestions: &total,
		UserAnswers:    append([]*string(nil), a.UserAnswers...),
	}
	for _, q := range a.Questions {
		raw.Questions = append(raw.Questions, RawQuestion{Question: q.Question, CorrectAnswer: q.CorrectAnswer})
	}
	return raw
}

// Normalize merges questions with index-aligned answers.
func Normalize(a RawAttempt) []NormalizedQuestion {
	out := make([]NormalizedQuestion, 0, len(a.Questions))
	for i, q := range a.Questions {
		text := q.Question
		if text == "" {
			text = q.Text
		}
		correct := q.CorrectAnswer
		if correct == "" {
			correct = q.Answer
		}
		user := ""
		if i < len(a.UserAnswers) && a.UserAnswers[i] != nil {
			user = *a.UserAnswers[i]
		}
		out = append(out, NormalizedQuestion{
			Question:      text,
			CorrectAnswer: correct,
			UserAnswer:    user,
			IsCorrect:     user != "" && user != domain.NoBall && user == correct,
		})
	}
	return out
}
