// Package summary renders the end-of-quiz result shown to a player.
package summary

import (
	"context"
	"fmt"
	"strings"

	"cricket-quiz-service/internal/analysis"
	"cricket-quiz-service/internal/domain"
)

// Kind selects a renderer. The set is closed.
type Kind string

const (
	KindTemplate Kind = "template"
	KindCoached  Kind = "coached"
)

// Input is the locally held data a summary is built from.
type Input struct {
	Attempt *domain.QuizAttempt
	Brand   string
	Format  string
}

// QuestionOutcome is one row of the per-question breakdown.
type QuestionOutcome struct {
	Index         int     `json:"index"`
	Question      string  `json:"question"`
	UserAnswer    *string `json:"userAnswer"`
	CorrectAnswer string  `json:"correctAnswer"`
	Explanation   string  `json:"explanation,omitempty"`
	Correct       bool    `json:"correct"`
	NoBall        bool    `json:"noBall,omitempty"`
}

type Summary struct {
	Renderer  Kind                   `json:"renderer"`
	Headline  string                 `json:"headline"`
	Context   string                 `json:"context"`
	Score     int                    `json:"score"`
	Total     int                    `json:"total"`
	Questions []QuestionOutcome      `json:"questions"`
	Coaching  *domain.AnalysisResult `json:"coaching,omitempty"`
}

type Renderer interface {
	Render(ctx context.Context, in Input) Summary
}

// Analyzer produces coaching for a completed attempt.
type Analyzer interface {
	Analyze(ctx context.Context, attempt analysis.RawAttempt) domain.AnalysisResult
}

// New returns the renderer for kind. Unknown kinds and a coached renderer
// without an analyzer resolve to the template renderer.
func New(kind Kind, analyzer Analyzer) Renderer {
	if kind == KindCoached && analyzer != nil {
		return coached{analyzer: analyzer}
	}
	return Template{}
}

// Template renders from local data only and cannot fail.
type Template struct{}

func (Template) Render(_ context.Context, in Input) Summary {
	brand := strings.TrimSpace(in.Brand)
	if brand == "" {
		brand = "Cricket"
	}
	format := strings.TrimSpace(in.Format)
	if format == "" {
		format = "cricket"
	}
	s := Summary{
		Renderer: KindTemplate,
		Context:  fmt.Sprintf("%s %s Quiz", brand, format),
	}
	if in.Attempt != nil {
		s.Score = in.Attempt.Score
		s.Total = in.Attempt.TotalQuestions
		for i, q := range in.Attempt.Questions {
			var answer *string
			if i < len(in.Attempt.UserAnswers) {
				answer = in.Attempt.UserAnswers[i]
			}
			s.Questions = append(s.Questions, QuestionOutcome{
				Index:         i,
				Question:      q.Question,
				UserAnswer:    answer,
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
				Correct:       q.IsCorrect(answer),
				NoBall:        answer != nil && *answer == domain.NoBall,
			})
		}
	}
	s.Headline = headline(s.Score, s.Total)
	return s
}

func headline(score, total int) string {
	switch {
	case total == 0:
		return "No deliveries bowled this time. Check back for the next quiz!"
	case score == total:
		return fmt.Sprintf("Perfect innings! You scored %d out of %d.", score, total)
	case score*2 >= total:
		return fmt.Sprintf("Well played! You scored %d out of %d.", score, total)
	default:
		return fmt.Sprintf("Tough pitch today. You scored %d out of %d.", score, total)
	}
}

type coached struct {
	analyzer Analyzer
}

func (c coached) Render(ctx context.Context, in Input) Summary {
	s := Template{}.Render(ctx, in)
	s.Renderer = KindCoached
	if in.Attempt == nil || len(in.Attempt.Questions) == 0 {
		return s
	}
	raw := analysis.FromAttempt(in.Attempt)
	if raw.Format == "" {
		raw.Format = in.Format
	}
	result := c.analyzer.Analyze(ctx, raw)
	s.Coaching = &result
	return s
}
