package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"cricket-quiz-service/internal/domain"
	"cricket-quiz-service/internal/llm"
	"cricket-quiz-service/internal/requestid"

	"github.com/xeipuuv/gojsonschema"
)

const outputSchema = `{
	"type": "object",
	"properties": {
		"summary": {"type": "string", "minLength": 1},
		"strengths": {"type": "array", "items": {"type": "string"}, "minItems": 1},
		"weaknesses": {"type": "array", "items": {"type": "string"}, "minItems": 1},
		"recommendations": {"type": "array", "items": {"type": "string"}, "minItems": 1}
	},
	"required": ["summary", "strengths", "weaknesses", "recommendations"]
}`

var outputSchemaLoader = gojsonschema.NewStringLoader(outputSchema)

const systemPrompt = `You are a friendly cricket quiz coach. Given a player's completed quiz, respond with ONLY a JSON object:
{"summary":"...","strengths":["..."],"weaknesses":["..."],"recommendations":["..."]}
Keep the summary to two sentences, refer to the actual questions, and be encouraging.`

// Service produces post-quiz coaching. It always returns a usable result.
type Service struct {
	llm llm.Completer
}

func NewService(completer llm.Completer) *Service {
	return &Service{llm: completer}
}

// Analyze returns AI coaching for attempt, or the templated fallback on any failure.
func (s *Service) Analyze(ctx context.Context, attempt RawAttempt) domain.AnalysisResult {
	ctx, reqID := requestid.Ensure(ctx)
	result, err := s.analyzeWithModel(ctx, attempt)
	if err != nil {
		log.Printf("[analysis] reqId=%s user=%s serving fallback: %v", reqID, attempt.UserID, err)
		return Fallback(attempt)
	}
	log.Printf("[analysis] reqId=%s user=%s generated analysis", reqID, attempt.UserID)
	return result
}

func (s *Service) analyzeWithModel(ctx context.Context, attempt RawAttempt) (domain.AnalysisResult, error) {
	if s.llm == nil {
		return domain.AnalysisResult{}, llm.ErrNotConfigured
	}
	questions := Normalize(attempt)
	if len(questions) == 0 {
		return domain.AnalysisResult{}, fmt.Errorf("attempt has no questions")
	}
	payload, err := json.Marshal(struct {
		Format         string               `json:"format"`
		Score          *int                 `json:"score,omitempty"`
		TotalQuestions *int                 `json:"totalQuestions,omitempty"`
		Questions      []NormalizedQuestion `json:"questions"`
	}{attempt.Format, attempt.Score, attempt.TotalQuestions, questions})
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	raw, err := s.llm.Complete(ctx, systemPrompt, "Analyse this quiz attempt:\n"+string(payload))
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	doc := []byte(llm.CleanJSON(raw))
	if !json.Valid(doc) {
		return domain.AnalysisResult{}, fmt.Errorf("analysis output is not valid JSON")
	}
	validation, err := gojsonschema.Validate(outputSchemaLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("validate analysis: %w", err)
	}
	if !validation.Valid() {
		return domain.AnalysisResult{}, fmt.Errorf("analysis output failed validation: %v", validation.Errors())
	}
	var result domain.AnalysisResult
	if err := json.Unmarshal(doc, &result); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("decode analysis: %w", err)
	}
	result.Source = domain.AnalysisSourceAI
	return result, nil
}

// Fallback is the deterministic templated analysis built from local data only.
func Fallback(attempt RawAttempt) domain.AnalysisResult {
	format := strings.TrimSpace(attempt.Format)
	if format == "" {
		format = "cricket"
	}
	score := "a good"
	if attempt.Score != nil {
		score = strconv.Itoa(*attempt.Score)
	}
	total := "your"
	if attempt.TotalQuestions != nil {
		total = strconv.Itoa(*attempt.TotalQuestions)
	}
	return domain.AnalysisResult{
		Summary: fmt.Sprintf("A solid effort on the %s quiz! You scored %s out of %s. We're showing general feedback as the AI coach is unavailable.", format, score, total),
		Strengths: []string{
			"Consistency in completing quizzes.",
			"Willingness to learn and improve.",
		},
		Weaknesses: []string{
			"Potential gaps in specific eras or player stats.",
			"Time management on difficult questions.",
		},
		Recommendations: []string{
			"Review questions you were unsure about.",
			"Focus on one cricket format to build deep knowledge.",
			"Try to answer questions you're confident about more quickly.",
		},
		Source: domain.AnalysisSourceFallback,
	}
}
