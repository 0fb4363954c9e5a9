package app

import (
	"context"
	"errors"
	"log"

	"cricket-quiz-service/internal/domain"
	"cricket-quiz-service/internal/generation"
)

// QuizSource tells where a question set came from.
type QuizSource string

const (
	SourceSlot     QuizSource = "slot"
	SourceAI       QuizSource = "ai"
	SourceFallback QuizSource = "fallback"
)

// QuizData is the payload served by the quiz fetch endpoint.
type QuizData struct {
	SlotID      string                  `json:"slotId,omitempty"`
	Questions   []domain.QuestionRecord `json:"questions"`
	Title       string                  `json:"title,omitempty"`
	Description string                  `json:"description,omitempty"`
	Source      QuizSource              `json:"source"`
}

// QuizService contains the quiz fetch use case.
type QuizService struct {
	slots     SlotRepository
	generator QuizGenerator
}

// NewQuizService wires the slot repository and generator. Either may be nil.
func NewQuizService(slots SlotRepository, generator QuizGenerator) *QuizService {
	return &QuizService{slots: slots, generator: generator}
}

// FetchQuiz returns the live slot's questions for format, else a generated
// quiz, else the static fallback set.
func (s *QuizService) FetchQuiz(ctx context.Context, brand, format, userID string) (QuizData, error) {
	if data, ok := s.fromSlot(ctx, format); ok {
		return data, nil
	}

	if s.generator != nil {
		questions, err := s.generator.GenerateQuiz(ctx, format, userID)
		if err == nil && len(questions) > 0 {
			return QuizData{
				Questions:   questions,
				Title:       brandedTitle(brand, format),
				Description: "A fresh set of five questions, easy to expert.",
				Source:      SourceAI,
			}, nil
		}
		if err != nil {
			log.Printf("[quiz] generation failed for %s, serving fallback: %v", format, err)
		}
	}

	title, description, questions := generation.StaticQuiz(format)
	if len(questions) == 0 {
		return QuizData{}, domain.ErrNoQuestions
	}
	return QuizData{
		Questions:   questions,
		Title:       title,
		Description: description,
		Source:      SourceFallback,
	}, nil
}

func (s *QuizService) fromSlot(ctx context.Context, format string) (QuizData, bool) {
	if s.slots == nil || format == "" {
		return QuizData{}, false
	}
	slot, err := s.slots.LiveSlot(ctx, format)
	if err != nil {
		if !errors.Is(err, domain.ErrSlotNotFound) {
			log.Printf("[quiz] slot lookup for %s: %v", format, err)
		}
		return QuizData{}, false
	}
	questions := make([]domain.QuestionRecord, 0, slot.PerUser())
	for _, q := range slot.Questions {
		if len(questions) == slot.PerUser() {
			break
		}
		if err := q.Validate(); err != nil {
			log.Printf("[quiz] slot %s: skipping question: %v", slot.ID, err)
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return QuizData{}, false
	}
	return QuizData{
		SlotID:      slot.ID,
		Questions:   questions,
		Title:       slot.Title,
		Description: slot.Description,
		Source:      SourceSlot,
	}, true
}

func brandedTitle(brand, format string) string {
	if brand == "" {
		return format + " Quiz"
	}
	return brand + " " + format + " Quiz"
}
