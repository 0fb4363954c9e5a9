package domain

import (
	"fmt"
	"strings"
	"time"
)

// NoBall is the forfeit answer. It never scores, even if an option carries the same text.
const NoBall = "no-ball"

// QuestionRecord is one validated multiple choice question.
type QuestionRecord struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Validate checks the question has text, four distinct options and a correct answer among them.
func (q QuestionRecord) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	}
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: %s: missing text", ErrInvalidQuestion, q.ID)
	}
	if len(q.Options) != 4 {
		return fmt.Errorf("%w: %s: expected 4 options, got %d", ErrInvalidQuestion, q.ID, len(q.Options))
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: %s: empty option", ErrInvalidQuestion, q.ID)
		}
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("%w: %s: duplicate option %q", ErrInvalidQuestion, q.ID, opt)
		}
		seen[opt] = struct{}{}
	}
	if _, ok := seen[q.CorrectAnswer]; !ok {
		return fmt.Errorf("%w: %s: correct answer is not an option", ErrInvalidQuestion, q.ID)
	}
	return nil
}

// IsCorrect reports whether answer scores for this question.
func (q QuestionRecord) IsCorrect(answer *string) bool {
	if answer == nil || *answer == NoBall {
		return false
	}
	return *answer == q.CorrectAnswer
}

// QuizAttempt is one player's run through a question set.
// UserAnswers is index aligned with Questions; nil marks an unanswered question.
type QuizAttempt struct {
	ID             string           `json:"id"`
	SlotID         string           `json:"slotId"`
	UserID         string           `json:"userId"`
	Format         string           `json:"format"`
	Brand          string           `json:"brand"`
	Questions      []QuestionRecord `json:"questions"`
	UserAnswers    []*string        `json:"userAnswers"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	Timestamp      time.Time        `json:"timestamp"`
	Reviewed       bool             `json:"reviewed"`
	Reason         string           `json:"reason,omitempty"`
}

// NewQuizAttempt creates an attempt with one empty answer slot per question.
func NewQuizAttempt(id, slotID, userID, brand, format string, questions []QuestionRecord, now time.Time) *QuizAttempt {
	return &QuizAttempt{
		ID:             id,
		SlotID:         slotID,
		UserID:         userID,
		Format:         format,
		Brand:          brand,
		Questions:      questions,
		UserAnswers:    make([]*string, len(questions)),
		TotalQuestions: len(questions),
		Timestamp:      now,
	}
}

// Record stores the answer at index and returns whether it scored.
// Score is kept equal to the count of correct answers.
func (a *QuizAttempt) Record(index int, answer string) (bool, error) {
	if index < 0 || index >= len(a.Questions) {
		return false, fmt.Errorf("record answer: index %d out of range", index)
	}
	value := answer
	a.UserAnswers[index] = &value
	a.Score = a.recount()
	return a.Questions[index].IsCorrect(&value), nil
}

func (a *QuizAttempt) recount() int {
	score := 0
	for i := range a.Questions {
		if i < len(a.UserAnswers) && a.Questions[i].IsCorrect(a.UserAnswers[i]) {
			score++
		}
	}
	return score
}

// CheckInvariants verifies answer alignment and score consistency.
func (a *QuizAttempt) CheckInvariants() error {
	if len(a.UserAnswers) != len(a.Questions) {
		return fmt.Errorf("attempt %s: %d answers for %d questions", a.ID, len(a.UserAnswers), len(a.Questions))
	}
	if a.TotalQuestions != len(a.Questions) {
		return fmt.Errorf("attempt %s: total %d does not match %d questions", a.ID, a.TotalQuestions, len(a.Questions))
	}
	if want := a.recount(); a.Score != want {
		return fmt.Errorf("attempt %s: score %d, expected %d", a.ID, a.Score, want)
	}
	return nil
}

// Clone returns a deep copy that can leave the owning session.
func (a *QuizAttempt) Clone() *QuizAttempt {
	if a == nil {
		return nil
	}
	out := *a
	out.Questions = make([]QuestionRecord, len(a.Questions))
	for i, q := range a.Questions {
		q.Options = append([]string(nil), q.Options...)
		out.Questions[i] = q
	}
	out.UserAnswers = make([]*string, len(a.UserAnswers))
	for i, ans := range a.UserAnswers {
		if ans != nil {
			v := *ans
			out.UserAnswers[i] = &v
		}
	}
	return &out
}

// AnalysisSource tells whether an analysis came from the model or the template.
type AnalysisSource string

const (
	AnalysisSourceAI       AnalysisSource = "ai"
	AnalysisSourceFallback AnalysisSource = "fallback"
)

// AnalysisResult is the post-quiz coaching summary.
type AnalysisResult struct {
	Summary         string         `json:"summary"`
	Strengths       []string       `json:"strengths"`
	Weaknesses      []string       `json:"weaknesses"`
	Recommendations []string       `json:"recommendations"`
	Source          AnalysisSource `json:"source"`
}

// Principal is an authenticated caller.
type Principal struct {
	UserID      string   `json:"userId"`
	DisplayName string   `json:"displayName,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Report is a player's complaint about a question.
type Report struct {
	ID           string    `json:"id" bson:"_id"`
	QuestionID   string    `json:"questionId" bson:"questionId"`
	QuestionText string    `json:"questionText" bson:"questionText"`
	Reason       string    `json:"reason" bson:"reason"`
	Comment      string    `json:"comment,omitempty" bson:"comment,omitempty"`
	UserID       string    `json:"userId" bson:"userId"`
	Status       string    `json:"status" bson:"status"`
	ReportedAt   time.Time `json:"reportedAt" bson:"reportedAt"`
}

// ContributionType distinguishes submitted facts from submitted questions.
type ContributionType string

const (
	ContributionFact     ContributionType = "fact"
	ContributionQuestion ContributionType = "question"
)

// Contribution is user submitted content awaiting moderation.
type Contribution struct {
	ID            string           `json:"id" bson:"_id"`
	UserID        string           `json:"userId" bson:"userId"`
	Type          ContributionType `json:"type" bson:"type"`
	Content       string           `json:"content,omitempty" bson:"content,omitempty"`
	Question      string           `json:"question,omitempty" bson:"question,omitempty"`
	Options       []string         `json:"options,omitempty" bson:"options,omitempty"`
	CorrectAnswer string           `json:"correctAnswer,omitempty" bson:"correctAnswer,omitempty"`
	Explanation   string           `json:"explanation,omitempty" bson:"explanation,omitempty"`
	Status        string           `json:"status" bson:"status"`
	CreatedAt     time.Time        `json:"createdAt" bson:"createdAt"`
}
