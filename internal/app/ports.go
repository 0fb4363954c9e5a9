package app

import (
	"context"

	"cricket-quiz-service/internal/domain"
)

// SlotRepository returns the live quiz slot for a format (cached or from the backing store).
type SlotRepository interface {
	LiveSlot(ctx context.Context, format string) (domain.QuizSlot, error)
}

// QuizGenerator produces a fresh question set. Failures are *generation.Error.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, format, userID string) ([]domain.QuestionRecord, error)
}

// QuizFetcher is what a session uses to load its question set.
type QuizFetcher interface {
	FetchQuiz(ctx context.Context, brand, format, userID string) (QuizData, error)
}

// InterstitialResolver turns ad slots into display-ready interstitials.
// A nil config with a nil error means no ad is active.
type InterstitialResolver interface {
	ResolveInterstitial(ctx context.Context, slot domain.AdSlot) (*domain.InterstitialAdConfig, error)
	ResolveAfterQuiz(ctx context.Context) (*domain.InterstitialAdConfig, error)
}

// AttemptStore persists finished attempts.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, attempt domain.QuizAttempt) error
	// RecentAttempts returns up to limit attempts for userID, newest first.
	RecentAttempts(ctx context.Context, userID string, limit int) ([]domain.QuizAttempt, error)
	MarkReviewed(ctx context.Context, attemptID string) error
}

// ReportStore persists question reports.
type ReportStore interface {
	CreateReport(ctx context.Context, report domain.Report) error
}

// ContributionStore persists user submitted facts and questions.
type ContributionStore interface {
	CreateContribution(ctx context.Context, c domain.Contribution) error
}

// EventPublisher emits domain events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// SessionRegistry tracks live quiz sessions (in-memory, Redis, etc).
type SessionRegistry interface {
	Put(session *QuizSession)
	Get(id string) (*QuizSession, bool)
	Remove(id string)
	Count() int
}

// Event types published by the app layer.
const (
	EventQuizCompleted         = "quiz.completed"
	EventQuestionReported      = "question.reported"
	EventContributionSubmitted = "contribution.submitted"
)
