package app

import (
	"time"

	"cricket-quiz-service/internal/domain"
	"cricket-quiz-service/internal/summary"
)

// Phase is the session state machine position.
type Phase string

const (
	PhaseLoading     Phase = "loading"
	PhasePlaying     Phase = "playing"
	PhaseAnswered    Phase = "answered"
	PhaseLoadingNext Phase = "loading-next"
	PhaseCompleted   Phase = "completed"
)

// QuestionView is a question as shown to the player; the answer stays hidden.
type QuestionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// RevealView is shown while the session is in the answered phase.
type RevealView struct {
	Selected      string `json:"selected"`
	Correct       bool   `json:"correct"`
	NoBall        bool   `json:"noBall,omitempty"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation,omitempty"`
}

// AdView is an interstitial or after-quiz ad on screen.
type AdView struct {
	Config      domain.InterstitialAdConfig `json:"config"`
	NextIndex   int                         `json:"nextIndex,omitempty"`
	ShownAt     time.Time                   `json:"shownAt"`
	SkippableAt time.Time                   `json:"skippableAt"`
	EndsAt      time.Time                   `json:"endsAt"`
}

// View is an immutable snapshot of a session pushed to subscribers.
type View struct {
	SessionID      string           `json:"sessionId"`
	Version        int64            `json:"version"`
	Phase          Phase            `json:"phase"`
	Brand          string           `json:"brand"`
	Format         string           `json:"format"`
	Title          string           `json:"title,omitempty"`
	Description    string           `json:"description,omitempty"`
	Source         QuizSource       `json:"source,omitempty"`
	QuestionIndex  int              `json:"questionIndex"`
	TotalQuestions int              `json:"totalQuestions"`
	Score          int              `json:"score"`
	Question       *QuestionView    `json:"question,omitempty"`
	Reveal         *RevealView      `json:"reveal,omitempty"`
	Interstitial   *AdView          `json:"interstitial,omitempty"`
	Summary        *summary.Summary `json:"summary,omitempty"`
	AfterQuizAd    *AdView          `json:"afterQuizAd,omitempty"`
	ReviewUnlocked bool             `json:"reviewUnlocked"`
	Reviewed       bool             `json:"reviewed"`
	Degraded       bool             `json:"degraded,omitempty"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func adView(cfg *domain.InterstitialAdConfig, nextIndex int, shownAt time.Time) *AdView {
	if cfg == nil {
		return nil
	}
	return &AdView{
		Config:      *cfg,
		NextIndex:   nextIndex,
		ShownAt:     shownAt,
		SkippableAt: shownAt.Add(time.Duration(cfg.SkippableAfterMs) * time.Millisecond),
		EndsAt:      shownAt.Add(time.Duration(cfg.DurationMs) * time.Millisecond),
	}
}
