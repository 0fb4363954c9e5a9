package domain

import "time"

// QuizSlot is a scheduled quiz window configured from the admin dashboard.
// Only Format, Status and Questions are required; the rest default to zero values.
type QuizSlot struct {
	ID               string              `json:"id"`
	SlotNumber       int                 `json:"slotNumber,omitempty"`
	Format           string              `json:"format"`
	Title            string              `json:"title,omitempty"`
	Description      string              `json:"description,omitempty"`
	ScheduledDate    time.Time           `json:"scheduledDate,omitempty"`
	StartTime        string              `json:"startTime,omitempty"`
	EndTime          string              `json:"endTime,omitempty"`
	DurationMinutes  int                 `json:"durationMinutes,omitempty"`
	Status           SlotStatus          `json:"status"`
	Participants     int                 `json:"participants,omitempty"`
	Winners          int                 `json:"winners,omitempty"`
	QuestionsPerUser int                 `json:"questionsPerUser,omitempty"`
	Generation       *QuestionGeneration `json:"questionGeneration,omitempty"`
	Questions        []QuestionRecord    `json:"questions"`
	PayoutLocked     bool                `json:"payoutLocked,omitempty"`
}

// SlotStatus is the lifecycle state of a quiz slot.
type SlotStatus string

const (
	SlotScheduled SlotStatus = "scheduled"
	SlotLive      SlotStatus = "live"
	SlotCompleted SlotStatus = "completed"
	SlotCancelled SlotStatus = "cancelled"
)

// DefaultQuestionsPerUser is used when a slot does not set QuestionsPerUser.
const DefaultQuestionsPerUser = 5

// PerUser returns how many questions a player receives from this slot.
func (s QuizSlot) PerUser() int {
	if s.QuestionsPerUser > 0 {
		return s.QuestionsPerUser
	}
	return DefaultQuestionsPerUser
}

// QuestionGeneration records how a slot's questions were produced.
type QuestionGeneration struct {
	Method          string  `json:"method,omitempty"` // ai | pool | manual
	Status          string  `json:"status,omitempty"` // success | fallback | failed | pending
	AIModel         string  `json:"aiModel,omitempty"`
	ConfidenceScore float64 `json:"confidenceScore,omitempty"`
	ErrorMessage    string  `json:"errorMessage,omitempty"`
}
