package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"cricket-quiz-service/internal/domain"

	"github.com/google/uuid"
)

const (
	ReportStatusNew           = "new"
	ContributionStatusPending = "pending"

	factMinLen     = 10
	factMaxLen     = 280
	questionMinLen = 10
	questionMaxLen = 200
)

// ReportInput is a player's report against a question.
type ReportInput struct {
	QuestionID   string `json:"questionId"`
	QuestionText string `json:"questionText"`
	Reason       string `json:"reason"`
	Comment      string `json:"comment,omitempty"`
	UserID       string `json:"userId"`
}

type ReportResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ReportID string `json:"reportId,omitempty"`
}

// ContributionInput is a fact or question submitted from the profile page.
type ContributionInput struct {
	UserID        string                  `json:"userId"`
	Type          domain.ContributionType `json:"type"`
	Content       string                  `json:"content,omitempty"`
	Question      string                  `json:"question,omitempty"`
	Options       []string                `json:"options,omitempty"`
	CorrectAnswer string                  `json:"correctAnswer,omitempty"`
	Explanation   string                  `json:"explanation,omitempty"`
}

type ContributionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// ModerationService accepts reports and contributions for admin review.
type ModerationService struct {
	reports       ReportStore
	contributions ContributionStore
	events        EventPublisher
	now           func() time.Time
}

func NewModerationService(reports ReportStore, contributions ContributionStore, events EventPublisher) *ModerationService {
	return &ModerationService{
		reports:       reports,
		contributions: contributions,
		events:        events,
		now:           time.Now,
	}
}

// ReportQuestion stores a report with status "new" and a server timestamp.
func (m *ModerationService) ReportQuestion(ctx context.Context, in ReportInput) ReportResult {
	if strings.TrimSpace(in.Reason) == "" {
		return ReportResult{Success: false, Message: "A reason is required."}
	}
	if strings.TrimSpace(in.QuestionID) == "" {
		return ReportResult{Success: false, Message: "A question id is required."}
	}
	report := domain.Report{
		ID:           uuid.NewString(),
		QuestionID:   in.QuestionID,
		QuestionText: in.QuestionText,
		Reason:       strings.TrimSpace(in.Reason),
		Comment:      strings.TrimSpace(in.Comment),
		UserID:       in.UserID,
		Status:       ReportStatusNew,
		ReportedAt:   m.now().UTC(),
	}
	if err := m.reports.CreateReport(ctx, report); err != nil {
		log.Printf("[moderation] create report for %s: %v", in.QuestionID, err)
		return ReportResult{Success: false, Message: fmt.Sprintf("Failed to submit report: %v", err)}
	}
	m.publish(ctx, EventQuestionReported, report)
	return ReportResult{
		Success:  true,
		Message:  "Your report has been submitted successfully. Thank you for helping us improve!",
		ReportID: report.ID,
	}
}

// SubmitContribution validates and stores a fact or question with status "pending".
func (m *ModerationService) SubmitContribution(ctx context.Context, in ContributionInput) ContributionResult {
	c, err := m.buildContribution(in)
	if err != nil {
		return ContributionResult{Success: false, Message: err.Error()}
	}
	if err := m.contributions.CreateContribution(ctx, c); err != nil {
		log.Printf("[moderation] create contribution for %s: %v", in.UserID, err)
		return ContributionResult{Success: false, Message: fmt.Sprintf("Failed to submit %s: %v", in.Type, err)}
	}
	m.publish(ctx, EventContributionSubmitted, c)
	return ContributionResult{Success: true, Message: "Thank you! Your submission is awaiting review.", ID: c.ID}
}

func (m *ModerationService) buildContribution(in ContributionInput) (domain.Contribution, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return domain.Contribution{}, domain.ErrUnauthenticated
	}
	c := domain.Contribution{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Type:      in.Type,
		Status:    ContributionStatusPending,
		CreatedAt: m.now().UTC(),
	}
	switch in.Type {
	case domain.ContributionFact:
		content := strings.TrimSpace(in.Content)
		if n := utf8.RuneCountInString(content); n < factMinLen || n > factMaxLen {
			return domain.Contribution{}, fmt.Errorf("Fact must be between %d and %d characters.", factMinLen, factMaxLen)
		}
		c.Content = content
	case domain.ContributionQuestion:
		question := strings.TrimSpace(in.Question)
		if n := utf8.RuneCountInString(question); n < questionMinLen || n > questionMaxLen {
			return domain.Contribution{}, fmt.Errorf("Question must be between %d and %d characters.", questionMinLen, questionMaxLen)
		}
		if len(in.Options) != 4 {
			return domain.Contribution{}, errors.New("There must be exactly 4 options.")
		}
		options := make([]string, 0, len(in.Options))
		for _, opt := range in.Options {
			opt = strings.TrimSpace(opt)
			if opt == "" {
				return domain.Contribution{}, errors.New("Option cannot be empty.")
			}
			options = append(options, opt)
		}
		record := domain.QuestionRecord{
			ID:            c.ID,
			Question:      question,
			Options:       options,
			CorrectAnswer: strings.TrimSpace(in.CorrectAnswer),
			Explanation:   strings.TrimSpace(in.Explanation),
		}
		if record.CorrectAnswer == "" {
			return domain.Contribution{}, errors.New("You must select a correct answer.")
		}
		if err := record.Validate(); err != nil {
			return domain.Contribution{}, err
		}
		c.Question = record.Question
		c.Options = record.Options
		c.CorrectAnswer = record.CorrectAnswer
		c.Explanation = record.Explanation
	default:
		return domain.Contribution{}, fmt.Errorf("Unknown contribution type %q.", in.Type)
	}
	return c, nil
}

func (m *ModerationService) publish(ctx context.Context, eventType string, payload any) {
	if m.events == nil {
		return
	}
	if err := m.events.Publish(ctx, eventType, payload); err != nil {
		log.Printf("[moderation] publish %s: %v", eventType, err)
	}
}
