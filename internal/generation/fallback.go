package generation

import (
	"fmt"
	"strings"

	"cricket-quiz-service/internal/domain"
)

var staticQuestions = []domain.QuestionRecord{
	{
		ID:            "static-1",
		Question:      "How many players does each side field in a cricket match?",
		Options:       []string{"9", "10", "11", "12"},
		CorrectAnswer: "11",
		Explanation:   "Each team fields eleven players; substitutes may field but not bat or bowl.",
	},
	{
		ID:            "static-2",
		Question:      "How many overs does each side face in a T20 international?",
		Options:       []string{"10", "20", "40", "50"},
		CorrectAnswer: "20",
		Explanation:   "Twenty20 cricket is named after its 20 overs per innings.",
	},
	{
		ID:            "static-3",
		Question:      "In which year was the first men's Cricket World Cup held?",
		Options:       []string{"1971", "1975", "1979", "1983"},
		CorrectAnswer: "1975",
		Explanation:   "The first World Cup was played in England in 1975 and won by the West Indies.",
	},
	{
		ID:            "static-4",
		Question:      "Which bowler took 19 wickets in a single Test match?",
		Options:       []string{"Jim Laker", "Anil Kumble", "Muttiah Muralitharan", "Shane Warne"},
		CorrectAnswer: "Jim Laker",
		Explanation:   "Jim Laker took 19 for 90 against Australia at Old Trafford in 1956.",
	},
	{
		ID:            "static-5",
		Question:      "What was Sir Don Bradman's career Test batting average?",
		Options:       []string{"89.78", "95.14", "99.94", "101.20"},
		CorrectAnswer: "99.94",
		Explanation:   "Bradman needed four runs in his final innings for an average of 100 but was out for a duck.",
	},
}

// StaticQuiz is the canned quiz served when generation fails.
func StaticQuiz(format string) (title, description string, questions []domain.QuestionRecord) {
	name := strings.TrimSpace(format)
	if name == "" {
		name = "Cricket"
	}
	questions = make([]domain.QuestionRecord, len(staticQuestions))
	for i, q := range staticQuestions {
		q.Options = append([]string(nil), q.Options...)
		questions[i] = q
	}
	return fmt.Sprintf("%s Classic Quiz", name), "Five timeless questions from cricket history.", questions
}
