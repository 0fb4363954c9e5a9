package generation

import (
	"fmt"
	"strings"
)

const quizSystemPrompt = `You are a world-class cricket expert and quizmaster. Respond with ONLY a JSON object (no markdown, no commentary) of the form:
{"questions":[{"id":"q1a2b","question":"...","options":["A","B","C","D"],"correctAnswer":"A","explanation":"..."}]}

Rules:
- Exactly 5 questions with strictly escalating difficulty:
  1. Easy: a casual fan would know it.
  2. Medium: needs more than surface knowledge.
  3. Hard: a specific record, event or player statistic.
  4. Very hard: an obscure fact, rule or historical event.
  5. Expert: trivia only a cricket historian or statistician would know.
- Balanced topics: never ask two questions about the same player or team.
- Every question has a unique short random id, 4 distinct options, a correctAnswer that exactly matches one option, and a brief engaging explanation.`

func buildQuizPrompt(format string, seen []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a completely new and unique 5-question multiple-choice quiz about %q cricket.\n", format)
	if len(seen) > 0 {
		b.WriteString("\nDo NOT generate questions similar in theme or answer to these recently seen questions:\n")
		for _, q := range seen {
			fmt.Fprintf(&b, "- %q\n", q)
		}
	}
	return b.String()
}
