package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cricket-quiz-service/internal/ads"
	"cricket-quiz-service/internal/analysis"
	"cricket-quiz-service/internal/app"
	"cricket-quiz-service/internal/auth"
	"cricket-quiz-service/internal/domain"
	"cricket-quiz-service/internal/facts"
	"cricket-quiz-service/internal/infra/memory"
)

type testServer struct {
	server     *httptest.Server
	jwt        *auth.JWTProvider
	attempts   *memory.AttemptStore
	moderation *memory.ModerationStore
}

func newTestServer(t *testing.T, adRecords ...domain.AdRecord) *testServer {
	t.Helper()
	slots := memory.NewSlotRepository(memory.NewStaticSlotLoader(map[string]domain.QuizSlot{
		"T20": sampleSlot(),
	}), time.Minute)
	quizzes := app.NewQuizService(slots, nil)
	resolver := ads.NewResolver(memory.NewAdStore(adRecords...))
	attempts := memory.NewAttemptStore()
	moderationStore := memory.NewModerationStore()
	jwt := auth.NewJWTProvider("test-secret", "cricket-quiz", time.Hour)

	sessions := app.NewSessionService(app.SessionDeps{
		Quizzes:  quizzes,
		Ads:      resolver,
		Attempts: attempts,
	}, memory.NewSessionStore())

	router := NewRouter(RouterDeps{
		Quizzes:    quizzes,
		Analyzer:   analysis.NewService(nil),
		Facts:      facts.NewService(nil),
		Moderation: app.NewModerationService(moderationStore, moderationStore, nil),
		Attempts:   attempts,
		Ads:        resolver,
		WS:         NewWSHandler(sessions, jwt, 10*time.Millisecond),
		Identity:   jwt,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testServer{server: server, jwt: jwt, attempts: attempts, moderation: moderationStore}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := s.jwt.Issue(domain.Principal{UserID: userID, DisplayName: "Player"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (s *testServer) get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.server.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	return resp
}

func sampleSlot() domain.QuizSlot {
	questions := make([]domain.QuestionRecord, 5)
	for i := range questions {
		questions[i] = domain.QuestionRecord{
			ID:            fmt.Sprintf("q%d", i+1),
			Question:      fmt.Sprintf("Cricket question %d?", i+1),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: "a",
		}
	}
	return domain.QuizSlot{ID: "slot-t20", Format: "T20", Status: domain.SlotLive, Title: "Friday Night T20", Questions: questions}
}
