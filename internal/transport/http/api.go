package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"cricket-quiz-service/internal/analysis"
	"cricket-quiz-service/internal/app"
	"cricket-quiz-service/internal/auth"
	"cricket-quiz-service/internal/domain"
	"cricket-quiz-service/internal/requestid"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Analyzer produces post-quiz coaching. It never fails.
type Analyzer interface {
	Analyze(ctx context.Context, attempt analysis.RawAttempt) domain.AnalysisResult
}

// FactSource returns trivia shown while a quiz loads. It never fails.
type FactSource interface {
	Facts(ctx context.Context, format string, count int) []string
}

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

type quizResponse struct {
	SlotID      string                  `json:"slotId,omitempty"`
	Questions   []domain.QuestionRecord `json:"questions"`
	Title       string                  `json:"title,omitempty"`
	Description string                  `json:"description,omitempty"`
	Source      app.QuizSource          `json:"source"`
}

// QuizHandler serves GET /api/quiz?brand=&format=.
func QuizHandler(quizzes app.QuizFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")
		if format == "" {
			respondJSON(w, http.StatusBadRequest, errResp{Error: "format required"})
			return
		}
		p, _ := auth.PrincipalFrom(r.Context())
		data, err := quizzes.FetchQuiz(r.Context(), r.URL.Query().Get("brand"), format, p.UserID)
		if err != nil {
			log.Printf("[api] quiz %s: %v", format, err)
			respondJSON(w, http.StatusBadGateway, errResp{Error: err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, quizResponse{
			SlotID:      data.SlotID,
			Questions:   data.Questions,
			Title:       data.Title,
			Description: data.Description,
			Source:      data.Source,
		})
	}
}

type analysisResponse struct {
	OK        bool                   `json:"ok"`
	Analysis  *domain.AnalysisResult `json:"analysis,omitempty"`
	Fallback  bool                   `json:"fallback,omitempty"`
	Error     string                 `json:"error,omitempty"`
	RequestID string                 `json:"requestId"`
}

// AnalysisHandler serves POST /api/analysis. Only structurally invalid
// requests get a 400; every other failure is a 200 with the fallback analysis.
func AnalysisHandler(analyzer Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := requestid.With(r.Context(), reqID)

		var body struct {
			Attempt json.RawMessage `json:"attempt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			log.Printf("[analysis] reqId=%s invalid request body: %v", reqID, err)
			respondJSON(w, http.StatusBadRequest, analysisResponse{OK: false, Error: "Invalid request body.", RequestID: reqID})
			return
		}
		if !analysis.IsObject(body.Attempt) {
			log.Printf("[analysis] reqId=%s missing attempt", reqID)
			fallback := analysis.Fallback(analysis.RawAttempt{})
			respondJSON(w, http.StatusBadRequest, analysisResponse{OK: false, Analysis: &fallback, RequestID: reqID})
			return
		}

		attempt, err := analysis.DecodeAttempt(body.Attempt)
		if err != nil {
			log.Printf("[analysis] reqId=%s serving fallback for undecodable attempt: %v", reqID, err)
			fallback := analysis.Fallback(analysis.DecodeHeader(body.Attempt))
			respondJSON(w, http.StatusOK, analysisResponse{OK: true, Analysis: &fallback, Fallback: true, RequestID: reqID})
			return
		}
		if p, ok := auth.PrincipalFrom(ctx); ok && attempt.UserID == "" {
			attempt.UserID = p.UserID
		}
		result := analyzer.Analyze(ctx, attempt)
		respondJSON(w, http.StatusOK, analysisResponse{
			OK:        true,
			Analysis:  &result,
			Fallback:  result.Source == domain.AnalysisSourceFallback,
			RequestID: reqID,
		})
	}
}

// ReportHandler serves POST /api/reports. The reporter is the caller.
func ReportHandler(moderation *app.ModerationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in app.ReportInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondJSON(w, http.StatusBadRequest, app.ReportResult{Message: "bad json"})
			return
		}
		p, _ := auth.PrincipalFrom(r.Context())
		in.UserID = p.UserID
		res := moderation.ReportQuestion(r.Context(), in)
		status := http.StatusCreated
		if !res.Success {
			status = http.StatusBadRequest
		}
		respondJSON(w, status, res)
	}
}

// ContributionHandler serves POST /api/contributions.
func ContributionHandler(moderation *app.ModerationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in app.ContributionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondJSON(w, http.StatusBadRequest, app.ContributionResult{Message: "bad json"})
			return
		}
		p, _ := auth.PrincipalFrom(r.Context())
		in.UserID = p.UserID
		res := moderation.SubmitContribution(r.Context(), in)
		status := http.StatusCreated
		if !res.Success {
			status = http.StatusBadRequest
		}
		respondJSON(w, status, res)
	}
}

// FactsHandler serves GET /api/facts?format=&count=.
func FactsHandler(facts FactSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, _ := strconv.Atoi(r.URL.Query().Get("count"))
		respondJSON(w, http.StatusOK, map[string][]string{
			"facts": facts.Facts(r.Context(), r.URL.Query().Get("format"), count),
		})
	}
}

// HistoryHandler serves GET /api/history?limit= for the caller.
func HistoryHandler(attempts app.AttemptStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFrom(r.Context())
		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				respondJSON(w, http.StatusBadRequest, errResp{Error: "limit must be a positive integer"})
				return
			}
			limit = min(n, maxHistoryLimit)
		}
		list, err := attempts.RecentAttempts(r.Context(), p.UserID, limit)
		if err != nil {
			log.Printf("[api] history for %s: %v", p.UserID, err)
			respondJSON(w, http.StatusInternalServerError, errResp{Error: "history unavailable"})
			return
		}
		if list == nil {
			list = []domain.QuizAttempt{}
		}
		respondJSON(w, http.StatusOK, map[string]any{"attempts": list})
	}
}

// InterstitialHandler serves GET /api/ads/interstitial?slot=. No active ad is a 204.
func InterstitialHandler(resolver app.InterstitialResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slot := domain.AdSlot(r.URL.Query().Get("slot"))
		cfg, err := resolver.ResolveInterstitial(r.Context(), slot)
		switch {
		case errors.Is(err, domain.ErrInvalidAdSlot):
			respondJSON(w, http.StatusBadRequest, errResp{Error: err.Error()})
		case err != nil:
			log.Printf("[ads] interstitial for %s: %v", slot, err)
			w.WriteHeader(http.StatusNoContent)
		case cfg == nil:
			w.WriteHeader(http.StatusNoContent)
		default:
			respondJSON(w, http.StatusOK, cfg)
		}
	}
}
