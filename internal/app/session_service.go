package app

import (
	"context"
	"log"

	"cricket-quiz-service/internal/domain"
)

// SessionService opens, looks up and tears down player sessions.
type SessionService struct {
	deps     SessionDeps
	registry SessionRegistry
}

func NewSessionService(deps SessionDeps, registry SessionRegistry) *SessionService {
	return &SessionService{deps: deps.withDefaults(), registry: registry}
}

// Open creates a session, registers it and starts it. The session is live
// (possibly already completed in degraded mode) when Open returns.
func (s *SessionService) Open(ctx context.Context, params SessionParams) (*QuizSession, error) {
	session := NewQuizSession(s.deps.NewID(), s.deps, params)
	s.registry.Put(session)
	if err := session.Start(ctx); err != nil {
		s.Close(session.ID())
		return nil, err
	}
	log.Printf("[session] %s opened for user=%q format=%s (live sessions: %d)", session.ID(), params.UserID, params.Format, s.registry.Count())
	return session, nil
}

// Get returns a live session.
func (s *SessionService) Get(id string) (*QuizSession, error) {
	session, ok := s.registry.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Close tears the session down and forgets it.
func (s *SessionService) Close(id string) {
	session, ok := s.registry.Get(id)
	if !ok {
		return
	}
	session.Close()
	s.registry.Remove(id)
}
