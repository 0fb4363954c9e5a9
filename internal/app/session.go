package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"cricket-quiz-service/internal/ads"
	"cricket-quiz-service/internal/domain"
	"cricket-quiz-service/internal/summary"

	"github.com/google/uuid"
)

// DefaultRevealDelay is how long the answer reveal stays on screen.
const DefaultRevealDelay = 1500 * time.Millisecond

// SessionParams identify what one player is playing.
type SessionParams struct {
	Brand       string
	Format      string
	UserID      string
	RevealDelay time.Duration
}

// SessionDeps are the collaborators a session calls out to.
// Only Quizzes is required; the rest fall back to no-op or default behaviour.
type SessionDeps struct {
	Quizzes   QuizFetcher
	Ads       InterstitialResolver
	Attempts  AttemptStore
	Renderer  summary.Renderer
	Events    EventPublisher
	Scheduler Scheduler
	Clock     func() time.Time
	NewID     func() string
}

func (d SessionDeps) withDefaults() SessionDeps {
	if d.Renderer == nil {
		d.Renderer = summary.Template{}
	}
	if d.Scheduler == nil {
		d.Scheduler = RealScheduler{}
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return d
}

type timerPurpose int

const (
	timerReveal timerPurpose = iota
	timerInterstitial
	timerAfterQuiz
)

type pendingTimer struct {
	gen   uint64
	timer Timer
}

type timerEvent struct {
	purpose timerPurpose
	gen     uint64
	fire    func()
}

type command struct {
	run   func() error
	reply chan error
}

// QuizSession drives one player's quiz. All state transitions run on a single
// event loop goroutine; commands and timer callbacks are queued onto it.
type QuizSession struct {
	id     string
	params SessionParams
	deps   SessionDeps

	ctx       context.Context
	cancel    context.CancelFunc
	commands  chan command
	events    chan timerEvent
	done      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once

	// Owned by the event loop.
	phase          Phase
	quiz           QuizData
	attempt        *domain.QuizAttempt
	index          int
	degraded       bool
	adFetchedFor   int
	adCache        map[int]*domain.InterstitialAdConfig
	interstitial   *domain.InterstitialAdConfig
	pendingIndex   int
	shownAt        time.Time
	timers         map[timerPurpose]pendingTimer
	timerGen       uint64
	persisted      bool
	saved          bool
	result         *summary.Summary
	afterQuizAd    *domain.InterstitialAdConfig
	afterQuizAt    time.Time
	reviewUnlocked bool
	version        int64

	mu          sync.RWMutex
	closed      bool
	view        View
	subscribers map[chan View]struct{}
}

// NewQuizSession creates a session in the loading phase and starts its event loop.
// Callers must Close it.
func NewQuizSession(id string, deps SessionDeps, params SessionParams) *QuizSession {
	if params.RevealDelay <= 0 {
		params.RevealDelay = DefaultRevealDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &QuizSession{
		id:           id,
		params:       params,
		deps:         deps.withDefaults(),
		ctx:          ctx,
		cancel:       cancel,
		commands:     make(chan command),
		events:       make(chan timerEvent),
		done:         make(chan struct{}),
		loopDone:     make(chan struct{}),
		phase:        PhaseLoading,
		adFetchedFor: -1,
		adCache:      make(map[int]*domain.InterstitialAdConfig),
		timers:       make(map[timerPurpose]pendingTimer),
		subscribers:  make(map[chan View]struct{}),
	}
	s.view = s.buildView()
	go s.run()
	return s
}

// ID returns the session identifier.
func (s *QuizSession) ID() string { return s.id }

// UserID returns the player the session belongs to, if any.
func (s *QuizSession) UserID() string { return s.params.UserID }

func (s *QuizSession) run() {
	defer close(s.loopDone)
	defer s.stopTimers()
	for {
		select {
		case <-s.done:
			return
		case cmd := <-s.commands:
			cmd.reply <- cmd.run()
		case ev := <-s.events:
			s.fire(ev)
		}
	}
}

// do runs fn on the event loop and waits for its result.
func (s *QuizSession) do(ctx context.Context, fn func() error) error {
	cmd := command{
		run: func() error {
			if !s.alive() {
				return domain.ErrSessionClosed
			}
			return fn()
		},
		reply: make(chan error, 1),
	}
	select {
	case s.commands <- cmd:
	case <-s.done:
		return domain.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *QuizSession) alive() bool {
	return s.ctx.Err() == nil
}

// Start fetches the question set and shows the first question. A failed or
// empty fetch completes the session with the fallback summary instead.
func (s *QuizSession) Start(ctx context.Context) error {
	return s.do(ctx, s.start)
}

// Answer records answer for the current question.
func (s *QuizSession) Answer(ctx context.Context, answer string) error {
	return s.do(ctx, func() error { return s.answer(answer) })
}

// NoBall forfeits the current question. It never scores.
func (s *QuizSession) NoBall(ctx context.Context) error {
	return s.do(ctx, func() error { return s.answer(domain.NoBall) })
}

// SkipInterstitial dismisses the interstitial once it has become skippable.
func (s *QuizSession) SkipInterstitial(ctx context.Context) error {
	return s.do(ctx, s.skipInterstitial)
}

// FinishInterstitial is the playback-ended signal for video interstitials.
func (s *QuizSession) FinishInterstitial(ctx context.Context) error {
	return s.do(ctx, s.finishInterstitialSignal)
}

// FinishAfterQuizAd unlocks result review once the after-quiz ad is done.
func (s *QuizSession) FinishAfterQuizAd(ctx context.Context) error {
	return s.do(ctx, s.finishAfterQuizAd)
}

// Review marks the attempt reviewed. Only the first call flips the flag.
func (s *QuizSession) Review(ctx context.Context) error {
	return s.do(ctx, s.review)
}

// Snapshot returns the latest view after all queued work has been applied.
func (s *QuizSession) Snapshot() View {
	_ = s.do(context.Background(), func() error { return nil })
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Subscribe returns a channel of views starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizSession) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 8)

	s.mu.Lock()
	ch <- s.view
	if s.closed {
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close tears the session down. Pending timers are stopped, in-flight calls
// are cancelled and no further views are published.
func (s *QuizSession) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.mu.Lock()
		s.closed = true
		for ch := range s.subscribers {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
		close(s.done)
		<-s.loopDone
	})
}

func (s *QuizSession) start() error {
	if s.phase != PhaseLoading {
		return fmt.Errorf("start: %w", domain.ErrInvalidPhase)
	}
	quiz, err := s.deps.Quizzes.FetchQuiz(s.ctx, s.params.Brand, s.params.Format, s.params.UserID)
	if !s.alive() {
		return domain.ErrSessionClosed
	}
	if err == nil && len(quiz.Questions) == 0 {
		err = domain.ErrNoQuestions
	}
	if err != nil {
		log.Printf("[session] %s: quiz fetch failed, completing with fallback: %v", s.id, err)
		s.completeDegraded()
		return nil
	}

	s.quiz = quiz
	s.attempt = domain.NewQuizAttempt(s.deps.NewID(), quiz.SlotID, s.params.UserID, s.params.Brand, s.params.Format, quiz.Questions, s.deps.Clock())
	s.showQuestion(0)
	return nil
}

func (s *QuizSession) answer(answer string) error {
	if s.phase != PhasePlaying {
		return fmt.Errorf("answer: %w", domain.ErrInvalidPhase)
	}
	if strings.TrimSpace(answer) == "" {
		return domain.ErrInvalidAnswer
	}
	if _, err := s.attempt.Record(s.index, answer); err != nil {
		return err
	}
	s.phase = PhaseAnswered
	s.schedule(timerReveal, s.params.RevealDelay, s.advance)
	s.publish()
	return nil
}

// advance runs when the reveal delay expires.
func (s *QuizSession) advance() {
	if s.phase != PhaseAnswered {
		return
	}
	next := s.index + 1
	if next >= len(s.attempt.Questions) {
		s.complete()
		return
	}
	slot, ok := ads.SlotForArrival(next)
	if !ok {
		s.showQuestion(next)
		return
	}
	cfg := s.interstitialFor(next, slot)
	if !s.alive() {
		return
	}
	if cfg == nil {
		s.showQuestion(next)
		return
	}
	s.showInterstitial(next, cfg)
}

// interstitialFor resolves the interstitial shown before question next at
// most once per session. The guard is written before the lookup so a
// re-entrant call reuses the cached result.
func (s *QuizSession) interstitialFor(next int, slot domain.AdSlot) *domain.InterstitialAdConfig {
	if s.adFetchedFor == next {
		return s.adCache[next]
	}
	s.adFetchedFor = next
	if s.deps.Ads == nil {
		s.adCache[next] = nil
		return nil
	}
	cfg, err := s.deps.Ads.ResolveInterstitial(s.ctx, slot)
	if err != nil {
		log.Printf("[session] %s: interstitial for %s unavailable, continuing: %v", s.id, slot, err)
		cfg = nil
	}
	s.adCache[next] = cfg
	return cfg
}

func (s *QuizSession) showInterstitial(next int, cfg *domain.InterstitialAdConfig) {
	s.cancelTimer(timerReveal)
	s.phase = PhaseLoadingNext
	s.interstitial = cfg
	s.pendingIndex = next
	s.shownAt = s.deps.Clock()
	s.schedule(timerInterstitial, time.Duration(cfg.DurationMs)*time.Millisecond, s.endInterstitial)
	s.publish()
}

// endInterstitial runs when the interstitial duration expires.
func (s *QuizSession) endInterstitial() {
	if s.phase != PhaseLoadingNext {
		return
	}
	s.showQuestion(s.pendingIndex)
}

func (s *QuizSession) skipInterstitial() error {
	if s.phase != PhaseLoadingNext || s.interstitial == nil {
		return fmt.Errorf("skip interstitial: %w", domain.ErrInvalidPhase)
	}
	skippableAfter := time.Duration(s.interstitial.SkippableAfterMs) * time.Millisecond
	if s.deps.Clock().Sub(s.shownAt) < skippableAfter {
		return domain.ErrSkipNotAllowed
	}
	s.showQuestion(s.pendingIndex)
	return nil
}

func (s *QuizSession) finishInterstitialSignal() error {
	if s.phase != PhaseLoadingNext || s.interstitial == nil {
		return fmt.Errorf("finish interstitial: %w", domain.ErrInvalidPhase)
	}
	if s.interstitial.Kind != domain.InterstitialVideo {
		return fmt.Errorf("finish interstitial: %w: not a video", domain.ErrInvalidPhase)
	}
	s.showQuestion(s.pendingIndex)
	return nil
}

func (s *QuizSession) showQuestion(i int) {
	if i < s.index {
		return
	}
	s.cancelTimer(timerReveal)
	s.cancelTimer(timerInterstitial)
	s.index = i
	s.phase = PhasePlaying
	s.interstitial = nil
	s.publish()
}

func (s *QuizSession) complete() {
	s.cancelTimer(timerReveal)
	s.cancelTimer(timerInterstitial)
	s.phase = PhaseCompleted
	s.interstitial = nil

	if err := s.attempt.CheckInvariants(); err != nil {
		log.Printf("[session] %s: %v", s.id, err)
	}
	s.persist()
	if !s.alive() {
		return
	}
	rendered := s.deps.Renderer.Render(s.ctx, summary.Input{Attempt: s.attempt.Clone(), Brand: s.params.Brand, Format: s.params.Format})
	if !s.alive() {
		return
	}
	s.result = &rendered
	s.publishCompleted()

	if s.params.UserID == "" || s.deps.Ads == nil {
		s.reviewUnlocked = true
		s.publish()
		return
	}
	s.publish()

	cfg, err := s.deps.Ads.ResolveAfterQuiz(s.ctx)
	if !s.alive() {
		return
	}
	if err != nil {
		log.Printf("[session] %s: after-quiz ad unavailable: %v", s.id, err)
	}
	if cfg == nil {
		s.reviewUnlocked = true
		s.publish()
		return
	}
	s.afterQuizAd = cfg
	s.afterQuizAt = s.deps.Clock()
	s.schedule(timerAfterQuiz, time.Duration(cfg.DurationMs)*time.Millisecond, s.unlockReview)
	s.publish()
}

// completeDegraded ends a session that never got a question set.
func (s *QuizSession) completeDegraded() {
	s.phase = PhaseCompleted
	s.degraded = true
	s.reviewUnlocked = true
	rendered := summary.Template{}.Render(s.ctx, summary.Input{Brand: s.params.Brand, Format: s.params.Format})
	s.result = &rendered
	s.publish()
}

func (s *QuizSession) persist() {
	if s.persisted || s.deps.Attempts == nil || s.params.UserID == "" || len(s.attempt.Questions) == 0 {
		return
	}
	s.persisted = true
	if err := s.deps.Attempts.SaveAttempt(s.ctx, *s.attempt.Clone()); err != nil {
		log.Printf("[session] %s: save attempt %s: %v", s.id, s.attempt.ID, err)
		return
	}
	s.saved = true
}

func (s *QuizSession) publishCompleted() {
	if s.deps.Events == nil {
		return
	}
	payload := map[string]any{
		"attemptId":      s.attempt.ID,
		"slotId":         s.attempt.SlotID,
		"userId":         s.attempt.UserID,
		"brand":          s.attempt.Brand,
		"format":         s.attempt.Format,
		"score":          s.attempt.Score,
		"totalQuestions": s.attempt.TotalQuestions,
		"source":         s.quiz.Source,
	}
	if err := s.deps.Events.Publish(s.ctx, EventQuizCompleted, payload); err != nil {
		log.Printf("[session] %s: publish %s: %v", s.id, EventQuizCompleted, err)
	}
}

func (s *QuizSession) finishAfterQuizAd() error {
	if s.phase != PhaseCompleted || s.afterQuizAd == nil {
		return fmt.Errorf("finish after-quiz ad: %w", domain.ErrInvalidPhase)
	}
	if s.reviewUnlocked {
		return nil
	}
	skippableAfter := time.Duration(s.afterQuizAd.SkippableAfterMs) * time.Millisecond
	if s.afterQuizAd.Kind != domain.InterstitialVideo && s.deps.Clock().Sub(s.afterQuizAt) < skippableAfter {
		return domain.ErrSkipNotAllowed
	}
	s.unlockReview()
	return nil
}

func (s *QuizSession) unlockReview() {
	s.cancelTimer(timerAfterQuiz)
	s.reviewUnlocked = true
	s.publish()
}

func (s *QuizSession) review() error {
	if s.phase != PhaseCompleted {
		return fmt.Errorf("review: %w", domain.ErrInvalidPhase)
	}
	if !s.reviewUnlocked {
		return domain.ErrReviewLocked
	}
	if s.attempt == nil || s.attempt.Reviewed {
		return nil
	}
	s.attempt.Reviewed = true
	if s.saved {
		if err := s.deps.Attempts.MarkReviewed(s.ctx, s.attempt.ID); err != nil {
			log.Printf("[session] %s: mark reviewed %s: %v", s.id, s.attempt.ID, err)
		}
	}
	s.publish()
	return nil
}

// schedule replaces any pending timer of the same purpose.
func (s *QuizSession) schedule(p timerPurpose, delay time.Duration, fn func()) {
	s.cancelTimer(p)
	s.timerGen++
	gen := s.timerGen
	t := s.deps.Scheduler.AfterFunc(delay, func() {
		select {
		case s.events <- timerEvent{purpose: p, gen: gen, fire: fn}:
		case <-s.done:
		}
	})
	s.timers[p] = pendingTimer{gen: gen, timer: t}
}

func (s *QuizSession) cancelTimer(p timerPurpose) {
	if pt, ok := s.timers[p]; ok {
		pt.timer.Stop()
		delete(s.timers, p)
	}
}

func (s *QuizSession) stopTimers() {
	for p := range s.timers {
		s.cancelTimer(p)
	}
}

func (s *QuizSession) fire(ev timerEvent) {
	pt, ok := s.timers[ev.purpose]
	if !ok || pt.gen != ev.gen || !s.alive() {
		return
	}
	delete(s.timers, ev.purpose)
	ev.fire()
}

func (s *QuizSession) publish() {
	s.version++
	v := s.buildView()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.view = v
	for ch := range s.subscribers {
		select {
		case ch <- v:
		default:
			// Drop the oldest view so a slow client never blocks the loop.
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

func (s *QuizSession) buildView() View {
	v := View{
		SessionID:      s.id,
		Version:        s.version,
		Phase:          s.phase,
		Brand:          s.params.Brand,
		Format:         s.params.Format,
		Title:          s.quiz.Title,
		Description:    s.quiz.Description,
		Source:         s.quiz.Source,
		QuestionIndex:  s.index,
		Summary:        s.lockedSummary(),
		ReviewUnlocked: s.reviewUnlocked,
		Degraded:       s.degraded,
		UpdatedAt:      s.deps.Clock(),
	}
	if s.attempt != nil {
		v.TotalQuestions = s.attempt.TotalQuestions
		v.Score = s.attempt.Score
		v.Reviewed = s.attempt.Reviewed
	}
	switch s.phase {
	case PhasePlaying, PhaseAnswered:
		q := s.attempt.Questions[s.index]
		v.Question = &QuestionView{ID: q.ID, Question: q.Question, Options: append([]string(nil), q.Options...)}
		if s.phase == PhaseAnswered {
			selected := s.attempt.UserAnswers[s.index]
			v.Reveal = &RevealView{
				Selected:      *selected,
				Correct:       q.IsCorrect(selected),
				NoBall:        *selected == domain.NoBall,
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
			}
		}
	case PhaseLoadingNext:
		v.Interstitial = adView(s.interstitial, s.pendingIndex, s.shownAt)
	case PhaseCompleted:
		v.AfterQuizAd = adView(s.afterQuizAd, 0, s.afterQuizAt)
	}
	return v
}

// lockedSummary withholds correct answers and explanations until review unlocks.
func (s *QuizSession) lockedSummary() *summary.Summary {
	if s.result == nil || s.reviewUnlocked {
		return s.result
	}
	redacted := *s.result
	redacted.Questions = make([]summary.QuestionOutcome, len(s.result.Questions))
	for i, q := range s.result.Questions {
		q.CorrectAnswer = ""
		q.Explanation = ""
		redacted.Questions[i] = q
	}
	return &redacted
}
