package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"cricket-quiz-service/internal/domain"
	"cricket-quiz-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSlotRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingSlotLoader{
		SlotLoader: memory.NewStaticSlotLoader(map[string]domain.QuizSlot{
			"T20": sampleSlot(),
		}),
	}
	repo := NewSlotRepository(newClient(mr), loader, time.Minute)

	slot, err := repo.LiveSlot(context.Background(), "T20")
	if err != nil {
		t.Fatalf("live slot: %v", err)
	}
	if slot.ID != "slot-1" || len(slot.Questions) != 1 {
		t.Fatalf("unexpected slot %+v", slot)
	}
	if !mr.Exists("quiz:slot:T20") {
		t.Fatalf("expected slot cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, _ := repo.LiveSlot(context.Background(), "T20")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Questions[0].CorrectAnswer != "6" {
		t.Fatalf("cached slot lost question content: %+v", cached)
	}

	if _, err := repo.LiveSlot(context.Background(), "ODI"); !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestAdRepositoryCachesHitsAndMisses(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := &countingAdSource{AdStore: memory.NewAdStore(
		domain.AdRecord{ID: "ad-1", CompanyName: "Acme", AdSlot: domain.SlotQ1Q2, AdType: domain.AdTypeImage, IsActive: true},
	)}
	repo := NewAdRepository(newClient(mr), source, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ad, err := repo.ActiveAdForSlot(ctx, domain.SlotQ1Q2)
		if err != nil || ad.ID != "ad-1" {
			t.Fatalf("lookup %d: %+v, %v", i, ad, err)
		}
		if _, err := repo.ActiveAdForSlot(ctx, domain.SlotQ4Q5); !errors.Is(err, domain.ErrAdNotFound) {
			t.Fatalf("expected ErrAdNotFound, got %v", err)
		}
	}
	if source.calls != 2 {
		t.Fatalf("expected one source call per slot, got %d", source.calls)
	}
	if got, _ := mr.Get("ads:slot:Q4_Q5"); got != noAdMarker {
		t.Fatalf("expected negative cache marker, got %q", got)
	}

	if err := repo.Invalidate(ctx, domain.SlotQ1Q2); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.ActiveAdForSlot(ctx, domain.SlotQ1Q2)
	if source.calls != 3 {
		t.Fatalf("expected reload after invalidate, got %d calls", source.calls)
	}
}

type countingSlotLoader struct {
	SlotLoader
	calls int
}

func (l *countingSlotLoader) LoadLiveSlot(ctx context.Context, format string) (domain.QuizSlot, error) {
	l.calls++
	return l.SlotLoader.LoadLiveSlot(ctx, format)
}

type countingAdSource struct {
	*memory.AdStore
	calls int
}

func (s *countingAdSource) ActiveAdForSlot(ctx context.Context, slot domain.AdSlot) (domain.AdRecord, error) {
	s.calls++
	return s.AdStore.ActiveAdForSlot(ctx, slot)
}

func sampleSlot() domain.QuizSlot {
	return domain.QuizSlot{
		ID:     "slot-1",
		Format: "T20",
		Status: domain.SlotLive,
		Questions: []domain.QuestionRecord{
			{
				ID:            "q1",
				Question:      "How many balls are in a standard over?",
				Options:       []string{"4", "5", "6", "8"},
				CorrectAnswer: "6",
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
