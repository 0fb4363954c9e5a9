package ads

import (
	"context"
	"errors"
	"testing"

	"cricket-quiz-service/internal/domain"
)

type stubRepo struct {
	ads   map[domain.AdSlot]domain.AdRecord
	err   error
	calls int
}

func (s *stubRepo) ActiveAdForSlot(_ context.Context, slot domain.AdSlot) (domain.AdRecord, error) {
	s.calls++
	if s.err != nil {
		return domain.AdRecord{}, s.err
	}
	ad, ok := s.ads[slot]
	if !ok {
		return domain.AdRecord{}, domain.ErrAdNotFound
	}
	return ad, nil
}

func TestPolicyTable(t *testing.T) {
	cases := []struct {
		slot     domain.AdSlot
		video    bool
		duration int64
		skip     int64
	}{
		{domain.SlotQ1Q2, false, 10_000, 5_000},
		{domain.SlotQ2Q3, true, 40_000, 35_000},
		{domain.SlotQ3Q4, true, 40_000, 20_000},
		{domain.SlotQ3Q4, false, 10_000, 5_000},
		{domain.SlotAfterQuiz, true, 40_000, 20_000},
		{domain.SlotQ4Q5, false, 10_000, 5_000},
	}
	for _, tc := range cases {
		duration, skip := Policy(tc.slot, tc.video)
		if duration != tc.duration || skip != tc.skip {
			t.Fatalf("%s video=%v: got (%d,%d), want (%d,%d)", tc.slot, tc.video, duration, skip, tc.duration, tc.skip)
		}
	}
}

func TestSlotForArrival(t *testing.T) {
	want := map[int]domain.AdSlot{1: "Q1_Q2", 2: "Q2_Q3", 3: "Q3_Q4", 4: "Q4_Q5"}
	for idx := -1; idx <= 6; idx++ {
		slot, ok := SlotForArrival(idx)
		expected, has := want[idx]
		if ok != has || slot != expected {
			t.Fatalf("index %d: got (%q,%v), want (%q,%v)", idx, slot, ok, expected, has)
		}
	}
}

func TestResolveInterstitialVideoByExtension(t *testing.T) {
	repo := &stubRepo{ads: map[domain.AdSlot]domain.AdRecord{
		domain.SlotQ3Q4: {ID: "ad-1", CompanyName: "Acme Bats", AdSlot: domain.SlotQ3Q4, AdType: domain.AdTypeImage, MediaURL: "https://cdn/x.MP4", IsActive: true},
	}}
	cfg, err := NewResolver(repo).ResolveInterstitial(context.Background(), domain.SlotQ3Q4)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg == nil || cfg.Kind != domain.InterstitialVideo {
		t.Fatalf("expected video interstitial, got %+v", cfg)
	}
	if cfg.DurationMs != 40_000 || cfg.SkippableAfterMs != 20_000 || cfg.SponsorLabel != "Acme Bats" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestResolveInterstitialNoAd(t *testing.T) {
	repo := &stubRepo{}
	cfg, err := NewResolver(repo).ResolveInterstitial(context.Background(), domain.SlotQ1Q2)
	if err != nil || cfg != nil {
		t.Fatalf("expected nil config and nil error, got %+v %v", cfg, err)
	}
}

func TestResolveInterstitialLookupError(t *testing.T) {
	boom := errors.New("store down")
	repo := &stubRepo{err: boom}
	cfg, err := NewResolver(repo).ResolveInterstitial(context.Background(), domain.SlotQ2Q3)
	if !errors.Is(err, boom) || cfg != nil {
		t.Fatalf("expected wrapped store error, got %+v %v", cfg, err)
	}
}

func TestResolveInterstitialRejectsUnknownSlot(t *testing.T) {
	repo := &stubRepo{}
	_, err := NewResolver(repo).ResolveInterstitial(context.Background(), "Q9_Q10")
	if !errors.Is(err, domain.ErrInvalidAdSlot) {
		t.Fatalf("expected invalid slot error, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("expected no lookup for unknown slot, got %d", repo.calls)
	}
}
