package ads

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cricket-quiz-service/internal/domain"
)

// Repository looks up ad records managed by the admin dashboard.
type Repository interface {
	// ActiveAdForSlot returns one active ad for slot or domain.ErrAdNotFound.
	ActiveAdForSlot(ctx context.Context, slot domain.AdSlot) (domain.AdRecord, error)
}

const (
	videoDurationMs  = 40_000
	staticDurationMs = 10_000

	halfSkipCapMs  = 30_000
	tailSkipLeadMs = 5_000
	minSkipMs      = 5_000
)

// halfSkipSlots may be skipped at half their duration (capped); every other
// slot becomes skippable shortly before the end.
var halfSkipSlots = map[domain.AdSlot]bool{
	domain.SlotQ3Q4:      true,
	domain.SlotAfterQuiz: true,
}

// arrivalSlots maps the 0-based index of the question being moved to onto
// the between-question slot shown before it.
var arrivalSlots = map[int]domain.AdSlot{
	1: domain.SlotQ1Q2,
	2: domain.SlotQ2Q3,
	3: domain.SlotQ3Q4,
	4: domain.SlotQ4Q5,
}

// SlotForArrival returns the interstitial slot shown before the question at nextIndex.
func SlotForArrival(nextIndex int) (domain.AdSlot, bool) {
	slot, ok := arrivalSlots[nextIndex]
	return slot, ok
}

// Policy returns the display and skip timings for a creative in slot.
func Policy(slot domain.AdSlot, video bool) (durationMs, skippableAfterMs int64) {
	durationMs = staticDurationMs
	if video {
		durationMs = videoDurationMs
	}
	if halfSkipSlots[slot] {
		return durationMs, min(halfSkipCapMs, durationMs/2)
	}
	return durationMs, max(minSkipMs, durationMs-tailSkipLeadMs)
}

// Resolver turns slot identifiers into display-ready interstitials.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// ResolveInterstitial returns the interstitial for slot, or nil when no ad is active.
// Lookup errors are returned so the caller can log them; callers treat them as "no ad".
func (r *Resolver) ResolveInterstitial(ctx context.Context, slot domain.AdSlot) (*domain.InterstitialAdConfig, error) {
	if !slot.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAdSlot, slot)
	}
	ad, err := r.repo.ActiveAdForSlot(ctx, slot)
	if errors.Is(err, domain.ErrAdNotFound) {
		log.Printf("[ads] no active ad for slot %s", slot)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve ad for %s: %w", slot, err)
	}
	if !ad.IsActive {
		return nil, nil
	}
	cfg := ToInterstitial(slot, ad)
	return &cfg, nil
}

// ResolveAfterQuiz returns the ad shown before the result review unlocks.
func (r *Resolver) ResolveAfterQuiz(ctx context.Context) (*domain.InterstitialAdConfig, error) {
	return r.ResolveInterstitial(ctx, domain.SlotAfterQuiz)
}

// ToInterstitial converts an ad record into an interstitial for slot.
func ToInterstitial(slot domain.AdSlot, ad domain.AdRecord) domain.InterstitialAdConfig {
	video := ad.IsVideo()
	duration, skip := Policy(slot, video)
	kind := domain.InterstitialStatic
	if video {
		kind = domain.InterstitialVideo
	}
	label := ad.CompanyName
	if label == "" {
		label = "Featured sponsor"
	}
	return domain.InterstitialAdConfig{
		AdID:             ad.ID,
		Slot:             slot,
		Kind:             kind,
		MediaURL:         ad.MediaURL,
		RedirectURL:      ad.RedirectURL,
		DurationMs:       duration,
		SkippableAfterMs: skip,
		SponsorLabel:     label,
	}
}
