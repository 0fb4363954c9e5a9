package postgres

import (
	"context"
	"errors"
	"fmt"

	"cricket-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AdRepository reads advertiser creatives from the ads table.
type AdRepository struct {
	pool *pgxpool.Pool
}

func NewAdRepository(pool *pgxpool.Pool) *AdRepository {
	return &AdRepository{pool: pool}
}

// ActiveAdForSlot returns the highest revenue active ad booked for slot.
func (r *AdRepository) ActiveAdForSlot(ctx context.Context, slot domain.AdSlot) (domain.AdRecord, error) {
	var (
		ad     domain.AdRecord
		adSlot string
		adType string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_name, ad_slot, ad_type, media_url, redirect_url, revenue::float8, is_active
		FROM ads
		WHERE ad_slot = $1 AND is_active
		ORDER BY revenue DESC, id
		LIMIT 1`, string(slot)).
		Scan(&ad.ID, &ad.CompanyName, &adSlot, &adType, &ad.MediaURL, &ad.RedirectURL, &ad.Revenue, &ad.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AdRecord{}, domain.ErrAdNotFound
	}
	if err != nil {
		return domain.AdRecord{}, fmt.Errorf("load ad for %s: %w", slot, err)
	}
	ad.AdSlot = domain.AdSlot(adSlot)
	ad.AdType = domain.AdType(adType)
	return ad, nil
}

// UpsertAd stores an ad record, keyed by its ID.
func (r *AdRepository) UpsertAd(ctx context.Context, ad domain.AdRecord) error {
	if !ad.AdSlot.Valid() {
		return fmt.Errorf("upsert ad %s: %w", ad.ID, domain.ErrInvalidAdSlot)
	}
	adType := ad.AdType
	if adType == "" {
		adType = domain.AdTypeImage
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ads (id, company_name, ad_slot, ad_type, media_url, redirect_url, revenue, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET company_name = EXCLUDED.company_name, ad_slot = EXCLUDED.ad_slot, ad_type = EXCLUDED.ad_type,
		    media_url = EXCLUDED.media_url, redirect_url = EXCLUDED.redirect_url,
		    revenue = EXCLUDED.revenue, is_active = EXCLUDED.is_active`,
		ad.ID, ad.CompanyName, string(ad.AdSlot), string(adType), ad.MediaURL, ad.RedirectURL, ad.Revenue, ad.IsActive)
	if err != nil {
		return fmt.Errorf("upsert ad %s: %w", ad.ID, err)
	}
	return nil
}
