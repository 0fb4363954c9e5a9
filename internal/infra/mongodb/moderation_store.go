package mongodb

import (
	"context"
	"fmt"

	"cricket-quiz-service/internal/domain"

	"go.mongodb.org/mongo-driver/mongo"
)

// ReportRepository stores question reports for the admin dashboard.
type ReportRepository struct {
	Col *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{Col: db.Collection(ReportsCollection)}
}

func (r *ReportRepository) CreateReport(ctx context.Context, report domain.Report) error {
	if _, err := r.Col.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("insert report %s: %w", report.ID, err)
	}
	return nil
}

// ContributionRepository stores user submitted facts and questions.
type ContributionRepository struct {
	Col *mongo.Collection
}

func NewContributionRepository(db *mongo.Database) *ContributionRepository {
	return &ContributionRepository{Col: db.Collection(ContributionsCollection)}
}

func (r *ContributionRepository) CreateContribution(ctx context.Context, c domain.Contribution) error {
	if _, err := r.Col.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert contribution %s: %w", c.ID, err)
	}
	return nil
}
