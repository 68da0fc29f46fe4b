package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"pricelens/internal/model"
)

// Repository defines the standard interface for database operations.
type Repository interface {
	SaveRecommendation(ctx context.Context, rec model.StoredRecommendation) error
	LogCompetitorQuote(ctx context.Context, quote model.CompetitorQuote) error
	Migrate(ctx context.Context) error
}

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	Pool *pgxpool.Pool
}

// NewPostgresRepository connects a pool and returns the repository.
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &PostgresRepository{Pool: pool}, nil
}

// Migrate creates the tables if they do not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS price_recommendations (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		sku VARCHAR(64) NOT NULL,
		channel VARCHAR(64) NOT NULL,
		target_margin_pct NUMERIC(6, 3) NOT NULL,
		current_price NUMERIC(12, 4) NOT NULL,
		recommended_price NUMERIC(12, 4) NOT NULL,
		price_change_pct NUMERIC(10, 4) NOT NULL,
		revenue_impact NUMERIC(14, 4) NOT NULL,
		profit_impact NUMERIC(14, 4) NOT NULL,
		confidence_score NUMERIC(6, 2) NOT NULL,
		priority_rank SMALLINT NOT NULL,
		recommendation VARCHAR(32) NOT NULL
	);
	CREATE TABLE IF NOT EXISTS competitor_quotes (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		feed VARCHAR(64) NOT NULL,
		sku VARCHAR(64) NOT NULL,
		channel VARCHAR(64) NOT NULL,
		price NUMERIC(12, 4) NOT NULL
	);`
	if _, err := r.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SaveRecommendation persists one optimizer recommendation.
func (r *PostgresRepository) SaveRecommendation(ctx context.Context, rec model.StoredRecommendation) error {
	const query = `
	INSERT INTO price_recommendations (
		sku, channel, target_margin_pct, current_price, recommended_price,
		price_change_pct, revenue_impact, profit_impact, confidence_score,
		priority_rank, recommendation
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.Pool.Exec(ctx, query,
		rec.SKU, rec.Channel, rec.TargetMarginPct, rec.CurrentPrice, rec.RecommendedPrice,
		rec.PriceChangePct, rec.RevenueImpact, rec.ProfitImpact, rec.ConfidenceScore,
		rec.PriorityRank, rec.Recommendation,
	)
	if err != nil {
		return fmt.Errorf("save recommendation for %s@%s: %w", rec.SKU, rec.Channel, err)
	}
	return nil
}

// LogCompetitorQuote persists one competitor price update.
func (r *PostgresRepository) LogCompetitorQuote(ctx context.Context, quote model.CompetitorQuote) error {
	const query = `
	INSERT INTO competitor_quotes (feed, sku, channel, price)
	VALUES ($1, $2, $3, $4)`
	_, err := r.Pool.Exec(ctx, query, quote.Feed, quote.SKU, quote.Channel, quote.Price)
	if err != nil {
		return fmt.Errorf("log competitor quote for %s@%s: %w", quote.SKU, quote.Channel, err)
	}
	return nil
}
