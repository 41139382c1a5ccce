package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payRuleConfigRepository struct {
	db *database.DB
}

func NewPayRuleConfigRepository(db *database.DB) payrule.ConfigRepository {
	return &payRuleConfigRepository{db: db}
}

func scanConfig(row pgx.Row) (payrule.Config, error) {
	var cfg payrule.Config
	var basePays, above, below []byte
	if err := row.Scan(&cfg.ID, &basePays, &cfg.MonthlyThreshold, &above, &below, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		return payrule.Config{}, err
	}
	if err := json.Unmarshal(basePays, &cfg.BasePays); err != nil {
		return payrule.Config{}, fmt.Errorf("failed to decode base_pays: %w", err)
	}
	if err := json.Unmarshal(above, &cfg.AboveThreshold); err != nil {
		return payrule.Config{}, fmt.Errorf("failed to decode above_threshold: %w", err)
	}
	if err := json.Unmarshal(below, &cfg.BelowThreshold); err != nil {
		return payrule.Config{}, fmt.Errorf("failed to decode below_threshold: %w", err)
	}
	return cfg, nil
}

func (r *payRuleConfigRepository) GetActive(ctx context.Context) (payrule.Config, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, base_pays, monthly_threshold, above_threshold, below_threshold, created_at, updated_at
		FROM pay_rule_configs
		WHERE singleton = TRUE
	`

	cfg, err := scanConfig(q.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payrule.Config{}, payrule.ErrPayRuleConfigNotFound
		}
		return payrule.Config{}, fmt.Errorf("failed to get pay rule config: %w", err)
	}
	return cfg, nil
}

func (r *payRuleConfigRepository) Upsert(ctx context.Context, cfg payrule.Config) (payrule.Config, error) {
	q := GetQuerier(ctx, r.db)

	basePays := cfg.BasePays
	if basePays == nil {
		basePays = []payrule.BasePay{}
	}
	above := cfg.AboveThreshold
	if above.Rules == nil {
		above.Rules = []payrule.IncrementRule{}
	}

	basePaysJSON, err := json.Marshal(basePays)
	if err != nil {
		return payrule.Config{}, fmt.Errorf("failed to encode base_pays: %w", err)
	}
	aboveJSON, err := json.Marshal(above)
	if err != nil {
		return payrule.Config{}, fmt.Errorf("failed to encode above_threshold: %w", err)
	}
	belowJSON, err := json.Marshal(cfg.BelowThreshold)
	if err != nil {
		return payrule.Config{}, fmt.Errorf("failed to encode below_threshold: %w", err)
	}

	query := `
		INSERT INTO pay_rule_configs (singleton, base_pays, monthly_threshold, above_threshold, below_threshold)
		VALUES (TRUE, $1, $2, $3, $4)
		ON CONFLICT (singleton) DO UPDATE SET
			base_pays = EXCLUDED.base_pays,
			monthly_threshold = EXCLUDED.monthly_threshold,
			above_threshold = EXCLUDED.above_threshold,
			below_threshold = EXCLUDED.below_threshold,
			updated_at = NOW()
		RETURNING id, base_pays, monthly_threshold, above_threshold, below_threshold, created_at, updated_at
	`

	saved, err := scanConfig(q.QueryRow(ctx, query, basePaysJSON, cfg.MonthlyThreshold, aboveJSON, belowJSON))
	if err != nil {
		return payrule.Config{}, fmt.Errorf("failed to upsert pay rule config: %w", err)
	}
	return saved, nil
}
