package payrule

import "context"

// ConfigRepository stores the single active pay rule configuration.
type ConfigRepository interface {
	GetActive(ctx context.Context) (Config, error)
	Upsert(ctx context.Context, cfg Config) (Config, error)
}

// ClassRangeRepository never returns soft-deleted rows.
type ClassRangeRepository interface {
	Create(ctx context.Context, classRange ClassRange) (ClassRange, error)
	GetByID(ctx context.Context, id string) (ClassRange, error)
	ListActive(ctx context.Context) ([]ClassRange, error)
	Update(ctx context.Context, classRange ClassRange) (ClassRange, error)
	SoftDelete(ctx context.Context, id string) error
}
