package payrule

import "context"

type Service interface {
	GetConfig(ctx context.Context) (ConfigResponse, error)
	UpdateConfig(ctx context.Context, req UpdateConfigRequest) (ConfigResponse, error)

	CreateClassRange(ctx context.Context, req CreateClassRangeRequest) (ClassRangeResponse, error)
	ListClassRanges(ctx context.Context) ([]ClassRangeResponse, error)
	UpdateClassRange(ctx context.Context, req UpdateClassRangeRequest) (ClassRangeResponse, error)
	DeleteClassRange(ctx context.Context, id string) error

	// Recompute applies the active configuration to ad hoc inputs.
	Recompute(ctx context.Context, req RecomputeRequest) (RecomputeResponse, error)
}
