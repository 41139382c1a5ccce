package payrule

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
)

type PayRuleServiceImpl struct {
	configRepo     payrule.ConfigRepository
	classRangeRepo payrule.ClassRangeRepository
}

func NewPayRuleService(configRepo payrule.ConfigRepository, classRangeRepo payrule.ClassRangeRepository) payrule.Service {
	return &PayRuleServiceImpl{
		configRepo:     configRepo,
		classRangeRepo: classRangeRepo,
	}
}

// ========== CONFIG ==========

func (s *PayRuleServiceImpl) GetConfig(ctx context.Context) (payrule.ConfigResponse, error) {
	cfg, err := s.configRepo.GetActive(ctx)
	if err != nil {
		return payrule.ConfigResponse{}, err
	}
	return mapToConfigResponse(cfg), nil
}

func (s *PayRuleServiceImpl) UpdateConfig(ctx context.Context, req payrule.UpdateConfigRequest) (payrule.ConfigResponse, error) {
	if err := req.Validate(); err != nil {
		return payrule.ConfigResponse{}, err
	}

	ranges, err := s.classRangeRepo.ListActive(ctx)
	if err != nil {
		return payrule.ConfigResponse{}, fmt.Errorf("failed to list class ranges: %w", err)
	}
	known := make(map[string]bool, len(ranges))
	for _, r := range ranges {
		known[r.ID] = true
	}
	for _, bp := range req.BasePays {
		if !known[bp.ClassRangeID] {
			return payrule.ConfigResponse{}, fmt.Errorf("%w: %s", payrule.ErrUnknownClassRange, bp.ClassRangeID)
		}
	}

	// Wholesale replace, last write wins
	saved, err := s.configRepo.Upsert(ctx, req.ToConfig())
	if err != nil {
		return payrule.ConfigResponse{}, fmt.Errorf("failed to save pay rule config: %w", err)
	}
	return mapToConfigResponse(saved), nil
}

// ========== CLASS RANGES ==========

func (s *PayRuleServiceImpl) CreateClassRange(ctx context.Context, req payrule.CreateClassRangeRequest) (payrule.ClassRangeResponse, error) {
	if err := req.Validate(); err != nil {
		return payrule.ClassRangeResponse{}, err
	}

	created, err := s.classRangeRepo.Create(ctx, payrule.ClassRange{
		FromClass: req.FromClass,
		ToClass:   req.ToClass,
		Label:     req.Label,
	})
	if err != nil {
		return payrule.ClassRangeResponse{}, fmt.Errorf("failed to create class range: %w", err)
	}
	return mapToClassRangeResponse(created), nil
}

func (s *PayRuleServiceImpl) ListClassRanges(ctx context.Context) ([]payrule.ClassRangeResponse, error) {
	ranges, err := s.classRangeRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]payrule.ClassRangeResponse, 0, len(ranges))
	for _, r := range ranges {
		resp = append(resp, mapToClassRangeResponse(r))
	}
	return resp, nil
}

func (s *PayRuleServiceImpl) UpdateClassRange(ctx context.Context, req payrule.UpdateClassRangeRequest) (payrule.ClassRangeResponse, error) {
	current, err := s.classRangeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return payrule.ClassRangeResponse{}, err
	}

	if req.FromClass != nil {
		current.FromClass = *req.FromClass
	}
	if req.ToClass != nil {
		current.ToClass = *req.ToClass
	}
	if req.Label != nil {
		current.Label = *req.Label
	}
	if current.FromClass < 0 || current.ToClass < current.FromClass {
		return payrule.ClassRangeResponse{}, payrule.ErrInvalidClassRange
	}

	updated, err := s.classRangeRepo.Update(ctx, current)
	if err != nil {
		return payrule.ClassRangeResponse{}, fmt.Errorf("failed to update class range: %w", err)
	}
	return mapToClassRangeResponse(updated), nil
}

func (s *PayRuleServiceImpl) DeleteClassRange(ctx context.Context, id string) error {
	return s.classRangeRepo.SoftDelete(ctx, id)
}

// ========== RECOMPUTE ==========

func (s *PayRuleServiceImpl) Recompute(ctx context.Context, req payrule.RecomputeRequest) (payrule.RecomputeResponse, error) {
	if err := req.Validate(); err != nil {
		return payrule.RecomputeResponse{}, err
	}

	cfg, err := s.configRepo.GetActive(ctx)
	if err != nil {
		return payrule.RecomputeResponse{}, err
	}

	res := Compute(req.BasePay, req.ClassUnits, req.AttendedClasses, req.MissedClasses, cfg)
	return payrule.RecomputeResponse{
		GrossSalary:     res.GrossSalary,
		NetSalary:       res.NetSalary,
		IncrementAmount: res.IncrementAmount,
		DeductionAmount: res.DeductionAmount,
	}, nil
}

func mapToConfigResponse(cfg payrule.Config) payrule.ConfigResponse {
	basePays := cfg.BasePays
	if basePays == nil {
		basePays = []payrule.BasePay{}
	}
	above := cfg.AboveThreshold
	if above.Rules == nil {
		above.Rules = []payrule.IncrementRule{}
	}
	return payrule.ConfigResponse{
		ID:               cfg.ID,
		BasePays:         basePays,
		MonthlyThreshold: cfg.MonthlyThreshold,
		AboveThreshold:   above,
		BelowThreshold:   cfg.BelowThreshold,
		UpdatedAt:        cfg.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToClassRangeResponse(r payrule.ClassRange) payrule.ClassRangeResponse {
	return payrule.ClassRangeResponse{
		ID:        r.ID,
		FromClass: r.FromClass,
		ToClass:   r.ToClass,
		Label:     r.Label,
	}
}
