package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/audit"
	"github.com/go-chi/jwtauth/v5"
)

type PayrollAuditLoggerImpl struct {
	repo audit.Repository
	now  func() time.Time
}

func NewPayrollAuditLogger(repo audit.Repository) audit.Logger {
	return &PayrollAuditLoggerImpl{repo: repo, now: time.Now}
}

// changedByFromContext reads the caller from verified JWT claims, or "system" for
// scheduled runs and anonymous requests.
func changedByFromContext(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil || claims == nil {
		return audit.SystemActor
	}
	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID
	}
	return audit.SystemActor
}

func (l *PayrollAuditLoggerImpl) Record(ctx context.Context, e audit.Entry) {
	// The business mutation has already committed; outlive a cancelled request.
	ctx = context.WithoutCancel(ctx)

	entry, err := l.build(ctx, e)
	if err != nil {
		slog.Error("failed to build audit entry",
			"action", e.Action, "entity_type", e.EntityType, "entity_id", e.EntityID, "error", err)
		return
	}

	if _, err := l.repo.Append(ctx, entry); err != nil {
		slog.Error("failed to append audit entry",
			"action", e.Action, "entity_type", e.EntityType, "entity_id", e.EntityID, "error", err)
	}
}

func (l *PayrollAuditLoggerImpl) build(ctx context.Context, e audit.Entry) (audit.PayrollAudit, error) {
	oldData, err := ToSnapshot(e.Old)
	if err != nil {
		return audit.PayrollAudit{}, err
	}
	newData, err := ToSnapshot(e.New)
	if err != nil {
		return audit.PayrollAudit{}, err
	}

	switch e.Action {
	case audit.ActionCreate:
		if newData == nil {
			return audit.PayrollAudit{}, fmt.Errorf("%w: CREATE without new data", audit.ErrMissingSnapshot)
		}
		oldData = nil
	case audit.ActionUpdate:
		if oldData == nil || newData == nil {
			return audit.PayrollAudit{}, fmt.Errorf("%w: UPDATE needs old and new data", audit.ErrMissingSnapshot)
		}
	case audit.ActionDelete:
		if oldData == nil {
			return audit.PayrollAudit{}, fmt.Errorf("%w: DELETE without old data", audit.ErrMissingSnapshot)
		}
		newData = nil
	default:
		return audit.PayrollAudit{}, fmt.Errorf("%w: %q", audit.ErrInvalidAction, e.Action)
	}

	return audit.PayrollAudit{
		PayrollID:     e.PayrollID,
		EntityType:    e.EntityType,
		EntityID:      e.EntityID,
		StaffID:       e.StaffID,
		StaffType:     e.StaffType,
		Action:        e.Action,
		OldData:       oldData,
		NewData:       newData,
		ChangedFields: ChangedFields(AuditDiff(e.Action, oldData, newData)),
		ChangedBy:     changedByFromContext(ctx),
		CreatedAt:     l.now().UTC(),
	}, nil
}

func (l *PayrollAuditLoggerImpl) ListAudits(ctx context.Context, payrollID string) ([]audit.AuditResponse, error) {
	entries, err := l.repo.ListByPayroll(ctx, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}

	resp := make([]audit.AuditResponse, 0, len(entries))
	for _, a := range entries {
		resp = append(resp, audit.ToAuditResponse(a, AuditDiff(a.Action, a.OldData, a.NewData)))
	}
	return resp, nil
}
