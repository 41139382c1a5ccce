package audit

import "time"

type AuditResponse struct {
	ID            string                 `json:"id"`
	PayrollID     string                 `json:"payroll_id"`
	EntityType    string                 `json:"entity_type"`
	EntityID      string                 `json:"entity_id"`
	StaffID       string                 `json:"staff_id"`
	StaffType     string                 `json:"staff_type"`
	Action        string                 `json:"action"`
	ChangedFields []string               `json:"changed_fields"`
	Changes       map[string]FieldChange `json:"changes"`
	ChangedBy     string                 `json:"changed_by"`
	CreatedAt     string                 `json:"created_at"`
}

func ToAuditResponse(a PayrollAudit, changes map[string]FieldChange) AuditResponse {
	fields := a.ChangedFields
	if fields == nil {
		fields = []string{}
	}
	return AuditResponse{
		ID:            a.ID,
		PayrollID:     a.PayrollID,
		EntityType:    string(a.EntityType),
		EntityID:      a.EntityID,
		StaffID:       a.StaffID,
		StaffType:     a.StaffType,
		Action:        string(a.Action),
		ChangedFields: fields,
		Changes:       changes,
		ChangedBy:     a.ChangedBy,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}
