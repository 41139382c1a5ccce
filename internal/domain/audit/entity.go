package audit

import "time"

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

type EntityType string

const (
	EntityPayroll EntityType = "payroll"
	EntitySalary  EntityType = "salary"
)

const SystemActor = "system"

// Snapshot maps field name to its JSON-decoded value. Audited entities evolve
// field by field, so snapshots are kept schemaless.
type Snapshot map[string]any

// FieldChange is one entry of a computed diff. A nil side means absent.
type FieldChange struct {
	OldValue any `json:"old_value"`
	NewValue any `json:"new_value"`
}

// PayrollAudit is append-only.
type PayrollAudit struct {
	ID            string
	PayrollID     string
	EntityType    EntityType
	EntityID      string
	StaffID       string
	StaffType     string
	Action        Action
	OldData       Snapshot
	NewData       Snapshot
	ChangedFields []string
	ChangedBy     string
	CreatedAt     time.Time
}

// Entry is what a mutating operation hands to the logger.
type Entry struct {
	Action     Action
	EntityType EntityType
	EntityID   string
	PayrollID  string
	StaffID    string
	StaffType  string
	Old        any
	New        any
}
