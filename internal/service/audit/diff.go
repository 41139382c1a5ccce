package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/audit"
)

// Housekeeping fields never take part in a diff.
var housekeeping = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"deleted_at": true,
}

// ToSnapshot serializes v to its JSON field map with housekeeping fields removed.
// A nil v (or a value serializing to null) yields a nil snapshot.
func ToSnapshot(v any) (audit.Snapshot, error) {
	if v == nil {
		return nil, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit snapshot: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to decode audit snapshot: %w", err)
	}
	if fields == nil {
		return nil, nil
	}

	for k := range housekeeping {
		delete(fields, k)
	}
	return audit.Snapshot(fields), nil
}

// AuditDiff reports field-level changes between two snapshots. CREATE reports every
// new field, DELETE every old field, UPDATE only fields whose values are not deeply equal.
func AuditDiff(action audit.Action, oldData, newData audit.Snapshot) map[string]audit.FieldChange {
	changes := make(map[string]audit.FieldChange)

	switch action {
	case audit.ActionCreate:
		for k, v := range newData {
			if !housekeeping[k] {
				changes[k] = audit.FieldChange{OldValue: nil, NewValue: v}
			}
		}
	case audit.ActionDelete:
		for k, v := range oldData {
			if !housekeeping[k] {
				changes[k] = audit.FieldChange{OldValue: v, NewValue: nil}
			}
		}
	case audit.ActionUpdate:
		for k, oldV := range oldData {
			if housekeeping[k] {
				continue
			}
			newV, ok := newData[k]
			if !ok || !reflect.DeepEqual(oldV, newV) {
				changes[k] = audit.FieldChange{OldValue: oldV, NewValue: newV}
			}
		}
		for k, newV := range newData {
			if housekeeping[k] {
				continue
			}
			if _, ok := oldData[k]; !ok {
				changes[k] = audit.FieldChange{OldValue: nil, NewValue: newV}
			}
		}
	}

	return changes
}

// ChangedFields returns the sorted keys of a diff.
func ChangedFields(changes map[string]audit.FieldChange) []string {
	fields := make([]string, 0, len(changes))
	for k := range changes {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
