package person

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeStaff     Type = "STAFF"
	TypeCounselor Type = "COUNSELOR"
	TypeTutor     Type = "TUTOR"
)

var TypeValues = []Type{TypeStaff, TypeCounselor, TypeTutor}

func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range TypeValues {
		if v == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPersonType, s)
}

// Person is the directory view of a staff member, counselor or tutor.
type Person struct {
	ID       string
	Type     Type
	FullName string
	IsActive bool
	// FixedMonthlySalary replaces class-range base pay when set.
	FixedMonthlySalary *decimal.Decimal
}
