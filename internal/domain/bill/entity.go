package bill

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusGenerated Status = "Generated"
	StatusOnDue     Status = "OnDue"
	StatusOverdue   Status = "Overdue"
	StatusPaid      Status = "Paid"
)

type Bill struct {
	ID           string
	StudentID    string
	Amount       decimal.Decimal
	Status       Status
	DueDate      time.Time
	FinalDueDate time.Time
	PaidDate     *time.Time
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}
