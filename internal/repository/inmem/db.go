// Package inmem holds map-backed repositories with the same contracts as the
// postgresql ones, unique keys included. Used by service tests and local runs.
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/bill"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/person"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/database"
)

type DB struct {
	mutex sync.RWMutex

	persons     map[string]person.Person
	classRanges map[string]payrule.ClassRange
	config      *payrule.Config
	payrolls    map[string]payroll.Payroll
	salaries    map[string]payroll.Salary
	audits      []audit.PayrollAudit
	bills       map[string]bill.Bill
	schedules   []schedule.Schedule
	attendance  []schedule.AttendanceRecord

	// BeforePayrollItems runs after a payroll row is stored and before its items
	// are, letting tests fail a unit of work halfway.
	BeforePayrollItems func(p payroll.Payroll) error
	// FailAuditAppend makes every audit append fail with the returned error.
	FailAuditAppend func() error

	now func() time.Time
}

func NewDB() *DB {
	return &DB{
		persons:     make(map[string]person.Person),
		classRanges: make(map[string]payrule.ClassRange),
		payrolls:    make(map[string]payroll.Payroll),
		salaries:    make(map[string]payroll.Salary),
		bills:       make(map[string]bill.Bill),
		now:         time.Now,
	}
}

// ========== TRANSACTIONS ==========

type txKey struct{}

type txLog struct {
	mu   sync.Mutex
	undo []func()
}

// record registers an undo step when ctx carries a transaction. Caller holds db.mutex.
func (db *DB) record(ctx context.Context, undo func()) {
	if log, ok := ctx.Value(txKey{}).(*txLog); ok {
		log.mu.Lock()
		log.undo = append(log.undo, undo)
		log.mu.Unlock()
	}
}

type transactor struct {
	db *DB
}

func NewTransactor(db *DB) database.Transactor {
	return &transactor{db: db}
}

// WithinTransaction undoes every write made through the tx context when fn fails.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	log := &txLog{}
	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		t.db.mutex.Lock()
		for i := len(log.undo) - 1; i >= 0; i-- {
			log.undo[i]()
		}
		t.db.mutex.Unlock()
		return err
	}
	return nil
}

// ========== SEEDING ==========

func (db *DB) AddPerson(p person.Person) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.persons[p.ID] = p
}

func (db *DB) AddSchedule(s schedule.Schedule) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.schedules = append(db.schedules, s)
}

func (db *DB) AddAttendance(a schedule.AttendanceRecord) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.attendance = append(db.attendance, a)
}

func (db *DB) AddBill(b bill.Bill) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.bills[b.ID] = b
}

// PayrollRows returns every stored payroll, soft-deleted ones included.
func (db *DB) PayrollRows() []payroll.Payroll {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	rows := make([]payroll.Payroll, 0, len(db.payrolls))
	for _, p := range db.payrolls {
		rows = append(rows, p)
	}
	return rows
}

func (db *DB) AuditRows() []audit.PayrollAudit {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return append([]audit.PayrollAudit(nil), db.audits...)
}
