package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// payrollTables are cleared between tests, children first.
var payrollTables = []string{
	"payroll_audits",
	"salaries",
	"payroll_items",
	"payrolls",
	"bills",
	"pay_rule_configs",
	"class_ranges",
	"persons",
}

// TestDatabaseSetup holds a connection to the payroll store used by integration tests.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the payroll schema.
// The test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err, "failed to connect to test database")

	setup := &TestDatabaseSetup{DB: db}
	t.Cleanup(setup.Close)

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", "payroll", "001_init.sql"))
	require.NoError(t, err)
	_, err = db.Exec(context.Background(), string(schema))
	require.NoError(t, err, "failed to apply payroll schema")

	require.NoError(t, setup.TruncateAllTables(context.Background()))
	return setup
}

// TruncateAllTables removes every row from the payroll store.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range payrollTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}
