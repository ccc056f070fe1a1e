// Package dbtest opens isolated sqlite databases carrying the application schema.
package dbtest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/counterline/counterline-backend/pkg/migrate"
)

// NewSQLite returns a private in-memory database with every table created.
// A single pooled connection keeps the database alive for the test's lifetime.
func NewSQLite(tb testing.TB) *gorm.DB {
	tb.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.ApplySQLite(context.Background(), conn); err != nil {
		tb.Fatalf("apply schema: %v", err)
	}
	return conn
}
