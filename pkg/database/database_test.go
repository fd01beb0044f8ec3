// Copyright 2025 Hush Network
//
// Shared TestMain for every *_test.go file in this package: repository
// tests run against a real Postgres database named by FEEDS_TEST_DB, and
// are skipped entirely (exit 0, not a failure) when it is unset.

package database

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	connStr := os.Getenv("FEEDS_TEST_DB")
	if connStr == "" {
		os.Exit(0)
	}

	var err error
	testDB, err = sql.Open("postgres", connStr)
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}

	code := m.Run()
	testDB.Close()
	os.Exit(code)
}
