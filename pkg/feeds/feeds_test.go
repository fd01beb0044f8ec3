// Copyright 2025 Hush Network
//
// Shared TestMain for this package's mutator tests: they run against a
// real Postgres database named by FEEDS_TEST_DB and are skipped (exit 0)
// when it is unset.

package feeds

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

// testStore builds a Store whose repositories talk directly to testDB,
// bypassing the database.Client wiring this package's mutators never use.
func testStore() *Store {
	return NewStore(nil)
}
