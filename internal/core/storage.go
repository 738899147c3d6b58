package core

import (
	"fmt"
	"os"

	"hostelcore/internal/infra/persistence/memory"
	"hostelcore/internal/infra/persistence/postgres"
	"hostelcore/internal/infra/persistence/sqlite"
	"hostelcore/pkg/domain"
)

// StorageDriver identifies a concrete remote document store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenDocumentStore selects a backend using environment variables. Defaults
// to sqlite when unset.
//
//	HOSTELCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	HOSTELCORE_SQLITE_PATH: path to sqlite file (default ./hostelcore.db)
//	HOSTELCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenDocumentStore() (domain.DocumentStore, error) {
	driver := os.Getenv("HOSTELCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("HOSTELCORE_SQLITE_PATH"))
	case StoragePostgres:
		return postgres.NewStore(os.Getenv("HOSTELCORE_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
