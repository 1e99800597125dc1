package backend

import (
	"context"

	"ledger/internal/amqp"
	"ledger/internal/services"
	"ledger/internal/sheets"
	"ledger/internal/storage"
)

// Backend bundles the storage and services both binaries run on.
type Backend struct {
	Repository   *storage.Repository
	Transactions *services.TransactionService
	Catalog      *services.CatalogService
	// Events is nil when AMQP is disabled or unreachable.
	Events *amqp.Client
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and its cleanup function
type BackendResult struct {
	Backend *Backend
	Cleanup CleanupFunc
}

// Factory creates backends and mirrors based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	CreateMirror(ctx context.Context, config Config) (sheets.TransactionMirror, error)
}

// MirrorType selects where the worker copies transactions to.
type MirrorType string

const (
	MirrorGoogle MirrorType = "google"
	MirrorMemory MirrorType = "memory"
)

func (t MirrorType) IsValid() bool {
	switch t {
	case MirrorGoogle, MirrorMemory:
		return true
	default:
		return false
	}
}

func (t MirrorType) String() string {
	return string(t)
}

// Config holds configuration for backend creation
type Config struct {
	DBDriver string
	DSN      string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// RequireAMQP turns an unreachable broker into a startup error instead
	// of running without events.
	RequireAMQP bool

	Mirror                 MirrorType
	GoogleSpreadsheetID    string
	GoogleSheetName        string
	GoogleSummarySheetName string
}
