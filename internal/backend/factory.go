package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/sheets"
	gsheet "ledger/internal/sheets/google"
	"ledger/internal/sheets/memory"
	"ledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger

	// dialAMQP is replaced in tests.
	dialAMQP func(url, exchange, queue string) (*amqp.Client, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger:   logger,
		dialAMQP: amqp.NewClient,
	}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateBackend opens storage, connects the event publisher when configured
// and wires the services.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := storage.Open(ctx, storage.Options{Driver: config.DBDriver, DSN: config.DSN})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s repository: %w", config.DBDriver, err)
	}

	var events *amqp.Client
	if config.AMQPURL != "" {
		events, err = f.dialAMQP(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		switch {
		case err != nil && config.RequireAMQP:
			return nil, errors.Join(fmt.Errorf("failed to initialize AMQP client: %w", err), repo.Close())
		case err != nil:
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			events = nil
		default:
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	// a nil *amqp.Client must not become a non-nil interface
	var publisher services.EventPublisher
	if events != nil {
		publisher = events
	}

	b := &Backend{
		Repository:   repo,
		Transactions: services.NewTransactionService(repo, repo, repo, publisher),
		Catalog:      services.NewCatalogService(repo, repo, repo),
		Events:       events,
	}

	f.logger.Info("Initialized backend",
		"driver", repo.Driver(),
		"amqp_enabled", events != nil)

	return &BackendResult{
		Backend: b,
		Cleanup: func() error {
			var errs []error
			if events != nil {
				if err := events.Close(); err != nil {
					errs = append(errs, fmt.Errorf("close amqp: %w", err))
				}
			}
			if err := repo.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close repository: %w", err))
			}
			return errors.Join(errs...)
		},
	}, nil
}

// CreateMirror builds the worker's mirror target.
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (sheets.TransactionMirror, error) {
	logger := f.logger.With(log.FieldComponent, log.ComponentSheets)
	switch config.Mirror {
	case MirrorGoogle:
		cli, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:    config.GoogleSpreadsheetID,
			SheetName:        config.GoogleSheetName,
			SummarySheetName: config.GoogleSummarySheetName,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets mirror: %w", err)
		}
		logger.Info("Initialized Google Sheets mirror", "sheet", config.GoogleSheetName)
		return cli, nil
	case MirrorMemory, "":
		logger.Info("Initialized in-memory mirror")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported mirror type: %s", config.Mirror)
	}
}
