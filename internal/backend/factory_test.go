package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/amqp"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/sheets/memory"
	"ledger/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{
		DBDriver:     config.DriverSQLite,
		SQLiteDBPath: "/tmp/ledger.db",
		AMQPURL:      "amqp://localhost",
		AMQPExchange: "ledger",
		AMQPQueue:    "ledger_events",
	}
	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ledger.db", cfg.DSN)
	assert.Equal(t, MirrorMemory, cfg.Mirror)

	app.GoogleSpreadsheetID = "sheet-id"
	cfg, err = FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, MirrorGoogle, cfg.Mirror)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"sqlite ok", Config{DBDriver: storage.DriverSQLite, DSN: "x.db"}, ""},
		{"mysql needs dsn", Config{DBDriver: storage.DriverMySQL}, "MySQL DSN is required"},
		{"unknown driver", Config{DBDriver: "postgres", DSN: "x"}, "invalid database driver"},
		{"required amqp", Config{DBDriver: storage.DriverSQLite, DSN: "x.db", RequireAMQP: true}, "AMQP URL is required"},
		{"bad mirror", Config{DBDriver: storage.DriverSQLite, DSN: "x.db", Mirror: "excel"}, "must be one of [google memory]"},
		{"google needs id", Config{DBDriver: storage.DriverSQLite, DSN: "x.db", Mirror: MirrorGoogle}, "Spreadsheet ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func failingDial(string, string, string) (*amqp.Client, error) {
	return nil, errors.New("connection refused")
}

func TestCreateBackendWithoutBroker(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)
	f.dialAMQP = failingDial

	res, err := f.CreateBackend(ctx, Config{
		DBDriver: storage.DriverSQLite,
		DSN:      filepath.Join(t.TempDir(), "ledger.db"),
		AMQPURL:  "amqp://unreachable",
	})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, res.Cleanup()) })

	b := res.Backend
	assert.Nil(t, b.Events)
	require.NoError(t, b.Repository.Ping(ctx))

	g, err := b.Catalog.CreateAccountGroup(ctx, 1, core.AccountGroup{Name: "Cash"})
	require.NoError(t, err)
	a, err := b.Catalog.CreateAccount(ctx, 1, core.Account{Name: "Wallet", AccountGroupID: g.ID})
	require.NoError(t, err)
	c, err := b.Catalog.CreateCategory(ctx, 1, core.Category{Name: "Food", Kind: core.CategoryExpense})
	require.NoError(t, err)

	// publishing is disabled, so the write must still succeed
	tx := core.Transaction{
		OccurredAt:  a.CreatedAt,
		Description: "Lunch",
		CategoryID:  c.ID,
		AccountID:   a.ID,
		Kind:        core.TransactionExpense,
	}
	_, err = b.Transactions.Create(ctx, 1, tx)
	require.NoError(t, err)
}

func TestCreateBackendRequiredBrokerFails(t *testing.T) {
	f := NewFactory(nil)
	f.dialAMQP = failingDial

	_, err := f.CreateBackend(context.Background(), Config{
		DBDriver:    storage.DriverSQLite,
		DSN:         filepath.Join(t.TempDir(), "ledger.db"),
		AMQPURL:     "amqp://unreachable",
		RequireAMQP: true,
	})
	assert.ErrorContains(t, err, "connection refused")
}

func TestCreateMirror(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	m, err := f.CreateMirror(ctx, Config{Mirror: MirrorMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, m)

	_, err = f.CreateMirror(ctx, Config{Mirror: MirrorGoogle})
	assert.ErrorContains(t, err, "missing GOOGLE_SPREADSHEET_ID")

	_, err = f.CreateMirror(ctx, Config{Mirror: "excel"})
	assert.Error(t, err)
}
