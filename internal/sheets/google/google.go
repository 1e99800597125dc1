package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"ledger/internal/core"
	ports "ledger/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	rowTimeLayout = "2006-01-02 15:04:05"

	// Transaction rows span A:H; column A holds the transaction id.
	lastTxColumn      = "H"
	lastSummaryColumn = "F"
)

var summaryHeader = []any{"Date", "Income", "Expense", "Net", "Transactions", "Currency"}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	summarySheet  string
}

var _ ports.TransactionMirror = (*Client)(nil)

type Options struct {
	SpreadsheetID    string
	SheetName        string
	SummarySheetName string
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.SheetName) == "" {
		o.SheetName = "Transactions"
	}
	if strings.TrimSpace(o.SummarySheetName) == "" {
		o.SummarySheetName = "Daily"
	}
	return o
}

// New creates a Sheets mirror authenticated with service account
// credentials found in the environment.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, opts), nil
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(svc *gsheet.Service, opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheet:         opts.SheetName,
		summarySheet:  opts.SummarySheetName,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// UpsertTransaction rewrites the row holding t.ID, or appends one.
func (c *Client) UpsertTransaction(ctx context.Context, t core.EnrichedTransaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findRow(ctx, t.ID)
	if err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{transactionRow(t)}}

	if row == 0 {
		rng := fmt.Sprintf("%s!A:%s", c.sheet, lastTxColumn)
		_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("append transaction %d to %s: %w", t.ID, c.sheet, err)
		}
		slog.DebugContext(ctx, "Appended mirror row", "transaction_id", t.ID, "sheet", c.sheet)
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:%s%d", c.sheet, row, lastTxColumn, row)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update transaction %d in %s: %w", t.ID, rng, err)
	}
	slog.DebugContext(ctx, "Updated mirror row", "transaction_id", t.ID, "range", rng)
	return nil
}

// DeleteTransaction blanks the row holding id. The emptied row stays in
// place so row numbers of other transactions do not shift.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findRow(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:%s%d", c.sheet, row, lastTxColumn, row)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

// WriteDailySummary replaces the summary sheet with a header and one line
// per day, newest first.
func (c *Client) WriteDailySummary(ctx context.Context, ownerID int64, groups []core.DateGroup) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRng := fmt.Sprintf("%s!A:%s", c.summarySheet, lastSummaryColumn)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRng, err)
	}

	values := make([][]any, 0, len(groups)+1)
	values = append(values, summaryHeader)
	for _, g := range groups {
		values = append(values, summaryRow(g))
	}

	rng := fmt.Sprintf("%s!A1:%s%d", c.summarySheet, lastSummaryColumn, len(values))
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write summary %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Daily summary written", "owner_id", ownerID, "days", len(groups), "sheet", c.summarySheet)
	return nil
}

// MirroredIDs reads the id column, skipping the header and blanked rows.
func (c *Client) MirroredIDs(ctx context.Context) ([]int64, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	values, err := c.idColumn(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(values))
	for _, row := range values {
		if id, ok := rowID(row); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// findRow returns the 1-based row whose column A equals id, or 0.
func (c *Client) findRow(ctx context.Context, id int64) (int, error) {
	values, err := c.idColumn(ctx)
	if err != nil {
		return 0, err
	}
	return rowOf(values, id), nil
}

func (c *Client) idColumn(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// rowID parses column A. The header and blanked rows yield false.
func rowID(row []any) (int64, bool) {
	if len(row) == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(row[0])), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func rowOf(values [][]any, id int64) int {
	for i, row := range values {
		if v, ok := rowID(row); ok && v == id {
			return i + 1
		}
	}
	return 0
}

func transactionRow(t core.EnrichedTransaction) []any {
	return []any{
		t.ID,
		t.OccurredAt.UTC().Format(rowTimeLayout),
		t.Description,
		t.Amount.String(),
		t.Currency,
		t.Kind.Label(),
		t.Category.Name,
		t.Account.Name,
	}
}

func summaryRow(g core.DateGroup) []any {
	return []any{
		g.Date,
		g.TotalIncome.String(),
		g.TotalExpense.String(),
		g.NetTotal.String(),
		g.TransactionCount,
		core.Currency,
	}
}
