// Package google mirrors ledger expenses into a Google Sheet. One row per
// expense, columns A:G = date, category, description, amount, kind, mood,
// record id. The id column is what DeleteExpense scans to find a row.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"fingenius/internal/core"
	ports "fingenius/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesSheet string
}

// Ensure interface conformance
var (
	_ ports.ExpenseWriter  = (*Client)(nil)
	_ ports.ExpenseDeleter = (*Client)(nil)
	_ ports.ExpenseIndexer = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Expenses"); the current year is
// prefixed to keep one sheet per year.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	expensesBase := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if expensesBase == "" {
		expensesBase = "Expenses"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		expensesSheet: yearPrefixedName(expensesBase, time.Now().Year()),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

func yearPrefixedName(base string, year int) string {
	if strings.HasPrefix(base, fmt.Sprintf("%d ", year)) {
		return base
	}
	return fmt.Sprintf("%d %s", year, base)
}

// Append writes one expense row after the last occupied row and returns its
// range reference.
func (c *Client) Append(ctx context.Context, e core.Expense) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Find the next empty row by getting the sheet dimensions first
	rng := fmt.Sprintf("%s!A:A", c.expensesSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", c.expensesSheet, err)
	}

	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:G%d", c.expensesSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{e.Date, e.Category, e.Description, e.Amount, string(e.Kind), e.Mood, e.ID}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", dataRange, err)
	}

	return dataRange, nil
}

// DeleteExpense clears the row whose id column matches the record id. A row
// that is not present is not an error; the sheet is a mirror, not the source
// of truth.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!G:G", c.expensesSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read id column of %s: %w", c.expensesSheet, err)
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if v, ok := row[0].(string); ok && v == id {
			clearRange := fmt.Sprintf("%s!A%d:G%d", c.expensesSheet, i+1, i+1)
			_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
			if err != nil {
				return fmt.Errorf("clear row %s: %w", clearRange, err)
			}
			return nil
		}
	}

	slog.InfoContext(ctx, "Expense row not found in sheet, nothing to delete", "id", id)
	return nil
}

// ListExpenseIDs reads the id column so reconcile can tell which records the
// sheet already holds.
func (c *Client) ListExpenseIDs(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!G:G", c.expensesSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read id column of %s: %w", c.expensesSheet, err)
	}

	var ids []string
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if v, ok := row[0].(string); ok && v != "" {
			ids = append(ids, v)
		}
	}
	return ids, nil
}
