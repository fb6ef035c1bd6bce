package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"mealbook/internal/rowstore"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Data rows start at sheet row 2; row 1 is the header.
const firstDataRow = 2

// Client implements rowstore.Store over a Google spreadsheet, one sheet tab
// per table.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ rowstore.Store = (*Client)(nil)

// New creates a client for the given spreadsheet using service account
// credentials.
func New(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// NewFromEnv creates a client from GOOGLE_SPREADSHEET_ID and service account
// credentials in GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	credentialsJSON := []byte(strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")))
	if len(credentialsJSON) == 0 {
		file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
		if file == "" {
			file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		}
		if file == "" {
			return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	}

	slog.InfoContext(ctx, "Creating Google Sheets row store",
		"spreadsheet_id", spreadsheetID,
		"credentials_size", len(credentialsJSON))

	return New(ctx, spreadsheetID, credentialsJSON)
}

func (c *Client) Get(ctx context.Context, table string) ([][]string, error) {
	rng := fmt.Sprintf("%s!A%d:Z", table, firstDataRow)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		out[i] = toStrings(row)
	}
	return out, nil
}

func (c *Client) Append(ctx context.Context, table string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = toAnys(row)
	}
	rng := fmt.Sprintf("%s!A%d", table, firstDataRow)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", table, err)
	}
	return nil
}

func (c *Client) Update(ctx context.Context, table string, rowIndex int, row []string) error {
	rng := rowRange(table, rowIndex)
	vr := &gsheet.ValueRange{Values: [][]any{toAnys(row)}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) Clear(ctx context.Context, table string, rowIndex int) error {
	rng := rowRange(table, rowIndex)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

func rowRange(table string, rowIndex int) string {
	sheetRow := rowIndex + firstDataRow
	return fmt.Sprintf("%s!A%d:Z%d", table, sheetRow, sheetRow)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toAnys(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
