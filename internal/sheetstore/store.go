// Package sheetstore wraps the external spreadsheet behind a row-level
// store interface. Row indices are 1-based and include the header row
// (header occupies index 1); deleting a row shifts every subsequent row up
// by one, so a resolved index is only valid until the next structural write.
package sheetstore

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"certificados/common"
)

// RowStore is the data access contract the services depend on.
type RowStore interface {
	// ReadRange returns every populated row of the given A1 range,
	// header included, each cell stringified.
	ReadRange(ctx context.Context, sheet, rng string) ([][]string, error)

	// AppendRow appends a row after the last populated row of the range.
	AppendRow(ctx context.Context, sheet, rng string, row []string) error

	// UpdateRow overwrites the full row at the given 1-based index.
	UpdateRow(ctx context.Context, sheet string, rowIndex int64, row []string) error

	// DeleteRow removes the row at the given 1-based index, shifting
	// subsequent rows up.
	DeleteRow(ctx context.Context, sheet string, rowIndex int64) error
}

// Client implements RowStore against the Google Sheets API.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	log           *zap.Logger

	// Sheet ids never change for the lifetime of a sheet, so they are
	// resolved once and memoized.
	mu       sync.Mutex
	sheetIDs map[string]int64
}

// NewClient builds a Sheets-backed store. credentialsFile may be empty, in
// which case application default credentials are used.
func NewClient(ctx context.Context, spreadsheetID, credentialsFile string, log *zap.Logger) (*Client, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: creating sheets service: %v", common.ErrStoreUnavailable, err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		log:           log,
		sheetIDs:      make(map[string]int64),
	}, nil
}

func (c *Client) ReadRange(ctx context.Context, sheet, rng string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, sheet+"!"+rng).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s!%s: %v", common.ErrStoreUnavailable, sheet, rng, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Client) AppendRow(ctx context.Context, sheet, rng string, row []string) error {
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, sheet+"!"+rng, valueRange(row)).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: appending to %s: %v", common.ErrStoreUnavailable, sheet, err)
	}
	return nil
}

func (c *Client) UpdateRow(ctx context.Context, sheet string, rowIndex int64, row []string) error {
	if rowIndex < 1 {
		return fmt.Errorf("%w: %d", common.ErrRowIndexInvalid, rowIndex)
	}

	target := fmt.Sprintf("%s!A%d", sheet, rowIndex)
	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, target, valueRange(row)).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: updating %s: %v", common.ErrStoreUnavailable, target, err)
	}
	return nil
}

func (c *Client) DeleteRow(ctx context.Context, sheet string, rowIndex int64) error {
	if rowIndex < 1 {
		return fmt.Errorf("%w: %d", common.ErrRowIndexInvalid, rowIndex)
	}

	sheetID, err := c.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: rowIndex - 1,
					EndIndex:   rowIndex,
				},
			},
		}},
	}

	_, err = c.svc.Spreadsheets.
		BatchUpdate(c.spreadsheetID, req).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: deleting row %d of %s: %v", common.ErrStoreUnavailable, rowIndex, sheet, err)
	}
	return nil
}

// sheetID resolves a sheet name to its numeric id, memoizing the answer.
func (c *Client) sheetID(ctx context.Context, sheet string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.sheetIDs[sheet]; ok {
		return id, nil
	}

	meta, err := c.svc.Spreadsheets.
		Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("%w: fetching spreadsheet metadata: %v", common.ErrStoreUnavailable, err)
	}

	for _, s := range meta.Sheets {
		if s.Properties == nil {
			continue
		}
		c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
	}

	id, ok := c.sheetIDs[sheet]
	if !ok {
		return 0, fmt.Errorf("%w: %q", common.ErrSheetNotFound, sheet)
	}

	c.log.Debug("resolved sheet id", zap.String("sheet", sheet), zap.Int64("sheetId", id))
	return id, nil
}

func valueRange(row []string) *sheets.ValueRange {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return &sheets.ValueRange{Values: [][]interface{}{cells}}
}
