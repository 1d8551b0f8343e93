// Package sheets records per-profile results into a Google spreadsheet and
// supplies the list of profiles to process.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/darumalabs/zashabot/internal/game"
)

// Config holds the spreadsheet connection parameters.
type Config struct {
	CredentialsFile string
	SpreadsheetID   string
	SheetName       string
	// Columns maps logical fields (serial_number, daruma_fox, ...,
	// status_error) to column letters.
	Columns map[string]string
	// DataStartRow is the first row with data, after headers. 1-based.
	DataStartRow int
}

// Manager reads profile serials from one column and writes results back,
// keyed by a cached serial -> row index. Safe for concurrent use.
type Manager struct {
	svc *sheets.Service
	cfg Config

	mu       sync.Mutex
	rowCache map[string]int
	rowOrder []string
}

// New authenticates with the service account credentials and opens the
// spreadsheet.
func New(ctx context.Context, cfg Config) (*Manager, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}
	if cfg.DataStartRow == 0 {
		cfg.DataStartRow = 2
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	m := &Manager{svc: svc, cfg: cfg}
	if err := m.refreshRowCache(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// ColumnLetterToIndex converts a column letter (A, B, ..., AA) to a 1-based
// index.
func ColumnLetterToIndex(letter string) int {
	result := 0
	for _, r := range strings.ToUpper(letter) {
		result = result*26 + int(r-'A'+1)
	}
	return result
}

func (m *Manager) serialColumn() string {
	if col, ok := m.cfg.Columns["serial_number"]; ok {
		return col
	}
	return "A"
}

// refreshRowCache rebuilds the serial -> row index by scanning the serial
// column.
func (m *Manager) refreshRowCache(ctx context.Context) error {
	col := m.serialColumn()
	readRange := fmt.Sprintf("%s!%s:%s", m.cfg.SheetName, col, col)

	resp, err := m.svc.Spreadsheets.Values.Get(m.cfg.SpreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read serial column: %w", err)
	}

	cache, order := buildRowIndex(resp.Values, m.cfg.DataStartRow)

	m.mu.Lock()
	m.rowCache = cache
	m.rowOrder = order
	m.mu.Unlock()
	return nil
}

// buildRowIndex maps trimmed serial values to 1-based row numbers, keeping
// sheet order and skipping rows above dataStartRow and empty cells.
func buildRowIndex(values [][]any, dataStartRow int) (map[string]int, []string) {
	cache := make(map[string]int)
	var order []string

	for i, row := range values {
		rowNum := i + 1
		if rowNum < dataStartRow || len(row) == 0 {
			continue
		}
		serial := strings.TrimSpace(fmt.Sprintf("%v", row[0]))
		if serial == "" {
			continue
		}
		if _, seen := cache[serial]; !seen {
			order = append(order, serial)
		}
		cache[serial] = rowNum
	}
	return cache, order
}

// ProfileIDs returns the serials listed in the sheet, in sheet order.
func (m *Manager) ProfileIDs(ctx context.Context) ([]string, error) {
	if err := m.refreshRowCache(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.rowOrder))
	copy(ids, m.rowOrder)
	return ids, nil
}

// rowFor returns the row for a serial, rebuilding the cache once on a miss.
func (m *Manager) rowFor(ctx context.Context, serial string) (int, error) {
	serial = strings.TrimSpace(serial)

	m.mu.Lock()
	row, ok := m.rowCache[serial]
	m.mu.Unlock()
	if ok {
		return row, nil
	}

	if err := m.refreshRowCache(ctx); err != nil {
		return 0, err
	}

	m.mu.Lock()
	row, ok = m.rowCache[serial]
	m.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("serial %s not found in sheet", serial)
	}
	return row, nil
}

// UpdateCollection writes "ok" into each owned card's column for the
// profile's row, clearing the cells of cards that are not owned.
func (m *Manager) UpdateCollection(ctx context.Context, serial string, cards game.Collection) error {
	row, err := m.rowFor(ctx, serial)
	if err != nil {
		return err
	}

	data := collectionUpdates(m.cfg.SheetName, m.cfg.Columns, row, cards)
	if len(data) == 0 {
		return nil
	}

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	if _, err := m.svc.Spreadsheets.Values.BatchUpdate(m.cfg.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("batch update collection: %w", err)
	}
	return nil
}

// collectionUpdates builds one cell update per card that has a configured
// column.
func collectionUpdates(sheetName string, columns map[string]string, row int, cards game.Collection) []*sheets.ValueRange {
	var data []*sheets.ValueRange
	for _, name := range game.CardNames {
		col, ok := columns[game.ColumnKey(name)]
		if !ok {
			continue
		}
		value := ""
		if cards[name] {
			value = "ok"
		}
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", sheetName, col, row),
			Values: [][]any{{value}},
		})
	}
	return data
}

// UpdateStatus writes the status text into the profile's status column.
func (m *Manager) UpdateStatus(ctx context.Context, serial string, status string) error {
	row, err := m.rowFor(ctx, serial)
	if err != nil {
		return err
	}

	col, ok := m.cfg.Columns["status_error"]
	if !ok {
		col = "N"
	}
	cell := fmt.Sprintf("%s!%s%d", m.cfg.SheetName, col, row)

	vr := &sheets.ValueRange{Values: [][]any{{status}}}
	if _, err := m.svc.Spreadsheets.Values.Update(m.cfg.SpreadsheetID, cell, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}
