// Package google mirrors transactions into a Google Sheets spreadsheet, one
// year-prefixed sheet per year (e.g. "2024 Lançamentos").
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"flux/internal/core"
	"flux/internal/log"
	ports "flux/internal/sheets"
)

const defaultCacheDuration = 2 * time.Minute

// Ensure interface conformance
var _ ports.TransactionExporter = (*Client)(nil)

type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	// CacheDuration bounds how long a sheet's row index is trusted.
	CacheDuration time.Duration
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *log.Logger
	now           func() time.Time

	// mu serializes writes and guards the row indexes.
	mu                 sync.Mutex
	indexes            map[string]*rowIndex
	cacheValidDuration time.Duration
}

// rowIndex maps transaction ids to 1-based row numbers of one sheet.
type rowIndex struct {
	rows      map[string]int
	rowCount  int
	expiresAt time.Time
}

// New creates a client authenticated with service account credentials.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	c := NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName, logger)
	if cfg.CacheDuration > 0 {
		c.cacheValidDuration = cfg.CacheDuration
	}
	return c, nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetBase string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Discard()
	}
	if strings.TrimSpace(sheetBase) == "" {
		sheetBase = "Lançamentos"
	}
	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		sheetBase:          sheetBase,
		logger:             logger.WithComponent(log.ComponentSheets),
		now:                time.Now,
		indexes:            make(map[string]*rowIndex),
		cacheValidDuration: defaultCacheDuration,
	}
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials, falling back to GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsJSON := []byte(strings.TrimSpace(cfg.CredentialsJSON))
	file := strings.TrimSpace(cfg.CredentialsFile)
	if len(credentialsJSON) == 0 && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	if len(credentialsJSON) == 0 {
		if file == "" {
			return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
		}
		var err error
		if credentialsJSON, err = os.ReadFile(file); err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

func (c *Client) sheetFor(year int) string {
	return yearPrefixedName(c.sheetBase, year)
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:I%d", sheet, row, row)
}

// InvalidateRowCache forgets every row index; the next write re-reads them.
func (c *Client) InvalidateRowCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, idx := range c.indexes {
		idx.expiresAt = time.Time{}
	}
}

// loadIndex returns the row index of sheet, reading column A when the cached
// one expired. A missing sheet is created. Caller holds mu.
func (c *Client) loadIndex(ctx context.Context, sheet string) (*rowIndex, error) {
	if idx, ok := c.indexes[sheet]; ok && c.now().Before(idx.expiresAt) {
		return idx, nil
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!A:A").Context(ctx).Do()
	var values [][]any
	switch {
	case isMissingSheet(err):
		if err := c.addSheet(ctx, sheet); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	default:
		values = resp.Values
	}

	idx := &rowIndex{
		rows:      make(map[string]int, len(values)),
		rowCount:  len(values),
		expiresAt: c.now().Add(c.cacheValidDuration),
	}
	for i, cells := range values {
		if row, ok := ports.ParseRow(cells); ok {
			idx.rows[row.ID] = i + 1
		}
	}
	c.indexes[sheet] = idx
	return idx, nil
}

func isMissingSheet(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest &&
		strings.Contains(gerr.Message, "Unable to parse range")
}

func (c *Client) addSheet(ctx context.Context, sheet string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: sheet}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	c.logger.InfoContext(ctx, "Created mirror sheet", "sheet", sheet)
	return nil
}

func (c *Client) writeRow(ctx context.Context, sheet string, row int, values []any) error {
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rowRange(sheet, row), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		delete(c.indexes, sheet)
		return fmt.Errorf("write %s: %w", rowRange(sheet, row), err)
	}
	return nil
}

func (c *Client) clearRow(ctx context.Context, sheet string, row int) error {
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rowRange(sheet, row), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		delete(c.indexes, sheet)
		return fmt.Errorf("clear %s: %w", rowRange(sheet, row), err)
	}
	return nil
}

// Export writes t to the sheet of its year, overwriting its previous row.
// A row left in another year's sheet by a date change is cleared.
func (c *Client) Export(ctx context.Context, t core.Transaction) (string, error) {
	if strings.TrimSpace(t.ID) == "" {
		return "", errors.New("transaction without id")
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sheet := c.sheetFor(t.Date.Year())
	idx, err := c.loadIndex(ctx, sheet)
	if err != nil {
		return "", err
	}

	for name, other := range c.indexes {
		if name == sheet {
			continue
		}
		if row, ok := other.rows[t.ID]; ok {
			if err := c.clearRow(ctx, name, row); err != nil {
				return "", err
			}
			delete(other.rows, t.ID)
		}
	}

	row, ok := idx.rows[t.ID]
	if !ok {
		if idx.rowCount == 0 {
			header := make([]any, len(ports.Header))
			for i, h := range ports.Header {
				header[i] = h
			}
			if err := c.writeRow(ctx, sheet, 1, header); err != nil {
				return "", err
			}
			idx.rowCount = 1
		}
		row = idx.rowCount + 1
	}

	if err := c.writeRow(ctx, sheet, row, ports.RowFromTransaction(t).Values()); err != nil {
		return "", err
	}
	idx.rows[t.ID] = row
	idx.rowCount = max(idx.rowCount, row)

	ref := rowRange(sheet, row)
	c.logger.DebugContext(ctx, "Transaction mirrored",
		log.FieldTransactionID, t.ID,
		log.FieldSheetsRef, ref)
	return ref, nil
}

// Remove clears the row of id from every sheet it is known in. The sheet
// of the current year is always consulted.
func (c *Client) Remove(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.loadIndex(ctx, c.sheetFor(c.now().Year())); err != nil {
		return err
	}

	for name := range c.indexes {
		idx, err := c.loadIndex(ctx, name)
		if err != nil {
			return err
		}
		row, ok := idx.rows[id]
		if !ok {
			continue
		}
		if err := c.clearRow(ctx, name, row); err != nil {
			return err
		}
		delete(idx.rows, id)
		c.logger.DebugContext(ctx, "Mirrored row cleared",
			log.FieldTransactionID, id,
			log.FieldSheetsRef, rowRange(name, row))
	}
	return nil
}
