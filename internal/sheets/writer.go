package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/budget"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer implements the ReportWriter interface for Google Sheets.
type Writer struct {
	service       *sheets.Service
	logger        *slog.Logger
	spreadsheetID string
	config        Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriterWithService(config, srv, logger), nil
}

func newWriterWithService(config Config, srv *sheets.Service, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		config:        config,
		service:       srv,
		logger:        logger,
		spreadsheetID: config.SpreadsheetID,
	}
}

// SpreadsheetID returns the spreadsheet written to, once known.
func (w *Writer) SpreadsheetID() string {
	return w.spreadsheetID
}

// WriteSchedule writes a loan's amortization schedule to its own tab.
func (w *Writer) WriteSchedule(ctx context.Context, loan model.Loan) error {
	if len(loan.Schedule) == 0 {
		return fmt.Errorf("%w: loan %s has no schedule", common.ErrInvalidInput, loan.Name)
	}
	return w.writeTab(ctx, ScheduleTab(loan))
}

// WriteBudget writes a budget summary to a tab named after its period.
func (w *Writer) WriteBudget(ctx context.Context, summary budget.Summary) error {
	return w.writeTab(ctx, BudgetTab(summary))
}

func (w *Writer) retryOptions() common.RetryOptions {
	return common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

func (w *Writer) writeTab(ctx context.Context, tab Tab) error {
	w.logger.Info("starting sheet export", "tab", tab.Title, "rows", len(tab.Rows))

	retryOpts := w.retryOptions()

	var sheetID int64
	err := common.WithRetry(ctx, func() error {
		spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
		if err != nil {
			return classifyAPIError(err)
		}
		sheetID, err = w.ensureSheet(ctx, spreadsheetID, tab.Title)
		return classifyAPIError(err)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to prepare spreadsheet: %w", err)
	}

	err = common.WithRetry(ctx, func() error {
		if clearErr := w.clearSheet(ctx, tab.Title); clearErr != nil {
			return classifyAPIError(clearErr)
		}
		return classifyAPIError(w.writeData(ctx, tab.Title, tab.Rows))
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return classifyAPIError(w.applyFormatting(ctx, sheetID, tab))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheet export completed",
		"spreadsheet_id", w.spreadsheetID,
		"tab", tab.Title,
		"rows_written", len(tab.Rows))

	return nil
}

// classifyAPIError marks client errors as permanent and 429s as rate limits.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", common.ErrRateLimit, err)
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return &common.RetryableError{Err: err, Retryable: false}
	default:
		return &common.RetryableError{Err: err, Retryable: true}
	}
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		token, err := oauthToken(config)
		if err != nil {
			return nil, err
		}
		tokenSource = oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

func oauthToken(config Config) (*oauth2.Token, error) {
	if config.RefreshToken != "" {
		return &oauth2.Token{RefreshToken: config.RefreshToken, TokenType: "Bearer"}, nil
	}
	token, err := LoadToken(config.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("%w: no refresh token and unable to read %s: %v", common.ErrMissingConfig, config.TokenFile, err)
	}
	return token, nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.spreadsheetID != "" {
		return w.spreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	w.spreadsheetID = created.SpreadsheetId
	return created.SpreadsheetId, nil
}

// ensureSheet returns the id of the tab named title, adding it when missing.
func (w *Writer) ensureSheet(ctx context.Context, spreadsheetID, title string) (int64, error) {
	ss, err := w.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to access spreadsheet %s: %w", spreadsheetID, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return sh.Properties.SheetId, nil
		}
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to add sheet %q: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("add sheet %q returned no properties", title)
	}

	w.logger.Debug("added sheet", "title", title)
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func a1(title, cell string) string {
	return fmt.Sprintf("'%s'!%s", title, cell)
}

// clearSheet clears all data from the tab.
func (w *Writer) clearSheet(ctx context.Context, title string) error {
	_, err := w.service.Spreadsheets.Values.Clear(w.spreadsheetID, a1(title, "A:Z"), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// writeData writes the rows to the tab in batches.
func (w *Writer) writeData(ctx context.Context, title string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		_, err := w.service.Spreadsheets.Values.Update(w.spreadsheetID, a1(title, fmt.Sprintf("A%d", i+1)), valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// applyFormatting bolds header rows, formats money columns and freezes the header.
func (w *Writer) applyFormatting(ctx context.Context, sheetID int64, tab Tab) error {
	totalRows := int64(len(tab.Rows))
	requests := make([]*sheets.Request, 0, len(tab.HeaderRows)+len(tab.CurrencyColumns)+1)

	for _, row := range tab.HeaderRows {
		requests = append(requests, &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:       sheetID,
					StartRowIndex: row,
					EndRowIndex:   row + 1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		})
	}

	for _, col := range tab.CurrencyColumns {
		requests = append(requests, &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      totalRows,
					StartColumnIndex: col,
					EndColumnIndex:   col + 1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "NUMBER",
							Pattern: w.config.CurrencyPattern,
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		})
	}

	requests = append(requests, &sheets.Request{
		AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "COLUMNS",
				StartIndex: 0,
				EndIndex:   8,
			},
		},
	})

	_, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
