// Package google appends exported payment rows to a Google Sheets
// ledger using service-account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"aptledger/internal/amqp"
	ports "aptledger/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
}

var _ ports.LedgerWriter = (*Client)(nil)

// Options carries the spreadsheet target and the service-account
// credentials, usually copied from config.Config. ServiceAccountJSON
// takes precedence over ServiceAccountFile.
type Options struct {
	SpreadsheetID      string
	LedgerSheet        string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// New creates a Sheets client for the configured spreadsheet.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	ledgerSheet := strings.TrimSpace(opts.LedgerSheet)
	if ledgerSheet == "" {
		ledgerSheet = "Ledger"
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		ledgerSheet:   ledgerSheet,
	}, nil
}

func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	var credentialsJSON []byte
	var err error

	switch {
	case strings.TrimSpace(opts.ServiceAccountJSON) != "":
		credentialsJSON = []byte(opts.ServiceAccountJSON)
	case strings.TrimSpace(opts.ServiceAccountFile) != "":
		credentialsJSON, err = os.ReadFile(strings.TrimSpace(opts.ServiceAccountFile))
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// AppendPayment appends one row per payment event:
// date, room number, amount in rupees, method, status, payment id, event id.
func (c *Client) AppendPayment(ctx context.Context, msg *amqp.PaymentRecordedMessage) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rupees := float64(msg.AmountPaise) / 100.0
	row := []any{
		msg.Date.Format("2006-01-02"),
		msg.RoomNumber,
		rupees,
		msg.Method,
		msg.Status,
		msg.PaymentID,
		msg.EventID,
	}

	rng := fmt.Sprintf("%s!A:G", c.ledgerSheet)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.ledgerSheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Appended payment row to ledger sheet",
		"sheet", c.ledgerSheet,
		"range", ref,
		"payment_id", msg.PaymentID)

	return ref, nil
}

// Health pings the spreadsheet metadata endpoint with a short timeout.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("spreadsheet health check: %w", err)
	}
	return nil
}
