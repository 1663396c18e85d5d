// Package worker exports payment events to the external ledger sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"aptledger/internal/amqp"
	"aptledger/internal/sheets"
)

// ExportWorker consumes payment events and appends each one as a row to
// the configured ledger writer. The message carries the full payment
// snapshot, so export needs no read path back into the store.
type ExportWorker struct {
	writer sheets.LedgerWriter
}

func NewExportWorker(writer sheets.LedgerWriter) *ExportWorker {
	return &ExportWorker{writer: writer}
}

// HandlePaymentEvent appends one payment row. Returning an error makes
// the consumer requeue the delivery.
func (w *ExportWorker) HandlePaymentEvent(ctx context.Context, msg *amqp.PaymentRecordedMessage) error {
	ref, err := w.writer.AppendPayment(ctx, msg)
	if err != nil {
		return fmt.Errorf("append payment to ledger: %w", err)
	}

	slog.InfoContext(ctx, "Exported payment event",
		"event_id", msg.EventID,
		"payment_id", msg.PaymentID,
		"room_number", msg.RoomNumber,
		"sheets_ref", ref)

	return nil
}

// Run consumes payment events until the context is cancelled.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumePaymentRecorded(ctx, func(msg *amqp.PaymentRecordedMessage) error {
		return w.HandlePaymentEvent(ctx, msg)
	})
}
