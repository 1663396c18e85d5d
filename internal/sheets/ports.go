// Package sheets defines the outbound port for exporting ledger rows.
package sheets

import (
	"context"

	"aptledger/internal/amqp"
)

// LedgerWriter appends one exported payment row to an external ledger.
type LedgerWriter interface {
	AppendPayment(ctx context.Context, msg *amqp.PaymentRecordedMessage) (rowRef string, err error)
}
