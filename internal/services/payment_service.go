// Package services orchestrates ledger operations with event publishing.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"aptledger/internal/amqp"
	"aptledger/internal/core"
	"aptledger/internal/ledger"
)

// PaymentService runs payment operations through the ledger and then
// publishes the result as an event. Publishing is best-effort: a broker
// failure is logged and never fails the request, the ledger write is
// the source of truth.
type PaymentService struct {
	ledger     *ledger.Ledger
	amqpClient *amqp.Client
}

func NewPaymentService(l *ledger.Ledger, amqpClient *amqp.Client) *PaymentService {
	return &PaymentService{
		ledger:     l,
		amqpClient: amqpClient,
	}
}

// RecordPayment records the payment in the ledger and publishes a
// payment event.
func (s *PaymentService) RecordPayment(ctx context.Context, in core.InsertPayment) (core.Payment, error) {
	payment, err := s.ledger.RecordPayment(ctx, in)
	if err != nil {
		return core.Payment{}, err
	}

	s.publish(ctx, payment)
	return payment, nil
}

// UpdatePayment applies the patch through the ledger and publishes the
// updated payment.
func (s *PaymentService) UpdatePayment(ctx context.Context, id int64, patch core.PaymentPatch) (core.Payment, error) {
	payment, err := s.ledger.UpdatePayment(ctx, id, patch)
	if err != nil {
		return core.Payment{}, err
	}

	s.publish(ctx, payment)
	return payment, nil
}

func (s *PaymentService) publish(ctx context.Context, p core.Payment) {
	if s.amqpClient == nil {
		return
	}
	msg := amqp.NewPaymentRecordedMessage(p)
	if err := s.amqpClient.PublishPaymentRecorded(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish payment event",
			"payment_id", p.ID, "error", err)
	}
}

// Close closes the AMQP connection if one is attached.
func (s *PaymentService) Close() error {
	if s.amqpClient == nil {
		return nil
	}
	if err := s.amqpClient.Close(); err != nil {
		return fmt.Errorf("close payment service: %w", err)
	}
	return nil
}
