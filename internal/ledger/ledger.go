// Package ledger is the only place room balances change. It applies
// payment create/update operations against the entity store while
// keeping each room's totalDue, embedded payment history and
// lastPaymentDate consistent with the payment records.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"aptledger/internal/core"
	"aptledger/internal/store"
)

// ErrRoomNotFound is returned in strict mode when a payment references a
// room number no room carries.
var ErrRoomNotFound = errors.New("room not found for payment")

// Ledger serializes balance mutations per room number. Two payments for
// the same room never interleave their find-room/append-history/adjust-due
// steps; payments for different rooms proceed concurrently.
type Ledger struct {
	store store.Store
	locks *keyedMutex

	// strictRooms turns the silent balance no-op on an unknown room
	// number into a rejection of the whole operation.
	strictRooms bool
}

func New(s store.Store, strictRooms bool) *Ledger {
	return &Ledger{
		store:       s,
		locks:       newKeyedMutex(),
		strictRooms: strictRooms,
	}
}

// RecordPayment creates a payment and, when its room exists, appends a
// history entry, stamps lastPaymentDate and, for completed payments,
// reduces the room's totalDue by the amount (clamped at zero).
//
// When no room matches the payment's room number the payment is still
// created and the balance update is skipped, unless strict mode is on,
// in which case the operation fails before anything is written.
func (l *Ledger) RecordPayment(ctx context.Context, in core.InsertPayment) (core.Payment, error) {
	if in.Status == "" {
		in.Status = core.StatusPending
	}
	if err := in.Validate(); err != nil {
		return core.Payment{}, err
	}

	unlock := l.locks.lock(in.RoomNumber)
	defer unlock()

	room, err := l.store.GetRoomByNumber(ctx, in.RoomNumber)
	roomMissing := errors.Is(err, store.ErrNotFound)
	if err != nil && !roomMissing {
		return core.Payment{}, fmt.Errorf("lookup room %s: %w", in.RoomNumber, err)
	}
	if roomMissing && l.strictRooms {
		return core.Payment{}, fmt.Errorf("%w: %s", ErrRoomNotFound, in.RoomNumber)
	}

	payment, err := l.store.CreatePayment(ctx, in)
	if err != nil {
		return core.Payment{}, fmt.Errorf("create payment: %w", err)
	}

	if roomMissing {
		slog.WarnContext(ctx, "Payment recorded for unknown room, balance unchanged",
			"payment_id", payment.ID,
			"room_number", payment.RoomNumber)
		return payment, nil
	}

	history := append(room.PaymentsHistory, payment.Record())
	date := payment.Date
	patch := core.RoomPatch{
		PaymentsHistory: &history,
		LastPaymentDate: &date,
	}
	if payment.Status == core.StatusCompleted {
		due := room.TotalDue.Sub(payment.Amount)
		patch.TotalDue = &due
	}
	if _, err := l.store.UpdateRoom(ctx, room.ID, patch); err != nil {
		return core.Payment{}, fmt.Errorf("update room %s: %w", room.RoomNumber, err)
	}

	slog.InfoContext(ctx, "Payment recorded",
		"payment_id", payment.ID,
		"room_number", payment.RoomNumber,
		"amount_paise", payment.Amount.Paise,
		"status", payment.Status)

	return payment, nil
}

// UpdatePayment shallow-merges the patch into an existing payment. A
// status flip from non-completed to completed reduces the room's
// totalDue by the payment's pre-update amount, exactly once; a payment
// that is already completed never adjusts the balance again. The update
// path touches only totalDue: history entries and lastPaymentDate are
// written at record time and stay as submitted.
func (l *Ledger) UpdatePayment(ctx context.Context, id int64, patch core.PaymentPatch) (core.Payment, error) {
	existing, err := l.store.GetPayment(ctx, id)
	if err != nil {
		return core.Payment{}, err
	}

	// The balance adjustment targets the room the payment referenced
	// before the merge, so lock that room number.
	unlock := l.locks.lock(existing.RoomNumber)
	defer unlock()

	// Re-read under the lock: a concurrent update may have completed
	// the payment already.
	existing, err = l.store.GetPayment(ctx, id)
	if err != nil {
		return core.Payment{}, err
	}

	updated, err := l.store.UpdatePayment(ctx, id, patch)
	if err != nil {
		return core.Payment{}, fmt.Errorf("update payment %d: %w", id, err)
	}

	if existing.Status == core.StatusCompleted || updated.Status != core.StatusCompleted {
		return updated, nil
	}

	room, err := l.store.GetRoomByNumber(ctx, existing.RoomNumber)
	if errors.Is(err, store.ErrNotFound) {
		slog.WarnContext(ctx, "Completed payment references unknown room, balance unchanged",
			"payment_id", updated.ID,
			"room_number", existing.RoomNumber)
		return updated, nil
	}
	if err != nil {
		return core.Payment{}, fmt.Errorf("lookup room %s: %w", existing.RoomNumber, err)
	}

	due := room.TotalDue.Sub(existing.Amount)
	if _, err := l.store.UpdateRoom(ctx, room.ID, core.RoomPatch{TotalDue: &due}); err != nil {
		return core.Payment{}, fmt.Errorf("update room %s: %w", room.RoomNumber, err)
	}

	slog.InfoContext(ctx, "Payment completed, balance reduced",
		"payment_id", updated.ID,
		"room_number", room.RoomNumber,
		"amount_paise", existing.Amount.Paise,
		"total_due_paise", due.Paise)

	return updated, nil
}
