package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"aptledger/internal/core"
	"aptledger/internal/store"
	"aptledger/internal/store/memory"
)

func newTestLedger(t *testing.T, strict bool) (*Ledger, *memory.Store) {
	t.Helper()
	s := memory.New()
	return New(s, strict), s
}

func seedRoom(t *testing.T, s *memory.Store, number string, duePaise int64) core.Room {
	t.Helper()
	room, err := s.CreateRoom(context.Background(), core.InsertRoom{
		RoomNumber: number,
		TotalDue:   core.Money{Paise: duePaise},
		DueDate:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateRoom(%s) error = %v", number, err)
	}
	return room
}

func insertPayment(room string, paise int64, status string) core.InsertPayment {
	return core.InsertPayment{
		RoomNumber: room,
		Amount:     core.Money{Paise: paise},
		Date:       time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Method:     core.MethodUPI,
		Status:     status,
	}
}

func TestLedger_RecordPayment_Completed(t *testing.T) {
	ctx := context.Background()
	l, s := newTestLedger(t, false)
	room := seedRoom(t, s, "101", 150000)

	payment, err := l.RecordPayment(ctx, insertPayment("101", 100000, core.StatusCompleted))
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	got, err := s.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetRoom() error = %v", err)
	}
	if got.TotalDue.Paise != 50000 {
		t.Errorf("TotalDue = %d, want 50000", got.TotalDue.Paise)
	}
	if len(got.PaymentsHistory) != 1 || got.PaymentsHistory[0].ID != payment.ID {
		t.Errorf("PaymentsHistory = %+v, want one entry for payment %d", got.PaymentsHistory, payment.ID)
	}
	if got.LastPaymentDate == nil || !got.LastPaymentDate.Equal(payment.Date) {
		t.Errorf("LastPaymentDate = %v, want %v", got.LastPaymentDate, payment.Date)
	}
}

func TestLedger_RecordPayment_PendingKeepsBalance(t *testing.T) {
	ctx := context.Background()
	l, s := newTestLedger(t, false)
	room := seedRoom(t, s, "101", 150000)

	if _, err := l.RecordPayment(ctx, insertPayment("101", 100000, core.StatusPending)); err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	got, _ := s.GetRoom(ctx, room.ID)
	if got.TotalDue.Paise != 150000 {
		t.Errorf("TotalDue = %d, want 150000 (pending must not reduce)", got.TotalDue.Paise)
	}
	if len(got.PaymentsHistory) != 1 {
		t.Errorf("PaymentsHistory len = %d, want 1 (pending still recorded)", len(got.PaymentsHistory))
	}
	if got.LastPaymentDate == nil {
		t.Error("LastPaymentDate not stamped for pending payment")
	}
}

func TestLedger_RecordPayment_DefaultsToPending(t *testing.T) {
	ctx := context.Background()
	l, s := newTestLedger(t, false)
	room := seedRoom(t, s, "101", 150000)

	payment, err := l.RecordPayment(ctx, insertPayment("101", 100000, ""))
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if payment.Status != core.StatusPending {
		t.Errorf("Status = %q, want pending", payment.Status)
	}

	got, _ := s.GetRoom(ctx, room.ID)
	if got.TotalDue.Paise != 150000 {
		t.Errorf("TotalDue = %d, want 150000", got.TotalDue.Paise)
	}
}

func TestLedger_RecordPayment_OverpaymentClampsAtZero(t *testing.T) {
	ctx := context.Background()
	l, s := newTestLedger(t, false)
	room := seedRoom(t, s, "101", 50000)

	if _, err := l.RecordPayment(ctx, insertPayment("101", 150000, core.StatusCompleted)); err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	got, _ := s.GetRoom(ctx, room.ID)
	if got.TotalDue.Paise != 0 {
		t.Errorf("TotalDue = %d, want 0 (never negative)", got.TotalDue.Paise)
	}
}

func TestLedger_RecordPayment_UnknownRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("lenient mode creates payment, skips balance", func(t *testing.T) {
		l, s := newTestLedger(t, false)

		payment, err := l.RecordPayment(ctx, insertPayment("404", 100000, core.StatusCompleted))
		if err != nil {
			t.Fatalf("RecordPayment() error = %v", err)
		}
		if payment.ID == 0 {
			t.Error("RecordPayment() did not create the payment")
		}
		payments, _ := s.ListPayments(ctx)
		if len(payments) != 1 {
			t.Errorf("ListPayments() len = %d, want 1", len(payments))
		}
	})

	t.Run("strict mode rejects before writing", func(t *testing.T) {
		l, s := newTestLedger(t, true)

		_, err := l.RecordPayment(ctx, insertPayment("404", 100000, core.StatusCompleted))
		if !errors.Is(err, ErrRoomNotFound) {
			t.Fatalf("RecordPayment() error = %v, want ErrRoomNotFound", err)
		}
		payments, _ := s.ListPayments(ctx)
		if len(payments) != 0 {
			t.Errorf("ListPayments() len = %d, want 0 (nothing written)", len(payments))
		}
	})
}

func TestLedger_RecordPayment_InvalidInput(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, false)

	_, err := l.RecordPayment(ctx, insertPayment("101", 0, core.StatusCompleted))
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("RecordPayment() error = %v, want ErrInvalidAmount", err)
	}
}

func TestLedger_UpdatePayment_CompletionReducesBalanceOnce(t *testing.T) {
	ctx := context.Background()
	l, s := newTestLedger(t, false)
	room := seedRoom(t, s, "101", 150000)

	payment, err := l.RecordPayment(ctx, insertPayment("101", 100000, core.StatusPending))
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	completed := core.StatusCompleted
	if _, err := l.UpdatePayment(ctx, payment.ID, core.PaymentPatch{Status: &completed}); err != nil {
		t.Fatalf("UpdatePayment() error = %v", err)
	}

	got, _ := s.GetRoom(ctx, room.ID)
	if got.TotalDue.Paise != 50000 {
		t.Errorf("TotalDue = %d, want 50000", got.TotalDue.Paise)
	}

	// Completing an already-completed payment must not reduce again.
	if _, err := l.UpdatePayment(ctx, payment.ID, core.PaymentPatch{Status: &completed}); err != nil {
		t.Fatalf("UpdatePayment() second error = %v", err)
	}
	got, _ = s.GetRoom(ctx, room.ID)
	if got.TotalDue.Paise != 50000 {
		t.Errorf("TotalDue = %d after repeat completion, want 50000", got.TotalDue.Paise)
	}
}

func TestLedger_UpdatePayment_UsesPreUpdateAmountAndRoom(t *testing.T) {
	ctx := context.Background()
	l, s := newTestLedger(t, false)
	roomA := seedRoom(t, s, "101", 150000)
	roomB := seedRoom(t, s, "102", 150000)

	payment, err := l.RecordPayment(ctx, insertPayment("101", 100000, core.StatusPending))
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	// Patch flips status and changes amount and room in the same call.
	// The balance adjustment still targets the old room with the old
	// amount.
	completed := core.StatusCompleted
	newAmount := core.Money{Paise: 999900}
	newRoom := "102"
	if _, err := l.UpdatePayment(ctx, payment.ID, core.PaymentPatch{
		Status:     &completed,
		Amount:     &newAmount,
		RoomNumber: &newRoom,
	}); err != nil {
		t.Fatalf("UpdatePayment() error = %v", err)
	}

	gotA, _ := s.GetRoom(ctx, roomA.ID)
	if gotA.TotalDue.Paise != 50000 {
		t.Errorf("room 101 TotalDue = %d, want 50000 (old amount applied)", gotA.TotalDue.Paise)
	}
	gotB, _ := s.GetRoom(ctx, roomB.ID)
	if gotB.TotalDue.Paise != 150000 {
		t.Errorf("room 102 TotalDue = %d, want 150000 (untouched)", gotB.TotalDue.Paise)
	}
}

func TestLedger_UpdatePayment_NeverTouchesHistory(t *testing.T) {
	ctx := context.Background()
	l, s := newTestLedger(t, false)
	room := seedRoom(t, s, "101", 150000)

	payment, err := l.RecordPayment(ctx, insertPayment("101", 100000, core.StatusPending))
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	before, _ := s.GetRoom(ctx, room.ID)

	completed := core.StatusCompleted
	newAmount := core.Money{Paise: 50000}
	if _, err := l.UpdatePayment(ctx, payment.ID, core.PaymentPatch{Status: &completed, Amount: &newAmount}); err != nil {
		t.Fatalf("UpdatePayment() error = %v", err)
	}

	after, _ := s.GetRoom(ctx, room.ID)
	if len(after.PaymentsHistory) != len(before.PaymentsHistory) {
		t.Fatalf("history length changed: %d -> %d", len(before.PaymentsHistory), len(after.PaymentsHistory))
	}
	if after.PaymentsHistory[0].Amount.Paise != 100000 || after.PaymentsHistory[0].Status != core.StatusPending {
		t.Errorf("history entry rewritten: %+v", after.PaymentsHistory[0])
	}
	if !after.LastPaymentDate.Equal(*before.LastPaymentDate) {
		t.Errorf("LastPaymentDate changed: %v -> %v", before.LastPaymentDate, after.LastPaymentDate)
	}
}

func TestLedger_UpdatePayment_UnknownID(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, false)

	completed := core.StatusCompleted
	if _, err := l.UpdatePayment(ctx, 999, core.PaymentPatch{Status: &completed}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdatePayment(999) error = %v, want ErrNotFound", err)
	}
}

func TestLedger_ConcurrentPaymentsSameRoom(t *testing.T) {
	ctx := context.Background()
	l, s := newTestLedger(t, false)
	room := seedRoom(t, s, "101", 300000)

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := l.RecordPayment(ctx, insertPayment("101", 30000, core.StatusCompleted)); err != nil {
				t.Errorf("RecordPayment() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := s.GetRoom(ctx, room.ID)
	if got.TotalDue.Paise != 0 {
		t.Errorf("TotalDue = %d, want 0 after ten 300-rupee payments", got.TotalDue.Paise)
	}
	if len(got.PaymentsHistory) != workers {
		t.Errorf("PaymentsHistory len = %d, want %d (no lost appends)", len(got.PaymentsHistory), workers)
	}
}

func TestLedger_ConcurrentCompletionSingleReduction(t *testing.T) {
	ctx := context.Background()
	l, s := newTestLedger(t, false)
	room := seedRoom(t, s, "101", 150000)

	payment, err := l.RecordPayment(ctx, insertPayment("101", 100000, core.StatusPending))
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	completed := core.StatusCompleted
	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := l.UpdatePayment(ctx, payment.ID, core.PaymentPatch{Status: &completed}); err != nil {
				t.Errorf("UpdatePayment() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := s.GetRoom(ctx, room.ID)
	if got.TotalDue.Paise != 50000 {
		t.Errorf("TotalDue = %d, want 50000 (exactly one reduction)", got.TotalDue.Paise)
	}
}
