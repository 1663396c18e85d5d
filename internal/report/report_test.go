package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"aptledger/internal/core"
	"aptledger/internal/store/memory"
)

func TestEngine_DashboardStats(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	e := NewEngine(s)

	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	// Two completed payments and one pending; only completed count.
	mustCreatePayment(t, s, "101", 150000, core.StatusCompleted, date)
	mustCreatePayment(t, s, "102", 100000, core.StatusCompleted, date)
	mustCreatePayment(t, s, "201", 999900, core.StatusPending, date)

	mustCreateExpense(t, s, "Water pump repair", 50000, "repairs", date)
	mustCreateExpense(t, s, "Security salary", 120000, "security", date)

	// One settled room, two with dues (one overdue, one upcoming).
	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(14 * 24 * time.Hour)
	mustCreateRoom(t, s, core.InsertRoom{RoomNumber: "101", DueDate: future})
	mustCreateRoom(t, s, core.InsertRoom{RoomNumber: "102", ResidentName: "Rahul Sharma", TotalDue: core.Money{Paise: 150000}, DueDate: past})
	mustCreateRoom(t, s, core.InsertRoom{RoomNumber: "201", ResidentName: "Priya Patel", TotalDue: core.Money{Paise: 300000}, DueDate: future})

	stats, err := e.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("DashboardStats() error = %v", err)
	}

	if stats.TotalCollected.Paise != 250000 {
		t.Errorf("TotalCollected = %d, want 250000 (completed only)", stats.TotalCollected.Paise)
	}
	if stats.TotalExpenses.Paise != 170000 {
		t.Errorf("TotalExpenses = %d, want 170000", stats.TotalExpenses.Paise)
	}
	if stats.CurrentBalance.Paise != 80000 {
		t.Errorf("CurrentBalance = %d, want 80000", stats.CurrentBalance.Paise)
	}
	if stats.PendingDues.Paise != 450000 {
		t.Errorf("PendingDues = %d, want 450000", stats.PendingDues.Paise)
	}
	if stats.PendingRooms != 2 {
		t.Errorf("PendingRooms = %d, want 2", stats.PendingRooms)
	}

	if len(stats.PendingPayments) != 2 {
		t.Fatalf("PendingPayments len = %d, want 2", len(stats.PendingPayments))
	}
	// Sorted by due date: the overdue room first.
	if stats.PendingPayments[0].RoomNumber != "102" || stats.PendingPayments[0].Status != "overdue" {
		t.Errorf("PendingPayments[0] = %+v, want overdue room 102", stats.PendingPayments[0])
	}
	if stats.PendingPayments[1].RoomNumber != "201" || stats.PendingPayments[1].Status != core.StatusPending {
		t.Errorf("PendingPayments[1] = %+v, want pending room 201", stats.PendingPayments[1])
	}

	if len(stats.RecentExpenses) != 2 {
		t.Fatalf("RecentExpenses len = %d, want 2", len(stats.RecentExpenses))
	}
}

func TestEngine_DashboardStats_NegativeBalance(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	e := NewEngine(s)
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	mustCreatePayment(t, s, "101", 50000, core.StatusCompleted, date)
	mustCreateExpense(t, s, "Lift overhaul", 250000, "maintenance", date)

	stats, err := e.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("DashboardStats() error = %v", err)
	}
	if stats.CurrentBalance.Paise != -200000 {
		t.Errorf("CurrentBalance = %d, want -200000 (balance may go negative)", stats.CurrentBalance.Paise)
	}
}

func TestEngine_DashboardStats_Truncation(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	e := NewEngine(s)

	base := time.Now().Add(24 * time.Hour)
	for i := 0; i < 8; i++ {
		mustCreateRoom(t, s, core.InsertRoom{
			RoomNumber: fmt.Sprintf("%d", 100+i),
			TotalDue:   core.Money{Paise: 150000},
			// Later rooms have earlier due dates, to prove sorting.
			DueDate: base.Add(-time.Duration(i) * time.Hour),
		})
	}
	for i := 0; i < 6; i++ {
		mustCreateExpense(t, s, fmt.Sprintf("Expense %d", i), 10000, "others", time.Date(2024, 3, 1+i, 0, 0, 0, 0, time.UTC))
	}

	stats, err := e.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("DashboardStats() error = %v", err)
	}

	if len(stats.PendingPayments) != 5 {
		t.Fatalf("PendingPayments len = %d, want 5", len(stats.PendingPayments))
	}
	// Earliest due dates first: rooms created last have earliest dates.
	if stats.PendingPayments[0].RoomNumber != "107" {
		t.Errorf("PendingPayments[0].RoomNumber = %s, want 107", stats.PendingPayments[0].RoomNumber)
	}
	// All eight rooms still count toward the totals.
	if stats.PendingRooms != 8 {
		t.Errorf("PendingRooms = %d, want 8", stats.PendingRooms)
	}
	if stats.PendingDues.Paise != 8*150000 {
		t.Errorf("PendingDues = %d, want %d", stats.PendingDues.Paise, 8*150000)
	}

	if len(stats.RecentExpenses) != 4 {
		t.Fatalf("RecentExpenses len = %d, want 4", len(stats.RecentExpenses))
	}
	// Most recently created first.
	if stats.RecentExpenses[0].Title != "Expense 5" {
		t.Errorf("RecentExpenses[0].Title = %s, want Expense 5", stats.RecentExpenses[0].Title)
	}
}

func TestEngine_MonthlySeries(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	e := NewEngine(s)

	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	otherYear := time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC)

	// Income comes from the rooms' embedded histories, every status.
	hist := []core.PaymentRecord{
		{ID: 1, Amount: core.Money{Paise: 150000}, Date: jan, Method: core.MethodUPI, Status: core.StatusCompleted},
		{ID: 2, Amount: core.Money{Paise: 150000}, Date: mar, Method: core.MethodCash, Status: core.StatusPending},
		{ID: 3, Amount: core.Money{Paise: 150000}, Date: otherYear, Method: core.MethodUPI, Status: core.StatusCompleted},
	}
	room := mustCreateRoom(t, s, core.InsertRoom{RoomNumber: "101", DueDate: jan})
	if _, err := s.UpdateRoom(ctx, room.ID, core.RoomPatch{PaymentsHistory: &hist}); err != nil {
		t.Fatalf("UpdateRoom() error = %v", err)
	}

	// A loose payment record without a room history entry must not count.
	mustCreatePayment(t, s, "999", 500000, core.StatusCompleted, jan)

	mustCreateExpense(t, s, "March cleaning", 40000, "cleaning", mar)
	mustCreateExpense(t, s, "Old bill", 40000, "cleaning", otherYear)

	rows, err := e.MonthlySeries(ctx, 2024)
	if err != nil {
		t.Fatalf("MonthlySeries() error = %v", err)
	}
	if len(rows) != 12 {
		t.Fatalf("MonthlySeries() len = %d, want 12", len(rows))
	}
	for i, row := range rows {
		if row.Month != i+1 {
			t.Errorf("rows[%d].Month = %d, want %d", i, row.Month, i+1)
		}
	}

	if rows[0].Income.Paise != 150000 {
		t.Errorf("January income = %d, want 150000", rows[0].Income.Paise)
	}
	if rows[2].Income.Paise != 150000 {
		t.Errorf("March income = %d, want 150000 (pending entries count)", rows[2].Income.Paise)
	}
	if rows[2].Expenses.Paise != 40000 {
		t.Errorf("March expenses = %d, want 40000", rows[2].Expenses.Paise)
	}
	if rows[1].Income.Paise != 0 || rows[1].Expenses.Paise != 0 {
		t.Errorf("February should be empty: %+v", rows[1])
	}
}

func TestEngine_CategoryBreakdown(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	e := NewEngine(s)

	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mustCreateExpense(t, s, "Guard salary", 120000, "security", d)
	mustCreateExpense(t, s, "Pump repair", 60000, "repairs", d)
	mustCreateExpense(t, s, "Gate repair", 60000, "repairs", d)
	mustCreateExpense(t, s, "Stair lights", 120000, "electricity", d)
	mustCreateExpense(t, s, "Old year", 999900, "water", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))

	totals, err := e.CategoryBreakdown(ctx, 2024)
	if err != nil {
		t.Fatalf("CategoryBreakdown() error = %v", err)
	}
	if len(totals) != 3 {
		t.Fatalf("CategoryBreakdown() len = %d, want 3", len(totals))
	}

	// Largest first; equal sums break ties alphabetically.
	if totals[0].Total.Paise != 120000 {
		t.Errorf("totals[0] = %+v, want total 120000", totals[0])
	}
	if totals[0].Category != "electricity" || totals[1].Category != "repairs" || totals[2].Category != "security" {
		t.Errorf("order = [%s %s %s], want [electricity repairs security]",
			totals[0].Category, totals[1].Category, totals[2].Category)
	}
	if totals[1].Total.Paise != 120000 || totals[2].Total.Paise != 120000 {
		t.Errorf("sums = %+v", totals)
	}
}

func TestEngine_CategoryBreakdown_UnknownFoldsIntoOthers(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	e := NewEngine(s)

	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mustCreateExpense(t, s, "Diwali decoration", 50000, "festival", d)
	mustCreateExpense(t, s, "Society picnic", 30000, "recreation", d)
	mustCreateExpense(t, s, "Water tanker", 20000, "water", d)

	totals, err := e.CategoryBreakdown(ctx, 2024)
	if err != nil {
		t.Fatalf("CategoryBreakdown() error = %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("CategoryBreakdown() len = %d, want 2", len(totals))
	}
	if totals[0].Category != "others" || totals[0].Total.Paise != 80000 {
		t.Errorf("totals[0] = %+v, want others with 80000", totals[0])
	}
	if totals[1].Category != "water" || totals[1].Total.Paise != 20000 {
		t.Errorf("totals[1] = %+v, want water with 20000", totals[1])
	}
}

func mustCreateRoom(t *testing.T, s *memory.Store, in core.InsertRoom) core.Room {
	t.Helper()
	room, err := s.CreateRoom(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateRoom(%s) error = %v", in.RoomNumber, err)
	}
	return room
}

func mustCreatePayment(t *testing.T, s *memory.Store, room string, paise int64, status string, date time.Time) core.Payment {
	t.Helper()
	p, err := s.CreatePayment(context.Background(), core.InsertPayment{
		RoomNumber: room,
		Amount:     core.Money{Paise: paise},
		Date:       date,
		Method:     core.MethodUPI,
		Status:     status,
	})
	if err != nil {
		t.Fatalf("CreatePayment() error = %v", err)
	}
	return p
}

func mustCreateExpense(t *testing.T, s *memory.Store, title string, paise int64, category string, date time.Time) core.Expense {
	t.Helper()
	e, err := s.CreateExpense(context.Background(), core.InsertExpense{
		Title:    title,
		Amount:   core.Money{Paise: paise},
		Category: category,
		Date:     date,
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	return e
}
