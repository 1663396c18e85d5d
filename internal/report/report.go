// Package report derives dashboard and yearly report figures by full
// rescans of the entity store. Nothing here is cached or incremental;
// callers that want caching wrap these calls at the HTTP layer.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"aptledger/internal/core"
	"aptledger/internal/store"
)

const (
	maxPendingPayments = 5
	maxRecentExpenses  = 4
)

// Engine computes aggregates over the store. It holds no state of its
// own, so a single instance is safe for concurrent use.
type Engine struct {
	store store.Store
}

func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// DashboardStats scans payments, expenses and rooms and returns the
// point-in-time summary shown on the dashboard. Collected money counts
// only completed payments; pending dues come from room balances, not
// from payment records.
func (e *Engine) DashboardStats(ctx context.Context) (core.DashboardStats, error) {
	payments, err := e.store.ListPayments(ctx)
	if err != nil {
		return core.DashboardStats{}, fmt.Errorf("list payments: %w", err)
	}
	expenses, err := e.store.ListExpenses(ctx)
	if err != nil {
		return core.DashboardStats{}, fmt.Errorf("list expenses: %w", err)
	}
	rooms, err := e.store.ListRooms(ctx)
	if err != nil {
		return core.DashboardStats{}, fmt.Errorf("list rooms: %w", err)
	}

	var stats core.DashboardStats
	for _, p := range payments {
		if p.Status == core.StatusCompleted {
			stats.TotalCollected = stats.TotalCollected.Add(p.Amount)
		}
	}
	for _, x := range expenses {
		stats.TotalExpenses = stats.TotalExpenses.Add(x.Amount)
	}
	// Balance may go negative when spending outpaces collection.
	stats.CurrentBalance = core.Money{Paise: stats.TotalCollected.Paise - stats.TotalExpenses.Paise}

	now := time.Now()
	pending := make([]core.PendingPayment, 0, len(rooms))
	for _, r := range rooms {
		if r.TotalDue.IsZero() {
			continue
		}
		stats.PendingDues = stats.PendingDues.Add(r.TotalDue)
		stats.PendingRooms++

		status := core.StatusPending
		if r.DueDate.Before(now) {
			status = "overdue"
		}
		pending = append(pending, core.PendingPayment{
			RoomNumber: r.RoomNumber,
			Resident:   r.ResidentName,
			Amount:     r.TotalDue,
			DueDate:    r.DueDate,
			Status:     status,
		})
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].DueDate.Before(pending[j].DueDate)
	})
	if len(pending) > maxPendingPayments {
		pending = pending[:maxPendingPayments]
	}
	stats.PendingPayments = pending

	recent := make([]core.Expense, len(expenses))
	copy(recent, expenses)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > maxRecentExpenses {
		recent = recent[:maxRecentExpenses]
	}
	stats.RecentExpenses = make([]core.ExpenseSummary, 0, len(recent))
	for _, x := range recent {
		stats.RecentExpenses = append(stats.RecentExpenses, core.ExpenseSummary{
			ID:       x.ID,
			Title:    x.Title,
			Amount:   x.Amount,
			Category: x.Category,
			Date:     x.Date,
		})
	}

	return stats, nil
}

// MonthlySeries buckets one calendar year into twelve income/expense
// rows. Income is read from the rooms' embedded payment histories by
// payment date, counting entries of every status; expenses bucket by
// the expense date.
func (e *Engine) MonthlySeries(ctx context.Context, year int) ([]core.MonthlyReportRow, error) {
	rooms, err := e.store.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	expenses, err := e.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	rows := make([]core.MonthlyReportRow, 12)
	for i := range rows {
		rows[i].Month = i + 1
	}
	for _, r := range rooms {
		for _, rec := range r.PaymentsHistory {
			if rec.Date.Year() != year {
				continue
			}
			m := int(rec.Date.Month()) - 1
			rows[m].Income = rows[m].Income.Add(rec.Amount)
		}
	}
	for _, x := range expenses {
		if x.Date.Year() != year {
			continue
		}
		m := int(x.Date.Month()) - 1
		rows[m].Expenses = rows[m].Expenses.Add(x.Amount)
	}
	return rows, nil
}

// CategoryBreakdown sums the year's expenses per recognized category,
// largest first. Unrecognized categories fold into "others"; categories
// with no spend are omitted.
func (e *Engine) CategoryBreakdown(ctx context.Context, year int) ([]core.CategoryTotal, error) {
	expenses, err := e.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	byCategory := make(map[string]core.Money)
	for _, x := range expenses {
		if x.Date.Year() != year {
			continue
		}
		cat := core.NormalizeCategory(x.Category)
		byCategory[cat] = byCategory[cat].Add(x.Amount)
	}

	totals := make([]core.CategoryTotal, 0, len(byCategory))
	for cat, sum := range byCategory {
		totals = append(totals, core.CategoryTotal{Category: cat, Total: sum})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total.Paise != totals[j].Total.Paise {
			return totals[i].Total.Paise > totals[j].Total.Paise
		}
		return totals[i].Category < totals[j].Category
	})
	return totals, nil
}
