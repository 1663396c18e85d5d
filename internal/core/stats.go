package core

import "time"

// PendingPayment is a dashboard projection of a room that still owes
// maintenance fees. Status is "overdue" when the due date has passed,
// otherwise "pending".
type PendingPayment struct {
	RoomNumber string    `json:"roomNumber"`
	Resident   string    `json:"resident"`
	Amount     Money     `json:"amount"`
	DueDate    time.Time `json:"dueDate"`
	Status     string    `json:"status"`
}

// ExpenseSummary is the compact expense projection shown on the
// dashboard's recent-expenses panel.
type ExpenseSummary struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Amount   Money     `json:"amount"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
}

// DashboardStats is the point-in-time financial summary derived by a
// full rescan of payments, rooms and expenses.
type DashboardStats struct {
	TotalCollected  Money            `json:"totalCollected"`
	TotalExpenses   Money            `json:"totalExpenses"`
	CurrentBalance  Money            `json:"currentBalance"`
	PendingDues     Money            `json:"pendingDues"`
	PendingRooms    int              `json:"pendingRooms"`
	PendingPayments []PendingPayment `json:"pendingPayments"`
	RecentExpenses  []ExpenseSummary `json:"recentExpenses"`
}

// MonthlyReportRow is one month's bucket in the yearly income/expense
// series. Month is 1-12.
type MonthlyReportRow struct {
	Month    int   `json:"month"`
	Income   Money `json:"income"`
	Expenses Money `json:"expenses"`
}

// CategoryTotal is one category's expense sum for a report year.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    Money  `json:"total"`
}

// Recognized expense categories used by the UI for icon/colour mapping.
// Category remains free-form on expense records themselves.
var ExpenseCategories = []string{
	"electricity", "water", "maintenance", "security", "cleaning", "repairs", "others",
}

// NormalizeCategory maps a free-form expense category onto the
// recognized set, folding anything unknown into "others".
func NormalizeCategory(category string) string {
	for _, c := range ExpenseCategories {
		if category == c {
			return c
		}
	}
	return "others"
}
