// Package storage is the SQLite-backed entity store. Money is stored as
// integer paise, times as RFC 3339 text, and a room's payment history as
// a JSON array column updated whole on every room write.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aptledger/internal/core"
	"aptledger/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

// --- users ---

const userColumns = `id, username, password, name, email, role, room_number,
	phone_number, preferred_language, upi_id, notifications_enabled, created_at`

func scanUser(row interface{ Scan(...any) error }) (core.User, error) {
	var (
		u         core.User
		notify    int64
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Name, &u.Email, &u.Role,
		&u.RoomNumber, &u.PhoneNumber, &u.PreferredLanguage, &u.UPIID, &notify, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.NotificationsEnabled = notify != 0
	if u.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.User{}, err
	}
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	// username column is COLLATE NOCASE, so = compares case-insensitively.
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []core.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, in core.InsertUser) (core.User, error) {
	if err := in.Validate(); err != nil {
		return core.User{}, err
	}
	now := time.Now().UTC()
	notify := 0
	if in.NotificationsEnabled {
		notify = 1
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, password, name, email, role, room_number,
			phone_number, preferred_language, upi_id, notifications_enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Username, in.Password, in.Name, in.Email, in.Role, in.RoomNumber,
		in.PhoneNumber, in.PreferredLanguage, in.UPIID, notify, encodeTime(now))
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}
	return r.GetUser(ctx, id)
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, id int64, patch core.UserPatch) (core.User, error) {
	existing, err := r.GetUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	u := patch.Apply(existing)
	notify := 0
	if u.NotificationsEnabled {
		notify = 1
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE users SET password = ?, name = ?, email = ?, role = ?, room_number = ?,
			phone_number = ?, preferred_language = ?, upi_id = ?, notifications_enabled = ?
		WHERE id = ?`,
		u.Password, u.Name, u.Email, u.Role, u.RoomNumber,
		u.PhoneNumber, u.PreferredLanguage, u.UPIID, notify, id)
	if err != nil {
		return core.User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	return u, nil
}

// --- rooms ---

const roomColumns = `id, room_number, resident_id, resident_name, contact_number,
	monthly_fee_paise, total_due_paise, due_date, last_payment_date, payments_history, created_at`

func scanRoom(row interface{ Scan(...any) error }) (core.Room, error) {
	var (
		rm                     core.Room
		feePaise, duePaise     int64
		dueDate, createdAt     string
		lastPayment            sql.NullString
		historyJSON            string
	)
	err := row.Scan(&rm.ID, &rm.RoomNumber, &rm.ResidentID, &rm.ResidentName, &rm.ContactNumber,
		&feePaise, &duePaise, &dueDate, &lastPayment, &historyJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Room{}, store.ErrNotFound
	}
	if err != nil {
		return core.Room{}, fmt.Errorf("scan room: %w", err)
	}
	rm.MonthlyFee = core.Money{Paise: feePaise}
	rm.TotalDue = core.Money{Paise: duePaise}
	if rm.DueDate, err = decodeTime(dueDate); err != nil {
		return core.Room{}, err
	}
	if lastPayment.Valid {
		t, err := decodeTime(lastPayment.String)
		if err != nil {
			return core.Room{}, err
		}
		rm.LastPaymentDate = &t
	}
	if rm.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Room{}, err
	}
	rm.PaymentsHistory = []core.PaymentRecord{}
	if err := json.Unmarshal([]byte(historyJSON), &rm.PaymentsHistory); err != nil {
		return core.Room{}, fmt.Errorf("decode payments history for room %d: %w", rm.ID, err)
	}
	return rm, nil
}

func (r *SQLiteRepository) GetRoom(ctx context.Context, id int64) (core.Room, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	return scanRoom(row)
}

func (r *SQLiteRepository) GetRoomByNumber(ctx context.Context, roomNumber string) (core.Room, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE room_number = ? ORDER BY id LIMIT 1`, roomNumber)
	return scanRoom(row)
}

func (r *SQLiteRepository) ListRooms(ctx context.Context) ([]core.Room, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []core.Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	return rooms, rows.Err()
}

func (r *SQLiteRepository) CreateRoom(ctx context.Context, in core.InsertRoom) (core.Room, error) {
	if err := in.Validate(); err != nil {
		return core.Room{}, err
	}
	if in.MonthlyFee.IsZero() {
		in.MonthlyFee = core.DefaultMonthlyFee
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO rooms (room_number, resident_id, resident_name, contact_number,
			monthly_fee_paise, total_due_paise, due_date, last_payment_date, payments_history, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, '[]', ?)`,
		in.RoomNumber, in.ResidentID, in.ResidentName, in.ContactNumber,
		in.MonthlyFee.Paise, in.TotalDue.Paise, encodeTime(in.DueDate), encodeTime(now))
	if err != nil {
		return core.Room{}, fmt.Errorf("insert room: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Room{}, fmt.Errorf("room insert id: %w", err)
	}
	return r.GetRoom(ctx, id)
}

func (r *SQLiteRepository) UpdateRoom(ctx context.Context, id int64, patch core.RoomPatch) (core.Room, error) {
	existing, err := r.GetRoom(ctx, id)
	if err != nil {
		return core.Room{}, err
	}
	rm := patch.Apply(existing)

	historyJSON, err := json.Marshal(rm.PaymentsHistory)
	if err != nil {
		return core.Room{}, fmt.Errorf("encode payments history: %w", err)
	}
	var lastPayment any
	if rm.LastPaymentDate != nil {
		lastPayment = encodeTime(*rm.LastPaymentDate)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE rooms SET resident_id = ?, resident_name = ?, contact_number = ?,
			monthly_fee_paise = ?, total_due_paise = ?, due_date = ?,
			last_payment_date = ?, payments_history = ?
		WHERE id = ?`,
		rm.ResidentID, rm.ResidentName, rm.ContactNumber,
		rm.MonthlyFee.Paise, rm.TotalDue.Paise, encodeTime(rm.DueDate),
		lastPayment, string(historyJSON), id)
	if err != nil {
		return core.Room{}, fmt.Errorf("update room %d: %w", id, err)
	}
	return rm, nil
}

// --- payments ---

const paymentColumns = `id, room_number, amount_paise, date, method, status,
	receipt_url, notes, created_by, created_at`

func scanPayment(row interface{ Scan(...any) error }) (core.Payment, error) {
	var (
		p               core.Payment
		paise           int64
		date, createdAt string
	)
	err := row.Scan(&p.ID, &p.RoomNumber, &paise, &date, &p.Method, &p.Status,
		&p.ReceiptURL, &p.Notes, &p.CreatedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payment{}, store.ErrNotFound
	}
	if err != nil {
		return core.Payment{}, fmt.Errorf("scan payment: %w", err)
	}
	p.Amount = core.Money{Paise: paise}
	if p.Date, err = decodeTime(date); err != nil {
		return core.Payment{}, err
	}
	if p.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Payment{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, id int64) (core.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	return scanPayment(row)
}

func (r *SQLiteRepository) listPayments(ctx context.Context, query string, args ...any) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := []core.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *SQLiteRepository) ListPayments(ctx context.Context) ([]core.Payment, error) {
	return r.listPayments(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY id`)
}

func (r *SQLiteRepository) ListPaymentsByRoom(ctx context.Context, roomNumber string) ([]core.Payment, error) {
	return r.listPayments(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE room_number = ? ORDER BY id`, roomNumber)
}

func (r *SQLiteRepository) CreatePayment(ctx context.Context, in core.InsertPayment) (core.Payment, error) {
	if in.Status == "" {
		in.Status = core.StatusPending
	}
	if err := in.Validate(); err != nil {
		return core.Payment{}, err
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (room_number, amount_paise, date, method, status,
			receipt_url, notes, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.RoomNumber, in.Amount.Paise, encodeTime(in.Date), in.Method, in.Status,
		in.ReceiptURL, in.Notes, in.CreatedBy, encodeTime(now))
	if err != nil {
		return core.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Payment{}, fmt.Errorf("payment insert id: %w", err)
	}
	return r.GetPayment(ctx, id)
}

func (r *SQLiteRepository) UpdatePayment(ctx context.Context, id int64, patch core.PaymentPatch) (core.Payment, error) {
	existing, err := r.GetPayment(ctx, id)
	if err != nil {
		return core.Payment{}, err
	}
	p := patch.Apply(existing)
	_, err = r.db.ExecContext(ctx, `
		UPDATE payments SET room_number = ?, amount_paise = ?, date = ?, method = ?,
			status = ?, receipt_url = ?, notes = ?, created_by = ?
		WHERE id = ?`,
		p.RoomNumber, p.Amount.Paise, encodeTime(p.Date), p.Method,
		p.Status, p.ReceiptURL, p.Notes, p.CreatedBy, id)
	if err != nil {
		return core.Payment{}, fmt.Errorf("update payment %d: %w", id, err)
	}
	return p, nil
}

// --- expenses ---

const expenseColumns = `id, title, amount_paise, category, date, description,
	receipt_url, created_by, created_at`

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var (
		e               core.Expense
		paise           int64
		date, createdAt string
	)
	err := row.Scan(&e.ID, &e.Title, &paise, &e.Category, &date, &e.Description,
		&e.ReceiptURL, &e.CreatedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, store.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	e.Amount = core.Money{Paise: paise}
	if e.Date, err = decodeTime(date); err != nil {
		return core.Expense{}, err
	}
	if e.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	return scanExpense(row)
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, in core.InsertExpense) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (title, amount_paise, category, date, description,
			receipt_url, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, in.Amount.Paise, in.Category, encodeTime(in.Date), in.Description,
		in.ReceiptURL, in.CreatedBy, encodeTime(now))
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense insert id: %w", err)
	}
	return r.GetExpense(ctx, id)
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id int64, patch core.ExpensePatch) (core.Expense, error) {
	existing, err := r.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	e := patch.Apply(existing)
	_, err = r.db.ExecContext(ctx, `
		UPDATE expenses SET title = ?, amount_paise = ?, category = ?, date = ?,
			description = ?, receipt_url = ?
		WHERE id = ?`,
		e.Title, e.Amount.Paise, e.Category, encodeTime(e.Date),
		e.Description, e.ReceiptURL, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}
	return e, nil
}

// --- settings ---

func scanSetting(row interface{ Scan(...any) error }) (core.Setting, error) {
	var (
		s         core.Setting
		updatedAt string
	)
	err := row.Scan(&s.ID, &s.Key, &s.Value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Setting{}, store.ErrNotFound
	}
	if err != nil {
		return core.Setting{}, fmt.Errorf("scan setting: %w", err)
	}
	if s.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return core.Setting{}, err
	}
	return s, nil
}

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (core.Setting, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, key, value, updated_at FROM settings WHERE key = ?`, key)
	return scanSetting(row)
}

func (r *SQLiteRepository) ListSettings(ctx context.Context) ([]core.Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, key, value, updated_at FROM settings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := []core.Setting{}
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *SQLiteRepository) UpsertSetting(ctx context.Context, in core.InsertSetting) (core.Setting, error) {
	if err := in.Validate(); err != nil {
		return core.Setting{}, err
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		in.Key, in.Value, encodeTime(now))
	if err != nil {
		return core.Setting{}, fmt.Errorf("upsert setting %s: %w", in.Key, err)
	}
	return r.GetSetting(ctx, in.Key)
}
