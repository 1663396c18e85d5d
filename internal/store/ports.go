// Package store defines the entity-store ports the rest of the
// application depends on. Implementations live in store/memory (process
// memory) and storage (SQLite).
package store

import (
	"context"
	"errors"

	"aptledger/internal/core"
)

// ErrNotFound is returned for lookups and updates against an unknown id
// or key. The HTTP layer translates it to a 404.
var ErrNotFound = errors.New("not found")

type (
	UserStore interface {
		GetUser(ctx context.Context, id int64) (core.User, error)
		// GetUserByUsername matches case-insensitively.
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
		ListUsers(ctx context.Context) ([]core.User, error)
		CreateUser(ctx context.Context, in core.InsertUser) (core.User, error)
		UpdateUser(ctx context.Context, id int64, patch core.UserPatch) (core.User, error)
	}

	RoomStore interface {
		GetRoom(ctx context.Context, id int64) (core.Room, error)
		// GetRoomByNumber returns the first room whose RoomNumber
		// matches; duplicate room numbers are an unmodeled hazard.
		GetRoomByNumber(ctx context.Context, roomNumber string) (core.Room, error)
		ListRooms(ctx context.Context) ([]core.Room, error)
		CreateRoom(ctx context.Context, in core.InsertRoom) (core.Room, error)
		UpdateRoom(ctx context.Context, id int64, patch core.RoomPatch) (core.Room, error)
	}

	PaymentStore interface {
		GetPayment(ctx context.Context, id int64) (core.Payment, error)
		ListPayments(ctx context.Context) ([]core.Payment, error)
		ListPaymentsByRoom(ctx context.Context, roomNumber string) ([]core.Payment, error)
		CreatePayment(ctx context.Context, in core.InsertPayment) (core.Payment, error)
		UpdatePayment(ctx context.Context, id int64, patch core.PaymentPatch) (core.Payment, error)
	}

	ExpenseStore interface {
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		CreateExpense(ctx context.Context, in core.InsertExpense) (core.Expense, error)
		UpdateExpense(ctx context.Context, id int64, patch core.ExpensePatch) (core.Expense, error)
	}

	SettingStore interface {
		GetSetting(ctx context.Context, key string) (core.Setting, error)
		ListSettings(ctx context.Context) ([]core.Setting, error)
		// UpsertSetting creates the setting or overwrites its value,
		// keyed by Setting.Key.
		UpsertSetting(ctx context.Context, in core.InsertSetting) (core.Setting, error)
	}

	// Store is the full entity store the access façade operates on.
	Store interface {
		UserStore
		RoomStore
		PaymentStore
		ExpenseStore
		SettingStore
	}
)
