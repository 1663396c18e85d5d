// Package memory provides the in-process entity store. All reads and
// writes go through a single mutex; queries beyond id lookup are linear
// scans, which is fine at apartment-building scale.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"aptledger/internal/core"
	"aptledger/internal/store"
)

type Store struct {
	mu sync.Mutex

	users    map[int64]core.User
	rooms    map[int64]core.Room
	payments map[int64]core.Payment
	expenses map[int64]core.Expense
	settings map[string]core.Setting

	userSeq    store.Seq
	roomSeq    store.Seq
	paymentSeq store.Seq
	expenseSeq store.Seq
	settingSeq store.Seq
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:    make(map[int64]core.User),
		rooms:    make(map[int64]core.Room),
		payments: make(map[int64]core.Payment),
		expenses: make(map[int64]core.Expense),
		settings: make(map[string]core.Setting),
	}
}

// User methods

func (s *Store) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return core.User{}, store.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sortByID(out, func(u core.User) int64 { return u.ID })
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, in core.InsertUser) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := core.User{
		ID:                   s.userSeq.Next(),
		Username:             in.Username,
		Password:             in.Password,
		Name:                 in.Name,
		Email:                in.Email,
		Role:                 in.Role,
		RoomNumber:           in.RoomNumber,
		PhoneNumber:          in.PhoneNumber,
		PreferredLanguage:    in.PreferredLanguage,
		UPIID:                in.UPIID,
		NotificationsEnabled: in.NotificationsEnabled,
		CreatedAt:            time.Now(),
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, id int64, patch core.UserPatch) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, store.ErrNotFound
	}
	u = patch.Apply(u)
	s.users[id] = u
	return u, nil
}

// Room methods

func (s *Store) GetRoom(_ context.Context, id int64) (core.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return core.Room{}, store.ErrNotFound
	}
	return cloneRoom(r), nil
}

func (s *Store) GetRoomByNumber(_ context.Context, roomNumber string) (core.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roomByNumberLocked(roomNumber)
	if !ok {
		return core.Room{}, store.ErrNotFound
	}
	return cloneRoom(r), nil
}

func (s *Store) roomByNumberLocked(roomNumber string) (core.Room, bool) {
	// First match in id order, mirroring the scan the lookups always did.
	ids := make([]int64, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if s.rooms[id].RoomNumber == roomNumber {
			return s.rooms[id], true
		}
	}
	return core.Room{}, false
}

func (s *Store) ListRooms(_ context.Context) ([]core.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, cloneRoom(r))
	}
	sortByID(out, func(r core.Room) int64 { return r.ID })
	return out, nil
}

func (s *Store) CreateRoom(_ context.Context, in core.InsertRoom) (core.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fee := in.MonthlyFee
	if fee.IsZero() {
		fee = core.DefaultMonthlyFee
	}
	r := core.Room{
		ID:              s.roomSeq.Next(),
		RoomNumber:      in.RoomNumber,
		ResidentID:      in.ResidentID,
		ResidentName:    in.ResidentName,
		ContactNumber:   in.ContactNumber,
		MonthlyFee:      fee,
		TotalDue:        in.TotalDue,
		DueDate:         in.DueDate,
		PaymentsHistory: []core.PaymentRecord{},
		CreatedAt:       time.Now(),
	}
	s.rooms[r.ID] = r
	return cloneRoom(r), nil
}

func (s *Store) UpdateRoom(_ context.Context, id int64, patch core.RoomPatch) (core.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return core.Room{}, store.ErrNotFound
	}
	r = patch.Apply(r)
	s.rooms[id] = r
	return cloneRoom(r), nil
}

// Payment methods

func (s *Store) GetPayment(_ context.Context, id int64) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return core.Payment{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListPayments(_ context.Context) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, p)
	}
	sortByID(out, func(p core.Payment) int64 { return p.ID })
	return out, nil
}

func (s *Store) ListPaymentsByRoom(_ context.Context, roomNumber string) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Payment
	for _, p := range s.payments {
		if p.RoomNumber == roomNumber {
			out = append(out, p)
		}
	}
	sortByID(out, func(p core.Payment) int64 { return p.ID })
	return out, nil
}

func (s *Store) CreatePayment(_ context.Context, in core.InsertPayment) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := core.Payment{
		ID:         s.paymentSeq.Next(),
		RoomNumber: in.RoomNumber,
		Amount:     in.Amount,
		Date:       in.Date,
		Method:     in.Method,
		Status:     in.Status,
		ReceiptURL: in.ReceiptURL,
		Notes:      in.Notes,
		CreatedBy:  in.CreatedBy,
		CreatedAt:  time.Now(),
	}
	s.payments[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePayment(_ context.Context, id int64, patch core.PaymentPatch) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return core.Payment{}, store.ErrNotFound
	}
	p = patch.Apply(p)
	s.payments[id] = p
	return p, nil
}

// Expense methods

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e)
	}
	sortByID(out, func(e core.Expense) int64 { return e.ID })
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, in core.InsertExpense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := core.Expense{
		ID:          s.expenseSeq.Next(),
		Title:       in.Title,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
		Description: in.Description,
		ReceiptURL:  in.ReceiptURL,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   time.Now(),
	}
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, id int64, patch core.ExpensePatch) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, store.ErrNotFound
	}
	e = patch.Apply(e)
	s.expenses[id] = e
	return e, nil
}

// Setting methods

func (s *Store) GetSetting(_ context.Context, key string) (core.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[key]
	if !ok {
		return core.Setting{}, store.ErrNotFound
	}
	return st, nil
}

func (s *Store) ListSettings(_ context.Context) ([]core.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Setting, 0, len(s.settings))
	for _, st := range s.settings {
		out = append(out, st)
	}
	sortByID(out, func(st core.Setting) int64 { return st.ID })
	return out, nil
}

func (s *Store) UpsertSetting(_ context.Context, in core.InsertSetting) (core.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.settings[in.Key]; ok {
		st.Value = in.Value
		st.UpdatedAt = time.Now()
		s.settings[in.Key] = st
		return st, nil
	}
	st := core.Setting{
		ID:        s.settingSeq.Next(),
		Key:       in.Key,
		Value:     in.Value,
		UpdatedAt: time.Now(),
	}
	s.settings[in.Key] = st
	return st, nil
}

// cloneRoom copies the room so callers cannot mutate the stored
// payments-history slice through the returned value.
func cloneRoom(r core.Room) core.Room {
	if r.PaymentsHistory != nil {
		hist := make([]core.PaymentRecord, len(r.PaymentsHistory))
		copy(hist, r.PaymentsHistory)
		r.PaymentsHistory = hist
	}
	return r
}

func sortByID[T any](items []T, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
