package core

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleResident = "resident"

	MethodUPI          = "UPI"
	MethodCash         = "Cash"
	MethodBankTransfer = "Bank Transfer"

	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// DefaultMonthlyFee is the maintenance fee assigned to rooms created
// without an explicit fee (1500 rupees).
var DefaultMonthlyFee = Money{Paise: 150000}

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidMethod   = errors.New("invalid payment method")
	ErrInvalidStatus   = errors.New("invalid payment status")
	ErrInvalidRole     = errors.New("invalid role")
	ErrEmptyUsername   = errors.New("empty username")
	ErrEmptyRoomNumber = errors.New("empty room number")
	ErrEmptyTitle      = errors.New("empty title")
	ErrEmptyKey        = errors.New("empty setting key")
	ErrZeroDate        = errors.New("date cannot be zero")
)

type (
	// User is a registered account, either a committee admin or a
	// resident. The password field carries the bcrypt hash and is never
	// serialized.
	User struct {
		ID                   int64      `json:"id"`
		Username             string     `json:"username"`
		Password             string     `json:"-"`
		Name                 string     `json:"name"`
		Email                string     `json:"email"`
		Role                 string     `json:"role"`
		RoomNumber           string     `json:"roomNumber,omitempty"`
		PhoneNumber          string     `json:"phoneNumber,omitempty"`
		PreferredLanguage    string     `json:"preferredLanguage"`
		UPIID                string     `json:"upiId,omitempty"`
		NotificationsEnabled bool       `json:"notificationsEnabled"`
		CreatedAt            time.Time  `json:"createdAt"`
	}

	// PaymentRecord is the denormalized payment summary embedded in a
	// room's history. Entries are append-only; they capture the payment
	// as submitted and are not rewritten by later payment edits.
	PaymentRecord struct {
		ID         int64     `json:"id"`
		Amount     Money     `json:"amount"`
		Date       time.Time `json:"date"`
		Method     string    `json:"method"`
		Status     string    `json:"status"`
		ReceiptURL string    `json:"receiptURL,omitempty"`
	}

	// Room is a physical unit tracked for resident assignment and
	// maintenance-fee balance. TotalDue never goes negative.
	Room struct {
		ID              int64           `json:"id"`
		RoomNumber      string          `json:"roomNumber"`
		ResidentID      string          `json:"residentId,omitempty"`
		ResidentName    string          `json:"residentName,omitempty"`
		ContactNumber   string          `json:"contactNumber,omitempty"`
		MonthlyFee      Money           `json:"monthlyFee"`
		TotalDue        Money           `json:"totalDue"`
		DueDate         time.Time       `json:"dueDate"`
		LastPaymentDate *time.Time      `json:"lastPaymentDate,omitempty"`
		PaymentsHistory []PaymentRecord `json:"paymentsHistory"`
		CreatedAt       time.Time       `json:"createdAt"`
	}

	// Payment references its room by room number, not by id; lookups
	// scan for a matching RoomNumber.
	Payment struct {
		ID         int64     `json:"id"`
		RoomNumber string    `json:"roomNumber"`
		Amount     Money     `json:"amount"`
		Date       time.Time `json:"date"`
		Method     string    `json:"method"`
		Status     string    `json:"status"`
		ReceiptURL string    `json:"receiptURL,omitempty"`
		Notes      string    `json:"notes,omitempty"`
		CreatedBy  string    `json:"createdBy,omitempty"`
		CreatedAt  time.Time `json:"createdAt"`
	}

	Expense struct {
		ID          int64     `json:"id"`
		Title       string    `json:"title"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		Date        time.Time `json:"date"`
		Description string    `json:"description,omitempty"`
		ReceiptURL  string    `json:"receiptURL,omitempty"`
		CreatedBy   string    `json:"createdBy,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// Setting is a key/value pair upserted by key.
	Setting struct {
		ID        int64     `json:"id"`
		Key       string    `json:"key"`
		Value     string    `json:"value"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
)

// Insert inputs: id and createdAt are always assigned server-side, any
// caller-supplied values are ignored by construction.
type (
	InsertUser struct {
		Username             string
		Password             string
		Name                 string
		Email                string
		Role                 string
		RoomNumber           string
		PhoneNumber          string
		PreferredLanguage    string
		UPIID                string
		NotificationsEnabled bool
	}

	InsertRoom struct {
		RoomNumber    string
		ResidentID    string
		ResidentName  string
		ContactNumber string
		MonthlyFee    Money
		TotalDue      Money
		DueDate       time.Time
	}

	InsertPayment struct {
		RoomNumber string
		Amount     Money
		Date       time.Time
		Method     string
		Status     string
		ReceiptURL string
		Notes      string
		CreatedBy  string
	}

	InsertExpense struct {
		Title       string
		Amount      Money
		Category    string
		Date        time.Time
		Description string
		ReceiptURL  string
		CreatedBy   string
	}

	InsertSetting struct {
		Key   string
		Value string
	}
)

// Patches: partial updates shallow-merged over an existing record. A nil
// field leaves the stored value untouched.
type (
	UserPatch struct {
		Password             *string
		Name                 *string
		Email                *string
		Role                 *string
		RoomNumber           *string
		PhoneNumber          *string
		PreferredLanguage    *string
		UPIID                *string
		NotificationsEnabled *bool
	}

	RoomPatch struct {
		ResidentID      *string
		ResidentName    *string
		ContactNumber   *string
		MonthlyFee      *Money
		TotalDue        *Money
		DueDate         *time.Time
		LastPaymentDate *time.Time
		PaymentsHistory *[]PaymentRecord
	}

	PaymentPatch struct {
		RoomNumber *string
		Amount     *Money
		Date       *time.Time
		Method     *string
		Status     *string
		ReceiptURL *string
		Notes      *string
		CreatedBy  *string
	}

	ExpensePatch struct {
		Title       *string
		Amount      *Money
		Category    *string
		Date        *time.Time
		Description *string
		ReceiptURL  *string
	}
)

// Apply merges the patch over the user and returns the result.
func (p UserPatch) Apply(u User) User {
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.RoomNumber != nil {
		u.RoomNumber = *p.RoomNumber
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.PreferredLanguage != nil {
		u.PreferredLanguage = *p.PreferredLanguage
	}
	if p.UPIID != nil {
		u.UPIID = *p.UPIID
	}
	if p.NotificationsEnabled != nil {
		u.NotificationsEnabled = *p.NotificationsEnabled
	}
	return u
}

// Apply merges the patch over the room and returns the result.
func (p RoomPatch) Apply(r Room) Room {
	if p.ResidentID != nil {
		r.ResidentID = *p.ResidentID
	}
	if p.ResidentName != nil {
		r.ResidentName = *p.ResidentName
	}
	if p.ContactNumber != nil {
		r.ContactNumber = *p.ContactNumber
	}
	if p.MonthlyFee != nil {
		r.MonthlyFee = *p.MonthlyFee
	}
	if p.TotalDue != nil {
		r.TotalDue = *p.TotalDue
	}
	if p.DueDate != nil {
		r.DueDate = *p.DueDate
	}
	if p.LastPaymentDate != nil {
		r.LastPaymentDate = p.LastPaymentDate
	}
	if p.PaymentsHistory != nil {
		r.PaymentsHistory = *p.PaymentsHistory
	}
	return r
}

// Apply merges the patch over the payment and returns the result.
func (p PaymentPatch) Apply(pay Payment) Payment {
	if p.RoomNumber != nil {
		pay.RoomNumber = *p.RoomNumber
	}
	if p.Amount != nil {
		pay.Amount = *p.Amount
	}
	if p.Date != nil {
		pay.Date = *p.Date
	}
	if p.Method != nil {
		pay.Method = *p.Method
	}
	if p.Status != nil {
		pay.Status = *p.Status
	}
	if p.ReceiptURL != nil {
		pay.ReceiptURL = *p.ReceiptURL
	}
	if p.Notes != nil {
		pay.Notes = *p.Notes
	}
	if p.CreatedBy != nil {
		pay.CreatedBy = *p.CreatedBy
	}
	return pay
}

// Apply merges the patch over the expense and returns the result.
func (p ExpensePatch) Apply(e Expense) Expense {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.ReceiptURL != nil {
		e.ReceiptURL = *p.ReceiptURL
	}
	return e
}

func validMethod(m string) bool {
	switch m {
	case MethodUPI, MethodCash, MethodBankTransfer:
		return true
	}
	return false
}

func validStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted
}

func (u InsertUser) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if strings.TrimSpace(u.Password) == "" {
		return errors.New("empty password")
	}
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("empty name")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	if u.Role != RoleAdmin && u.Role != RoleResident {
		return ErrInvalidRole
	}
	return nil
}

func (r InsertRoom) Validate() error {
	if strings.TrimSpace(r.RoomNumber) == "" {
		return ErrEmptyRoomNumber
	}
	if r.MonthlyFee.Paise < 0 || r.TotalDue.Paise < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p InsertPayment) Validate() error {
	if strings.TrimSpace(p.RoomNumber) == "" {
		return ErrEmptyRoomNumber
	}
	if p.Amount.Paise <= 0 {
		return ErrInvalidAmount
	}
	if p.Date.IsZero() {
		return ErrZeroDate
	}
	if !validMethod(p.Method) {
		return ErrInvalidMethod
	}
	if p.Status != "" && !validStatus(p.Status) {
		return ErrInvalidStatus
	}
	return nil
}

func (e InsertExpense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if e.Amount.Paise <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return errors.New("empty category")
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (s InsertSetting) Validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return ErrEmptyKey
	}
	return nil
}

// Record converts a payment to its embedded history summary.
func (p Payment) Record() PaymentRecord {
	return PaymentRecord{
		ID:         p.ID,
		Amount:     p.Amount,
		Date:       p.Date,
		Method:     p.Method,
		Status:     p.Status,
		ReceiptURL: p.ReceiptURL,
	}
}
