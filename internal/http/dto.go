package http

import (
	"fmt"
	"time"

	"aptledger/internal/core"
)

// Request bodies. Money comes over the wire as a decimal string and
// dates as RFC 3339 or plain YYYY-MM-DD.

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string    `json:"token,omitempty"`
	User  core.User `json:"user"`
}

type createUserRequest struct {
	Username             string `json:"username" validate:"required,min=3,max=50"`
	Password             string `json:"password" validate:"required,min=6"`
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Role                 string `json:"role" validate:"required,oneof=admin resident"`
	RoomNumber           string `json:"roomNumber"`
	PhoneNumber          string `json:"phoneNumber"`
	PreferredLanguage    string `json:"preferredLanguage"`
	UPIID                string `json:"upiId"`
	NotificationsEnabled *bool  `json:"notificationsEnabled"`
}

func (req createUserRequest) toInsert(passwordHash string) core.InsertUser {
	in := core.InsertUser{
		Username:             req.Username,
		Password:             passwordHash,
		Name:                 req.Name,
		Email:                req.Email,
		Role:                 req.Role,
		RoomNumber:           req.RoomNumber,
		PhoneNumber:          req.PhoneNumber,
		PreferredLanguage:    req.PreferredLanguage,
		UPIID:                req.UPIID,
		NotificationsEnabled: true,
	}
	if in.PreferredLanguage == "" {
		in.PreferredLanguage = "en"
	}
	if req.NotificationsEnabled != nil {
		in.NotificationsEnabled = *req.NotificationsEnabled
	}
	return in
}

type updateUserRequest struct {
	Password             *string `json:"password" validate:"omitempty,min=6"`
	Name                 *string `json:"name"`
	Email                *string `json:"email" validate:"omitempty,email"`
	Role                 *string `json:"role" validate:"omitempty,oneof=admin resident"`
	RoomNumber           *string `json:"roomNumber"`
	PhoneNumber          *string `json:"phoneNumber"`
	PreferredLanguage    *string `json:"preferredLanguage"`
	UPIID                *string `json:"upiId"`
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
}

func (req updateUserRequest) toPatch(passwordHash *string) core.UserPatch {
	return core.UserPatch{
		Password:             passwordHash,
		Name:                 req.Name,
		Email:                req.Email,
		Role:                 req.Role,
		RoomNumber:           req.RoomNumber,
		PhoneNumber:          req.PhoneNumber,
		PreferredLanguage:    req.PreferredLanguage,
		UPIID:                req.UPIID,
		NotificationsEnabled: req.NotificationsEnabled,
	}
}

type createRoomRequest struct {
	RoomNumber    string `json:"roomNumber" validate:"required"`
	ResidentID    string `json:"residentId"`
	ResidentName  string `json:"residentName"`
	ContactNumber string `json:"contactNumber"`
	MonthlyFee    string `json:"monthlyFee"`
	TotalDue      string `json:"totalDue"`
	DueDate       string `json:"dueDate" validate:"required"`
}

func (req createRoomRequest) toInsert() (core.InsertRoom, error) {
	in := core.InsertRoom{
		RoomNumber:    req.RoomNumber,
		ResidentID:    req.ResidentID,
		ResidentName:  req.ResidentName,
		ContactNumber: req.ContactNumber,
	}
	var err error
	if req.MonthlyFee != "" {
		if in.MonthlyFee, err = core.ParseMoney(req.MonthlyFee); err != nil {
			return core.InsertRoom{}, fmt.Errorf("monthlyFee: %w", err)
		}
	}
	if req.TotalDue != "" {
		if in.TotalDue, err = core.ParseMoney(req.TotalDue); err != nil {
			return core.InsertRoom{}, fmt.Errorf("totalDue: %w", err)
		}
	}
	if in.DueDate, err = parseDate(req.DueDate); err != nil {
		return core.InsertRoom{}, fmt.Errorf("dueDate: %w", err)
	}
	return in, nil
}

type updateRoomRequest struct {
	ResidentID    *string `json:"residentId"`
	ResidentName  *string `json:"residentName"`
	ContactNumber *string `json:"contactNumber"`
	MonthlyFee    *string `json:"monthlyFee"`
	TotalDue      *string `json:"totalDue"`
	DueDate       *string `json:"dueDate"`
}

func (req updateRoomRequest) toPatch() (core.RoomPatch, error) {
	patch := core.RoomPatch{
		ResidentID:    req.ResidentID,
		ResidentName:  req.ResidentName,
		ContactNumber: req.ContactNumber,
	}
	if req.MonthlyFee != nil {
		fee, err := core.ParseMoney(*req.MonthlyFee)
		if err != nil {
			return core.RoomPatch{}, fmt.Errorf("monthlyFee: %w", err)
		}
		patch.MonthlyFee = &fee
	}
	if req.TotalDue != nil {
		due, err := core.ParseMoney(*req.TotalDue)
		if err != nil {
			return core.RoomPatch{}, fmt.Errorf("totalDue: %w", err)
		}
		patch.TotalDue = &due
	}
	if req.DueDate != nil {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			return core.RoomPatch{}, fmt.Errorf("dueDate: %w", err)
		}
		patch.DueDate = &d
	}
	return patch, nil
}

type createPaymentRequest struct {
	RoomNumber string `json:"roomNumber" validate:"required"`
	Amount     string `json:"amount" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Method     string `json:"method" validate:"required,oneof=UPI Cash 'Bank Transfer'"`
	Status     string `json:"status" validate:"omitempty,oneof=pending completed"`
	ReceiptURL string `json:"receiptURL"`
	Notes      string `json:"notes"`
	CreatedBy  string `json:"createdBy"`
}

func (req createPaymentRequest) toInsert() (core.InsertPayment, error) {
	in := core.InsertPayment{
		RoomNumber: req.RoomNumber,
		Method:     req.Method,
		Status:     req.Status,
		ReceiptURL: req.ReceiptURL,
		Notes:      req.Notes,
		CreatedBy:  req.CreatedBy,
	}
	var err error
	if in.Amount, err = core.ParseMoney(req.Amount); err != nil {
		return core.InsertPayment{}, fmt.Errorf("amount: %w", err)
	}
	if in.Date, err = parseDate(req.Date); err != nil {
		return core.InsertPayment{}, fmt.Errorf("date: %w", err)
	}
	return in, nil
}

type updatePaymentRequest struct {
	RoomNumber *string `json:"roomNumber"`
	Amount     *string `json:"amount"`
	Date       *string `json:"date"`
	Method     *string `json:"method" validate:"omitempty,oneof=UPI Cash 'Bank Transfer'"`
	Status     *string `json:"status" validate:"omitempty,oneof=pending completed"`
	ReceiptURL *string `json:"receiptURL"`
	Notes      *string `json:"notes"`
	CreatedBy  *string `json:"createdBy"`
}

func (req updatePaymentRequest) toPatch() (core.PaymentPatch, error) {
	patch := core.PaymentPatch{
		RoomNumber: req.RoomNumber,
		Method:     req.Method,
		Status:     req.Status,
		ReceiptURL: req.ReceiptURL,
		Notes:      req.Notes,
		CreatedBy:  req.CreatedBy,
	}
	if req.Amount != nil {
		amount, err := core.ParseMoney(*req.Amount)
		if err != nil {
			return core.PaymentPatch{}, fmt.Errorf("amount: %w", err)
		}
		patch.Amount = &amount
	}
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			return core.PaymentPatch{}, fmt.Errorf("date: %w", err)
		}
		patch.Date = &d
	}
	return patch, nil
}

type createExpenseRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Amount      string `json:"amount" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Description string `json:"description"`
	ReceiptURL  string `json:"receiptURL"`
	CreatedBy   string `json:"createdBy"`
}

func (req createExpenseRequest) toInsert() (core.InsertExpense, error) {
	in := core.InsertExpense{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		ReceiptURL:  req.ReceiptURL,
		CreatedBy:   req.CreatedBy,
	}
	var err error
	if in.Amount, err = core.ParseMoney(req.Amount); err != nil {
		return core.InsertExpense{}, fmt.Errorf("amount: %w", err)
	}
	if in.Date, err = parseDate(req.Date); err != nil {
		return core.InsertExpense{}, fmt.Errorf("date: %w", err)
	}
	return in, nil
}

type updateExpenseRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Amount      *string `json:"amount"`
	Category    *string `json:"category"`
	Date        *string `json:"date"`
	Description *string `json:"description"`
	ReceiptURL  *string `json:"receiptURL"`
}

func (req updateExpenseRequest) toPatch() (core.ExpensePatch, error) {
	patch := core.ExpensePatch{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		ReceiptURL:  req.ReceiptURL,
	}
	if req.Amount != nil {
		amount, err := core.ParseMoney(*req.Amount)
		if err != nil {
			return core.ExpensePatch{}, fmt.Errorf("amount: %w", err)
		}
		patch.Amount = &amount
	}
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			return core.ExpensePatch{}, fmt.Errorf("date: %w", err)
		}
		patch.Date = &d
	}
	return patch, nil
}

type upsertSettingRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

type upiLinkResponse struct {
	RoomNumber string     `json:"roomNumber"`
	Amount     core.Money `json:"amount"`
	Link       string     `json:"link"`
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}
