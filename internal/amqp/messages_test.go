package amqp

import (
	"strings"
	"testing"
	"time"

	"aptledger/internal/core"
)

func TestNewPaymentRecordedMessage(t *testing.T) {
	p := core.Payment{
		ID:         42,
		RoomNumber: "101",
		Amount:     core.Money{Paise: 150000},
		Date:       time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Method:     core.MethodUPI,
		Status:     core.StatusCompleted,
	}

	msg := NewPaymentRecordedMessage(p)

	if msg.EventID == "" {
		t.Error("EventID is empty")
	}
	if msg.PaymentID != 42 || msg.RoomNumber != "101" || msg.AmountPaise != 150000 {
		t.Errorf("message = %+v", msg)
	}
	if msg.Method != core.MethodUPI || msg.Status != core.StatusCompleted {
		t.Errorf("message = %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
	if msg.Amount().Paise != 150000 {
		t.Errorf("Amount() = %d, want 150000", msg.Amount().Paise)
	}

	// Each event gets its own id.
	if again := NewPaymentRecordedMessage(p); again.EventID == msg.EventID {
		t.Error("two events share an EventID")
	}
}

func TestPaymentRecordedMessage_JSONRoundTrip(t *testing.T) {
	msg := NewPaymentRecordedMessage(core.Payment{
		ID:         7,
		RoomNumber: "202",
		Amount:     core.Money{Paise: 50000},
		Date:       time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Method:     core.MethodCash,
		Status:     core.StatusPending,
	})

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	for _, field := range []string{`"eventId"`, `"paymentId"`, `"roomNumber"`, `"amountPaise"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("ToJSON() missing %s: %s", field, data)
		}
	}

	got, err := PaymentRecordedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("PaymentRecordedMessageFromJSON() error = %v", err)
	}
	if got.EventID != msg.EventID || got.PaymentID != 7 || got.AmountPaise != 50000 {
		t.Errorf("round trip = %+v, want %+v", got, msg)
	}
}

func TestPaymentRecordedMessageFromJSON_Invalid(t *testing.T) {
	if _, err := PaymentRecordedMessageFromJSON([]byte("not json")); err == nil {
		t.Error("PaymentRecordedMessageFromJSON() error = nil for invalid payload")
	}
}
