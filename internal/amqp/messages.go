package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"aptledger/internal/core"
)

// PaymentRecordedMessage is published whenever a payment is recorded or
// completed. It carries the full payment snapshot so consumers never
// need a read path back into the store.
type PaymentRecordedMessage struct {
	EventID     string    `json:"eventId"`
	PaymentID   int64     `json:"paymentId"`
	RoomNumber  string    `json:"roomNumber"`
	AmountPaise int64     `json:"amountPaise"`
	Method      string    `json:"method"`
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewPaymentRecordedMessage snapshots a payment into an event with a
// fresh unique id.
func NewPaymentRecordedMessage(p core.Payment) *PaymentRecordedMessage {
	return &PaymentRecordedMessage{
		EventID:     uuid.NewString(),
		PaymentID:   p.ID,
		RoomNumber:  p.RoomNumber,
		AmountPaise: p.Amount.Paise,
		Method:      p.Method,
		Status:      p.Status,
		Date:        p.Date,
		Timestamp:   time.Now(),
	}
}

// Amount reconstructs the payment amount from the wire integer.
func (m *PaymentRecordedMessage) Amount() core.Money {
	return core.Money{Paise: m.AmountPaise}
}

// ToJSON converts the message to JSON bytes
func (m *PaymentRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaymentRecordedMessageFromJSON creates a message from JSON bytes
func PaymentRecordedMessageFromJSON(data []byte) (*PaymentRecordedMessage, error) {
	var msg PaymentRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
