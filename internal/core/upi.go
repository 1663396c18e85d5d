package core

import (
	"errors"
	"net/url"
	"strings"
)

// ErrEmptyVPA is returned when no payee UPI id is available for a link.
var ErrEmptyVPA = errors.New("empty payee UPI id")

// UPILink builds a upi://pay deep link for collecting a maintenance fee.
// payeeVPA is the collecting account's virtual payment address, payeeName
// the display name shown in the payer's UPI app, note a free-form
// transaction note. Amount is formatted with two decimals and the
// currency is always INR.
func UPILink(payeeVPA, payeeName string, amount Money, note string) (string, error) {
	payeeVPA = strings.TrimSpace(payeeVPA)
	if payeeVPA == "" {
		return "", ErrEmptyVPA
	}
	if amount.Paise <= 0 {
		return "", ErrInvalidAmount
	}
	q := url.Values{}
	q.Set("pa", payeeVPA)
	q.Set("pn", payeeName)
	q.Set("am", amount.String())
	q.Set("cu", "INR")
	if note != "" {
		q.Set("tn", note)
	}
	return "upi://pay?" + q.Encode(), nil
}
