package domain

import (
	"strings"
	"time"
)

const cardMaskPrefix = "•••• •••• •••• "

// PaymentMethod is a stored card. CardNumber is always masked; the full
// number is never read back out of the store.
type PaymentMethod struct {
	PaymentID      int64     `json:"paymentID"`
	UserNumber     int64     `json:"userNumber"`
	CardHolderName *string   `json:"cardHolderName"`
	CardNumber     string    `json:"cardNumber"`
	ExpiryMonth    *int      `json:"expiryMonth"`
	ExpiryYear     *int      `json:"expiryYear"`
	BillingAddress *string   `json:"billingAddress"`
	IsDefault      int       `json:"isDefault"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MaskCardNumber keeps only the last four digits of a card number.
func MaskCardNumber(cardNumber string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, cardNumber)

	if digits == "" {
		return ""
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return cardMaskPrefix + digits
}
