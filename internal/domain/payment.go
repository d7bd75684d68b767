package domain

import "time"

type PaymentMethodType string

const (
	PaymentMethodCreditCard PaymentMethodType = "CREDIT_CARD"
	PaymentMethodPayPal     PaymentMethodType = "PAYPAL"
)

// CreditCardDetails holds the fields required to charge a card.
type CreditCardDetails struct {
	CardNumber string `json:"card_number"`
	CVV        string `json:"cvv"`
	Expiry     string `json:"expiry"` // MM/YY
}

// PayPalDetails holds the fields required to charge a PayPal account.
type PayPalDetails struct {
	Email     string `json:"email"`
	AuthToken string `json:"auth_token"`
}

// PaymentMethod is a tagged union; exactly one of CreditCard or PayPal
// must be set, matching Type.
type PaymentMethod struct {
	Type       PaymentMethodType  `json:"type"`
	CreditCard *CreditCardDetails `json:"credit_card,omitempty"`
	PayPal     *PayPalDetails     `json:"paypal,omitempty"`
}

// PaymentResult reports the outcome of charging a reservation's invoice.
type PaymentResult struct {
	ReservationID string            `json:"reservation_id"`
	InvoiceID     string            `json:"invoice_id"`
	Amount        float64           `json:"amount"`
	Method        PaymentMethodType `json:"method"`
	Status        InvoiceStatus     `json:"status"`
	Receipt       string            `json:"receipt"`
	ProcessedAt   time.Time         `json:"processed_at"`
}
