package ports

import (
	"context"
	"encoding/json"

	"github.com/carddemo/portal/internal/core/domain"
)

// NewPayee is a payee to register for the scope's customer. CustomerID is
// always overwritten from the scope before the request leaves the portal.
type NewPayee struct {
	CustomerID         int64  `json:"customerId"`
	PayeeName          string `json:"payeeName"`
	PayeeType          string `json:"payeeType"`
	PayeeAccountNumber string `json:"payeeAccountNumber,omitempty"`
	Nickname           string `json:"nickname,omitempty"`
}

// NewPayment schedules a payment from one of the customer's accounts to one
// of the customer's payees.
type NewPayment struct {
	AccountID          int64   `json:"accountId"`
	PayeeID            int64   `json:"payeeId"`
	Amount             float64 `json:"amount"`
	PaymentDate        string  `json:"paymentDate"`
	Memo               string  `json:"memo,omitempty"`
	IsRecurring        bool    `json:"isRecurring,omitempty"`
	RecurringFrequency string  `json:"recurringFrequency,omitempty"`
}

// BillPaymentService performs the bill-payment writes. Every call targets the
// customer the scope resolves to and nothing else.
type BillPaymentService interface {
	AddPayee(ctx context.Context, scope domain.Scope, payee NewPayee) (json.RawMessage, error)
	PayBill(ctx context.Context, scope domain.Scope, payment NewPayment) (json.RawMessage, error)
	CancelPayment(ctx context.Context, scope domain.Scope, paymentID int64) error
}
