package paydunya

import "time"

// Status is the provider-side state of a transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether the provider will not change this status again.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusCancelled
}

// WebhookEvent is the asynchronous payment notification PayDunya posts to our
// webhook endpoint. Reference is the value we generated at initiation time and
// the idempotency key for processing.
type WebhookEvent struct {
	ID            string    `json:"id"`
	Status        Status    `json:"status"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Reference     string    `json:"reference"`
	When          time.Time `json:"when"`
	PaymentMethod string    `json:"payment_method"`
}

// CheckoutRequest describes a hosted checkout to create.
type CheckoutRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	Description string `json:"description"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// CheckoutResponse carries the redirect URL the donor completes payment on.
type CheckoutResponse struct {
	PaymentURL            string `json:"payment_url"`
	ProviderTransactionID string `json:"provider_transaction_id"`
}

// Transaction is the authoritative provider record returned by a direct
// status query, used by the reconciliation sweep.
type Transaction struct {
	Reference     string `json:"reference"`
	Status        Status `json:"status"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
}
