package payment

import (
	"context"
	"errors"
)

// ErrSignatureInvalid is returned by VerifyWebhook when the payload signature
// does not match. Callbacks failing verification must never reach storage.
var ErrSignatureInvalid = errors.New("webhook signature invalid")

// LinkRequest describes one hosted-checkout link to create.
type LinkRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	ItemName    string `json:"itemName"`
	CancelURL   string `json:"cancelUrl"`
	ReturnURL   string `json:"returnUrl"`
}

// LinkResult contains the provider's answer to a link creation.
type LinkResult struct {
	CheckoutURL   string `json:"checkoutUrl"`
	PaymentLinkID string `json:"paymentLinkId,omitempty"`
}

// WebhookResult is a verified payment confirmation.
type WebhookResult struct {
	OrderCode   int64  `json:"orderCode"`
	Success     bool   `json:"success"`
	Reference   string `json:"reference,omitempty"`
	Description string `json:"description,omitempty"`
}

// LinkInfo is the provider's view of an existing payment link.
type LinkInfo struct {
	OrderCode      int64  `json:"orderCode"`
	Amount         int64  `json:"amount"`
	AmountPaid     int64  `json:"amountPaid"`
	Status         string `json:"status"`
	CheckoutURL    string `json:"checkoutUrl,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
	CancellationAt string `json:"canceledAt,omitempty"`
}

// Gateway defines the interface for payment gateway implementations.
type Gateway interface {
	// Name returns the gateway identifier.
	Name() string

	// CreateLink creates a hosted checkout link for one order.
	CreateLink(ctx context.Context, req LinkRequest) (*LinkResult, error)

	// VerifyWebhook checks the signature of a raw callback payload and
	// extracts the order outcome. Returns ErrSignatureInvalid on mismatch.
	VerifyWebhook(raw []byte) (*WebhookResult, error)

	// GetInfo fetches the provider's state of a payment link.
	GetInfo(ctx context.Context, orderCode int64) (*LinkInfo, error)

	// CancelLink cancels an open payment link.
	CancelLink(ctx context.Context, orderCode int64, reason string) error
}
