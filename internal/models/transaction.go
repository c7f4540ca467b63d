package models

import "time"

// TransactionStatus is the state of one payment attempt. PENDING moves to
// SUCCESS or FAILED. SUCCESS is terminal; a superseded FAILED attempt can
// still reach SUCCESS when the provider confirms its link was paid anyway.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// PaymentMethod identifies how a payment attempt is settled.
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "CASH"
	PaymentMethodOnlineBanking PaymentMethod = "ONLINE_BANKING"
	PaymentMethodCard          PaymentMethod = "CARD"
)

// Transaction maps to the `transactions` table. It holds a non-owning
// back-reference to its bill; many attempts may exist per bill across retries
// but at most one is PENDING at any moment. Rows are never deleted.
type Transaction struct {
	ID              uint              `gorm:"column:transaction_id;primaryKey;autoIncrement" json:"transactionId"`
	BillID          uint              `gorm:"column:bill_id;index" json:"billId"`
	OrderCode       int64             `gorm:"column:order_code;uniqueIndex" json:"orderCode"`
	Amount          int64             `gorm:"column:amount" json:"amount"`
	PaymentMethod   PaymentMethod     `gorm:"column:payment_method;size:20" json:"paymentMethod"`
	TransactionDate time.Time         `gorm:"column:transaction_date" json:"transactionDate"`
	Status          TransactionStatus `gorm:"column:status;size:20;index" json:"status"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Transaction) TableName() string {
	return "transactions"
}
