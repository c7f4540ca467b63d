package models

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when no row matches.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a locked unit of work loses to a concurrent
// mutation of the same bill (deadlock or lock wait timeout).
var ErrConflict = errors.New("concurrent update conflict")

// BillStore is the persistence contract for bills and their owned details.
type BillStore interface {
	Create(bill *Bill) error
	FindByID(id uint) (*Bill, error)
	FindAll(page, size int) ([]Bill, int64, error)
	UpdateAppointment(id uint, appointmentID uint) error
	UpdateStatus(id uint, status BillStatus) error
	Delete(id uint) error
}

// TransactionStore is the persistence contract for payment attempts.
type TransactionStore interface {
	Create(txn *Transaction) error
	FindByOrderCode(orderCode int64) (*Transaction, error)
	FindLatestByBillID(billID uint) (*Transaction, error)
	UpdateStatus(id uint, status TransactionStatus) error
}

// UnitOfWork runs fn inside one atomic scope holding an exclusive lock on the
// bill row, so that at most one mutating operation per bill commits at a time.
// The stores passed to fn are bound to that scope; mutations either all commit
// or all roll back.
type UnitOfWork interface {
	WithBillLock(ctx context.Context, billID uint, fn func(bills BillStore, txns TransactionStore) error) error
}
