package repository

import (
	"errors"

	"gorm.io/gorm"

	"medibill/internal/models"
)

// TransactionRepository is the GORM adapter for models.TransactionStore.
// Transaction rows are append-and-update-status only, never deleted.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a new payment attempt.
func (r *TransactionRepository) Create(txn *models.Transaction) error {
	return r.db.Create(txn).Error
}

// FindByOrderCode returns a transaction by its external order code.
func (r *TransactionRepository) FindByOrderCode(orderCode int64) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.First(&txn, "order_code = ?", orderCode).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &txn, nil
}

// FindLatestByBillID returns the most recently created attempt for a bill.
func (r *TransactionRepository) FindLatestByBillID(billID uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.Where("bill_id = ?", billID).
		Order("created_at DESC, transaction_id DESC").
		First(&txn).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &txn, nil
}

// UpdateStatus moves an attempt to a terminal state.
func (r *TransactionRepository) UpdateStatus(id uint, status models.TransactionStatus) error {
	res := r.db.Model(&models.Transaction{}).
		Where("transaction_id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return err
}
