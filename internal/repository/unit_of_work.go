package repository

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medibill/internal/models"
)

// MySQL error numbers for lock wait timeout and deadlock.
const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// GormUnitOfWork implements models.UnitOfWork on top of a database
// transaction holding a SELECT ... FOR UPDATE lock on the bill row. The lock
// serializes link creation, webhook application and cash settlement for one
// bill; concurrent operations on the same bill queue behind it.
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) WithBillLock(ctx context.Context, billID uint, fn func(bills models.BillStore, txns models.TransactionStore) error) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Bill
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("bill_id").
			First(&locked, "bill_id = ?", billID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotFound
			}
			return err
		}
		return fn(NewBillRepository(tx), NewTransactionRepository(tx))
	})
	return translateSerializationErr(err)
}

func translateSerializationErr(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if mysqlErr.Number == mysqlErrLockWaitTimeout || mysqlErr.Number == mysqlErrDeadlock {
			return models.ErrConflict
		}
	}
	return err
}
