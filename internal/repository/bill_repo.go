package repository

import (
	"errors"

	"gorm.io/gorm"

	"medibill/internal/models"
)

// BillRepository is the GORM adapter for models.BillStore.
type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) *BillRepository {
	return &BillRepository{db: db}
}

// Create inserts a bill together with its owned detail rows.
func (r *BillRepository) Create(bill *models.Bill) error {
	return r.db.Create(bill).Error
}

// FindByID returns a bill with its details preloaded.
func (r *BillRepository) FindByID(id uint) (*models.Bill, error) {
	var bill models.Bill
	if err := r.db.Preload("Details").First(&bill, "bill_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// FindAll returns bills with pagination, newest first. Page is 1-based.
func (r *BillRepository) FindAll(page, size int) ([]models.Bill, int64, error) {
	var bills []models.Bill
	var total int64

	if err := r.db.Model(&models.Bill{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size
	err := r.db.Preload("Details").
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&bills).Error
	if err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

// UpdateAppointment rebinds a bill to another appointment.
func (r *BillRepository) UpdateAppointment(id uint, appointmentID uint) error {
	return r.updateColumns(id, map[string]interface{}{"appointment_id": appointmentID})
}

// UpdateStatus sets the bill payment status.
func (r *BillRepository) UpdateStatus(id uint, status models.BillStatus) error {
	return r.updateColumns(id, map[string]interface{}{"status": status})
}

func (r *BillRepository) updateColumns(id uint, updates map[string]interface{}) error {
	res := r.db.Model(&models.Bill{}).Where("bill_id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes a bill and its owned detail rows.
func (r *BillRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bill_id = ?", id).Delete(&models.BillDetail{}).Error; err != nil {
			return err
		}
		res := tx.Where("bill_id = ?", id).Delete(&models.Bill{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}
