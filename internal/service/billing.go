package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"medibill/internal/client"
	"medibill/internal/models"
)

// PharmacyReader resolves medicine pricing from the pharmacy record service.
type PharmacyReader interface {
	GetMedicine(ctx context.Context, id uint) (*client.Medicine, error)
}

// BillService manages bills and their detail rows. Billing data arrives from
// the appointment flow; only MEDICINE lines are priced here, via the pharmacy
// service.
type BillService struct {
	bills    models.BillStore
	pharmacy PharmacyReader
	logger   *zap.Logger
}

func NewBillService(bills models.BillStore, pharmacy PharmacyReader, logger *zap.Logger) *BillService {
	return &BillService{bills: bills, pharmacy: pharmacy, logger: logger}
}

// BillDetailRequest is one line item of a new bill. CONSULTATION and SERVICE
// lines arrive pre-priced; MEDICINE lines are priced from the pharmacy service
// by item id.
type BillDetailRequest struct {
	ItemType          models.ItemType `json:"itemType"`
	ItemID            uint            `json:"itemId"`
	Quantity          int             `json:"quantity"`
	UnitPrice         int64           `json:"unitPrice"`
	InsuranceDiscount int64           `json:"insuranceDiscount"`
}

// CreateBillRequest carries the billing data for one appointment.
type CreateBillRequest struct {
	AppointmentID uint                `json:"appointmentId"`
	Details       []BillDetailRequest `json:"details"`
}

// CreateBill creates a bill with its detail rows and computed totals:
// totalCost = sum of line totals, amount = totalCost - insurance discounts.
func (s *BillService) CreateBill(ctx context.Context, req CreateBillRequest) (*models.Bill, error) {
	bill := &models.Bill{
		AppointmentID: req.AppointmentID,
		Status:        models.BillStatusUnpaid,
	}

	for _, d := range req.Details {
		quantity := d.Quantity
		if quantity < 1 {
			quantity = 1
		}

		detail := models.BillDetail{
			ItemType:          d.ItemType,
			ItemID:            d.ItemID,
			Quantity:          quantity,
			UnitPrice:         d.UnitPrice,
			InsuranceDiscount: d.InsuranceDiscount,
		}

		if d.ItemType == models.ItemTypeMedicine {
			medicine, err := s.pharmacy.GetMedicine(ctx, d.ItemID)
			if err != nil {
				return nil, fmt.Errorf("pricing medicine item %d: %w", d.ItemID, err)
			}
			detail.ItemID = medicine.MedicineID
			detail.UnitPrice = medicine.Price
			detail.InsuranceDiscount = medicine.InsuranceDiscount * int64(quantity)
		}

		detail.TotalPrice = detail.UnitPrice * int64(quantity)

		bill.TotalCost += detail.TotalPrice
		bill.InsuranceDiscount += detail.InsuranceDiscount
		bill.Details = append(bill.Details, detail)
	}
	bill.Amount = bill.TotalCost - bill.InsuranceDiscount

	if err := s.bills.Create(bill); err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}
	return bill, nil
}

// GetBill returns one bill with its details.
func (s *BillService) GetBill(id uint) (*models.Bill, error) {
	bill, err := s.bills.FindByID(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	return bill, nil
}

// ListBills returns a page of bills. Page is 1-based; size outside [1,100]
// falls back to 10.
func (s *BillService) ListBills(page, size int) (*models.PagedBills, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}

	bills, total, err := s.bills.FindAll(page, size)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}

	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}

	return &models.PagedBills{
		Bills:      bills,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
	}, nil
}

// UpdateBill rebinds a bill to another appointment. Payment status is not
// updatable here: bills become PAID only through a successful transaction.
func (s *BillService) UpdateBill(id uint, appointmentID uint) (*models.Bill, error) {
	if err := s.bills.UpdateAppointment(id, appointmentID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	return s.GetBill(id)
}

// DeleteBill removes a bill and its owned details.
func (s *BillService) DeleteBill(id uint) error {
	if err := s.bills.Delete(id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrBillNotFound
		}
		return err
	}
	return nil
}

// GetBillDetails returns the detail rows of one bill.
func (s *BillService) GetBillDetails(id uint) ([]models.BillDetail, error) {
	bill, err := s.GetBill(id)
	if err != nil {
		return nil, err
	}
	return bill.Details, nil
}
