package models

import "time"

// BillStatus is the payment state of a bill. A bill becomes PAID only as a
// side effect of a transaction reaching SUCCESS and never leaves PAID.
type BillStatus string

const (
	BillStatusUnpaid BillStatus = "UNPAID"
	BillStatusPaid   BillStatus = "PAID"
)

// ItemType classifies a bill line item.
type ItemType string

const (
	ItemTypeConsultation ItemType = "CONSULTATION"
	ItemTypeMedicine     ItemType = "MEDICINE"
	ItemTypeService      ItemType = "SERVICE"
)

// Bill maps to the `bills` table. Amounts are whole VND.
type Bill struct {
	ID                uint         `gorm:"column:bill_id;primaryKey;autoIncrement" json:"billId"`
	AppointmentID     uint         `gorm:"column:appointment_id;index" json:"appointmentId"`
	TotalCost         int64        `gorm:"column:total_cost" json:"totalCost"`
	InsuranceDiscount int64        `gorm:"column:insurance_discount" json:"insuranceDiscount"`
	Amount            int64        `gorm:"column:amount" json:"amount"`
	Status            BillStatus   `gorm:"column:status;size:20;default:UNPAID" json:"status"`
	CreatedAt         time.Time    `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	Details           []BillDetail `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"details"`
}

func (Bill) TableName() string {
	return "bills"
}

// BillDetail maps to the `bill_details` table. Detail rows are owned by their
// bill: created with it and removed when it is deleted.
type BillDetail struct {
	ID                uint      `gorm:"column:detail_id;primaryKey;autoIncrement" json:"detailId"`
	BillID            uint      `gorm:"column:bill_id;index" json:"billId"`
	ItemType          ItemType  `gorm:"column:item_type;size:20" json:"itemType"`
	ItemID            uint      `gorm:"column:item_id" json:"itemId"`
	Quantity          int       `gorm:"column:quantity" json:"quantity"`
	UnitPrice         int64     `gorm:"column:unit_price" json:"unitPrice"`
	TotalPrice        int64     `gorm:"column:total_price" json:"totalPrice"`
	InsuranceDiscount int64     `gorm:"column:insurance_discount" json:"insuranceDiscount"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (BillDetail) TableName() string {
	return "bill_details"
}
