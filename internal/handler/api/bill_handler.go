package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"medibill/internal/service"
)

// BillHandler exposes bill management endpoints.
type BillHandler struct {
	billing *service.BillService
	logger  *zap.Logger
}

func NewBillHandler(billing *service.BillService, logger *zap.Logger) *BillHandler {
	return &BillHandler{billing: billing, logger: logger}
}

// Create handles POST /bills.
func (h *BillHandler) Create(c echo.Context) error {
	var req service.CreateBillRequest
	if err := c.Bind(&req); err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}

	bill, err := h.billing.CreateBill(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("create bill failed", zap.Uint("appointmentId", req.AppointmentID), zap.Error(err))
		return errorResponse(c, err)
	}
	return createdResponse(c, "success", bill)
}

// List handles GET /bills?page&size.
func (h *BillHandler) List(c echo.Context) error {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 10)

	result, err := h.billing.ListBills(page, size)
	if err != nil {
		h.logger.Error("list bills failed", zap.Int("page", page), zap.Error(err))
		return errorResponse(c, err)
	}
	return okResponse(c, "success", result)
}

// Get handles GET /bills/:billId.
func (h *BillHandler) Get(c echo.Context) error {
	billID, err := pathID(c, "billId")
	if err != nil {
		return failResponse(c, http.StatusBadRequest, err.Error())
	}

	bill, err := h.billing.GetBill(billID)
	if err != nil {
		h.logger.Warn("get bill failed", zap.Uint("billId", billID), zap.Error(err))
		return errorResponse(c, err)
	}
	return okResponse(c, "success", bill)
}

// GetDetails handles GET /bills/:billId/details.
func (h *BillHandler) GetDetails(c echo.Context) error {
	billID, err := pathID(c, "billId")
	if err != nil {
		return failResponse(c, http.StatusBadRequest, err.Error())
	}

	details, err := h.billing.GetBillDetails(billID)
	if err != nil {
		h.logger.Warn("get bill details failed", zap.Uint("billId", billID), zap.Error(err))
		return errorResponse(c, err)
	}
	return okResponse(c, "success", details)
}

// Update handles PUT /bills/:billId. Only the appointment binding is
// updatable; payment status moves through transactions.
func (h *BillHandler) Update(c echo.Context) error {
	billID, err := pathID(c, "billId")
	if err != nil {
		return failResponse(c, http.StatusBadRequest, err.Error())
	}

	var req struct {
		AppointmentID uint `json:"appointmentId"`
	}
	if err := c.Bind(&req); err != nil || req.AppointmentID == 0 {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}

	bill, err := h.billing.UpdateBill(billID, req.AppointmentID)
	if err != nil {
		h.logger.Warn("update bill failed", zap.Uint("billId", billID), zap.Error(err))
		return errorResponse(c, err)
	}
	return okResponse(c, "success", bill)
}

// Delete handles DELETE /bills/:billId.
func (h *BillHandler) Delete(c echo.Context) error {
	billID, err := pathID(c, "billId")
	if err != nil {
		return failResponse(c, http.StatusBadRequest, err.Error())
	}

	if err := h.billing.DeleteBill(billID); err != nil {
		h.logger.Warn("delete bill failed", zap.Uint("billId", billID), zap.Error(err))
		return errorResponse(c, err)
	}
	return okResponse(c, "bill deleted", nil)
}
