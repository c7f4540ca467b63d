package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"medibill/internal/service"
)

// TransactionHandler exposes payment attempt endpoints: link creation, cash
// settlement, the gateway webhook and provider passthroughs.
type TransactionHandler struct {
	payments *service.PaymentService
	logger   *zap.Logger
}

func NewTransactionHandler(payments *service.PaymentService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{payments: payments, logger: logger}
}

// CreatePayment handles POST /transactions/create-payment/:billId.
func (h *TransactionHandler) CreatePayment(c echo.Context) error {
	billID, err := pathID(c, "billId")
	if err != nil {
		return failResponse(c, http.StatusBadRequest, err.Error())
	}

	checkoutURL, err := h.payments.CreatePaymentLink(c.Request().Context(), billID)
	if err != nil {
		h.logger.Error("create payment link failed", zap.Uint("billId", billID), zap.Error(err))
		return errorResponse(c, err)
	}
	return okResponse(c, "success", map[string]string{"checkoutUrl": checkoutURL})
}

// CashPayment handles POST /transactions/cash-payment/:billId.
func (h *TransactionHandler) CashPayment(c echo.Context) error {
	billID, err := pathID(c, "billId")
	if err != nil {
		return failResponse(c, http.StatusBadRequest, err.Error())
	}

	if err := h.payments.ProcessCashPayment(c.Request().Context(), billID); err != nil {
		h.logger.Error("cash payment failed", zap.Uint("billId", billID), zap.Error(err))
		return errorResponse(c, err)
	}
	return okResponse(c, "cash payment recorded", nil)
}

// Webhook handles POST /transactions/webhook, the provider-signed callback.
func (h *TransactionHandler) Webhook(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil || len(raw) == 0 {
		return failResponse(c, http.StatusBadRequest, "empty webhook payload")
	}

	result, err := h.payments.HandleWebhook(c.Request().Context(), raw)
	if err != nil {
		h.logger.Error("webhook processing failed", zap.Error(err))
		return errorResponse(c, err)
	}
	return okResponse(c, "webhook delivered", result)
}

// GetPaymentInfo handles GET /transactions/:orderId.
func (h *TransactionHandler) GetPaymentInfo(c echo.Context) error {
	orderCode, err := orderCodeParam(c)
	if err != nil {
		return failResponse(c, http.StatusBadRequest, err.Error())
	}

	info, err := h.payments.GetPaymentInfo(c.Request().Context(), orderCode)
	if err != nil {
		return errorResponse(c, err)
	}
	return okResponse(c, "success", info)
}

// CancelPayment handles PUT /transactions/:orderId/cancel.
func (h *TransactionHandler) CancelPayment(c echo.Context) error {
	orderCode, err := orderCodeParam(c)
	if err != nil {
		return failResponse(c, http.StatusBadRequest, err.Error())
	}

	if err := h.payments.CancelPayment(c.Request().Context(), orderCode); err != nil {
		return errorResponse(c, err)
	}
	return okResponse(c, "payment cancelled", nil)
}

func orderCodeParam(c echo.Context) (int64, error) {
	orderCode, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || orderCode <= 0 {
		return 0, errInvalidOrderID
	}
	return orderCode, nil
}
