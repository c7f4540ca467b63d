package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medibill/internal/config"
	"medibill/internal/models"
	"medibill/internal/payment"
)

// orderCodeFactor packs the bill id into the high digits of an order code.
// The low digits distinguish attempts, so retries for the same bill never
// reuse a code while the bill id stays recoverable from any callback.
const orderCodeFactor = 1_000_000

// PaymentService drives payment attempts for bills: online checkout links,
// asynchronous gateway confirmations and synchronous cash settlement. All
// mutating paths run inside a per-bill lock so at most one of them commits at
// a time.
type PaymentService struct {
	uow     models.UnitOfWork
	gateway payment.Gateway
	cfg     config.PayOSConfig
	logger  *zap.Logger
	now     func() time.Time
}

func NewPaymentService(uow models.UnitOfWork, gateway payment.Gateway, cfg config.PayOSConfig, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		uow:     uow,
		gateway: gateway,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// CreatePaymentLink creates a hosted checkout link for an unpaid bill and
// records a PENDING transaction for the attempt. A still-PENDING prior
// attempt is superseded first: its remote link is cancelled best-effort and
// the local row moves to FAILED, so at most one attempt is ever live.
func (s *PaymentService) CreatePaymentLink(ctx context.Context, billID uint) (string, error) {
	var checkoutURL string

	err := s.uow.WithBillLock(ctx, billID, func(bills models.BillStore, txns models.TransactionStore) error {
		bill, err := bills.FindByID(billID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return ErrBillNotFound
			}
			return err
		}
		if bill.Status == models.BillStatusPaid {
			return ErrAlreadyPaid
		}
		if bill.Amount <= 0 {
			return ErrInvalidAmount
		}

		latest, err := txns.FindLatestByBillID(billID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return err
		}
		if latest != nil && latest.Status == models.TransactionStatusPending {
			// Best-effort remote cancel; a flaky provider must never block
			// the local supersession.
			if cancelErr := s.gateway.CancelLink(ctx, latest.OrderCode, "superseded by a new payment attempt"); cancelErr != nil {
				s.logger.Warn("cancel of superseded payment link failed",
					zap.Uint("billId", billID),
					zap.Int64("orderCode", latest.OrderCode),
					zap.Error(cancelErr))
			}
			if err := txns.UpdateStatus(latest.ID, models.TransactionStatusFailed); err != nil {
				return err
			}
		}

		orderCode := s.newOrderCode(billID)
		result, err := s.gateway.CreateLink(ctx, payment.LinkRequest{
			OrderCode:   orderCode,
			Amount:      bill.Amount,
			Description: fmt.Sprintf("Bill #%d payment", billID),
			ItemName:    fmt.Sprintf("Hospital bill #%d", billID),
			CancelURL:   fmt.Sprintf("%s?billId=%d", s.cfg.CancelURL, billID),
			ReturnURL:   fmt.Sprintf("%s?billId=%d", s.cfg.ReturnURL, billID),
		})
		if err != nil {
			return &GatewayError{Op: "create link", Err: err}
		}

		txn := &models.Transaction{
			BillID:          billID,
			OrderCode:       orderCode,
			Amount:          bill.Amount,
			PaymentMethod:   models.PaymentMethodOnlineBanking,
			TransactionDate: s.now(),
			Status:          models.TransactionStatusPending,
		}
		if err := txns.Create(txn); err != nil {
			return err
		}

		checkoutURL = result.CheckoutURL
		return nil
	})
	if err != nil {
		return "", s.translateLockErr(err)
	}
	return checkoutURL, nil
}

// HandleWebhook verifies a raw gateway callback and applies its outcome to
// the attempt the order code names. A callback for an already-PAID bill is a
// no-op, which makes provider redeliveries safe. All mutations for one
// callback commit atomically.
func (s *PaymentService) HandleWebhook(ctx context.Context, raw []byte) (*payment.WebhookResult, error) {
	result, err := s.gateway.VerifyWebhook(raw)
	if err != nil {
		if errors.Is(err, payment.ErrSignatureInvalid) {
			return nil, ErrSignatureInvalid
		}
		return nil, fmt.Errorf("verify webhook: %w", err)
	}

	billID := billIDFromOrderCode(result.OrderCode)
	err = s.uow.WithBillLock(ctx, billID, func(bills models.BillStore, txns models.TransactionStore) error {
		bill, err := bills.FindByID(billID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return ErrBillNotFound
			}
			return err
		}
		if bill.Status == models.BillStatusPaid {
			// Duplicate delivery for a settled bill; nothing to apply.
			s.logger.Info("webhook for already paid bill ignored",
				zap.Uint("billId", billID),
				zap.Int64("orderCode", result.OrderCode))
			return nil
		}

		txn, err := txns.FindByOrderCode(result.OrderCode)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				// A callback for an attempt never recorded locally.
				return ErrTransactionNotFound
			}
			return err
		}

		if !result.Success {
			if txn.Status == models.TransactionStatusPending {
				return txns.UpdateStatus(txn.ID, models.TransactionStatusFailed)
			}
			return nil
		}

		if err := txns.UpdateStatus(txn.ID, models.TransactionStatusSuccess); err != nil {
			return err
		}
		return bills.UpdateStatus(billID, models.BillStatusPaid)
	})
	if err != nil {
		return nil, s.translateLockErr(err)
	}
	return result, nil
}

// ProcessCashPayment settles a bill at the counter: one SUCCESS transaction
// and the PAID flip commit together. Cash has no PENDING state and no
// gateway involvement.
func (s *PaymentService) ProcessCashPayment(ctx context.Context, billID uint) error {
	err := s.uow.WithBillLock(ctx, billID, func(bills models.BillStore, txns models.TransactionStore) error {
		bill, err := bills.FindByID(billID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return ErrBillNotFound
			}
			return err
		}
		if bill.Status == models.BillStatusPaid {
			return ErrAlreadyPaid
		}

		txn := &models.Transaction{
			BillID:          billID,
			OrderCode:       s.newOrderCode(billID),
			Amount:          bill.Amount,
			PaymentMethod:   models.PaymentMethodCash,
			TransactionDate: s.now(),
			Status:          models.TransactionStatusSuccess,
		}
		if err := txns.Create(txn); err != nil {
			return err
		}
		return bills.UpdateStatus(billID, models.BillStatusPaid)
	})
	return s.translateLockErr(err)
}

// GetPaymentInfo fetches the provider's state of a payment link.
func (s *PaymentService) GetPaymentInfo(ctx context.Context, orderCode int64) (*payment.LinkInfo, error) {
	info, err := s.gateway.GetInfo(ctx, orderCode)
	if err != nil {
		s.logger.Error("payment info lookup failed", zap.Int64("orderCode", orderCode), zap.Error(err))
		return nil, &GatewayError{Op: "get info", Err: err}
	}
	return info, nil
}

// CancelPayment cancels a payment link at the provider. It does not touch
// local transaction state; a superseding link creation or webhook does that.
func (s *PaymentService) CancelPayment(ctx context.Context, orderCode int64) error {
	if err := s.gateway.CancelLink(ctx, orderCode, "cancelled by hospital staff"); err != nil {
		s.logger.Error("payment cancel failed", zap.Int64("orderCode", orderCode), zap.Error(err))
		return &GatewayError{Op: "cancel", Err: err}
	}
	return nil
}

func (s *PaymentService) newOrderCode(billID uint) int64 {
	return int64(billID)*orderCodeFactor + s.now().UnixMilli()%orderCodeFactor
}

func billIDFromOrderCode(orderCode int64) uint {
	return uint(orderCode / orderCodeFactor)
}

// translateLockErr maps storage-level outcomes of a locked unit to the
// service taxonomy: a missing bill row fails the lock acquisition itself,
// and serialization failures surface as ErrConflict.
func (s *PaymentService) translateLockErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrNotFound):
		return ErrBillNotFound
	case errors.Is(err, models.ErrConflict):
		return ErrConflict
	default:
		return err
	}
}
