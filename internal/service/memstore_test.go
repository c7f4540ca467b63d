package service

import (
	"context"
	"sync"
	"time"

	"medibill/internal/models"
	"medibill/internal/payment"
)

// memStore is an in-memory BillStore + TransactionStore + UnitOfWork.
// WithBillLock snapshots state and restores it when fn fails, mirroring the
// rollback behavior of the database adapter.
type memStore struct {
	mu         sync.Mutex
	bills      map[uint]*models.Bill
	txns       []*models.Transaction
	nextBillID uint
	nextTxnID  uint

	txnCreateErr error
}

func newMemStore() *memStore {
	return &memStore{bills: make(map[uint]*models.Bill)}
}

func (m *memStore) Create(bill *models.Bill) error {
	m.nextBillID++
	bill.ID = m.nextBillID
	bill.CreatedAt = time.Now()
	for i := range bill.Details {
		bill.Details[i].BillID = bill.ID
	}
	clone := *bill
	m.bills[bill.ID] = &clone
	return nil
}

func (m *memStore) FindByID(id uint) (*models.Bill, error) {
	bill, ok := m.bills[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *bill
	return &clone, nil
}

func (m *memStore) FindAll(page, size int) ([]models.Bill, int64, error) {
	all := make([]models.Bill, 0, len(m.bills))
	for _, b := range m.bills {
		all = append(all, *b)
	}
	total := int64(len(all))
	start := (page - 1) * size
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *memStore) UpdateAppointment(id uint, appointmentID uint) error {
	bill, ok := m.bills[id]
	if !ok {
		return models.ErrNotFound
	}
	bill.AppointmentID = appointmentID
	return nil
}

func (m *memStore) UpdateStatus(id uint, status models.BillStatus) error {
	bill, ok := m.bills[id]
	if !ok {
		return models.ErrNotFound
	}
	bill.Status = status
	return nil
}

func (m *memStore) Delete(id uint) error {
	if _, ok := m.bills[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.bills, id)
	return nil
}

func (m *memStore) CreateTxn(txn *models.Transaction) error {
	if m.txnCreateErr != nil {
		return m.txnCreateErr
	}
	m.nextTxnID++
	txn.ID = m.nextTxnID
	txn.CreatedAt = time.Now()
	clone := *txn
	m.txns = append(m.txns, &clone)
	return nil
}

func (m *memStore) FindTxnByID(id uint) (*models.Transaction, error) {
	for _, t := range m.txns {
		if t.ID == id {
			clone := *t
			return &clone, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) FindByOrderCode(orderCode int64) (*models.Transaction, error) {
	for _, t := range m.txns {
		if t.OrderCode == orderCode {
			clone := *t
			return &clone, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) FindLatestByBillID(billID uint) (*models.Transaction, error) {
	var latest *models.Transaction
	for _, t := range m.txns {
		if t.BillID == billID && (latest == nil || t.ID > latest.ID) {
			latest = t
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	clone := *latest
	return &clone, nil
}

func (m *memStore) UpdateTxnStatus(id uint, status models.TransactionStatus) error {
	for _, t := range m.txns {
		if t.ID == id {
			t.Status = status
			return nil
		}
	}
	return models.ErrNotFound
}

// txnView adapts memStore to models.TransactionStore (method names collide
// with the bill side on the same struct).
type txnView struct{ m *memStore }

func (v txnView) Create(txn *models.Transaction) error { return v.m.CreateTxn(txn) }
func (v txnView) FindByOrderCode(orderCode int64) (*models.Transaction, error) {
	return v.m.FindByOrderCode(orderCode)
}
func (v txnView) FindLatestByBillID(billID uint) (*models.Transaction, error) {
	return v.m.FindLatestByBillID(billID)
}
func (v txnView) UpdateStatus(id uint, status models.TransactionStatus) error {
	return v.m.UpdateTxnStatus(id, status)
}

func (m *memStore) WithBillLock(ctx context.Context, billID uint, fn func(bills models.BillStore, txns models.TransactionStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bills[billID]; !ok {
		return models.ErrNotFound
	}

	billsSnapshot := make(map[uint]*models.Bill, len(m.bills))
	for id, b := range m.bills {
		clone := *b
		billsSnapshot[id] = &clone
	}
	txnsSnapshot := make([]*models.Transaction, len(m.txns))
	for i, t := range m.txns {
		clone := *t
		txnsSnapshot[i] = &clone
	}
	nextTxnID := m.nextTxnID

	if err := fn(m, txnView{m}); err != nil {
		m.bills = billsSnapshot
		m.txns = txnsSnapshot
		m.nextTxnID = nextTxnID
		return err
	}
	return nil
}

// pendingCount returns the number of PENDING transactions for a bill.
func (m *memStore) pendingCount(billID uint) int {
	n := 0
	for _, t := range m.txns {
		if t.BillID == billID && t.Status == models.TransactionStatusPending {
			n++
		}
	}
	return n
}

// fakeGateway is a scriptable payment.Gateway.
type fakeGateway struct {
	created   []payment.LinkRequest
	createErr error

	cancelled []int64
	cancelErr error

	verifyResult *payment.WebhookResult
	verifyErr    error

	info    *payment.LinkInfo
	infoErr error
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreateLink(_ context.Context, req payment.LinkRequest) (*payment.LinkResult, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, req)
	return &payment.LinkResult{CheckoutURL: "https://pay.example.com/checkout/abc123"}, nil
}

func (g *fakeGateway) VerifyWebhook(_ []byte) (*payment.WebhookResult, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verifyResult, nil
}

func (g *fakeGateway) GetInfo(_ context.Context, orderCode int64) (*payment.LinkInfo, error) {
	if g.infoErr != nil {
		return nil, g.infoErr
	}
	if g.info != nil {
		return g.info, nil
	}
	return &payment.LinkInfo{OrderCode: orderCode, Status: "PENDING"}, nil
}

func (g *fakeGateway) CancelLink(_ context.Context, orderCode int64, _ string) error {
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.cancelled = append(g.cancelled, orderCode)
	return nil
}
