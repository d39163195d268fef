package billing

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/hms/internal/platform/db"
)

type mockBillRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Bill
}

func newMockBillRepo() *mockBillRepo {
	return &mockBillRepo{items: make(map[uuid.UUID]*Bill)}
}

func (m *mockBillRepo) Create(_ context.Context, b *Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = uuid.New()
	b.CreatedAt = time.Now().Add(time.Duration(len(m.items)) * time.Millisecond)
	cp := *b
	m.items[b.ID] = &cp
	return nil
}

func (m *mockBillRepo) GetByID(_ context.Context, id uuid.UUID) (*Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBillRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return m.GetByID(ctx, id)
}

func (m *mockBillRepo) Update(_ context.Context, b *Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[b.ID]; !ok {
		return ErrNotFound
	}
	cp := *b
	m.items[b.ID] = &cp
	return nil
}

func (m *mockBillRepo) byPatient(patientID uuid.UUID) []*Bill {
	var out []*Bill
	for _, b := range m.items {
		if b.PatientID == patientID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockBillRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Bill, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.byPatient(patientID)
	return all, len(all), nil
}

func (m *mockBillRepo) LatestByPatient(_ context.Context, patientID uuid.UUID) (*Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.byPatient(patientID)
	if len(all) == 0 {
		return nil, ErrNotFound
	}
	return all[0], nil
}

func (m *mockBillRepo) FindOpenForUpdate(_ context.Context, patientID uuid.UUID) (*Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.byPatient(patientID) {
		if !b.IsFinalized() {
			return b, nil
		}
	}
	return nil, ErrNotFound
}

type capturePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (c *capturePublisher) Publish(_ context.Context, key string, _ interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, key)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func newTestService() (*Service, *mockBillRepo, *capturePublisher) {
	repo := newMockBillRepo()
	events := &capturePublisher{}
	svc := NewService(repo, db.NopTxRunner{})
	svc.SetPublisher(events)
	return svc, repo, events
}

func TestService_CreateBill(t *testing.T) {
	svc, _, _ := newTestService()
	b := &Bill{PatientID: uuid.New(), TreatmentCost: dec("70"), MedicineCost: dec("30")}
	if err := svc.CreateBill(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if !b.TotalAmount.Equal(dec("100")) {
		t.Errorf("expected total 100, got %s", b.TotalAmount)
	}
	if b.PaymentStatus != StatusPending {
		t.Errorf("expected Pending, got %s", b.PaymentStatus)
	}
	if b.BillNo == "" {
		t.Error("expected bill number")
	}
}

func TestService_CreateBill_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.CreateBill(context.Background(), &Bill{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing patient: expected ErrInvalidInput, got %v", err)
	}
	b := &Bill{PatientID: uuid.New(), TreatmentCost: dec("-1")}
	if err := svc.CreateBill(context.Background(), b); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("negative cost: expected ErrNegativeAmount, got %v", err)
	}
}

func TestService_CreateBill_OneOpenBillPerPatient(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()
	pid := uuid.New()

	first := &Bill{PatientID: pid, TreatmentCost: dec("10")}
	if err := svc.CreateBill(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := &Bill{PatientID: pid, TreatmentCost: dec("20")}
	if err := svc.CreateBill(ctx, second); !errors.Is(err, ErrOpenBillExists) {
		t.Fatalf("expected ErrOpenBillExists, got %v", err)
	}
	if len(repo.items) != 1 {
		t.Errorf("expected 1 bill, got %d", len(repo.items))
	}

	stored, _ := svc.GetBill(ctx, first.ID)
	_ = stored.Finalize(time.Now())
	_ = svc.Save(ctx, stored)
	if err := svc.CreateBill(ctx, second); err != nil {
		t.Fatalf("create after finalize: %v", err)
	}
	if second.ID == first.ID || len(repo.items) != 2 {
		t.Errorf("expected a second bill, got %d bills", len(repo.items))
	}
}

func TestService_ApplyPayment(t *testing.T) {
	ctx := context.Background()

	svc, repo, events := newTestService()
	b := &Bill{PatientID: uuid.New(), TreatmentCost: dec("70"), MedicineCost: dec("30")}
	if err := svc.CreateBill(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, paid, err := svc.ApplyPayment(ctx, b.ID, dec("100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !paid || got.PaymentStatus != StatusPaid {
		t.Errorf("expected Paid/true, got %s/%v", got.PaymentStatus, paid)
	}
	stored, _ := repo.GetByID(ctx, b.ID)
	if stored.PaymentStatus != StatusPaid {
		t.Errorf("expected stored status Paid, got %s", stored.PaymentStatus)
	}
	if len(events.keys) != 1 || events.keys[0] != "bill.payment_applied" {
		t.Errorf("expected one payment event, got %v", events.keys)
	}

	b2 := &Bill{PatientID: uuid.New(), TreatmentCost: dec("70"), MedicineCost: dec("30")}
	_ = svc.CreateBill(ctx, b2)
	got, paid, err = svc.ApplyPayment(ctx, b2.ID, dec("50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid || got.PaymentStatus != StatusPartial {
		t.Errorf("expected Partial/false, got %s/%v", got.PaymentStatus, paid)
	}
}

func TestService_ApplyPayment_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _, events := newTestService()

	if _, _, err := svc.ApplyPayment(ctx, uuid.New(), dec("10")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	b := &Bill{PatientID: uuid.New(), TreatmentCost: dec("10")}
	_ = svc.CreateBill(ctx, b)
	if _, _, err := svc.ApplyPayment(ctx, b.ID, dec("-1")); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
	if len(events.keys) != 0 {
		t.Errorf("failed payments must not publish, got %v", events.keys)
	}
}

func TestService_Accumulate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	b := &Bill{PatientID: uuid.New()}
	_ = svc.CreateBill(ctx, b)

	got, err := svc.Accumulate(ctx, b.ID, dec("25"), dec("5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.TotalAmount.Equal(dec("30")) {
		t.Errorf("expected 30, got %s", got.TotalAmount)
	}

	fetched, _ := svc.GetBill(ctx, b.ID)
	_ = fetched.Finalize(time.Now())
	_ = svc.Save(ctx, fetched)
	if _, err := svc.Accumulate(ctx, b.ID, dec("1"), dec("1")); !errors.Is(err, ErrBillFinalized) {
		t.Errorf("expected ErrBillFinalized, got %v", err)
	}
}

func TestService_FindOrCreateOpen(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()
	pid := uuid.New()

	first, err := svc.FindOrCreateOpen(ctx, pid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == uuid.Nil || !first.TotalAmount.IsZero() {
		t.Fatalf("expected a new empty bill, got %+v", first)
	}

	again, err := svc.FindOrCreateOpen(ctx, pid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != first.ID {
		t.Error("expected the open bill to be reused")
	}

	_ = again.Finalize(time.Now())
	_ = svc.Save(ctx, again)
	third, err := svc.FindOrCreateOpen(ctx, pid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third.ID == first.ID {
		t.Error("a finalized bill must not be reopened")
	}
	if len(repo.items) != 2 {
		t.Errorf("expected 2 bills, got %d", len(repo.items))
	}
}

func TestService_LatestForPatient(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	pid := uuid.New()
	if _, err := svc.LatestForPatient(ctx, pid); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	b := &Bill{PatientID: pid, TreatmentCost: dec("1")}
	_ = svc.CreateBill(ctx, b)
	got, err := svc.LatestForPatient(ctx, pid)
	if err != nil || got.ID != b.ID {
		t.Errorf("expected latest bill %s, got %v (%v)", b.ID, got, err)
	}
	list, total, err := svc.ListByPatient(ctx, pid, 20, 0)
	if err != nil || total != 1 || len(list) != 1 {
		t.Errorf("expected one bill, got %d (%v)", total, err)
	}
}
