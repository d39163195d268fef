package ward

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/carepoint/hms/internal/platform/db"
)

type mockRoomRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Room
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{items: make(map[uuid.UUID]*Room)}
}

func (m *mockRoomRepo) Create(_ context.Context, r *Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = uuid.New()
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *mockRoomRepo) GetByID(_ context.Context, id uuid.UUID) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRoomRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Room, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRoomRepo) FindByPatientForUpdate(_ context.Context, patientID uuid.UUID) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.items {
		if r.AssignedPatientID != nil && *r.AssignedPatientID == patientID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRoomRepo) Update(_ context.Context, r *Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *mockRoomRepo) matching(f ListFilter) []*Room {
	var out []*Room
	for _, r := range m.items {
		if f.Ward != "" && r.Ward != f.Ward {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.AvailableOnly && !r.Available {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (m *mockRoomRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Room, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.matching(f)
	return out, len(out), nil
}

func (m *mockRoomRepo) Occupancy(_ context.Context, f ListFilter) (Occupancy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var o Occupancy
	for _, r := range m.matching(f) {
		o.Total++
		if r.Available {
			o.Available++
		}
	}
	o.Occupied = o.Total - o.Available
	return o, nil
}

func newTestService() *Service {
	return NewService(newMockRoomRepo(), db.NopTxRunner{})
}

func mustRoom(t *testing.T, svc *Service, no string, rt RoomType) *Room {
	t.Helper()
	r := &Room{RoomNo: no, Type: rt, Ward: "North"}
	if err := svc.Create(context.Background(), r); err != nil {
		t.Fatalf("create room: %v", err)
	}
	return r
}

func TestService_Create(t *testing.T) {
	svc := newTestService()
	r := &Room{RoomNo: " 12 ", Ward: "East"}
	if err := svc.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.RoomNo != "12" || r.Type != RoomGeneral || !r.Available {
		t.Errorf("unexpected room: %+v", r)
	}

	if err := svc.Create(context.Background(), &Room{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing number: expected ErrInvalidInput, got %v", err)
	}
	if err := svc.Create(context.Background(), &Room{RoomNo: "1", Type: "Suite"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad type: expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Assign(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	a := mustRoom(t, svc, "101", RoomICU)
	b := mustRoom(t, svc, "102", RoomGeneral)
	pid := uuid.New()

	got, err := svc.Assign(ctx, a.ID, pid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Available {
		t.Error("assigned room must be unavailable")
	}

	if _, err := svc.Assign(ctx, a.ID, uuid.New()); !errors.Is(err, ErrRoomUnavailable) {
		t.Errorf("occupied room: expected ErrRoomUnavailable, got %v", err)
	}
	if _, err := svc.Assign(ctx, b.ID, pid); !errors.Is(err, ErrPatientHasRoom) {
		t.Errorf("second room: expected ErrPatientHasRoom, got %v", err)
	}
	if _, err := svc.Assign(ctx, uuid.New(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing room: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Assign(ctx, b.ID, uuid.Nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil patient: expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Release(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	r := mustRoom(t, svc, "201", RoomPrivate)

	if _, err := svc.Release(ctx, r.ID); !errors.Is(err, ErrNoRoomAssigned) {
		t.Errorf("empty room: expected ErrNoRoomAssigned, got %v", err)
	}
	_, _ = svc.Assign(ctx, r.ID, uuid.New())
	got, err := svc.Release(ctx, r.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Available || got.AssignedPatientID != nil {
		t.Errorf("expected free room, got %+v", got)
	}
}

func TestService_ReleaseForPatient(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	r := mustRoom(t, svc, "301", RoomGeneral)
	pid := uuid.New()

	got, err := svc.ReleaseForPatient(ctx, pid)
	if err != nil || got != nil {
		t.Fatalf("no room held: expected (nil, nil), got (%v, %v)", got, err)
	}

	_, _ = svc.Assign(ctx, r.ID, pid)
	got, err = svc.ReleaseForPatient(ctx, pid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != r.ID || !got.Available {
		t.Errorf("expected room %s released, got %+v", r.RoomNo, got)
	}
	stored, _ := svc.Get(ctx, r.ID)
	if !stored.Available {
		t.Error("release must be persisted")
	}
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	a := mustRoom(t, svc, "1", RoomICU)
	mustRoom(t, svc, "2", RoomICU)
	mustRoom(t, svc, "3", RoomGeneral)
	_, _ = svc.Assign(ctx, a.ID, uuid.New())

	items, total, occ, err := svc.List(ctx, ListFilter{Type: RoomICU}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 ICU rooms, got %d", total)
	}
	if occ != (Occupancy{Total: 2, Available: 1, Occupied: 1}) {
		t.Errorf("unexpected occupancy: %+v", occ)
	}

	if _, _, _, err := svc.List(ctx, ListFilter{Type: "Suite"}, 20, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
