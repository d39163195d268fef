package ward

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRoom_AssignRelease(t *testing.T) {
	r := &Room{RoomNo: "101", Type: RoomGeneral, Available: true}
	pid := uuid.New()

	if err := r.Assign(pid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Available || r.AssignedPatientID == nil || *r.AssignedPatientID != pid {
		t.Fatalf("expected room held by %s, got %+v", pid, r)
	}
	if err := r.Assign(uuid.New()); !errors.Is(err, ErrRoomUnavailable) {
		t.Errorf("expected ErrRoomUnavailable, got %v", err)
	}

	if err := r.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Available || r.AssignedPatientID != nil {
		t.Errorf("expected free room, got %+v", r)
	}
}

func TestRoom_Release_Empty(t *testing.T) {
	r := &Room{RoomNo: "7B", Available: true}
	err := r.Release()
	if !errors.Is(err, ErrNoRoomAssigned) {
		t.Fatalf("expected ErrNoRoomAssigned, got %v", err)
	}
	if !strings.Contains(err.Error(), "7B") {
		t.Errorf("error must name the room, got %v", err)
	}
}

func TestRoomType_Valid(t *testing.T) {
	for _, rt := range []RoomType{RoomICU, RoomGeneral, RoomPrivate} {
		if !rt.Valid() {
			t.Errorf("%s should be valid", rt)
		}
	}
	if RoomType("Suite").Valid() {
		t.Error("unknown type should be invalid")
	}
}
