package ward

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RoomType string

const (
	RoomICU     RoomType = "ICU"
	RoomGeneral RoomType = "General"
	RoomPrivate RoomType = "Private"
)

func (t RoomType) Valid() bool {
	switch t {
	case RoomICU, RoomGeneral, RoomPrivate:
		return true
	}
	return false
}

// Room is a bed in a ward. Available is true exactly when no patient is
// assigned.
type Room struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	RoomNo            string     `db:"room_no" json:"room_no"`
	Type              RoomType   `db:"type" json:"type"`
	Ward              string     `db:"ward" json:"ward"`
	Available         bool       `db:"available" json:"available"`
	AssignedPatientID *uuid.UUID `db:"assigned_patient_id" json:"assigned_patient_id,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

func (r *Room) Assign(patientID uuid.UUID) error {
	if !r.Available {
		return fmt.Errorf("%w: room %s", ErrRoomUnavailable, r.RoomNo)
	}
	r.AssignedPatientID = &patientID
	r.Available = false
	return nil
}

func (r *Room) Release() error {
	if r.AssignedPatientID == nil {
		return fmt.Errorf("%w: room %s has no assigned patient to discharge", ErrNoRoomAssigned, r.RoomNo)
	}
	r.AssignedPatientID = nil
	r.Available = true
	return nil
}

// Occupancy summarizes the rooms of a listing.
type Occupancy struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Occupied  int `json:"occupied"`
}
