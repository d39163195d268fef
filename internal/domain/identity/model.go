package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entity is what the info and status endpoints need from a patient, doctor
// or nurse.
type Entity interface {
	Info() map[string]interface{}
	ToggleStatus()
}

// Kind names an entity collection as it appears in URLs.
type Kind string

const (
	KindPatient Kind = "patients"
	KindDoctor  Kind = "doctors"
	KindNurse   Kind = "nurses"
)

var Departments = []string{
	"Cardiologist",
	"Dermatologists",
	"Emergency Medicine Specialists",
	"Allergists/Immunologists",
	"Anesthesiologists",
	"Colon and Rectal Surgeons",
}

func validDepartment(d string) bool {
	for _, dep := range Departments {
		if dep == d {
			return true
		}
	}
	return false
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

type Patient struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	FirstName          string     `db:"first_name" json:"first_name"`
	LastName           string     `db:"last_name" json:"last_name"`
	Address            string     `db:"address" json:"address"`
	Mobile             string     `db:"mobile" json:"mobile"`
	Email              *string    `db:"email" json:"email,omitempty"`
	Symptoms           string     `db:"symptoms" json:"symptoms"`
	Age                *int       `db:"age" json:"age,omitempty"`
	Gender             *string    `db:"gender" json:"gender,omitempty"`
	AssignedDoctorID   *uuid.UUID `db:"assigned_doctor_id" json:"assigned_doctor_id,omitempty"`
	AssignedDoctorName string     `json:"assigned_doctor_name,omitempty"`
	AdmitDate          time.Time  `db:"admit_date" json:"admit_date"`
	Admitted           bool       `db:"admitted" json:"admitted"`
	Approved           bool       `db:"approved" json:"approved"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

func (p *Patient) Name() string { return fullName(p.FirstName, p.LastName) }

func (p *Patient) Info() map[string]interface{} {
	info := map[string]interface{}{
		"id":       p.ID,
		"name":     p.Name(),
		"age":      p.Age,
		"gender":   p.Gender,
		"address":  p.Address,
		"mobile":   p.Mobile,
		"email":    p.Email,
		"symptoms": p.Symptoms,
	}
	if p.AssignedDoctorName != "" {
		info["assigned_doctor"] = p.AssignedDoctorName
	} else {
		info["assigned_doctor"] = nil
	}
	return info
}

func (p *Patient) ToggleStatus() { p.Approved = !p.Approved }

type Doctor struct {
	ID         uuid.UUID `db:"id" json:"id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Address    string    `db:"address" json:"address"`
	Mobile     string    `db:"mobile" json:"mobile"`
	Department string    `db:"department" json:"department"`
	Approved   bool      `db:"approved" json:"approved"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (d *Doctor) Name() string { return fullName(d.FirstName, d.LastName) }

func (d *Doctor) Info() map[string]interface{} {
	return map[string]interface{}{"id": d.ID, "name": d.Name(), "department": d.Department}
}

func (d *Doctor) ToggleStatus() { d.Approved = !d.Approved }

type Nurse struct {
	ID           uuid.UUID `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Mobile       string    `db:"mobile" json:"mobile"`
	AssignedWard *string   `db:"assigned_ward" json:"assigned_ward,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (n *Nurse) Name() string { return fullName(n.FirstName, n.LastName) }

func (n *Nurse) Info() map[string]interface{} {
	return map[string]interface{}{"id": n.ID, "name": n.Name(), "assigned_ward": n.AssignedWard}
}

func (n *Nurse) ToggleStatus() { n.Active = !n.Active }

var (
	_ Entity = (*Patient)(nil)
	_ Entity = (*Doctor)(nil)
	_ Entity = (*Nurse)(nil)
)
