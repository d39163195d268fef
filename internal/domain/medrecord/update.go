package medrecord

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Update is one of SetDiagnosis, SetTreatment or SetFields.
type Update interface {
	apply(r *MedicalRecord)
	changesPrescription() bool
}

// SetDiagnosis replaces the diagnosis only.
type SetDiagnosis struct {
	Diagnosis string
}

func (u SetDiagnosis) apply(r *MedicalRecord)   { r.Diagnosis = u.Diagnosis }
func (SetDiagnosis) changesPrescription() bool { return false }

// SetTreatment replaces the prescribed treatment with a comma-joined list.
type SetTreatment struct {
	Treatment []string
}

func (u SetTreatment) apply(r *MedicalRecord) {
	r.PrescribedTreatment = strings.Join(u.Treatment, ", ")
}
func (SetTreatment) changesPrescription() bool { return true }

// SetFields sets whichever fields are non-nil.
type SetFields struct {
	Diagnosis           *string
	Treatment           *string
	TreatmentQuantities *string
	TestResults         json.RawMessage
}

func (u SetFields) apply(r *MedicalRecord) {
	if u.Diagnosis != nil {
		r.Diagnosis = *u.Diagnosis
	}
	if u.Treatment != nil {
		r.PrescribedTreatment = *u.Treatment
	}
	if u.TreatmentQuantities != nil {
		r.TreatmentQuantities = *u.TreatmentQuantities
	}
	if u.TestResults != nil {
		r.TestResults = u.TestResults
	}
}

func (u SetFields) changesPrescription() bool {
	return u.Treatment != nil || u.TreatmentQuantities != nil
}

// Apply mutates r. Prescription changes are refused once dispensed.
func Apply(r *MedicalRecord, u Update) error {
	if u.changesPrescription() && r.IsDispensed() {
		return fmt.Errorf("%w: record %s cannot change treatment", ErrAlreadyDispensed, r.RecordNo)
	}
	u.apply(r)
	return nil
}

// DecodeUpdate picks the variant from the JSON shape of body: a string is a
// diagnosis, an array is a treatment list, an object sets named fields.
func DecodeUpdate(body []byte) (Update, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty update")
	}

	switch body[0] {
	case '"':
		var d string
		if err := json.Unmarshal(body, &d); err != nil {
			return nil, fmt.Errorf("invalid diagnosis: %w", err)
		}
		return SetDiagnosis{Diagnosis: d}, nil
	case '[':
		var t []string
		if err := json.Unmarshal(body, &t); err != nil {
			return nil, fmt.Errorf("treatment list must contain strings: %w", err)
		}
		return SetTreatment{Treatment: t}, nil
	case '{':
		var raw struct {
			Diagnosis           *string         `json:"diagnosis"`
			Treatment           json.RawMessage `json:"treatment"`
			TreatmentQuantities *string         `json:"treatment_quantities"`
			TestResults         json.RawMessage `json:"test_results"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("invalid update object: %w", err)
		}
		u := SetFields{
			Diagnosis:           raw.Diagnosis,
			TreatmentQuantities: raw.TreatmentQuantities,
			TestResults:         raw.TestResults,
		}
		if len(raw.Treatment) > 0 && string(raw.Treatment) != "null" {
			t, err := decodeTreatment(raw.Treatment)
			if err != nil {
				return nil, err
			}
			u.Treatment = &t
		}
		return u, nil
	default:
		return nil, fmt.Errorf("update must be a string, list or object")
	}
}

func decodeTreatment(raw json.RawMessage) (string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", "), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("treatment must be a string or list of strings")
	}
	return s, nil
}
