package medrecord

import (
	"errors"
	"testing"
)

func TestDecodeUpdate_Variants(t *testing.T) {
	u, err := DecodeUpdate([]byte(`"Influenza A"`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d, ok := u.(SetDiagnosis); !ok || d.Diagnosis != "Influenza A" {
		t.Errorf("expected SetDiagnosis, got %#v", u)
	}

	u, err = DecodeUpdate([]byte(`["Oseltamivir", "Paracetamol"]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr, ok := u.(SetTreatment); !ok || len(tr.Treatment) != 2 {
		t.Errorf("expected SetTreatment, got %#v", u)
	}

	u, err = DecodeUpdate([]byte(`{"diagnosis":"Flu","treatment":["A","B"],"test_results":[{"cbc":"ok"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := u.(SetFields)
	if !ok {
		t.Fatalf("expected SetFields, got %#v", u)
	}
	if f.Diagnosis == nil || *f.Diagnosis != "Flu" {
		t.Errorf("diagnosis not decoded: %#v", f)
	}
	if f.Treatment == nil || *f.Treatment != "A, B" {
		t.Errorf("treatment list should be joined, got %#v", f.Treatment)
	}
	if f.TreatmentQuantities != nil {
		t.Error("treatment_quantities should stay unset")
	}
}

func TestDecodeUpdate_Invalid(t *testing.T) {
	for _, body := range []string{``, `42`, `[1,2]`, `{"treatment":7}`, `{bad`} {
		if _, err := DecodeUpdate([]byte(body)); err == nil {
			t.Errorf("expected error for %q", body)
		}
	}
}

func TestApply(t *testing.T) {
	r := &MedicalRecord{Diagnosis: "old", PrescribedTreatment: "A", TreatmentQuantities: "A: 1"}

	if err := Apply(r, SetTreatment{Treatment: []string{"B", "C"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.PrescribedTreatment != "B, C" {
		t.Errorf("expected joined treatment, got %q", r.PrescribedTreatment)
	}

	q := "B: 2, C: 3"
	if err := Apply(r, SetFields{TreatmentQuantities: &q}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TreatmentQuantities != q || r.Diagnosis != "old" {
		t.Errorf("unexpected record after SetFields: %+v", r)
	}
}

func TestApply_DispensedRecord(t *testing.T) {
	r := &MedicalRecord{RecordNo: "REC1", PrescribedTreatment: "A", Status: StatusDispensed}

	if err := Apply(r, SetTreatment{Treatment: []string{"B"}}); !errors.Is(err, ErrAlreadyDispensed) {
		t.Errorf("expected ErrAlreadyDispensed, got %v", err)
	}
	if r.PrescribedTreatment != "A" {
		t.Error("treatment must not change after dispensing")
	}
	if err := Apply(r, SetDiagnosis{Diagnosis: "follow-up"}); err != nil {
		t.Errorf("diagnosis changes stay allowed, got %v", err)
	}
}

func TestMarkDispensed_Once(t *testing.T) {
	r := &MedicalRecord{RecordNo: "REC1", Status: StatusPending}
	if err := r.MarkDispensed([]DispensedItem{{Name: "A", Quantity: 1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsDispensed() {
		t.Fatal("expected dispensed status")
	}
	if err := r.MarkDispensed(nil); !errors.Is(err, ErrAlreadyDispensed) {
		t.Errorf("expected ErrAlreadyDispensed, got %v", err)
	}
	if len(r.DispensedItems) != 1 {
		t.Error("dispensed items must not be overwritten")
	}
}
