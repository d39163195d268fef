package medrecord

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParsePrescription(t *testing.T) {
	tests := []struct {
		name       string
		treatment  string
		quantities string
		want       []Item
	}{
		{
			name:       "comma list",
			treatment:  "Paracetamol, Amoxicillin",
			quantities: "Paracetamol: 2, Amoxicillin: 1",
			want:       []Item{{"Paracetamol", 2}, {"Amoxicillin", 1}},
		},
		{
			name:       "json list with case-insensitive quantities",
			treatment:  `["Paracetamol", "IBUPROFEN"]`,
			quantities: "paracetamol: 3, ibuprofen: 4",
			want:       []Item{{"Paracetamol", 3}, {"IBUPROFEN", 4}},
		},
		{
			name:       "missing quantity defaults to zero",
			treatment:  "Paracetamol, Cetirizine",
			quantities: "Paracetamol: 5",
			want:       []Item{{"Paracetamol", 5}, {"Cetirizine", 0}},
		},
		{
			name:       "json list drops non-strings",
			treatment:  `["Aspirin", 42, null, " Zinc "]`,
			quantities: "Aspirin: 1, Zinc: 2",
			want:       []Item{{"Aspirin", 1}, {"Zinc", 2}},
		},
		{
			name:       "blank names and blank quantity entries skipped",
			treatment:  "Aspirin, , Zinc,",
			quantities: "Aspirin: 1,, Zinc: 2, ",
			want:       []Item{{"Aspirin", 1}, {"Zinc", 2}},
		},
		{
			name:       "json quantity object",
			treatment:  "Aspirin, Zinc",
			quantities: `{"ASPIRIN": 2, "zinc": 7}`,
			want:       []Item{{"Aspirin", 2}, {"Zinc", 7}},
		},
		{
			name:       "empty quantities",
			treatment:  "Aspirin",
			quantities: "",
			want:       []Item{{"Aspirin", 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrescription(tt.treatment, tt.quantities)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsePrescription_Errors(t *testing.T) {
	tests := []struct {
		name       string
		treatment  string
		quantities string
		want       error
	}{
		{"empty treatment", "", "Aspirin: 1", ErrEmptyPrescription},
		{"only commas", " , ,", "", ErrEmptyPrescription},
		{"empty json list", "[]", "", ErrEmptyPrescription},
		{"bad json", `["Aspirin"`, "", ErrMalformedPrescription},
		{"truncated json", `[`, "", ErrMalformedPrescription},
		{"non-numeric quantity", "Aspirin", "Aspirin: two", ErrMalformedPrescription},
		{"negative quantity", "Aspirin", "Aspirin: -1", ErrMalformedPrescription},
		{"missing colon", "Aspirin", "Aspirin 2", ErrMalformedPrescription},
		{"too many colons", "Aspirin", "Aspirin: 2: 3", ErrMalformedPrescription},
		{"decimal quantity", "Aspirin", "Aspirin: 1.5", ErrMalformedPrescription},
		{"bad quantity object", "Aspirin", `{"Aspirin": "x"}`, ErrMalformedPrescription},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrescription(tt.treatment, tt.quantities)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParsePrescription_ErrorNamesEntry(t *testing.T) {
	_, err := ParsePrescription("Aspirin", "Aspirin: x")
	if err == nil || !strings.Contains(err.Error(), "Aspirin: x") {
		t.Errorf("expected error naming the entry, got %v", err)
	}
}
