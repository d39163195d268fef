package medrecord

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Item is one normalized prescription line.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ParsePrescription turns the free-form treatment and quantity texts into an
// ordered item list.
//
// Treatment is either a JSON list of names or a comma-separated list.
// Quantities is empty, "Name: N, Other: M", or a JSON object of name to
// count. Quantity lookup ignores case; a medicine without a quantity gets 0.
func ParsePrescription(treatment, quantities string) ([]Item, error) {
	names, err := parseMedicines(treatment)
	if err != nil {
		return nil, err
	}
	qty, err := parseQuantities(quantities)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrEmptyPrescription
	}

	items := make([]Item, 0, len(names))
	for _, name := range names {
		items = append(items, Item{Name: name, Quantity: qty[strings.ToLower(name)]})
	}
	return items, nil
}

func parseMedicines(treatment string) ([]string, error) {
	treatment = strings.TrimSpace(treatment)
	if treatment == "" {
		return nil, nil
	}

	if strings.HasPrefix(treatment, "[") {
		var raw []interface{}
		if err := json.Unmarshal([]byte(treatment), &raw); err != nil {
			return nil, fmt.Errorf("%w: prescribed treatment must be a JSON list: %v", ErrMalformedPrescription, err)
		}
		names := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				names = append(names, strings.TrimSpace(s))
			}
		}
		return names, nil
	}

	var names []string
	for _, part := range strings.Split(treatment, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func parseQuantities(quantities string) (map[string]int, error) {
	out := make(map[string]int)
	quantities = strings.TrimSpace(quantities)
	if quantities == "" {
		return out, nil
	}

	if strings.HasPrefix(quantities, "{") {
		var raw map[string]int
		if err := json.Unmarshal([]byte(quantities), &raw); err != nil {
			return nil, fmt.Errorf("%w: treatment quantities object: %v", ErrMalformedPrescription, err)
		}
		for name, n := range raw {
			if n < 0 {
				return nil, fmt.Errorf("%w: negative quantity for %s", ErrMalformedPrescription, name)
			}
			out[strings.ToLower(strings.TrimSpace(name))] = n
		}
		return out, nil
	}

	for _, entry := range strings.Split(quantities, ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: invalid format for treatment quantity: %s", ErrMalformedPrescription, entry)
		}
		name := strings.TrimSpace(parts[0])
		count := strings.TrimSpace(parts[1])
		if !isDigits(count) {
			return nil, fmt.Errorf("%w: invalid format for treatment quantity: %s", ErrMalformedPrescription, entry)
		}
		n, err := strconv.Atoi(count)
		if err != nil {
			return nil, fmt.Errorf("%w: quantity out of range: %s", ErrMalformedPrescription, entry)
		}
		out[strings.ToLower(name)] = n
	}
	return out, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
