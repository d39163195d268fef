package pharmacy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Inventory maps a medicine name, as entered by the pharmacist, to its stock.
// Entries with no units left are removed.
type Inventory map[string]Stock

// CheckStock returns the quantity held under exactly name, or 0.
func (inv Inventory) CheckStock(name string) int {
	return inv[name].Quantity
}

// lookup finds the stored key for name ignoring case. When several keys
// differ only by case the first in sorted order wins.
func (inv Inventory) lookup(name string) (string, bool) {
	if _, ok := inv[name]; ok {
		return name, true
	}
	want := strings.ToLower(name)
	var matches []string
	for k := range inv {
		if strings.ToLower(k) == want {
			matches = append(matches, k)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}

// ReserveAndDecrement removes qty units of name and returns the unit price
// before the change. The entry is deleted once nothing is left.
func (inv Inventory) ReserveAndDecrement(name string, qty int) (decimal.Decimal, error) {
	if qty < 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidQuantity, name)
	}
	key, ok := inv.lookup(name)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMedicineNotFound, name)
	}
	s := inv[key]
	if s.Quantity < qty {
		return decimal.Zero, &StockError{Medicine: name, Required: qty, Available: s.Quantity}
	}

	price := s.Price
	s.Quantity -= qty
	if s.Quantity <= 0 {
		delete(inv, key)
	} else {
		inv[key] = s
	}
	return price, nil
}

// UpdateMedicineList sets the stock for name. A quantity of zero removes the
// entry.
func (inv Inventory) UpdateMedicineList(name string, qty int, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: medicine name is required", ErrInvalidInput)
	}
	if qty < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidQuantity, name)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, name)
	}
	if qty == 0 {
		delete(inv, name)
		return nil
	}
	inv[name] = Stock{Quantity: qty, Price: price}
	return nil
}

// Clone returns an independent copy.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for k, v := range inv {
		out[k] = v
	}
	return out
}
