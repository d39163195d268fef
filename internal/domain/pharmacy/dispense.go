package pharmacy

import (
	"github.com/shopspring/decimal"

	"github.com/carepoint/hms/internal/domain/medrecord"
)

// ApplyPrescription dispenses every item against a copy of inv, in order.
// Either all items succeed and the new inventory is returned, or the first
// failure is returned and inv is untouched.
func ApplyPrescription(inv Inventory, items []medrecord.Item) ([]medrecord.DispensedItem, Inventory, error) {
	work := inv.Clone()
	dispensed := make([]medrecord.DispensedItem, 0, len(items))
	for _, it := range items {
		price, err := work.ReserveAndDecrement(it.Name, it.Quantity)
		if err != nil {
			return nil, nil, err
		}
		dispensed = append(dispensed, medrecord.DispensedItem{Name: it.Name, Quantity: it.Quantity, Price: price})
	}
	return dispensed, work, nil
}

// DispensedCost sums quantity x unit price.
func DispensedCost(items []medrecord.DispensedItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
