package ledger

import "github.com/shopspring/decimal"

// Line es una línea de entrada (producto, cantidad) antes de consolidar.
type Line struct {
	ProductID string
	Quantity  decimal.Decimal
}

// MergeLines consolida líneas duplicadas del mismo producto en una cantidad
// neta por producto (suma). El resultado conserva el orden de primera aparición,
// de modo que los movimientos se generan en el orden del ticket.
func MergeLines(lines []Line) []Line {
	totals := make(map[string]decimal.Decimal, len(lines))
	order := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, seen := totals[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		totals[l.ProductID] = totals[l.ProductID].Add(l.Quantity)
	}
	merged := make([]Line, 0, len(order))
	for _, id := range order {
		merged = append(merged, Line{ProductID: id, Quantity: totals[id]})
	}
	return merged
}
