package entities

import "math"

// CheckoutItem is one purchasable line of the order.
type CheckoutItem struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

// MainProduct is the single product this checkout sells.
var MainProduct = CheckoutItem{
	ID:    "curso-riqueza-001",
	Title: "Curso A Ciência de Ficar Rico",
	Price: 47.00,
}

// ItemsTotal sums item prices rounded to two decimal places, the amount
// transmitted to the gateway.
func ItemsTotal(items []CheckoutItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Price
	}
	return math.Round(total*100) / 100
}
