package model

import "github.com/shopspring/decimal"

// Product is a catalog row. Read-only from this service's perspective.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Link  string
}
