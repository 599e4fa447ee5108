package trading

import (
	"time"

	"github.com/shopspring/decimal"
)

// DealRepository is an append-only log of fills. Deals are never
// updated or deleted once recorded.
type DealRepository interface {
	CreateDeal(deal *Deal) error

	// DealsByOrder lists the order's fills ordered by timestamp
	// ascending.
	DealsByOrder(orderID ID) ([]*Deal, error)
}

// Deal is one executed fill against an order. DealtQuote equals
// Price * DealtBase; the price may differ fill-to-fill from the order's
// limit price since deals model already-agreed matches.
type Deal struct {
	ID         ID
	OrderID    ID
	Date       time.Time
	Price      decimal.Decimal
	DealtBase  decimal.Decimal
	DealtQuote decimal.Decimal
}
