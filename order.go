package trading

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide int

const (
	Bid OrderSide = iota
	Ask
)

func ParseOrderSide(value string) (OrderSide, error) {
	switch value {
	case "BID":
		return Bid, nil
	case "ASK":
		return Ask, nil
	}

	return -1, fmt.Errorf("unknown order side: [%v]", value)
}

func (os OrderSide) String() string {
	switch os {
	case Bid:
		return "BID"
	case Ask:
		return "ASK"
	default:
		panic("unknown order side")
	}
}

type OrderState int

const (
	Open OrderState = iota
	Closed
)

func ParseOrderState(value string) (OrderState, error) {
	switch value {
	case "OPEN":
		return Open, nil
	case "CLOSED":
		return Closed, nil
	}

	return -1, fmt.Errorf("unknown order state: [%v]", value)
}

func (os OrderState) String() string {
	switch os {
	case Open:
		return "OPEN"
	case Closed:
		return "CLOSED"
	default:
		panic("unknown order state")
	}
}

type OrderRepository interface {
	CreateOrder(order *Order) error

	Order(orderID ID) (*Order, error)

	OrdersByState(traderID ID, state OrderState) ([]*Order, error)

	UpdateOrder(order *Order) error
}

// Order is an exclusive claim on a portion of a balance. A bid order
// reserves Volume units of the base currency; an ask order reserves
// Volume * Price units of the quote currency. Available is the
// remaining unfilled volume and only ever decreases; the order closes
// exactly when it reaches zero, or on cancellation. Closed is terminal.
type Order struct {
	ID         ID
	TraderID   ID
	MarketID   ID
	CreateDate time.Time
	CloseDate  *time.Time
	Side       OrderSide
	Price      decimal.Decimal
	Volume     decimal.Decimal
	Available  decimal.Decimal
	DealtBase  decimal.Decimal
	DealtQuote decimal.Decimal
	State      OrderState
}

func (o *Order) String() string {
	return fmt.Sprintf(
		"order [%v] %v price [%v] volume [%v]",
		o.ID,
		o.Side,
		o.Price,
		o.Volume,
	)
}

// reservation computes the amount the order holds against its source
// balance for the given base volume: the volume itself for bids, its
// quote value for asks.
func (o *Order) reservation(volume decimal.Decimal) decimal.Decimal {
	if o.Side == Bid {
		return volume
	}

	return volume.Mul(o.Price)
}
