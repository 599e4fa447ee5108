package trading

import "fmt"

type Event struct {
	TraderID ID
	Payload  string
}

func NewOrderPlacedEvent(
	traderID ID,
	market *Market,
	order *Order,
) *Event {
	return &Event{
		TraderID: traderID,
		Payload: fmt.Sprintf(
			"New order has been placed:\n"+
				"- ID: %v\n"+
				"- Market: %v\n"+
				"- Side: %v\n"+
				"- Price: %v\n"+
				"- Volume: %v",
			order.ID,
			market.Symbol,
			order.Side,
			order.Price,
			order.Volume,
		),
	}
}

func NewFillRecordedEvent(
	traderID ID,
	market *Market,
	order *Order,
	deal *Deal,
) *Event {
	return &Event{
		TraderID: traderID,
		Payload: fmt.Sprintf(
			"Fill has been recorded:\n"+
				"- Order ID: %v\n"+
				"- Market: %v\n"+
				"- Fill price: %v\n"+
				"- Fill volume: %v\n"+
				"- Remaining volume: %v\n"+
				"- Order state: %v",
			order.ID,
			market.Symbol,
			deal.Price,
			deal.DealtBase,
			order.Available,
			order.State,
		),
	}
}

func NewOrderCancelledEvent(
	traderID ID,
	market *Market,
	order *Order,
) *Event {
	return &Event{
		TraderID: traderID,
		Payload: fmt.Sprintf(
			"Order has been cancelled:\n"+
				"- ID: %v\n"+
				"- Market: %v\n"+
				"- Unfilled volume: %v",
			order.ID,
			market.Symbol,
			order.Available,
		),
	}
}

type EventService interface {
	Publish(event *Event)
}
