package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderBook drives the order lifecycle against the balance ledger.
// Every mutating operation runs as one storage transaction: a failed
// reservation never leaves a dangling order and a failed settlement
// never leaves a half-applied fill.
type OrderBook struct {
	logger           Logger
	idService        IDService
	txRunner         TxRunner
	marketRepository MarketRepository
	orderRepository  OrderRepository
	dealRepository   DealRepository
	eventService     EventService
}

func NewOrderBook(
	logger Logger,
	idService IDService,
	txRunner TxRunner,
	marketRepository MarketRepository,
	orderRepository OrderRepository,
	dealRepository DealRepository,
	eventService EventService,
) *OrderBook {
	return &OrderBook{
		logger:           logger,
		idService:        idService,
		txRunner:         txRunner,
		marketRepository: marketRepository,
		orderRepository:  orderRepository,
		dealRepository:   dealRepository,
		eventService:     eventService,
	}
}

// PlaceOrder reserves funds for a new order and opens it. Bids reserve
// the order volume from the base currency balance; asks reserve the
// volume's quote value from the quote currency balance.
func (ob *OrderBook) PlaceOrder(
	ctx context.Context,
	trader *Trader,
	market *Market,
	side OrderSide,
	price, volume decimal.Decimal,
	now time.Time,
) (*Order, error) {
	if !price.IsPositive() {
		return nil, fmt.Errorf(
			"%w: price [%v] should be positive",
			ErrInvalidParameters,
			price,
		)
	}

	if !volume.IsPositive() {
		return nil, fmt.Errorf(
			"%w: volume [%v] should be positive",
			ErrInvalidParameters,
			volume,
		)
	}

	order := &Order{
		ID:         ob.idService.NewID(),
		TraderID:   trader.ID,
		MarketID:   market.ID,
		CreateDate: now,
		Side:       side,
		Price:      price,
		Volume:     volume,
		Available:  volume,
		DealtBase:  decimal.Zero,
		DealtQuote: decimal.Zero,
		State:      Open,
	}

	err := ob.txRunner.RunTx(ctx, func(tx Tx) error {
		baseBalance, quoteBalance, err := ob.marketBalances(
			tx,
			trader.ID,
			market,
		)
		if err != nil {
			return err
		}

		ledger := NewLedger(tx.Balances(), ob.idService)

		sourceBalance := baseBalance
		if side == Ask {
			sourceBalance = quoteBalance
		}

		if err := ledger.Reserve(
			sourceBalance,
			order.reservation(volume),
		); err != nil {
			return err
		}

		if err := tx.Orders().CreateOrder(order); err != nil {
			return fmt.Errorf(
				"could not create order [%v]: [%v]",
				order.ID,
				err,
			)
		}

		return nil
	})
	if err != nil {
		return nil, ob.noteFailure(err)
	}

	ob.logger.Infof("trader [%v] placed [%v]", trader.ID, order)

	ob.eventService.Publish(NewOrderPlacedEvent(trader.ID, market, order))

	return order, nil
}

// RecordFill appends a deal to an open order and settles the two
// balances of the market's currency pair. The order closes exactly
// when its remaining volume reaches zero.
func (ob *OrderBook) RecordFill(
	ctx context.Context,
	order *Order,
	fillPrice, fillBase decimal.Decimal,
	now time.Time,
) (*Deal, error) {
	market, err := ob.orderMarket(order)
	if err != nil {
		return nil, err
	}

	deal := &Deal{
		ID:        ob.idService.NewID(),
		OrderID:   order.ID,
		Date:      now,
		Price:     fillPrice,
		DealtBase: fillBase,
	}

	err = ob.txRunner.RunTx(ctx, func(tx Tx) error {
		current, err := ob.openOrder(tx, order.ID)
		if err != nil {
			return err
		}

		if !fillPrice.IsPositive() {
			return fmt.Errorf(
				"%w: fill price [%v] should be positive",
				ErrInvalidParameters,
				fillPrice,
			)
		}

		if !fillBase.IsPositive() {
			return fmt.Errorf(
				"%w: fill amount [%v] should be positive",
				ErrInvalidParameters,
				fillBase,
			)
		}

		if fillBase.GreaterThan(current.Available) {
			return fmt.Errorf(
				"%w: fill amount [%v] exceeds remaining volume [%v]",
				ErrInvalidParameters,
				fillBase,
				current.Available,
			)
		}

		fillQuote := fillPrice.Mul(fillBase)
		deal.DealtQuote = fillQuote

		if err := tx.Deals().CreateDeal(deal); err != nil {
			return fmt.Errorf(
				"could not create deal [%v]: [%v]",
				deal.ID,
				err,
			)
		}

		baseBalance, quoteBalance, err := ob.marketBalances(
			tx,
			current.TraderID,
			market,
		)
		if err != nil {
			return err
		}

		ledger := NewLedger(tx.Balances(), ob.idService)

		if current.Side == Bid {
			// The trader pays base, already reserved, and receives
			// quote.
			if err := ledger.SettleOutgoing(baseBalance, fillBase); err != nil {
				return err
			}
			if err := ledger.SettleIncoming(quoteBalance, fillQuote); err != nil {
				return err
			}
		} else {
			if err := ledger.SettleIncoming(baseBalance, fillBase); err != nil {
				return err
			}
			if err := ledger.SettleOutgoing(quoteBalance, fillQuote); err != nil {
				return err
			}

			// A fill below the limit price consumes less quote than
			// was reserved for it; the excess goes back to the
			// available part.
			excess := current.reservation(fillBase).Sub(fillQuote)
			if excess.IsPositive() {
				if err := ledger.Release(quoteBalance, excess); err != nil {
					return err
				}
			}
		}

		current.Available = current.Available.Sub(fillBase)
		current.DealtBase = current.DealtBase.Add(fillBase)
		current.DealtQuote = current.DealtQuote.Add(fillQuote)

		if current.Available.IsZero() {
			closeDate := now
			current.State = Closed
			current.CloseDate = &closeDate
		}

		if err := tx.Orders().UpdateOrder(current); err != nil {
			return fmt.Errorf(
				"could not update order [%v]: [%v]",
				current.ID,
				err,
			)
		}

		*order = *current

		return nil
	})
	if err != nil {
		return nil, ob.noteFailure(err)
	}

	ob.logger.Infof(
		"recorded fill of [%v] at price [%v] for [%v]",
		fillBase,
		fillPrice,
		order,
	)

	ob.eventService.Publish(NewFillRecordedEvent(order.TraderID, market, order, deal))

	return deal, nil
}

// CancelOrder releases the unconsumed reservation of an open order back
// to the originating balance and closes the order. No deal is recorded.
func (ob *OrderBook) CancelOrder(
	ctx context.Context,
	order *Order,
	now time.Time,
) error {
	market, err := ob.orderMarket(order)
	if err != nil {
		return err
	}

	err = ob.txRunner.RunTx(ctx, func(tx Tx) error {
		current, err := ob.openOrder(tx, order.ID)
		if err != nil {
			return err
		}

		baseBalance, quoteBalance, err := ob.marketBalances(
			tx,
			current.TraderID,
			market,
		)
		if err != nil {
			return err
		}

		ledger := NewLedger(tx.Balances(), ob.idService)

		sourceBalance := baseBalance
		if current.Side == Ask {
			sourceBalance = quoteBalance
		}

		if err := ledger.Release(
			sourceBalance,
			current.reservation(current.Available),
		); err != nil {
			return err
		}

		closeDate := now
		current.State = Closed
		current.CloseDate = &closeDate

		if err := tx.Orders().UpdateOrder(current); err != nil {
			return fmt.Errorf(
				"could not update order [%v]: [%v]",
				current.ID,
				err,
			)
		}

		*order = *current

		return nil
	})
	if err != nil {
		return ob.noteFailure(err)
	}

	ob.logger.Infof("cancelled [%v]", order)

	ob.eventService.Publish(NewOrderCancelledEvent(order.TraderID, market, order))

	return nil
}

// OpenOrders lists the trader's orders in the Open state.
func (ob *OrderBook) OpenOrders(trader *Trader) ([]*Order, error) {
	return ob.orderRepository.OrdersByState(trader.ID, Open)
}

// ClosedOrders lists the trader's orders in the Closed state.
func (ob *OrderBook) ClosedOrders(trader *Trader) ([]*Order, error) {
	return ob.orderRepository.OrdersByState(trader.ID, Closed)
}

// Deals lists the order's fills, oldest first.
func (ob *OrderBook) Deals(order *Order) ([]*Deal, error) {
	return ob.dealRepository.DealsByOrder(order.ID)
}

func (ob *OrderBook) orderMarket(order *Order) (*Market, error) {
	market, err := ob.marketRepository.Market(order.MarketID)
	if err != nil {
		return nil, fmt.Errorf(
			"could not get market [%v]: [%v]",
			order.MarketID,
			err,
		)
	}

	if market == nil {
		return nil, fmt.Errorf(
			"no market with ID [%v] for order [%v]",
			order.MarketID,
			order.ID,
		)
	}

	return market, nil
}

func (ob *OrderBook) openOrder(tx Tx, orderID ID) (*Order, error) {
	order, err := tx.Orders().Order(orderID)
	if err != nil {
		return nil, fmt.Errorf(
			"could not get order [%v]: [%v]",
			orderID,
			err,
		)
	}

	if order.State != Open {
		return nil, fmt.Errorf("%w: order [%v]", ErrOrderNotOpen, orderID)
	}

	return order, nil
}

func (ob *OrderBook) marketBalances(
	tx Tx,
	traderID ID,
	market *Market,
) (base, quote *Balance, err error) {
	if market.Base == nil || market.Quote == nil {
		return nil, nil, fmt.Errorf(
			"%w: market [%v] references a deleted currency",
			ErrNoBalanceForMarket,
			market.Symbol,
		)
	}

	base, err = tx.Balances().Balance(traderID, market.Base.ID)
	if err != nil {
		return nil, nil, fmt.Errorf(
			"could not get balance of [%v]: [%v]",
			market.Base,
			err,
		)
	}

	quote, err = tx.Balances().Balance(traderID, market.Quote.ID)
	if err != nil {
		return nil, nil, fmt.Errorf(
			"could not get balance of [%v]: [%v]",
			market.Quote,
			err,
		)
	}

	if base == nil || quote == nil {
		return nil, nil, fmt.Errorf(
			"%w: trader [%v] on market [%v]",
			ErrNoBalanceForMarket,
			traderID,
			market.Symbol,
		)
	}

	return base, quote, nil
}

// noteFailure raises an internal-consistency alarm for invariant
// violations. All other failures are expected operation outcomes and
// stay at the caller's discretion.
func (ob *OrderBook) noteFailure(err error) error {
	if IsInvariantViolation(err) {
		ob.logger.Errorf("ledger consistency alarm: [%v]", err)
	}

	return err
}
