package inmem

import (
	"fmt"
	"sort"

	"github.com/papertrade/trading"
)

type OrderRepository struct {
	store  *Store
	locked bool
}

func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (or *OrderRepository) CreateOrder(order *trading.Order) error {
	if !or.locked {
		or.store.mutex.Lock()
		defer or.store.mutex.Unlock()
	}

	or.store.orders[order.ID.String()] = *order

	return nil
}

func (or *OrderRepository) Order(
	orderID trading.ID,
) (*trading.Order, error) {
	if !or.locked {
		or.store.mutex.RLock()
		defer or.store.mutex.RUnlock()
	}

	order, exists := or.store.orders[orderID.String()]
	if !exists {
		return nil, fmt.Errorf("no order with ID [%v]", orderID)
	}

	return &order, nil
}

func (or *OrderRepository) OrdersByState(
	traderID trading.ID,
	state trading.OrderState,
) ([]*trading.Order, error) {
	if !or.locked {
		or.store.mutex.RLock()
		defer or.store.mutex.RUnlock()
	}

	orders := make([]*trading.Order, 0)
	for _, order := range or.store.orders {
		if order.TraderID.String() == traderID.String() &&
			order.State == state {
			orderCopy := order
			orders = append(orders, &orderCopy)
		}
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreateDate.Before(orders[j].CreateDate)
	})

	return orders, nil
}

func (or *OrderRepository) UpdateOrder(order *trading.Order) error {
	if !or.locked {
		or.store.mutex.Lock()
		defer or.store.mutex.Unlock()
	}

	or.store.orders[order.ID.String()] = *order

	return nil
}

type DealRepository struct {
	store  *Store
	locked bool
}

func NewDealRepository(store *Store) *DealRepository {
	return &DealRepository{store: store}
}

func (dr *DealRepository) CreateDeal(deal *trading.Deal) error {
	if !dr.locked {
		dr.store.mutex.Lock()
		defer dr.store.mutex.Unlock()
	}

	dr.store.deals = append(dr.store.deals, *deal)

	return nil
}

func (dr *DealRepository) DealsByOrder(
	orderID trading.ID,
) ([]*trading.Deal, error) {
	if !dr.locked {
		dr.store.mutex.RLock()
		defer dr.store.mutex.RUnlock()
	}

	deals := make([]*trading.Deal, 0)
	for _, deal := range dr.store.deals {
		if deal.OrderID.String() == orderID.String() {
			dealCopy := deal
			deals = append(deals, &dealCopy)
		}
	}

	sort.SliceStable(deals, func(i, j int) bool {
		return deals[i].Date.Before(deals[j].Date)
	})

	return deals, nil
}
