package inmem

import (
	"sort"

	"github.com/papertrade/trading"
)

type TraderRepository struct {
	store *Store
}

func NewTraderRepository(store *Store) *TraderRepository {
	return &TraderRepository{store}
}

func (tr *TraderRepository) CreateTrader(trader *trading.Trader) error {
	tr.store.mutex.Lock()
	defer tr.store.mutex.Unlock()

	tr.store.traders[trader.ID.String()] = *trader

	return nil
}

func (tr *TraderRepository) Trader(
	traderID trading.ID,
) (*trading.Trader, error) {
	tr.store.mutex.RLock()
	defer tr.store.mutex.RUnlock()

	trader, exists := tr.store.traders[traderID.String()]
	if !exists {
		return nil, nil
	}

	return &trader, nil
}

func (tr *TraderRepository) ActiveTraders() ([]*trading.Trader, error) {
	tr.store.mutex.RLock()
	defer tr.store.mutex.RUnlock()

	traders := make([]*trading.Trader, 0)
	for _, trader := range tr.store.traders {
		if trader.Active {
			traderCopy := trader
			traders = append(traders, &traderCopy)
		}
	}

	sort.Slice(traders, func(i, j int) bool {
		return traders[i].Name < traders[j].Name
	})

	return traders, nil
}

// BalanceRepository reads and writes balance rows. Instances with the
// locked flag set operate inside an already locked transaction and do
// not take the store lock themselves.
type BalanceRepository struct {
	store  *Store
	locked bool
}

func NewBalanceRepository(store *Store) *BalanceRepository {
	return &BalanceRepository{store: store}
}

func (br *BalanceRepository) CreateBalance(balance *trading.Balance) error {
	if !br.locked {
		br.store.mutex.Lock()
		defer br.store.mutex.Unlock()
	}

	br.store.balances[balance.ID.String()] = *balance

	return nil
}

func (br *BalanceRepository) Balance(
	traderID, currencyID trading.ID,
) (*trading.Balance, error) {
	if !br.locked {
		br.store.mutex.RLock()
		defer br.store.mutex.RUnlock()
	}

	for _, balance := range br.store.balances {
		if balance.TraderID.String() == traderID.String() &&
			balance.CurrencyID.String() == currencyID.String() {
			balanceCopy := balance
			return &balanceCopy, nil
		}
	}

	return nil, nil
}

func (br *BalanceRepository) UpdateBalance(balance *trading.Balance) error {
	if !br.locked {
		br.store.mutex.Lock()
		defer br.store.mutex.Unlock()
	}

	br.store.balances[balance.ID.String()] = *balance

	return nil
}
