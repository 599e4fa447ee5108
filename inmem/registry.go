package inmem

import (
	"sort"

	"github.com/papertrade/trading"
)

type ExchangeRepository struct {
	store *Store
}

func NewExchangeRepository(store *Store) *ExchangeRepository {
	return &ExchangeRepository{store}
}

func (er *ExchangeRepository) CreateExchange(
	exchange *trading.Exchange,
) error {
	er.store.mutex.Lock()
	defer er.store.mutex.Unlock()

	er.store.exchanges[exchange.ID.String()] = *exchange

	return nil
}

func (er *ExchangeRepository) Exchange(
	exchangeID trading.ID,
) (*trading.Exchange, error) {
	er.store.mutex.RLock()
	defer er.store.mutex.RUnlock()

	exchange, exists := er.store.exchanges[exchangeID.String()]
	if !exists {
		return nil, nil
	}

	return &exchange, nil
}

func (er *ExchangeRepository) EnabledExchanges() ([]*trading.Exchange, error) {
	er.store.mutex.RLock()
	defer er.store.mutex.RUnlock()

	exchanges := make([]*trading.Exchange, 0)
	for _, exchange := range er.store.exchanges {
		if exchange.Enabled {
			exchangeCopy := exchange
			exchanges = append(exchanges, &exchangeCopy)
		}
	}

	sort.Slice(exchanges, func(i, j int) bool {
		return exchanges[i].Name < exchanges[j].Name
	})

	return exchanges, nil
}

type CurrencyRepository struct {
	store *Store
}

func NewCurrencyRepository(store *Store) *CurrencyRepository {
	return &CurrencyRepository{store}
}

func (cr *CurrencyRepository) CreateCurrency(
	currency *trading.Currency,
) error {
	cr.store.mutex.Lock()
	defer cr.store.mutex.Unlock()

	cr.store.currencies[currency.ID.String()] = *currency

	return nil
}

func (cr *CurrencyRepository) Currency(
	currencyID trading.ID,
) (*trading.Currency, error) {
	cr.store.mutex.RLock()
	defer cr.store.mutex.RUnlock()

	currency, exists := cr.store.currencies[currencyID.String()]
	if !exists {
		return nil, nil
	}

	return &currency, nil
}

func (cr *CurrencyRepository) CurrencyByName(
	exchangeID trading.ID,
	name string,
) (*trading.Currency, error) {
	cr.store.mutex.RLock()
	defer cr.store.mutex.RUnlock()

	for _, currency := range cr.store.currencies {
		if currency.ExchangeID.String() == exchangeID.String() &&
			currency.Name == name {
			currencyCopy := currency
			return &currencyCopy, nil
		}
	}

	return nil, nil
}

type MarketRepository struct {
	store *Store
}

func NewMarketRepository(store *Store) *MarketRepository {
	return &MarketRepository{store}
}

func (mr *MarketRepository) CreateMarket(market *trading.Market) error {
	mr.store.mutex.Lock()
	defer mr.store.mutex.Unlock()

	mr.store.markets[market.ID.String()] = wrapMarket(market)

	return nil
}

func (mr *MarketRepository) Market(
	marketID trading.ID,
) (*trading.Market, error) {
	mr.store.mutex.RLock()
	defer mr.store.mutex.RUnlock()

	record, exists := mr.store.markets[marketID.String()]
	if !exists {
		return nil, nil
	}

	return mr.store.unwrapMarket(record), nil
}

func (mr *MarketRepository) MarketBySymbol(
	exchangeID trading.ID,
	symbol string,
) (*trading.Market, error) {
	mr.store.mutex.RLock()
	defer mr.store.mutex.RUnlock()

	for _, record := range mr.store.markets {
		if record.market.ExchangeID.String() == exchangeID.String() &&
			record.market.Symbol == symbol {
			return mr.store.unwrapMarket(record), nil
		}
	}

	return nil, nil
}

func (mr *MarketRepository) MarketsOfExchange(
	exchangeID trading.ID,
) ([]*trading.Market, error) {
	mr.store.mutex.RLock()
	defer mr.store.mutex.RUnlock()

	markets := make([]*trading.Market, 0)
	for _, record := range mr.store.markets {
		if record.market.ExchangeID.String() == exchangeID.String() {
			markets = append(markets, mr.store.unwrapMarket(record))
		}
	}

	sort.Slice(markets, func(i, j int) bool {
		return markets[i].Symbol < markets[j].Symbol
	})

	return markets, nil
}

func (mr *MarketRepository) UpdateMarket(market *trading.Market) error {
	mr.store.mutex.Lock()
	defer mr.store.mutex.Unlock()

	mr.store.markets[market.ID.String()] = wrapMarket(market)

	return nil
}

func wrapMarket(market *trading.Market) marketRecord {
	record := marketRecord{market: *market}
	record.market.Base = nil
	record.market.Quote = nil

	if market.Base != nil {
		record.baseID = market.Base.ID.String()
	}
	if market.Quote != nil {
		record.quoteID = market.Quote.ID.String()
	}

	return record
}

// unwrapMarket resolves the currency references against live currency
// rows. A reference to a deleted currency comes back nil and the
// market survives as stale.
func (s *Store) unwrapMarket(record marketRecord) *trading.Market {
	market := record.market

	if currency, exists := s.currencies[record.baseID]; exists {
		currencyCopy := currency
		market.Base = &currencyCopy
	}
	if currency, exists := s.currencies[record.quoteID]; exists {
		currencyCopy := currency
		market.Quote = &currencyCopy
	}

	return &market
}
