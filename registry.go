package trading

import (
	"context"
	"fmt"
	"strings"
)

// Registry tracks exchanges with their currencies and markets,
// deduplicated by name and symbol. Markets are discovered lazily from
// the market data provider and refreshed on demand. Registry operations
// never touch balance or order rows, so they may run concurrently with
// the ledger without coordination.
type Registry struct {
	logger             Logger
	idService          IDService
	exchangeRepository ExchangeRepository
	currencyRepository CurrencyRepository
	marketRepository   MarketRepository
	connector          MarketDataConnector
}

func NewRegistry(
	logger Logger,
	idService IDService,
	exchangeRepository ExchangeRepository,
	currencyRepository CurrencyRepository,
	marketRepository MarketRepository,
	connector MarketDataConnector,
) *Registry {
	return &Registry{
		logger:             logger,
		idService:          idService,
		exchangeRepository: exchangeRepository,
		currencyRepository: currencyRepository,
		marketRepository:   marketRepository,
		connector:          connector,
	}
}

// GetOrCreateCurrency resolves a currency by its unique name within the
// exchange, creating the row on first reference.
func (r *Registry) GetOrCreateCurrency(
	exchange *Exchange,
	name string,
) (*Currency, error) {
	currency, err := r.currencyRepository.CurrencyByName(exchange.ID, name)
	if err != nil {
		return nil, fmt.Errorf("could not get currency: [%v]", err)
	}

	if currency != nil {
		return currency, nil
	}

	currency = &Currency{
		ID:         r.idService.NewID(),
		ExchangeID: exchange.ID,
		Name:       name,
	}

	if err := r.currencyRepository.CreateCurrency(currency); err != nil {
		return nil, fmt.Errorf("could not create currency: [%v]", err)
	}

	return currency, nil
}

// GetOrCreateMarket resolves a market by its unique symbol within the
// exchange. On first reference the symbol is split into base and quote
// currency names and both currencies are resolved or created as well.
func (r *Registry) GetOrCreateMarket(
	exchange *Exchange,
	symbol string,
) (*Market, error) {
	market, err := r.marketRepository.MarketBySymbol(exchange.ID, symbol)
	if err != nil {
		return nil, fmt.Errorf("could not get market: [%v]", err)
	}

	if market != nil {
		return market, nil
	}

	baseName, quoteName, err := ParseSymbol(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: [%v]", err, symbol)
	}

	base, err := r.GetOrCreateCurrency(exchange, baseName)
	if err != nil {
		return nil, err
	}

	quote, err := r.GetOrCreateCurrency(exchange, quoteName)
	if err != nil {
		return nil, err
	}

	market = &Market{
		ID:         r.idService.NewID(),
		ExchangeID: exchange.ID,
		Symbol:     symbol,
		Base:       base,
		Quote:      quote,
	}

	if err := r.marketRepository.CreateMarket(market); err != nil {
		return nil, fmt.Errorf("could not create market: [%v]", err)
	}

	return market, nil
}

// SyncExchange discovers the exchange's traded markets from the
// provider, creating missing currency and market rows. Derivative
// symbols are skipped.
func (r *Registry) SyncExchange(
	ctx context.Context,
	exchange *Exchange,
) error {
	provider, err := r.connector.Connect(ctx, exchange)
	if err != nil {
		return fmt.Errorf(
			"could not connect provider for exchange [%v]: [%w]",
			exchange,
			err,
		)
	}

	symbols, err := provider.Symbols(ctx)
	if err != nil {
		return fmt.Errorf(
			"could not list symbols of exchange [%v]: [%w]",
			exchange,
			err,
		)
	}

	for _, symbol := range symbols {
		if strings.Contains(symbol, ".d") {
			continue
		}

		if _, err := r.GetOrCreateMarket(exchange, symbol); err != nil {
			return err
		}
	}

	return nil
}

// RefreshMarket overwrites the market's ticker snapshot with a fresh
// one from the provider. A provider failure surfaces as ErrUnavailable
// and leaves the snapshot unchanged; any other error is an internal
// fault and passes through as-is.
func (r *Registry) RefreshMarket(
	ctx context.Context,
	provider MarketDataProvider,
	market *Market,
) error {
	ticker, err := provider.Ticker(ctx, market.Symbol)
	if err != nil {
		return err
	}

	if !ticker.Time.IsZero() {
		market.LastUpdate = ticker.Time
	}
	market.High = ticker.High
	market.Low = ticker.Low
	market.Bid = ticker.Bid
	market.Ask = ticker.Ask
	market.Volume = ticker.Volume

	if err := r.marketRepository.UpdateMarket(market); err != nil {
		return fmt.Errorf(
			"could not update market [%v]: [%v]",
			market,
			err,
		)
	}

	return nil
}

// RefreshExchange refreshes the snapshots of all markets of the
// exchange. Provider unavailability for a single market is logged and
// does not stop the remaining refreshes.
func (r *Registry) RefreshExchange(
	ctx context.Context,
	exchange *Exchange,
) error {
	provider, err := r.connector.Connect(ctx, exchange)
	if err != nil {
		return fmt.Errorf(
			"could not connect provider for exchange [%v]: [%w]",
			exchange,
			err,
		)
	}

	markets, err := r.marketRepository.MarketsOfExchange(exchange.ID)
	if err != nil {
		return fmt.Errorf(
			"could not list markets of exchange [%v]: [%v]",
			exchange,
			err,
		)
	}

	for _, market := range markets {
		if err := r.RefreshMarket(ctx, provider, market); err != nil {
			if IsUnavailable(err) {
				r.logger.Warningf(
					"market [%v] refresh skipped: [%v]",
					market,
					err,
				)
				continue
			}

			return err
		}
	}

	return nil
}

// EnabledExchanges lists the exchanges currently enabled for syncing.
func (r *Registry) EnabledExchanges() ([]*Exchange, error) {
	return r.exchangeRepository.EnabledExchanges()
}
