package trading_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/papertrade/trading"
	"github.com/papertrade/trading/inmem"
	"github.com/papertrade/trading/uuid"
)

type discardLogger struct{}

func (dl *discardLogger) Debugf(format string, args ...interface{})   {}
func (dl *discardLogger) Infof(format string, args ...interface{})    {}
func (dl *discardLogger) Warningf(format string, args ...interface{}) {}
func (dl *discardLogger) Errorf(format string, args ...interface{})   {}
func (dl *discardLogger) Fatalf(format string, args ...interface{})   {}

func (dl *discardLogger) WithField(
	key string,
	value interface{},
) trading.Logger {
	return dl
}

func (dl *discardLogger) WithFields(
	fields map[string]interface{},
) trading.Logger {
	return dl
}

type captureEventService struct {
	events []*trading.Event
}

func (ces *captureEventService) Publish(event *trading.Event) {
	ces.events = append(ces.events, event)
}

type fakeProvider struct {
	symbols []string
	tickers map[string]*trading.Ticker
}

func (fp *fakeProvider) Symbols(ctx context.Context) ([]string, error) {
	return fp.symbols, nil
}

func (fp *fakeProvider) Ticker(
	ctx context.Context,
	symbol string,
) (*trading.Ticker, error) {
	ticker, exists := fp.tickers[symbol]
	if !exists {
		return nil, fmt.Errorf(
			"%w: no ticker for [%v]",
			trading.ErrUnavailable,
			symbol,
		)
	}

	return ticker, nil
}

type fakeConnector struct {
	provider *fakeProvider
}

func (fc *fakeConnector) Connect(
	ctx context.Context,
	exchange *trading.Exchange,
) (trading.MarketDataProvider, error) {
	return fc.provider, nil
}

// fixture wires the core services over in-memory storage with one
// enabled exchange, one active trader and one ETH/BTC market.
type fixture struct {
	idService  *uuid.IDService
	events     *captureEventService
	balances   *inmem.BalanceRepository
	markets    *inmem.MarketRepository
	registry   *trading.Registry
	book       *trading.OrderBook
	exchange   *trading.Exchange
	trader     *trading.Trader
	market     *trading.Market
}

func newFixture(t *testing.T, provider *fakeProvider) *fixture {
	store := inmem.NewStore()
	idService := &uuid.IDService{}
	logger := &discardLogger{}
	events := &captureEventService{}

	exchanges := inmem.NewExchangeRepository(store)
	traders := inmem.NewTraderRepository(store)
	markets := inmem.NewMarketRepository(store)

	registry := trading.NewRegistry(
		logger,
		idService,
		exchanges,
		inmem.NewCurrencyRepository(store),
		markets,
		&fakeConnector{provider},
	)

	book := trading.NewOrderBook(
		logger,
		idService,
		inmem.NewTxRunner(store),
		markets,
		inmem.NewOrderRepository(store),
		inmem.NewDealRepository(store),
		events,
	)

	exchange := &trading.Exchange{
		ID:      idService.NewID(),
		Name:    "binance",
		Enabled: true,
	}
	if err := exchanges.CreateExchange(exchange); err != nil {
		t.Fatalf("could not create exchange: [%v]", err)
	}

	trader := &trading.Trader{
		ID:     idService.NewID(),
		Name:   "ema-cross",
		Active: true,
	}
	if err := traders.CreateTrader(trader); err != nil {
		t.Fatalf("could not create trader: [%v]", err)
	}

	market, err := registry.GetOrCreateMarket(exchange, "ETH/BTC")
	if err != nil {
		t.Fatalf("could not create market: [%v]", err)
	}

	return &fixture{
		idService: idService,
		events:    events,
		balances:  inmem.NewBalanceRepository(store),
		markets:   markets,
		registry:  registry,
		book:      book,
		exchange:  exchange,
		trader:    trader,
		market:    market,
	}
}

// fundBalance gives the trader the specified amount of the currency,
// fully available.
func (f *fixture) fundBalance(
	t *testing.T,
	currency *trading.Currency,
	amount string,
) *trading.Balance {
	ledger := trading.NewLedger(f.balances, f.idService)

	balance, err := ledger.GetOrCreateBalance(f.trader.ID, currency.ID)
	if err != nil {
		t.Fatalf("could not get or create balance: [%v]", err)
	}

	if err := ledger.SettleIncoming(balance, dec(amount)); err != nil {
		t.Fatalf("could not fund balance: [%v]", err)
	}

	return balance
}

// balanceOf re-reads the trader's current balance of the currency.
func (f *fixture) balanceOf(
	t *testing.T,
	currency *trading.Currency,
) *trading.Balance {
	balance, err := f.balances.Balance(f.trader.ID, currency.ID)
	if err != nil {
		t.Fatalf("could not get balance: [%v]", err)
	}
	if balance == nil {
		t.Fatalf("no balance for currency [%v]", currency)
	}

	return balance
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func assertDecimalEqual(
	t *testing.T,
	name, expected string,
	actual decimal.Decimal,
) {
	t.Helper()

	if !actual.Equal(dec(expected)) {
		t.Errorf(
			"unexpected %s\nexpected: [%v]\nactual:   [%v]",
			name,
			expected,
			actual,
		)
	}
}
