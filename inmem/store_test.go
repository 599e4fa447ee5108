package inmem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papertrade/trading"
	"github.com/papertrade/trading/uuid"
)

func TestTxRunnerRollback(t *testing.T) {
	store := NewStore()
	idService := &uuid.IDService{}

	balances := NewBalanceRepository(store)

	balance := &trading.Balance{
		ID:         idService.NewID(),
		TraderID:   idService.NewID(),
		CurrencyID: idService.NewID(),
		Value:      decimal.NewFromInt(10),
		Available:  decimal.NewFromInt(10),
	}
	if err := balances.CreateBalance(balance); err != nil {
		t.Fatalf("could not create balance: [%v]", err)
	}

	order := &trading.Order{
		ID:         idService.NewID(),
		TraderID:   balance.TraderID,
		MarketID:   idService.NewID(),
		CreateDate: time.Now(),
		Side:       trading.Bid,
		Price:      decimal.NewFromInt(1),
		Volume:     decimal.NewFromInt(4),
		Available:  decimal.NewFromInt(4),
		State:      trading.Open,
	}

	failure := errors.New("transaction failure")

	err := NewTxRunner(store).RunTx(
		context.Background(),
		func(tx trading.Tx) error {
			mutated, err := tx.Balances().Balance(
				balance.TraderID,
				balance.CurrencyID,
			)
			if err != nil {
				return err
			}

			mutated.Available = decimal.Zero
			if err := tx.Balances().UpdateBalance(mutated); err != nil {
				return err
			}

			if err := tx.Orders().CreateOrder(order); err != nil {
				return err
			}

			if err := tx.Deals().CreateDeal(&trading.Deal{
				ID:      idService.NewID(),
				OrderID: order.ID,
				Date:    time.Now(),
				Price:   decimal.NewFromInt(1),
			}); err != nil {
				return err
			}

			return failure
		},
	)
	if !errors.Is(err, failure) {
		t.Fatalf("expected transaction failure, got: [%v]", err)
	}

	restored, err := balances.Balance(balance.TraderID, balance.CurrencyID)
	if err != nil {
		t.Fatalf("could not get balance: [%v]", err)
	}
	if !restored.Available.Equal(decimal.NewFromInt(10)) {
		t.Errorf(
			"unexpected available\nexpected: [%v]\nactual:   [%v]",
			10,
			restored.Available,
		)
	}

	if _, err := NewOrderRepository(store).Order(order.ID); err == nil {
		t.Errorf("expected order to be rolled back")
	}

	deals, err := NewDealRepository(store).DealsByOrder(order.ID)
	if err != nil {
		t.Fatalf("could not list deals: [%v]", err)
	}
	if len(deals) != 0 {
		t.Errorf(
			"unexpected deals count\nexpected: [%v]\nactual:   [%v]",
			0,
			len(deals),
		)
	}
}

func TestMarketCurrencyResolution(t *testing.T) {
	store := NewStore()
	idService := &uuid.IDService{}

	currencies := NewCurrencyRepository(store)
	markets := NewMarketRepository(store)

	exchangeID := idService.NewID()

	base := &trading.Currency{
		ID:         idService.NewID(),
		ExchangeID: exchangeID,
		Name:       "ETH",
	}
	quote := &trading.Currency{
		ID:         idService.NewID(),
		ExchangeID: exchangeID,
		Name:       "BTC",
	}
	for _, currency := range []*trading.Currency{base, quote} {
		if err := currencies.CreateCurrency(currency); err != nil {
			t.Fatalf("could not create currency: [%v]", err)
		}
	}

	market := &trading.Market{
		ID:         idService.NewID(),
		ExchangeID: exchangeID,
		Symbol:     "ETH/BTC",
		Base:       base,
		Quote:      quote,
	}
	if err := markets.CreateMarket(market); err != nil {
		t.Fatalf("could not create market: [%v]", err)
	}

	read, err := markets.Market(market.ID)
	if err != nil {
		t.Fatalf("could not get market: [%v]", err)
	}

	if read.Base == nil || read.Base.Name != "ETH" {
		t.Errorf("unexpected base currency: [%v]", read.Base)
	}
	if read.Quote == nil || read.Quote.Name != "BTC" {
		t.Errorf("unexpected quote currency: [%v]", read.Quote)
	}
}
