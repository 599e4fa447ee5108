package trading_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/papertrade/trading"
)

func TestGetOrCreateMarket_Idempotent(t *testing.T) {
	fixture := newFixture(t, &fakeProvider{})

	market, err := fixture.registry.GetOrCreateMarket(
		fixture.exchange,
		"ETH/BTC",
	)
	if err != nil {
		t.Fatalf("could not get or create market: [%v]", err)
	}

	if market.ID.String() != fixture.market.ID.String() {
		t.Errorf(
			"unexpected market ID\nexpected: [%v]\nactual:   [%v]",
			fixture.market.ID,
			market.ID,
		)
	}

	// The shared quote currency must not be duplicated by another
	// market referencing it.
	other, err := fixture.registry.GetOrCreateMarket(
		fixture.exchange,
		"LTC/BTC",
	)
	if err != nil {
		t.Fatalf("could not get or create market: [%v]", err)
	}

	if other.Quote.ID.String() != market.Quote.ID.String() {
		t.Errorf(
			"unexpected quote currency ID\nexpected: [%v]\nactual:   [%v]",
			market.Quote.ID,
			other.Quote.ID,
		)
	}
}

func TestGetOrCreateMarket_MalformedSymbol(t *testing.T) {
	fixture := newFixture(t, &fakeProvider{})

	_, err := fixture.registry.GetOrCreateMarket(fixture.exchange, "ETHBTC")
	if !errors.Is(err, trading.ErrMalformedSymbol) {
		t.Fatalf("expected malformed symbol error, got: [%v]", err)
	}
}

func TestSyncExchange_SkipsDerivativeSymbols(t *testing.T) {
	provider := &fakeProvider{
		symbols: []string{"ETH/BTC", "BTC.d/USD", "LTC/BTC"},
	}
	fixture := newFixture(t, provider)

	err := fixture.registry.SyncExchange(
		context.Background(),
		fixture.exchange,
	)
	if err != nil {
		t.Fatalf("could not sync exchange: [%v]", err)
	}

	markets, err := fixture.markets.MarketsOfExchange(fixture.exchange.ID)
	if err != nil {
		t.Fatalf("could not list markets: [%v]", err)
	}

	if len(markets) != 2 {
		t.Fatalf(
			"unexpected markets count\nexpected: [%v]\nactual:   [%v]",
			2,
			len(markets),
		)
	}
	if markets[0].Symbol != "ETH/BTC" || markets[1].Symbol != "LTC/BTC" {
		t.Errorf(
			"unexpected market symbols: [%v], [%v]",
			markets[0].Symbol,
			markets[1].Symbol,
		)
	}
}

func TestRefreshMarket(t *testing.T) {
	tickerTime := time.Date(2021, 6, 11, 15, 0, 0, 0, time.UTC)

	provider := &fakeProvider{
		tickers: map[string]*trading.Ticker{
			"ETH/BTC": {
				Time:   tickerTime,
				High:   dec("0.061"),
				Low:    dec("0.057"),
				Bid:    dec("0.059"),
				Ask:    dec("0.0591"),
				Volume: dec("12345.6"),
			},
		},
	}
	fixture := newFixture(t, provider)

	err := fixture.registry.RefreshMarket(
		context.Background(),
		provider,
		fixture.market,
	)
	if err != nil {
		t.Fatalf("could not refresh market: [%v]", err)
	}

	market, err := fixture.markets.Market(fixture.market.ID)
	if err != nil {
		t.Fatalf("could not get market: [%v]", err)
	}

	if !market.LastUpdate.Equal(tickerTime) {
		t.Errorf(
			"unexpected last update\nexpected: [%v]\nactual:   [%v]",
			tickerTime,
			market.LastUpdate,
		)
	}
	assertDecimalEqual(t, "high", "0.061", market.High)
	assertDecimalEqual(t, "low", "0.057", market.Low)
	assertDecimalEqual(t, "bid", "0.059", market.Bid)
	assertDecimalEqual(t, "ask", "0.0591", market.Ask)
	assertDecimalEqual(t, "volume", "12345.6", market.Volume)
}

func TestRefreshMarket_ProviderUnavailable(t *testing.T) {
	provider := &fakeProvider{
		tickers: map[string]*trading.Ticker{},
	}
	fixture := newFixture(t, provider)

	err := fixture.registry.RefreshMarket(
		context.Background(),
		provider,
		fixture.market,
	)
	if !trading.IsUnavailable(err) {
		t.Fatalf("expected provider unavailable error, got: [%v]", err)
	}

	market, err := fixture.markets.Market(fixture.market.ID)
	if err != nil {
		t.Fatalf("could not get market: [%v]", err)
	}

	// The snapshot must stay untouched on provider failure.
	if !market.LastUpdate.IsZero() {
		t.Errorf(
			"unexpected last update\nexpected: [%v]\nactual:   [%v]",
			time.Time{},
			market.LastUpdate,
		)
	}
	assertDecimalEqual(t, "bid", "0", market.Bid)
	assertDecimalEqual(t, "ask", "0", market.Ask)
}

func TestParseSymbol(t *testing.T) {
	base, quote, err := trading.ParseSymbol("ETH/BTC")
	if err != nil {
		t.Fatalf("could not parse symbol: [%v]", err)
	}

	if base != "ETH" || quote != "BTC" {
		t.Errorf(
			"unexpected pair\nexpected: [ETH BTC]\nactual:   [%v %v]",
			base,
			quote,
		)
	}

	_, _, err = trading.ParseSymbol("ETHBTC")
	if !errors.Is(err, trading.ErrMalformedSymbol) {
		t.Errorf("expected malformed symbol error, got: [%v]", err)
	}
}
