// Package binance adapts the Binance HTTP API to the market data
// provider port.
package binance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adshao/go-binance"
	"github.com/shopspring/decimal"

	"github.com/papertrade/trading"
)

const requestTimeout = 1 * time.Minute

// Connector builds one provider handle per exchange. The credentials
// are shared; public market data endpoints work with empty ones.
type Connector struct {
	apiKey    string
	secretKey string
}

func NewConnector(apiKey, secretKey string) *Connector {
	return &Connector{apiKey, secretKey}
}

func (c *Connector) Connect(
	ctx context.Context,
	exchange *trading.Exchange,
) (trading.MarketDataProvider, error) {
	client := binance.NewClient(c.apiKey, c.secretKey)

	requestCtx, cancelRequestCtx := context.WithTimeout(ctx, requestTimeout)
	defer cancelRequestCtx()

	exchangeInfo, err := client.NewExchangeInfoService().Do(requestCtx)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: could not get exchange info: [%v]",
			trading.ErrUnavailable,
			err,
		)
	}

	return &provider{
		client:       client,
		exchangeInfo: exchangeInfo,
	}, nil
}

type provider struct {
	client       *binance.Client
	exchangeInfo *binance.ExchangeInfo
}

func (p *provider) Symbols(ctx context.Context) ([]string, error) {
	symbols := make([]string, 0, len(p.exchangeInfo.Symbols))

	for _, symbol := range p.exchangeInfo.Symbols {
		symbols = append(
			symbols,
			symbol.BaseAsset+"/"+symbol.QuoteAsset,
		)
	}

	return symbols, nil
}

func (p *provider) Ticker(
	ctx context.Context,
	symbol string,
) (*trading.Ticker, error) {
	requestCtx, cancelRequestCtx := context.WithTimeout(ctx, requestTimeout)
	defer cancelRequestCtx()

	stats, err := p.client.
		NewListPriceChangeStatsService().
		Symbol(strings.ReplaceAll(symbol, "/", "")).
		Do(requestCtx)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: could not get price change stats for [%v]: [%v]",
			trading.ErrUnavailable,
			symbol,
			err,
		)
	}

	if len(stats) == 0 {
		return nil, fmt.Errorf(
			"%w: no price change stats for [%v]",
			trading.ErrUnavailable,
			symbol,
		)
	}

	return parsePriceChangeStats(stats[0])
}

func parsePriceChangeStats(
	stats *binance.PriceChangeStats,
) (*trading.Ticker, error) {
	high, err := decimal.NewFromString(stats.HighPrice)
	if err != nil {
		return nil, fmt.Errorf("could not parse high price: [%v]", err)
	}

	low, err := decimal.NewFromString(stats.LowPrice)
	if err != nil {
		return nil, fmt.Errorf("could not parse low price: [%v]", err)
	}

	bid, err := decimal.NewFromString(stats.BidPrice)
	if err != nil {
		return nil, fmt.Errorf("could not parse bid price: [%v]", err)
	}

	ask, err := decimal.NewFromString(stats.AskPrice)
	if err != nil {
		return nil, fmt.Errorf("could not parse ask price: [%v]", err)
	}

	volume, err := decimal.NewFromString(stats.QuoteVolume)
	if err != nil {
		return nil, fmt.Errorf("could not parse quote volume: [%v]", err)
	}

	return &trading.Ticker{
		Time:   parseMilliseconds(stats.CloseTime),
		High:   high,
		Low:    low,
		Bid:    bid,
		Ask:    ask,
		Volume: volume,
	}, nil
}

func parseMilliseconds(milliseconds int64) time.Time {
	return time.Unix(0, milliseconds*int64(time.Millisecond))
}
