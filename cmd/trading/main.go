package main

import (
	"context"
	"fmt"
	"os"

	"github.com/papertrade/trading"
	"github.com/papertrade/trading/binance"
	"github.com/papertrade/trading/daemon"
	"github.com/papertrade/trading/logrus"
	"github.com/papertrade/trading/postgres"
	"github.com/papertrade/trading/uuid"
)

func main() {
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	config, err := readConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "could not read config: [%v]", err)
		os.Exit(1)
	}

	logger := logrus.ConfigureStandardLogger(
		config.Logging.Format,
		config.Logging.Level,
	)

	postgresClient, err := connectPostgres(ctx, logger, &config.Database)
	if err != nil {
		logger.Fatalf("could not connect postgres: [%v]", err)
	}

	idService := &uuid.IDService{}

	registry := trading.NewRegistry(
		logger,
		idService,
		postgres.NewExchangeRepository(postgresClient, idService),
		postgres.NewCurrencyRepository(postgresClient, idService),
		postgres.NewMarketRepository(postgresClient, idService),
		binance.NewConnector(
			config.Binance.ApiKey,
			config.Binance.SecretKey,
		),
	)

	refresher := daemon.RunRefresher(ctx, logger, registry)

	select {
	case err := <-refresher.ErrChan():
		logger.Fatalf("market refresher error: [%v]", err)
	case <-ctx.Done():
	}
}

func connectPostgres(
	ctx context.Context,
	logger trading.Logger,
	config *Database,
) (*postgres.Client, error) {
	if err := postgres.RunMigration(
		logger,
		(*postgres.Config)(config),
	); err != nil {
		return nil, fmt.Errorf(
			"could not run postgres migration: [%v]",
			err,
		)
	}

	client, err := postgres.NewClient(
		ctx,
		(*postgres.Config)(config),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"could not create postgres client: [%v]",
			err,
		)
	}

	return client, nil
}
