package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/papertrade/trading"
)

// TxRunner executes ledger operations inside one serializable database
// transaction. Balance and order reads performed through the
// transaction lock their rows, so concurrent operations on the same
// trader's balances never interleave partially.
type TxRunner struct {
	client    *Client
	idService trading.IDService
}

func NewTxRunner(client *Client, idService trading.IDService) *TxRunner {
	return &TxRunner{client, idService}
}

func (tr *TxRunner) RunTx(
	ctx context.Context,
	fn func(tx trading.Tx) error,
) (err error) {
	tx, err := tr.client.instance().BeginTxx(
		ctx,
		&sql.TxOptions{Isolation: sql.LevelSerializable},
	)
	if err != nil {
		return fmt.Errorf("could not begin transaction: [%v]", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&clientTx{tx, tr.idService}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: [%v]", err)
	}

	return nil
}

type clientTx struct {
	tx        database
	idService trading.IDService
}

func (ct *clientTx) Balances() trading.BalanceRepository {
	return &BalanceRepository{tx: ct.tx, idService: ct.idService}
}

func (ct *clientTx) Orders() trading.OrderRepository {
	return &OrderRepository{tx: ct.tx, idService: ct.idService}
}

func (ct *clientTx) Deals() trading.DealRepository {
	return &DealRepository{tx: ct.tx, idService: ct.idService}
}
