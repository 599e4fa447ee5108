package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgtype"

	"github.com/papertrade/trading"
)

// OrderRepository reads and writes order rows. Instances bound to a
// transaction lock the rows they read for the remainder of the
// transaction.
type OrderRepository struct {
	client    *Client
	tx        database
	idService trading.IDService
}

func NewOrderRepository(
	client *Client,
	idService trading.IDService,
) *OrderRepository {
	return &OrderRepository{client: client, idService: idService}
}

func (or *OrderRepository) db() database {
	if or.tx != nil {
		return or.tx
	}

	return or.client.instance()
}

func (or *OrderRepository) CreateOrder(order *trading.Order) error {
	query := `INSERT INTO trade_order (id, trader_id, market_id, create_date,
			close_date, side, price, volume, available, dealt1, dealt2, state)
		VALUES (:id, :trader_id, :market_id, :create_date, :close_date, :side,
			:price, :volume, :available, :dealt1, :dealt2, :state)`

	row, err := new(orderRow).wrap(order)
	if err != nil {
		return fmt.Errorf(
			"could not convert order [%v] to pg row: [%v]",
			order.ID,
			err,
		)
	}

	_, err = or.db().NamedExec(query, row)
	if err != nil {
		return fmt.Errorf(
			"could not execute command for order [%v]: [%v]",
			order.ID,
			err,
		)
	}

	return nil
}

func (or *OrderRepository) Order(
	orderID trading.ID,
) (*trading.Order, error) {
	var row orderRow

	query := `SELECT * FROM trade_order WHERE id = $1`
	if or.tx != nil {
		query += ` FOR UPDATE`
	}

	err := or.db().Get(&row, query, orderID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no order with ID [%v]", orderID)
		}

		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	return row.unwrap(or.idService)
}

func (or *OrderRepository) OrdersByState(
	traderID trading.ID,
	state trading.OrderState,
) ([]*trading.Order, error) {
	var rows []orderRow

	query := `SELECT * FROM trade_order WHERE trader_id = $1 AND state = $2
		ORDER BY create_date`

	err := or.db().Select(
		&rows,
		query,
		traderID.String(),
		state.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	orders := make([]*trading.Order, len(rows))
	for index := range rows {
		order, err := rows[index].unwrap(or.idService)
		if err != nil {
			return nil, err
		}

		orders[index] = order
	}

	return orders, nil
}

func (or *OrderRepository) UpdateOrder(order *trading.Order) error {
	query := `UPDATE trade_order SET close_date = :close_date,
			available = :available, dealt1 = :dealt1, dealt2 = :dealt2,
			state = :state
		WHERE id = :id`

	row, err := new(orderRow).wrap(order)
	if err != nil {
		return fmt.Errorf(
			"could not convert order [%v] to pg row: [%v]",
			order.ID,
			err,
		)
	}

	_, err = or.db().NamedExec(query, row)
	if err != nil {
		return fmt.Errorf(
			"could not execute command for order [%v]: [%v]",
			order.ID,
			err,
		)
	}

	return nil
}

type orderRow struct {
	ID         string
	TraderID   string     `db:"trader_id"`
	MarketID   string     `db:"market_id"`
	CreateDate time.Time  `db:"create_date"`
	CloseDate  *time.Time `db:"close_date"`
	Side       string
	Price      pgtype.Numeric
	Volume     pgtype.Numeric
	Available  pgtype.Numeric
	Dealt1     pgtype.Numeric
	Dealt2     pgtype.Numeric
	State      string
}

func (or *orderRow) wrap(order *trading.Order) (*orderRow, error) {
	price, err := decimalToNumeric(order.Price)
	if err != nil {
		return nil, err
	}

	volume, err := decimalToNumeric(order.Volume)
	if err != nil {
		return nil, err
	}

	available, err := decimalToNumeric(order.Available)
	if err != nil {
		return nil, err
	}

	dealtBase, err := decimalToNumeric(order.DealtBase)
	if err != nil {
		return nil, err
	}

	dealtQuote, err := decimalToNumeric(order.DealtQuote)
	if err != nil {
		return nil, err
	}

	or.ID = order.ID.String()
	or.TraderID = order.TraderID.String()
	or.MarketID = order.MarketID.String()
	or.CreateDate = order.CreateDate
	or.CloseDate = order.CloseDate
	or.Side = order.Side.String()
	or.Price = price
	or.Volume = volume
	or.Available = available
	or.Dealt1 = dealtBase
	or.Dealt2 = dealtQuote
	or.State = order.State.String()

	return or, nil
}

func (or *orderRow) unwrap(
	idService trading.IDService,
) (*trading.Order, error) {
	ID, err := idService.NewIDFromString(or.ID)
	if err != nil {
		return nil, err
	}

	traderID, err := idService.NewIDFromString(or.TraderID)
	if err != nil {
		return nil, err
	}

	marketID, err := idService.NewIDFromString(or.MarketID)
	if err != nil {
		return nil, err
	}

	side, err := trading.ParseOrderSide(or.Side)
	if err != nil {
		return nil, err
	}

	state, err := trading.ParseOrderState(or.State)
	if err != nil {
		return nil, err
	}

	price, err := numericToDecimal(or.Price)
	if err != nil {
		return nil, err
	}

	volume, err := numericToDecimal(or.Volume)
	if err != nil {
		return nil, err
	}

	available, err := numericToDecimal(or.Available)
	if err != nil {
		return nil, err
	}

	dealtBase, err := numericToDecimal(or.Dealt1)
	if err != nil {
		return nil, err
	}

	dealtQuote, err := numericToDecimal(or.Dealt2)
	if err != nil {
		return nil, err
	}

	return &trading.Order{
		ID:         ID,
		TraderID:   traderID,
		MarketID:   marketID,
		CreateDate: or.CreateDate,
		CloseDate:  or.CloseDate,
		Side:       side,
		Price:      price,
		Volume:     volume,
		Available:  available,
		DealtBase:  dealtBase,
		DealtQuote: dealtQuote,
		State:      state,
	}, nil
}
