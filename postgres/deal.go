package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgtype"

	"github.com/papertrade/trading"
)

// DealRepository appends and lists fill records. Deals are append-only;
// there is no update or delete.
type DealRepository struct {
	client    *Client
	tx        database
	idService trading.IDService
}

func NewDealRepository(
	client *Client,
	idService trading.IDService,
) *DealRepository {
	return &DealRepository{client: client, idService: idService}
}

func (dr *DealRepository) db() database {
	if dr.tx != nil {
		return dr.tx
	}

	return dr.client.instance()
}

func (dr *DealRepository) CreateDeal(deal *trading.Deal) error {
	query := `INSERT INTO deal (id, order_id, date, price, dealt1, dealt2)
		VALUES (:id, :order_id, :date, :price, :dealt1, :dealt2)`

	row, err := new(dealRow).wrap(deal)
	if err != nil {
		return fmt.Errorf(
			"could not convert deal [%v] to pg row: [%v]",
			deal.ID,
			err,
		)
	}

	_, err = dr.db().NamedExec(query, row)
	if err != nil {
		return fmt.Errorf(
			"could not execute command for deal [%v]: [%v]",
			deal.ID,
			err,
		)
	}

	return nil
}

func (dr *DealRepository) DealsByOrder(
	orderID trading.ID,
) ([]*trading.Deal, error) {
	var rows []dealRow

	query := `SELECT * FROM deal WHERE order_id = $1 ORDER BY date`

	err := dr.db().Select(&rows, query, orderID.String())
	if err != nil {
		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	deals := make([]*trading.Deal, len(rows))
	for index := range rows {
		deal, err := rows[index].unwrap(dr.idService)
		if err != nil {
			return nil, err
		}

		deals[index] = deal
	}

	return deals, nil
}

type dealRow struct {
	ID      string
	OrderID string    `db:"order_id"`
	Date    time.Time
	Price   pgtype.Numeric
	Dealt1  pgtype.Numeric
	Dealt2  pgtype.Numeric
}

func (dr *dealRow) wrap(deal *trading.Deal) (*dealRow, error) {
	price, err := decimalToNumeric(deal.Price)
	if err != nil {
		return nil, err
	}

	dealtBase, err := decimalToNumeric(deal.DealtBase)
	if err != nil {
		return nil, err
	}

	dealtQuote, err := decimalToNumeric(deal.DealtQuote)
	if err != nil {
		return nil, err
	}

	dr.ID = deal.ID.String()
	dr.OrderID = deal.OrderID.String()
	dr.Date = deal.Date
	dr.Price = price
	dr.Dealt1 = dealtBase
	dr.Dealt2 = dealtQuote

	return dr, nil
}

func (dr *dealRow) unwrap(
	idService trading.IDService,
) (*trading.Deal, error) {
	ID, err := idService.NewIDFromString(dr.ID)
	if err != nil {
		return nil, err
	}

	orderID, err := idService.NewIDFromString(dr.OrderID)
	if err != nil {
		return nil, err
	}

	price, err := numericToDecimal(dr.Price)
	if err != nil {
		return nil, err
	}

	dealtBase, err := numericToDecimal(dr.Dealt1)
	if err != nil {
		return nil, err
	}

	dealtQuote, err := numericToDecimal(dr.Dealt2)
	if err != nil {
		return nil, err
	}

	return &trading.Deal{
		ID:         ID,
		OrderID:    orderID,
		Date:       dr.Date,
		Price:      price,
		DealtBase:  dealtBase,
		DealtQuote: dealtQuote,
	}, nil
}
