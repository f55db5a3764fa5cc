package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Dividend struct {
	ID              int64               `db:"dividend_id"`
	StockID         int64               `db:"stock_id"`
	Amount          decimal.NullDecimal `db:"amount"`
	DeclarationDate *time.Time          `db:"declaration_date"`
	ExDividendDate  *time.Time          `db:"ex_dividend_date"`
	PaymentDate     *time.Time          `db:"payment_date"`
}

// StockDividend is a joined stocks+dividends row; dividend columns are
// aliased with a div_ prefix in the queries that scan into it.
type StockDividend struct {
	Stock
	DivID              int64               `db:"div_id"`
	DivAmount          decimal.NullDecimal `db:"div_amount"`
	DivDeclarationDate *time.Time          `db:"div_declaration_date"`
	DivExDividendDate  *time.Time          `db:"div_ex_dividend_date"`
	DivPaymentDate     *time.Time          `db:"div_payment_date"`
}
