package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dividend is one dividend record of a stock. Amount and all dates are
// nullable: the provider regularly omits them and "unknown" must not be
// collapsed into zero.
type Dividend struct {
	ID              int64
	StockID         int64
	Amount          *decimal.Decimal
	DeclarationDate *time.Time
	ExDividendDate  *time.Time
	PaymentDate     *time.Time
}
