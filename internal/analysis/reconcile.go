package analysis

import (
	"time"

	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/internal/model/fmpModel"
	"github.com/shopspring/decimal"
)

type OpKind int

const (
	OpCreate OpKind = iota
	OpUpdate
)

// DividendOp is the write decision produced by Reconcile.
type DividendOp struct {
	Kind     OpKind
	Dividend model.Dividend
}

const dateLayout = "2006-01-02"

// Reconcile decides what a freshly fetched dividend record means for the
// persisted state of one stock: a new record when none exists, otherwise a
// full replace of amount and all three dates onto the existing record.
// Applying the same record twice therefore converges to the same state,
// and within one ingestion cycle the window processed last wins.
//
// The record's "date" field is the ex-dividend date. Missing or
// unparseable dates propagate as nil, never as an error.
func Reconcile(stockID int64, existing *model.Dividend, rec fmpModel.DividendRecord) DividendOp {
	div := model.Dividend{
		StockID:         stockID,
		Amount:          parseAmount(rec.Dividend),
		DeclarationDate: parseDate(rec.DeclarationDate),
		ExDividendDate:  parseDate(rec.Date),
		PaymentDate:     parseDate(rec.PaymentDate),
	}

	if existing == nil {
		return DividendOp{Kind: OpCreate, Dividend: div}
	}

	div.ID = existing.ID
	return DividendOp{Kind: OpUpdate, Dividend: div}
}

func parseAmount(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
