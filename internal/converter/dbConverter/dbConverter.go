package dbConverter

import (
	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/internal/model/dbModel"
	"github.com/shopspring/decimal"
)

func ConvertStock(dbStock dbModel.Stock) model.Stock {
	return model.Stock{
		ID:        dbStock.ID,
		Ticker:    dbStock.Ticker,
		Name:      dbStock.Name,
		Sector:    model.SectorFromValue(dbStock.Sector),
		Exchange:  model.Exchange(dbStock.Exchange),
		Industry:  dbStock.Industry,
		Price:     dbStock.Price,
		Volume:    dbStock.Volume,
		AvgVolume: dbStock.AvgVolume,
		LogoUrl:   dbStock.LogoUrl,
	}
}

func ConvertStocks(dbStocks []dbModel.Stock) []model.Stock {
	stocks := make([]model.Stock, 0, len(dbStocks))
	for _, s := range dbStocks {
		stocks = append(stocks, ConvertStock(s))
	}
	return stocks
}

func ConvertDividend(dbDividend dbModel.Dividend) model.Dividend {
	return model.Dividend{
		ID:              dbDividend.ID,
		StockID:         dbDividend.StockID,
		Amount:          convertNullDecimal(dbDividend.Amount),
		DeclarationDate: dbDividend.DeclarationDate,
		ExDividendDate:  dbDividend.ExDividendDate,
		PaymentDate:     dbDividend.PaymentDate,
	}
}

func ConvertDividends(dbDividends []dbModel.Dividend) []model.Dividend {
	dividends := make([]model.Dividend, 0, len(dbDividends))
	for _, d := range dbDividends {
		dividends = append(dividends, ConvertDividend(d))
	}
	return dividends
}

func ConvertStockDividend(row dbModel.StockDividend) model.StockDividend {
	return model.StockDividend{
		Stock: ConvertStock(row.Stock),
		Dividend: model.Dividend{
			ID:              row.DivID,
			StockID:         row.Stock.ID,
			Amount:          convertNullDecimal(row.DivAmount),
			DeclarationDate: row.DivDeclarationDate,
			ExDividendDate:  row.DivExDividendDate,
			PaymentDate:     row.DivPaymentDate,
		},
	}
}

func ConvertStockYield(row dbModel.StockYield) model.StockYield {
	return model.StockYield{
		Stock: ConvertStock(row.Stock),
		Yield: row.Yield,
	}
}

func convertNullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
