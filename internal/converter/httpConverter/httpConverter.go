package httpConverter

import (
	"time"

	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/internal/model/httpModel"
)

const dateLayout = "2006-01-02"

func ConvertStock(stock model.Stock) httpModel.StockResponse {
	return httpModel.StockResponse{
		Ticker:      stock.Ticker,
		CompanyName: stock.Name,
		SectorName:  stock.Sector.Name(),
		Exchange:    string(stock.Exchange),
		Industry:    stock.Industry,
		Price:       stock.Price,
		Volume:      stock.Volume,
		LogoUrl:     stock.LogoUrl,
	}
}

func ConvertStocks(stocks []model.Stock) []httpModel.StockResponse {
	res := make([]httpModel.StockResponse, 0, len(stocks))
	for _, s := range stocks {
		res = append(res, ConvertStock(s))
	}
	return res
}

func ConvertDividend(dividend model.Dividend) httpModel.DividendResponse {
	return httpModel.DividendResponse{
		Amount:          dividend.Amount,
		DeclarationDate: formatDate(dividend.DeclarationDate),
		ExDividendDate:  formatDate(dividend.ExDividendDate),
		PaymentDate:     formatDate(dividend.PaymentDate),
	}
}

func ConvertStockDetail(detail model.StockDetail) httpModel.StockDetailResponse {
	months := make([]string, 0, len(detail.DividendMonths))
	for _, m := range detail.DividendMonths {
		months = append(months, m.String())
	}

	res := httpModel.StockDetailResponse{
		StockResponse:  ConvertStock(detail.Stock),
		DividendMonths: months,
		DividendYield:  detail.DividendYield,
	}

	if detail.NextDividend != nil {
		dividend := ConvertDividend(*detail.NextDividend)
		res.NextDividend = &dividend
	}

	return res
}

func ConvertSectorRatios(ratios []model.SectorRatio) []httpModel.SectorRatioResponse {
	res := make([]httpModel.SectorRatioResponse, 0, len(ratios))
	for _, r := range ratios {
		stocks := make([]httpModel.StockShareResponse, 0, len(r.StockShares))
		for _, share := range r.StockShares {
			stocks = append(stocks, httpModel.StockShareResponse{
				StockResponse: ConvertStock(share.Stock),
				Share:         share.Share,
			})
		}
		res = append(res, httpModel.SectorRatioResponse{
			SectorName:  r.Sector.Name(),
			SectorRatio: r.Ratio,
			Stocks:      stocks,
		})
	}
	return res
}

func ConvertUpcomingDividends(rows []model.StockDividend) []httpModel.UpcomingDividendResponse {
	res := make([]httpModel.UpcomingDividendResponse, 0, len(rows))
	for _, row := range rows {
		res = append(res, httpModel.UpcomingDividendResponse{
			StockResponse: ConvertStock(row.Stock),
			Dividend:      ConvertDividend(row.Dividend),
		})
	}
	return res
}

func ConvertStockYields(rows []model.StockYield) []httpModel.StockDividendYieldResponse {
	res := make([]httpModel.StockDividendYieldResponse, 0, len(rows))
	for _, row := range rows {
		res = append(res, httpModel.StockDividendYieldResponse{
			StockResponse: ConvertStock(row.Stock),
			DividendYield: row.Yield,
		})
	}
	return res
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
