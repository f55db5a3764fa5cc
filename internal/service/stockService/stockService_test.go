package stockService

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/payout-hq/payout/config"
	"github.com/payout-hq/payout/data/repository"
	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	stocks    map[string]model.Stock
	dividends map[int64][]model.Dividend
	latest    map[int64]model.Dividend
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		stocks:    make(map[string]model.Stock),
		dividends: make(map[int64][]model.Dividend),
		latest:    make(map[int64]model.Dividend),
	}
}

func (r *fakeRepository) GetStockByTicker(_ context.Context, ticker string) (model.Stock, error) {
	stock, ok := r.stocks[ticker]
	if !ok {
		return model.Stock{}, repository.ErrNotFound
	}
	return stock, nil
}

func (r *fakeRepository) GetStocksByTickers(_ context.Context, tickers []string) ([]model.Stock, error) {
	res := make([]model.Stock, 0, len(tickers))
	for _, ticker := range tickers {
		if stock, ok := r.stocks[ticker]; ok {
			res = append(res, stock)
		}
	}
	return res, nil
}

func (r *fakeRepository) GetDividendsByStockID(_ context.Context, stockID int64) ([]model.Dividend, error) {
	return r.dividends[stockID], nil
}

func (r *fakeRepository) GetLatestDividendsByStockIDs(_ context.Context, stockIDs []int64) (map[int64]model.Dividend, error) {
	res := make(map[int64]model.Dividend)
	for _, id := range stockIDs {
		if div, ok := r.latest[id]; ok {
			res[id] = div
		}
	}
	return res, nil
}

func (r *fakeRepository) SearchStocks(_ context.Context, _ string, _, _ int) ([]model.Stock, error) {
	return nil, nil
}

func (r *fakeRepository) GetUpcomingDividendStocks(_ context.Context, _ time.Time, _, _ int) ([]model.StockDividend, error) {
	return nil, nil
}

func (r *fakeRepository) GetTopDividendYieldStocks(_ context.Context, _ int, _, _ int) ([]model.StockYield, error) {
	return nil, nil
}

// fakeCache always misses on reads and records writes.
type fakeCache struct {
	detailWrites  []model.StockDetail
	listingWrites int
}

func (c *fakeCache) GetStockDetail(_ context.Context, _ string) (model.StockDetail, error) {
	return model.StockDetail{}, errors.New("cache miss")
}

func (c *fakeCache) SetStockDetail(_ context.Context, detail model.StockDetail) error {
	c.detailWrites = append(c.detailWrites, detail)
	return nil
}

func (c *fakeCache) GetListingPage(_ context.Context, _ string, _ int, _ any) error {
	return errors.New("cache miss")
}

func (c *fakeCache) SetListingPage(_ context.Context, _ string, _ int, _ any) error {
	c.listingWrites++
	return nil
}

func newTestService(repo *fakeRepository, cache *fakeCache) *StockService {
	cfg := &config.Config{StocksPerPage: 10, DividendsPerPage: 10}
	svc := New(cfg, repo, cache)
	svc.now = func() time.Time {
		return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func amount(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func TestGetStockDetail(t *testing.T) {
	repo := newFakeRepository()
	repo.stocks["KO"] = model.Stock{ID: 1, Ticker: "KO", Name: "Coca-Cola", Sector: model.SectorConsumerDefensive, Price: decimal.NewFromInt(60)}
	repo.dividends[1] = []model.Dividend{
		{ID: 1, StockID: 1, Amount: amount(0.46), PaymentDate: date(2023, time.April, 3)},
		{ID: 2, StockID: 1, Amount: amount(0.46), PaymentDate: date(2023, time.July, 3)},
		{ID: 3, StockID: 1, Amount: amount(0.46), PaymentDate: date(2023, time.October, 2)},
		{ID: 4, StockID: 1, Amount: amount(0.46), PaymentDate: date(2023, time.December, 15)},
	}
	cache := &fakeCache{}

	detail, err := newTestService(repo, cache).GetStockDetail(context.Background(), "KO")

	require.NoError(t, err)
	assert.Equal(t, "KO", detail.Stock.Ticker)
	assert.Equal(t, []time.Month{time.April, time.July, time.October, time.December}, detail.DividendMonths)

	require.NotNil(t, detail.DividendYield)
	assert.True(t, detail.DividendYield.Equal(decimal.NewFromFloat(1.84).Div(decimal.NewFromInt(60))))

	// 2023-04-03 re-stamped into 2024 projects the earliest payment date
	require.NotNil(t, detail.NextDividend)
	require.NotNil(t, detail.NextDividend.PaymentDate)
	assert.Equal(t, time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC), *detail.NextDividend.PaymentDate)

	require.Len(t, cache.detailWrites, 1)
}

func TestGetStockDetail_NoDividends(t *testing.T) {
	repo := newFakeRepository()
	repo.stocks["BRK-B"] = model.Stock{ID: 2, Ticker: "BRK-B", Price: decimal.NewFromInt(400)}

	detail, err := newTestService(repo, &fakeCache{}).GetStockDetail(context.Background(), "BRK-B")

	require.NoError(t, err)
	assert.Empty(t, detail.DividendMonths)
	assert.Nil(t, detail.DividendYield)
	assert.Nil(t, detail.NextDividend)
}

func TestGetStockDetail_NotFound(t *testing.T) {
	_, err := newTestService(newFakeRepository(), &fakeCache{}).GetStockDetail(context.Background(), "ZZZZ")

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Contains(t, err.Error(), "ZZZZ")
}

func TestAnalyzeSectorRatio(t *testing.T) {
	repo := newFakeRepository()
	repo.stocks["AAPL"] = model.Stock{ID: 1, Ticker: "AAPL", Sector: model.SectorTechnology}
	repo.stocks["MSFT"] = model.Stock{ID: 2, Ticker: "MSFT", Sector: model.SectorTechnology}
	repo.stocks["XOM"] = model.Stock{ID: 3, Ticker: "XOM", Sector: model.SectorEnergy}
	repo.latest[3] = model.Dividend{ID: 9, StockID: 3, Amount: amount(0.95)}

	res, err := newTestService(repo, &fakeCache{}).AnalyzeSectorRatio(context.Background(), []model.TickerShare{
		{Ticker: "AAPL", Share: 10},
		{Ticker: "MSFT", Share: 5},
		{Ticker: "XOM", Share: 100},
	})

	require.NoError(t, err)
	require.Len(t, res, 2)

	// sorted by ratio descending: two tech stocks out of three
	assert.Equal(t, model.SectorTechnology, res[0].Sector)
	assert.InDelta(t, 2.0/3.0, res[0].Ratio, 1e-9)
	assert.Len(t, res[0].StockShares, 2)

	assert.Equal(t, model.SectorEnergy, res[1].Sector)
	assert.InDelta(t, 1.0/3.0, res[1].Ratio, 1e-9)
	require.Len(t, res[1].StockShares, 1)
	require.NotNil(t, res[1].StockShares[0].Dividend)
	assert.True(t, res[1].StockShares[0].Dividend.Amount.Equal(decimal.NewFromFloat(0.95)))
}

func TestAnalyzeSectorRatio_SingleHolding(t *testing.T) {
	repo := newFakeRepository()
	repo.stocks["AAPL"] = model.Stock{ID: 1, Ticker: "AAPL", Sector: model.SectorTechnology}

	res, err := newTestService(repo, &fakeCache{}).AnalyzeSectorRatio(context.Background(), []model.TickerShare{
		{Ticker: "AAPL", Share: 1},
	})

	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, model.SectorTechnology, res[0].Sector)
	assert.InDelta(t, 1.0, res[0].Ratio, 1e-9)
}

func TestAnalyzeSectorRatio_Validation(t *testing.T) {
	svc := newTestService(newFakeRepository(), &fakeCache{})

	_, err := svc.AnalyzeSectorRatio(context.Background(), nil)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.AnalyzeSectorRatio(context.Background(), []model.TickerShare{{Ticker: "", Share: 1}})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.AnalyzeSectorRatio(context.Background(), []model.TickerShare{{Ticker: "AAPL", Share: 0}})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestAnalyzeSectorRatio_UnknownTicker(t *testing.T) {
	repo := newFakeRepository()
	repo.stocks["AAPL"] = model.Stock{ID: 1, Ticker: "AAPL", Sector: model.SectorTechnology}

	_, err := newTestService(repo, &fakeCache{}).AnalyzeSectorRatio(context.Background(), []model.TickerShare{
		{Ticker: "AAPL", Share: 1},
		{Ticker: "ZZZZ", Share: 2},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Contains(t, err.Error(), "ZZZZ")
}

func TestSearchStocks_EmptyKeyword(t *testing.T) {
	_, err := newTestService(newFakeRepository(), &fakeCache{}).SearchStocks(context.Background(), "", 1)

	assert.ErrorIs(t, err, service.ErrValidation)
}
