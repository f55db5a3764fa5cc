package batchService

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/payout-hq/payout/config"
	"github.com/payout-hq/payout/data/repository"
	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/internal/model/fmpModel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinancialApi struct {
	stockLists   map[model.Sector][]fmpModel.StockRecord
	stockErrs    map[model.Sector]error
	volumeLists  map[model.Exchange][]fmpModel.VolumeRecord
	calendarFn   func(call int, from, to time.Time) ([]fmpModel.DividendRecord, error)
	calendarCall int
}

func (f *fakeFinancialApi) FetchStockList(_ context.Context, sector model.Sector) ([]fmpModel.StockRecord, error) {
	if err, ok := f.stockErrs[sector]; ok {
		return nil, err
	}
	return f.stockLists[sector], nil
}

func (f *fakeFinancialApi) FetchVolumeList(_ context.Context, exchange model.Exchange) ([]fmpModel.VolumeRecord, error) {
	return f.volumeLists[exchange], nil
}

func (f *fakeFinancialApi) FetchDividendCalendar(_ context.Context, from, to time.Time) ([]fmpModel.DividendRecord, error) {
	call := f.calendarCall
	f.calendarCall++
	if f.calendarFn == nil {
		return nil, nil
	}
	return f.calendarFn(call, from, to)
}

type fakeRepository struct {
	stocks    map[string]model.Stock
	dividends map[int64]model.Dividend
	nextDivID int64

	upserted []model.Stock
	inserts  int
	updates  int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		stocks:    make(map[string]model.Stock),
		dividends: make(map[int64]model.Dividend),
		nextDivID: 1,
	}
}

func (r *fakeRepository) UpsertStocks(_ context.Context, stocks []model.Stock) error {
	r.upserted = append(r.upserted, stocks...)
	return nil
}

func (r *fakeRepository) GetStockByTicker(_ context.Context, ticker string) (model.Stock, error) {
	stock, ok := r.stocks[ticker]
	if !ok {
		return model.Stock{}, repository.ErrNotFound
	}
	return stock, nil
}

func (r *fakeRepository) GetCurrentDividendByStockID(_ context.Context, stockID int64) (model.Dividend, error) {
	div, ok := r.dividends[stockID]
	if !ok {
		return model.Dividend{}, repository.ErrNotFound
	}
	return div, nil
}

func (r *fakeRepository) InsertDividend(_ context.Context, dividend model.Dividend) error {
	dividend.ID = r.nextDivID
	r.nextDivID++
	r.dividends[dividend.StockID] = dividend
	r.inserts++
	return nil
}

func (r *fakeRepository) UpdateDividend(_ context.Context, dividend model.Dividend) error {
	r.dividends[dividend.StockID] = dividend
	r.updates++
	return nil
}

func (r *fakeRepository) GetUpcomingDividendStocks(_ context.Context, _ time.Time, _, _ int) ([]model.StockDividend, error) {
	return nil, nil
}

type fakeCache struct {
	flushes        int
	listingFlushes int
}

func (c *fakeCache) FlushStockDetails(_ context.Context) error {
	c.flushes++
	return nil
}

func (c *fakeCache) FlushListings(_ context.Context) error {
	c.listingFlushes++
	return nil
}

func newTestService(api *fakeFinancialApi, repo *fakeRepository, cache *fakeCache) *BatchService {
	svc := New(&config.Config{}, repo, cache, api, nil, nil, nil)
	svc.now = func() time.Time {
		return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestUpdateDividends_UnknownTickerDiscarded(t *testing.T) {
	api := &fakeFinancialApi{
		calendarFn: func(call int, _, _ time.Time) ([]fmpModel.DividendRecord, error) {
			if call == 0 {
				return []fmpModel.DividendRecord{{Symbol: "ZZZZ", Date: "2024-05-01"}}, nil
			}
			return nil, nil
		},
	}
	repo := newFakeRepository()
	cache := &fakeCache{}

	err := newTestService(api, repo, cache).UpdateDividends(context.Background())

	require.NoError(t, err)
	assert.Zero(t, repo.inserts)
	assert.Zero(t, repo.updates)
	assert.Equal(t, 1, cache.flushes)
}

func TestUpdateDividends_CreateThenUpdate(t *testing.T) {
	// the same ticker appears in an older and a newer window with different
	// amounts; the newer window is processed last so its amount must win
	older := fmpModel.DividendRecord{Symbol: "KO", Dividend: f64(0.46), Date: "2024-03-14", PaymentDate: "2024-04-01"}
	newer := fmpModel.DividendRecord{Symbol: "KO", Dividend: f64(0.485), Date: "2024-05-30", PaymentDate: "2024-07-01"}

	api := &fakeFinancialApi{
		calendarFn: func(call int, _, _ time.Time) ([]fmpModel.DividendRecord, error) {
			switch call {
			case 0:
				return []fmpModel.DividendRecord{older}, nil
			case 3:
				return []fmpModel.DividendRecord{newer}, nil
			default:
				return nil, nil
			}
		},
	}
	repo := newFakeRepository()
	repo.stocks["KO"] = model.Stock{ID: 7, Ticker: "KO"}

	err := newTestService(api, repo, &fakeCache{}).UpdateDividends(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, repo.inserts)
	assert.Equal(t, 1, repo.updates)

	stored := repo.dividends[7]
	require.NotNil(t, stored.Amount)
	assert.True(t, stored.Amount.Equal(decimal.NewFromFloat(0.485)))
	require.NotNil(t, stored.PaymentDate)
	assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), *stored.PaymentDate)
}

func TestUpdateDividends_FailedWindowDoesNotAbortCycle(t *testing.T) {
	api := &fakeFinancialApi{
		calendarFn: func(call int, _, _ time.Time) ([]fmpModel.DividendRecord, error) {
			switch call {
			case 1:
				return nil, errors.New("timeout")
			case 4:
				return []fmpModel.DividendRecord{{Symbol: "PG", Dividend: f64(1.0065), Date: "2024-07-18"}}, nil
			default:
				return nil, nil
			}
		},
	}
	repo := newFakeRepository()
	repo.stocks["PG"] = model.Stock{ID: 3, Ticker: "PG"}

	err := newTestService(api, repo, &fakeCache{}).UpdateDividends(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, repo.inserts)
	assert.Equal(t, 5, api.calendarCall)
}

func TestUpdateDividends_WindowBounds(t *testing.T) {
	var tos []time.Time
	var upcomingFrom, upcomingTo time.Time

	api := &fakeFinancialApi{
		calendarFn: func(call int, from, to time.Time) ([]fmpModel.DividendRecord, error) {
			if call < trailingWindows {
				tos = append(tos, to)
			} else {
				upcomingFrom, upcomingTo = from, to
			}
			return nil, nil
		},
	}

	err := newTestService(api, newFakeRepository(), &fakeCache{}).UpdateDividends(context.Background())

	require.NoError(t, err)
	require.Len(t, tos, trailingWindows)
	// trailing cutoffs run oldest first so newer fetches overwrite older ones
	for i := 1; i < len(tos); i++ {
		assert.True(t, tos[i].After(tos[i-1]))
	}
	assert.Equal(t, time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC), upcomingFrom)
	assert.Equal(t, time.Date(2024, time.September, 1, 12, 0, 0, 0, time.UTC), upcomingTo)
}

func TestUpdateStocks_SectorFailureSkipped(t *testing.T) {
	api := &fakeFinancialApi{
		stockLists: map[model.Sector][]fmpModel.StockRecord{
			model.SectorTechnology: {{Symbol: "AAPL", CompanyName: "Apple Inc.", Sector: "Technology", ExchangeShortName: "NASDAQ", Price: f64(195.5)}},
		},
		stockErrs: map[model.Sector]error{
			model.SectorEnergy: errors.New("rate limited"),
		},
		volumeLists: map[model.Exchange][]fmpModel.VolumeRecord{
			model.ExchangeNASDAQ: {{Symbol: "AAPL", Volume: i64(52_000_000), AvgVolume: i64(58_000_000)}},
		},
	}
	repo := newFakeRepository()

	err := newTestService(api, repo, &fakeCache{}).UpdateStocks(context.Background())

	require.NoError(t, err)
	require.Len(t, repo.upserted, 1)

	stock := repo.upserted[0]
	assert.Equal(t, "AAPL", stock.Ticker)
	assert.Equal(t, model.SectorTechnology, stock.Sector)
	require.NotNil(t, stock.Volume)
	assert.Equal(t, int64(52_000_000), *stock.Volume)
}

func TestUpdateStocks_NothingFetchedNoUpsert(t *testing.T) {
	api := &fakeFinancialApi{}
	repo := newFakeRepository()

	err := newTestService(api, repo, &fakeCache{}).UpdateStocks(context.Background())

	require.NoError(t, err)
	assert.Empty(t, repo.upserted)
}

type fakeReportGenerator struct{}

func (g *fakeReportGenerator) Generate(_ context.Context, _ time.Time, _ []model.StockDividend) ([]byte, string, error) {
	return []byte("report"), ".xlsx", nil
}

type fakeCloudStorage struct {
	uploaded []string
	cleanups int
}

func (s *fakeCloudStorage) UploadFile(_ context.Context, _ io.Reader, filename string) (string, error) {
	s.uploaded = append(s.uploaded, filename)
	return "https://example.com/" + filename, nil
}

func (s *fakeCloudStorage) DeleteOldFiles(_ context.Context) error {
	s.cleanups++
	return nil
}

func TestGenerateDividendReport(t *testing.T) {
	storage := &fakeCloudStorage{}
	svc := New(&config.Config{}, newFakeRepository(), &fakeCache{}, &fakeFinancialApi{}, nil, &fakeReportGenerator{}, storage)
	svc.now = func() time.Time {
		return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	}

	link, err := svc.GenerateDividendReport(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/upcoming_dividends_2024-06-01.xlsx", link)
	require.Len(t, storage.uploaded, 1)
	assert.Equal(t, "upcoming_dividends_2024-06-01.xlsx", storage.uploaded[0])
	assert.Equal(t, 1, storage.cleanups)
}

func f64(v float64) *float64 {
	return &v
}

func i64(v int64) *int64 {
	return &v
}
