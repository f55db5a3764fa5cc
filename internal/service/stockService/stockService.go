package stockService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/payout-hq/payout/config"
	"github.com/payout-hq/payout/data/repository"
	"github.com/payout-hq/payout/internal/analysis"
	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/internal/service"
	"github.com/payout-hq/payout/utils"
)

type Repository interface {
	GetStockByTicker(ctx context.Context, ticker string) (model.Stock, error)
	GetStocksByTickers(ctx context.Context, tickers []string) ([]model.Stock, error)
	GetDividendsByStockID(ctx context.Context, stockID int64) ([]model.Dividend, error)
	GetLatestDividendsByStockIDs(ctx context.Context, stockIDs []int64) (map[int64]model.Dividend, error)
	SearchStocks(ctx context.Context, keyword string, limit, offset int) ([]model.Stock, error)
	GetUpcomingDividendStocks(ctx context.Context, from time.Time, limit, offset int) ([]model.StockDividend, error)
	GetTopDividendYieldStocks(ctx context.Context, year int, limit, offset int) ([]model.StockYield, error)
}

type Cache interface {
	GetStockDetail(ctx context.Context, ticker string) (model.StockDetail, error)
	SetStockDetail(ctx context.Context, detail model.StockDetail) error
	GetListingPage(ctx context.Context, listing string, page int, dest any) error
	SetListingPage(ctx context.Context, listing string, page int, value any) error
}

type StockService struct {
	cfg   *config.Config
	repo  Repository
	cache Cache
	now   func() time.Time
}

func New(cfg *config.Config, repo Repository, cache Cache) *StockService {
	return &StockService{
		cfg:   cfg,
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// GetStockDetail returns the stock with its dividend profile: historical
// payout months, trailing yield and the projected next dividend. Months and
// projection are derived from the prior calendar year's payments.
func (s *StockService) GetStockDetail(ctx context.Context, ticker string) (detail model.StockDetail, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.GetStockDetail"

	slog.Debug("GetStockDetail start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	defer func() {
		slog.Debug("GetStockDetail finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	}()

	detail, err = s.cache.GetStockDetail(ctx, ticker)
	if err == nil {
		return detail, nil
	}

	stock, err := s.repo.GetStockByTicker(ctx, ticker)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Warn("stock not found", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
			return model.StockDetail{}, fmt.Errorf("ticker %s: %w", ticker, service.ErrNotFound)
		}
		slog.Error("got error from repo.GetStockByTicker", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.StockDetail{}, err
	}

	dividends, err := s.repo.GetDividendsByStockID(ctx, stock.ID)
	if err != nil {
		slog.Error("got error from repo.GetDividendsByStockID", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.StockDetail{}, err
	}

	now := s.now().UTC()
	lastYearDividends := filterByPaymentYear(dividends, now.Year()-1)

	detail = model.StockDetail{
		Stock:          stock,
		DividendMonths: analysis.CalculateDividendMonths(lastYearDividends),
	}

	if yield, ok := analysis.CalculateDividendYield(stock.Price, lastYearDividends); ok {
		detail.DividendYield = &yield
	}

	if next, ok := analysis.FindEarliestProjectedDividend(now, dividends); ok {
		detail.NextDividend = &next
	}

	if cacheErr := s.cache.SetStockDetail(ctx, detail); cacheErr != nil {
		slog.Warn("can't cache stock detail", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", cacheErr.Error()))
	}

	return detail, nil
}

// AnalyzeSectorRatio resolves the requested holdings and computes the
// sector distribution, sorted by ratio descending. Every requested ticker
// must resolve to a tracked stock.
func (s *StockService) AnalyzeSectorRatio(ctx context.Context, tickerShares []model.TickerShare) (res []model.SectorRatio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.AnalyzeSectorRatio"

	slog.Debug("AnalyzeSectorRatio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("tickers", len(tickerShares)))
	defer func() {
		slog.Debug("AnalyzeSectorRatio finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if len(tickerShares) == 0 {
		return nil, fmt.Errorf("empty ticker shares: %w", service.ErrValidation)
	}

	shareByTicker := make(map[string]int, len(tickerShares))
	tickers := make([]string, 0, len(tickerShares))
	for _, ts := range tickerShares {
		if ts.Ticker == "" {
			return nil, fmt.Errorf("empty ticker: %w", service.ErrValidation)
		}
		if ts.Share < 1 {
			return nil, fmt.Errorf("ticker %s: share must be >= 1: %w", ts.Ticker, service.ErrValidation)
		}
		if _, ok := shareByTicker[ts.Ticker]; !ok {
			tickers = append(tickers, ts.Ticker)
		}
		shareByTicker[ts.Ticker] = ts.Share
	}

	stocks, err := s.repo.GetStocksByTickers(ctx, tickers)
	if err != nil {
		slog.Error("got error from repo.GetStocksByTickers", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if len(stocks) != len(tickers) {
		missing := missingTicker(tickers, stocks)
		slog.Warn("requested ticker not tracked", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", missing))
		return nil, fmt.Errorf("ticker %s: %w", missing, service.ErrNotFound)
	}

	stockIDs := make([]int64, 0, len(stocks))
	for _, stock := range stocks {
		stockIDs = append(stockIDs, stock.ID)
	}

	latestDividends, err := s.repo.GetLatestDividendsByStockIDs(ctx, stockIDs)
	if err != nil {
		slog.Error("got error from repo.GetLatestDividendsByStockIDs", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	shares := make([]model.StockShare, 0, len(stocks))
	for _, stock := range stocks {
		share := model.StockShare{Stock: stock, Share: shareByTicker[stock.Ticker]}
		if dividend, ok := latestDividends[stock.ID]; ok {
			d := dividend
			share.Dividend = &d
		}
		shares = append(shares, share)
	}

	sectorInfos := analysis.CalculateSectorRatios(shares)

	res = make([]model.SectorRatio, 0, len(sectorInfos))
	for sector, info := range sectorInfos {
		res = append(res, model.SectorRatio{Sector: sector, SectorInfo: info})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Ratio == res[j].Ratio {
			return res[i].Sector < res[j].Sector
		}
		return res[i].Ratio > res[j].Ratio
	})

	return res, nil
}

func (s *StockService) SearchStocks(ctx context.Context, keyword string, page int) (stocks []model.Stock, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.SearchStocks"

	slog.Debug("SearchStocks start", slog.String("rqID", rqID), slog.String("op", op), slog.String("keyword", keyword))
	defer func() {
		slog.Debug("SearchStocks finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if keyword == "" {
		return nil, fmt.Errorf("empty keyword: %w", service.ErrValidation)
	}

	limit, offset := s.pageBounds(page, s.cfg.StocksPerPage)

	stocks, err = s.repo.SearchStocks(ctx, keyword, limit, offset)
	if err != nil {
		slog.Error("got error from repo.SearchStocks", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return stocks, nil
}

func (s *StockService) GetUpcomingDividends(ctx context.Context, page int) (res []model.StockDividend, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.GetUpcomingDividends"

	slog.Debug("GetUpcomingDividends start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("page", page))
	defer func() {
		slog.Debug("GetUpcomingDividends finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if err = s.cache.GetListingPage(ctx, "upcoming_dividends", page, &res); err == nil {
		return res, nil
	}

	limit, offset := s.pageBounds(page, s.cfg.DividendsPerPage)

	res, err = s.repo.GetUpcomingDividendStocks(ctx, s.now().UTC(), limit, offset)
	if err != nil {
		slog.Error("got error from repo.GetUpcomingDividendStocks", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if cacheErr := s.cache.SetListingPage(ctx, "upcoming_dividends", page, res); cacheErr != nil {
		slog.Warn("can't cache upcoming dividends page", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", cacheErr.Error()))
	}

	return res, nil
}

func (s *StockService) GetTopDividendYield(ctx context.Context, page int) (res []model.StockYield, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockService.GetTopDividendYield"

	slog.Debug("GetTopDividendYield start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("page", page))
	defer func() {
		slog.Debug("GetTopDividendYield finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if err = s.cache.GetListingPage(ctx, "top_dividend_yield", page, &res); err == nil {
		return res, nil
	}

	limit, offset := s.pageBounds(page, s.cfg.DividendsPerPage)
	lastYear := s.now().UTC().Year() - 1

	res, err = s.repo.GetTopDividendYieldStocks(ctx, lastYear, limit, offset)
	if err != nil {
		slog.Error("got error from repo.GetTopDividendYieldStocks", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if cacheErr := s.cache.SetListingPage(ctx, "top_dividend_yield", page, res); cacheErr != nil {
		slog.Warn("can't cache top dividend yield page", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", cacheErr.Error()))
	}

	return res, nil
}

func (s *StockService) pageBounds(page, perPage int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	return perPage, (page - 1) * perPage
}

func filterByPaymentYear(dividends []model.Dividend, year int) []model.Dividend {
	res := make([]model.Dividend, 0, len(dividends))
	for _, d := range dividends {
		if d.PaymentDate != nil && d.PaymentDate.Year() == year {
			res = append(res, d)
		}
	}
	return res
}

func missingTicker(tickers []string, stocks []model.Stock) string {
	found := make(map[string]struct{}, len(stocks))
	for _, stock := range stocks {
		found[stock.Ticker] = struct{}{}
	}
	for _, ticker := range tickers {
		if _, ok := found[ticker]; !ok {
			return ticker
		}
	}
	return ""
}
