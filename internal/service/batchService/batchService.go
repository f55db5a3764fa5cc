package batchService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/payout-hq/payout/config"
	"github.com/payout-hq/payout/data/repository"
	"github.com/payout-hq/payout/internal/analysis"
	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/internal/model/fmpModel"
	"github.com/payout-hq/payout/utils"
	"github.com/shopspring/decimal"
)

// trailing dividend windows per cycle: overlapping monthly "to" cutoffs
// covering the past year, newest first.
const trailingWindows = 4

// upcoming window length for the dividend calendar.
const upcomingMonths = 3

type FinancialApi interface {
	FetchStockList(ctx context.Context, sector model.Sector) ([]fmpModel.StockRecord, error)
	FetchVolumeList(ctx context.Context, exchange model.Exchange) ([]fmpModel.VolumeRecord, error)
	FetchDividendCalendar(ctx context.Context, from, to time.Time) ([]fmpModel.DividendRecord, error)
}

type Repository interface {
	UpsertStocks(ctx context.Context, stocks []model.Stock) error
	GetStockByTicker(ctx context.Context, ticker string) (model.Stock, error)
	GetCurrentDividendByStockID(ctx context.Context, stockID int64) (model.Dividend, error)
	InsertDividend(ctx context.Context, dividend model.Dividend) error
	UpdateDividend(ctx context.Context, dividend model.Dividend) error
	GetUpcomingDividendStocks(ctx context.Context, from time.Time, limit, offset int) ([]model.StockDividend, error)
}

type Cache interface {
	FlushStockDetails(ctx context.Context) error
	FlushListings(ctx context.Context) error
}

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, reportDate time.Time, rows []model.StockDividend) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

type BatchService struct {
	cfg          *config.Config
	repo         Repository
	cache        Cache
	fmpApi       FinancialApi
	notifier     Notifier
	reportGen    ReportGenerator
	cloudStorage CloudStorage
	now          func() time.Time
}

func New(
	cfg *config.Config,
	repo Repository,
	cache Cache,
	fmpApi FinancialApi,
	notifier Notifier,
	reportGen ReportGenerator,
	cloudStorage CloudStorage,
) *BatchService {
	return &BatchService{
		cfg:          cfg,
		repo:         repo,
		cache:        cache,
		fmpApi:       fmpApi,
		notifier:     notifier,
		reportGen:    reportGen,
		cloudStorage: cloudStorage,
		now:          time.Now,
	}
}

// UpdateStocks refreshes the tracked stock universe: screener listing per
// sector merged with per-exchange volume data, batch-upserted by ticker.
func (s *BatchService) UpdateStocks(ctx context.Context) error {
	ctx = utils.CtxWithNewRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "BatchService.UpdateStocks"

	slog.Debug("UpdateStocks start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("UpdateStocks finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	stocksByTicker := make(map[string]fmpModel.StockRecord)
	for _, sector := range model.Sectors() {
		records, err := s.fmpApi.FetchStockList(ctx, sector)
		if err != nil {
			// one sector failing must not abort the whole refresh
			slog.Error("fetch stock list failed, skipping sector", slog.String("rqID", rqID), slog.String("op", op), slog.String("sector", sector.Name()), slog.String("err", err.Error()))
			continue
		}
		for _, rec := range records {
			if rec.Symbol == "" {
				continue
			}
			if _, ok := stocksByTicker[rec.Symbol]; !ok {
				stocksByTicker[rec.Symbol] = rec
			}
		}
	}

	volumesByTicker := make(map[string]fmpModel.VolumeRecord)
	for _, exchange := range model.Exchanges() {
		records, err := s.fmpApi.FetchVolumeList(ctx, exchange)
		if err != nil {
			slog.Error("fetch volume list failed, skipping exchange", slog.String("rqID", rqID), slog.String("op", op), slog.String("exchange", string(exchange)), slog.String("err", err.Error()))
			continue
		}
		for _, rec := range records {
			volumesByTicker[rec.Symbol] = rec
		}
	}

	if len(stocksByTicker) == 0 {
		slog.Error("no stock records fetched, nothing to upsert", slog.String("rqID", rqID), slog.String("op", op))
		return nil
	}

	stocks := make([]model.Stock, 0, len(stocksByTicker))
	for ticker, rec := range stocksByTicker {
		stock := model.Stock{
			Ticker:   ticker,
			Name:     rec.CompanyName,
			Sector:   model.SectorFromValue(rec.Sector),
			Exchange: model.Exchange(rec.ExchangeShortName),
			Industry: rec.Industry,
		}
		if rec.Price != nil {
			stock.Price = decimal.NewFromFloat(*rec.Price)
		}
		if vol, ok := volumesByTicker[ticker]; ok {
			stock.Volume = vol.Volume
			stock.AvgVolume = vol.AvgVolume
		}
		stocks = append(stocks, stock)
	}

	if err := s.repo.UpsertStocks(ctx, stocks); err != nil {
		slog.Error("got error from repo.UpsertStocks", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Info("stock universe updated", slog.String("rqID", rqID), slog.Int("stocks", len(stocks)))

	return nil
}

// UpdateDividends runs one reconciliation cycle: four overlapping trailing
// monthly windows plus one upcoming window, applied sequentially so that
// the window processed last wins for a stock seen in several windows. A
// failed window degrades to an empty one; the cycle never aborts on fetch
// errors.
func (s *BatchService) UpdateDividends(ctx context.Context) error {
	ctx = utils.CtxWithNewRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "BatchService.UpdateDividends"

	slog.Debug("UpdateDividends start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("UpdateDividends finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	now := s.now().UTC()
	stats := cycleStats{}

	for i := trailingWindows - 1; i >= 0; i-- {
		to := now.AddDate(0, -i, -1)

		records, err := s.fmpApi.FetchDividendCalendar(ctx, time.Time{}, to)
		if err != nil {
			slog.Error("fetch dividend calendar failed, treating window as empty", slog.String("rqID", rqID), slog.String("op", op), slog.Time("to", to), slog.String("err", err.Error()))
			stats.failedWindows++
			continue
		}

		s.applyDividendRecords(ctx, records, &stats)
	}

	// upcoming window keeps ex-dividend dates fresh for the upcoming listing
	upcoming, err := s.fmpApi.FetchDividendCalendar(ctx, now, now.AddDate(0, upcomingMonths, 0))
	if err != nil {
		slog.Error("fetch upcoming dividend calendar failed, treating window as empty", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		stats.failedWindows++
	} else {
		s.applyDividendRecords(ctx, upcoming, &stats)
	}

	if err := s.cache.FlushStockDetails(ctx); err != nil {
		slog.Error("flush stock detail cache failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}
	if err := s.cache.FlushListings(ctx); err != nil {
		slog.Error("flush listing cache failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	slog.Info(
		"dividend reconciliation cycle finished",
		slog.String("rqID", rqID),
		slog.Int("created", stats.created),
		slog.Int("updated", stats.updated),
		slog.Int("discarded", stats.discarded),
		slog.Int("writeErrors", stats.writeErrors),
		slog.Int("failedWindows", stats.failedWindows),
	)

	s.notify(ctx, stats)

	return nil
}

type cycleStats struct {
	created       int
	updated       int
	discarded     int
	writeErrors   int
	failedWindows int
}

// applyDividendRecords reconciles fetched records one by one. Records for
// tickers outside the tracked universe are discarded silently; per-record
// write failures are counted and skipped so the rest of the window still
// lands.
func (s *BatchService) applyDividendRecords(ctx context.Context, records []fmpModel.DividendRecord, stats *cycleStats) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "BatchService.applyDividendRecords"

	for _, rec := range records {
		stock, err := s.repo.GetStockByTicker(ctx, rec.Symbol)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				stats.discarded++
				continue
			}
			slog.Error("got error from repo.GetStockByTicker", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", rec.Symbol), slog.String("err", err.Error()))
			stats.writeErrors++
			continue
		}

		var existing *model.Dividend
		current, err := s.repo.GetCurrentDividendByStockID(ctx, stock.ID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				slog.Error("got error from repo.GetCurrentDividendByStockID", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", rec.Symbol), slog.String("err", err.Error()))
				stats.writeErrors++
				continue
			}
		} else {
			existing = &current
		}

		divOp := analysis.Reconcile(stock.ID, existing, rec)

		switch divOp.Kind {
		case analysis.OpCreate:
			err = s.repo.InsertDividend(ctx, divOp.Dividend)
			if err == nil {
				stats.created++
			}
		case analysis.OpUpdate:
			err = s.repo.UpdateDividend(ctx, divOp.Dividend)
			if err == nil {
				stats.updated++
			}
		}

		if err != nil {
			slog.Error("dividend write failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", rec.Symbol), slog.String("err", err.Error()))
			stats.writeErrors++
		}
	}
}

// reportPageSize bounds how many upcoming payers go into one report.
const reportPageSize = 500

// GenerateDividendReport renders the upcoming dividend payers into an xlsx
// file and uploads it to cloud storage, returning the download link.
func (s *BatchService) GenerateDividendReport(ctx context.Context) (downloadLink string, err error) {
	ctx = utils.CtxWithNewRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "BatchService.GenerateDividendReport"

	slog.Debug("GenerateDividendReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GenerateDividendReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	now := s.now().UTC()

	rows, err := s.repo.GetUpcomingDividendStocks(ctx, now, reportPageSize, 0)
	if err != nil {
		slog.Error("got error from repo.GetUpcomingDividendStocks", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	fileBytes, ext, err := s.reportGen.Generate(ctx, now, rows)
	if err != nil {
		slog.Error("got error from reportGen.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	filename := fmt.Sprintf("upcoming_dividends_%s%s", now.Format("2006-01-02"), ext)

	downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	slog.Info("dividend report uploaded", slog.String("rqID", rqID), slog.String("link", downloadLink))

	if err := s.cloudStorage.DeleteOldFiles(ctx); err != nil {
		slog.Error("cleanup of old report files failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return downloadLink, nil
}

func (s *BatchService) notify(ctx context.Context, stats cycleStats) {
	if s.notifier == nil {
		return
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	text := fmt.Sprintf(
		"dividend cycle: %d created, %d updated, %d discarded, %d write errors, %d failed windows",
		stats.created, stats.updated, stats.discarded, stats.writeErrors, stats.failedWindows,
	)

	if err := s.notifier.Notify(ctx, text); err != nil {
		slog.Error("cycle notification failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}
}
