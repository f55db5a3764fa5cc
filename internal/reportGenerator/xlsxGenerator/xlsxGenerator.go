package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/utils"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Upcoming dividends"

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

func (g *XLSXGenerator) Generate(ctx context.Context, reportDate time.Time, rows []model.StockDividend) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if len(rows) == 0 {
		return nil, "", errors.New("empty report rows")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if _, err := f.NewSheet(sheetName); err != nil {
		slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, "", err
	}

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Upcoming dividends as of %s", reportDate.Format("2006-01-02")))

	headers := []string{"Ticker", "Company", "Sector", "Exchange", "Amount", "Ex-dividend date", "Payment date"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, "", err
		}
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, row := range rows {
		rowNum := i + 3
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), row.Stock.Ticker)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), row.Stock.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), row.Stock.Sector.Name())
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), string(row.Stock.Exchange))
		if row.Dividend.Amount != nil {
			amount, _ := row.Dividend.Amount.Float64()
			f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), amount)
		}
		if row.Dividend.ExDividendDate != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowNum), row.Dividend.ExDividendDate.Format("2006-01-02"))
		}
		if row.Dividend.PaymentDate != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowNum), row.Dividend.PaymentDate.Format("2006-01-02"))
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}
