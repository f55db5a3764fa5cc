package analysis

import (
	"sort"
	"time"

	"github.com/payout-hq/payout/internal/model"
	"github.com/shopspring/decimal"
)

// CalculateDividendMonths returns the distinct calendar months in which the
// given dividends were paid, sorted ascending. Dividends without a payment
// date are skipped.
func CalculateDividendMonths(dividends []model.Dividend) []time.Month {
	seen := make(map[time.Month]struct{})
	for _, d := range dividends {
		if d.PaymentDate == nil {
			continue
		}
		seen[d.PaymentDate.Month()] = struct{}{}
	}

	months := make([]time.Month, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })

	return months
}

// FindEarliestProjectedDividend projects the next dividend from the
// trailing year's history, assuming the payout cadence repeats annually on
// the same calendar date. It keeps dividends paid in the prior calendar
// year, re-stamps each payment date into the current year and returns the
// one with the earliest projected date. Dates already passed this year
// still count. The second return value is false when no prior-year
// dividend exists.
func FindEarliestProjectedDividend(now time.Time, dividends []model.Dividend) (model.Dividend, bool) {
	lastYear := now.Year() - 1

	var (
		best      model.Dividend
		bestDate  time.Time
		projected bool
	)

	for _, d := range dividends {
		if d.PaymentDate == nil || d.PaymentDate.Year() != lastYear {
			continue
		}

		shifted := ShiftYear(*d.PaymentDate, now.Year())
		if !projected || shifted.Before(bestDate) {
			best = d
			best.PaymentDate = &shifted
			bestDate = shifted
			projected = true
		}
	}

	return best, projected
}

// ShiftYear re-stamps a date into the given year, preserving month and day.
// Feb 29 in a non-leap target year is clamped to Feb 28.
func ShiftYear(date time.Time, year int) time.Time {
	day := date.Day()
	if date.Month() == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, date.Month(), day, 0, 0, 0, 0, time.UTC)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// CalculateDividendYield computes the trailing dividend yield: the sum of
// per-share amounts over the given dividends divided by the current price.
// The second return value is false when the price is not positive or no
// dividend carries an amount.
func CalculateDividendYield(price decimal.Decimal, dividends []model.Dividend) (decimal.Decimal, bool) {
	if !price.IsPositive() {
		return decimal.Zero, false
	}

	total := decimal.Zero
	found := false
	for _, d := range dividends {
		if d.Amount == nil {
			continue
		}
		total = total.Add(*d.Amount)
		found = true
	}

	if !found {
		return decimal.Zero, false
	}

	return total.Div(price), true
}
