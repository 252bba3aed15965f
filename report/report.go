// Package report flattens valuation results into one row per flow and writes
// them as CSV or Parquet.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"

	"github.com/meenmo/cashflowrisk/leg"
	"github.com/meenmo/cashflowrisk/utils"
	"github.com/meenmo/cashflowrisk/valuation"
)

var ErrUnsupportedFormat = errors.New("unsupported report format")

const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// Row is one flow of a leg. Rate is the fixed rate for fixed coupons and the
// implied forward for floating ones; ForecastAmount is the undiscounted
// amount whether or not the flow has settled.
type Row struct {
	Leg            string
	Index          int
	Kind           leg.Kind
	Notional       decimal.Decimal
	Rate           decimal.Decimal
	ForecastAmount decimal.Decimal
	Currency       string
	AccrualStart   time.Time
	AccrualEnd     time.Time
	PaymentDate    time.Time
	YearFraction   decimal.Decimal
	DiscountFactor decimal.Decimal
	NPV            decimal.Decimal
	DiscountType   string
	Realised       bool
}

// Rows builds the report rows of res in leg then flow order. Flows without
// results are skipped.
func Rows(res *valuation.Result) []Row {
	var rows []Row
	for _, lr := range res.Legs {
		for _, fr := range lr.Flows {
			r := fr.Results
			if r == nil {
				continue
			}
			p := fr.Flow.Params
			rate := p.Rate
			if fr.Flow.Kind == leg.KindCoupon && fr.Flow.Type == leg.Floating {
				rate = r.ImpliedQuote
			}
			if fr.Flow.Kind == leg.KindPrincipal {
				rate = decimal.Zero
			}
			rows = append(rows, Row{
				Leg:            fr.Flow.Leg,
				Index:          fr.Flow.Index,
				Kind:           fr.Flow.Kind,
				Notional:       p.NotionalAmount,
				Rate:           rate,
				ForecastAmount: r.CalculatedValue.Local,
				Currency:       p.Currency,
				AccrualStart:   p.StartDate,
				AccrualEnd:     p.EndDate,
				PaymentDate:    p.PaymentDate,
				YearFraction:   p.YearFraction,
				DiscountFactor: r.PaymentDiscountFactor,
				NPV:            r.NPV.Local,
				DiscountType:   p.DiscountType.String(),
				Realised:       r.IsRealised,
			})
		}
	}
	return rows
}

var header = []string{
	"leg", "index", "kind", "notional", "rate", "forecast_amount", "currency",
	"accrual_start", "accrual_end", "payment_date", "year_fraction",
	"discount_factor", "npv", "discount_type", "realised",
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Leg,
			strconv.Itoa(r.Index),
			string(r.Kind),
			r.Notional.String(),
			r.Rate.String(),
			r.ForecastAmount.StringFixed(2),
			r.Currency,
			r.AccrualStart.Format(utils.DateLayout),
			r.AccrualEnd.Format(utils.DateLayout),
			r.PaymentDate.Format(utils.DateLayout),
			r.YearFraction.String(),
			r.DiscountFactor.StringFixed(10),
			r.NPV.StringFixed(2),
			r.DiscountType,
			strconv.FormatBool(r.Realised),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type parquetRow struct {
	Leg            string  `parquet:"leg"`
	Index          int64   `parquet:"index"`
	Kind           string  `parquet:"kind"`
	Notional       float64 `parquet:"notional"`
	Rate           float64 `parquet:"rate"`
	ForecastAmount float64 `parquet:"forecast_amount"`
	Currency       string  `parquet:"currency"`
	AccrualStart   string  `parquet:"accrual_start"`
	AccrualEnd     string  `parquet:"accrual_end"`
	PaymentDate    string  `parquet:"payment_date"`
	YearFraction   float64 `parquet:"year_fraction"`
	DiscountFactor float64 `parquet:"discount_factor"`
	NPV            float64 `parquet:"npv"`
	DiscountType   string  `parquet:"discount_type"`
	Realised       bool    `parquet:"realised"`
}

// WriteParquet writes rows as a single Parquet file. Decimals are narrowed
// to float64.
func WriteParquet(w io.Writer, rows []Row) error {
	out := make([]parquetRow, len(rows))
	for i, r := range rows {
		out[i] = parquetRow{
			Leg:            r.Leg,
			Index:          int64(r.Index),
			Kind:           string(r.Kind),
			Notional:       r.Notional.InexactFloat64(),
			Rate:           r.Rate.InexactFloat64(),
			ForecastAmount: r.ForecastAmount.InexactFloat64(),
			Currency:       r.Currency,
			AccrualStart:   r.AccrualStart.Format(utils.DateLayout),
			AccrualEnd:     r.AccrualEnd.Format(utils.DateLayout),
			PaymentDate:    r.PaymentDate.Format(utils.DateLayout),
			YearFraction:   r.YearFraction.InexactFloat64(),
			DiscountFactor: r.DiscountFactor.InexactFloat64(),
			NPV:            r.NPV.InexactFloat64(),
			DiscountType:   r.DiscountType,
			Realised:       r.Realised,
		}
	}

	writer := parquet.NewGenericWriter[parquetRow](w)
	if _, err := writer.Write(out); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	return writer.Close()
}

// Write dispatches on format, "csv" or "parquet".
func Write(w io.Writer, format string, rows []Row) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatParquet:
		return WriteParquet(w, rows)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
