package analytics

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Metric names a value an analytic can evaluate.
type Metric string

const (
	MetricNPV                      Metric = "NPV"
	MetricNFV                      Metric = "NFV"
	MetricExpectedValue            Metric = "ExpectedValue"
	MetricCalculatedValue          Metric = "CalculatedValue"
	MetricHistoricalValue          Metric = "HistoricalValue"
	MetricFloatingNPV              Metric = "FloatingNPV"
	MetricAccrualFactor            Metric = "AccrualFactor"
	MetricHistoricalAccrualFactor  Metric = "HistoricalAccrualFactor"
	MetricDelta0                   Metric = "Delta0"
	MetricHistoricalDelta0         Metric = "HistoricalDelta0"
	MetricDelta1                   Metric = "Delta1"
	MetricHistoricalDelta1         Metric = "HistoricalDelta1"
	MetricDeltaR                   Metric = "DeltaR"
	MetricHistoricalDeltaR         Metric = "HistoricalDeltaR"
	MetricDeltaCCR                 Metric = "DeltaCCR"
	MetricGamma0                   Metric = "Gamma0"
	MetricGamma1                   Metric = "Gamma1"
	MetricDelta0Delta1             Metric = "Delta0Delta1"
	MetricAnalyticalDelta          Metric = "AnalyticalDelta"
	MetricAnalyticalGamma          Metric = "AnalyticalGamma"
	MetricBucketedDelta1           Metric = "BucketedDelta1"
	MetricSimpleCVA                Metric = "SimpleCVA"
	MetricBreakEvenRate            Metric = "BreakEvenRate"
	MetricBreakEvenSpread          Metric = "BreakEvenSpread"
	MetricBreakEvenStrike          Metric = "BreakEvenStrike"
	MetricMarketQuote              Metric = "MarketQuote"
	MetricImpliedQuote             Metric = "ImpliedQuote"
	MetricDiscountFactorAtMaturity Metric = "DiscountFactorAtMaturity"
	MetricBucketedDeltaVector      Metric = "BucketedDeltaVector"
	MetricDelta1PDH                Metric = "Delta1PDH"
	MetricDelta0PDH                Metric = "Delta0PDH"
	MetricPCE                      Metric = "PCE"
	MetricPCETerm                  Metric = "PCETerm"
	MetricRiskNPV                  Metric = "RiskNPV"
)

type metricKind int

const (
	// kindAmount is a currency amount reported in local and reporting currency.
	kindAmount metricKind = iota
	// kindRate is a rate or factor; never FX converted.
	kindRate
	kindVector
	kindSensitivity
	// kindPlaceholder metrics are not implemented and always report {0}.
	kindPlaceholder
	kindRisk
)

var allMetrics = []Metric{
	MetricNPV, MetricNFV, MetricExpectedValue, MetricCalculatedValue, MetricHistoricalValue,
	MetricFloatingNPV, MetricAccrualFactor, MetricHistoricalAccrualFactor,
	MetricDelta0, MetricHistoricalDelta0, MetricDelta1, MetricHistoricalDelta1,
	MetricDeltaR, MetricHistoricalDeltaR, MetricDeltaCCR,
	MetricGamma0, MetricGamma1, MetricDelta0Delta1, MetricAnalyticalDelta, MetricAnalyticalGamma,
	MetricBucketedDelta1, MetricSimpleCVA,
	MetricBreakEvenRate, MetricBreakEvenSpread, MetricBreakEvenStrike, MetricMarketQuote,
	MetricImpliedQuote, MetricDiscountFactorAtMaturity,
	MetricBucketedDeltaVector, MetricDelta1PDH, MetricDelta0PDH,
	MetricPCE, MetricPCETerm, MetricRiskNPV,
}

var metricKinds = func() map[Metric]metricKind {
	kinds := make(map[Metric]metricKind, len(allMetrics))
	for _, m := range allMetrics {
		kinds[m] = kindAmount
	}
	for _, m := range []Metric{
		MetricBreakEvenRate, MetricBreakEvenSpread, MetricBreakEvenStrike,
		MetricMarketQuote, MetricImpliedQuote, MetricDiscountFactorAtMaturity,
	} {
		kinds[m] = kindRate
	}
	kinds[MetricBucketedDeltaVector] = kindVector
	kinds[MetricDelta1PDH] = kindSensitivity
	kinds[MetricDelta0PDH] = kindSensitivity
	kinds[MetricPCE] = kindPlaceholder
	kinds[MetricPCETerm] = kindPlaceholder
	kinds[MetricRiskNPV] = kindRisk
	return kinds
}()

// AllMetrics returns every supported metric in a stable order.
func AllMetrics() []Metric {
	out := make([]Metric, len(allMetrics))
	copy(out, allMetrics)
	return out
}

// ParseMetric matches a metric name case-insensitively.
func ParseMetric(s string) (Metric, error) {
	name := strings.TrimSpace(s)
	for _, m := range allMetrics {
		if strings.EqualFold(string(m), name) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMetric, s)
}

// ParseMetrics parses a list of names, failing on the first unknown one.
func ParseMetrics(names []string) ([]Metric, error) {
	out := make([]Metric, 0, len(names))
	for _, n := range names {
		m, err := ParseMetric(n)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Analytic is implemented by every cashflow and coupon analytic.
type Analytic interface {
	// Calculate evaluates the requested metrics, or all of them when none are
	// given. A failing metric fails the whole call.
	Calculate(metrics ...Metric) (*Results, error)
}

// evaluator is the per-kind view calculate needs. Amounts are in the
// settlement currency.
type evaluator interface {
	parameters() CashflowParameters
	FxRate() decimal.Decimal
	PaymentDiscountFactor() decimal.Decimal
	amount(m Metric) (decimal.Decimal, error)
	rate(m Metric) (decimal.Decimal, error)
	vector(m Metric) ([]decimal.Decimal, error)
	sensitivity(m Metric) (map[string]decimal.Decimal, error)
}

func calculate(e evaluator, metrics []Metric) (*Results, error) {
	if len(metrics) == 0 {
		metrics = allMetrics
	}
	p := e.parameters()
	fx := e.FxRate()
	res := &Results{
		Currency:              p.Currency,
		ReportingCurrency:     p.ReportingCurrency,
		FxRate:                fx,
		PaymentDiscountFactor: e.PaymentDiscountFactor(),
		IsRealised:            p.IsRealised,
		Calculated:            make([]Metric, 0, len(metrics)),
	}

	for _, m := range metrics {
		kind, ok := metricKinds[m]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedMetric, m)
		}
		switch kind {
		case kindAmount:
			v, err := e.amount(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m, err)
			}
			*res.amountField(m) = Amount{Local: v, Reporting: v.Mul(fx)}
		case kindRate:
			v, err := e.rate(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m, err)
			}
			*res.rateField(m) = v
		case kindVector:
			local, err := e.vector(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m, err)
			}
			res.BucketedDeltaVector = Vector{Local: local, Reporting: scaleVector(local, fx)}
		case kindSensitivity:
			local, err := e.sensitivity(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m, err)
			}
			s := Sensitivities{Local: local, Reporting: scaleSensitivities(local, fx)}
			if m == MetricDelta1PDH {
				res.Delta1PDH = s
			} else {
				res.Delta0PDH = s
			}
		case kindPlaceholder:
			if m == MetricPCE {
				res.PCE = []decimal.Decimal{decimal.Zero}
			} else {
				res.PCETerm = []decimal.Decimal{decimal.Zero}
			}
		case kindRisk:
			npv, err := e.amount(MetricNPV)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m, err)
			}
			res.RiskNPV = []CurrencyAmount{{Currency: p.Currency, Amount: npv.Mul(fx)}}
		}
		res.Calculated = append(res.Calculated, m)
	}
	return res, nil
}

func scaleVector(v []decimal.Decimal, k decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(v))
	for i, x := range v {
		out[i] = x.Mul(k)
	}
	return out
}

func scaleSensitivities(s map[string]decimal.Decimal, k decimal.Decimal) map[string]decimal.Decimal {
	if s == nil {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(s))
	for key, v := range s {
		out[key] = v.Mul(k)
	}
	return out
}
