package analytics

import "github.com/shopspring/decimal"

// Amount is a currency value in the settlement (Local) and reporting currency.
type Amount struct {
	Local     decimal.Decimal
	Reporting decimal.Decimal
}

// Vector is a bucketed risk vector in both currencies.
type Vector struct {
	Local     []decimal.Decimal
	Reporting []decimal.Decimal
}

// Sensitivities maps a perturbed asset to its finite-difference sensitivity.
type Sensitivities struct {
	Local     map[string]decimal.Decimal
	Reporting map[string]decimal.Decimal
}

// CurrencyAmount pairs an amount with the currency it is netted in.
type CurrencyAmount struct {
	Currency string
	Amount   decimal.Decimal
}

// Results holds the metrics produced by Calculate. Only the metrics listed in
// Calculated were evaluated; every other field is its zero value.
type Results struct {
	Currency              string
	ReportingCurrency     string
	FxRate                decimal.Decimal
	PaymentDiscountFactor decimal.Decimal
	IsRealised            bool
	Calculated            []Metric

	NPV                     Amount
	NFV                     Amount
	ExpectedValue           Amount
	CalculatedValue         Amount
	HistoricalValue         Amount
	FloatingNPV             Amount
	AccrualFactor           Amount
	HistoricalAccrualFactor Amount

	Delta0           Amount
	HistoricalDelta0 Amount
	Delta1           Amount
	HistoricalDelta1 Amount
	DeltaR           Amount
	HistoricalDeltaR Amount
	DeltaCCR         Amount
	Gamma0           Amount
	Gamma1           Amount
	Delta0Delta1     Amount
	AnalyticalDelta  Amount
	AnalyticalGamma  Amount
	BucketedDelta1   Amount
	SimpleCVA        Amount

	BreakEvenRate            decimal.Decimal
	BreakEvenSpread          decimal.Decimal
	BreakEvenStrike          decimal.Decimal
	MarketQuote              decimal.Decimal
	ImpliedQuote             decimal.Decimal
	DiscountFactorAtMaturity decimal.Decimal

	BucketedDeltaVector Vector
	Delta1PDH           Sensitivities
	Delta0PDH           Sensitivities

	// PCE and PCETerm are reserved for exposure profiles that are not
	// implemented; they always hold a single zero.
	PCE     []decimal.Decimal
	PCETerm []decimal.Decimal

	RiskNPV []CurrencyAmount
}

// Has reports whether m was evaluated.
func (r *Results) Has(m Metric) bool {
	for _, c := range r.Calculated {
		if c == m {
			return true
		}
	}
	return false
}

// Value returns the evaluated value of m: an Amount, a decimal rate, a
// Vector, Sensitivities, a []decimal.Decimal placeholder or the RiskNPV
// slice. ok is false when m was not evaluated.
func (r *Results) Value(m Metric) (v any, ok bool) {
	if !r.Has(m) {
		return nil, false
	}
	switch metricKinds[m] {
	case kindAmount:
		return *r.amountField(m), true
	case kindRate:
		return *r.rateField(m), true
	case kindVector:
		return r.BucketedDeltaVector, true
	case kindSensitivity:
		if m == MetricDelta1PDH {
			return r.Delta1PDH, true
		}
		return r.Delta0PDH, true
	case kindPlaceholder:
		if m == MetricPCE {
			return r.PCE, true
		}
		return r.PCETerm, true
	}
	return r.RiskNPV, true
}

func (r *Results) amountField(m Metric) *Amount {
	switch m {
	case MetricNPV:
		return &r.NPV
	case MetricNFV:
		return &r.NFV
	case MetricExpectedValue:
		return &r.ExpectedValue
	case MetricCalculatedValue:
		return &r.CalculatedValue
	case MetricHistoricalValue:
		return &r.HistoricalValue
	case MetricFloatingNPV:
		return &r.FloatingNPV
	case MetricAccrualFactor:
		return &r.AccrualFactor
	case MetricHistoricalAccrualFactor:
		return &r.HistoricalAccrualFactor
	case MetricDelta0:
		return &r.Delta0
	case MetricHistoricalDelta0:
		return &r.HistoricalDelta0
	case MetricDelta1:
		return &r.Delta1
	case MetricHistoricalDelta1:
		return &r.HistoricalDelta1
	case MetricDeltaR:
		return &r.DeltaR
	case MetricHistoricalDeltaR:
		return &r.HistoricalDeltaR
	case MetricDeltaCCR:
		return &r.DeltaCCR
	case MetricGamma0:
		return &r.Gamma0
	case MetricGamma1:
		return &r.Gamma1
	case MetricDelta0Delta1:
		return &r.Delta0Delta1
	case MetricAnalyticalDelta:
		return &r.AnalyticalDelta
	case MetricAnalyticalGamma:
		return &r.AnalyticalGamma
	case MetricBucketedDelta1:
		return &r.BucketedDelta1
	case MetricSimpleCVA:
		return &r.SimpleCVA
	}
	panic("analytics: no amount field for metric " + string(m))
}

func (r *Results) rateField(m Metric) *decimal.Decimal {
	switch m {
	case MetricBreakEvenRate:
		return &r.BreakEvenRate
	case MetricBreakEvenSpread:
		return &r.BreakEvenSpread
	case MetricBreakEvenStrike:
		return &r.BreakEvenStrike
	case MetricMarketQuote:
		return &r.MarketQuote
	case MetricImpliedQuote:
		return &r.ImpliedQuote
	case MetricDiscountFactorAtMaturity:
		return &r.DiscountFactorAtMaturity
	}
	panic("analytics: no rate field for metric " + string(m))
}
