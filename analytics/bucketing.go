package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// bucketWeight is value * yf / (1 + yf*r) / 1bp, the PV01 of one bucket.
func bucketWeight(value, yearFraction, compounding decimal.Decimal) decimal.Decimal {
	return value.Mul(yearFraction).Div(compounding).Div(basisPoint)
}

// bucketedDeltaVector splits cyf into whole periods plus a tail. Each interior
// bucket is compounded over one period, the tail over the remainder. sign is
// applied to every bucket.
func bucketedDeltaVector(npv, cyf, period, r decimal.Decimal, sign int) ([]decimal.Decimal, error) {
	if period.IsZero() {
		return nil, ErrZeroPeriod
	}
	cycles := cyf.Div(period).Floor().Abs().IntPart()
	remainder := cyf.Sub(period.Mul(decimal.NewFromInt(cycles)))

	out := make([]decimal.Decimal, cycles+1)
	interior := bucketWeight(npv, period, one.Add(period.Mul(r)))
	tail := bucketWeight(npv, remainder, one.Add(remainder.Mul(r)))
	if sign < 0 {
		interior, tail = interior.Neg(), tail.Neg()
	}
	for i := int64(0); i < cycles; i++ {
		out[i] = interior
	}
	out[cycles] = tail
	return out, nil
}

// bucketedRates converts a discount factor ladder into per-period simple
// rates. A ladder with fewer than two points yields a single zero rate.
func bucketedRates(ladder []decimal.Decimal, period decimal.Decimal) ([]decimal.Decimal, error) {
	n := len(ladder) - 1
	if n <= 0 {
		return []decimal.Decimal{decimal.Zero}, nil
	}
	if period.IsZero() {
		return nil, ErrZeroPeriod
	}
	rates := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		r, err := forwardRate(ladder[i], ladder[i+1], period)
		if err != nil {
			return nil, err
		}
		rates[i] = r
	}
	return rates, nil
}

func powInt(base decimal.Decimal, n int) decimal.Decimal {
	out := one
	for i := 0; i < n; i++ {
		out = out.Mul(base)
	}
	return out
}

// fixedBucketedDelta1 differentiates ev / (1 + P*x)^n at x = rate, with n
// the number of ladder periods.
func fixedBucketedDelta1(ev, rate, period decimal.Decimal, n int) decimal.Decimal {
	if n < 1 {
		n = 1
	}
	compounding := one.Add(period.Mul(rate))
	d := ev.Mul(period).Mul(decimal.NewFromInt(int64(n))).Div(powInt(compounding, n+1))
	return d.Neg().Div(basisPoint)
}

// floatingBucketedDelta1 sums, for each bucket rate r_i, the derivative of
// ev / (m_i * (1 + P*x)) at x = r_i, where m_i compounds every other bucket
// rate that is not within 1e-5 of r_i.
func floatingBucketedDelta1(ev, period decimal.Decimal, rates []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, ri := range rates {
		m := one
		for _, rj := range rates {
			if math.Abs(rj.Sub(ri).InexactFloat64()) < 1e-5 {
				continue
			}
			m = m.Mul(one.Add(rj.Mul(period)))
		}
		compounding := one.Add(period.Mul(ri))
		total = total.Add(ev.Mul(period).Div(m.Mul(compounding).Mul(compounding)))
	}
	return total.Neg().Div(basisPoint)
}
