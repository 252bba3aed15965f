package curve

import "time"

// FlatFx converts at a single rate for every date.
type FlatFx float64

// Forward implements analytics.FxCurve.
func (f FlatFx) Forward(time.Time, time.Time) (float64, error) {
	return float64(f), nil
}
