package analytics

import "errors"

var (
	// ErrCurveUnavailable is returned when a curve cannot supply a requested value.
	ErrCurveUnavailable = errors.New("curve not available")
	// ErrUnsupportedDiscountType is returned for a discount type outside {None, AFMA, ISDA}.
	ErrUnsupportedDiscountType = errors.New("discount type not supported")
	// ErrUnsupportedMetric is returned when a metric name is not recognised.
	ErrUnsupportedMetric = errors.New("metric not supported")
	// ErrInvalidDiscountFactor is returned when a discount factor is not strictly positive.
	ErrInvalidDiscountFactor = errors.New("discount factor must be positive")
	// ErrNegativeYearFraction is returned when a year fraction is negative.
	ErrNegativeYearFraction = errors.New("year fraction must be non-negative")
	// ErrZeroYearFraction is returned when a formula would divide by a zero year fraction.
	ErrZeroYearFraction = errors.New("year fraction is zero")
	// ErrZeroPeriod is returned when bucketing is requested with a zero period.
	ErrZeroPeriod = errors.New("period as times per year is zero")
	// ErrZeroPerturbation is returned when a PDH perturbation size is zero.
	ErrZeroPerturbation = errors.New("perturbation size is zero")
	// ErrInvalidMultiplier is returned when the multiplier is not +1 or -1.
	ErrInvalidMultiplier = errors.New("multiplier must be +1 or -1")
	// ErrDuplicatePerturbedAsset is returned when two perturbed curves collide after suffixing.
	ErrDuplicatePerturbedAsset = errors.New("duplicate perturbed asset")
)
