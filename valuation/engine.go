// Package valuation prices whole legs flow by flow and aggregates the
// per-flow analytics into leg and portfolio totals.
package valuation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/cashflowrisk/analytics"
	"github.com/meenmo/cashflowrisk/leg"
)

const defaultWorkers = 4

// Engine evaluates flows concurrently.
type Engine struct {
	log     *zap.Logger
	metrics *Metrics
	workers int
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithWorkers bounds concurrent flow evaluations. Values below one are ignored.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.workers = n
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: zap.NewNop(), workers: defaultWorkers}
	for _, o := range opts {
		o(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	return e
}

// Request is one valuation run.
type Request struct {
	ValuationDate time.Time
	Legs          []leg.Leg
	Market        Market
	// Options apply to every leg not named in LegOptions.
	Options    leg.Options
	LegOptions map[string]leg.Options
	// Metrics to evaluate on every flow. Empty means all.
	Metrics []analytics.Metric
}

// FlowResult pairs a flow with its analytics.
type FlowResult struct {
	Flow    leg.Flow
	Results *analytics.Results
}

// Totals aggregates reporting-currency values.
type Totals struct {
	NPV             decimal.Decimal
	ExpectedValue   decimal.Decimal
	Delta0          decimal.Decimal
	Delta1          decimal.Decimal
	Gamma1          decimal.Decimal
	AnalyticalDelta decimal.Decimal
	BucketedDelta1  decimal.Decimal
	Delta1PDH       map[string]decimal.Decimal
	Delta0PDH       map[string]decimal.Decimal
	// RiskNPV nets NPV by settlement currency, sorted by currency.
	RiskNPV []analytics.CurrencyAmount
}

type LegResult struct {
	Leg    leg.Leg
	Flows  []FlowResult
	Totals Totals
}

// Result is the outcome of a run.
type Result struct {
	RunID         uuid.UUID
	ValuationDate time.Time
	Legs          []LegResult
	Totals        Totals
}

type job struct {
	leg, flow int
}

// Value schedules every leg, evaluates its flows with at most the configured
// number of workers, and aggregates. The first failing flow cancels the run.
func (e *Engine) Value(ctx context.Context, req Request) (res *Result, err error) {
	runID := uuid.New()
	log := e.log.With(zap.String("run_id", runID.String()),
		zap.String("valuation_date", req.ValuationDate.Format("2006-01-02")))
	defer func() { e.metrics.Runs.WithLabelValues(outcome(err)).Inc() }()

	if req.Market == nil {
		return nil, fmt.Errorf("valuation: %w", ErrNoCurves)
	}

	res = &Result{RunID: runID, ValuationDate: req.ValuationDate, Legs: make([]LegResult, len(req.Legs))}
	var jobs []job
	for i, l := range req.Legs {
		flows, err := l.Flows(req.ValuationDate, req.optionsFor(l))
		if err != nil {
			return nil, err
		}
		res.Legs[i] = LegResult{Leg: l, Flows: make([]FlowResult, len(flows))}
		for j, f := range flows {
			res.Legs[i].Flows[j].Flow = f
			jobs = append(jobs, job{leg: i, flow: j})
		}
	}
	log.Debug("valuation started", zap.Int("legs", len(req.Legs)), zap.Int("flows", len(jobs)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, jb := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l := req.Legs[jb.leg]
			fr := &res.Legs[jb.leg].Flows[jb.flow]
			r, err := e.valueFlow(l, fr.Flow, req)
			if err != nil {
				return fmt.Errorf("leg %s flow %d: %w", l.Name, fr.Flow.Index, err)
			}
			fr.Results = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("valuation failed", zap.Error(err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all := make([]FlowResult, 0, len(jobs))
	for i := range res.Legs {
		res.Legs[i].Totals = aggregate(res.Legs[i].Flows)
		all = append(all, res.Legs[i].Flows...)
	}
	res.Totals = aggregate(all)
	log.Info("valuation finished",
		zap.Int("flows", len(jobs)),
		zap.String("npv", res.Totals.NPV.StringFixed(2)))
	return res, nil
}

func (r Request) optionsFor(l leg.Leg) leg.Options {
	if o, ok := r.LegOptions[l.Name]; ok {
		return o
	}
	return r.Options
}

func (e *Engine) valueFlow(l leg.Leg, f leg.Flow, req Request) (*analytics.Results, error) {
	start := time.Now()
	kind := string(f.Kind)
	r, err := func() (*analytics.Results, error) {
		curves, err := req.Market.Curves(l)
		if err != nil {
			return nil, err
		}
		a, err := f.Analytic(curves)
		if err != nil {
			return nil, err
		}
		return a.Calculate(req.Metrics...)
	}()
	e.metrics.FlowDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	e.metrics.FlowsValued.WithLabelValues(kind, outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	e.log.Debug("flow valued",
		zap.String("leg", l.Name),
		zap.Int("index", f.Index),
		zap.String("kind", kind),
		zap.Bool("realised", r.IsRealised),
		zap.String("npv", r.NPV.Local.String()))
	return r, nil
}

func aggregate(flows []FlowResult) Totals {
	t := Totals{
		Delta1PDH: map[string]decimal.Decimal{},
		Delta0PDH: map[string]decimal.Decimal{},
	}
	byCcy := map[string]decimal.Decimal{}
	for _, f := range flows {
		r := f.Results
		if r == nil {
			continue
		}
		t.NPV = t.NPV.Add(r.NPV.Reporting)
		t.ExpectedValue = t.ExpectedValue.Add(r.ExpectedValue.Reporting)
		t.Delta0 = t.Delta0.Add(r.Delta0.Reporting)
		t.Delta1 = t.Delta1.Add(r.Delta1.Reporting)
		t.Gamma1 = t.Gamma1.Add(r.Gamma1.Reporting)
		t.AnalyticalDelta = t.AnalyticalDelta.Add(r.AnalyticalDelta.Reporting)
		t.BucketedDelta1 = t.BucketedDelta1.Add(r.BucketedDelta1.Reporting)
		mergeInto(t.Delta1PDH, r.Delta1PDH.Reporting)
		mergeInto(t.Delta0PDH, r.Delta0PDH.Reporting)
		for _, ca := range r.RiskNPV {
			byCcy[ca.Currency] = byCcy[ca.Currency].Add(ca.Amount)
		}
	}
	for ccy, amt := range byCcy {
		t.RiskNPV = append(t.RiskNPV, analytics.CurrencyAmount{Currency: ccy, Amount: amt})
	}
	sort.Slice(t.RiskNPV, func(i, j int) bool { return t.RiskNPV[i].Currency < t.RiskNPV[j].Currency })
	return t
}

func mergeInto(dst, src map[string]decimal.Decimal) {
	for k, v := range src {
		dst[k] = dst[k].Add(v)
	}
}
