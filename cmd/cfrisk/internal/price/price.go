package price

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meenmo/cashflowrisk/analytics"
	"github.com/meenmo/cashflowrisk/cmd/cfrisk/internal/cli"
	"github.com/meenmo/cashflowrisk/utils"
	"github.com/meenmo/cashflowrisk/valuation"
)

// Output is the JSON written to stdout.
type Output struct {
	RunID         string       `json:"run_id"`
	ValuationDate string       `json:"valuation_date"`
	Totals        TotalsOutput `json:"totals"`
	Legs          []LegOutput  `json:"legs"`
}

type TotalsOutput struct {
	NPV             decimal.Decimal            `json:"npv"`
	ExpectedValue   decimal.Decimal            `json:"expected_value"`
	Delta0          decimal.Decimal            `json:"delta0"`
	Delta1          decimal.Decimal            `json:"delta1"`
	Gamma1          decimal.Decimal            `json:"gamma1"`
	AnalyticalDelta decimal.Decimal            `json:"analytical_delta"`
	BucketedDelta1  decimal.Decimal            `json:"bucketed_delta1"`
	Delta1PDH       map[string]decimal.Decimal `json:"delta1_pdh,omitempty"`
	Delta0PDH       map[string]decimal.Decimal `json:"delta0_pdh,omitempty"`
	RiskNPV         map[string]decimal.Decimal `json:"risk_npv,omitempty"`
}

type LegOutput struct {
	Name   string       `json:"name"`
	Totals TotalsOutput `json:"totals"`
	Flows  []FlowOutput `json:"flows,omitempty"`
}

type FlowOutput struct {
	Index       int            `json:"index"`
	Kind        string         `json:"kind"`
	PaymentDate string         `json:"payment_date"`
	Realised    bool           `json:"realised"`
	FxRate      string         `json:"fx_rate"`
	Metrics     map[string]any `json:"metrics"`
}

func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("price", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "", "JSON input path (optional; if set, ignores stdin)")
	configPath := fs.String("config", "", "YAML config path")
	flows := fs.Bool("flows", true, "Include per-flow metrics")
	help := fs.Bool("h", false, "Show help")
	fs.BoolVar(help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		usage(stderr)
		return 0
	}
	path := strings.TrimSpace(*inputPath)
	if path == "" && cli.IsTerminal(stdin) {
		usage(stderr)
		return 2
	}

	env, err := cli.NewEnv(*configPath, stderr)
	if err != nil {
		return cli.WriteError(stdout, err.Error())
	}
	defer func() { _ = env.Log.Sync() }()

	input, err := cli.ReadInput(stdin, path)
	if err != nil {
		return cli.WriteError(stdout, fmt.Sprintf("failed to read input: %v", err))
	}
	res, err := env.Value(context.Background(), input)
	if err != nil {
		return cli.WriteError(stdout, err.Error())
	}

	b, err := json.Marshal(Build(res, *flows))
	if err != nil {
		return cli.WriteError(stdout, err.Error())
	}
	fmt.Fprintln(stdout, string(b))
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  cfrisk price < input.json")
	fmt.Fprintln(w, "  cfrisk price -input /path/to/input.json [-config cfrisk.yaml] [-flows=false]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Value every leg and print totals and per-flow metrics as JSON.")
}

// Build converts a valuation result to its JSON shape.
func Build(res *valuation.Result, withFlows bool) Output {
	out := Output{
		RunID:         res.RunID.String(),
		ValuationDate: res.ValuationDate.Format(utils.DateLayout),
		Totals:        totals(res.Totals),
	}
	for _, lr := range res.Legs {
		lo := LegOutput{Name: lr.Leg.Name, Totals: totals(lr.Totals)}
		if withFlows {
			for _, fr := range lr.Flows {
				lo.Flows = append(lo.Flows, flow(fr))
			}
		}
		out.Legs = append(out.Legs, lo)
	}
	return out
}

func totals(t valuation.Totals) TotalsOutput {
	o := TotalsOutput{
		NPV:             t.NPV,
		ExpectedValue:   t.ExpectedValue,
		Delta0:          t.Delta0,
		Delta1:          t.Delta1,
		Gamma1:          t.Gamma1,
		AnalyticalDelta: t.AnalyticalDelta,
		BucketedDelta1:  t.BucketedDelta1,
		Delta1PDH:       t.Delta1PDH,
		Delta0PDH:       t.Delta0PDH,
	}
	if len(t.RiskNPV) > 0 {
		o.RiskNPV = make(map[string]decimal.Decimal, len(t.RiskNPV))
		for _, ca := range t.RiskNPV {
			o.RiskNPV[ca.Currency] = ca.Amount
		}
	}
	return o
}

func flow(fr valuation.FlowResult) FlowOutput {
	r := fr.Results
	fo := FlowOutput{
		Index:       fr.Flow.Index,
		Kind:        string(fr.Flow.Kind),
		PaymentDate: fr.Flow.Params.PaymentDate.Format(utils.DateLayout),
		Realised:    r.IsRealised,
		FxRate:      r.FxRate.String(),
		Metrics:     make(map[string]any, len(r.Calculated)),
	}
	for _, m := range r.Calculated {
		v, _ := r.Value(m)
		switch x := v.(type) {
		case analytics.Amount:
			// reporting currency, matching the totals
			fo.Metrics[string(m)] = x.Reporting
		case analytics.Vector:
			fo.Metrics[string(m)] = x.Reporting
		case analytics.Sensitivities:
			fo.Metrics[string(m)] = x.Reporting
		default:
			fo.Metrics[string(m)] = x
		}
	}
	return fo
}
