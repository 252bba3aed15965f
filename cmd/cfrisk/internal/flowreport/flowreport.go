package flowreport

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meenmo/cashflowrisk/analytics"
	"github.com/meenmo/cashflowrisk/cmd/cfrisk/internal/cli"
	"github.com/meenmo/cashflowrisk/report"
)

// reportMetrics are the metrics a row needs.
var reportMetrics = []string{
	string(analytics.MetricNPV),
	string(analytics.MetricCalculatedValue),
	string(analytics.MetricImpliedQuote),
}

func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "", "JSON input path (optional; if set, ignores stdin)")
	configPath := fs.String("config", "", "YAML config path")
	format := fs.String("format", "", "csv or parquet (default from config)")
	outPath := fs.String("out", "", "Output file (default stdout)")
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
		return cli.WriteError(stderr, err.Error())
	}
	defer func() { _ = env.Log.Sync() }()

	input, err := cli.ReadInput(stdin, path)
	if err != nil {
		return cli.WriteError(stderr, fmt.Sprintf("failed to read input: %v", err))
	}
	res, err := env.Value(context.Background(), input, reportMetrics...)
	if err != nil {
		return cli.WriteError(stderr, err.Error())
	}

	f := *format
	if f == "" {
		f = env.Config.Report.Format
	}
	rows := report.Rows(res)
	if *outPath == "" {
		err = report.Write(stdout, f, rows)
	} else {
		var file *os.File
		if file, err = os.Create(*outPath); err == nil {
			err = writeAndClose(file, f, rows)
		}
	}
	if err != nil {
		return cli.WriteError(stderr, err.Error())
	}
	return 0
}

// writeAndClose writes rows to wc and closes it, reporting the first error.
func writeAndClose(wc io.WriteCloser, format string, rows []report.Row) error {
	if err := report.Write(wc, format, rows); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  cfrisk report < input.json")
	fmt.Fprintln(w, "  cfrisk report -input in.json [-format csv|parquet] [-out flows.parquet] [-config cfrisk.yaml]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Value every leg and write one row per flow.")
}
