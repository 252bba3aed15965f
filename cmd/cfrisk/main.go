package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meenmo/cashflowrisk/analytics"
	"github.com/meenmo/cashflowrisk/cmd/cfrisk/internal/flowreport"
	"github.com/meenmo/cashflowrisk/cmd/cfrisk/internal/price"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "price":
		return price.Run(args[1:], stdin, stdout, stderr)
	case "report":
		return flowreport.Run(args[1:], stdin, stdout, stderr)
	case "metrics":
		for _, m := range analytics.AllMetrics() {
			fmt.Fprintln(stdout, m)
		}
		return 0
	case "-h", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cfrisk <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  price    Leg and flow NPV and risk as JSON")
	fmt.Fprintln(w, "  report   One row per flow as CSV or Parquet")
	fmt.Fprintln(w, "  metrics  List supported metric names")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run `cfrisk <command> -h` for command-specific help.")
}
