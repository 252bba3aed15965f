// Package cli holds the setup shared by cfrisk subcommands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/meenmo/cashflowrisk/cmd/cfrisk/internal/request"
	"github.com/meenmo/cashflowrisk/config"
	"github.com/meenmo/cashflowrisk/logging"
	"github.com/meenmo/cashflowrisk/valuation"
)

// Env is a configured engine and its logger.
type Env struct {
	Config *config.Config
	Log    *zap.Logger
	Engine *valuation.Engine
}

// NewEnv loads configPath (may be empty), installs it and logs to stderr.
func NewEnv(configPath string, stderr io.Writer) (*Env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(); err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Logging, stderr)
	if err != nil {
		return nil, err
	}
	eng := valuation.NewEngine(
		valuation.WithLogger(log),
		valuation.WithWorkers(cfg.Valuation.Workers),
	)
	return &Env{Config: cfg, Log: log, Engine: eng}, nil
}

// Value parses the JSON input and runs it. Non-empty metrics replace those
// of the input.
func (e *Env) Value(ctx context.Context, input []byte, metrics ...string) (*valuation.Result, error) {
	in, err := request.Parse(input)
	if err != nil {
		return nil, err
	}
	if len(metrics) > 0 {
		in.Metrics = metrics
	}
	req, err := in.Build(e.Config)
	if err != nil {
		return nil, err
	}
	return e.Engine.Value(ctx, req)
}

// ReadInput reads path, or stdin when path is empty.
func ReadInput(stdin io.Reader, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(stdin)
}

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	return err == nil && stat.Mode()&os.ModeCharDevice != 0
}

type errorOutput struct {
	Error string `json:"error"`
}

// WriteError prints msg as a JSON error object and returns exit code 1.
func WriteError(stdout io.Writer, msg string) int {
	b, _ := json.Marshal(errorOutput{Error: msg})
	fmt.Fprintln(stdout, string(b))
	return 1
}
