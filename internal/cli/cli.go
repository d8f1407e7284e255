package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/comfygate/comfygate/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// setFlags collects repeated -set name=value pairs.
type setFlags map[string]string

func (s setFlags) String() string {
	pairs := make([]string, 0, len(s))
	for name, value := range s {
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, ",")
}

func (s setFlags) Set(raw string) error {
	name, value, found := strings.Cut(raw, "=")
	if !found || name == "" {
		return fmt.Errorf("expected name=value, got %q", raw)
	}
	s[name] = value
	return nil
}

// Parse processes command-line arguments. It returns a populated
// app.Config, a boolean indicating if the program should exit cleanly, or
// an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("comfygate", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
comfygate - compose parameterized workflow templates and run them on a
remote gateway.

Usage:
  comfygate [options] [TEMPLATE]

Arguments:
  TEMPLATE
    Slug of the template to run (a subdirectory of the templates path).

Options:
`)
		flagSet.PrintDefaults()
	}

	templatesFlag := flagSet.String("templates", "workflows", "Path to the template repository root.")
	gatewayFlag := flagSet.String("gateway", "http://127.0.0.1:8189", "Base URL of the gateway service.")
	templateFlag := flagSet.String("template", "", "Slug of the template to run.")
	listFlag := flagSet.Bool("list", false, "List templates and their parameters, then exit.")
	values := make(setFlags)
	flagSet.Var(values, "set", "Parameter value as name=value. May be repeated.")
	batchFlag := flagSet.Int("batch", 1, "Batch size written to the reserved batch_size parameter.")
	countFlag := flagSet.Int("count", 1, "Number of independent jobs to run.")
	outputFlag := flagSet.String("output", "binary", "Requested result format. Options: 'binary', 'filePath' or 'text'.")
	modeFlag := flagSet.String("mode", app.ModeAwait, "Delivery mode. Options: 'await' or 'callback'.")
	callbackURLFlag := flagSet.String("callback-url", "", "Webhook URL for callback mode.")
	outputDirFlag := flagSet.String("output-dir", "output", "Directory for binary attachments.")
	timeoutFlag := flagSet.Duration("timeout", 60*time.Second, "Await timeout per job.")
	workersFlag := flagSet.Int("workers", 4, "Number of concurrent workers for job items.")
	continueFlag := flagSet.Bool("continue-on-error", false, "Capture per-item failures instead of aborting the batch.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	template := *templateFlag
	if template == "" && flagSet.NArg() > 0 {
		template = flagSet.Arg(0)
	}

	if template == "" && !*listFlag {
		slog.Debug("No template provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		TemplatesPath:   *templatesFlag,
		GatewayURL:      *gatewayFlag,
		Template:        template,
		Values:          values,
		List:            *listFlag,
		BatchSize:       *batchFlag,
		Count:           *countFlag,
		OutputFormat:    *outputFlag,
		Mode:            *modeFlag,
		CallbackURL:     *callbackURLFlag,
		OutputDir:       *outputDirFlag,
		Timeout:         *timeoutFlag,
		WorkerCount:     *workersFlag,
		ContinueOnError: *continueFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "template", config.Template)
	return config, false, nil
}
