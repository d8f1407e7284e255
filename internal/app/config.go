package app

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
)

// Job delivery modes.
const (
	ModeAwait    = "await"
	ModeCallback = "callback"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	TemplatesPath string // template repository root
	GatewayURL    string // gateway base URL

	Template string            // selected template slug
	Values   map[string]string // caller-supplied parameter values
	List     bool              // list templates and parameters, run nothing

	BatchSize    int
	Count        int // number of independent jobs to run
	OutputFormat string
	Mode         string // await | callback
	CallbackURL  string
	OutputDir    string // where binary attachments are written
	Timeout      time.Duration

	WorkerCount     int
	ContinueOnError bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// configDefaults fills zero-valued optional fields during NewConfig.
// Required fields are checked before the merge, value validity after it.
var configDefaults = Config{
	Mode:         ModeAwait,
	OutputFormat: "binary",
	BatchSize:    1,
	Count:        1,
	WorkerCount:  1,
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.TemplatesPath == "" {
		return nil, errors.New("TemplatesPath is a required configuration field and cannot be empty")
	}
	if cfg.GatewayURL == "" {
		return nil, errors.New("GatewayURL is a required configuration field and cannot be empty")
	}
	if !cfg.List && cfg.Template == "" {
		return nil, errors.New("a template slug is required unless listing templates")
	}

	// Negative counts are as meaningless as absent ones; normalize them so
	// the defaults merge covers both.
	if cfg.BatchSize < 0 {
		cfg.BatchSize = 0
	}
	if cfg.Count < 0 {
		cfg.Count = 0
	}
	if cfg.WorkerCount < 0 {
		cfg.WorkerCount = 0
	}
	if err := mergo.Merge(&cfg, configDefaults); err != nil {
		return nil, fmt.Errorf("failed to apply configuration defaults: %w", err)
	}

	switch cfg.Mode {
	case ModeAwait, ModeCallback:
	default:
		return nil, fmt.Errorf("invalid mode %q: must be %q or %q", cfg.Mode, ModeAwait, ModeCallback)
	}
	if cfg.Mode == ModeCallback && cfg.CallbackURL == "" {
		return nil, errors.New("callback mode requires a callback URL")
	}

	switch cfg.OutputFormat {
	case "binary", "filePath", "text":
	default:
		return nil, fmt.Errorf("invalid output format %q: must be 'binary', 'filePath' or 'text'", cfg.OutputFormat)
	}

	return &cfg, nil
}
