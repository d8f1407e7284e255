package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/comfygate/comfygate/internal/composer"
	"github.com/comfygate/comfygate/internal/ctxlog"
	"github.com/comfygate/comfygate/internal/gateway"
	"github.com/comfygate/comfygate/internal/host"
	"github.com/comfygate/comfygate/internal/normalizer"
	"github.com/comfygate/comfygate/internal/repository"
)

// itemResult is the outcome of one job item, as emitted to the output
// stream.
type itemResult struct {
	Item    int    `json:"item"`
	JobID   string `json:"jobId,omitempty"`
	Status  string `json:"status,omitempty"`
	Outputs []any  `json:"outputs,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Run executes the main application logic: list mode prints the template
// inventory; otherwise the configured number of independent job items run
// through a bounded worker pool.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.List {
		return a.listTemplates()
	}

	if a.config.HealthcheckPort > 0 {
		if err := a.startHealthcheckServer(a.config.HealthcheckPort); err != nil {
			return fmt.Errorf("failed to start health check server: %w", err)
		}
		defer a.closeHealthcheckServer()
	}

	tpl, ok := a.snapshot.Template(a.config.Template)
	if !ok {
		return fmt.Errorf("unknown template %q, available: %v", a.config.Template, a.snapshot.Slugs())
	}

	source := make(host.StaticValues, len(a.config.Values))
	for name, value := range a.config.Values {
		source[name] = value
	}

	a.logger.Info("🚀 Starting job items.",
		"template", tpl.Slug, "count", a.config.Count, "workers", a.config.WorkerCount, "mode", a.config.Mode)

	results := a.runItems(ctx, tpl, source)

	encoded, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	fmt.Fprintln(a.outW, string(encoded))

	var failed int
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
	}
	if failed > 0 && !a.config.ContinueOnError {
		return fmt.Errorf("%d of %d job items failed", failed, len(results))
	}

	a.logger.Info("🏁 Run finished.", "items", len(results), "failed", failed)
	return nil
}

// runItems fans the configured item count out over the worker pool. Items
// are independent jobs: no ordering is guaranteed between them, and no
// state is shared beyond the result slot each one owns.
func (a *App) runItems(ctx context.Context, tpl *repository.Template, source host.ParameterSource) []itemResult {
	results := make([]itemResult, a.config.Count)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, a.config.WorkerCount)
	var wg sync.WaitGroup
	for i := 0; i < a.config.Count; i++ {
		wg.Add(1)
		go func(item int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if runCtx.Err() != nil {
				results[item] = itemResult{Item: item, Error: "aborted: a previous item failed"}
				return
			}

			results[item] = a.runItem(runCtx, tpl, source, item)
			if results[item].Error != "" && !a.config.ContinueOnError {
				cancel()
			}
		}(i)
	}
	wg.Wait()

	return results
}

// runItem runs the full pipeline for one item: assemble values, compose,
// submit, await or acknowledge, normalize.
func (a *App) runItem(ctx context.Context, tpl *repository.Template, source host.ParameterSource, item int) itemResult {
	logger := ctxlog.FromContext(ctx).With("item", item, "template", tpl.Slug)

	values, err := a.assembleValues(tpl, source, item)
	if err != nil {
		return itemResult{Item: item, Error: err.Error()}
	}

	composed, err := composer.Compose(tpl.Graph, tpl.Schema.Mappings(), values, a.config.BatchSize)
	if err != nil {
		return itemResult{Item: item, Error: err.Error()}
	}

	callbackType := gateway.CallbackWebSocket
	if a.config.Mode == ModeCallback {
		callbackType = gateway.CallbackWebhook
	}
	outcome, err := a.client.Execute(ctx, &gateway.SubmitRequest{
		ExecutionID:  a.identity.CurrentExecutionID(),
		CallbackType: callbackType,
		OutputFormat: gateway.OutputFormat(a.config.OutputFormat),
		WorkflowJSON: composed,
		CallbackURL:  a.config.CallbackURL,
	})
	if err != nil {
		logger.Error("Job item failed.", "state", outcome.Job.State(), "error", err)
		return itemResult{Item: item, JobID: outcome.Job.ID, Error: err.Error()}
	}

	if outcome.Ack != nil {
		logger.Info("Job acknowledged.", "job_id", outcome.Ack.JobID)
		return itemResult{Item: item, JobID: outcome.Ack.JobID, Status: outcome.Ack.Status}
	}

	outputs := make([]any, 0, len(outcome.Payload.Records))
	for _, normalized := range normalizer.Normalize(outcome.Payload) {
		if normalized.Binary == nil {
			outputs = append(outputs, normalized.Fields)
			continue
		}
		prepared, err := a.preparer.PrepareBinary(normalized.Binary.Data, normalized.Binary.Filename, normalized.Binary.MimeType)
		if err != nil {
			outputs = append(outputs, map[string]any{"error": err.Error()})
			continue
		}
		outputs = append(outputs, prepared)
	}

	logger.Info("Job completed.", "job_id", outcome.Job.ID, "outputs", len(outputs))
	return itemResult{Item: item, JobID: outcome.Job.ID, Outputs: outputs}
}

// assembleValues builds the final parameter value map for one item. A
// retrieved value always wins, zero-valued or not; the declared default
// applies only when retrieval fails. A parameter with neither stays unset
// so the template's own graph values survive composition.
func (a *App) assembleValues(tpl *repository.Template, source host.ParameterSource, item int) (map[string]any, error) {
	values := make(map[string]any, len(tpl.Schema.Parameters))

	for _, def := range tpl.Schema.Parameters {
		raw, err := source.Parameter(def.Name, item)
		if err != nil {
			// Retrieval failure falls back to the declared default; that is
			// the one permitted kind of default-taking.
			if fallback, ok := def.DefaultValue(); ok {
				values[def.Name] = fallback
			} else {
				values[def.Name] = composer.Unset
			}
			continue
		}
		coerced, err := def.Coerce(raw)
		if err != nil {
			return nil, err
		}
		values[def.Name] = coerced
	}

	return values, nil
}

// listTemplates prints the template inventory with each template's visible
// parameter set. The snapshot is never empty here: Scan fails the whole
// startup on an empty repository.
func (a *App) listTemplates() error {
	for _, slug := range a.snapshot.Slugs() {
		fmt.Fprintln(a.outW, slug)
		for _, def := range a.registry.VisibleProperties(slug) {
			line := fmt.Sprintf("  %s (%s)", def.Name, def.Type.FriendlyName())
			if fallback, ok := def.DefaultValue(); ok {
				line += fmt.Sprintf(" default=%v", fallback)
			}
			if len(def.Options) > 0 {
				line += fmt.Sprintf(" options=%v", def.Options)
			}
			if def.Mapping != nil {
				line += fmt.Sprintf(" -> node %s at %s", def.Mapping.NodeID, def.Mapping.Path)
			} else {
				line += " (inert)"
			}
			fmt.Fprintln(a.outW, line)
		}
	}
	return nil
}
