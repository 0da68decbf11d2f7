package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/goliatone/go-laptopprice/internal/bootstrap"
	"github.com/goliatone/go-laptopprice/internal/logging"
	"github.com/goliatone/go-laptopprice/pkg/config"
	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/inference"
	"github.com/goliatone/go-laptopprice/pkg/orchestrator"
	"github.com/goliatone/go-laptopprice/pkg/render/template/gotemplate"
	"github.com/goliatone/go-laptopprice/pkg/renderers/tui"
)

const maxAttempts = 3

// fieldFlags collects repeated -field name=value pairs.
type fieldFlags feature.RawInputs

func (f fieldFlags) String() string {
	keys := make([]string, 0, len(f))
	for key := range f {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, key := range keys {
		pairs[i] = key + "=" + f[key]
	}
	return strings.Join(pairs, ",")
}

func (f fieldFlags) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("field %q must be name=value", raw)
	}
	f[name] = value
	return nil
}

type options struct {
	cfg         config.Config
	fields      feature.RawInputs
	interactive bool
	jsonOutput  bool
	driver      tui.PromptDriver
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "laptopprice-cli: %v\n", err)
		os.Exit(2)
	}
	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "laptopprice-cli: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	opts := options{
		cfg:    config.Default(),
		fields: feature.RawInputs{},
	}
	opts.cfg.Log.Level = "warn"

	fs := flag.NewFlagSet("laptopprice-cli", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.cfg.Artifacts.Pipeline, "pipeline", "", "Pipeline artifact (path, fs:name, http(s):// or s3:// URL)")
	fs.StringVar(&opts.cfg.Artifacts.Dataset, "dataset", "", "Reference dataset (path, fs:name, http(s):// or s3:// URL)")
	fs.StringVar(&opts.cfg.Inference.RemoteURL, "remote-url", "", "Remote inference endpoint")
	fs.StringVar(&opts.cfg.Log.Level, "log-level", opts.cfg.Log.Level, "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.interactive, "interactive", false, "Prompt for every field")
	fs.BoolVar(&opts.jsonOutput, "json", false, "Print the result as JSON")
	fs.Var(fieldFlags(opts.fields), "field", "Field value as name=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if err := opts.cfg.Validate(); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	logger, err := logging.New(stderr, opts.cfg.Log.Format, opts.cfg.Log.Level)
	if err != nil {
		return err
	}

	fetcher, err := bootstrap.NewFetcher(ctx, opts.cfg, logger)
	if err != nil {
		return err
	}
	artifacts, err := bootstrap.Load(ctx, opts.cfg, fetcher, logger)
	if err != nil {
		return err
	}

	orch := orchestrator.New(
		orchestrator.WithPipeline(artifacts.Pipeline),
		orchestrator.WithChoices(artifacts.Choices()),
		orchestrator.WithLogger(logger.Logger),
	)

	var result inference.Result
	if opts.interactive {
		result, err = predictInteractive(ctx, orch, opts)
		if err != nil {
			return err
		}
	} else {
		result = orch.Predict(ctx, opts.fields)
	}
	return report(stdout, result, opts.jsonOutput)
}

// predictInteractive prompts for the inputs and re-prompts, with the previous
// answers and the field error, while validation fails.
func predictInteractive(ctx context.Context, orch *orchestrator.Orchestrator, opts options) (inference.Result, error) {
	tuiOptions := []tui.Option{
		tui.WithOutputFormat(tui.OutputFormatJSON),
		tui.WithTheme(tui.Theme{ErrorPrefix: "! "}),
	}
	if opts.driver != nil {
		tuiOptions = append(tuiOptions, tui.WithPromptDriver(opts.driver))
	}
	renderer, err := tui.New(tuiOptions...)
	if err != nil {
		return inference.Result{}, err
	}
	if err := orch.Registry().Register(renderer); err != nil {
		return inference.Result{}, err
	}

	inputs := opts.fields.Clone()
	var last *inference.Result
	for attempt := 0; attempt < maxAttempts; attempt++ {
		output, err := orch.Render(ctx, orchestrator.Request{
			Renderer: tui.Name,
			Inputs:   inputs,
			Result:   last,
		})
		if err != nil {
			return inference.Result{}, err
		}

		answers := feature.RawInputs{}
		if err := json.Unmarshal(output, &answers); err != nil {
			return inference.Result{}, fmt.Errorf("decode answers: %w", err)
		}
		inputs = answers

		result := orch.Predict(ctx, inputs)
		if result.OK() || !feature.IsValidationError(result.Err()) {
			return result, nil
		}
		last = &result
	}
	return *last, nil
}

func report(w io.Writer, result inference.Result, asJSON bool) error {
	price, ok := result.Price()
	if asJSON {
		body := map[string]any{}
		if ok {
			body["price"] = price
		} else {
			body["error"] = result.Message()
		}
		if err := json.NewEncoder(w).Encode(body); err != nil {
			return err
		}
	} else if ok {
		fmt.Fprintf(w, "Predicted price: ₹ %s\n", gotemplate.GroupThousands(price))
	}
	if !ok {
		return result.Err()
	}
	return nil
}
