package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aristath/pricing/internal/config"
	"github.com/aristath/pricing/internal/modules/optimization"
	"github.com/aristath/pricing/internal/modules/recommendation"
	pricinghandlers "github.com/aristath/pricing/internal/modules/recommendation/handlers"
	"github.com/aristath/pricing/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const version = "v1.0.0"

// cli carries the state shared by all subcommands.
type cli struct {
	stdin    io.Reader
	defaults pricinghandlers.Defaults
	service  *recommendation.Service
	log      zerolog.Logger
	now      func() time.Time
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	app := &cli{stdin: stdin, now: time.Now}

	rootCmd := &cobra.Command{
		Use:          "pricing",
		Short:        "Revenue-optimized nightly price recommendations",
		Long:         "Runs elasticity, competitor and factor analyses over booking history, then forecasts demand and searches the best price for every day of the horizon.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			app.log = logger.New(logger.Config{
				Level:  cfg.LogLevel,
				Pretty: true,
				Output: stderr,
			})
			app.defaults = pricinghandlers.Defaults{
				ForecastDays:    cfg.ForecastDays,
				Strategy:        cfg.Strategy,
				TargetOccupancy: cfg.TargetOccupancy,
			}
			app.service = recommendation.NewService(app.log)
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	recommendCmd := &cobra.Command{
		Use:   "recommend",
		Short: "Generate price recommendations for the forecast horizon",
		Long:  "Reads a recommendations request (history, current average price, constraints, weather and holidays) and prints the full batch result",
		RunE:  app.runRecommend,
	}
	recommendCmd.Flags().Int("days", 0, "Forecast horizon in days (overrides the request and FORECAST_DAYS)")
	recommendCmd.Flags().String("strategy", "", "Pricing strategy (conservative|balanced|aggressive)")
	recommendCmd.Flags().String("today", "", "Run date as YYYY-MM-DD; the horizon starts the day after")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run elasticity, competitor and factor analyses over history",
		RunE:  app.runAnalyze,
	}

	for _, cmd := range []*cobra.Command{recommendCmd, analyzeCmd} {
		cmd.Flags().StringP("input", "i", "-", "Request file (JSON or YAML), - for stdin")
	}

	strategiesCmd := &cobra.Command{
		Use:   "strategies",
		Short: "List pricing strategies and their tuning",
		RunE:  app.runStrategies,
	}

	for _, cmd := range []*cobra.Command{recommendCmd, analyzeCmd, strategiesCmd} {
		cmd.Flags().StringP("output", "o", "json", "Output format (json|yaml)")
	}

	rootCmd.AddCommand(recommendCmd, analyzeCmd, strategiesCmd)
	return rootCmd
}

func (a *cli) runRecommend(cmd *cobra.Command, args []string) error {
	var body pricinghandlers.RecommendationsBody
	if err := a.readInput(cmd, &body); err != nil {
		return err
	}

	if cmd.Flags().Changed("days") {
		days, _ := cmd.Flags().GetInt("days")
		body.ForecastDays = &days
	}
	if strategy, _ := cmd.Flags().GetString("strategy"); strategy != "" {
		body.Constraints.Strategy = strategy
	}
	if today, _ := cmd.Flags().GetString("today"); today != "" {
		body.Today = today
	}

	req, err := a.defaults.Request(body, a.now())
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := a.service.GenerateRecommendations(req)
	if err != nil {
		return err
	}

	a.log.Info().
		Int("days", len(result.Recommendations)).
		Str("strategy", string(req.Constraints.Strategy)).
		Dur("elapsed", time.Since(start)).
		Msg("Generated pricing recommendations")

	return a.writeOutput(cmd, result)
}

func (a *cli) runAnalyze(cmd *cobra.Command, args []string) error {
	var body pricinghandlers.AnalysisBody
	if err := a.readInput(cmd, &body); err != nil {
		return err
	}

	history, err := pricinghandlers.History(body.History)
	if err != nil {
		return err
	}

	a.log.Debug().Int("sample_size", len(history)).Msg("Analyzing history")
	return a.writeOutput(cmd, a.service.Analyze(history))
}

func (a *cli) runStrategies(cmd *cobra.Command, args []string) error {
	return a.writeOutput(cmd, map[string]interface{}{
		"strategies": optimization.Profiles(),
		"default":    a.defaults.Strategy,
	})
}

// readInput decodes the request document. Documents starting with '{' are JSON, anything else YAML.
func (a *cli) readInput(cmd *cobra.Command, v interface{}) error {
	path, _ := cmd.Flags().GetString("input")

	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(a.stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return fmt.Errorf("input %s is empty", path)
	}
	if trimmed[0] == '{' {
		err = json.Unmarshal(trimmed, v)
	} else {
		err = yaml.Unmarshal(trimmed, v)
	}
	if err != nil {
		return fmt.Errorf("failed to decode input: %w", err)
	}
	return nil
}

// writeOutput prints v in the requested format. YAML goes through JSON so field names match the API.
func (a *cli) writeOutput(cmd *cobra.Command, v interface{}) error {
	format, _ := cmd.Flags().GetString("output")
	out := cmd.OutOrStdout()

	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	switch format {
	case "json":
		_, err = fmt.Fprintln(out, string(encoded))
		return err
	case "yaml", "yml":
		var generic interface{}
		if err := json.Unmarshal(encoded, &generic); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q, expected json or yaml", format)
	}
}
