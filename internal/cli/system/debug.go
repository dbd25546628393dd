package system

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/julianstephens/weeklit/internal/cli"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	Config       *DebugConfigCmd       `cmd:"" help:"Show the resolved configuration as JSON."`
	DumpActivity *DebugDumpActivityCmd `cmd:"" help:"Dump activity data as JSON."`
	Metrics      *DebugMetricsCmd      `cmd:"" help:"Show sync metrics collected by this process."`
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{
		"path": ctx.Provider.GetConfigPath(),
	})
}

type DebugConfigCmd struct{}

func (cmd *DebugConfigCmd) Run(ctx *cli.Context) error {
	c := ctx.Config
	database := c.Database
	if cli.IsPostgresConnString(database) {
		database = maskPassword(database)
	}
	return printJSON(map[string]any{
		"path":            c.Path,
		"backend":         c.Backend,
		"api_url":         c.APIURL,
		"database":        database,
		"request_timeout": c.RequestTimeout.String(),
		"debug":           c.Debug,
		"sync": map[string]any{
			"debounce":       c.Sync.Debounce.String(),
			"sweep_interval": c.Sync.SweepInterval.String(),
			"retry_delay":    c.Sync.RetryDelay.String(),
			"max_attempts":   c.Sync.MaxAttempts,
		},
	})
}

type DebugDumpActivityCmd struct {
	Ref string `arg:"" help:"Name or ID of the activity to dump."`
}

func (cmd *DebugDumpActivityCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Store(context.Background())
	if err != nil {
		return err
	}
	activity, err := s.Lookup(cmd.Ref)
	if err != nil {
		return fmt.Errorf("activity not found: %s", cmd.Ref)
	}
	return printJSON(activity)
}

type DebugMetricsCmd struct {
	All bool `help:"Include Go runtime and process metrics."`
}

func (cmd *DebugMetricsCmd) Run(ctx *cli.Context) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	writeMetrics(os.Stdout, families, cmd.All)
	return nil
}

// writeMetrics prints one line per sample in a compact name{labels} value form
func writeMetrics(w io.Writer, families []*dto.MetricFamily, all bool) {
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	for _, mf := range families {
		if !all && !strings.HasPrefix(mf.GetName(), "weeklit_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			name := mf.GetName() + formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				fmt.Fprintf(w, "%s %g\n", name, m.GetGauge().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			default:
				fmt.Fprintf(w, "%s (%s)\n", name, strings.ToLower(mf.GetType().String()))
			}
		}
	}
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
