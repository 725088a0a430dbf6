package main

import (
	"encoding/json"
	"net/url"

	"github.com/spf13/cobra"

	"fluxo/internal/cli"
	apphttp "fluxo/internal/http"
)

var summaryQuery = map[string]*[]string{}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print KPIs and aggregates as JSON",
	Long: `Summary runs the same pipeline as the dashboard and prints the result as
indented JSON on stdout. Filters take the same values as the page query string.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	for _, p := range []struct{ name, usage string }{
		{apphttp.ParamFrom, "first day, yyyy-mm-dd or dd/mm/yyyy"},
		{apphttp.ParamTo, "last day, yyyy-mm-dd or dd/mm/yyyy"},
		{apphttp.ParamGroup, "group to keep (repeatable)"},
		{apphttp.ParamSupplier, "supplier to keep (repeatable)"},
		{apphttp.ParamNature, "nature to keep (repeatable)"},
		{apphttp.ParamView, "operational or complete"},
		{apphttp.ParamPeriod, "month, quarter or year"},
	} {
		summaryQuery[p.name] = summaryCmd.Flags().StringArray(p.name, nil, p.usage)
	}
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg, logger := setup(cmd)
	ctx := cmd.Context()

	values := url.Values{}
	for name, v := range summaryQuery {
		if len(*v) > 0 {
			values[name] = *v
		}
	}
	q, err := apphttp.ParseQuery(values)
	if err != nil {
		return err
	}

	dash, cleanup, err := newDashboard(ctx, cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize data source", err)
	}
	defer cleanup()

	d, err := dash.Build(ctx, q)
	if err != nil {
		cli.Fatal(logger, "Failed to build summary", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Source        string `json:"source"`
		Report        any    `json:"report"`
		Query         any    `json:"query"`
		Cards         any    `json:"cards"`
		Summary       any    `json:"summary"`
		Contributions any    `json:"contributions"`
	}{d.Source, d.Report, d.Query, d.Cards, d.Summary, d.Contributions})
}
