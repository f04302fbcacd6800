package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/dashboard"
)

func report(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	// Keep stdout for the report itself.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	a, err := newApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("cannot build the application: %w", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 2*cfg.HTTPTimeout)
	defer cancel()
	if err := a.svc.Refresh(ctx); err != nil {
		logger.Warn("report built from partial data", slog.String("err", err.Error()))
	}

	vs := a.svc.DefaultState().WithQuery(reportQuery).WithStatus(reportStatus)
	if reportBreakEven != "" {
		vs = vs.WithBreakEven(reportBreakEven)
	}
	page := a.svc.Build(ctx, vs)

	out := cmd.OutOrStdout()
	switch reportFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	case "table", "":
		return writeTable(out, page)
	}
	return fmt.Errorf("unknown format %q", reportFormat)
}

func writeTable(w io.Writer, p dashboard.Page) error {
	t := p.Overview.Totals
	fmt.Fprintf(w, "%s  %s → %s  break-even %s\n", p.Account, p.From, p.To, dashboard.Ratio(p.State.BreakEven))
	fmt.Fprintf(w, "spend %s  purchases %d  revenue %s  ROAS %s  CPP %s\n\n",
		dashboard.GBP(t.Spend), t.Purchases, dashboard.GBP(t.Revenue), dashboard.Ratio(t.ROAS), dashboard.TotalCPP(t))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tAD SET\tCAMPAIGN\tSPEND\tPURCH\tREVENUE\tROAS\tCPP\tREC")
	for _, r := range p.Overview.AdSets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			r.Status, r.Name, r.CampaignID, dashboard.GBP2(r.Spend), r.Purchases,
			dashboard.GBP2(r.Revenue), dashboard.Ratio(r.ROAS), dashboard.CPP(r.CPP, true), r.Recommendation)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(p.Overview.Flagged) > 0 {
		fmt.Fprintln(w, "\nTurn-off candidates:")
		for _, r := range p.Overview.Flagged {
			fmt.Fprintf(w, "  %s  ROAS %s  spend %s\n", r.Name, dashboard.Ratio(r.ROAS), dashboard.GBP(r.Spend))
		}
	}
	for _, s := range p.Sources {
		if s.Error != "" {
			fmt.Fprintf(w, "\nwarning: %s not refreshed: %s\n", s.Source, s.Error)
		}
	}
	return nil
}
