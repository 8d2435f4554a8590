package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/config"
	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/market"
	"github.com/rustyeddy/tradebook/performance"
	"github.com/rustyeddy/tradebook/pkg/id"
	"github.com/rustyeddy/tradebook/portfolio"
	"github.com/rustyeddy/tradebook/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <fills.csv>",
	Short: "Replay recorded fills and marks through a portfolio",
	Long: `Book every fill of a CSV file into a fresh portfolio built from the
configuration, revalue open positions on mark rows and print a summary.

Columns:
  time,instrument,event,quantity,price,commission,commission_currency,id

Dukascopy hourly tick files add mark rows with --ticks SYMBOL,HOUR,PATH
where HOUR is the file's UTC hour, e.g. EURUSD,2024-03-01T14,14h_ticks.bi5.

Examples:
  tradebook replay fills.csv
  tradebook replay -c tradebook.yaml --from 2024-01-01 --org run.org fills.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var (
	replayFrom  string
	replayTo    string
	replayOrg   string
	replayTicks []string
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayFrom, "from", "", "skip events before this time (RFC3339 or YYYY-MM-DD)")
	replayCmd.Flags().StringVar(&replayTo, "to", "", "skip events at or after this time (RFC3339 or YYYY-MM-DD)")
	replayCmd.Flags().StringVar(&replayOrg, "org", "", "write an Org-mode run report to this file")
	replayCmd.Flags().StringArrayVar(&replayTicks, "ticks", nil, "Dukascopy tick file as SYMBOL,HOUR,PATH (repeatable)")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	from, err := parseBound(replayFrom)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := parseBound(replayTo)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	ccys, conv, insts, err := cfg.Build()
	if err != nil {
		return err
	}
	home, err := ccys.Lookup(cfg.Portfolio.Currency)
	if err != nil {
		return err
	}
	matching, err := performance.ParseMatching(cfg.Portfolio.Matching)
	if err != nil {
		return err
	}
	start, err := cfg.Portfolio.StartTime()
	if err != nil {
		return err
	}
	if start.IsZero() {
		start = from
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if j != nil {
		defer j.Close()
	}

	p, err := portfolio.New(portfolio.Config{
		Holder:      cfg.Portfolio.Holder,
		Currency:    home,
		InitialCash: cfg.Portfolio.InitialCash,
		Start:       start,
		Converter:   conv,
		Matching:    matching,
		Journal:     j,
		Logger:      &log,
	})
	if err != nil {
		return err
	}

	feed, err := replay.OpenCSV(args[0], from, to)
	if err != nil {
		return fmt.Errorf("open fills: %w", err)
	}
	defer feed.Close()

	sources := []replay.Source{feed}
	for _, arg := range replayTicks {
		src, err := openTicks(arg, insts)
		if err != nil {
			return fmt.Errorf("--ticks %s: %w", arg, err)
		}
		defer src.Close()
		sources = append(sources, src)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	r := &replay.Runner{Portfolio: p, Instruments: insts, Currencies: ccys, Log: log}
	summary, err := r.Run(ctx, replay.Merge(sources...))
	if err != nil {
		return err
	}

	rep, err := replay.Report(p, summary, filepath.Base(args[0]))
	if err != nil {
		return err
	}
	rep.RunID = id.New()
	rep.Created = time.Now()
	printSummary(cmd, p, summary, rep)

	if replayOrg != "" {
		f, err := os.Create(replayOrg)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		if err := rep.WriteOrg(f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Report written: %s\n", replayOrg)
	}
	return nil
}

func printSummary(cmd *cobra.Command, p *portfolio.Portfolio, s replay.Summary, rep *journal.Report) {
	out := cmd.OutOrStdout()
	ccy := p.Currency()
	fmt.Fprintf(out, "Replayed %d events (%d fills, %d marks)\n", s.Events, s.Fills, s.Marks)
	fmt.Fprintf(out, "  Equity:      %s -> %s\n", ccy.Format(rep.StartEquity), ccy.Format(rep.EndEquity))
	fmt.Fprintf(out, "  Net PnL:     %s (%.2f%%)\n", ccy.Format(rep.NetPnL), rep.ReturnPct)
	fmt.Fprintf(out, "  Max DD:      %.2f%%\n", rep.MaxDDPct)
	fmt.Fprintf(out, "  Roundtrips:  %d (won %d, lost %d, win rate %.1f%%)\n",
		rep.Roundtrips, rep.Wins, rep.Losses, rep.WinRate*100)
	fmt.Fprintf(out, "  Commission:  %.2f\n", rep.Commission)
	for _, pos := range p.Positions() {
		if pos.Quantity() == 0 {
			continue
		}
		fmt.Fprintf(out, "  Open %-8s %s %g @ %g (margin %.2f, debt %.2f)\n",
			pos.Instrument().Symbol, pos.Side(), pos.Quantity(), pos.Price(), pos.Margin(), pos.Debt())
	}
}

// openJournal returns nil when journaling is off.
func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		j, err := journal.NewCSV(jc.TransactionsFile, jc.RoundtripsFile, jc.EquityFile)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "sqlite":
		j, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return nil, err
		}
		return j, nil
	}
	return nil, nil
}

// openTicks opens SYMBOL,HOUR,PATH. Prices use the instrument's decimal
// places, five when unset.
func openTicks(arg string, insts *market.Registry) (*replay.BI5Marks, error) {
	parts := strings.SplitN(arg, ",", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("want SYMBOL,HOUR,PATH")
	}
	inst, err := insts.Lookup(parts[0])
	if err != nil {
		return nil, err
	}
	hour, err := time.ParseInLocation("2006-01-02T15", parts[1], time.UTC)
	if err != nil {
		return nil, err
	}
	decimals := inst.PriceDecimalPlaces
	if decimals == 0 {
		decimals = 5
	}
	return replay.OpenBI5(parts[2], inst.Symbol, hour, decimals)
}

func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}
