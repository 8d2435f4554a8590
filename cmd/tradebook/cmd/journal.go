package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the SQLite journal",
	Long: `Query and display journal records from a SQLite database.

Subcommands:
  roundtrip - Get details of a specific round-trip by ID
  today     - List round-trips closed today
  day       - List round-trips closed on a specific day
  stats     - Aggregate round-trips closed in a period
  equity    - List equity snapshots in a period

Examples:
  tradebook journal roundtrip <roundtrip-id>
  tradebook journal today
  tradebook journal day 2024-01-15
  tradebook journal stats --from 2024-01-01 --to 2024-02-01`,
}

var journalRoundtripCmd = &cobra.Command{
	Use:   "roundtrip <roundtrip-id>",
	Short: "Get details of a specific round-trip",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRoundtrip,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List round-trips closed today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List round-trips closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate round-trips closed in a period",
	Args:  cobra.NoArgs,
	RunE:  runJournalStats,
}

var journalEquityCmd = &cobra.Command{
	Use:   "equity",
	Short: "List equity snapshots in a period",
	Args:  cobra.NoArgs,
	RunE:  runJournalEquity,
}

var (
	journalDBPath string
	journalFrom   string
	journalTo     string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRoundtripCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalStatsCmd)
	journalCmd.AddCommand(journalEquityCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./tradebook.sqlite", "path to SQLite journal DB")
	for _, c := range []*cobra.Command{journalStatsCmd, journalEquityCmd} {
		c.Flags().StringVar(&journalFrom, "from", "", "period start (RFC3339 or YYYY-MM-DD)")
		c.Flags().StringVar(&journalTo, "to", "", "period end, exclusive (default now)")
	}
}

func openJournalDB() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRoundtrip(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetRoundtrip(args[0])
	if err != nil {
		return fmt.Errorf("get roundtrip: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRoundtripOrg(rec))
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return listDay(cmd, time.Now().In(time.Local).Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listDay(cmd, args[0])
}

func listDay(cmd *cobra.Command, day string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListRoundtripsClosedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query roundtrips: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRoundtripsOrg(recs))
	return nil
}

func runJournalStats(cmd *cobra.Command, args []string) error {
	start, end, err := periodBounds()
	if err != nil {
		return err
	}
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	s, err := j.StatsClosedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Roundtrips:    %d (won %d, lost %d)\n", s.Count, s.Wins, s.Losses)
	fmt.Fprintf(out, "Gross profit:  %.2f\n", s.GrossProfit)
	fmt.Fprintf(out, "Gross loss:    %.2f\n", s.GrossLoss)
	fmt.Fprintf(out, "Net PnL:       %.2f\n", s.NetPnL)
	fmt.Fprintf(out, "Profit factor: %.2f\n", s.ProfitFactor)
	return nil
}

func runJournalEquity(cmd *cobra.Command, args []string) error {
	start, end, err := periodBounds()
	if err != nil {
		return err
	}
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	snaps, err := j.ListEquityBetween(start, end)
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, e := range snaps {
		fmt.Fprintf(out, "%s  %-10s equity %12.2f  pnl %10.2f  dd %10.2f\n",
			e.Time.Format(time.RFC3339), e.Holder, e.Equity, e.PnL, e.Drawdown)
	}
	return nil
}

func periodBounds() (time.Time, time.Time, error) {
	start, err := parseBound(journalFrom)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--from: %w", err)
	}
	end, err := parseBound(journalTo)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--to: %w", err)
	}
	if end.IsZero() {
		end = time.Now()
	}
	return start, end, nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
