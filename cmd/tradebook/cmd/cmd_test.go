package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebook/config"
)

const fills = `time,instrument,event,quantity,price,commission
2024-03-01T10:30:00Z,AAPL,buy,10,180,1
2024-03-01T11:00:00Z,AAPL,mark,,178
2024-03-01T12:00:00Z,AAPL,sell,10,185,1
2024-03-01T12:30:00Z,ES,buy,1,5100,2.5
`

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestReplayAndQuery(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tradebook.yaml")
	dbPath := filepath.Join(dir, "journal.db")
	fillsPath := filepath.Join(dir, "fills.csv")
	orgPath := filepath.Join(dir, "run.org")

	cfg := config.Default()
	cfg.Portfolio.Start = "2024-03-01T00:00:00Z"
	cfg.Journal = config.JournalConfig{Type: "sqlite", DBPath: dbPath}
	cfg.Log.Level = "disabled"
	require.NoError(t, cfg.SaveToFile(cfgPath))
	require.NoError(t, os.WriteFile(fillsPath, []byte(fills), 0644))

	out := execute(t, "config", "validate", "-f", cfgPath)
	assert.Contains(t, out, "Configuration valid")

	out = execute(t, "replay", "-c", cfgPath, "--env", filepath.Join(dir, "none.env"), "--org", orgPath, fillsPath)
	assert.Contains(t, out, "Replayed 4 events (3 fills, 1 marks)")
	assert.Contains(t, out, "Roundtrips:  1")
	assert.Contains(t, out, "Open ES")

	report, err := os.ReadFile(orgPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "fills.csv")

	out = execute(t, "journal", "stats", "--db", dbPath, "--from", "2024-02-29", "--to", "2024-03-03")
	assert.Contains(t, out, "Roundtrips:    1 (won 1, lost 0)")
	assert.Contains(t, out, "Net PnL:       48.00")

	out = execute(t, "journal", "day", "--db", dbPath, "2024-03-01")
	assert.Contains(t, out, ":INSTRUMENT: AAPL")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	out := execute(t, "config", "init", "-o", path)
	assert.Contains(t, out, path)

	_, err := config.LoadFromFile(path)
	assert.NoError(t, err)
}

func TestParseBound(t *testing.T) {
	t.Parallel()

	tm, err := parseBound("")
	require.NoError(t, err)
	assert.True(t, tm.IsZero())

	tm, err = parseBound("2024-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, tm.Hour())

	tm, err = parseBound("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.March, tm.Month())

	_, err = parseBound("March")
	assert.Error(t, err)
}

func TestDayBounds(t *testing.T) {
	t.Parallel()

	start, end, err := dayBounds(time.UTC, "2024-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), end)

	_, _, err = dayBounds(time.UTC, "28/02/2024")
	assert.Error(t, err)
}
