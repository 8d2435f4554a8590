package journal

import (
	"fmt"
	"io"
	"text/template"
	"time"
)

// Report summarizes one replayed or live portfolio run.
type Report struct {
	RunID    string
	Created  time.Time
	Holder   string
	Currency string
	Matching string
	Dataset  string

	Start time.Time
	End   time.Time

	StartEquity float64
	EndEquity   float64
	NetPnL      float64
	ReturnPct   float64
	MaxDDPct    float64 // zero or negative

	Roundtrips   int
	Wins         int
	Losses       int
	WinRate      float64 // 0..1
	ProfitFactor float64
	Commission   float64
	AvgDuration  time.Duration

	Notes []string
}

var reportFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs).Parse(ReportOrgTemplate))

// WriteOrg renders the report as an Org-mode document.
func (r *Report) WriteOrg(w io.Writer) error {
	if err := reportTmpl.Execute(w, r); err != nil {
		return fmt.Errorf("report %s: %w", r.RunID, err)
	}
	return nil
}

const ReportOrgTemplate = `* RUN: {{.Holder}} {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:HOLDER:      {{.Holder}}
:CURRENCY:    {{.Currency}}
:MATCHING:    {{.Matching}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:START_EQ:    {{printf "%.2f" .StartEquity}}
:END_EQ:      {{printf "%.2f" .EndEquity}}
:NET_PNL:     {{printf "%.2f" .NetPnL}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:MAX_DD_PCT:  {{printf "%.2f" .MaxDDPct}}
:ROUNDTRIPS:  {{.Roundtrips}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:WIN_RATE:    {{printf "%.2f" .WinRate}}
:PROFIT_FAC:  {{if ne .ProfitFactor 0.0}}{{printf "%.2f" .ProfitFactor}}{{else}}(no losses){{end}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net PnL:          *{{printf "%.2f" .NetPnL}} {{.Currency}}*
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- Max Drawdown:     *{{printf "%.2f" .MaxDDPct}}%*
- Win Rate:         *{{printf "%.2f" (mul100 .WinRate)}}%*
- Commission:       *{{printf "%.2f" .Commission}}*
- Avg Duration:     *{{.AvgDuration}}*

** Roundtrip Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Total   | {{.Roundtrips}} |

{{- if .Notes }}
** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
