package journal

import (
	"bytes"
	"os"
	"text/template"
)

// Org rendering for run records, for notes kept in org-mode.

var runOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"short":  shortID,
}

var runOrgTemplate = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(`* Run: {{.Strategy}} ({{short .RunID}})
:PROPERTIES:
:RUN_ID:     {{.RunID}}
:STRATEGY:   {{.Strategy}}
:START_DATE: {{.StartDate}}
:END_DATE:   {{.EndDate}}
:INITIAL:    {{printf "%.2f" .InitialCapital}}
:FINAL:      {{printf "%.2f" .FinalValue}}
:TRADES:     {{.Trades}}
:REJECTIONS: {{.Rejections}}
:CREATED:    {{.CreatedAt}}
:END:

** Performance Summary
| Metric        | Value |
|---------------+-------|
| Total Return  | {{printf "%.2f" (mul100 .TotalReturn)}}% |
| Annual Return | {{printf "%.2f" (mul100 .AnnualReturn)}}% |
| Max Drawdown  | {{printf "%.2f" (mul100 .MaxDrawdown)}}% |
| Sharpe Ratio  | {{printf "%.2f" .SharpeRatio}} |
| Win Rate      | {{printf "%.2f" (mul100 .WinRate)}}% |
`))

// FormatRunOrg renders the run header as an org-mode section.
func FormatRunOrg(r RunRecord) (string, error) {
	buf := new(bytes.Buffer)
	if err := runOrgTemplate.Execute(buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteOrg renders the run and writes it to path.
func (r RunRecord) WriteOrg(path string) error {
	s, err := FormatRunOrg(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0o644)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
