package metrics

import (
	"fmt"
	"io"
)

// Fprint renders the summary as the plain-text report the CLI prints after a
// run.
func Fprint(w io.Writer, s Summary) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Days:           %d\n", s.Days)
	fmt.Fprintf(w, "Initial:        %.2f\n", s.InitialCapital)
	fmt.Fprintf(w, "Final:          %.2f\n", s.FinalValue)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Total Return:   %.2f%%\n", s.TotalReturn*100)
	fmt.Fprintf(w, "Annual Return:  %.2f%%\n", s.AnnualReturn*100)
	fmt.Fprintf(w, "Max Drawdown:   %.2f%%\n", s.MaxDrawdown*100)
	fmt.Fprintf(w, "Sharpe Ratio:   %.2f\n", s.SharpeRatio)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:         %d\n", s.TotalTrades)
	fmt.Fprintf(w, "Sells:          %d\n", s.SellTrades)
	fmt.Fprintf(w, "Wins:           %d\n", s.WinningTrades)
	fmt.Fprintf(w, "Win Rate:       %.2f%%\n", s.WinRate*100)

	fmt.Fprintln(w)
}
