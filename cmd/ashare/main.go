package main

import (
	"os"

	"ashare-backtest/cmd/ashare/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
