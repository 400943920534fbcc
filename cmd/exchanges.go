package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	exchangesDay   string
	exchangesLimit int
)

var exchangesCmd = &cobra.Command{
	Use:   "exchanges",
	Short: "List recorded chat exchanges for one UTC day as JSON lines",
	RunE:  runExchanges,
}

func init() {
	exchangesCmd.Flags().StringVar(&exchangesDay, "day", "", "UTC day to list, YYYY-MM-DD (defaults to today)")
	exchangesCmd.Flags().IntVar(&exchangesLimit, "limit", 50, "Maximum number of exchanges, 0 for all")
	rootCmd.AddCommand(exchangesCmd)
}

func runExchanges(cmd *cobra.Command, _ []string) error {
	day := time.Now().UTC()
	if exchangesDay != "" {
		parsed, err := time.Parse("2006-01-02", exchangesDay)
		if err != nil {
			return fmt.Errorf("invalid --day %q: %w", exchangesDay, err)
		}
		day = parsed
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	if a.exchanges == nil {
		return errors.New("EXCHANGE_TABLE is not set")
	}

	items, err := a.exchanges.ListExchanges(cmd.Context(), day, exchangesLimit)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, ex := range items {
		if err := enc.Encode(ex); err != nil {
			return fmt.Errorf("encode exchange: %w", err)
		}
	}
	return nil
}
