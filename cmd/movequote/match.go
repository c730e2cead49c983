package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var matchCmd = &cobra.Command{
	Use:   "match [item name]",
	Short: "Show the catalog item an inventory line resolves to",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.log.Sync()

	query := strings.Join(args, " ")
	it, confidence, err := e.engine.Catalog().Resolve(query)
	if err != nil {
		return err
	}
	e.log.Debug("resolved", zap.String("query", query), zap.String("matched", it.Name), zap.Float64("confidence", confidence))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\t%g lb\tconfidence %.3f\n", it.Name, it.Weight, confidence)
	if it.Handling != nil {
		fmt.Fprintf(out, "handling: %s\n", *it.Handling)
	}
	if it.Surcharge != nil {
		fmt.Fprintf(out, "surcharge: %s\n", *it.Surcharge)
	}
	if confidence < e.cfg.LowConfidenceThreshold {
		fmt.Fprintln(out, "low confidence: confirm this item with the customer")
	}
	return nil
}
