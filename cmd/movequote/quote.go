package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"movequote/internal/catalog"
	"movequote/internal/logger"
	"movequote/internal/quote"
)

var quoteFile string

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a move described in a YAML order file",
	Long: `Reads an order (items and/or weight_lbs plus move parameters) as YAML
from --file or stdin and prints the priced quote as JSON.`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&quoteFile, "file", "f", "", "order file (default stdin)")
	rootCmd.AddCommand(quoteCmd)
}

type quoteInput struct {
	Items        catalog.Order `yaml:"items" validate:"dive"`
	WeightLbs    *float64      `yaml:"weight_lbs" validate:"omitempty,gte=0"`
	quote.Params `yaml:",inline"`
}

type quoteOutput struct {
	Company  string                 `json:"company"`
	Quote    quote.Quote            `json:"quote"`
	Items    []catalog.ResolvedLine `json:"items,omitempty"`
	Warnings []string               `json:"warnings,omitempty"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.log.Sync()

	in, err := readQuoteInput(cmd)
	if err != nil {
		return err
	}
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("invalid order: %w", err)
	}
	if len(in.Items) == 0 && in.WeightLbs == nil {
		return errors.New("order needs items or weight_lbs")
	}

	est, known, err := e.engine.Price(in.Items, in.WeightLbs, in.Params)
	if err != nil {
		return fmt.Errorf("pricing failed: %w", err)
	}

	out := quoteOutput{Company: e.cfg.CompanyName, Quote: est.Quote, Items: est.Items}
	if !known {
		e.log.Warn("unknown location profile", zap.String("profile", in.LocationProfile))
		out.Warnings = append(out.Warnings, fmt.Sprintf("unknown location profile %q", in.LocationProfile))
	}
	for _, l := range catalog.LowConfidence(est.Items, e.cfg.LowConfidenceThreshold) {
		e.log.Warn("low confidence item match",
			zap.String("requested", logger.Truncate(l.Requested, 80)),
			zap.String("matched", l.MatchedName),
			zap.Float64("confidence", l.Confidence),
		)
		out.Warnings = append(out.Warnings, fmt.Sprintf("%q matched %q with low confidence %.3f", l.Requested, l.MatchedName, l.Confidence))
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func readQuoteInput(cmd *cobra.Command) (quoteInput, error) {
	var (
		raw []byte
		err error
	)
	if quoteFile != "" {
		raw, err = os.ReadFile(quoteFile)
	} else {
		raw, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return quoteInput{}, fmt.Errorf("reading order: %w", err)
	}
	var in quoteInput
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return quoteInput{}, fmt.Errorf("parsing order: %w", err)
	}
	return in, nil
}
