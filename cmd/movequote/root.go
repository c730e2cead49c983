package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"movequote/internal/catalog"
	"movequote/internal/config"
	"movequote/internal/logger"
	"movequote/internal/quote"
)

const app = "movequote"

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "movequote prices household moves from an inventory list",
		SilenceUsage: true,
	}

	validate = validator.New(validator.WithRequiredStructEnabled())
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a YAML config file; environment variables override it")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// env is what every subcommand needs: config, a logger and a pricing engine.
type env struct {
	cfg    config.Config
	log    *zap.Logger
	engine *quote.Engine
}

func setup() (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(viper.GetBool("json") || cfg.LogJSON, viper.GetBool("debug") || cfg.LogDebug)
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	idx, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	log.Debug("catalog loaded", zap.Int("items", idx.Len()))
	return &env{cfg: cfg, log: log, engine: quote.NewEngine(idx, &cfg.Rates, nil)}, nil
}
