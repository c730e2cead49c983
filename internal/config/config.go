package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"movequote/internal/rate"
)

type Config struct {
	DatabaseURL            string     `mapstructure:"database_url"`
	Port                   string     `mapstructure:"port"`
	LogJSON                bool       `mapstructure:"log_json"`
	LogDebug               bool       `mapstructure:"log_debug"`
	LowConfidenceThreshold float64    `mapstructure:"low_confidence_threshold"`
	CompanyName            string     `mapstructure:"company_name"`
	Rates                  rate.Table `mapstructure:"rates"`
}

// Load reads defaults, then the YAML file at path if one is given, then the
// environment. Nested keys map to env names with dots as underscores, so
// rates.local.weekend.mover is RATES_LOCAL_WEEKEND_MOVER.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("database_url", "")
	v.SetDefault("port", "8080")
	v.SetDefault("log_json", false)
	v.SetDefault("log_debug", false)
	v.SetDefault("low_confidence_threshold", 0.5)
	v.SetDefault("company_name", "Dash Movers")
	setRateDefaults(v, rate.DefaultTable())

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Rates.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.LowConfidenceThreshold < 0 || cfg.LowConfidenceThreshold > 1 {
		return Config{}, fmt.Errorf("low_confidence_threshold %v outside [0,1]", cfg.LowConfidenceThreshold)
	}
	return cfg, nil
}

func setRateDefaults(v *viper.Viper, t *rate.Table) {
	tiers := map[string]rate.Tier{"local": t.Local, "long_distance": t.LongDistance}
	for name, tier := range tiers {
		days := map[string]rate.Hourly{"weekday": tier.Weekday, "weekend": tier.Weekend}
		for day, h := range days {
			prefix := "rates." + name + "." + day
			v.SetDefault(prefix+".mover", h.Mover)
			v.SetDefault(prefix+".truck", h.Truck)
		}
	}
}
