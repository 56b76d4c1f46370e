package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	DataDir    string `mapstructure:"DATA_DIR"`
	OrdersFile string `mapstructure:"ORDERS_FILE"`
	RosterFile string `mapstructure:"ROSTER_FILE"`

	CacheTTL         time.Duration `mapstructure:"CACHE_TTL"`
	CacheRefreshCron string        `mapstructure:"CACHE_REFRESH_CRON"`

	// SyntheticDemoData turns on deterministic placeholder ratings for demo
	// datasets. Never enabled by default; synthesized orders are flagged.
	SyntheticDemoData bool `mapstructure:"SYNTHETIC_DEMO_DATA"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("ORDERS_FILE", "service_orders.csv")
	v.SetDefault("ROSTER_FILE", "technicians.csv")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("SYNTHETIC_DEMO_DATA", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
