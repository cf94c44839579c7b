package config

import (
	"flag"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// DefaultJWTSecret is the signing secret used when JWT_SECRET is unset.
// It must match the envDefault of Config.JWTSecret.
const DefaultJWTSecret = "finance-secret-key"

type Config struct {
	Address      string        `env:"RUN_ADDRESS"   envDefault:"localhost:8080"`
	Database     string        `env:"DATABASE_URI"  envDefault:""`
	LogLvl       string        `env:"LOG_LVL"       envDefault:"info"`
	LogFormat    string        `env:"LOG_FORMAT"    envDefault:"console"`
	QuoteAddress string        `env:"QUOTE_API_URL" envDefault:"https://cloud.iexapis.com/stable"`
	QuoteToken   string        `env:"API_KEY"       envDefault:""`
	QuoteTimeout time.Duration `env:"QUOTE_TIMEOUT" envDefault:"5s"`
	JWTSecret    string        `env:"JWT_SECRET"    envDefault:"finance-secret-key"`
	TokenTTL     time.Duration `env:"TOKEN_TTL"     envDefault:"1h"`
	StartingCash string        `env:"STARTING_CASH" envDefault:"10000.00"`
	AuditPeriod  time.Duration `env:"AUDIT_PERIOD"  envDefault:"1m"`
}

// InsecureJWTSecret reports whether tokens are signed with the built-in secret.
func (c *Config) InsecureJWTSecret() bool {
	return c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret
}

func New() *Config {
	cfg := &Config{}

	env.Parse(cfg)

	flag.StringVar(&cfg.Address, "a", cfg.Address, "address and port to run server")
	flag.StringVar(&cfg.Database, "d", cfg.Database, "database DSN, in-memory store when empty")
	flag.StringVar(&cfg.LogLvl, "l", cfg.LogLvl, "log level")
	flag.StringVar(&cfg.QuoteAddress, "q", cfg.QuoteAddress, "quote API base address")
	flag.StringVar(&cfg.QuoteToken, "k", cfg.QuoteToken, "quote API key")
	flag.DurationVar(&cfg.QuoteTimeout, "t", cfg.QuoteTimeout, "quote lookup timeout")
	flag.StringVar(&cfg.JWTSecret, "s", cfg.JWTSecret, "token signing secret")
	flag.DurationVar(&cfg.AuditPeriod, "r", cfg.AuditPeriod, "ledger reconciliation period, 0 disables it")
	flag.Parse()

	if !strings.HasPrefix(cfg.QuoteAddress, "http://") && !strings.HasPrefix(cfg.QuoteAddress, "https://") {
		cfg.QuoteAddress = "http://" + cfg.QuoteAddress
	}
	cfg.QuoteAddress = strings.TrimSuffix(cfg.QuoteAddress, "/")

	return cfg
}
