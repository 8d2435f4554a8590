package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradebook/currency"
	"github.com/rustyeddy/tradebook/market"
	"github.com/rustyeddy/tradebook/performance"
)

// Environment variables that override file settings.
const (
	EnvLogLevel  = "TRADEBOOK_LOG_LEVEL"
	EnvJournalDB = "TRADEBOOK_JOURNAL_DB"
	EnvHolder    = "TRADEBOOK_HOLDER"
)

// Config represents the complete tradebook configuration
type Config struct {
	Portfolio   PortfolioConfig    `json:"portfolio" yaml:"portfolio"`
	Currencies  []CurrencyConfig   `json:"currencies,omitempty" yaml:"currencies,omitempty"`
	Rates       []RateConfig       `json:"rates,omitempty" yaml:"rates,omitempty"`
	Instruments []InstrumentConfig `json:"instruments" yaml:"instruments"`
	Journal     JournalConfig      `json:"journal" yaml:"journal"`
	Log         LogConfig          `json:"log" yaml:"log"`
}

// PortfolioConfig contains portfolio initialization parameters
type PortfolioConfig struct {
	Holder      string  `json:"holder" yaml:"holder"`
	Currency    string  `json:"currency" yaml:"currency"`
	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`
	Matching    string  `json:"matching" yaml:"matching"` // fifo or lifo
	Start       string  `json:"start,omitempty" yaml:"start,omitempty"`
}

// StartTime parses Start as RFC3339. An empty Start is the zero time.
func (p PortfolioConfig) StartTime() (time.Time, error) {
	if p.Start == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, p.Start)
}

// CurrencyConfig registers a currency missing from the standard table.
type CurrencyConfig struct {
	Symbol    string `json:"symbol" yaml:"symbol"`
	Precision int    `json:"precision" yaml:"precision"`
	Display   string `json:"display,omitempty" yaml:"display,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
}

// RateConfig is one exchange rate: 1 Base = Rate Term.
type RateConfig struct {
	Base string  `json:"base" yaml:"base"`
	Term string  `json:"term" yaml:"term"`
	Rate float64 `json:"rate" yaml:"rate"`
}

// InstrumentConfig describes a tradable instrument
type InstrumentConfig struct {
	Symbol             string  `json:"symbol" yaml:"symbol"`
	Name               string  `json:"name,omitempty" yaml:"name,omitempty"`
	Type               string  `json:"type" yaml:"type"`
	Currency           string  `json:"currency" yaml:"currency"`
	PriceFactor        float64 `json:"price_factor,omitempty" yaml:"price_factor,omitempty"`
	InitialMargin      float64 `json:"initial_margin,omitempty" yaml:"initial_margin,omitempty"`
	PriceDecimalPlaces int     `json:"price_decimal_places,omitempty" yaml:"price_decimal_places,omitempty"`
	MinIncrement       float64 `json:"min_increment,omitempty" yaml:"min_increment,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type             string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TransactionsFile string `json:"transactions_file,omitempty" yaml:"transactions_file,omitempty"`
	RoundtripsFile   string `json:"roundtrips_file,omitempty" yaml:"roundtrips_file,omitempty"`
	EquityFile       string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath           string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig selects the log level and console output.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = &Config{}
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// LoadEnv applies overrides from the process environment and from the
// given dotenv files. Variables already in the environment win over the
// files; missing files are ignored.
func (c *Config) LoadEnv(files ...string) error {
	env := map[string]string{}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read env file %s: %w", f, err)
		}
		for k, v := range m {
			if _, ok := env[k]; !ok {
				env[k] = v
			}
		}
	}
	for _, k := range []string{EnvLogLevel, EnvJournalDB, EnvHolder} {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	c.ApplyEnv(env)
	return nil
}

// ApplyEnv applies the recognised overrides in env.
func (c *Config) ApplyEnv(env map[string]string) {
	if v := env[EnvLogLevel]; v != "" {
		c.Log.Level = v
	}
	if v := env[EnvJournalDB]; v != "" {
		c.Journal.Type = "sqlite"
		c.Journal.DBPath = v
	}
	if v := env[EnvHolder]; v != "" {
		c.Portfolio.Holder = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Portfolio.Holder == "" {
		return fmt.Errorf("portfolio.holder is required")
	}
	if c.Portfolio.Currency == "" {
		return fmt.Errorf("portfolio.currency is required")
	}
	if c.Portfolio.InitialCash < 0 {
		return fmt.Errorf("portfolio.initial_cash must not be negative")
	}
	if _, err := performance.ParseMatching(c.Portfolio.Matching); err != nil {
		return fmt.Errorf("portfolio.matching: %w", err)
	}
	if _, err := c.Portfolio.StartTime(); err != nil {
		return fmt.Errorf("portfolio.start: %w", err)
	}
	for _, r := range c.Rates {
		if r.Base == "" || r.Term == "" {
			return fmt.Errorf("rates: base and term are required")
		}
		if r.Rate <= 0 {
			return fmt.Errorf("rate %s/%s must be positive", r.Base, r.Term)
		}
	}
	for _, i := range c.Instruments {
		if i.Symbol == "" {
			return fmt.Errorf("instruments: symbol is required")
		}
		if i.Currency == "" {
			return fmt.Errorf("instrument %s: currency is required", i.Symbol)
		}
		if i.PriceFactor < 0 || i.InitialMargin < 0 {
			return fmt.Errorf("instrument %s: price_factor and initial_margin must not be negative", i.Symbol)
		}
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TransactionsFile == "" || c.Journal.RoundtripsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal transactions_file, roundtrips_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	// symbols must resolve
	if _, _, _, err := c.Build(); err != nil {
		return err
	}
	return nil
}

// Build resolves the configuration into the currency registry, the
// converter loaded with the configured rates and the instrument registry.
func (c *Config) Build() (*currency.Registry, *currency.UpdatableConverter, *market.Registry, error) {
	ccys := currency.NewStandardRegistry()
	for _, cc := range c.Currencies {
		if _, err := ccys.Register(cc.Symbol, cc.Precision, cc.Display, cc.Name); err != nil {
			return nil, nil, nil, fmt.Errorf("currencies: %w", err)
		}
	}
	if _, err := ccys.Lookup(c.Portfolio.Currency); err != nil {
		return nil, nil, nil, fmt.Errorf("portfolio.currency: %w", err)
	}

	conv := currency.NewUpdatableConverter()
	for _, r := range c.Rates {
		base, err := ccys.Lookup(r.Base)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("rates: %w", err)
		}
		term, err := ccys.Lookup(r.Term)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("rates: %w", err)
		}
		conv.Update(base, term, r.Rate)
	}

	insts := market.NewRegistry()
	for _, ic := range c.Instruments {
		ccy, err := ccys.Lookup(ic.Currency)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("instrument %s: %w", ic.Symbol, err)
		}
		typ := market.Type(strings.ToLower(ic.Type))
		if typ == "" {
			typ = market.Stock
		}
		err = insts.Add(&market.Instrument{
			Symbol:             ic.Symbol,
			Name:               ic.Name,
			Type:               typ,
			Currency:           ccy,
			PriceFactor:        ic.PriceFactor,
			InitialMargin:      ic.InitialMargin,
			PriceDecimalPlaces: ic.PriceDecimalPlaces,
			MinIncrement:       ic.MinIncrement,
		})
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return ccys, conv, insts, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Portfolio: PortfolioConfig{
			Holder:      "SIM-001",
			Currency:    "USD",
			InitialCash: 100000,
			Matching:    "fifo",
		},
		Rates: []RateConfig{
			{Base: "EUR", Term: "USD", Rate: 1.085},
			{Base: "USD", Term: "EUR", Rate: 0.9217},
		},
		Instruments: []InstrumentConfig{
			{Symbol: "AAPL", Name: "Apple Inc.", Type: "stock", Currency: "USD", PriceFactor: 1},
			{Symbol: "SAP", Name: "SAP SE", Type: "stock", Currency: "EUR", PriceFactor: 1},
			{Symbol: "ES", Name: "E-mini S&P 500", Type: "index", Currency: "USD", PriceFactor: 50, InitialMargin: 12000},
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}
