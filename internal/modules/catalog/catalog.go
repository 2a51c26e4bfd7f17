// Package catalog provides the read-only ETF universe consumed by the scoring engine.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/aristath/etfadvisor/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// Catalog validation errors
var (
	ErrDuplicateTicker = errors.New("duplicate ticker in catalog")
	ErrEmptyTicker     = errors.New("catalog entry has empty ticker")
	ErrEmptyStages     = errors.New("catalog entry has no stages")
	ErrEmptyCatalog    = errors.New("catalog has no entries")
	ErrNotFound        = errors.New("ticker not in catalog")
)

// file is the on-disk YAML layout
type file struct {
	ETFs []domain.ETF `yaml:"etfs"`
}

// Catalog is an ordered, immutable list of ETF records indexed by ticker.
// Order is preserved from the source file because ranking ties fall back to it.
type Catalog struct {
	etfs     []domain.ETF
	byTicker map[string]int
}

// New builds a catalog from records, validating every entry.
func New(etfs []domain.ETF) (*Catalog, error) {
	if len(etfs) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		etfs:     make([]domain.ETF, 0, len(etfs)),
		byTicker: make(map[string]int, len(etfs)),
	}

	for i, etf := range etfs {
		etf.Ticker = strings.ToUpper(strings.TrimSpace(etf.Ticker))
		if err := validateEntry(etf); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if _, exists := c.byTicker[etf.Ticker]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTicker, etf.Ticker)
		}

		// Stages are copied so later edits to the input cannot leak in
		stages := make([]domain.Stage, len(etf.Stages))
		copy(stages, etf.Stages)
		etf.Stages = stages

		c.byTicker[etf.Ticker] = len(c.etfs)
		c.etfs = append(c.etfs, etf)
	}

	return c, nil
}

// Parse decodes a YAML catalog document
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(f.ETFs)
}

// LoadFile reads a YAML catalog from disk
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the catalog bundled with the binary
func Default() (*Catalog, error) {
	data, err := embedded.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded catalog: %w", err)
	}
	return Parse(data)
}

// Load returns the catalog at path, or the bundled catalog when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

func validateEntry(etf domain.ETF) error {
	if etf.Ticker == "" {
		return ErrEmptyTicker
	}
	if len(etf.Stages) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyStages, etf.Ticker)
	}

	seen := make(map[domain.Stage]bool, len(etf.Stages))
	for _, s := range etf.Stages {
		if !s.IsValid() {
			return fmt.Errorf("%s: %w: %q", etf.Ticker, domain.ErrUnknownStage, s)
		}
		if seen[s] {
			return fmt.Errorf("%s: stage %q listed twice", etf.Ticker, s)
		}
		seen[s] = true
	}
	if !etf.ChinaExposure.IsValid() {
		return fmt.Errorf("%s: %w: %q", etf.Ticker, domain.ErrUnknownChinaExposure, etf.ChinaExposure)
	}
	if !etf.RiskLevel.IsValid() {
		return fmt.Errorf("%s: %w: %q", etf.Ticker, domain.ErrUnknownRiskLevel, etf.RiskLevel)
	}
	return nil
}

// All returns every ETF in catalog order. The slice is a copy.
func (c *Catalog) All() []domain.ETF {
	out := make([]domain.ETF, len(c.etfs))
	copy(out, c.etfs)
	return out
}

// Len returns the number of ETFs
func (c *Catalog) Len() int {
	return len(c.etfs)
}

// Get looks up an ETF by ticker (case-insensitive)
func (c *Catalog) Get(ticker string) (domain.ETF, error) {
	idx, ok := c.byTicker[strings.ToUpper(strings.TrimSpace(ticker))]
	if !ok {
		return domain.ETF{}, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}
	return c.etfs[idx], nil
}

// Contains reports whether the ticker exists
func (c *Catalog) Contains(ticker string) bool {
	_, err := c.Get(ticker)
	return err == nil
}
