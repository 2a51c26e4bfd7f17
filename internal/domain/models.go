// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"strings"
)

// RiskLevel is a three-tier risk classification.
// Used both for an ETF's risk tier and for the user's risk tolerance.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskLevels lists all tiers from lowest to highest
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// IsValid reports whether r is a known tier
func (r RiskLevel) IsValid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// ParseRiskLevel converts a string into a RiskLevel
func ParseRiskLevel(raw string) (RiskLevel, error) {
	r := RiskLevel(strings.ToLower(strings.TrimSpace(raw)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRiskLevel, raw)
	}
	return r, nil
}

// ChinaExposure is the China-exposure tier of an ETF
type ChinaExposure string

const (
	ChinaLow    ChinaExposure = "low"
	ChinaMedium ChinaExposure = "medium"
	ChinaHigh   ChinaExposure = "high"
)

// IsValid reports whether c is a known tier
func (c ChinaExposure) IsValid() bool {
	return c == ChinaLow || c == ChinaMedium || c == ChinaHigh
}

// ParseChinaExposure converts a string into a ChinaExposure
func ParseChinaExposure(raw string) (ChinaExposure, error) {
	c := ChinaExposure(strings.ToLower(strings.TrimSpace(raw)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownChinaExposure, raw)
	}
	return c, nil
}

// ETF is an immutable catalog record.
// Ticker is the unique identifier; Stages is never empty for a validated record.
type ETF struct {
	Ticker         string        `json:"ticker" yaml:"ticker" msgpack:"ticker"`
	Name           string        `json:"name" yaml:"name" msgpack:"name"`
	Stages         []Stage       `json:"stages" yaml:"stages" msgpack:"stages"`
	EVBatteryTheme bool          `json:"ev_battery_theme" yaml:"ev_battery_theme" msgpack:"ev_battery_theme"`
	ChinaExposure  ChinaExposure `json:"china_exposure" yaml:"china_exposure" msgpack:"china_exposure"`
	RiskLevel      RiskLevel     `json:"risk_level" yaml:"risk_level" msgpack:"risk_level"`
}

// HasStage reports whether the ETF operates in the given stage
func (e ETF) HasStage(s Stage) bool {
	for _, own := range e.Stages {
		if own == s {
			return true
		}
	}
	return false
}

// HasAnyStage reports whether the ETF operates in at least one of the stages
func (e ETF) HasAnyStage(stages []Stage) bool {
	for _, s := range stages {
		if e.HasStage(s) {
			return true
		}
	}
	return false
}

// InGroup reports whether the ETF operates in the macro group
func (e ETF) InGroup(g MacroGroup) bool {
	return g.ContainsAny(e.Stages)
}

// SharedStages counts the stages of e that other also operates in
func (e ETF) SharedStages(other ETF) int {
	count := 0
	for _, s := range e.Stages {
		if other.HasStage(s) {
			count++
		}
	}
	return count
}

// StageCount returns the number of distinct stages the ETF covers
func (e ETF) StageCount() int {
	return DistinctStages(e.Stages)
}

// Tickers extracts tickers in order
func Tickers(etfs []ETF) []string {
	out := make([]string, len(etfs))
	for i, e := range etfs {
		out[i] = e.Ticker
	}
	return out
}
