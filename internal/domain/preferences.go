package domain

import (
	"fmt"
	"strings"
)

// ChinaComfort expresses how the user feels about China exposure.
//
// Only prefer_low and prefer_high ever award the China component. The
// "medium" and "low" values are the literal comfort levels assigned by some
// scenario presets; like neutral they never award anything.
type ChinaComfort string

const (
	ComfortNeutral    ChinaComfort = "neutral"
	ComfortPreferLow  ChinaComfort = "prefer_low"
	ComfortPreferHigh ChinaComfort = "prefer_high"
	ComfortMedium     ChinaComfort = "medium"
	ComfortLow        ChinaComfort = "low"
)

// IsValid reports whether c is an accepted comfort value
func (c ChinaComfort) IsValid() bool {
	switch c {
	case ComfortNeutral, ComfortPreferLow, ComfortPreferHigh, ComfortMedium, ComfortLow:
		return true
	}
	return false
}

// Matches reports whether the comfort level rewards the given exposure tier
func (c ChinaComfort) Matches(exposure ChinaExposure) bool {
	switch c {
	case ComfortPreferLow:
		return exposure == ChinaLow
	case ComfortPreferHigh:
		return exposure == ChinaHigh
	default:
		return false
	}
}

// ParseChinaComfort converts a string into a ChinaComfort
func ParseChinaComfort(raw string) (ChinaComfort, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", "_")
	c := ChinaComfort(key)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownChinaComfort, raw)
	}
	return c, nil
}

// Preferences is the user's preference vector.
// It is treated as a value: edits and scenario presets produce a new Preferences
// rather than mutating a shared one.
type Preferences struct {
	SelectedStages []Stage      `json:"selected_stages" msgpack:"selected_stages"`
	EVPreference   bool         `json:"ev_preference" msgpack:"ev_preference"`
	ChinaComfort   ChinaComfort `json:"china_comfort" msgpack:"china_comfort"`
	RiskTolerance  RiskLevel    `json:"risk_tolerance" msgpack:"risk_tolerance"`
}

// DefaultPreferences returns the initial preference vector:
// no stage filter, no EV preference, neutral China comfort, medium risk.
func DefaultPreferences() Preferences {
	return Preferences{
		SelectedStages: []Stage{},
		EVPreference:   false,
		ChinaComfort:   ComfortNeutral,
		RiskTolerance:  RiskMedium,
	}
}

// Clone returns a deep copy
func (p Preferences) Clone() Preferences {
	out := p
	out.SelectedStages = make([]Stage, len(p.SelectedStages))
	copy(out.SelectedStages, p.SelectedStages)
	return out
}

// HasStageFilter reports whether any stage is selected
func (p Preferences) HasStageFilter() bool {
	return len(p.SelectedStages) > 0
}

// Validate checks every field holds a known value
func (p Preferences) Validate() error {
	for _, s := range p.SelectedStages {
		if !s.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnknownStage, s)
		}
	}
	if !p.ChinaComfort.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownChinaComfort, p.ChinaComfort)
	}
	if !p.RiskTolerance.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownRiskLevel, p.RiskTolerance)
	}
	return nil
}
