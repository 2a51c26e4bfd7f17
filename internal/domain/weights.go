package domain

import (
	"fmt"
	"math"
	"strings"
)

// Weight bounds for every factor
const (
	MinWeight = 0.0
	MaxWeight = 10.0
)

// WeightKey names one of the six factor weights
type WeightKey string

const (
	WeightUpstream   WeightKey = "upstream"
	WeightMidstream  WeightKey = "midstream"
	WeightDownstream WeightKey = "downstream"
	WeightEVBattery  WeightKey = "ev_battery"
	WeightChina      WeightKey = "china_exposure"
	WeightRisk       WeightKey = "risk_tolerance"
)

// WeightKeys lists the factors in breakdown order
var WeightKeys = []WeightKey{
	WeightUpstream,
	WeightMidstream,
	WeightDownstream,
	WeightEVBattery,
	WeightChina,
	WeightRisk,
}

// Weights holds the six factor weights used by the ETF scorer.
// The sum of all six is the maximum attainable per-ETF score.
type Weights struct {
	Upstream      float64 `json:"upstream" msgpack:"upstream"`
	Midstream     float64 `json:"midstream" msgpack:"midstream"`
	Downstream    float64 `json:"downstream" msgpack:"downstream"`
	EVBattery     float64 `json:"ev_battery" msgpack:"ev_battery"`
	ChinaExposure float64 `json:"china_exposure" msgpack:"china_exposure"`
	RiskTolerance float64 `json:"risk_tolerance" msgpack:"risk_tolerance"`
}

// DefaultWeights returns every factor at 5
func DefaultWeights() Weights {
	return Weights{
		Upstream:      5,
		Midstream:     5,
		Downstream:    5,
		EVBattery:     5,
		ChinaExposure: 5,
		RiskTolerance: 5,
	}
}

// Sum returns the total of all six weights
func (w Weights) Sum() float64 {
	return w.Upstream + w.Midstream + w.Downstream + w.EVBattery + w.ChinaExposure + w.RiskTolerance
}

// Get returns the weight for a key (0 for an unknown key)
func (w Weights) Get(key WeightKey) float64 {
	switch key {
	case WeightUpstream:
		return w.Upstream
	case WeightMidstream:
		return w.Midstream
	case WeightDownstream:
		return w.Downstream
	case WeightEVBattery:
		return w.EVBattery
	case WeightChina:
		return w.ChinaExposure
	case WeightRisk:
		return w.RiskTolerance
	}
	return 0
}

// With returns a copy of w with one weight replaced.
// Values outside [MinWeight, MaxWeight] are rejected.
func (w Weights) With(key WeightKey, value float64) (Weights, error) {
	if math.IsNaN(value) || value < MinWeight || value > MaxWeight {
		return w, fmt.Errorf("%w: %s=%v (allowed %v-%v)", ErrInvalidWeight, key, value, MinWeight, MaxWeight)
	}

	switch key {
	case WeightUpstream:
		w.Upstream = value
	case WeightMidstream:
		w.Midstream = value
	case WeightDownstream:
		w.Downstream = value
	case WeightEVBattery:
		w.EVBattery = value
	case WeightChina:
		w.ChinaExposure = value
	case WeightRisk:
		w.RiskTolerance = value
	default:
		return w, fmt.Errorf("%w: %q", ErrUnknownWeight, key)
	}
	return w, nil
}

// ParseWeightKey accepts the canonical key or a few common aliases ("ev", "china", "risk")
func ParseWeightKey(raw string) (WeightKey, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", "_")
	switch key {
	case "ev":
		return WeightEVBattery, nil
	case "china":
		return WeightChina, nil
	case "risk":
		return WeightRisk, nil
	}
	for _, k := range WeightKeys {
		if string(k) == key {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWeight, raw)
}

// Validate checks that every weight lies in [MinWeight, MaxWeight]
func (w Weights) Validate() error {
	for _, key := range WeightKeys {
		v := w.Get(key)
		if math.IsNaN(v) || v < MinWeight || v > MaxWeight {
			return fmt.Errorf("%w: %s=%v (allowed %v-%v)", ErrInvalidWeight, key, v, MinWeight, MaxWeight)
		}
	}
	return nil
}
