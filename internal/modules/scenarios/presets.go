// Package scenarios provides named preference presets.
//
// Applying a scenario is two separate operations composed by the caller:
// Preset replaces the whole preference vector, ResetAllocations zeroes the
// allocation of every candidate.
package scenarios

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aristath/etfadvisor/internal/domain"
)

// ErrUnknownScenario is returned for a name that is not a preset
var ErrUnknownScenario = errors.New("unknown scenario")

// Name identifies a preset
type Name string

const (
	Growth        Name = "growth"
	RiskManaged   Name = "risk_managed"
	Diversified   Name = "diversified"
	BatteryMetals Name = "battery_metals"
	ChinaHedge    Name = "china_hedge"
)

// Scenario describes a preset for listing
type Scenario struct {
	Name        Name               `json:"name"`
	Label       string             `json:"label"`
	Description string             `json:"description"`
	Preferences domain.Preferences `json:"preferences"`
}

var presets = []Scenario{
	{
		Name:        Growth,
		Label:       "Growth",
		Description: "Downstream EV exposure with a high risk appetite",
		Preferences: domain.Preferences{
			SelectedStages: []domain.Stage{domain.StageComponents, domain.StageEndProducts},
			EVPreference:   true,
			ChinaComfort:   domain.ComfortMedium,
			RiskTolerance:  domain.RiskHigh,
		},
	},
	{
		Name:        RiskManaged,
		Label:       "Risk-Managed",
		Description: "Upstream resources with low risk and low China exposure",
		Preferences: domain.Preferences{
			SelectedStages: []domain.Stage{domain.StageExploration, domain.StageMining, domain.StageProcessing},
			EVPreference:   false,
			ChinaComfort:   domain.ComfortLow,
			RiskTolerance:  domain.RiskLow,
		},
	},
	{
		Name:        Diversified,
		Label:       "Diversified",
		Description: "Broad coverage from exploration through components",
		Preferences: domain.Preferences{
			SelectedStages: []domain.Stage{domain.StageExploration, domain.StageMining, domain.StageProcessing, domain.StageComponents},
			EVPreference:   false,
			ChinaComfort:   domain.ComfortMedium,
			RiskTolerance:  domain.RiskMedium,
		},
	},
	{
		Name:        BatteryMetals,
		Label:       "Battery Metals",
		Description: "Mining and processing of battery inputs",
		Preferences: domain.Preferences{
			SelectedStages: []domain.Stage{domain.StageMining, domain.StageProcessing},
			EVPreference:   true,
			ChinaComfort:   domain.ComfortMedium,
			RiskTolerance:  domain.RiskMedium,
		},
	},
	{
		Name:        ChinaHedge,
		Label:       "China Hedge",
		Description: "Upstream and processing with low China dependency",
		Preferences: domain.Preferences{
			SelectedStages: []domain.Stage{domain.StageExploration, domain.StageMining, domain.StageProcessing},
			EVPreference:   false,
			ChinaComfort:   domain.ComfortLow,
			RiskTolerance:  domain.RiskMedium,
		},
	},
}

// ParseName normalises a scenario name. "risk-managed", "riskManaged" and
// "Risk Managed" all resolve to RiskManaged.
func ParseName(raw string) (Name, error) {
	key := normalise(raw)
	for _, s := range presets {
		if normalise(string(s.Name)) == key {
			return s.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScenario, raw)
}

func normalise(raw string) string {
	r := strings.NewReplacer("_", "", "-", "", " ", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(raw)))
}

// Preset returns a fresh copy of the preference vector for the named scenario
func Preset(name string) (domain.Preferences, error) {
	n, err := ParseName(name)
	if err != nil {
		return domain.Preferences{}, err
	}
	for _, s := range presets {
		if s.Name == n {
			return s.Preferences.Clone(), nil
		}
	}
	return domain.Preferences{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
}

// All lists every preset in display order
func All() []Scenario {
	out := make([]Scenario, len(presets))
	for i, s := range presets {
		out[i] = s
		out[i].Preferences = s.Preferences.Clone()
	}
	return out
}

// Names lists preset names in display order
func Names() []Name {
	out := make([]Name, len(presets))
	for i, s := range presets {
		out[i] = s.Name
	}
	return out
}

// ResetAllocations returns a fresh allocation map with every candidate at 0.
// It replaces the previous map outright, so tickers outside the candidate set are dropped.
func ResetAllocations(candidates []string) domain.AllocationMap {
	out := make(domain.AllocationMap, len(candidates))
	for _, t := range candidates {
		out[t] = 0
	}
	return out
}

// Apply composes Preset and ResetAllocations into a single atomic replacement
func Apply(name string, candidates []string) (domain.Preferences, domain.AllocationMap, error) {
	prefs, err := Preset(name)
	if err != nil {
		return domain.Preferences{}, nil, err
	}
	return prefs, ResetAllocations(candidates), nil
}
