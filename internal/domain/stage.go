package domain

import (
	"fmt"
	"strings"
)

// Stage is one of the five supply-chain phases an ETF can operate in.
type Stage string

const (
	StageExploration Stage = "exploration"
	StageMining      Stage = "mining"
	StageProcessing  Stage = "processing"
	StageComponents  Stage = "components"
	StageEndProducts Stage = "end_products"
)

// AllStages lists every stage in supply-chain order (upstream first).
var AllStages = []Stage{
	StageExploration,
	StageMining,
	StageProcessing,
	StageComponents,
	StageEndProducts,
}

var stageLabels = map[Stage]string{
	StageExploration: "Exploration",
	StageMining:      "Mining",
	StageProcessing:  "Processing",
	StageComponents:  "Components",
	StageEndProducts: "End Products",
}

// IsValid reports whether s is a known stage
func (s Stage) IsValid() bool {
	_, ok := stageLabels[s]
	return ok
}

// Label returns the human-readable stage name
func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseStage converts a user-supplied string into a Stage.
// Accepts the canonical key ("end_products") as well as the label form ("End Products").
func ParseStage(raw string) (Stage, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")

	s := Stage(key)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, raw)
	}
	return s, nil
}

// ParseStages parses a list of stage strings, dropping duplicates while keeping first-seen order.
func ParseStages(raw []string) ([]Stage, error) {
	stages := make([]Stage, 0, len(raw))
	seen := make(map[Stage]bool, len(raw))
	for _, r := range raw {
		s, err := ParseStage(r)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		stages = append(stages, s)
	}
	return stages, nil
}

// MacroGroup buckets stages into upstream, midstream and downstream.
type MacroGroup string

const (
	GroupUpstream   MacroGroup = "upstream"
	GroupMidstream  MacroGroup = "midstream"
	GroupDownstream MacroGroup = "downstream"
)

// MacroGroups lists the groups in supply-chain order
var MacroGroups = []MacroGroup{GroupUpstream, GroupMidstream, GroupDownstream}

var groupStages = map[MacroGroup][]Stage{
	GroupUpstream:   {StageExploration, StageMining},
	GroupMidstream:  {StageProcessing, StageComponents},
	GroupDownstream: {StageEndProducts},
}

// Stages returns the fixed stage membership of the group
func (g MacroGroup) Stages() []Stage {
	members := groupStages[g]
	out := make([]Stage, len(members))
	copy(out, members)
	return out
}

// Contains reports whether the stage belongs to this group
func (g MacroGroup) Contains(s Stage) bool {
	for _, member := range groupStages[g] {
		if member == s {
			return true
		}
	}
	return false
}

// ContainsAny reports whether at least one of the stages belongs to this group
func (g MacroGroup) ContainsAny(stages []Stage) bool {
	for _, s := range stages {
		if g.Contains(s) {
			return true
		}
	}
	return false
}

// GroupOf classifies a stage into its macro group. Unknown stages return "".
func GroupOf(s Stage) MacroGroup {
	for _, g := range MacroGroups {
		if g.Contains(s) {
			return g
		}
	}
	return ""
}

// DistinctStages counts unique stages across any number of stage lists
func DistinctStages(lists ...[]Stage) int {
	seen := make(map[Stage]struct{})
	for _, list := range lists {
		for _, s := range list {
			seen[s] = struct{}{}
		}
	}
	return len(seen)
}
