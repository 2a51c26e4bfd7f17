// Package display holds the knowledge-mode presentation table. A mode only
// bounds how many results are shown and which details are exposed; it never
// changes how anything is computed.
package display

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKnowledgeLevel is returned for a level outside low/medium/high
var ErrUnknownKnowledgeLevel = errors.New("unknown knowledge level")

// KnowledgeLevel is the user's self-declared familiarity
type KnowledgeLevel string

const (
	LevelLow    KnowledgeLevel = "low"
	LevelMedium KnowledgeLevel = "medium"
	LevelHigh   KnowledgeLevel = "high"
)

// DefaultLevel is used when none is chosen
const DefaultLevel = LevelMedium

// KnowledgeMode bounds the presentation of engine output
type KnowledgeMode struct {
	Level           KnowledgeLevel `json:"level" msgpack:"level"`
	ShowWeights     bool           `json:"show_weights" msgpack:"show_weights"`
	ShowOverlap     bool           `json:"show_overlap" msgpack:"show_overlap"`
	ShowBreakdowns  bool           `json:"show_breakdowns" msgpack:"show_breakdowns"`
	MaxETFs         int            `json:"max_etfs" msgpack:"max_etfs"`
	MaxTwoBaskets   int            `json:"max_two_baskets" msgpack:"max_two_baskets"`
	MaxThreeBaskets int            `json:"max_three_baskets" msgpack:"max_three_baskets"`
	Layout          string         `json:"layout" msgpack:"layout"`
}

var knowledgeModes = map[KnowledgeLevel]KnowledgeMode{
	LevelLow: {
		Level:           LevelLow,
		MaxETFs:         3,
		MaxTwoBaskets:   1,
		MaxThreeBaskets: 1,
		Layout:          "grid",
	},
	LevelMedium: {
		Level:           LevelMedium,
		ShowWeights:     true,
		ShowOverlap:     true,
		MaxETFs:         5,
		MaxTwoBaskets:   5,
		MaxThreeBaskets: 5,
		Layout:          "grid",
	},
	LevelHigh: {
		Level:           LevelHigh,
		ShowWeights:     true,
		ShowOverlap:     true,
		ShowBreakdowns:  true,
		MaxETFs:         10,
		MaxTwoBaskets:   10,
		MaxThreeBaskets: 10,
		Layout:          "grid",
	},
}

// Levels lists the knowledge levels from least to most detailed
var Levels = []KnowledgeLevel{LevelLow, LevelMedium, LevelHigh}

// ParseLevel converts a string into a KnowledgeLevel. Empty means DefaultLevel.
func ParseLevel(raw string) (KnowledgeLevel, error) {
	key := KnowledgeLevel(strings.ToLower(strings.TrimSpace(raw)))
	if key == "" {
		return DefaultLevel, nil
	}
	if _, ok := knowledgeModes[key]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKnowledgeLevel, raw)
	}
	return key, nil
}

// Lookup returns the mode for a level
func Lookup(level KnowledgeLevel) (KnowledgeMode, error) {
	mode, ok := knowledgeModes[level]
	if !ok {
		return KnowledgeMode{}, fmt.Errorf("%w: %q", ErrUnknownKnowledgeLevel, level)
	}
	return mode, nil
}

// MustLookup is Lookup for levels known to be valid
func MustLookup(level KnowledgeLevel) KnowledgeMode {
	mode, err := Lookup(level)
	if err != nil {
		panic(err)
	}
	return mode
}

// All returns every mode in level order
func All() []KnowledgeMode {
	out := make([]KnowledgeMode, len(Levels))
	for i, l := range Levels {
		out[i] = knowledgeModes[l]
	}
	return out
}
