package display

import (
	"sync"

	"github.com/rs/zerolog"
)

// ModeManager holds the service-wide default knowledge level.
// New sessions and stateless advice requests without an explicit level use it.
type ModeManager struct {
	current KnowledgeLevel
	log     zerolog.Logger
	mu      sync.RWMutex
}

// NewModeManager creates a mode manager starting at the given level
func NewModeManager(initial KnowledgeLevel, log zerolog.Logger) *ModeManager {
	if _, err := Lookup(initial); err != nil {
		initial = DefaultLevel
	}
	return &ModeManager{
		current: initial,
		log:     log.With().Str("component", "mode_manager").Logger(),
	}
}

// SetLevel switches the default level
func (m *ModeManager) SetLevel(level KnowledgeLevel) error {
	if _, err := Lookup(level); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if level == m.current {
		m.log.Debug().Str("level", string(level)).Msg("Already at requested knowledge level")
		return nil
	}

	m.log.Info().
		Str("from", string(m.current)).
		Str("to", string(level)).
		Msg("Switching default knowledge level")
	m.current = level
	return nil
}

// SetLevelString parses and applies a level
func (m *ModeManager) SetLevelString(raw string) error {
	level, err := ParseLevel(raw)
	if err != nil {
		return err
	}
	return m.SetLevel(level)
}

// GetLevel returns the current default level
func (m *ModeManager) GetLevel() KnowledgeLevel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// GetMode returns the mode for the current default level
func (m *ModeManager) GetMode() KnowledgeMode {
	return MustLookup(m.GetLevel())
}

// Resolve returns the mode for level, falling back to the current default when level is empty
func (m *ModeManager) Resolve(level KnowledgeLevel) (KnowledgeMode, error) {
	if level == "" {
		return m.GetMode(), nil
	}
	parsed, err := ParseLevel(string(level))
	if err != nil {
		return KnowledgeMode{}, err
	}
	return Lookup(parsed)
}
