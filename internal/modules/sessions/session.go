// Package sessions keeps per-user advisor state in memory.
//
// A session holds one preference vector, weights, allocations, knowledge
// level and portfolio value. Every mutation recomputes the advice for the
// session and publishes the change on the event bus. Sessions are never
// persisted and are dropped after a period of inactivity.
package sessions

import (
	"errors"
	"time"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/aristath/etfadvisor/internal/modules/advisor"
	"github.com/aristath/etfadvisor/internal/modules/baskets"
	"github.com/aristath/etfadvisor/internal/modules/display"
)

var (
	// ErrSessionNotFound is returned for an unknown or expired session id
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidPortfolioValue is returned for a non-positive portfolio value
	ErrInvalidPortfolioValue = errors.New("portfolio value must be positive")
)

// Session is the state of one advisor user
type Session struct {
	ID             string                 `json:"id"`
	Preferences    domain.Preferences     `json:"preferences"`
	Weights        domain.Weights         `json:"weights"`
	Allocations    domain.AllocationMap   `json:"allocations"`
	Level          display.KnowledgeLevel `json:"knowledge_level"`
	Policy         baskets.Policy         `json:"overlap_policy"`
	PortfolioValue float64                `json:"portfolio_value"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	LastSeen       time.Time              `json:"last_seen"`
	Advice         *advisor.Advice        `json:"advice,omitempty"`
}

// Request builds the advisor request for the session state
func (s *Session) Request() advisor.Request {
	return advisor.Request{
		Preferences:    s.Preferences.Clone(),
		Weights:        s.Weights,
		Allocations:    s.Allocations.Clone(),
		Level:          s.Level,
		Policy:         s.Policy,
		PortfolioValue: s.PortfolioValue,
	}
}

// Clone returns a copy whose maps and slices are not shared.
// The advice is shared: cached advice is read-only.
func (s *Session) Clone() *Session {
	out := *s
	out.Preferences = s.Preferences.Clone()
	out.Allocations = s.Allocations.Clone()
	return &out
}

// IdleFor returns how long the session has gone without a request
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastSeen)
}
