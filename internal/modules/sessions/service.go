package sessions

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/aristath/etfadvisor/internal/events"
	"github.com/aristath/etfadvisor/internal/modules/advisor"
	"github.com/aristath/etfadvisor/internal/modules/baskets"
	"github.com/aristath/etfadvisor/internal/modules/catalog"
	"github.com/aristath/etfadvisor/internal/modules/display"
	"github.com/aristath/etfadvisor/internal/modules/scenarios"
	"github.com/rs/zerolog"
)

const moduleName = "sessions"

// Session event labels reported to the Recorder
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
	EventExpired = "expired"
)

// DefaultTTL is the idle time after which a session expires
const DefaultTTL = 60 * time.Minute

// Advisor runs the recommendation pipeline
type Advisor interface {
	Normalize(req advisor.Request) (advisor.Request, display.KnowledgeMode, error)
	Advise(req advisor.Request, origin string) (*advisor.Advice, error)
	Catalog() *catalog.Catalog
}

// Recorder receives session instrumentation
type Recorder interface {
	SetActiveSessions(n int)
	RecordSessionEvent(event string)
}

// CreateOptions seeds a new session. Zero values take defaults.
type CreateOptions struct {
	Level          display.KnowledgeLevel `json:"knowledge_level"`
	Policy         baskets.Policy         `json:"overlap_policy"`
	PortfolioValue float64                `json:"portfolio_value"`
}

// Service manages sessions and keeps their advice current
type Service struct {
	store    *Store
	advisor  Advisor
	bus      *events.Bus
	recorder Recorder
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a session service. bus and recorder may be nil.
func NewService(store *Store, adv Advisor, bus *events.Bus, recorder Recorder, ttl time.Duration, log zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		store:    store,
		advisor:  adv,
		bus:      bus,
		recorder: recorder,
		ttl:      ttl,
		now:      time.Now,
		log:      log.With().Str("module", moduleName).Logger(),
	}
}

// TTL returns the idle timeout
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Count returns the number of live sessions
func (s *Service) Count() int {
	return s.store.Len()
}

// Create starts a session with default preferences and weights
func (s *Service) Create(opts CreateOptions) (*Session, error) {
	req := advisor.DefaultRequest()
	req.Level = opts.Level
	req.Policy = opts.Policy
	if opts.PortfolioValue != 0 {
		if err := validatePortfolioValue(opts.PortfolioValue); err != nil {
			return nil, err
		}
		req.PortfolioValue = opts.PortfolioValue
	}

	req, _, err := s.advisor.Normalize(req)
	if err != nil {
		return nil, err
	}
	advice, err := s.advisor.Advise(req, advisor.OriginSession)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := s.store.Create(&Session{
		Preferences:    req.Preferences,
		Weights:        req.Weights,
		Allocations:    req.Allocations,
		Level:          req.Level,
		Policy:         req.Policy,
		PortfolioValue: req.PortfolioValue,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastSeen:       now,
		Advice:         advice,
	})

	s.log.Info().
		Str("session_id", session.ID).
		Str("level", string(session.Level)).
		Msg("Session created")

	s.record(EventCreated)
	s.emit(events.SessionCreated, &events.SessionCreatedData{
		SessionData:    events.SessionData{SessionID: session.ID},
		KnowledgeLevel: string(session.Level),
	})
	return session, nil
}

// Get returns a session and marks it as seen
func (s *Service) Get(id string) (*Session, error) {
	if err := s.store.Touch(id, s.now()); err != nil {
		return nil, err
	}
	return s.store.Get(id)
}

// Advice returns the current advice of a session
func (s *Service) Advice(id string) (*advisor.Advice, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return session.Advice, nil
}

// Delete ends a session
func (s *Service) Delete(id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}

	s.log.Info().Str("session_id", id).Msg("Session deleted")
	s.record(EventDeleted)
	s.emit(events.SessionDeleted, &events.SessionDeletedData{
		SessionData: events.SessionData{SessionID: id},
	})
	return nil
}

// SetPreferences replaces the whole preference vector
func (s *Service) SetPreferences(id string, prefs domain.Preferences) (*Session, error) {
	if prefs.SelectedStages == nil {
		prefs.SelectedStages = []domain.Stage{}
	}
	if err := prefs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid preferences: %w", err)
	}

	session, err := s.mutate(id, func(sess *Session) error {
		sess.Preferences = prefs.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(events.PreferencesChanged, preferencesChanged(id, prefs))
	s.adviceUpdated(session)
	return session, nil
}

// SetWeights replaces the six factor weights
func (s *Service) SetWeights(id string, weights domain.Weights) (*Session, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}

	session, err := s.mutate(id, func(sess *Session) error {
		sess.Weights = weights
		return nil
	})
	if err != nil {
		return nil, err
	}

	w := make(map[string]float64, len(domain.WeightKeys))
	for _, k := range domain.WeightKeys {
		w[string(k)] = weights.Get(k)
	}
	s.emit(events.WeightsChanged, &events.WeightsChangedData{
		SessionData: events.SessionData{SessionID: id},
		Weights:     w,
	})
	s.adviceUpdated(session)
	return session, nil
}

// SetAllocation sets one ticker's allocation, clamped to [0,100]
func (s *Service) SetAllocation(id, ticker string, pct float64) (*Session, error) {
	etf, err := s.advisor.Catalog().Get(ticker)
	if err != nil {
		return nil, err
	}
	ticker = etf.Ticker

	session, err := s.mutate(id, func(sess *Session) error {
		sess.Allocations = sess.Allocations.With(ticker, pct)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(events.AllocationChanged, &events.AllocationChangedData{
		SessionData: events.SessionData{SessionID: id},
		Ticker:      ticker,
		Pct:         session.Allocations.Get(ticker),
	})
	s.adviceUpdated(session)
	return session, nil
}

// SetKnowledge switches the knowledge level
func (s *Service) SetKnowledge(id, raw string) (*Session, error) {
	level, err := display.ParseLevel(raw)
	if err != nil {
		return nil, err
	}

	session, err := s.mutate(id, func(sess *Session) error {
		sess.Level = level
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(events.KnowledgeLevelChanged, &events.KnowledgeLevelChangedData{
		SessionData: events.SessionData{SessionID: id},
		Level:       string(level),
	})
	s.adviceUpdated(session)
	return session, nil
}

// SetPortfolioValue changes the notional value used for dollar amounts
func (s *Service) SetPortfolioValue(id string, value float64) (*Session, error) {
	if err := validatePortfolioValue(value); err != nil {
		return nil, err
	}

	session, err := s.mutate(id, func(sess *Session) error {
		sess.PortfolioValue = value
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(events.PortfolioValueChanged, &events.PortfolioValueChangedData{
		SessionData: events.SessionData{SessionID: id},
		Value:       value,
	})
	s.adviceUpdated(session)
	return session, nil
}

// ApplyScenario replaces the preferences with a preset and resets the
// allocation map to zero for the ETFs currently shown to the session.
func (s *Service) ApplyScenario(id, name string) (*Session, error) {
	n, err := scenarios.ParseName(name)
	if err != nil {
		return nil, err
	}

	var reset []string
	session, err := s.mutate(id, func(sess *Session) error {
		var candidates []string
		if sess.Advice != nil {
			candidates = sess.Advice.Tickers()
		}
		prefs, alloc, err := scenarios.Apply(string(n), candidates)
		if err != nil {
			return err
		}
		sess.Preferences = prefs
		sess.Allocations = alloc
		reset = candidates
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("session_id", id).
		Str("scenario", string(n)).
		Int("reset", len(reset)).
		Msg("Scenario applied")

	s.emit(events.ScenarioApplied, &events.ScenarioAppliedData{
		SessionData: events.SessionData{SessionID: id},
		Scenario:    string(n),
		Reset:       reset,
	})
	s.emit(events.PreferencesChanged, preferencesChanged(id, session.Preferences))
	s.adviceUpdated(session)
	return session, nil
}

// ExpireIdle removes sessions idle for longer than the TTL and returns how many were removed
func (s *Service) ExpireIdle() int {
	now := s.now()
	removed := s.store.RemoveIdle(now, s.ttl)

	for _, sess := range removed {
		idle := sess.IdleFor(now)
		s.log.Info().
			Str("session_id", sess.ID).
			Dur("idle", idle).
			Msg("Session expired")

		s.record(EventExpired)
		s.emit(events.SessionExpired, &events.SessionExpiredData{
			SessionData: events.SessionData{SessionID: sess.ID},
			IdleMinutes: math.Round(idle.Minutes()*10) / 10,
		})
	}
	if len(removed) == 0 && s.recorder != nil {
		s.recorder.SetActiveSessions(s.store.Len())
	}
	return len(removed)
}

// mutate applies fn and recomputes the session advice in the same update
func (s *Service) mutate(id string, fn func(*Session) error) (*Session, error) {
	session, err := s.store.Update(id, func(sess *Session) error {
		if err := fn(sess); err != nil {
			return err
		}

		req, _, err := s.advisor.Normalize(sess.Request())
		if err != nil {
			return err
		}
		advice, err := s.advisor.Advise(req, advisor.OriginSession)
		if err != nil {
			return err
		}

		now := s.now()
		sess.Level = req.Level
		sess.Policy = req.Policy
		sess.PortfolioValue = req.PortfolioValue
		sess.Advice = advice
		sess.UpdatedAt = now
		sess.LastSeen = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(EventUpdated)
	return session, nil
}

func (s *Service) adviceUpdated(session *Session) {
	data := &events.AdviceUpdatedData{
		SessionData: events.SessionData{SessionID: session.ID},
		Advice:      session.Advice,
	}
	if a := session.Advice; a != nil {
		data.Tickers = a.Tickers()
		data.TwoBaskets = len(a.TwoBaskets)
		data.ThreeBaskets = len(a.ThreeBaskets)
		if len(a.ETFs) > 0 {
			data.TopScore = a.ETFs[0].Score()
		}
	}
	s.emit(events.AdviceUpdated, data)
}

func (s *Service) emit(eventType events.EventType, data events.EventData) {
	if s.bus == nil {
		return
	}
	s.bus.Emit(eventType, moduleName, data)
}

func (s *Service) record(event string) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordSessionEvent(event)
	s.recorder.SetActiveSessions(s.store.Len())
}

func preferencesChanged(id string, prefs domain.Preferences) *events.PreferencesChangedData {
	stages := make([]string, len(prefs.SelectedStages))
	for i, st := range prefs.SelectedStages {
		stages[i] = string(st)
	}
	return &events.PreferencesChangedData{
		SessionData:    events.SessionData{SessionID: id},
		SelectedStages: stages,
		EVPreference:   prefs.EVPreference,
		ChinaComfort:   string(prefs.ChinaComfort),
		RiskTolerance:  string(prefs.RiskTolerance),
	}
}

func validatePortfolioValue(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPortfolioValue, value)
	}
	return nil
}
