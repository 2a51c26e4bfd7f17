package events

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
	// Session returns the session the event concerns
	Session() string
}

// SessionData identifies the session an event concerns
type SessionData struct {
	SessionID string `json:"session_id"`
}

// Session returns the session id
func (d SessionData) Session() string {
	return d.SessionID
}

// SessionCreatedData contains data for SessionCreated events
type SessionCreatedData struct {
	SessionData
	KnowledgeLevel string `json:"knowledge_level"`
}

// EventType returns the event type for SessionCreatedData
func (d *SessionCreatedData) EventType() EventType {
	return SessionCreated
}

// SessionDeletedData contains data for SessionDeleted events
type SessionDeletedData struct {
	SessionData
}

// EventType returns the event type for SessionDeletedData
func (d *SessionDeletedData) EventType() EventType {
	return SessionDeleted
}

// SessionExpiredData contains data for SessionExpired events
type SessionExpiredData struct {
	SessionData
	IdleMinutes float64 `json:"idle_minutes"`
}

// EventType returns the event type for SessionExpiredData
func (d *SessionExpiredData) EventType() EventType {
	return SessionExpired
}

// PreferencesChangedData contains data for PreferencesChanged events
type PreferencesChangedData struct {
	SessionData
	SelectedStages []string `json:"selected_stages"`
	EVPreference   bool     `json:"ev_preference"`
	ChinaComfort   string   `json:"china_comfort"`
	RiskTolerance  string   `json:"risk_tolerance"`
}

// EventType returns the event type for PreferencesChangedData
func (d *PreferencesChangedData) EventType() EventType {
	return PreferencesChanged
}

// WeightsChangedData contains data for WeightsChanged events
type WeightsChangedData struct {
	SessionData
	Weights map[string]float64 `json:"weights"`
}

// EventType returns the event type for WeightsChangedData
func (d *WeightsChangedData) EventType() EventType {
	return WeightsChanged
}

// AllocationChangedData contains data for AllocationChanged events
type AllocationChangedData struct {
	SessionData
	Ticker string  `json:"ticker"`
	Pct    float64 `json:"pct"`
}

// EventType returns the event type for AllocationChangedData
func (d *AllocationChangedData) EventType() EventType {
	return AllocationChanged
}

// KnowledgeLevelChangedData contains data for KnowledgeLevelChanged events
type KnowledgeLevelChangedData struct {
	SessionData
	Level string `json:"level"`
}

// EventType returns the event type for KnowledgeLevelChangedData
func (d *KnowledgeLevelChangedData) EventType() EventType {
	return KnowledgeLevelChanged
}

// PortfolioValueChangedData contains data for PortfolioValueChanged events
type PortfolioValueChangedData struct {
	SessionData
	Value float64 `json:"value"`
}

// EventType returns the event type for PortfolioValueChangedData
func (d *PortfolioValueChangedData) EventType() EventType {
	return PortfolioValueChanged
}

// ScenarioAppliedData contains data for ScenarioApplied events
type ScenarioAppliedData struct {
	SessionData
	Scenario string   `json:"scenario"`
	Reset    []string `json:"reset_tickers"`
}

// EventType returns the event type for ScenarioAppliedData
func (d *ScenarioAppliedData) EventType() EventType {
	return ScenarioApplied
}

// AdviceUpdatedData contains data for AdviceUpdated events
type AdviceUpdatedData struct {
	SessionData
	Tickers      []string `json:"tickers"`
	TopScore     float64  `json:"top_score"`
	TwoBaskets   int      `json:"two_baskets"`
	ThreeBaskets int      `json:"three_baskets"`
	Advice       any      `json:"advice,omitempty"`
}

// EventType returns the event type for AdviceUpdatedData
func (d *AdviceUpdatedData) EventType() EventType {
	return AdviceUpdated
}
