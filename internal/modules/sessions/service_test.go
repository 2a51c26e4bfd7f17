package sessions

import (
	"sync"
	"testing"
	"time"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/aristath/etfadvisor/internal/events"
	"github.com/aristath/etfadvisor/internal/modules/advisor"
	"github.com/aristath/etfadvisor/internal/modules/baskets"
	"github.com/aristath/etfadvisor/internal/modules/catalog"
	"github.com/aristath/etfadvisor/internal/modules/display"
	"github.com/aristath/etfadvisor/internal/modules/scenarios"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderStub struct {
	mu     sync.Mutex
	active int
	events map[string]int
}

func (r *recorderStub) SetActiveSessions(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = n
}

func (r *recorderStub) RecordSessionEvent(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = make(map[string]int)
	}
	r.events[event]++
}

type fixture struct {
	service  *Service
	bus      *events.Bus
	recorder *recorderStub
	received []*events.Event
	clock    time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()

	cat, err := catalog.Default()
	require.NoError(t, err)
	cache, err := advisor.NewCache(32)
	require.NoError(t, err)

	log := zerolog.Nop()
	adv := advisor.NewService(cat, display.NewModeManager(display.LevelMedium, log), baskets.PolicyUnfiltered, cache, nil, log)

	f := &fixture{
		bus:      events.NewBus(log),
		recorder: &recorderStub{},
		clock:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewService(NewStore(), adv, f.bus, f.recorder, time.Hour, log)
	f.service.now = func() time.Time { return f.clock }
	f.bus.Subscribe(func(e *events.Event) { f.received = append(f.received, e) })
	return f
}

func (f *fixture) types() []events.EventType {
	out := make([]events.EventType, len(f.received))
	for i, e := range f.received {
		out[i] = e.Type
	}
	return out
}

func TestCreate_Defaults(t *testing.T) {
	f := setup(t)

	s, err := f.service.Create(CreateOptions{})
	require.NoError(t, err)

	assert.Len(t, s.ID, 36)
	assert.Equal(t, display.LevelMedium, s.Level)
	assert.Equal(t, baskets.PolicyUnfiltered, s.Policy)
	assert.Equal(t, domain.DefaultPortfolioValue, s.PortfolioValue)
	assert.Equal(t, domain.DefaultWeights(), s.Weights)
	require.NotNil(t, s.Advice)
	assert.Equal(t, []string{"LIT", "BATT", "ACDC", "DRIV", "IDRV"}, s.Advice.Tickers())

	assert.Equal(t, []events.EventType{events.SessionCreated}, f.types())
	assert.Equal(t, s.ID, f.received[0].SessionID())
	assert.Equal(t, 1, f.recorder.active)
	assert.Equal(t, 1, f.recorder.events[EventCreated])
}

func TestCreate_Options(t *testing.T) {
	f := setup(t)

	s, err := f.service.Create(CreateOptions{Level: display.LevelHigh, Policy: baskets.PolicySoftCap, PortfolioValue: 50000})
	require.NoError(t, err)
	assert.Equal(t, display.LevelHigh, s.Level)
	assert.Equal(t, baskets.PolicySoftCap, s.Policy)
	assert.Len(t, s.Advice.ETFs, 10)

	_, err = f.service.Create(CreateOptions{Level: "expert"})
	assert.ErrorIs(t, err, display.ErrUnknownKnowledgeLevel)

	_, err = f.service.Create(CreateOptions{PortfolioValue: -5})
	assert.ErrorIs(t, err, ErrInvalidPortfolioValue)
	assert.Equal(t, 1, f.service.Count())
}

func TestGet_UnknownSession(t *testing.T) {
	f := setup(t)

	_, err := f.service.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.service.SetWeights("missing", domain.DefaultWeights())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSetAllocation(t *testing.T) {
	f := setup(t)
	s, err := f.service.Create(CreateOptions{})
	require.NoError(t, err)

	s, err = f.service.SetAllocation(s.ID, "LIT", 150)
	require.NoError(t, err)
	assert.Equal(t, 100.0, s.Allocations.Get("LIT"))
	assert.Equal(t, 100.0, s.Advice.Totals.Total)
	assert.Equal(t, 100000.0, s.Advice.DollarAmounts["LIT"])

	_, err = f.service.SetAllocation(s.ID, "NOPE", 10)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	assert.Equal(t, []events.EventType{
		events.SessionCreated,
		events.AllocationChanged,
		events.AdviceUpdated,
	}, f.types())

	data, ok := f.received[2].Data.(*events.AdviceUpdatedData)
	require.True(t, ok)
	assert.Equal(t, s.Advice.Tickers(), data.Tickers)
	assert.Equal(t, 10.0, data.TopScore)
}

func TestSetAllocation_StoresCatalogTicker(t *testing.T) {
	f := setup(t)
	s, err := f.service.Create(CreateOptions{})
	require.NoError(t, err)

	s, err = f.service.SetAllocation(s.ID, "lit", 60)
	require.NoError(t, err)
	assert.Equal(t, domain.AllocationMap{"LIT": 60}, s.Allocations)
	assert.Equal(t, 60.0, s.Advice.Totals.Total)
	assert.Equal(t, 40.0, s.Advice.Totals.Remaining)
	assert.Equal(t, 60000.0, s.Advice.DollarAmounts["LIT"])

	data, ok := f.received[1].Data.(*events.AllocationChangedData)
	require.True(t, ok)
	assert.Equal(t, "LIT", data.Ticker)
	assert.Equal(t, 60.0, data.Pct)
}

func TestSetPreferences(t *testing.T) {
	f := setup(t)
	s, err := f.service.Create(CreateOptions{})
	require.NoError(t, err)

	s, err = f.service.SetPreferences(s.ID, domain.Preferences{
		SelectedStages: []domain.Stage{domain.StageMining},
		ChinaComfort:   domain.ComfortPreferLow,
		RiskTolerance:  domain.RiskLow,
	})
	require.NoError(t, err)

	for _, etf := range s.Advice.ETFs {
		assert.True(t, etf.HasStage(domain.StageMining), etf.Ticker)
	}
	assert.Contains(t, f.types(), events.PreferencesChanged)

	_, err = f.service.SetPreferences(s.ID, domain.Preferences{
		SelectedStages: []domain.Stage{"orbit"},
		ChinaComfort:   domain.ComfortNeutral,
		RiskTolerance:  domain.RiskLow,
	})
	assert.ErrorIs(t, err, domain.ErrUnknownStage)
}

func TestSetWeights(t *testing.T) {
	f := setup(t)
	s, err := f.service.Create(CreateOptions{})
	require.NoError(t, err)

	w := domain.DefaultWeights()
	w.Upstream = 11
	_, err = f.service.SetWeights(s.ID, w)
	assert.ErrorIs(t, err, domain.ErrInvalidWeight)

	w.Upstream = 0
	s, err = f.service.SetWeights(s.ID, w)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Weights.Upstream)

	last := f.received[len(f.received)-2]
	data, ok := last.Data.(*events.WeightsChangedData)
	require.True(t, ok)
	assert.Equal(t, 0.0, data.Weights["upstream"])
	assert.Equal(t, 5.0, data.Weights["risk_tolerance"])
}

func TestSetKnowledge(t *testing.T) {
	f := setup(t)
	s, err := f.service.Create(CreateOptions{})
	require.NoError(t, err)

	s, err = f.service.SetKnowledge(s.ID, "low")
	require.NoError(t, err)
	assert.Equal(t, display.LevelLow, s.Level)
	assert.Len(t, s.Advice.ETFs, 3)
	assert.LessOrEqual(t, len(s.Advice.TwoBaskets), 1)

	_, err = f.service.SetKnowledge(s.ID, "expert")
	assert.ErrorIs(t, err, display.ErrUnknownKnowledgeLevel)
}

func TestSetPortfolioValue(t *testing.T) {
	f := setup(t)
	s, err := f.service.Create(CreateOptions{})
	require.NoError(t, err)

	_, err = f.service.SetAllocation(s.ID, "BATT", 25)
	require.NoError(t, err)
	s, err = f.service.SetPortfolioValue(s.ID, 20000)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, s.Advice.DollarAmounts["BATT"])

	for _, v := range []float64{0, -1} {
		_, err = f.service.SetPortfolioValue(s.ID, v)
		assert.ErrorIs(t, err, ErrInvalidPortfolioValue)
	}
}

func TestApplyScenario_ReplacesPreferencesAndResetsShownAllocations(t *testing.T) {
	f := setup(t)
	s, err := f.service.Create(CreateOptions{})
	require.NoError(t, err)
	shown := s.Advice.Tickers()

	_, err = f.service.SetAllocation(s.ID, "LIT", 40)
	require.NoError(t, err)
	_, err = f.service.SetAllocation(s.ID, "URA", 10)
	require.NoError(t, err)

	s, err = f.service.ApplyScenario(s.ID, "growth")
	require.NoError(t, err)

	growth, err := scenarios.Preset("growth")
	require.NoError(t, err)
	assert.Equal(t, growth, s.Preferences)

	expected := domain.AllocationMap{}
	for _, ticker := range shown {
		expected[ticker] = 0
	}
	assert.Equal(t, expected, s.Allocations)

	var applied *events.ScenarioAppliedData
	for _, e := range f.received {
		if d, ok := e.Data.(*events.ScenarioAppliedData); ok {
			applied = d
		}
	}
	require.NotNil(t, applied)
	assert.Equal(t, "growth", applied.Scenario)
	assert.Equal(t, shown, applied.Reset)

	_, err = f.service.ApplyScenario(s.ID, "yolo")
	assert.ErrorIs(t, err, scenarios.ErrUnknownScenario)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	s, err := f.service.Create(CreateOptions{})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(s.ID))
	assert.ErrorIs(t, f.service.Delete(s.ID), ErrSessionNotFound)
	assert.Equal(t, 0, f.recorder.active)
	assert.Equal(t, events.SessionDeleted, f.received[len(f.received)-1].Type)
}

func TestExpireIdle(t *testing.T) {
	f := setup(t)
	start := f.clock

	a, err := f.service.Create(CreateOptions{})
	require.NoError(t, err)
	b, err := f.service.Create(CreateOptions{})
	require.NoError(t, err)

	f.clock = start.Add(40 * time.Minute)
	_, err = f.service.Get(a.ID)
	require.NoError(t, err)

	f.clock = start.Add(61 * time.Minute)
	assert.Equal(t, 1, f.service.ExpireIdle())

	_, err = f.service.Get(b.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.service.Get(a.ID)
	assert.NoError(t, err)

	last := f.received[len(f.received)-1]
	assert.Equal(t, events.SessionExpired, last.Type)
	assert.Equal(t, b.ID, last.SessionID())
	assert.Equal(t, 61.0, last.Data.(*events.SessionExpiredData).IdleMinutes)
	assert.Equal(t, 1, f.recorder.events[EventExpired])
}

func TestSweepJob(t *testing.T) {
	f := setup(t)
	_, err := f.service.Create(CreateOptions{})
	require.NoError(t, err)

	job := NewSweepJob(f.service, zerolog.Nop())
	assert.Equal(t, "session_sweep", job.Name())

	f.clock = f.clock.Add(2 * time.Hour)
	require.NoError(t, job.Run())
	assert.Equal(t, 0, f.service.Count())
}

func TestStore_ReturnsCopies(t *testing.T) {
	st := NewStore()
	created := st.Create(&Session{Allocations: domain.AllocationMap{"LIT": 5}})

	created.Allocations["LIT"] = 99
	got, err := st.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Allocations.Get("LIT"))

	assert.Equal(t, []string{created.ID}, st.IDs())
}
