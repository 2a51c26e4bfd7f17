// Package advisor composes the engine into the full recommendation pipeline:
// filter, score, rank, truncate, enumerate baskets, score baskets, aggregate.
package advisor

import (
	"fmt"
	"strings"
	"time"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/aristath/etfadvisor/internal/modules/allocation"
	"github.com/aristath/etfadvisor/internal/modules/baskets"
	"github.com/aristath/etfadvisor/internal/modules/catalog"
	"github.com/aristath/etfadvisor/internal/modules/display"
	"github.com/aristath/etfadvisor/internal/modules/overlap"
	"github.com/aristath/etfadvisor/internal/modules/scoring"
	"github.com/rs/zerolog"
)

// Origins label where a pipeline run was requested from
const (
	OriginAPI     = "api"
	OriginSession = "session"
	OriginCLI     = "cli"
)

// Recorder receives pipeline instrumentation
type Recorder interface {
	ObserveAdvice(origin string, d time.Duration)
	RecordCacheAccess(hit bool)
}

// Request is the complete input of one pipeline run
type Request struct {
	Preferences    domain.Preferences     `json:"preferences" msgpack:"preferences"`
	Weights        domain.Weights         `json:"weights" msgpack:"weights"`
	Allocations    domain.AllocationMap   `json:"allocations" msgpack:"allocations"`
	Level          display.KnowledgeLevel `json:"knowledge_level" msgpack:"knowledge_level"`
	Policy         baskets.Policy         `json:"overlap_policy" msgpack:"overlap_policy"`
	PortfolioValue float64                `json:"portfolio_value" msgpack:"portfolio_value"`
}

// DefaultRequest returns default preferences and weights with no allocations
func DefaultRequest() Request {
	return Request{
		Preferences:    domain.DefaultPreferences(),
		Weights:        domain.DefaultWeights(),
		Allocations:    domain.AllocationMap{},
		PortfolioValue: domain.DefaultPortfolioValue,
	}
}

// BasketResult is a ranked basket with its presentation text
type BasketResult struct {
	baskets.Basket
	Label       string `json:"label" msgpack:"label"`
	Explanation string `json:"explanation" msgpack:"explanation"`
}

// Advice is the full output of one pipeline run.
// Cached results are shared between callers and must be treated as read-only.
type Advice struct {
	Mode                  display.KnowledgeMode        `json:"mode" msgpack:"mode"`
	Policy                baskets.Policy               `json:"overlap_policy" msgpack:"overlap_policy"`
	CandidateCount        int                          `json:"candidate_count" msgpack:"candidate_count"`
	ETFs                  []scoring.ScoredETF          `json:"etfs" msgpack:"etfs"`
	TwoBaskets            []BasketResult               `json:"two_etf_baskets" msgpack:"two_etf_baskets"`
	ThreeBaskets          []BasketResult               `json:"three_etf_baskets" msgpack:"three_etf_baskets"`
	OverlapMatrix         [][]int                      `json:"overlap_matrix" msgpack:"overlap_matrix"`
	OverlapPairs          map[string]int               `json:"overlap_pairs" msgpack:"overlap_pairs"`
	AllocationSummary     string                       `json:"allocation_summary" msgpack:"allocation_summary"`
	Insights              []string                     `json:"insights" msgpack:"insights"`
	Totals                allocation.Totals            `json:"totals" msgpack:"totals"`
	DollarAmounts         map[string]float64           `json:"dollar_amounts" msgpack:"dollar_amounts"`
	GroupAllocation       []allocation.GroupAllocation `json:"group_allocation" msgpack:"group_allocation"`
	RecommendationSummary string                       `json:"recommendation_summary" msgpack:"recommendation_summary"`
}

// Tickers returns the tickers of the shown ETFs in rank order
func (a *Advice) Tickers() []string {
	return domain.Tickers(scoring.ETFs(a.ETFs))
}

// Compute runs the full pipeline over a catalog slice. It is pure: the same
// inputs always produce the same advice.
func Compute(etfs []domain.ETF, req Request, mode display.KnowledgeMode) *Advice {
	candidates := scoring.Filter(etfs, req.Preferences)
	ranked := scoring.Rank(candidates, req.Preferences, req.Weights, mode.MaxETFs)
	top := scoring.ETFs(ranked)
	scores := scoring.ScoreMap(ranked)
	tickers := domain.Tickers(top)

	return &Advice{
		Mode:                  mode,
		Policy:                req.Policy,
		CandidateCount:        len(candidates),
		ETFs:                  ranked,
		TwoBaskets:            present(baskets.Recommend(top, 2, req.Policy, scores, req.Allocations, mode.MaxTwoBaskets)),
		ThreeBaskets:          present(baskets.Recommend(top, 3, req.Policy, scores, req.Allocations, mode.MaxThreeBaskets)),
		OverlapMatrix:         overlap.Of(top),
		OverlapPairs:          overlap.Pairs(top),
		AllocationSummary:     allocation.Summary(top, req.Allocations),
		Insights:              allocation.Insights(top, req.Allocations),
		Totals:                allocation.CalculateTotals(tickers, req.Allocations),
		DollarAmounts:         allocation.DollarAmounts(tickers, req.Allocations, req.PortfolioValue),
		GroupAllocation:       allocation.CalculateGroupAllocation(top, req.Allocations),
		RecommendationSummary: RecommendationSummary(ranked, req.Preferences),
	}
}

func present(ranked []baskets.Basket) []BasketResult {
	out := make([]BasketResult, len(ranked))
	for i, b := range ranked {
		out[i] = BasketResult{
			Basket:      b,
			Label:       baskets.Label(b.ETFs),
			Explanation: baskets.Explain(b),
		}
	}
	return out
}

// Service runs the pipeline against a catalog with caching and instrumentation
type Service struct {
	catalog       *catalog.Catalog
	modes         *display.ModeManager
	defaultPolicy baskets.Policy
	cache         *Cache
	recorder      Recorder
	log           zerolog.Logger
}

// NewService creates an advisor service. cache and recorder may be nil.
func NewService(
	cat *catalog.Catalog,
	modes *display.ModeManager,
	defaultPolicy baskets.Policy,
	cache *Cache,
	recorder Recorder,
	log zerolog.Logger,
) *Service {
	if defaultPolicy == "" {
		defaultPolicy = baskets.PolicyUnfiltered
	}
	return &Service{
		catalog:       cat,
		modes:         modes,
		defaultPolicy: defaultPolicy,
		cache:         cache,
		recorder:      recorder,
		log:           log.With().Str("module", "advisor").Logger(),
	}
}

// Catalog returns the catalog the service scores against
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// DefaultPolicy returns the overlap policy applied when a request names none
func (s *Service) DefaultPolicy() baskets.Policy {
	return s.defaultPolicy
}

// Normalize fills request defaults and validates every field.
// Unknown tickers in the allocation map are ignored by the pipeline but must still be in range.
func (s *Service) Normalize(req Request) (Request, display.KnowledgeMode, error) {
	if req.Preferences.SelectedStages == nil {
		req.Preferences.SelectedStages = []domain.Stage{}
	}
	if req.Preferences.ChinaComfort == "" {
		req.Preferences.ChinaComfort = domain.ComfortNeutral
	}
	if req.Preferences.RiskTolerance == "" {
		req.Preferences.RiskTolerance = domain.RiskMedium
	}
	req.Allocations = s.canonicalAllocations(req.Allocations)
	if req.Policy == "" {
		req.Policy = s.defaultPolicy
	}
	if req.PortfolioValue <= 0 {
		req.PortfolioValue = domain.DefaultPortfolioValue
	}

	if err := req.Preferences.Validate(); err != nil {
		return req, display.KnowledgeMode{}, fmt.Errorf("invalid preferences: %w", err)
	}
	if err := req.Weights.Validate(); err != nil {
		return req, display.KnowledgeMode{}, fmt.Errorf("invalid weights: %w", err)
	}
	if err := req.Allocations.Validate(); err != nil {
		return req, display.KnowledgeMode{}, fmt.Errorf("invalid allocations: %w", err)
	}
	policy, err := baskets.ParsePolicy(string(req.Policy))
	if err != nil {
		return req, display.KnowledgeMode{}, err
	}
	req.Policy = policy

	mode, err := s.modes.Resolve(req.Level)
	if err != nil {
		return req, display.KnowledgeMode{}, err
	}
	req.Level = mode.Level

	return req, mode, nil
}

// canonicalAllocations keys every allocation by its catalog ticker.
// Unknown tickers are upper-cased. When two keys collapse to the same ticker
// the first in sorted order wins, so an exact "LIT" beats "lit".
func (s *Service) canonicalAllocations(in domain.AllocationMap) domain.AllocationMap {
	out := make(domain.AllocationMap, len(in))
	for _, raw := range in.Tickers() {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		if etf, err := s.catalog.Get(raw); err == nil {
			ticker = etf.Ticker
		}
		if _, seen := out[ticker]; !seen {
			out[ticker] = in[raw]
		}
	}
	return out
}

// Advise validates the request and returns the advice for it, from cache when possible
func (s *Service) Advise(req Request, origin string) (*Advice, error) {
	start := time.Now()

	req, mode, err := s.Normalize(req)
	if err != nil {
		return nil, err
	}

	key, err := Key(req)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to compute cache key, computing without cache")
	}

	if key != "" {
		if cached, ok := s.cache.Get(key); ok {
			s.recordCache(true)
			s.log.Debug().Str("origin", origin).Msg("Advice served from cache")
			return cached, nil
		}
		s.recordCache(false)
	}

	advice := Compute(s.catalog.All(), req, mode)
	if key != "" {
		s.cache.Add(key, advice)
	}

	elapsed := time.Since(start)
	if s.recorder != nil {
		s.recorder.ObserveAdvice(origin, elapsed)
	}

	s.log.Debug().
		Str("origin", origin).
		Str("level", string(mode.Level)).
		Str("policy", string(req.Policy)).
		Int("candidates", advice.CandidateCount).
		Int("shown", len(advice.ETFs)).
		Int("two_baskets", len(advice.TwoBaskets)).
		Int("three_baskets", len(advice.ThreeBaskets)).
		Dur("elapsed", elapsed).
		Msg("Advice computed")

	return advice, nil
}

func (s *Service) recordCache(hit bool) {
	if s.recorder != nil && s.cache.Enabled() {
		s.recorder.RecordCacheAccess(hit)
	}
}
