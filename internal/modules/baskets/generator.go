// Package baskets enumerates and scores 2- and 3-ETF combinations.
package baskets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aristath/etfadvisor/internal/domain"
)

// MaxPairOverlap is the largest stage overlap any two members may share under PolicySoftCap
const MaxPairOverlap = 1

// Policy selects how enumeration treats overlapping members
type Policy string

const (
	// PolicyUnfiltered emits every subset and leaves overlap to the diversification coefficient
	PolicyUnfiltered Policy = "unfiltered"
	// PolicySoftCap drops any subset containing a pair that shares more than MaxPairOverlap stages
	PolicySoftCap Policy = "soft_cap"
)

// ErrUnknownPolicy is returned by ParsePolicy
var ErrUnknownPolicy = errors.New("unknown overlap policy")

// ParsePolicy converts a string into a Policy. Empty means PolicyUnfiltered.
func ParsePolicy(raw string) (Policy, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", "_")
	switch Policy(key) {
	case "", PolicyUnfiltered:
		return PolicyUnfiltered, nil
	case PolicySoftCap:
		return PolicySoftCap, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, raw)
}

// Allows reports whether the policy admits a combination
func (p Policy) Allows(combo []domain.ETF) bool {
	if p != PolicySoftCap {
		return true
	}
	for i := 0; i < len(combo); i++ {
		for j := i + 1; j < len(combo); j++ {
			if combo[i].SharedStages(combo[j]) > MaxPairOverlap {
				return false
			}
		}
	}
	return true
}

// Pairs returns every 2-member subset of candidates admitted by the policy
func Pairs(candidates []domain.ETF, policy Policy) [][]domain.ETF {
	return Enumerate(candidates, 2, policy)
}

// Triples returns every 3-member subset of candidates admitted by the policy
func Triples(candidates []domain.ETF, policy Policy) [][]domain.ETF {
	return Enumerate(candidates, 3, policy)
}

// Enumerate returns all k-member subsets of candidates in lexicographic index order
// (i<j, then i<j<k), dropping those the policy rejects.
func Enumerate(candidates []domain.ETF, k int, policy Policy) [][]domain.ETF {
	var result [][]domain.ETF
	for _, combo := range combinations(candidates, k) {
		if policy.Allows(combo) {
			result = append(result, combo)
		}
	}
	return result
}

// combinations returns all k-element subsets of items (n choose k)
func combinations(items []domain.ETF, k int) [][]domain.ETF {
	n := len(items)
	if k > n || k <= 0 {
		return nil
	}

	var result [][]domain.ETF
	indices := make([]int, k)

	// Initialize indices to [0, 1, 2, ..., k-1]
	for i := range indices {
		indices[i] = i
	}

	for {
		combo := make([]domain.ETF, k)
		for i, idx := range indices {
			combo[i] = items[idx]
		}
		result = append(result, combo)

		// Find rightmost index that can be incremented
		i := k - 1
		for i >= 0 && indices[i] == n-k+i {
			i--
		}
		if i < 0 {
			break
		}

		// Increment and reset subsequent indices
		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}

	return result
}
