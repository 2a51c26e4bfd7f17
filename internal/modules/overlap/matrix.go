// Package overlap computes pairwise supply-chain stage overlap between ETFs.
package overlap

import (
	"github.com/aristath/etfadvisor/internal/domain"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a symmetric shared-stage count matrix with a zero diagonal.
// Entry (i, j) is the number of stages ETF i and ETF j both operate in.
type Matrix struct {
	tickers []string
	sym     *mat.SymDense
}

// Compute builds the overlap matrix for the given ETFs, in input order
func Compute(etfs []domain.ETF) *Matrix {
	n := len(etfs)
	m := &Matrix{tickers: domain.Tickers(etfs)}
	if n == 0 {
		return m
	}

	m.sym = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.sym.SetSym(i, j, float64(etfs[i].SharedStages(etfs[j])))
		}
	}
	return m
}

// Size returns the matrix dimension
func (m *Matrix) Size() int {
	return len(m.tickers)
}

// Tickers returns the row/column labels
func (m *Matrix) Tickers() []string {
	out := make([]string, len(m.tickers))
	copy(out, m.tickers)
	return out
}

// At returns the shared-stage count between members i and j
func (m *Matrix) At(i, j int) int {
	if m.sym == nil {
		return 0
	}
	return int(m.sym.At(i, j))
}

// Rows returns the matrix as plain integer rows
func (m *Matrix) Rows() [][]int {
	n := m.Size()
	rows := make([][]int, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]int, n)
		for j := 0; j < n; j++ {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}

// Total sums every entry of the full matrix, so each unordered pair is counted twice
func (m *Matrix) Total() int {
	n := m.Size()
	total := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			total += m.At(i, j)
		}
	}
	return total
}

// MaxPair returns the largest overlap between any two members
func (m *Matrix) MaxPair() int {
	n := m.Size()
	best := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if v := m.At(i, j); v > best {
				best = v
			}
		}
	}
	return best
}

// Of is shorthand for Compute(etfs).Rows()
func Of(etfs []domain.ETF) [][]int {
	return Compute(etfs).Rows()
}

// TotalOf is shorthand for Compute(etfs).Total()
func TotalOf(etfs []domain.ETF) int {
	return Compute(etfs).Total()
}

// Pairs returns the shared-stage count for every ordered pair of distinct ETFs,
// keyed "A-B". Both "A-B" and "B-A" are present.
func Pairs(etfs []domain.ETF) map[string]int {
	out := make(map[string]int, len(etfs)*len(etfs))
	for i, a := range etfs {
		for j, b := range etfs {
			if i == j {
				continue
			}
			out[a.Ticker+"-"+b.Ticker] = a.SharedStages(b)
		}
	}
	return out
}
