// Package roles factorizes stacked occupancy distributions into latent
// spatial roles using non-negative matrix factorization under generalized
// KL-divergence loss, and prepares role heatmaps for presentation.
package roles

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/pitchlab/formations/internal/pitch"
	"github.com/pitchlab/formations/internal/pitch/occupancy"
)

// Params configures the factorization.
type Params struct {
	Roles   int     // K, number of latent roles
	MaxIter int     // iteration cap; reaching it is normal termination
	Tol     float64 // relative convergence tolerance on the divergence
	Seed    int64   // seeds initialization of components beyond the SVD rank
	Epsilon float64 // added to X so empty bins keep the divergence finite
}

// DefaultParams mirrors the canonical analysis settings.
func DefaultParams() Params {
	return Params{Roles: 10, MaxIter: 500, Tol: 1e-4, Seed: 42, Epsilon: 1e-10}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Roles == 0 {
		p.Roles = d.Roles
	}
	if p.MaxIter == 0 {
		p.MaxIter = d.MaxIter
	}
	if p.Tol == 0 {
		p.Tol = d.Tol
	}
	if p.Epsilon == 0 {
		p.Epsilon = d.Epsilon
	}
	return p
}

// Model is a fitted factorization X ~= W.B.
type Model struct {
	W              *mat.Dense // N x K player role weights
	B              *mat.Dense // K x L role spatial signatures
	Reconstruction *mat.Dense // W.B

	// Divergence is the realized generalized KL divergence D(X || W.B),
	// always reported as the quality metric of the fit.
	Divergence float64
	Converged  bool
	Iterations int

	Grid occupancy.Grid

	// Dominant holds each player's dominant role: the index of the
	// largest entry in the weight row, lowest index on ties.
	Dominant []int
}

// floor keeps the factors strictly positive through the multiplicative
// updates and guards the elementwise divisions.
const floor = 1e-12

// Extract decomposes the N x L occupancy matrix into Params.Roles
// non-negative latent roles, minimizing the generalized KL divergence
// between X and W.B with multiplicative updates. KL divergence is the
// natural distortion measure here because the rows of X are probability
// masses over bins.
//
// Iteration stops at the cap or when the divergence improvement over a
// ten-iteration window falls below Tol relative to the initial
// divergence; hitting the cap is normal termination, not an error.
func Extract(x *mat.Dense, g occupancy.Grid, p Params) (*Model, error) {
	p = p.withDefaults()
	if p.Roles < 1 {
		return nil, fmt.Errorf("%w: need at least one role, got %d", pitch.ErrConfiguration, p.Roles)
	}
	n, l := x.Dims()
	if n == 0 || l == 0 {
		return nil, fmt.Errorf("%w: empty occupancy matrix", pitch.ErrConfiguration)
	}

	// Shift X away from zero so no divergence term is undefined.
	xs := mat.NewDense(n, l, nil)
	xs.Apply(func(_, _ int, v float64) float64 { return v + p.Epsilon }, x)

	w, b := nndsvda(xs, p.Roles, p.Seed)

	wh := mat.NewDense(n, l, nil)
	wh.Mul(w, b)
	initial := klDivergence(xs, wh)
	prev := initial

	var (
		iterations = p.MaxIter
		converged  bool
	)
	ratio := mat.NewDense(n, l, nil)
	for iter := 1; iter <= p.MaxIter; iter++ {
		// B <- B * (Wt (X / WB)) / (Wt 1)
		elemRatio(ratio, xs, wh)
		var numB mat.Dense
		numB.Mul(w.T(), ratio)
		colSums := columnSums(w)
		scaleRows(b, &numB, colSums)

		wh.Mul(w, b)

		// W <- W * ((X / WB) Bt) / (1 Bt)
		elemRatio(ratio, xs, wh)
		var numW mat.Dense
		numW.Mul(ratio, b.T())
		rowSums := rowSums(b)
		scaleCols(w, &numW, rowSums)

		wh.Mul(w, b)

		if iter%10 == 0 {
			cur := klDivergence(xs, wh)
			if prev-cur < p.Tol*initial {
				iterations = iter
				converged = true
				break
			}
			prev = cur
		}
	}

	div := klDivergence(xs, wh)
	if !isFinite(div) || !allFinite(w) || !allFinite(b) {
		return nil, fmt.Errorf("%w: factorization produced non-finite values", pitch.ErrNumerical)
	}

	recon := mat.NewDense(n, l, nil)
	recon.Mul(w, b)

	return &Model{
		W:              w,
		B:              b,
		Reconstruction: recon,
		Divergence:     div,
		Converged:      converged,
		Iterations:     iterations,
		Grid:           g,
		Dominant:       dominantRoles(w),
	}, nil
}

// nndsvda is the non-negative double SVD initialization with zero entries
// filled by the matrix mean. The seeding is structured and deterministic,
// which keeps runs reproducible and is far less sensitive to sparse
// inputs than purely random starts. Components beyond the SVD rank are
// seeded from the mean perturbed by the seeded RNG, so those too are
// reproducible per seed.
func nndsvda(x *mat.Dense, k int, seed int64) (*mat.Dense, *mat.Dense) {
	n, l := x.Dims()
	w := mat.NewDense(n, k, nil)
	b := mat.NewDense(k, l, nil)

	var svd mat.SVD
	r := 0
	var u, v mat.Dense
	var s []float64
	if svd.Factorize(x, mat.SVDThin) {
		svd.UTo(&u)
		svd.VTo(&v)
		s = svd.Values(nil)
		r = len(s)
		if r > k {
			r = k
		}
	}

	if r > 0 {
		// Leading singular vectors of a non-negative matrix can be taken
		// entrywise non-negative.
		f := math.Sqrt(s[0])
		for i := 0; i < n; i++ {
			w.Set(i, 0, f*math.Abs(u.At(i, 0)))
		}
		for j := 0; j < l; j++ {
			b.Set(0, j, f*math.Abs(v.At(j, 0)))
		}
	}

	for c := 1; c < r; c++ {
		up, un := splitParts(&u, c, n)
		vp, vn := splitParts(&v, c, l)
		upn, unn := vecNorm(up), vecNorm(un)
		vpn, vnn := vecNorm(vp), vecNorm(vn)
		mp, mn := upn*vpn, unn*vnn
		if mp == 0 && mn == 0 {
			continue // mean fill below covers this component
		}
		var uu, vv []float64
		var sigma float64
		if mp >= mn {
			uu, vv, sigma = scaled(up, 1/upn), scaled(vp, 1/vpn), mp
		} else {
			uu, vv, sigma = scaled(un, 1/unn), scaled(vn, 1/vnn), mn
		}
		lbd := math.Sqrt(s[c] * sigma)
		for i := 0; i < n; i++ {
			w.Set(i, c, lbd*uu[i])
		}
		for j := 0; j < l; j++ {
			b.Set(c, j, lbd*vv[j])
		}
	}

	mean := mat.Sum(x) / float64(n*l)
	rng := rand.New(rand.NewSource(seed))
	for c := r; c < k; c++ {
		for i := 0; i < n; i++ {
			w.Set(i, c, mean*(1+0.01*rng.Float64()))
		}
		for j := 0; j < l; j++ {
			b.Set(c, j, mean*(1+0.01*rng.Float64()))
		}
	}

	// The 'a' variant: zeros become the matrix mean instead of staying
	// zero, which multiplicative updates could never escape.
	fillZeros(w, mean)
	fillZeros(b, mean)
	return w, b
}

// splitParts separates column c into its positive part and the negated
// negative part.
func splitParts(m *mat.Dense, c, rows int) (pos, neg []float64) {
	pos = make([]float64, rows)
	neg = make([]float64, rows)
	for i := 0; i < rows; i++ {
		v := m.At(i, c)
		if v > 0 {
			pos[i] = v
		} else {
			neg[i] = -v
		}
	}
	return pos, neg
}

func vecNorm(v []float64) float64 {
	var ss float64
	for _, x := range v {
		ss += x * x
	}
	return math.Sqrt(ss)
}

func scaled(v []float64, f float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * f
	}
	return out
}

func fillZeros(m *mat.Dense, val float64) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) <= 0 {
				m.Set(i, j, val)
			}
		}
	}
}

// elemRatio computes dst = x / wh elementwise, flooring the denominator.
func elemRatio(dst, x, wh *mat.Dense) {
	r, c := x.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d := wh.At(i, j)
			if d < floor {
				d = floor
			}
			dst.Set(i, j, x.At(i, j)/d)
		}
	}
}

func columnSums(m *mat.Dense) []float64 {
	r, c := m.Dims()
	sums := make([]float64, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sums[j] += m.At(i, j)
		}
	}
	return sums
}

func rowSums(m *mat.Dense) []float64 {
	r, c := m.Dims()
	sums := make([]float64, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sums[i] += m.At(i, j)
		}
	}
	return sums
}

// scaleRows applies b[k][j] *= num[k][j] / denom[k], flooring the result.
func scaleRows(b, num *mat.Dense, denom []float64) {
	r, c := b.Dims()
	for k := 0; k < r; k++ {
		d := denom[k]
		if d < floor {
			d = floor
		}
		for j := 0; j < c; j++ {
			v := b.At(k, j) * num.At(k, j) / d
			if v < floor {
				v = floor
			}
			b.Set(k, j, v)
		}
	}
}

// scaleCols applies w[i][k] *= num[i][k] / denom[k], flooring the result.
func scaleCols(w, num *mat.Dense, denom []float64) {
	r, c := w.Dims()
	for i := 0; i < r; i++ {
		for k := 0; k < c; k++ {
			d := denom[k]
			if d < floor {
				d = floor
			}
			v := w.At(i, k) * num.At(i, k) / d
			if v < floor {
				v = floor
			}
			w.Set(i, k, v)
		}
	}
}

// klDivergence computes the generalized KL divergence
// D(x || wh) = sum x*log(x/wh) - x + wh. Both arguments are strictly
// positive here: x carries the epsilon shift and wh the update floor.
func klDivergence(x, wh *mat.Dense) float64 {
	r, c := x.Dims()
	var d float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			xv := x.At(i, j)
			yv := wh.At(i, j)
			if yv < floor {
				yv = floor
			}
			d += xv*math.Log(xv/yv) - xv + yv
		}
	}
	return d
}

// dominantRoles returns the argmax of each weight row. Strict comparison
// breaks ties toward the lowest role index.
func dominantRoles(w *mat.Dense) []int {
	n, k := w.Dims()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		best := 0
		for c := 1; c < k; c++ {
			if w.At(i, c) > w.At(i, best) {
				best = c
			}
		}
		out[i] = best
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if !isFinite(m.At(i, j)) {
				return false
			}
		}
	}
	return true
}
