package analytics

import (
	"errors"
	"math"
)

// LevenbergMarquardtTuner is an alternative calibration method: it obeys
// the same parameter constraints and returns the same (params, rmse,
// iterations) contract as GradientDescentTuner but converges faster on
// well-conditioned smiles via damped Gauss-Newton updates over a numeric
// Jacobian.
type LevenbergMarquardtTuner struct{}

func (LevenbergMarquardtTuner) Name() string { return "levenberg-marquardt" }

func (LevenbergMarquardtTuner) Calibrate(samples []SVISample, t float64, opts CalibrateOptions) (CalibrationResult, error) {
	opts = opts.withDefaults()
	if len(samples) == 0 {
		return CalibrationResult{}, errNoSamples
	}

	p := opts.Initial.Clamp()
	lambda := 1e-3
	prevRMSE := weightedRMSE(samples, t, p)
	iterations := 0

	for iter := 0; iter < opts.MaxIter; iter++ {
		iterations = iter + 1

		jac, res := residualsAndJacobian(samples, t, p)
		jtj, jtr := normalEquations(jac, res)
		for i := 0; i < 5; i++ {
			jtj[i][i] *= 1 + lambda
		}
		delta, ok := solve5(jtj, jtr)
		if !ok {
			break
		}

		candidate := SVIParams{
			A:     p.A - delta[0],
			B:     p.B - delta[1],
			Rho:   p.Rho - delta[2],
			M:     p.M - delta[3],
			Sigma: p.Sigma - delta[4],
		}.Clamp()

		rmse := weightedRMSE(samples, t, candidate)
		if rmse < prevRMSE {
			p = candidate
			lambda *= 0.5
			if prevRMSE > 0 {
				improvement := (prevRMSE - rmse) / prevRMSE
				prevRMSE = rmse
				if improvement < opts.Tolerance {
					break
				}
			} else {
				prevRMSE = rmse
			}
		} else {
			lambda *= 2
			if lambda > 1e8 {
				break
			}
		}
	}

	return CalibrationResult{Params: p, RMSE: prevRMSE, Iterations: iterations}, nil
}

var errNoSamples = errors.New("analytics: calibration requires at least one sample")

// residualsAndJacobian returns, for each sample, the weighted residual
// (model - target) and its partial derivatives w.r.t. (a,b,rho,m,sigma).
func residualsAndJacobian(samples []SVISample, t float64, p SVIParams) ([][5]float64, []float64) {
	const h = 1e-5
	jac := make([][5]float64, len(samples))
	res := make([]float64, len(samples))

	for i, s := range samples {
		sw := math.Sqrt(math.Max(s.Weight, 0))
		target := s.IV * s.IV * t
		res[i] = sw * (TotalVariance(s.K, p) - target)

		jac[i] = [5]float64{
			sw * dW(s.K, p, h, func(q *SVIParams, d float64) { q.A += d }),
			sw * dW(s.K, p, h, func(q *SVIParams, d float64) { q.B += d }),
			sw * dW(s.K, p, h, func(q *SVIParams, d float64) { q.Rho += d }),
			sw * dW(s.K, p, h, func(q *SVIParams, d float64) { q.M += d }),
			sw * dW(s.K, p, h, func(q *SVIParams, d float64) { q.Sigma += d }),
		}
	}
	return jac, res
}

func dW(k float64, p SVIParams, h float64, perturb func(*SVIParams, float64)) float64 {
	plus := p
	perturb(&plus, h)
	minus := p
	perturb(&minus, -h)
	return (TotalVariance(k, plus) - TotalVariance(k, minus)) / (2 * h)
}

func normalEquations(jac [][5]float64, res []float64) (jtj [5][5]float64, jtr [5]float64) {
	for row := range jac {
		for a := 0; a < 5; a++ {
			jtr[a] += jac[row][a] * res[row]
			for b := 0; b < 5; b++ {
				jtj[a][b] += jac[row][a] * jac[row][b]
			}
		}
	}
	return jtj, jtr
}

// solve5 solves the 5x5 linear system m*x = b via Gaussian elimination with
// partial pivoting. Returns ok=false if m is singular to working precision.
func solve5(m [5][5]float64, b [5]float64) (x [5]float64, ok bool) {
	const n = 5
	var a [n][n + 1]float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a[i][j] = m[i][j]
		}
		a[i][n] = b[i]
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		a[col], a[pivot] = a[pivot], a[col]
		if math.Abs(a[col][col]) < 1e-12 {
			return x, false
		}
		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k <= n; k++ {
				a[row][k] -= factor * a[col][k]
			}
		}
	}

	for row := n - 1; row >= 0; row-- {
		sum := a[row][n]
		for col := row + 1; col < n; col++ {
			sum -= a[row][col] * x[col]
		}
		x[row] = sum / a[row][row]
	}
	return x, true
}
