// Package analytics implements the surface analytics core (C3): SVI smile
// evaluation and calibration, arbitrage detection and enforcement, risk
// metrics, and term-structure/smile analyses over a Surface (C2).
package analytics

import "math"

// SVIParams is the raw SVI parameterization of total variance:
//
//	w(k) = a + b*(rho*(k-m) + sqrt((k-m)^2 + sigma^2))
type SVIParams struct {
	A     float64 `json:"a"`
	B     float64 `json:"b"`
	Rho   float64 `json:"rho"`
	M     float64 `json:"m"`
	Sigma float64 `json:"sigma"`
}

// Clamp restricts the parameters to the calibration constraints:
// rho in (-0.99,0.99), b >= 0.001, sigma >= 0.001.
func (p SVIParams) Clamp() SVIParams {
	const (
		rhoLimit  = 0.99
		minB      = 0.001
		minSigma  = 0.001
	)
	if p.Rho > rhoLimit {
		p.Rho = rhoLimit
	}
	if p.Rho < -rhoLimit {
		p.Rho = -rhoLimit
	}
	if p.B < minB {
		p.B = minB
	}
	if p.Sigma < minSigma {
		p.Sigma = minSigma
	}
	return p
}

// TotalVariance evaluates w(k; params).
func TotalVariance(k float64, p SVIParams) float64 {
	d := k - p.M
	return p.A + p.B*(p.Rho*d+math.Sqrt(d*d+p.Sigma*p.Sigma))
}

// ImpliedVol returns sigma_IV(k,T) = sqrt(w/T) for T>0 and w>=0, else 0.
func ImpliedVol(k, t float64, p SVIParams) float64 {
	if t <= 0 {
		return 0
	}
	w := TotalVariance(k, p)
	if w < 0 {
		return 0
	}
	return math.Sqrt(w / t)
}

// FirstDerivative returns dw/dk in closed form.
func FirstDerivative(k float64, p SVIParams) float64 {
	d := k - p.M
	root := math.Sqrt(d*d + p.Sigma*p.Sigma)
	if root == 0 {
		return p.B * p.Rho
	}
	return p.B * (p.Rho + d/root)
}

// SecondDerivative returns d2w/dk2 in closed form.
func SecondDerivative(k float64, p SVIParams) float64 {
	d := k - p.M
	denom := d*d + p.Sigma*p.Sigma
	root := math.Sqrt(denom)
	if root == 0 {
		return 0
	}
	return p.B * p.Sigma * p.Sigma / (denom * root)
}
