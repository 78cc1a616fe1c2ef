package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// SVISample is one (log-moneyness, implied vol, weight) observation used to
// calibrate an SVI smile at a fixed time-to-expiry.
type SVISample struct {
	K      float64
	IV     float64
	Weight float64
}

// CalibrationResult is the contract every SmileTuner must return:
// the fitted parameters, the achieved weighted RMSE (in total
// variance units), and the number of iterations actually run.
type CalibrationResult struct {
	Params     SVIParams
	RMSE       float64
	Iterations int
}

// CalibrateOptions configures a calibration run.
type CalibrateOptions struct {
	Initial      SVIParams
	LearningRate float64
	MaxIter      int
	Tolerance    float64
}

func (o CalibrateOptions) withDefaults() CalibrateOptions {
	if o.LearningRate <= 0 {
		o.LearningRate = 0.05
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 500
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-6
	}
	if o.Initial == (SVIParams{}) {
		o.Initial = SVIParams{A: 0.04, B: 0.1, Rho: 0, M: 0, Sigma: 0.1}
	}
	return o
}

// SmileTuner fits SVIParams to a set of (k, iv, weight) samples at a fixed
// time-to-expiry t.
type SmileTuner interface {
	Name() string
	Calibrate(samples []SVISample, t float64, opts CalibrateOptions) (CalibrationResult, error)
}

var (
	// ErrTunerExists is returned by RegisterTuner for a name already taken.
	ErrTunerExists = errors.New("smile tuner already registered")
	// ErrTunerNotFound is returned when a tuner name has no registration.
	ErrTunerNotFound = errors.New("smile tuner not found")
)

var tunerRegistry = struct {
	mu sync.RWMutex
	m  map[string]SmileTuner
}{
	m: make(map[string]SmileTuner),
}

func init() {
	mustRegisterTuner(GradientDescentTuner{})
	mustRegisterTuner(LevenbergMarquardtTuner{})
}

// RegisterTuner adds a named SmileTuner implementation.
func RegisterTuner(t SmileTuner) error {
	tunerRegistry.mu.Lock()
	defer tunerRegistry.mu.Unlock()
	if _, exists := tunerRegistry.m[t.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrTunerExists, t.Name())
	}
	tunerRegistry.m[t.Name()] = t
	return nil
}

func mustRegisterTuner(t SmileTuner) {
	if err := RegisterTuner(t); err != nil {
		panic(err)
	}
}

// Tuners returns the names of every registered SmileTuner, sorted.
func Tuners() []string {
	tunerRegistry.mu.RLock()
	defer tunerRegistry.mu.RUnlock()
	out := make([]string, 0, len(tunerRegistry.m))
	for name := range tunerRegistry.m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CalibrateSVI fits SVIParams to samples at time-to-expiry t using the named
// tuner (default "gradient-descent" if name is empty).
func CalibrateSVI(name string, samples []SVISample, t float64, opts CalibrateOptions) (CalibrationResult, error) {
	if name == "" {
		name = "gradient-descent"
	}
	tunerRegistry.mu.RLock()
	tuner, ok := tunerRegistry.m[name]
	tunerRegistry.mu.RUnlock()
	if !ok {
		return CalibrationResult{}, fmt.Errorf("%w: %s", ErrTunerNotFound, name)
	}
	return tuner.Calibrate(samples, t, opts.withDefaults())
}

// weightedRMSE computes the weighted RMSE of model total variance against
// sample-implied total variance (iv^2 * t).
func weightedRMSE(samples []SVISample, t float64, p SVIParams) float64 {
	var sumSq, sumW float64
	for _, s := range samples {
		target := s.IV * s.IV * t
		model := TotalVariance(s.K, p)
		err := model - target
		sumSq += s.Weight * err * err
		sumW += s.Weight
	}
	if sumW == 0 {
		return 0
	}
	return math.Sqrt(sumSq / sumW)
}

// GradientDescentTuner is the default calibration method: fixed-learning-
// rate numerical gradient descent with early stop on relative RMSE
// improvement.
type GradientDescentTuner struct{}

func (GradientDescentTuner) Name() string { return "gradient-descent" }

func (GradientDescentTuner) Calibrate(samples []SVISample, t float64, opts CalibrateOptions) (CalibrationResult, error) {
	opts = opts.withDefaults()
	if len(samples) == 0 {
		return CalibrationResult{}, errors.New("analytics: calibration requires at least one sample")
	}

	p := opts.Initial.Clamp()
	prevRMSE := weightedRMSE(samples, t, p)
	iterations := 0

	const h = 1e-5
	for iter := 0; iter < opts.MaxIter; iter++ {
		iterations = iter + 1
		grad := numericGradient(samples, t, p, h)
		p = SVIParams{
			A:     p.A - opts.LearningRate*grad.A,
			B:     p.B - opts.LearningRate*grad.B,
			Rho:   p.Rho - opts.LearningRate*grad.Rho,
			M:     p.M - opts.LearningRate*grad.M,
			Sigma: p.Sigma - opts.LearningRate*grad.Sigma,
		}.Clamp()

		rmse := weightedRMSE(samples, t, p)
		if prevRMSE > 0 {
			improvement := (prevRMSE - rmse) / prevRMSE
			if improvement < opts.Tolerance {
				prevRMSE = rmse
				break
			}
		}
		prevRMSE = rmse
	}

	return CalibrationResult{Params: p, RMSE: prevRMSE, Iterations: iterations}, nil
}

// numericGradient computes the gradient of weightedRMSE w.r.t. each SVI
// parameter via central finite differences.
func numericGradient(samples []SVISample, t float64, p SVIParams, h float64) SVIParams {
	base := func(p SVIParams) float64 { return weightedRMSE(samples, t, p) }
	return SVIParams{
		A:     partial(base, p, h, func(q *SVIParams, d float64) { q.A += d }),
		B:     partial(base, p, h, func(q *SVIParams, d float64) { q.B += d }),
		Rho:   partial(base, p, h, func(q *SVIParams, d float64) { q.Rho += d }),
		M:     partial(base, p, h, func(q *SVIParams, d float64) { q.M += d }),
		Sigma: partial(base, p, h, func(q *SVIParams, d float64) { q.Sigma += d }),
	}
}

func partial(f func(SVIParams) float64, p SVIParams, h float64, perturb func(*SVIParams, float64)) float64 {
	plus := p
	perturb(&plus, h)
	minus := p
	perturb(&minus, -h)
	return (f(plus) - f(minus)) / (2 * h)
}
