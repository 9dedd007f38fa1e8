// ABOUTME: Travel-time residual statistics for rayfans.
// ABOUTME: RMS and chi-squared misfit, per fan and averaged per group.
package rayfan

import "math"

// Residuals returns pick minus traced travel times, with the fan's static
// correction applied, in seconds.
func (f *Fan) Residuals() []float64 {
	res := make([]float64, f.NumRays())
	for i := range res {
		res[i] = float64(f.PickTimes[i]) - float64(f.TravelTimes[i]) + f.StaticCorrection
	}
	return res
}

// RMS returns the root-mean-square travel-time residual of the fan.
func (f *Fan) RMS() float64 {
	n := f.NumRays()
	if n == 0 {
		return 0
	}
	var sum float64
	for _, r := range f.Residuals() {
		sum += r * r
	}
	return math.Sqrt(sum / float64(n))
}

// Chi2 returns the squared error-normalized residual of each ray.
func (f *Fan) Chi2() []float64 {
	res := f.Residuals()
	chi2 := make([]float64, len(res))
	for i, r := range res {
		e := float64(f.PickErrors[i])
		chi2[i] = (r / e) * (r / e)
	}
	return chi2
}

// Chi2Mean returns the mean chi-squared misfit of the fan.
func (f *Fan) Chi2Mean() float64 {
	n := f.NumRays()
	if n == 0 {
		return 0
	}
	var sum float64
	for _, c := range f.Chi2() {
		sum += c
	}
	return sum / float64(n)
}

// RMS returns the mean of the per-fan RMS residuals.
func (g *Group) RMS() float64 {
	if len(g.Fans) == 0 {
		return 0
	}
	var sum float64
	for _, f := range g.Fans {
		sum += f.RMS()
	}
	return sum / float64(len(g.Fans))
}

// Chi2 returns the mean of the per-fan chi-squared misfits.
func (g *Group) Chi2() float64 {
	if len(g.Fans) == 0 {
		return 0
	}
	var sum float64
	for _, f := range g.Fans {
		sum += f.Chi2Mean()
	}
	return sum / float64(len(g.Fans))
}
