package surface

import "github.com/superposition/marigraph/internal/vecgrid"

// Resample returns a fresh, regularly-spaced nx-by-ny grid spanning src's
// domain, filled by interpolating src with the given method.
func Resample(src *Surface, nx, ny int, method Method) (*Surface, error) {
	x := vecgrid.Linspace(src.Meta.XDomain.Min, src.Meta.XDomain.Max, nx)
	y := vecgrid.Linspace(src.Meta.YDomain.Min, src.Meta.YDomain.Max, ny)
	z := vecgrid.New[float64](nx * ny)

	for xi, xv := range x {
		for yi, yv := range y {
			v, err := Interpolate(src, xv, yv, method)
			if err != nil {
				return nil, err
			}
			z[xi*ny+yi] = v
		}
	}
	return New(x, y, z, src.Meta.Labels)
}
