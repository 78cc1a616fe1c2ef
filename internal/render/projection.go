// Package render implements the rendering pipeline (C4): 3D projection,
// scene construction from a Surface, and depth-sorted line rasterization to
// a character+color+depth buffer.
package render

import "math"

// Point3 is a point in model space.
type Point3 struct {
	X, Y, Z float64
}

// Point2 is a projected screen-space point plus its camera-space depth.
type Point2 struct {
	X, Y, Depth float64
}

// Projection is the camera state used to project model-space points to
// screen space.
type Projection struct {
	Azimuth     float64 // degrees, [0,360)
	Elevation   float64 // degrees, [-89,89]
	Zoom        float64 // > 0
	CenterX     float64
	CenterY     float64
	AspectRatio float64 // character cell width/height ratio, default 0.5
}

// DefaultProjection returns a camera looking at the origin with a neutral
// orientation and the default terminal cell aspect ratio.
func DefaultProjection(centerX, centerY float64) Projection {
	return Projection{
		Azimuth: 0, Elevation: 0, Zoom: 1,
		CenterX: centerX, CenterY: centerY,
		AspectRatio: 0.5,
	}
}

// Project3D rotates p about Z by proj.Azimuth then about X by
// proj.Elevation, and projects orthographically to screen space.
func Project3D(p Point3, proj Projection) Point2 {
	az := proj.Azimuth * math.Pi / 180
	el := proj.Elevation * math.Pi / 180

	cosAz, sinAz := math.Cos(az), math.Sin(az)
	x1 := p.X*cosAz - p.Y*sinAz
	y1 := p.X*sinAz + p.Y*cosAz
	z1 := p.Z

	cosEl, sinEl := math.Cos(el), math.Sin(el)
	y2 := y1*cosEl - z1*sinEl
	z2 := y1*sinEl + z1*cosEl
	x2 := x1

	return Point2{
		X:     proj.CenterX + x2*proj.Zoom,
		Y:     proj.CenterY - z2*proj.Zoom*proj.AspectRatio,
		Depth: y2,
	}
}

// RotateProjection returns proj rotated by (deltaAz, deltaEl), with azimuth
// wrapped into [0,360) and elevation clamped to [-89,89].
func RotateProjection(proj Projection, deltaAz, deltaEl float64) Projection {
	az := math.Mod(proj.Azimuth+deltaAz, 360)
	if az < 0 {
		az += 360
	}
	el := proj.Elevation + deltaEl
	if el > 89 {
		el = 89
	}
	if el < -89 {
		el = -89
	}
	proj.Azimuth = az
	proj.Elevation = el
	return proj
}

// ZoomProjection multiplies proj.Zoom by factor, clamped to a minimum of 1.
func ZoomProjection(proj Projection, factor float64) Projection {
	proj.Zoom *= factor
	if proj.Zoom < 1 {
		proj.Zoom = 1
	}
	return proj
}
