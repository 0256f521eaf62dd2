package sampler

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/matzehuels/cobotgen/pkg/config"
)

// CameraPose is a sampled camera placement aimed at the table center.
type CameraPose struct {
	Position    r3.Vector
	LookAt      r3.Vector
	FocalLength float64
	Width       int
	Height      int
}

// Light is the scene light placement derived from the camera pose.
type Light struct {
	Position  r3.Vector
	Intensity float64
	Type      string
}

// SampleCamera draws a camera position from a spherical shell around the
// given center. The radius is distributed uniformly in volume (not in
// radius), elevation and azimuth uniformly within their configured intervals.
func (s *Sampler) SampleCamera(center r3.Vector, cfg config.CameraConfig) CameraPose {
	rMin, rMax := cfg.Distance.Min(), cfg.Distance.Max()
	u := s.rng.Float64()
	radius := math.Cbrt(u*(rMax*rMax*rMax-rMin*rMin*rMin) + rMin*rMin*rMin)

	elevation := s.Uniform(cfg.Elevation) * math.Pi / 180
	azimuth := s.Uniform(cfg.Azimuth) * math.Pi / 180

	dir := r3.Vector{
		X: math.Cos(elevation) * math.Cos(azimuth),
		Y: math.Cos(elevation) * math.Sin(azimuth),
		Z: math.Sin(elevation),
	}

	return CameraPose{
		Position:    center.Add(dir.Mul(radius)),
		LookAt:      center,
		FocalLength: cfg.FocalLength,
		Width:       cfg.ImageSize[0],
		Height:      cfg.ImageSize[1],
	}
}

// LightAt places the light at a fixed offset from the camera so the scene is
// lit from roughly the viewing direction.
func LightAt(cam CameraPose, cfg config.LightConfig) Light {
	return Light{
		Position: cam.Position.Add(r3.Vector{
			X: cfg.Offset[0],
			Y: cfg.Offset[1],
			Z: cfg.Offset[2],
		}),
		Intensity: cfg.Intensity,
		Type:      cfg.Type,
	}
}
