package sdfrt

import (
	"errors"
	"flag"
	"fmt"
)

var ErrInvalidConfig = errors.New("sdfrt: invalid config")

// Config holds the viewer and raymarch settings. Zero values are replaced by
// defaults in Normalize, the way the window resource falls back to 1280x720.
type Config struct {
	WindowWidth  int
	WindowHeight int
	WindowTitle  string

	// TileX/TileY must match @workgroup_size of the raymarch kernel.
	TileX uint32
	TileY uint32

	FovDegrees float32
	ZNear      float32
	ZFar       float32

	MaxSteps    uint32
	MaxDistance float32
	HitEpsilon  float32

	// TAA jitters the projection by a sub-pixel offset each frame.
	TAA bool
	Fog bool

	Debug bool
}

func DefaultConfig() Config {
	return Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "SDF RT",
		TileX:        8,
		TileY:        8,
		FovDegrees:   60,
		ZNear:        0.1,
		ZFar:         1000,
		MaxSteps:     128,
		MaxDistance:  200,
		HitEpsilon:   0.001,
		Fog:          true,
	}
}

// BindFlags registers every field on fs with the current values as defaults.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.WindowWidth, "width", c.WindowWidth, "window width in pixels")
	fs.IntVar(&c.WindowHeight, "height", c.WindowHeight, "window height in pixels")
	fs.StringVar(&c.WindowTitle, "title", c.WindowTitle, "window title")
	fs.Func("tile", fmt.Sprintf("compute tile size as XxY (default %dx%d)", c.TileX, c.TileY), func(s string) error {
		var x, y uint32
		if _, err := fmt.Sscanf(s, "%dx%d", &x, &y); err != nil {
			return fmt.Errorf("tile %q: %w", s, err)
		}
		c.TileX, c.TileY = x, y
		return nil
	})
	fs.Func("fov", fmt.Sprintf("vertical field of view in degrees (default %g)", c.FovDegrees), float32Flag(&c.FovDegrees))
	fs.Func("znear", fmt.Sprintf("near plane (default %g)", c.ZNear), float32Flag(&c.ZNear))
	fs.Func("zfar", fmt.Sprintf("far plane (default %g)", c.ZFar), float32Flag(&c.ZFar))
	fs.Func("max-steps", fmt.Sprintf("raymarch step budget (default %d)", c.MaxSteps), func(s string) error {
		_, err := fmt.Sscanf(s, "%d", &c.MaxSteps)
		return err
	})
	fs.Func("max-distance", fmt.Sprintf("raymarch distance budget (default %g)", c.MaxDistance), float32Flag(&c.MaxDistance))
	fs.Func("epsilon", fmt.Sprintf("raymarch hit epsilon (default %g)", c.HitEpsilon), float32Flag(&c.HitEpsilon))
	fs.BoolVar(&c.TAA, "taa", c.TAA, "jitter the projection for temporal anti-aliasing")
	fs.BoolVar(&c.Fog, "fog", c.Fog, "enable distance fog")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable debug logging")
}

func float32Flag(dst *float32) func(string) error {
	return func(s string) error {
		var v float32
		if _, err := fmt.Sscanf(s, "%g", &v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// Normalize fills zero-valued fields from DefaultConfig.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.WindowWidth <= 0 {
		c.WindowWidth = d.WindowWidth
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = d.WindowHeight
	}
	if c.WindowTitle == "" {
		c.WindowTitle = d.WindowTitle
	}
	if c.TileX == 0 {
		c.TileX = d.TileX
	}
	if c.TileY == 0 {
		c.TileY = d.TileY
	}
	if c.FovDegrees == 0 {
		c.FovDegrees = d.FovDegrees
	}
	if c.ZNear == 0 {
		c.ZNear = d.ZNear
	}
	if c.ZFar == 0 {
		c.ZFar = d.ZFar
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = d.MaxSteps
	}
	if c.MaxDistance == 0 {
		c.MaxDistance = d.MaxDistance
	}
	if c.HitEpsilon == 0 {
		c.HitEpsilon = d.HitEpsilon
	}
}

func (c Config) Validate() error {
	switch {
	case c.WindowWidth <= 0 || c.WindowHeight <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.WindowWidth, c.WindowHeight)
	case c.TileX == 0 || c.TileY == 0:
		return fmt.Errorf("%w: tile size %dx%d", ErrInvalidConfig, c.TileX, c.TileY)
	case c.FovDegrees <= 0 || c.FovDegrees >= 180:
		return fmt.Errorf("%w: fov %g", ErrInvalidConfig, c.FovDegrees)
	case c.ZNear <= 0 || c.ZFar <= c.ZNear:
		return fmt.Errorf("%w: depth range [%g, %g]", ErrInvalidConfig, c.ZNear, c.ZFar)
	case c.MaxDistance <= 0 || c.HitEpsilon <= 0:
		return fmt.Errorf("%w: march distance %g epsilon %g", ErrInvalidConfig, c.MaxDistance, c.HitEpsilon)
	}
	return nil
}
